package model

import "time"

type Cart struct {
	CartID    uint      `gorm:"column:cart_id;primaryKey" json:"cart_id"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	CartName  string    `gorm:"column:cart_name" json:"cart_name"`
	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`

	Items []CartItem `gorm:"foreignKey:CartID" json:"-"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	CartItemID uint      `gorm:"column:cart_item_id;primaryKey" json:"cart_item_id"`
	CartID     uint      `gorm:"column:cart_id;index;not null" json:"cart_id"`
	ProductID  int64     `gorm:"column:product_id;not null" json:"product_id"`
	Quantity   int       `gorm:"column:quantity;default:1" json:"quantity"`
	AddedAt    time.Time `gorm:"column:added_at" json:"added_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	ProductID   int64   `json:"product_id"`
	Quantity    int     `json:"quantity"`
	ProductName string  `json:"product_name"`
	Image       *string `json:"image"`
	Price       float64 `json:"price"`
	LineTotal   float64 `json:"line_total"`
}
