package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	OrderID         string      `gorm:"column:order_id;primaryKey" json:"order_id"`
	UserID          uint        `gorm:"column:user_id;index;not null" json:"user_id"`
	ShippingCountry string      `gorm:"column:shipping_country" json:"shipping_country"`
	TotalAmount     float64     `gorm:"column:total_amount" json:"total_amount"`
	Status          OrderStatus `gorm:"column:status;type:varchar(20);default:pending" json:"status"`
	Address         string      `gorm:"column:address" json:"address"`
	CreatedAt       time.Time   `json:"created_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	OrderItemID  uint    `gorm:"column:order_item_id;primaryKey" json:"-"`
	OrderID      string  `gorm:"column:order_id;index;not null" json:"-"`
	ProductID    int64   `gorm:"column:product_id;not null" json:"product_id"`
	Quantity     int     `gorm:"column:quantity" json:"quantity"`
	PriceAtOrder float64 `gorm:"column:price_at_order" json:"price_at_order"`
	Amount       float64 `gorm:"column:amount" json:"amount"`
	ProductName  string  `gorm:"column:product_name" json:"product_name"`
	Image        *string `gorm:"-" json:"image"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
