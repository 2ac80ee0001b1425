package model

// Product is the catalog table. Rows are imported in bulk and read-only at
// runtime; mutations happen out of band.
type Product struct {
	ProductID   int64    `gorm:"column:product_id;primaryKey" json:"product_id"`
	ProductName string   `gorm:"column:product_name;not null" json:"product_name"`
	Price       float64  `gorm:"column:price;not null" json:"price"`
	Image       *string  `gorm:"column:image" json:"image"`
	Rating      *float64 `gorm:"column:rating" json:"rating"`
	ReviewCount int64    `gorm:"column:review_count;default:0" json:"review_count"`
	CategoryID  int64    `gorm:"column:category_id;index" json:"category_id"`
	CountryID   string   `gorm:"column:country_id;type:varchar(3);index" json:"country_id"`
}

func (Product) TableName() string {
	return "products"
}
