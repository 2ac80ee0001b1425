package model

// Category is identified by (category_id, country_id); distinct countries may
// have disjoint category spaces.
type Category struct {
	CategoryID int64  `gorm:"column:category_id;primaryKey" json:"category_id"`
	CountryID  string `gorm:"column:country_id;type:varchar(3);primaryKey" json:"country_id"`
	Category   string `gorm:"column:category;not null" json:"category"`
}

func (Category) TableName() string {
	return "categories"
}
