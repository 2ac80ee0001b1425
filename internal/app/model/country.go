package model

type Country struct {
	CountryID string `gorm:"column:country_id;type:varchar(3);primaryKey" json:"country_id"`
	Country   string `gorm:"column:country;not null" json:"country"`
}

func (Country) TableName() string {
	return "countries"
}
