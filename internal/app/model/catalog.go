package model

import "github.com/ikkim/amazocart-backend/pkg/util"

// CatalogProduct is the canonical read-only projection every catalog endpoint
// returns, regardless of which table or view the row came from.
type CatalogProduct struct {
	ProductID    int64    `json:"product_id"`
	ProductName  string   `json:"product_name"`
	Price        float64  `json:"price"`
	Image        *string  `json:"image"`
	AvgRating    *float64 `json:"avg_rating"`
	ReviewCount  int64    `json:"review_count"`
	CategoryID   int64    `json:"category_id"`
	CategoryName *string  `json:"category_name"`
	CategorySlug *string  `json:"category_slug"`
	CountryID    string   `json:"country_id"`
}

// ProductRow is the raw scan target for catalog queries. Differently shaped
// tables and views alias some columns, so both spellings are scanned and
// reconciled in MapProductRow.
type ProductRow struct {
	ProductID   int64    `gorm:"column:product_id"`
	ProductName string   `gorm:"column:product_name"`
	Price       *float64 `gorm:"column:price"`
	Image       *string  `gorm:"column:image"`
	AvgRating   *float64 `gorm:"column:avg_rating"`
	Rating      *float64 `gorm:"column:rating"`
	ReviewCount *int64   `gorm:"column:review_count"`
	CategoryID  int64    `gorm:"column:category_id"`
	Category    *string  `gorm:"column:category"`
	CategoryName *string `gorm:"column:category_name"`
	CountryID   string   `gorm:"column:country_id"`
}

// MapProductRow normalizes a raw row into the canonical projection. Pure:
// missing optional fields become nulls (rating) or zeros (price, review
// count); the category slug is derived only when a label is present.
func MapProductRow(row ProductRow) CatalogProduct {
	p := CatalogProduct{
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		Image:       row.Image,
		CategoryID:  row.CategoryID,
		CountryID:   row.CountryID,
	}

	if row.Price != nil {
		p.Price = *row.Price
	}
	if row.ReviewCount != nil {
		p.ReviewCount = *row.ReviewCount
	}

	p.AvgRating = row.AvgRating
	if p.AvgRating == nil {
		p.AvgRating = row.Rating
	}

	name := row.CategoryName
	if name == nil {
		name = row.Category
	}
	if name != nil {
		p.CategoryName = name
		slug := util.Slugify(*name)
		p.CategorySlug = &slug
	}

	return p
}

// MapProductRows maps a result set in order.
func MapProductRows(rows []ProductRow) []CatalogProduct {
	products := make([]CatalogProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, MapProductRow(row))
	}
	return products
}

// CategoryRef identifies a resolved category filter.
type CategoryRef struct {
	CategoryID int64  `gorm:"column:category_id" json:"category_id"`
	CountryID  string `gorm:"column:country_id" json:"country_id"`
	Category   string `gorm:"column:category" json:"category"`
}

// CategorySummary is a category with its product count and slug, as served by
// the categories listing.
type CategorySummary struct {
	CategoryID   int64  `gorm:"column:category_id" json:"category_id"`
	CountryID    string `gorm:"column:country_id" json:"country_id"`
	Category     string `gorm:"column:category" json:"category"`
	ProductCount int64  `gorm:"column:product_count" json:"product_count"`
	Slug         string `gorm:"-" json:"slug"`
}

// CountryStats is the per-country aggregate served by the insights board.
type CountryStats struct {
	CountryID    string   `gorm:"column:country_id" json:"country_id"`
	Country      string   `gorm:"column:country" json:"country"`
	ProductCount int64    `gorm:"column:product_count" json:"product_count"`
	AvgPrice     *float64 `gorm:"column:avg_price" json:"avg_price"`
	AvgRating    *float64 `gorm:"column:avg_rating" json:"avg_rating"`
}
