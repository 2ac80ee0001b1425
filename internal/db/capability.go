package db

import (
	"regexp"
	"strings"

	"github.com/ikkim/amazocart-backend/pkg/logger"
	"gorm.io/gorm"
)

// Capabilities records which optional schema objects exist in the connected
// database. The read path uses them to route queries to summary tables and
// per-country partitions when available, and falls back to the base tables
// when they are absent. Detection runs once at startup; schema changes require
// a restart to be picked up.
type Capabilities struct {
	CategorySummary bool
	CountrySummary  bool
	PopularSnapshot bool

	// partitions maps an uppercase country code to its products partition
	// table name, e.g. "US" -> "products_us".
	partitions map[string]string
}

var partitionPattern = regexp.MustCompile(`^products_([a-z]{2,3})$`)

// ProductTable returns the table to read products for country from. Countries
// without a detected partition read from the shared products table.
func (c Capabilities) ProductTable(country string) string {
	if table, ok := c.partitions[strings.ToUpper(country)]; ok {
		return table
	}
	return "products"
}

// HasPartition reports whether a dedicated partition exists for country.
func (c Capabilities) HasPartition(country string) bool {
	_, ok := c.partitions[strings.ToUpper(country)]
	return ok
}

// PartitionCountries returns the country codes that have a dedicated partition.
func (c Capabilities) PartitionCountries() []string {
	countries := make([]string, 0, len(c.partitions))
	for country := range c.partitions {
		countries = append(countries, country)
	}
	return countries
}

// DetectCapabilities probes information_schema for the optional summary tables
// and per-country product partitions. Databases without information_schema
// (or with it unreadable) degrade to the zero value, which routes every query
// to the base tables.
func DetectCapabilities(db *gorm.DB) Capabilities {
	caps := Capabilities{partitions: map[string]string{}}

	var names []string
	err := db.Raw(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
	`).Scan(&names).Error
	if err != nil {
		logger.Warn("Schema capability probe failed, using base tables only", map[string]interface{}{
			"error": err.Error(),
		})
		return Capabilities{partitions: map[string]string{}}
	}

	for _, name := range names {
		switch name {
		case "category_summary":
			caps.CategorySummary = true
		case "country_summary":
			caps.CountrySummary = true
		case "popular_snapshot":
			caps.PopularSnapshot = true
		default:
			if m := partitionPattern.FindStringSubmatch(name); m != nil {
				caps.partitions[strings.ToUpper(m[1])] = name
			}
		}
	}

	logger.Info("Schema capabilities detected", map[string]interface{}{
		"category_summary": caps.CategorySummary,
		"country_summary":  caps.CountrySummary,
		"popular_snapshot": caps.PopularSnapshot,
		"partitions":       len(caps.partitions),
	})
	return caps
}
