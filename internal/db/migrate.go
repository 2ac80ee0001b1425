package db

import (
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Country{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedCountries(); err != nil {
		logger.Error("Failed to seed countries", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedCountries creates the marketplace country rows the catalog is
// partitioned by.
func seedCountries() error {
	var count int64
	if err := DB.Model(&model.Country{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Countries already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding country data...")

	countries := []model.Country{
		{CountryID: "US", Country: "United States"},
		{CountryID: "UK", Country: "United Kingdom"},
		{CountryID: "CA", Country: "Canada"},
		{CountryID: "IN", Country: "India"},
	}

	for _, country := range countries {
		if err := DB.Create(&country).Error; err != nil {
			logger.Error("Failed to create country", err, map[string]interface{}{
				"country_id": country.CountryID,
			})
			return err
		}
	}

	logger.Info("Countries seeded successfully", map[string]interface{}{
		"total_countries": len(countries),
	})
	return nil
}
