package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ikkim/amazocart-backend/config"
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports a catalog dump into the products, categories and countries tables.
// Expected sheet columns:
//
//	A product_id, B product_name, C price, D image, E rating,
//	F review_count, G category_id, H category, I country_id, J country
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, categories, countries, err := readCatalogFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d (%d categories, %d countries)\n",
		len(products), len(categories), len(countries))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	gdb := db.GetDB()
	for _, country := range countries {
		if err := gdb.Save(&country).Error; err != nil {
			log.Fatal("Failed to save country:", err)
		}
	}
	for _, category := range categories {
		if err := gdb.Save(&category).Error; err != nil {
			log.Fatal("Failed to save category:", err)
		}
	}

	batchSize := 1000
	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := gdb.CreateInBatches(products[start:end], batchSize).Error; err != nil {
			log.Fatal("Failed to insert products:", err)
		}
		fmt.Printf("Imported %d/%d products\n", end, len(products))
	}

	fmt.Println("Import completed.")
}

func readCatalogFromXLSX(filePath string) ([]model.Product, []model.Category, []model.Country, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	var products []model.Product
	categories := map[string]model.Category{}
	countries := map[string]model.Country{}

	for i, row := range rows[1:] {
		if len(row) < 9 {
			fmt.Printf("Skipping row %d: %d columns\n", i+2, len(row))
			continue
		}

		productID, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			fmt.Printf("Skipping row %d: bad product_id %q\n", i+2, row[0])
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			fmt.Printf("Skipping row %d: bad price %q\n", i+2, row[2])
			continue
		}
		categoryID, _ := strconv.ParseInt(strings.TrimSpace(row[6]), 10, 64)
		countryID := strings.ToUpper(strings.TrimSpace(row[8]))

		product := model.Product{
			ProductID:   productID,
			ProductName: strings.TrimSpace(row[1]),
			Price:       price,
			CategoryID:  categoryID,
			CountryID:   countryID,
		}
		if image := strings.TrimSpace(row[3]); image != "" {
			product.Image = &image
		}
		if ratingStr := strings.TrimSpace(row[4]); ratingStr != "" {
			if rating, err := strconv.ParseFloat(ratingStr, 64); err == nil {
				product.Rating = &rating
			}
		}
		if reviewStr := strings.TrimSpace(row[5]); reviewStr != "" {
			product.ReviewCount, _ = strconv.ParseInt(reviewStr, 10, 64)
		}
		products = append(products, product)

		if categoryID != 0 && countryID != "" {
			key := fmt.Sprintf("%d:%s", categoryID, countryID)
			categories[key] = model.Category{
				CategoryID: categoryID,
				CountryID:  countryID,
				Category:   strings.TrimSpace(row[7]),
			}
		}
		if countryID != "" && len(row) > 9 {
			countries[countryID] = model.Country{
				CountryID: countryID,
				Country:   strings.TrimSpace(row[9]),
			}
		}
	}

	categoryList := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		categoryList = append(categoryList, c)
	}
	countryList := make([]model.Country, 0, len(countries))
	for _, c := range countries {
		countryList = append(countryList, c)
	}
	return products, categoryList, countryList, nil
}
