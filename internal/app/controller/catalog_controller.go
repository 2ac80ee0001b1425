package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/amazocart-backend/internal/app/service"
	apierrors "github.com/ikkim/amazocart-backend/internal/errors"
	"github.com/ikkim/amazocart-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// setCacheHeader advertises client caching for ttl. A zero ttl means the
// response was computed fresh and must not be cached downstream.
func setCacheHeader(c *gin.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
}

func parseFloatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ListProducts returns a product page
// GET /api/products
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ListOptions{
		Limit:    parseIntQuery(c, "limit"),
		Offset:   parseIntQuery(c, "offset"),
		Category: c.Query("category"),
		MinPrice: parseFloatQuery(c, "minPrice"),
		MaxPrice: parseFloatQuery(c, "maxPrice"),
		Sort:     c.DefaultQuery("sort", "popular"),
		Query:    c.Query("q"),
		Country:  c.Query("country"),
	}
	if raw := c.Query("cursor"); raw != "" {
		cursor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warn("Invalid cursor format", map[string]interface{}{
				"cursor": raw,
			})
			apierrors.BadRequest(c, apierrors.ValidationInvalidCursor, "Invalid cursor")
			return
		}
		opts.Cursor = &cursor
	}

	result, err := ctrl.catalogService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to list products", err, map[string]interface{}{
			"sort":    opts.Sort,
			"country": opts.Country,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	setCacheHeader(c, result.TTL)
	if result.NextCursor != nil {
		c.Header("X-Next-Cursor", strconv.FormatInt(*result.NextCursor, 10))
	}
	c.JSON(http.StatusOK, result.Products)
}

// PopularProducts returns the landing page rail
// GET /api/products/popular
func (ctrl *CatalogController) PopularProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, ttl, err := ctrl.catalogService.PopularProducts(c.Query("country"), parseIntQuery(c, "limit"))
	if err != nil {
		log.Error("Failed to fetch popular products", err, map[string]interface{}{
			"country": c.Query("country"),
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	setCacheHeader(c, ttl)
	c.JSON(http.StatusOK, products)
}

// ProductsByCategory returns the products of one category
// GET /api/products/category/:categoryId
func (ctrl *CatalogController) ProductsByCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		log.Warn("Invalid category ID format", map[string]interface{}{
			"category_id": c.Param("categoryId"),
		})
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "Invalid category id")
		return
	}

	products, err := ctrl.catalogService.ProductsByCategory(categoryID, c.Query("country"), parseIntQuery(c, "limit"))
	if err != nil {
		log.Error("Failed to fetch category products", err, map[string]interface{}{
			"category_id": categoryID,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "category")
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product
// GET /api/products/:id
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": c.Param("id"),
		})
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "Invalid product id")
		return
	}

	product, ttl, err := ctrl.catalogService.GetProduct(id, c.Query("country"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			apierrors.NotFound(c, apierrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	setCacheHeader(c, ttl)
	c.JSON(http.StatusOK, product)
}

// GetVariants returns the variant bundle for one product
// GET /api/products/:id/variants
func (ctrl *CatalogController) GetVariants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": c.Param("id"),
		})
		apierrors.BadRequest(c, apierrors.ValidationInvalidID, "Invalid product id")
		return
	}

	result, ttl, err := ctrl.catalogService.GetVariants(id, c.Query("country"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found for variants", map[string]interface{}{
				"product_id": id,
			})
			apierrors.NotFound(c, apierrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch variants", err, map[string]interface{}{
			"product_id": id,
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	setCacheHeader(c, ttl)
	c.JSON(http.StatusOK, result)
}

// ListCategories returns the category index with product counts
// GET /api/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, ttl, err := ctrl.catalogService.ListCategories(c.Query("country"))
	if err != nil {
		log.Error("Failed to fetch categories", err, map[string]interface{}{
			"country": c.Query("country"),
		})
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "category")
		return
	}

	setCacheHeader(c, ttl)
	c.JSON(http.StatusOK, categories)
}

// CountryStats returns per-country catalog aggregates
// GET /api/stats/countries
func (ctrl *CatalogController) CountryStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, ttl, err := ctrl.catalogService.CountryStats()
	if err != nil {
		log.Error("Failed to fetch country stats", err, nil)
		apierrors.ParseAndRespond(c, http.StatusInternalServerError, err, "country")
		return
	}

	setCacheHeader(c, ttl)
	c.JSON(http.StatusOK, stats)
}

func parseIntQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
