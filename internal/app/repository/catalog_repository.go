package repository

import (
	"fmt"
	"strings"

	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"github.com/ikkim/amazocart-backend/pkg/util"
	"gorm.io/gorm"
)

// Catalog sort modes. Anything else falls back to popular.
const (
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
)

// CatalogFilter is the full predicate set for a catalog listing query.
type CatalogFilter struct {
	Country    string // uppercase country code, "" for all
	Categories []model.CategoryRef
	MinPrice   *float64
	MaxPrice   *float64
	Sort       string
	Cursor     *int64 // keyset cursor, only meaningful with SortNewest
	Limit      int
	Offset     int
}

// CatalogRepository is the read gateway over the product store. All queries
// are parameterized; the only interpolated identifiers are table names taken
// from the validated capability map.
type CatalogRepository interface {
	SortedList(country, sort string, limit int) ([]model.CatalogProduct, error)
	SearchWindow(term string, filter CatalogFilter, candidateLimit int) ([]model.CatalogProduct, error)
	PopularSnapshot(country string, limit int) ([]model.CatalogProduct, error)
	FilteredScan(filter CatalogFilter) ([]model.CatalogProduct, error)
	FindByID(id int64, country string) (*model.CatalogProduct, error)
	FindByTokens(tokens []string, country string, limit int) ([]model.CatalogProduct, error)
	FindByNameLike(namePart, country string, limit int) ([]model.CatalogProduct, error)
	FindByCategoryAndName(categoryID int64, country, namePart string, limit int) ([]model.CatalogProduct, error)
	FindByCategory(categoryID int64, country string, limit int, idTieBreak bool) ([]model.CatalogProduct, error)
	ResolveCategories(value, country string) []model.CategoryRef
	ListCategories(country string) ([]model.CategorySummary, error)
	CountryStats() ([]model.CountryStats, error)
	DistinctCountries(limit int) ([]string, error)
}

type catalogRepository struct {
	db   *gorm.DB
	caps db.Capabilities
}

func NewCatalogRepository(gdb *gorm.DB, caps db.Capabilities) CatalogRepository {
	return &catalogRepository{db: gdb, caps: caps}
}

// catalogColumns is the projection every catalog query selects. The rating and
// category columns are aliased to the canonical names the row mapper expects.
const catalogColumns = `
	p.product_id, p.product_name, p.price, p.image,
	p.rating AS avg_rating, p.review_count,
	p.category_id, p.country_id,
	c.category AS category_name`

const categoryJoin = `
	LEFT JOIN categories c
	  ON p.category_id = c.category_id
	 AND p.country_id = c.country_id`

// sortOrder returns the ORDER BY expression for a sort mode. Every mode ends
// in product_id DESC so pagination is stable across equal keys.
func sortOrder(sort string) string {
	switch sort {
	case SortPriceLow:
		return "p.price ASC, p.product_id DESC"
	case SortPriceHigh:
		return "p.price DESC, p.product_id DESC"
	case SortRating:
		return "p.rating DESC NULLS LAST, p.review_count DESC, p.product_id DESC"
	case SortNewest:
		return "p.product_id DESC"
	default:
		return "p.review_count DESC, p.rating DESC NULLS LAST, p.product_id DESC"
	}
}

func (r *catalogRepository) scan(sql string, params []interface{}) ([]model.CatalogProduct, error) {
	var rows []model.ProductRow
	if err := r.db.Raw(sql, params...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return model.MapProductRows(rows), nil
}

// SortedList reads the top rows for a (country, sort) pair. This is the query
// behind hot-tier refreshes, so it must stay cheap: one pass over the
// country's partition, bounded by limit.
func (r *catalogRepository) SortedList(country, sort string, limit int) ([]model.CatalogProduct, error) {
	params := []interface{}{}
	where := ""
	if country != "" && country != "ALL" {
		where = "WHERE p.country_id = ?"
		params = append(params, country)
	}
	params = append(params, limit)

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		%s
		ORDER BY %s
		LIMIT ?`,
		catalogColumns, r.caps.ProductTable(country), categoryJoin, where, sortOrder(sort))

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Failed to read sorted product list", err, map[string]interface{}{
			"country": country,
			"sort":    sort,
			"limit":   limit,
		})
		return nil, err
	}
	return products, nil
}

// SearchWindow runs a full-text search bounded to a small scored candidate
// window, then re-sorts the window by the requested comparator and paginates.
func (r *catalogRepository) SearchWindow(term string, filter CatalogFilter, candidateLimit int) ([]model.CatalogProduct, error) {
	whereParts := []string{
		"to_tsvector('english', product_name) @@ plainto_tsquery('english', ?)",
		"review_count > 0",
	}
	params := []interface{}{term, term} // rank expression, then the WHERE match

	if filter.Country != "" {
		whereParts = append(whereParts, "country_id = ?")
		params = append(params, filter.Country)
	}
	if filter.MinPrice != nil {
		whereParts = append(whereParts, "price >= ?")
		params = append(params, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		whereParts = append(whereParts, "price <= ?")
		params = append(params, *filter.MaxPrice)
	}
	if len(filter.Categories) > 0 {
		pairs := make([]string, 0, len(filter.Categories))
		for _, ref := range filter.Categories {
			pairs = append(pairs, "(category_id = ? AND country_id = ?)")
			params = append(params, ref.CategoryID, ref.CountryID)
		}
		whereParts = append(whereParts, "("+strings.Join(pairs, " OR ")+")")
	}

	var order string
	switch filter.Sort {
	case SortPriceLow:
		order = "ps.price ASC, ps.product_id DESC"
	case SortPriceHigh:
		order = "ps.price DESC, ps.product_id DESC"
	case SortRating:
		order = "ps.rating DESC NULLS LAST, ps.review_count DESC, ps.product_id DESC"
	case SortNewest:
		order = "ps.product_id DESC"
	default:
		order = "ps.ft_score DESC, ps.review_count DESC, ps.rating DESC NULLS LAST, ps.product_id DESC"
	}

	sql := fmt.Sprintf(`
		SELECT
			ps.product_id, ps.product_name, ps.price, ps.image,
			ps.rating AS avg_rating, ps.review_count,
			ps.category_id, ps.country_id,
			c.category AS category_name
		FROM (
			SELECT
				product_id, product_name, price, image,
				rating, review_count, category_id, country_id,
				ts_rank(to_tsvector('english', product_name), plainto_tsquery('english', ?)) AS ft_score
			FROM %s
			WHERE %s
			ORDER BY ft_score DESC
			LIMIT %d
		) ps
		LEFT JOIN categories c
		  ON ps.category_id = c.category_id
		 AND ps.country_id = c.country_id
		ORDER BY %s
		LIMIT ? OFFSET ?`,
		r.caps.ProductTable(filter.Country), strings.Join(whereParts, " AND "), candidateLimit, order)
	params = append(params, filter.Limit, filter.Offset)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Product search query failed", err, map[string]interface{}{
			"term":    term,
			"country": filter.Country,
			"sort":    filter.Sort,
		})
		return nil, err
	}
	return products, nil
}

// PopularSnapshot reads from the precomputed popular_snapshot table. Callers
// must check the capability flag first.
func (r *catalogRepository) PopularSnapshot(country string, limit int) ([]model.CatalogProduct, error) {
	params := []interface{}{}
	where := ""
	if country != "" {
		where = "WHERE p.country_id = ?"
		params = append(params, country)
	}
	params = append(params, limit)

	sql := fmt.Sprintf(`
		SELECT %s
		FROM popular_snapshot p %s
		%s
		ORDER BY p.review_count DESC, p.rating DESC NULLS LAST, p.product_id DESC
		LIMIT ?`,
		catalogColumns, categoryJoin, where)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Failed to read popular snapshot", err, map[string]interface{}{
			"country": country,
		})
		return nil, err
	}
	return products, nil
}

// FilteredScan is the general listing query: category, country and price
// predicates over the base table with offset pagination, or keyset pagination
// via Cursor when sorting by newest.
func (r *catalogRepository) FilteredScan(filter CatalogFilter) ([]model.CatalogProduct, error) {
	params := []interface{}{}
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		WHERE 1=1`,
		catalogColumns, r.caps.ProductTable(filter.Country), categoryJoin)

	if len(filter.Categories) > 0 {
		pairs := make([]string, 0, len(filter.Categories))
		for _, ref := range filter.Categories {
			pairs = append(pairs, "(p.category_id = ? AND p.country_id = ?)")
			params = append(params, ref.CategoryID, ref.CountryID)
		}
		sql += " AND (" + strings.Join(pairs, " OR ") + ")"
	}
	if filter.Country != "" {
		sql += " AND p.country_id = ?"
		params = append(params, filter.Country)
	}
	if filter.MinPrice != nil {
		sql += " AND p.price >= ?"
		params = append(params, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		sql += " AND p.price <= ?"
		params = append(params, *filter.MaxPrice)
	}
	if filter.Cursor != nil && filter.Sort == SortNewest {
		sql += " AND p.product_id < ?"
		params = append(params, *filter.Cursor)
	}

	sql += " ORDER BY " + sortOrder(filter.Sort)
	sql += " LIMIT ? OFFSET ?"
	params = append(params, filter.Limit, filter.Offset)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Filtered product scan failed", err, map[string]interface{}{
			"country": filter.Country,
			"sort":    filter.Sort,
			"limit":   filter.Limit,
			"offset":  filter.Offset,
		})
		return nil, err
	}
	return products, nil
}

// FindByID loads a single product. Returns gorm.ErrRecordNotFound when the
// row does not exist.
func (r *catalogRepository) FindByID(id int64, country string) (*model.CatalogProduct, error) {
	params := []interface{}{id}
	where := ""
	if country != "" {
		where = "AND p.country_id = ?"
		params = append(params, country)
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		WHERE p.product_id = ? %s`,
		catalogColumns, r.caps.ProductTable(country), categoryJoin, where)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Failed to find product by ID", err, map[string]interface{}{
			"product_id": id,
			"country":    country,
		})
		return nil, err
	}
	if len(products) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &products[0], nil
}

// FindByTokens finds products whose names match all of the given prefix
// tokens, best-reviewed first. Used for variant candidate discovery.
func (r *catalogRepository) FindByTokens(tokens []string, country string, limit int) ([]model.CatalogProduct, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	prefixes := make([]string, 0, len(tokens))
	for _, t := range tokens {
		prefixes = append(prefixes, t+":*")
	}
	tsquery := strings.Join(prefixes, " & ")

	params := []interface{}{tsquery}
	where := ""
	if country != "" {
		where = "AND p.country_id = ?"
		params = append(params, country)
	}
	params = append(params, limit)

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		WHERE to_tsvector('english', p.product_name) @@ to_tsquery('english', ?)
		%s
		ORDER BY p.review_count DESC, p.rating DESC NULLS LAST, p.product_id DESC
		LIMIT ?`,
		catalogColumns, r.caps.ProductTable(country), categoryJoin, where)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Token search for variants failed", err, map[string]interface{}{
			"tsquery": tsquery,
			"country": country,
		})
		return nil, err
	}
	return products, nil
}

// FindByNameLike is the looser variant fallback: substring match on the name.
func (r *catalogRepository) FindByNameLike(namePart, country string, limit int) ([]model.CatalogProduct, error) {
	params := []interface{}{"%" + strings.ToLower(namePart) + "%"}
	where := ""
	if country != "" {
		where = "AND p.country_id = ?"
		params = append(params, country)
	}
	params = append(params, limit)

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		WHERE LOWER(p.product_name) LIKE ?
		%s
		ORDER BY p.review_count DESC, p.rating DESC NULLS LAST, p.product_id DESC
		LIMIT ?`,
		catalogColumns, r.caps.ProductTable(country), categoryJoin, where)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Name substring search failed", err, map[string]interface{}{
			"name_part": namePart,
			"country":   country,
		})
		return nil, err
	}
	return products, nil
}

// FindByCategoryAndName narrows variant candidates to the target's own
// category with a substring match.
func (r *catalogRepository) FindByCategoryAndName(categoryID int64, country, namePart string, limit int) ([]model.CatalogProduct, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		WHERE p.category_id = ? AND p.country_id = ?
		  AND LOWER(p.product_name) LIKE ?
		ORDER BY p.review_count DESC, p.rating DESC NULLS LAST, p.product_id DESC
		LIMIT ?`,
		catalogColumns, r.caps.ProductTable(country), categoryJoin)

	products, err := r.scan(sql, []interface{}{categoryID, country, "%" + strings.ToLower(namePart) + "%", limit})
	if err != nil {
		logger.Error("Category-scoped name search failed", err, map[string]interface{}{
			"category_id": categoryID,
			"country":     country,
		})
		return nil, err
	}
	return products, nil
}

// FindByCategory lists a category's products best-reviewed first. Category
// browsing skips the product_id tie-break; variant fallbacks keep it so their
// candidate sets stay deterministic.
func (r *catalogRepository) FindByCategory(categoryID int64, country string, limit int, idTieBreak bool) ([]model.CatalogProduct, error) {
	params := []interface{}{categoryID}
	where := ""
	if country != "" {
		where = "AND p.country_id = ?"
		params = append(params, country)
	}
	params = append(params, limit)

	order := "p.review_count DESC, p.rating DESC NULLS LAST"
	if idTieBreak {
		order = sortOrder(SortPopular)
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s p %s
		WHERE p.category_id = ?
		%s
		ORDER BY %s
		LIMIT ?`,
		catalogColumns, r.caps.ProductTable(country), categoryJoin, where, order)

	products, err := r.scan(sql, params)
	if err != nil {
		logger.Error("Category product query failed", err, map[string]interface{}{
			"category_id": categoryID,
			"country":     country,
		})
		return nil, err
	}
	return products, nil
}

// ResolveCategories maps a user-supplied category value to concrete
// (category_id, country_id) pairs: exact label match, then case-insensitive,
// then slug comparison over the full category list. Resolution failures
// degrade to an empty filter set; the caller turns that into an empty result.
func (r *catalogRepository) ResolveCategories(value, country string) []model.CategoryRef {
	if value == "" {
		return nil
	}

	params := []interface{}{value, strings.ToLower(value)}
	sql := "SELECT category_id, country_id, category FROM categories WHERE (category = ? OR LOWER(category) = ?)"
	if country != "" {
		sql += " AND country_id = ?"
		params = append(params, country)
	}

	var exact []model.CategoryRef
	if err := r.db.Raw(sql, params...).Scan(&exact).Error; err != nil {
		logger.Error("Category resolution query failed", err, map[string]interface{}{
			"value": value,
		})
		return nil
	}
	if len(exact) > 0 {
		return exact
	}

	// Slug fallback: compare the slugged input against every category label.
	allSQL := "SELECT category_id, country_id, category FROM categories"
	allParams := []interface{}{}
	if country != "" {
		allSQL += " WHERE country_id = ?"
		allParams = append(allParams, country)
	}

	var all []model.CategoryRef
	if err := r.db.Raw(allSQL, allParams...).Scan(&all).Error; err != nil {
		logger.Error("Category slug fallback query failed", err, map[string]interface{}{
			"value": value,
		})
		return nil
	}

	normalized := util.Slugify(value)
	matched := make([]model.CategoryRef, 0, 2)
	for _, ref := range all {
		if util.Slugify(ref.Category) == normalized {
			matched = append(matched, ref)
		}
	}
	return matched
}

// ListCategories returns every category with its product count, from the
// summary table when present or a GROUP BY over the base table otherwise.
func (r *catalogRepository) ListCategories(country string) ([]model.CategorySummary, error) {
	var sql string
	params := []interface{}{}

	if r.caps.CategorySummary {
		sql = `
			SELECT
				c.category_id, c.country_id, c.category,
				COALESCE(cs.product_count, 0) AS product_count
			FROM categories c
			LEFT JOIN category_summary cs
			  ON c.category_id = cs.category_id
			 AND c.country_id = cs.country_id`
		if country != "" {
			sql += " WHERE c.country_id = ?"
			params = append(params, country)
		}
		sql += " ORDER BY c.country_id, c.category"
	} else {
		sql = `
			SELECT
				c.category_id, c.country_id, c.category,
				COUNT(p.product_id) AS product_count
			FROM categories c
			LEFT JOIN products p
			  ON c.category_id = p.category_id
			 AND c.country_id = p.country_id`
		if country != "" {
			sql += " WHERE c.country_id = ?"
			params = append(params, country)
		}
		sql += " GROUP BY c.category_id, c.country_id, c.category ORDER BY c.country_id, c.category"
	}

	var summaries []model.CategorySummary
	if err := r.db.Raw(sql, params...).Scan(&summaries).Error; err != nil {
		logger.Error("Failed to list categories", err, map[string]interface{}{
			"country": country,
		})
		return nil, err
	}

	for i := range summaries {
		summaries[i].Slug = util.Slugify(summaries[i].Category)
	}
	return summaries, nil
}

// CountryStats returns per-country product counts and price/rating averages,
// preferring the summary table when it exists.
func (r *catalogRepository) CountryStats() ([]model.CountryStats, error) {
	var sql string
	if r.caps.CountrySummary {
		sql = `
			SELECT country_id, country, product_count, avg_price, avg_rating
			FROM country_summary
			ORDER BY country`
	} else {
		sql = `
			SELECT
				c.country_id, c.country,
				COUNT(p.product_id) AS product_count,
				AVG(p.price) AS avg_price,
				AVG(p.rating) AS avg_rating
			FROM countries c
			LEFT JOIN products p ON c.country_id = p.country_id
			GROUP BY c.country_id, c.country
			ORDER BY c.country`
	}

	var stats []model.CountryStats
	if err := r.db.Raw(sql).Scan(&stats).Error; err != nil {
		logger.Error("Failed to read country stats", err)
		return nil, err
	}
	return stats, nil
}

// DistinctCountries samples the country codes present in the product table.
func (r *catalogRepository) DistinctCountries(limit int) ([]string, error) {
	var countries []string
	err := r.db.Raw("SELECT DISTINCT country_id FROM products LIMIT ?", limit).Scan(&countries).Error
	if err != nil {
		logger.Error("Failed to read distinct countries", err)
		return nil, err
	}

	filtered := countries[:0]
	for _, c := range countries {
		if c != "" {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}
