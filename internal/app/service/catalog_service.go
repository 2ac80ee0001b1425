package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ikkim/amazocart-backend/config"
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/app/repository"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/ikkim/amazocart-backend/pkg/cache"
	"github.com/ikkim/amazocart-backend/pkg/logger"
	"github.com/ikkim/amazocart-backend/pkg/variant"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// hotSorts are the sort modes precomputed by the hot tier.
var hotSorts = []string{
	repository.SortPopular,
	repository.SortRating,
	repository.SortPriceLow,
	repository.SortPriceHigh,
	repository.SortNewest,
}

// fastSearchTerms are queries that mean "show me the best sellers". They are
// answered from the precomputed popular list instead of the search index.
var fastSearchTerms = map[string]struct{}{
	"best seller":   {},
	"best sellers":  {},
	"bestseller":    {},
	"best-selling":  {},
	"best selling":  {},
	"top seller":    {},
	"top sellers":   {},
	"popular items": {},
	"인기 상품":         {},
	"베스트셀러":         {},
	"베스트 셀러":        {},
}

var countryPattern = regexp.MustCompile(`^[A-Za-z]{2,3}$`)

const (
	defaultListLimit   = 20
	maxListLimit       = 48
	maxPopularLimit    = 64
	maxCacheableLimit  = 64
	variantCandidates  = 30
	countrySampleLimit = 20
)

// ListOptions are the raw listing parameters before normalization.
type ListOptions struct {
	Limit    int
	Offset   int
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Query    string
	Cursor   *int64
	Country  string
}

// ListResult carries the page plus its cache class. TTL zero means the
// response must not advertise client caching.
type ListResult struct {
	Products   []model.CatalogProduct
	TTL        time.Duration
	NextCursor *int64
}

// VariantsResult is the variant bundle for one product.
type VariantsResult struct {
	Variants   []model.CatalogProduct `json:"variants"`
	SearchTerm *string                `json:"searchTerm"`
}

type CatalogService interface {
	ListProducts(opts ListOptions) (*ListResult, error)
	PopularProducts(country string, limit int) ([]model.CatalogProduct, time.Duration, error)
	GetProduct(id int64, country string) (*model.CatalogProduct, time.Duration, error)
	GetVariants(id int64, country string) (*VariantsResult, time.Duration, error)
	ProductsByCategory(categoryID int64, country string, limit int) ([]model.CatalogProduct, error)
	ListCategories(country string) ([]model.CategorySummary, time.Duration, error)
	CountryStats() ([]model.CountryStats, time.Duration, error)
	WarmHotCache()
	RefreshHotCache()
}

type catalogService struct {
	repo  repository.CatalogRepository
	cache *cache.Service
	caps  db.Capabilities
	cfg   config.CacheConfig
}

func NewCatalogService(repo repository.CatalogRepository, cacheSvc *cache.Service, caps db.Capabilities, cfg config.CacheConfig) CatalogService {
	return &catalogService{
		repo:  repo,
		cache: cacheSvc,
		caps:  caps,
		cfg:   cfg,
	}
}

// normalizeCountry uppercases a 2-3 letter country code; anything else is
// treated as no filter.
func normalizeCountry(country string) string {
	trimmed := strings.TrimSpace(country)
	if !countryPattern.MatchString(trimmed) {
		return ""
	}
	return strings.ToUpper(trimmed)
}

func normalizeSort(sort string) string {
	switch sort {
	case repository.SortPopular, repository.SortRating, repository.SortPriceLow,
		repository.SortPriceHigh, repository.SortNewest:
		return sort
	default:
		return repository.SortPopular
	}
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func countryKey(country string) string {
	if country == "" {
		return "ALL"
	}
	return country
}

func isHotSort(sort string) bool {
	for _, s := range hotSorts {
		if s == sort {
			return true
		}
	}
	return false
}

func sliceWindow(rows []model.CatalogProduct, offset, limit int) []model.CatalogProduct {
	if offset >= len(rows) {
		return []model.CatalogProduct{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// ListProducts routes a listing request through the read tiers: generic cache,
// hot tier, bounded search window, popular snapshot, then the filtered scan.
func (s *catalogService) ListProducts(opts ListOptions) (*ListResult, error) {
	country := normalizeCountry(opts.Country)
	sort := normalizeSort(opts.Sort)
	limit := clampLimit(opts.Limit, defaultListLimit, maxListLimit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	searchTerm := strings.TrimSpace(opts.Query)
	hasSearch := len([]rune(searchTerm)) >= 2
	hasPriceFilter := opts.MinPrice != nil || opts.MaxPrice != nil

	// Tier 1: generic cache for the default storefront pages.
	cacheable := opts.Query == "" && opts.Category == "" && !hasPriceFilter &&
		offset == 0 && limit <= maxCacheableLimit
	cacheKey := ""
	if cacheable {
		cacheKey = fmt.Sprintf("products:%s:%s:%d", countryKey(country), sort, limit)
		if cached, ok := s.cache.Generic.Get(cacheKey); ok {
			if products, ok := cached.([]model.CatalogProduct); ok {
				return &ListResult{Products: products, TTL: s.cfg.TTLShort}, nil
			}
		}
	}

	// Tier 2: hot tier slice.
	canUseHot := !hasSearch && opts.Category == "" && !hasPriceFilter &&
		opts.Cursor == nil && isHotSort(sort) && offset+limit <= s.cfg.HotLimit
	if canUseHot {
		if rows, ok := s.cache.Hot.Get(sort, country); ok && len(rows) > 0 {
			slice := sliceWindow(rows, offset, limit)
			if cacheKey != "" {
				s.cache.Generic.Set(cacheKey, slice, s.cfg.TTLShort)
			}
			return &ListResult{Products: slice, TTL: s.cfg.TTLShort}, nil
		}
	}

	// Tier 3: bounded search window.
	if hasSearch {
		return s.searchProducts(searchTerm, opts, country, sort, limit, offset)
	}

	// Tier 4: popular snapshot for the first landing page.
	if s.caps.PopularSnapshot && opts.Category == "" && !hasPriceFilter &&
		sort == repository.SortPopular && offset == 0 {
		products, err := s.repo.PopularSnapshot(country, limit)
		if err != nil {
			return nil, err
		}
		return &ListResult{Products: products}, nil
	}

	// Tier 5: general filtered scan.
	filter := repository.CatalogFilter{
		Country:  country,
		MinPrice: opts.MinPrice,
		MaxPrice: opts.MaxPrice,
		Sort:     sort,
		Limit:    limit,
		Offset:   offset,
	}
	if sort == repository.SortNewest {
		filter.Cursor = opts.Cursor
	}
	if opts.Category != "" {
		refs := s.repo.ResolveCategories(opts.Category, country)
		if len(refs) == 0 {
			// Unknown category reads as an empty shelf, not an error.
			return &ListResult{Products: []model.CatalogProduct{}}, nil
		}
		filter.Categories = refs
	}

	products, err := s.repo.FilteredScan(filter)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Products: products}
	if filter.Cursor != nil && len(products) == limit {
		next := products[len(products)-1].ProductID
		result.NextCursor = &next
	}
	if cacheKey != "" {
		s.cache.Generic.Set(cacheKey, products, s.cfg.TTLShort)
		result.TTL = s.cfg.TTLShort
	}
	return result, nil
}

func (s *catalogService) searchProducts(term string, opts ListOptions, country, sort string, limit, offset int) (*ListResult, error) {
	minPrice, maxPrice := "", ""
	if opts.MinPrice != nil {
		minPrice = fmt.Sprintf("%g", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%g", *opts.MaxPrice)
	}
	categoryKey := opts.Category
	if categoryKey == "" {
		categoryKey = "all"
	}
	searchKey := fmt.Sprintf("search:%s:%s:%s:%s:%s:%s:%d:%d",
		countryKey(country), term, categoryKey, sort, minPrice, maxPrice, limit, offset)

	if cached, ok := s.cache.Generic.Get(searchKey); ok {
		if products, ok := cached.([]model.CatalogProduct); ok {
			return &ListResult{Products: products, TTL: s.cfg.TTLSearch}, nil
		}
	}

	var refs []model.CategoryRef
	if opts.Category != "" {
		refs = s.repo.ResolveCategories(opts.Category, "")
		if len(refs) == 0 {
			return &ListResult{Products: []model.CatalogProduct{}}, nil
		}
	}

	// Best-seller style queries skip the search index entirely when the
	// popular list is warm.
	normalized := strings.Join(strings.Fields(strings.ToLower(term)), " ")
	if _, fast := fastSearchTerms[normalized]; fast {
		if rows, ok := s.cache.Hot.Get(repository.SortPopular, country); ok && len(rows) > 0 {
			slice := sliceWindow(rows, offset, limit)
			s.cache.Generic.Set(searchKey, slice, s.cfg.TTLSearch)
			return &ListResult{Products: slice, TTL: s.cfg.TTLSearch}, nil
		}
	}

	candidateLimit := limit * 2
	if candidateLimit < 60 {
		candidateLimit = 60
	}
	if candidateLimit > 80 {
		candidateLimit = 80
	}

	products, err := s.repo.SearchWindow(term, repository.CatalogFilter{
		Country:    country,
		Categories: refs,
		MinPrice:   opts.MinPrice,
		MaxPrice:   opts.MaxPrice,
		Sort:       sort,
		Limit:      limit,
		Offset:     offset,
	}, candidateLimit)
	if err != nil {
		return nil, err
	}

	s.cache.Generic.Set(searchKey, products, s.cfg.TTLSearch)
	return &ListResult{Products: products, TTL: s.cfg.TTLSearch}, nil
}

// PopularProducts serves the landing rail from the snapshot table when
// available, falling back to a popular-ordered scan.
func (s *catalogService) PopularProducts(country string, limit int) ([]model.CatalogProduct, time.Duration, error) {
	country = normalizeCountry(country)
	limit = clampLimit(limit, defaultListLimit, maxPopularLimit)

	key := fmt.Sprintf("popular:%s:%d", countryKey(country), limit)
	if cached, ok := s.cache.Generic.Get(key); ok {
		if products, ok := cached.([]model.CatalogProduct); ok {
			return products, s.cfg.TTLPopular, nil
		}
	}

	var products []model.CatalogProduct
	var err error
	if s.caps.PopularSnapshot {
		products, err = s.repo.PopularSnapshot(country, limit)
	} else {
		products, err = s.repo.SortedList(country, repository.SortPopular, limit)
	}
	if err != nil {
		return nil, 0, err
	}

	s.cache.Generic.Set(key, products, s.cfg.TTLPopular)
	return products, s.cfg.TTLPopular, nil
}

func (s *catalogService) GetProduct(id int64, country string) (*model.CatalogProduct, time.Duration, error) {
	country = normalizeCountry(country)

	key := fmt.Sprintf("product:%d:%s", id, countryKey(country))
	if cached, ok := s.cache.Generic.Get(key); ok {
		if product, ok := cached.(*model.CatalogProduct); ok {
			return product, s.cfg.TTLLong, nil
		}
	}

	product, err := s.repo.FindByID(id, country)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}

	s.cache.Generic.Set(key, product, s.cfg.TTLLong)
	return product, s.cfg.TTLLong, nil
}

// GetVariants finds the listings that are the same underlying product as the
// target: token search first, then progressively looser fallbacks, then a
// variant-key filter to cut near-miss noise.
func (s *catalogService) GetVariants(id int64, country string) (*VariantsResult, time.Duration, error) {
	country = normalizeCountry(country)

	key := fmt.Sprintf("variants:%d:%s", id, countryKey(country))
	if cached, ok := s.cache.Generic.Get(key); ok {
		if result, ok := cached.(*VariantsResult); ok {
			return result, s.cfg.TTLShort, nil
		}
	}

	target, err := s.repo.FindByID(id, country)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrProductNotFound
		}
		return nil, 0, err
	}

	tokens := variant.BuildSearchTokens(target.ProductName)
	if len(tokens) == 0 {
		return &VariantsResult{Variants: []model.CatalogProduct{*target}}, s.cfg.TTLShort, nil
	}
	term := strings.Join(tokens, " ")

	rows, err := s.repo.FindByTokens(tokens, country, variantCandidates)
	if err != nil {
		return nil, 0, err
	}

	if len(rows) < 3 {
		rows, err = s.repo.FindByNameLike(tokens[0], country, variantCandidates)
		if err != nil {
			return nil, 0, err
		}
	}

	if len(rows) < 3 && target.CategoryID != 0 {
		raw := strings.Fields(strings.ToLower(target.ProductName))
		if len(raw) > 2 {
			raw = raw[:2]
		}
		if firstTwo := strings.Join(raw, " "); firstTwo != "" {
			rows, err = s.repo.FindByCategoryAndName(target.CategoryID, target.CountryID, firstTwo, variantCandidates)
			if err != nil {
				return nil, 0, err
			}
		}
	}

	if len(rows) < 2 && target.CategoryID != 0 {
		rows, err = s.repo.FindByCategory(target.CategoryID, target.CountryID, variantCandidates, true)
		if err != nil {
			return nil, 0, err
		}
	}

	// Keep only candidates sharing the target's variant key, unless that
	// leaves too few to be useful.
	if targetKey := variant.BuildKey(target.ProductName); targetKey != "" {
		filtered := make([]model.CatalogProduct, 0, len(rows))
		for _, p := range rows {
			if variant.BuildKey(p.ProductName) == targetKey {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) >= 2 {
			rows = filtered
		}
	}

	found := false
	for _, p := range rows {
		if p.ProductID == target.ProductID {
			found = true
			break
		}
	}
	if !found {
		rows = append([]model.CatalogProduct{*target}, rows...)
	}

	result := &VariantsResult{Variants: rows, SearchTerm: &term}
	s.cache.Generic.Set(key, result, s.cfg.TTLShort)
	return result, s.cfg.TTLShort, nil
}

func (s *catalogService) ProductsByCategory(categoryID int64, country string, limit int) ([]model.CatalogProduct, error) {
	country = normalizeCountry(country)
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.FindByCategory(categoryID, country, limit, false)
}

func (s *catalogService) ListCategories(country string) ([]model.CategorySummary, time.Duration, error) {
	country = normalizeCountry(country)

	key := "categories:" + countryKey(country)
	if cached, ok := s.cache.Generic.Get(key); ok {
		if summaries, ok := cached.([]model.CategorySummary); ok {
			return summaries, s.cfg.TTLLong, nil
		}
	}

	summaries, err := s.repo.ListCategories(country)
	if err != nil {
		return nil, 0, err
	}

	s.cache.Generic.Set(key, summaries, s.cfg.TTLLong)
	return summaries, s.cfg.TTLLong, nil
}

func (s *catalogService) CountryStats() ([]model.CountryStats, time.Duration, error) {
	if cached, ok := s.cache.Generic.Get("stats:countries"); ok {
		if stats, ok := cached.([]model.CountryStats); ok {
			return stats, s.cfg.TTLLong, nil
		}
	}

	stats, err := s.repo.CountryStats()
	if err != nil {
		return nil, 0, err
	}

	s.cache.Generic.Set("stats:countries", stats, s.cfg.TTLLong)
	return stats, s.cfg.TTLLong, nil
}

// hotTargets derives the countries worth precomputing: a sample of what is
// actually in the store, the configured defaults, and the ALL pseudo-country.
func (s *catalogService) hotTargets() []string {
	targets := []string{"ALL"}
	seen := map[string]struct{}{"ALL": {}}

	add := func(country string) {
		if _, dup := seen[country]; dup {
			return
		}
		seen[country] = struct{}{}
		targets = append(targets, country)
	}

	for _, c := range s.cfg.DefaultCountries {
		add(strings.ToUpper(c))
	}

	countries, err := s.repo.DistinctCountries(countrySampleLimit)
	if err != nil {
		logger.Warn("Failed to sample countries for hot cache, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return targets
	}
	for _, c := range countries {
		add(strings.ToUpper(c))
	}
	return targets
}

// RefreshHotCache recomputes every (sort, country) hot entry. Failures are
// isolated per pair: a broken partition never blocks the rest of the sweep,
// and the previous entry stays in place until a refresh succeeds.
func (s *catalogService) RefreshHotCache() {
	start := time.Now()
	refreshed, failed := 0, 0

	for _, country := range s.hotTargets() {
		for _, sort := range hotSorts {
			rows, err := s.repo.SortedList(country, sort, s.cfg.HotLimit)
			if err != nil {
				failed++
				logger.Warn("Hot cache refresh failed for entry", map[string]interface{}{
					"country": country,
					"sort":    sort,
					"error":   err.Error(),
				})
				continue
			}
			s.cache.Hot.Set(sort, country, rows)
			refreshed++
		}
	}

	logger.Info("Hot cache refresh completed", map[string]interface{}{
		"refreshed":   refreshed,
		"failed":      failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// WarmHotCache is the startup warm pass.
func (s *catalogService) WarmHotCache() {
	logger.Info("Warming hot cache...")
	s.RefreshHotCache()
}
