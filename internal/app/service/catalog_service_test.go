package service

import (
	"testing"
	"time"

	"github.com/ikkim/amazocart-backend/config"
	"github.com/ikkim/amazocart-backend/internal/app/model"
	"github.com/ikkim/amazocart-backend/internal/app/repository"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/ikkim/amazocart-backend/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubCatalogRepo records which data source each planner decision hits.
type stubCatalogRepo struct {
	calls []string

	sorted     []model.CatalogProduct
	search     []model.CatalogProduct
	snapshot   []model.CatalogProduct
	scan       []model.CatalogProduct
	byID       map[int64]model.CatalogProduct
	byTokens   []model.CatalogProduct
	byNameLike []model.CatalogProduct
	byCategory []model.CatalogProduct
	categories []model.CategoryRef
	summaries  []model.CategorySummary
	stats      []model.CountryStats
	countries  []string

	lastFilter    repository.CatalogFilter
	lastCandidate int
}

func (s *stubCatalogRepo) SortedList(country, sort string, limit int) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "SortedList")
	return s.sorted, nil
}

func (s *stubCatalogRepo) SearchWindow(term string, filter repository.CatalogFilter, candidateLimit int) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "SearchWindow")
	s.lastFilter = filter
	s.lastCandidate = candidateLimit
	return s.search, nil
}

func (s *stubCatalogRepo) PopularSnapshot(country string, limit int) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "PopularSnapshot")
	return s.snapshot, nil
}

func (s *stubCatalogRepo) FilteredScan(filter repository.CatalogFilter) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "FilteredScan")
	s.lastFilter = filter
	return s.scan, nil
}

func (s *stubCatalogRepo) FindByID(id int64, country string) (*model.CatalogProduct, error) {
	s.calls = append(s.calls, "FindByID")
	if p, ok := s.byID[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindByTokens(tokens []string, country string, limit int) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "FindByTokens")
	return s.byTokens, nil
}

func (s *stubCatalogRepo) FindByNameLike(namePart, country string, limit int) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "FindByNameLike")
	return s.byNameLike, nil
}

func (s *stubCatalogRepo) FindByCategoryAndName(categoryID int64, country, namePart string, limit int) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "FindByCategoryAndName")
	return s.byCategory, nil
}

func (s *stubCatalogRepo) FindByCategory(categoryID int64, country string, limit int, idTieBreak bool) ([]model.CatalogProduct, error) {
	s.calls = append(s.calls, "FindByCategory")
	return s.byCategory, nil
}

func (s *stubCatalogRepo) ResolveCategories(value, country string) []model.CategoryRef {
	s.calls = append(s.calls, "ResolveCategories")
	return s.categories
}

func (s *stubCatalogRepo) ListCategories(country string) ([]model.CategorySummary, error) {
	s.calls = append(s.calls, "ListCategories")
	return s.summaries, nil
}

func (s *stubCatalogRepo) CountryStats() ([]model.CountryStats, error) {
	s.calls = append(s.calls, "CountryStats")
	return s.stats, nil
}

func (s *stubCatalogRepo) DistinctCountries(limit int) ([]string, error) {
	s.calls = append(s.calls, "DistinctCountries")
	return s.countries, nil
}

func (s *stubCatalogRepo) called(name string) bool {
	for _, c := range s.calls {
		if c == name {
			return true
		}
	}
	return false
}

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time          { return c.current }
func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		TTLShort:           15 * time.Minute,
		TTLLong:            2 * time.Hour,
		TTLSearch:          30 * time.Minute,
		TTLPopular:         30 * time.Minute,
		HotTTL:             30 * time.Minute,
		HotLimit:           500,
		HotRefreshInterval: 20 * time.Minute,
		DefaultCountries:   []string{"US", "UK", "CA", "IN"},
	}
}

func newTestService(repo *stubCatalogRepo, caps db.Capabilities) (CatalogService, *cache.Service, *fakeClock) {
	clock := &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cacheSvc := &cache.Service{
		Generic: cache.NewStoreWithClock(clock.Now),
		Hot:     cache.NewHotStoreWithClock(30*time.Minute, clock.Now),
	}
	svc := NewCatalogService(repo, cacheSvc, caps, testCacheConfig())
	return svc, cacheSvc, clock
}

func catalogItems(ids ...int64) []model.CatalogProduct {
	items := make([]model.CatalogProduct, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.CatalogProduct{ProductID: id, ProductName: "Item"})
	}
	return items
}

func TestListProducts_HotTierServesDefaultPage(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc, cacheSvc, _ := newTestService(repo, db.Capabilities{})

	hot := catalogItems(10, 9, 8, 7, 6, 5, 4, 3, 2, 1)
	cacheSvc.Hot.Set(repository.SortPopular, "US", hot)

	result, err := svc.ListProducts(ListOptions{Country: "US", Sort: "popular", Limit: 4})
	require.NoError(t, err)

	// The page is exactly the precomputed prefix, with no store access.
	assert.Equal(t, hot[:4], result.Products)
	assert.Empty(t, repo.calls)
	assert.Equal(t, 15*time.Minute, result.TTL)
}

func TestListProducts_HotTierOffsetSlice(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc, cacheSvc, _ := newTestService(repo, db.Capabilities{})

	cacheSvc.Hot.Set(repository.SortRating, "", catalogItems(5, 4, 3, 2, 1))

	result, err := svc.ListProducts(ListOptions{Sort: "rating", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, catalogItems(3, 2), result.Products)
	assert.Empty(t, repo.calls)
}

func TestListProducts_GenericCachePopulatedFromHotTier(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc, cacheSvc, _ := newTestService(repo, db.Capabilities{})

	cacheSvc.Hot.Set(repository.SortPopular, "US", catalogItems(3, 2, 1))

	_, err := svc.ListProducts(ListOptions{Country: "US", Sort: "popular", Limit: 2})
	require.NoError(t, err)

	cached, ok := cacheSvc.Generic.Get("products:US:popular:2")
	require.True(t, ok)
	assert.Equal(t, catalogItems(3, 2), cached)
}

func TestListProducts_ExpiredHotEntryFallsBackToScan(t *testing.T) {
	repo := &stubCatalogRepo{scan: catalogItems(42)}
	svc, cacheSvc, clock := newTestService(repo, db.Capabilities{})

	cacheSvc.Hot.Set(repository.SortPopular, "US", catalogItems(1))
	clock.Advance(31 * time.Minute)

	result, err := svc.ListProducts(ListOptions{Country: "US", Sort: "popular", Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, catalogItems(42), result.Products)
	assert.True(t, repo.called("FilteredScan"), "stale hot entries must fall through to the store")
}

func TestListProducts_BestSellerSynonymsSkipSearchIndex(t *testing.T) {
	synonyms := []string{"best seller", "Best Sellers", "bestseller", "top seller", "인기 상품", "베스트셀러"}

	for _, q := range synonyms {
		t.Run(q, func(t *testing.T) {
			repo := &stubCatalogRepo{}
			svc, cacheSvc, _ := newTestService(repo, db.Capabilities{})

			hot := catalogItems(3, 2, 1)
			cacheSvc.Hot.Set(repository.SortPopular, "US", hot)

			result, err := svc.ListProducts(ListOptions{Country: "US", Query: q, Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, hot[:2], result.Products)
			assert.False(t, repo.called("SearchWindow"), "synonym %q must not hit the search index", q)
		})
	}
}

func TestListProducts_BestSellerSynonymWithColdHotTierSearches(t *testing.T) {
	repo := &stubCatalogRepo{search: catalogItems(7)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	result, err := svc.ListProducts(ListOptions{Country: "US", Query: "best seller", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, catalogItems(7), result.Products)
	assert.True(t, repo.called("SearchWindow"))
}

func TestListProducts_SearchCandidateWindowBounds(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 10, want: 60}, // 2*10 < 60 floor
		{limit: 35, want: 70}, // within bounds
		{limit: 48, want: 80}, // capped
	}

	for _, tt := range tests {
		repo := &stubCatalogRepo{}
		svc, _, _ := newTestService(repo, db.Capabilities{})

		_, err := svc.ListProducts(ListOptions{Query: "usb cable", Limit: tt.limit})
		require.NoError(t, err)
		assert.Equal(t, tt.want, repo.lastCandidate)
	}
}

func TestListProducts_SearchResultsCached(t *testing.T) {
	repo := &stubCatalogRepo{search: catalogItems(5)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	_, err := svc.ListProducts(ListOptions{Query: "usb cable", Limit: 10})
	require.NoError(t, err)
	_, err = svc.ListProducts(ListOptions{Query: "usb cable", Limit: 10})
	require.NoError(t, err)

	count := 0
	for _, c := range repo.calls {
		if c == "SearchWindow" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the second identical search must be served from cache")
}

func TestListProducts_UnresolvableCategoryReturnsEmpty(t *testing.T) {
	repo := &stubCatalogRepo{scan: catalogItems(1)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	result, err := svc.ListProducts(ListOptions{Category: "nonexistent", Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, result.Products)
	assert.Empty(t, result.Products)
	assert.False(t, repo.called("FilteredScan"), "an unresolved category must not scan the store")
}

func TestListProducts_ResolvedCategoryFiltersScan(t *testing.T) {
	repo := &stubCatalogRepo{
		categories: []model.CategoryRef{{CategoryID: 7, CountryID: "US", Category: "Electronics"}},
		scan:       catalogItems(1),
	}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	_, err := svc.ListProducts(ListOptions{Category: "Electronics", Limit: 10})
	require.NoError(t, err)
	require.True(t, repo.called("FilteredScan"))
	assert.Equal(t, repo.categories, repo.lastFilter.Categories)
}

func TestListProducts_PopularSnapshotTier(t *testing.T) {
	repo := &stubCatalogRepo{snapshot: catalogItems(9, 8)}
	svc, _, _ := newTestService(repo, db.Capabilities{PopularSnapshot: true})

	result, err := svc.ListProducts(ListOptions{Country: "CA", Sort: "popular", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, catalogItems(9, 8), result.Products)
	assert.True(t, repo.called("PopularSnapshot"))
	assert.False(t, repo.called("FilteredScan"))
	// Snapshot pages are not client-cacheable.
	assert.Zero(t, result.TTL)
}

func TestListProducts_NewestCursorPagination(t *testing.T) {
	repo := &stubCatalogRepo{scan: catalogItems(99, 98)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	cursor := int64(100)
	result, err := svc.ListProducts(ListOptions{Sort: "newest", Cursor: &cursor, Limit: 2})
	require.NoError(t, err)

	require.True(t, repo.called("FilteredScan"))
	require.NotNil(t, repo.lastFilter.Cursor)
	assert.Equal(t, int64(100), *repo.lastFilter.Cursor)

	// Full page: hint at the next cursor.
	require.NotNil(t, result.NextCursor)
	assert.Equal(t, int64(98), *result.NextCursor)
}

func TestListProducts_PartialPageHasNoNextCursor(t *testing.T) {
	repo := &stubCatalogRepo{scan: catalogItems(99)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	cursor := int64(100)
	result, err := svc.ListProducts(ListOptions{Sort: "newest", Cursor: &cursor, Limit: 2})
	require.NoError(t, err)
	assert.Nil(t, result.NextCursor)
}

func TestListProducts_NormalizesSortAndLimit(t *testing.T) {
	repo := &stubCatalogRepo{scan: catalogItems(1)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	_, err := svc.ListProducts(ListOptions{Sort: "bogus", Limit: 9000, MinPrice: fptr(1)})
	require.NoError(t, err)
	assert.Equal(t, repository.SortPopular, repo.lastFilter.Sort)
	assert.Equal(t, 48, repo.lastFilter.Limit)
}

func fptr(v float64) *float64 { return &v }

func TestListProducts_InvalidCountryIgnored(t *testing.T) {
	repo := &stubCatalogRepo{scan: catalogItems(1)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	_, err := svc.ListProducts(ListOptions{Country: "United States", MinPrice: fptr(1), Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "", repo.lastFilter.Country)
}

func TestPopularProducts_SnapshotPreferred(t *testing.T) {
	repo := &stubCatalogRepo{snapshot: catalogItems(1), sorted: catalogItems(2)}
	svc, _, _ := newTestService(repo, db.Capabilities{PopularSnapshot: true})

	products, ttl, err := svc.PopularProducts("us", 10)
	require.NoError(t, err)
	assert.Equal(t, catalogItems(1), products)
	assert.Equal(t, 30*time.Minute, ttl)
	assert.True(t, repo.called("PopularSnapshot"))
	assert.False(t, repo.called("SortedList"))
}

func TestPopularProducts_ScanFallbackAndCache(t *testing.T) {
	repo := &stubCatalogRepo{sorted: catalogItems(3)}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	_, _, err := svc.PopularProducts("US", 10)
	require.NoError(t, err)
	_, _, err = svc.PopularProducts("US", 10)
	require.NoError(t, err)

	count := 0
	for _, c := range repo.calls {
		if c == "SortedList" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestGetProduct(t *testing.T) {
	repo := &stubCatalogRepo{byID: map[int64]model.CatalogProduct{
		7: {ProductID: 7, ProductName: "Desk Lamp"},
	}}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	product, ttl, err := svc.GetProduct(7, "US")
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", product.ProductName)
	assert.Equal(t, 2*time.Hour, ttl)

	// Second read is served from cache.
	_, _, err = svc.GetProduct(7, "US")
	require.NoError(t, err)
	count := 0
	for _, c := range repo.calls {
		if c == "FindByID" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	_, _, err = svc.GetProduct(404, "US")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetVariants_FiltersByVariantKey(t *testing.T) {
	target := model.CatalogProduct{ProductID: 1, ProductName: "AmazonBasics AA Alkaline Batteries (8-Pack)"}
	repo := &stubCatalogRepo{
		byID: map[int64]model.CatalogProduct{1: target},
		byTokens: []model.CatalogProduct{
			target,
			{ProductID: 2, ProductName: "AmazonBasics AA Alkaline Batteries (12-Pack)"},
			{ProductID: 3, ProductName: "AmazonBasics AAA Alkaline Batteries (8-Pack)"},
			{ProductID: 4, ProductName: "Stainless Steel Water Bottle"},
		},
	}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	result, _, err := svc.GetVariants(1, "US")
	require.NoError(t, err)

	// Only the AA family survives the key filter.
	require.Len(t, result.Variants, 2)
	assert.Equal(t, int64(1), result.Variants[0].ProductID)
	assert.Equal(t, int64(2), result.Variants[1].ProductID)
	require.NotNil(t, result.SearchTerm)
}

func TestGetVariants_TargetAlwaysIncluded(t *testing.T) {
	target := model.CatalogProduct{ProductID: 1, ProductName: "Stainless Steel Water Bottle 32oz"}
	repo := &stubCatalogRepo{
		byID: map[int64]model.CatalogProduct{1: target},
		byTokens: []model.CatalogProduct{
			{ProductID: 2, ProductName: "Stainless Steel Water Bottle 64oz"},
			{ProductID: 3, ProductName: "Stainless Steel Water Bottle 40oz"},
			{ProductID: 4, ProductName: "Stainless Steel Travel Mug"},
		},
	}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	result, _, err := svc.GetVariants(1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Variants[0].ProductID, "target must lead when absent from candidates")
}

func TestGetVariants_FallbackChain(t *testing.T) {
	target := model.CatalogProduct{ProductID: 1, ProductName: "Obscure Widget Deluxe", CategoryID: 5, CountryID: "US"}
	repo := &stubCatalogRepo{
		byID:       map[int64]model.CatalogProduct{1: target},
		byTokens:   nil, // token search finds nothing
		byNameLike: nil, // substring search finds nothing
		byCategory: []model.CatalogProduct{target, {ProductID: 2, ProductName: "Obscure Widget Mini", CategoryID: 5, CountryID: "US"}},
	}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	result, _, err := svc.GetVariants(1, "US")
	require.NoError(t, err)

	assert.True(t, repo.called("FindByTokens"))
	assert.True(t, repo.called("FindByNameLike"))
	assert.True(t, repo.called("FindByCategoryAndName"))
	require.Len(t, result.Variants, 2)
}

func TestGetVariants_NotFound(t *testing.T) {
	repo := &stubCatalogRepo{byID: map[int64]model.CatalogProduct{}}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	_, _, err := svc.GetVariants(404, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListCategoriesAndCountryStatsCached(t *testing.T) {
	repo := &stubCatalogRepo{
		summaries: []model.CategorySummary{{CategoryID: 1, CountryID: "US", Category: "Electronics"}},
		stats:     []model.CountryStats{{CountryID: "US", Country: "United States"}},
	}
	svc, _, _ := newTestService(repo, db.Capabilities{})

	for i := 0; i < 2; i++ {
		_, _, err := svc.ListCategories("US")
		require.NoError(t, err)
		_, _, err = svc.CountryStats()
		require.NoError(t, err)
	}

	listCalls, statCalls := 0, 0
	for _, c := range repo.calls {
		switch c {
		case "ListCategories":
			listCalls++
		case "CountryStats":
			statCalls++
		}
	}
	assert.Equal(t, 1, listCalls)
	assert.Equal(t, 1, statCalls)
}

func TestRefreshHotCache_PopulatesAllPairs(t *testing.T) {
	repo := &stubCatalogRepo{
		sorted:    catalogItems(1),
		countries: []string{"US", "DE"},
	}
	svc, cacheSvc, _ := newTestService(repo, db.Capabilities{})

	svc.RefreshHotCache()

	// ALL + 4 defaults + DE from the store sample, times 5 sorts.
	for _, country := range []string{"", "US", "UK", "CA", "IN", "DE"} {
		for _, sort := range []string{"popular", "rating", "price-low", "price-high", "newest"} {
			rows, ok := cacheSvc.Hot.Get(sort, country)
			assert.True(t, ok, "expected hot entry for %s/%s", sort, country)
			assert.Len(t, rows, 1)
		}
	}
}
