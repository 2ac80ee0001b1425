// Package variant groups near-duplicate catalog listings (same item, different
// pack size or descriptor text) under a shared key. The normalization rules are
// heuristic and were tuned against the live catalog; they are kept as explicit
// pattern tables so the matching behavior stays testable on its own.
package variant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ikkim/amazocart-backend/internal/app/model"
)

var (
	// Battery cell sizes that collapse Amazon Basics listings into one family.
	cellPattern = regexp.MustCompile(`\b(aaa?|aa|c|d|9v|cr2032)\b`)

	boilerplatePattern = regexp.MustCompile(`(?i)amazon basics|high[- ]?performance|alkaline|batter(?:y|ies)|battery|professional|original|appearance may vary`)
	packCountPattern   = regexp.MustCompile(`(?i)\b\d+\s*(?:pack|count|ct)\b`)
	dashPackPattern    = regexp.MustCompile(`(?i)\b\d+-?pack\b`)
	separatorPattern   = regexp.MustCompile(`[_/:-]+`)
	punctuationPattern = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)

	numericPattern = regexp.MustCompile(`^[0-9]+$`)
)

// keyStopWords are dropped before picking the tokens that form a variant key.
var keyStopWords = map[string]struct{}{
	"amazon":       {},
	"basics":       {},
	"pack":         {},
	"count":        {},
	"ct":           {},
	"alkaline":     {},
	"battery":      {},
	"batteries":    {},
	"cells":        {},
	"cell":         {},
	"button":       {},
	"performance":  {},
	"high":         {},
	"lithium":      {},
	"original":     {},
	"professional": {},
	"blister":      {},
	"appearance":   {},
	"may":          {},
	"vary":         {},
	"year":         {},
	"shelf":        {},
	"life":         {},
}

// searchStopWords are dropped when deriving full-text search tokens for
// finding a product's variants in the store. The list is looser than
// keyStopWords on purpose: search needs recall, the key needs precision.
var searchStopWords = map[string]struct{}{
	"pack":         {},
	"count":        {},
	"ct":           {},
	"volt":         {},
	"voltage":      {},
	"performance":  {},
	"alkaline":     {},
	"lithium":      {},
	"batteries":    {},
	"battery":      {},
	"cells":        {},
	"cell":         {},
	"appearance":   {},
	"may":          {},
	"vary":         {},
	"original":     {},
	"professional": {},
	"high":         {},
}

var (
	searchNumPackPattern  = regexp.MustCompile(`(?i)\b\d+\s*pack\b`)
	searchDashPackPattern = regexp.MustCompile(`(?i)\b\d+-pack\b`)
	searchPackOfPattern   = regexp.MustCompile(`(?i)\bpack of \d+\b`)
)

// BuildKey derives the variant-group key for a product name. Names that
// normalize to nothing return ""; callers must substitute a synthetic per-item
// key in that case.
func BuildKey(name string) string {
	base := strings.ToLower(name)

	// Amazon Basics batteries group by cell type only (AA/AAA/C/D/9V/CR2032).
	// Listings spell the brand both with and without the space.
	if strings.Contains(base, "amazon basics") || strings.Contains(base, "amazonbasics") {
		if m := cellPattern.FindStringSubmatch(base); m != nil {
			return "amazon-basics-battery-" + m[1]
		}
	}

	cleaned := boilerplatePattern.ReplaceAllString(base, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = dashPackPattern.ReplaceAllString(cleaned, " ")
	cleaned = separatorPattern.ReplaceAllString(cleaned, " ")
	cleaned = punctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return ""
	}

	tokens := strings.Fields(cleaned)
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := keyStopWords[t]; stop {
			continue
		}
		if numericPattern.MatchString(t) || len(t) <= 1 {
			continue
		}
		filtered = append(filtered, t)
	}

	// Keep the first 2 tokens to group aggressively (typically brand + size).
	base2 := filtered
	if len(base2) == 0 {
		base2 = tokens
	}
	if len(base2) > 2 {
		base2 = base2[:2]
	}
	return strings.Join(base2, "-")
}

// BuildSearchTokens derives the tokens used to find a product's variants via
// full-text search. Returns nil when the name normalizes to nothing.
func BuildSearchTokens(name string) []string {
	cleaned := searchNumPackPattern.ReplaceAllString(name, " ")
	cleaned = searchDashPackPattern.ReplaceAllString(cleaned, " ")
	cleaned = searchPackOfPattern.ReplaceAllString(cleaned, " ")
	cleaned = separatorPattern.ReplaceAllString(cleaned, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	raw := strings.Fields(strings.ToLower(cleaned))
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, stop := searchStopWords[t]; stop {
			continue
		}
		if numericPattern.MatchString(t) || len(t) <= 1 {
			continue
		}
		tokens = append(tokens, t)
	}

	if len(tokens) > 4 {
		tokens = tokens[:4]
	}
	if len(tokens) == 0 {
		if len(raw) > 3 {
			raw = raw[:3]
		}
		tokens = raw
	}
	return tokens
}

// Group is a cluster of listings judged to be the same underlying product.
type Group struct {
	Key            string                 `json:"key"`
	Representative model.CatalogProduct   `json:"representative"`
	Variants       []model.CatalogProduct `json:"variants"`
	Images         []string               `json:"images"`
	VariantCount   int                    `json:"variant_count"`
}

type groupState struct {
	key            string
	representative model.CatalogProduct
	variants       []model.CatalogProduct
	score          float64
	images         []string
}

func score(p model.CatalogProduct) float64 {
	rating := 0.0
	if p.AvgRating != nil {
		rating = *p.AvgRating
	}
	// Price carries a tiny weight so equally reviewed items still order
	// deterministically.
	return float64(p.ReviewCount)*10 + rating + p.Price*0.0001
}

func addImage(images []string, src *string) []string {
	if src == nil || *src == "" {
		return images
	}
	for _, existing := range images {
		if existing == *src {
			return images
		}
	}
	return append(images, *src)
}

// GroupProducts collapses a product list into variant groups, in first-seen
// key order. Every input lands in exactly one group: items whose name yields
// no key get a synthetic per-item key. Within a group the highest-scoring
// non-duplicate member becomes the representative; the rest accumulate as
// variants.
func GroupProducts(items []model.CatalogProduct) []Group {
	states := make(map[string]*groupState, len(items))
	order := make([]string, 0, len(items))

	for _, item := range items {
		key := BuildKey(item.ProductName)
		if key == "" {
			if item.ProductID != 0 {
				key = fmt.Sprintf("sku:%d", item.ProductID)
			} else {
				key = "sku:" + item.ProductName
			}
		}

		existing, ok := states[key]
		candidateScore := score(item)
		if !ok {
			states[key] = &groupState{
				key:            key,
				representative: item,
				score:          candidateScore,
				images:         addImage(nil, item.Image),
			}
			order = append(order, key)
			continue
		}

		isDuplicate := item.ProductName == existing.representative.ProductName
		if !isDuplicate && item.ProductID != 0 {
			if existing.representative.ProductID == item.ProductID {
				isDuplicate = true
			}
			for _, v := range existing.variants {
				if v.ProductID == item.ProductID {
					isDuplicate = true
					break
				}
			}
		}

		existing.images = addImage(existing.images, item.Image)

		switch {
		case candidateScore > existing.score && !isDuplicate:
			// Demote the old representative to the front of the variant list.
			existing.variants = append([]model.CatalogProduct{existing.representative}, existing.variants...)
			existing.representative = item
			existing.score = candidateScore
		case !isDuplicate:
			existing.variants = append(existing.variants, item)
		}
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		st := states[key]
		groups = append(groups, Group{
			Key:            st.key,
			Representative: st.representative,
			Variants:       st.variants,
			Images:         st.images,
			VariantCount:   len(st.variants) + 1,
		})
	}
	return groups
}
