package query

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Shown in the suggestion dropdown before anything is typed
var (
	TrendingSearches = []string{"Wireless headphones", "Smart watch", "Running shoes", "Laptop", "iPhone case"}
	RecentSearches   = []string{"Nike shoes", "MacBook Pro", "Gaming chair"}
)

const (
	DefaultSuggestThreshold = 0.3
	DefaultSuggestLimit     = 5
)

// SuggestOptions tunes approximate matching. Threshold runs from 0 (exact
// substring only) to 1 (anything matches).
type SuggestOptions struct {
	Threshold float64
	Limit     int
}

func DefaultSuggestOptions() SuggestOptions {
	return SuggestOptions{Threshold: DefaultSuggestThreshold, Limit: DefaultSuggestLimit}
}

type scored struct {
	product models.Product
	score   float64
}

// Suggest returns the best approximate matches for text, best first. An empty
// query returns the trending and recent lists and does no matching at all.
func Suggest(products []models.Product, text string, opts SuggestOptions) models.Suggestions {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return models.Suggestions{
			Products: []models.Product{},
			Trending: slices.Clone(TrendingSearches),
			Recent:   slices.Clone(RecentSearches),
		}
	}

	if opts.Limit <= 0 {
		opts.Limit = DefaultSuggestLimit
	}

	matches := make([]scored, 0, len(products))
	for _, p := range products {
		s := productScore(p, q)
		if s <= opts.Threshold {
			matches = append(matches, scored{product: p, score: s})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		return cmp.Compare(a.score, b.score)
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	out := make([]models.Product, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.product)
	}
	return models.Suggestions{Query: text, Products: out}
}

// productScore is the best field score over name, brand, category and tags
func productScore(p models.Product, q string) float64 {
	best := fieldScore(p.Name, q)
	for _, field := range append([]string{p.Brand, p.Category}, p.Tags...) {
		if best == 0 {
			break
		}
		best = min(best, fieldScore(field, q))
	}
	return best
}

// fieldScore is 0 for a substring hit. Otherwise it is the smallest edit
// distance between q and any window of the field within one rune of q's
// length, divided by the length of q and clamped to 1.
func fieldScore(field, q string) float64 {
	field = strings.ToLower(field)
	if field == "" {
		return 1
	}
	if strings.Contains(field, q) {
		return 0
	}

	qLen := utf8.RuneCountInString(q)
	runes := []rune(field)

	best := qLen
	for size := max(qLen-1, 1); size <= qLen+1 && best > 0; size++ {
		if len(runes) <= size {
			best = min(best, fuzzy.LevenshteinDistance(q, field))
			break
		}
		for i := 0; i+size <= len(runes) && best > 0; i++ {
			best = min(best, fuzzy.LevenshteinDistance(q, string(runes[i:i+size])))
		}
	}

	return min(float64(best)/float64(qLen), 1)
}
