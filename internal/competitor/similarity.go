package competitor

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/storefront-insights/internal/model"
)

// DefaultIndustry is used when no catalog category matches a known bucket.
const DefaultIndustry = "E-commerce"

// Term weights of the similarity score.
const (
	categoryWeight = 0.5
	priceWeight    = 0.3
	socialWeight   = 0.2
)

var industryBuckets = []struct {
	name     string
	keywords []string
}{
	{"fashion", []string{"fashion", "clothing", "apparel"}},
	{"beauty", []string{"beauty", "cosmetics", "skincare"}},
	{"electronics", []string{"electronics", "tech", "gadgets"}},
}

// Industry labels a catalog by keyword buckets over its product categories.
// Buckets are checked in order and the first hit wins.
func Industry(products []model.Product) string {
	var cats []string
	for _, p := range products {
		if c := strings.ToLower(strings.TrimSpace(p.Category)); c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return DefaultIndustry
	}
	joined := strings.Join(cats, " ")
	for _, b := range industryBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(joined, kw) {
				return cases.Title(language.English).String(b.name)
			}
		}
	}
	return DefaultIndustry
}

// Similarity scores two storefronts in [0, 1]. Terms whose inputs are
// missing on either side contribute nothing. The score is symmetric.
func Similarity(a, b *model.StorefrontInsight) float64 {
	if a == nil || b == nil {
		return 0
	}
	var score float64

	catsA, catsB := a.Categories(), b.Categories()
	if len(catsA) > 0 && len(catsB) > 0 {
		score += categoryWeight * jaccard(catsA, catsB)
	}

	avgA, okA := a.AveragePrice()
	avgB, okB := b.AveragePrice()
	if okA && okB {
		diff := math.Abs(avgA-avgB) / math.Max(avgA, avgB)
		score += priceWeight * (1 - diff)
	}

	socA, socB := platformSet(a.SocialHandles), platformSet(b.SocialHandles)
	if len(socA) > 0 || len(socB) > 0 {
		score += socialWeight * jaccard(socA, socB)
	}

	return math.Max(0, math.Min(1, score))
}

func platformSet(h model.SocialHandles) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range h.Populated() {
		out[string(p)] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	union := len(a)
	inter := 0
	for k := range b {
		if _, ok := a[k]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
