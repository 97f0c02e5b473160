package scrape

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/storefront-insights/internal/model"
)

// HeroCategory labels heuristically scraped featured products.
const HeroCategory = "Hero Product"

const maxHeroPerSelector = 6

// heroSelectors run from most to least specific. The first selector that
// yields a usable product wins; results are never merged across selectors.
var heroSelectors = []string{
	".hero-product",
	".featured-product",
	`[class*="featured"] [class*="product-card"]`,
	".product-card",
	"[data-product-id]",
	".product-item",
	".grid-product",
}

const (
	heroTitleSelector = ".product-title, .product-name, .card__heading, .product-card__title, h3, h4, h2"
	heroPriceSelector = ".price, .product-price, .money, [class*=\"price\"]"
	heroLinkSelector  = `a[href*="/products/"]`
)

var priceRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// HeroProducts scans the homepage for featured products.
func HeroProducts(doc *goquery.Document, baseURL string) []model.Product {
	if doc == nil {
		return nil
	}
	for _, sel := range heroSelectors {
		found := heroFromSelection(doc.Find(sel), baseURL)
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

func heroFromSelection(sel *goquery.Selection, baseURL string) []model.Product {
	var out []model.Product
	seen := make(map[string]struct{})

	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxHeroPerSelector {
			return false
		}
		title := firstText(s.Find(heroTitleSelector))
		href := heroLink(s)
		if title == "" || href == "" {
			return true
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		abs := Resolve(baseURL, href)
		p := model.Product{
			ID:       int64(len(out) + 1),
			Title:    title,
			Handle:   handleFromURL(abs),
			Category: HeroCategory,
			Price:    parsePriceText(firstText(s.Find(heroPriceSelector))),
			URL:      abs,
			IsHero:   true,
		}
		if img := s.Find("img").First(); img.Length() > 0 {
			src := img.AttrOr("src", "")
			if src == "" {
				src = img.AttrOr("data-src", "")
			}
			p.ImageURL = Resolve(baseURL, src)
		}
		out = append(out, p)
		return true
	})
	return out
}

func heroLink(s *goquery.Selection) string {
	if goquery.NodeName(s) == "a" {
		if href := s.AttrOr("href", ""); strings.Contains(href, "/products/") {
			return href
		}
	}
	return s.Find(heroLinkSelector).First().AttrOr("href", "")
}

func firstText(sel *goquery.Selection) string {
	var out string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = collapseSpace(s.Text())
		return out == ""
	})
	return out
}

func handleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return path.Base(strings.TrimRight(u.Path, "/"))
}

func parsePriceText(text string) float64 {
	m := priceRe.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
