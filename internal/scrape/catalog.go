package scrape

import (
	"context"
	"encoding/json"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/fetcher"
	"github.com/sells-group/storefront-insights/internal/model"
)

const (
	catalogPath         = "/products.json?limit=250"
	maxDescriptionRunes = 500
)

var textPolicy = bluemonday.StrictPolicy()

// Entries are decoded one at a time so a malformed product cannot sink the
// rest of the listing.
type catalogResponse struct {
	Products []json.RawMessage `json:"products"`
}

type catalogEntry struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"product_type"`
	BodyHTML    string `json:"body_html"`
	Variants    []struct {
		Price json.RawMessage `json:"price"`
	} `json:"variants"`
	Images []struct {
		Src string `json:"src"`
	} `json:"images"`
}

// FetchCatalog reads the storefront's JSON product listing. Entries missing
// an id, title or handle are skipped; the rest of the catalog survives.
func FetchCatalog(ctx context.Context, f fetcher.Fetcher, baseURL string) ([]model.Product, error) {
	var resp catalogResponse
	if err := f.FetchJSON(ctx, strings.TrimRight(baseURL, "/")+catalogPath, &resp); err != nil {
		return nil, eris.Wrap(err, "scrape: fetch catalog")
	}

	products := make([]model.Product, 0, len(resp.Products))
	for i, raw := range resp.Products {
		var e catalogEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			zap.L().Warn("scrape: skipping malformed catalog entry",
				zap.String("url", baseURL),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		title := strings.TrimSpace(e.Title)
		handle := strings.TrimSpace(e.Handle)
		if e.ID == 0 || title == "" || handle == "" {
			zap.L().Warn("scrape: skipping catalog entry without identity",
				zap.String("url", baseURL),
				zap.Int("index", i),
			)
			continue
		}

		p := model.Product{
			ID:          e.ID,
			Title:       title,
			Handle:      handle,
			Vendor:      e.Vendor,
			Category:    e.ProductType,
			URL:         Resolve(baseURL, "/products/"+handle),
			Description: plainDescription(e.BodyHTML),
		}
		if len(e.Variants) > 0 {
			p.Price = parsePriceJSON(e.Variants[0].Price)
		}
		if len(e.Images) > 0 {
			p.ImageURL = Resolve(baseURL, e.Images[0].Src)
		}
		products = append(products, p)
	}
	return products, nil
}

// parsePriceJSON accepts a JSON string or number. Anything unparseable or
// negative becomes 0.
func parsePriceJSON(raw json.RawMessage) float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func plainDescription(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	text := html.UnescapeString(textPolicy.Sanitize(body))
	return truncateRunes(collapseSpace(text), maxDescriptionRunes)
}
