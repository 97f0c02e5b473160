package fetcher

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves storefront pages and JSON endpoints.
type Fetcher interface {
	// Fetch performs a GET and parses the response as HTML.
	Fetch(ctx context.Context, url string) (*Page, error)

	// FetchJSON performs a GET and decodes the JSON body into v.
	FetchJSON(ctx context.Context, url string, v any) error
}

// Page is a fetched and parsed HTML document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	HTML       string
	Doc        *goquery.Document

	// Blocked is set when the body looks like an anti-bot challenge. The
	// page is still returned; callers decide whether the content is usable.
	Blocked   bool
	BlockType BlockType
}
