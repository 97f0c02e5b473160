package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var titleSeparators = []string{" - ", " | ", " – ", " — ", " :: "}

// BrandName derives the storefront's name from the page title, falling
// back to og:site_name and then the first h1.
func BrandName(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	if title := collapseSpace(doc.Find("title").First().Text()); title != "" {
		for _, sep := range titleSeparators {
			if i := strings.Index(title, sep); i > 0 {
				title = title[:i]
			}
		}
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if site := strings.TrimSpace(doc.Find(`meta[property="og:site_name"]`).AttrOr("content", "")); site != "" {
		return site
	}
	return collapseSpace(doc.Find("h1").First().Text())
}
