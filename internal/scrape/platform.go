// Package scrape extracts structured storefront facts from fetched pages.
// Every extractor is stateless and safe to run concurrently against the
// same parsed document.
package scrape

import "strings"

var platformIndicators = []string{
	"shopify",
	"cdn.shopify.com",
	"myshopify.com",
	"shopify-analytics",
}

// IsRecognizedPlatform reports whether the markup carries a known
// storefront-platform fingerprint.
func IsRecognizedPlatform(html string) bool {
	lower := strings.ToLower(html)
	for _, ind := range platformIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
