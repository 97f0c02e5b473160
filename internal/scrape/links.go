package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/storefront-insights/internal/model"
)

var linkPatterns = []struct {
	category model.LinkCategory
	re       *regexp.Regexp
}{
	{model.LinkOrderTracking, regexp.MustCompile(`(?i)track|tracking|order.*status`)},
	{model.LinkContactUs, regexp.MustCompile(`(?i)contact|support|help`)},
	{model.LinkBlogs, regexp.MustCompile(`(?i)blog|news|article`)},
	{model.LinkShippingInfo, regexp.MustCompile(`(?i)shipping|delivery`)},
	{model.LinkSizeGuide, regexp.MustCompile(`(?i)size.*guide|sizing`)},
}

// ImportantLinks matches anchor text against the link categories. Each
// anchor fills at most one category, and the first match per category wins.
func ImportantLinks(doc *goquery.Document, baseURL string) model.ImportantLinks {
	var out model.ImportantLinks
	if doc == nil {
		return out
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(collapseSpace(s.Text()))
		if text == "" {
			return
		}
		abs := Resolve(baseURL, s.AttrOr("href", ""))
		if abs == "" {
			return
		}
		for _, lp := range linkPatterns {
			if out.Get(lp.category) != "" || !lp.re.MatchString(text) {
				continue
			}
			out.Set(lp.category, abs)
			break
		}
	})
	return out
}
