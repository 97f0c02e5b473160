// Package discovery locates and reads a storefront's secondary pages
// (policies, FAQ, about) by probing an ordered list of candidate URLs.
package discovery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/scrape"
)

// StaticPaths are the conventional locations tried after homepage links.
var StaticPaths = map[model.PageKind][]string{
	model.PageKindPrivacy: {
		"/pages/privacy-policy",
		"/policies/privacy-policy",
		"/privacy-policy",
		"/privacy",
	},
	model.PageKindRefund: {
		"/pages/refund-policy",
		"/policies/refund-policy",
		"/pages/return-policy",
		"/refund-policy",
		"/returns",
	},
	model.PageKindFAQ: {
		"/pages/faq",
		"/faq",
		"/pages/faqs",
		"/faqs",
		"/pages/help",
		"/help",
		"/pages/support",
		"/support",
		"/pages/questions",
		"/questions",
	},
	model.PageKindAbout: {
		"/pages/about",
		"/pages/about-us",
		"/about",
		"/about-us",
		"/pages/our-story",
	},
}

var keywordPatterns = map[model.PageKind]*regexp.Regexp{
	model.PageKindPrivacy: regexp.MustCompile(`(?i)privacy`),
	model.PageKindRefund:  regexp.MustCompile(`(?i)refund|return[-_ ]?polic|returns`),
	model.PageKindFAQ:     regexp.MustCompile(`(?i)\bfaqs?\b|faq's|frequently asked|help`),
	model.PageKindAbout:   regexp.MustCompile(`(?i)about|our[-_ ]story`),
}

// Finder builds candidate lists for page kinds.
type Finder struct {
	matcher *PathMatcher
}

// NewFinder creates a Finder. A nil matcher uses the default exclusions.
func NewFinder(matcher *PathMatcher) *Finder {
	if matcher == nil {
		matcher = NewPathMatcher(nil)
	}
	return &Finder{matcher: matcher}
}

// Candidates returns the ordered, deduplicated URLs to probe for kind:
// same-site homepage links whose text or href mention the kind, then the
// static conventional paths.
func (f *Finder) Candidates(kind model.PageKind, homepage *goquery.Document, baseURL string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" || f.matcher.IsExcluded(u) {
			return
		}
		key := strings.TrimRight(strings.ToLower(u), "/")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}

	if re := keywordPatterns[kind]; re != nil && homepage != nil {
		homepage.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href := s.AttrOr("href", "")
			if !re.MatchString(s.Text()) && !re.MatchString(href) {
				return
			}
			abs := scrape.Resolve(baseURL, href)
			if abs == "" || !scrape.SameSite(baseURL, abs) {
				return
			}
			add(abs)
		})
	}

	for _, p := range StaticPaths[kind] {
		add(scrape.Resolve(baseURL, p))
	}
	return out
}
