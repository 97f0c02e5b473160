package scrape

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sells-group/storefront-insights/internal/model"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

var emailFalsePositives = []string{
	"example.com",
	"sentry.io",
	"wixpress.com",
	"webpack",
}

var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".css", ".js"}

// ContactDetails collects emails and phone numbers from visible text and
// mailto:/tel: links. Both lists are deduplicated and sorted.
func ContactDetails(doc *goquery.Document) model.ContactDetails {
	emails := make(map[string]struct{})
	phones := make(map[string]string)

	addEmail := func(e string) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || !emailRe.MatchString(e) {
			return
		}
		for _, suf := range assetSuffixes {
			if strings.HasSuffix(e, suf) {
				return
			}
		}
		for _, fp := range emailFalsePositives {
			if strings.Contains(e, fp) {
				return
			}
		}
		emails[e] = struct{}{}
	}
	addPhone := func(p string) {
		p = collapseSpace(p)
		digits := digitsOf(p)
		if len(digits) < 10 || len(digits) > 15 {
			return
		}
		if _, ok := phones[digits]; !ok {
			phones[digits] = p
		}
	}

	if doc != nil {
		text := visibleText(doc.Selection)
		for _, m := range emailRe.FindAllString(text, -1) {
			addEmail(m)
		}
		for _, m := range phoneRe.FindAllString(text, -1) {
			addPhone(m)
		}

		doc.Find(`a[href]`).Each(func(_ int, s *goquery.Selection) {
			href := strings.TrimSpace(s.AttrOr("href", ""))
			lower := strings.ToLower(href)
			switch {
			case strings.HasPrefix(lower, "mailto:"):
				addr := href[len("mailto:"):]
				if i := strings.Index(addr, "?"); i >= 0 {
					addr = addr[:i]
				}
				if dec, err := url.PathUnescape(addr); err == nil {
					addr = dec
				}
				for _, a := range strings.Split(addr, ",") {
					addEmail(a)
				}
			case strings.HasPrefix(lower, "tel:"):
				num := href[len("tel:"):]
				if dec, err := url.PathUnescape(num); err == nil {
					num = dec
				}
				addPhone(num)
			}
		})
	}

	out := model.ContactDetails{
		Emails: make([]string, 0, len(emails)),
		Phones: make([]string, 0, len(phones)),
	}
	for e := range emails {
		out.Emails = append(out.Emails, e)
	}
	for _, p := range phones {
		out.Phones = append(out.Phones, p)
	}
	sort.Strings(out.Emails)
	sort.Strings(out.Phones)
	return out
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
}

// visibleText returns the text under sel without script or style content.
// Element boundaries become spaces so adjacent blocks never run together.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipText[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			b.WriteByte(' ')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
