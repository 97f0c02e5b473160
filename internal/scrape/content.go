package scrape

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

var mainSelectors = []string{
	"main",
	`[role="main"]`,
	"#MainContent",
	"div.main-content",
	"article",
	"body",
}

const noiseSelector = "script, style, noscript, template, svg, nav, header, footer, form, iframe"

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// MainContent returns the readable content of a page as markdown. It
// prefers a semantic main region and falls back to the whole body. The
// document is not modified.
func MainContent(doc *goquery.Document, pageURL string) string {
	if doc == nil {
		return ""
	}
	for _, sel := range mainSelectors {
		region := doc.Find(sel).First()
		if region.Length() == 0 {
			continue
		}
		clone := region.Clone()
		clone.Find(noiseSelector).Remove()
		fallback := collapseSpace(visibleText(clone))
		if fallback == "" {
			continue
		}
		return htmlToMarkdown(clone, pageURL, fallback)
	}
	return ""
}

func htmlToMarkdown(sel *goquery.Selection, pageURL, fallback string) string {
	frag, err := goquery.OuterHtml(sel)
	if err != nil || frag == "" {
		return fallback
	}
	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}
	md, err := mdConverter.ConvertString(frag, opts...)
	if err != nil || strings.TrimSpace(md) == "" {
		return fallback
	}
	return strings.TrimSpace(md)
}
