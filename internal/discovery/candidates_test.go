package discovery

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/storefront-insights/internal/model"
)

const homepage = `<html><body>
<nav>
  <a href="/pages/about-acme">Our Story</a>
  <a href="/policies/privacy-policy">Privacy Policy</a>
  <a href="https://www.acme.com/policies/refund-policy">Refunds</a>
  <a href="https://twitter.com/about">About on Twitter</a>
  <a href="/products/about-face-serum">About Face Serum</a>
  <a href="#faq">FAQ</a>
  <a href="/pages/faq">FAQs</a>
  <a href="/account/help">Help</a>
</nav>
</body></html>`

func homepageDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homepage))
	require.NoError(t, err)
	return doc
}

func TestCandidates_LinksBeforeStaticPaths(t *testing.T) {
	f := NewFinder(nil)

	got := f.Candidates(model.PageKindAbout, homepageDoc(t), "https://acme.com")
	require.NotEmpty(t, got)
	assert.Equal(t, "https://acme.com/pages/about-acme", got[0])
	assert.Equal(t, []string{
		"https://acme.com/pages/about-acme",
		"https://acme.com/pages/about",
		"https://acme.com/pages/about-us",
		"https://acme.com/about",
		"https://acme.com/about-us",
		"https://acme.com/pages/our-story",
	}, got)
}

func TestCandidates_DedupesStaticAgainstLinks(t *testing.T) {
	f := NewFinder(nil)

	got := f.Candidates(model.PageKindPrivacy, homepageDoc(t), "https://acme.com")
	assert.Equal(t, []string{
		"https://acme.com/policies/privacy-policy",
		"https://acme.com/pages/privacy-policy",
		"https://acme.com/privacy-policy",
		"https://acme.com/privacy",
	}, got)
}

func TestCandidates_WWWIsSameSite(t *testing.T) {
	f := NewFinder(nil)

	got := f.Candidates(model.PageKindRefund, homepageDoc(t), "https://acme.com")
	require.NotEmpty(t, got)
	assert.Equal(t, "https://www.acme.com/policies/refund-policy", got[0])
	assert.Contains(t, got, "https://acme.com/returns")
}

func TestCandidates_SkipsFragmentsAndExcluded(t *testing.T) {
	f := NewFinder(nil)

	got := f.Candidates(model.PageKindFAQ, homepageDoc(t), "https://acme.com")
	assert.Equal(t, "https://acme.com/pages/faq", got[0])
	assert.NotContains(t, got, "https://acme.com/account/help")
	assert.Len(t, got, len(StaticPaths[model.PageKindFAQ]))
}

func TestCandidates_NilHomepage(t *testing.T) {
	f := NewFinder(nil)

	got := f.Candidates(model.PageKindAbout, nil, "https://acme.com/")
	assert.Len(t, got, len(StaticPaths[model.PageKindAbout]))
	assert.Equal(t, "https://acme.com/pages/about", got[0])
}

func TestStaticPaths_CoverEveryKind(t *testing.T) {
	for _, k := range model.AllPageKinds() {
		assert.NotEmpty(t, StaticPaths[k], k.String())
		assert.NotNil(t, keywordPatterns[k], k.String())
	}
}
