package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportantLinks(t *testing.T) {
	doc := mustDoc(t, `<html><body>
	<a href="/pages/track-order">Track your order</a>
	<a href="/pages/contact">Contact Us</a>
	<a href="https://help.acme.com">Help Center</a>
	<a href="/blogs/news">Our Blog</a>
	<a href="/pages/shipping">Shipping &amp; Delivery</a>
	<a href="/pages/size-guide">Size Guide</a>
	<a href="#">Blog anchor</a>
	<a href="/pages/empty"></a>
	</body></html>`)

	got := ImportantLinks(doc, "https://acme.com")
	assert.Equal(t, "https://acme.com/pages/track-order", got.OrderTracking)
	assert.Equal(t, "https://acme.com/pages/contact", got.ContactUs)
	assert.Equal(t, "https://acme.com/blogs/news", got.Blogs)
	assert.Equal(t, "https://acme.com/pages/shipping", got.ShippingInfo)
	assert.Equal(t, "https://acme.com/pages/size-guide", got.SizeGuide)
}

func TestImportantLinks_OneCategoryPerAnchor(t *testing.T) {
	doc := mustDoc(t, `<html><body>
	<a href="/help/tracking">Help with tracking</a>
	<a href="/support">Support</a>
	</body></html>`)

	got := ImportantLinks(doc, "https://acme.com")
	assert.Equal(t, "https://acme.com/help/tracking", got.OrderTracking)
	assert.Equal(t, "https://acme.com/support", got.ContactUs)
}

func TestImportantLinks_NilDoc(t *testing.T) {
	assert.Empty(t, ImportantLinks(nil, "https://acme.com").OrderTracking)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		href string
		want string
	}{
		{"/pages/faq", "https://acme.com/pages/faq"},
		{"pages/faq", "https://acme.com/pages/faq"},
		{"https://other.com/x", "https://other.com/x"},
		{"//cdn.shopify.com/a.png", "https://cdn.shopify.com/a.png"},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"mailto:a@b.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve("https://acme.com/", tt.href), tt.href)
	}
}

func TestSameSite(t *testing.T) {
	t.Parallel()
	assert.True(t, SameSite("https://acme.com", "https://www.acme.com/pages/faq"))
	assert.True(t, SameSite("https://acme.com", "http://ACME.com/about"))
	assert.False(t, SameSite("https://acme.com", "https://help.acme.com"))
}
