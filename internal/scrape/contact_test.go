package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactDetails(t *testing.T) {
	doc := mustDoc(t, `<html><head><script>var x = "bot@sentry.io";</script></head><body>
	<p>Email us at Hello@Acme.com</p><p>or (555) 123-4567</p>
	<a href="mailto:support@acme.com?subject=Hi">Support</a>
	<a href="tel:+1%20555%20123%204567">Call</a>
	<a href="tel:+44 20 7946 0958">UK</a>
	<img src="logo@2x.png" alt="">
	<p>icon@2x.png noreply@example.com</p>
	</body></html>`)

	got := ContactDetails(doc)
	assert.Equal(t, []string{"hello@acme.com", "support@acme.com"}, got.Emails)
	// (555) 123-4567 and +1 555 123 4567 differ in digits; the UK number is distinct.
	assert.Len(t, got.Phones, 3)
	assert.Contains(t, got.Phones, "+44 20 7946 0958")
}

func TestContactDetails_DedupesPhonesByDigits(t *testing.T) {
	doc := mustDoc(t, `<html><body>
	<p>555-123-4567</p>
	<a href="tel:555.123.4567">call</a>
	</body></html>`)

	got := ContactDetails(doc)
	assert.Equal(t, []string{"555-123-4567"}, got.Phones)
}

func TestContactDetails_Empty(t *testing.T) {
	got := ContactDetails(mustDoc(t, `<html><body>No contact</body></html>`))
	assert.NotNil(t, got.Emails)
	assert.NotNil(t, got.Phones)
	assert.Empty(t, got.Emails)
	assert.Empty(t, got.Phones)
}

func TestVisibleText_SeparatesBlocks(t *testing.T) {
	doc := mustDoc(t, `<div><p>a@b.com</p><p>next</p><style>.x{}</style></div>`)
	text := visibleText(doc.Selection)
	assert.Contains(t, text, "a@b.com ")
	assert.NotContains(t, text, ".x{}")
}
