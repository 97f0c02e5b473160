package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/storefront-insights/internal/fetcher"
	"github.com/sells-group/storefront-insights/internal/fetcher/mocks"
	"github.com/sells-group/storefront-insights/internal/model"
)

type pageServer struct {
	mu   sync.Mutex
	hits []string
	srv  *httptest.Server
}

func newPageServer(t *testing.T, pages map[string]string) *pageServer {
	t.Helper()
	ps := &pageServer{}
	ps.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.hits = append(ps.hits, r.URL.Path)
		ps.mu.Unlock()
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *pageServer) paths(p ...string) []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = ps.srv.URL + s
	}
	return out
}

func testFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second})
}

func TestProbe_StopsAtFirstUsable(t *testing.T) {
	ps := newPageServer(t, map[string]string{
		"/empty":   `<html><body><main><script>x()</script></main></body></html>`,
		"/privacy": `<html><body><main><h1>Privacy</h1><p>We keep data safe.</p></main></body></html>`,
		"/later":   `<html><body><main>Never fetched</main></body></html>`,
	})

	p := NewProber(testFetcher())
	found, ok := p.Probe(context.Background(), model.PageKindPrivacy, ps.paths("/missing", "/empty", "/privacy", "/later"), nil)
	require.True(t, ok)
	assert.Equal(t, model.PageKindPrivacy, found.Kind)
	assert.Equal(t, ps.srv.URL+"/privacy", found.URL)
	assert.Contains(t, found.Text, "We keep data safe.")
	assert.Equal(t, []string{"/missing", "/empty", "/privacy"}, ps.hits)
}

func TestProbe_AcceptRejects(t *testing.T) {
	ps := newPageServer(t, map[string]string{
		"/help": `<html><body><main>Contact our team</main></body></html>`,
		"/faq":  `<html><body><main>Q: Do you ship? A: Yes.</main></body></html>`,
	})

	accept := func(_ context.Context, text string) bool { return strings.Contains(text, "Q:") }

	p := NewProber(testFetcher())
	found, ok := p.Probe(context.Background(), model.PageKindFAQ, ps.paths("/help", "/faq"), accept)
	require.True(t, ok)
	assert.Equal(t, ps.srv.URL+"/faq", found.URL)
}

func TestProbe_NothingUsable(t *testing.T) {
	ps := newPageServer(t, map[string]string{})

	p := NewProber(testFetcher())
	found, ok := p.Probe(context.Background(), model.PageKindAbout, ps.paths("/a", "/b"), nil)
	assert.False(t, ok)
	assert.Nil(t, found)
	assert.Len(t, ps.hits, 2)
}

func TestProbe_SkipsBlockedPage(t *testing.T) {
	ps := newPageServer(t, map[string]string{
		"/challenge": `<html><body>Checking your browser before accessing</body></html>`,
		"/about":     `<html><body><main>Founded in 2010.</main></body></html>`,
	})

	p := NewProber(testFetcher())
	found, ok := p.Probe(context.Background(), model.PageKindAbout, ps.paths("/challenge", "/about"), nil)
	require.True(t, ok)
	assert.Equal(t, ps.srv.URL+"/about", found.URL)
}

func TestProbe_CancelledContext(t *testing.T) {
	ps := newPageServer(t, map[string]string{"/a": `<html><body>a</body></html>`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProber(testFetcher())
	_, ok := p.Probe(ctx, model.PageKindAbout, ps.paths("/a"), nil)
	assert.False(t, ok)
	assert.Empty(t, ps.hits)
}

func mockPage(t *testing.T, url, html string) *fetcher.Page {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &fetcher.Page{URL: url, FinalURL: url, StatusCode: http.StatusOK, HTML: html, Doc: doc}
}

func TestProbe_FetchOutcomes(t *testing.T) {
	const (
		down    = "https://acme.com/pages/refund-policy"
		blocked = "https://acme.com/policies/refund-policy"
		refunds = "https://acme.com/refund-policy"
		unused  = "https://acme.com/returns"
	)
	challenge := mockPage(t, blocked, `<html><body><main>Just a moment...</main></body></html>`)
	challenge.Blocked = true
	challenge.BlockType = fetcher.BlockCloudflare

	f := mocks.NewMockFetcher(t)
	f.On("Fetch", mock.Anything, down).
		Return(nil, &fetcher.TransportError{URL: down, Err: context.DeadlineExceeded}).Once()
	f.On("Fetch", mock.Anything, blocked).Return(challenge, nil).Once()
	f.On("Fetch", mock.Anything, refunds).
		Return(mockPage(t, refunds, `<html><body><main><p>Returns within 30 days.</p></main></body></html>`), nil).Once()

	p := NewProber(f)
	found, ok := p.Probe(context.Background(), model.PageKindRefund, []string{down, blocked, refunds, unused}, nil)
	require.True(t, ok)
	assert.Equal(t, refunds, found.URL)
	assert.Contains(t, found.Text, "Returns within 30 days.")
	f.AssertNotCalled(t, "Fetch", mock.Anything, unused)
}
