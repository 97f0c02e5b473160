package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/fetcher"
	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/scrape"
)

// Found is the first candidate that yielded usable content.
type Found struct {
	Kind model.PageKind
	URL  string
	Text string
}

// AcceptFunc lets a caller reject extracted content and keep probing.
type AcceptFunc func(ctx context.Context, text string) bool

// Prober tries candidates in order and stops at the first usable page.
// Failures are logged and skipped; nothing here is fatal.
type Prober struct {
	fetcher fetcher.Fetcher
}

// NewProber creates a Prober.
func NewProber(f fetcher.Fetcher) *Prober {
	return &Prober{fetcher: f}
}

// Probe fetches each candidate until one yields non-empty main content
// that accept (if non-nil) approves.
func (p *Prober) Probe(ctx context.Context, kind model.PageKind, candidates []string, accept AcceptFunc) (*Found, bool) {
	log := zap.L().With(zap.String("kind", kind.String()))

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			log.Warn("discovery: probe cancelled", zap.Error(ctx.Err()))
			return nil, false
		}

		page, err := p.fetcher.Fetch(ctx, candidate)
		if err != nil {
			log.Warn("discovery: candidate fetch failed, trying next",
				zap.String("candidate", candidate),
				zap.Error(err),
			)
			continue
		}
		if page.Blocked {
			log.Warn("discovery: candidate blocked, trying next",
				zap.String("candidate", candidate),
				zap.String("block_type", string(page.BlockType)),
			)
			continue
		}

		text := scrape.MainContent(page.Doc, page.FinalURL)
		if text == "" {
			log.Warn("discovery: candidate has no readable content, trying next",
				zap.String("candidate", candidate),
			)
			continue
		}
		if accept != nil && !accept(ctx, text) {
			log.Debug("discovery: candidate content rejected, trying next",
				zap.String("candidate", candidate),
			)
			continue
		}

		log.Debug("discovery: candidate accepted", zap.String("candidate", candidate))
		return &Found{Kind: kind, URL: candidate, Text: text}, true
	}

	log.Debug("discovery: no candidate yielded content", zap.Int("candidates", len(candidates)))
	return nil, false
}
