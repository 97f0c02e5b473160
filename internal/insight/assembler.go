// Package insight assembles a StorefrontInsight for one website. It owns the
// record lifecycle: pending, in_progress, then completed or failed.
package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/storefront-insights/internal/discovery"
	"github.com/sells-group/storefront-insights/internal/fetcher"
	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/store"
)

// DefaultWorkers bounds the homepage extractor fan-out.
const DefaultWorkers = 4

// Summarizer is the language-model surface the assembler needs. It never
// returns errors; empty results mean nothing usable was produced.
type Summarizer interface {
	ExtractFAQs(ctx context.Context, text string) []model.FAQ
	SummarizeBrand(ctx context.Context, text string) string
}

// Analyzer produces insights for a URL. The competitor comparator and the
// HTTP API depend on this rather than on *Assembler.
type Analyzer interface {
	Analyze(ctx context.Context, websiteURL string, opts AnalyzeOptions) (*model.StorefrontInsight, error)
}

// AnalyzeOptions tunes a single analysis.
type AnalyzeOptions struct {
	// Refresh re-runs the analysis even when a completed record exists.
	Refresh bool
}

// Options configures an Assembler.
type Options struct {
	Workers int
	Finder  *discovery.Finder
}

// Assembler runs the analysis sequence against a storefront.
type Assembler struct {
	store      store.Store
	fetcher    fetcher.Fetcher
	summarizer Summarizer
	finder     *discovery.Finder
	prober     *discovery.Prober
	workers    int

	flight singleflight.Group
}

// New creates an Assembler.
func New(st store.Store, f fetcher.Fetcher, sum Summarizer, opts Options) *Assembler {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Finder == nil {
		opts.Finder = discovery.NewFinder(nil)
	}
	return &Assembler{
		store:      st,
		fetcher:    f,
		summarizer: sum,
		finder:     opts.Finder,
		prober:     discovery.NewProber(f),
		workers:    opts.Workers,
	}
}

// Analyze returns the insight for websiteURL, reusing a completed record
// unless opts.Refresh is set. Concurrent calls for the same URL share one
// analysis. The shared run is detached from caller cancellation so a
// disconnecting client cannot leave the record in_progress.
func (a *Assembler) Analyze(ctx context.Context, websiteURL string, opts AnalyzeOptions) (*model.StorefrontInsight, error) {
	base, err := NormalizeURL(websiteURL)
	if err != nil {
		return nil, err
	}

	key := base
	if opts.Refresh {
		key += "|refresh"
	}

	detached := context.WithoutCancel(ctx)
	v, err, shared := a.flight.Do(key, func() (any, error) {
		return a.run(detached, base, opts)
	})
	if shared {
		zap.L().Debug("insight: joined in-flight analysis", zap.String("url", base))
	}
	if err != nil {
		return nil, err
	}

	// Each caller gets its own copy of the shared record.
	out := *v.(*model.StorefrontInsight)
	out.Normalize()
	return &out, nil
}

func (a *Assembler) run(ctx context.Context, base string, opts AnalyzeOptions) (rec *model.StorefrontInsight, err error) {
	log := zap.L().With(zap.String("url", base))
	start := time.Now()

	existing, err := a.store.GetInsightByURL(ctx, base)
	switch {
	case err == nil && existing.Status == model.StatusCompleted && !opts.Refresh:
		log.Info("insight: reusing completed analysis", zap.String("id", existing.ID))
		return existing, nil
	case err == nil:
		rec = existing
	case store.IsNotFound(err):
		rec, err = a.store.CreateInsight(ctx, base)
		if err != nil {
			return nil, eris.Wrap(err, "insight: create record")
		}
	default:
		return nil, eris.Wrap(err, "insight: lookup record")
	}

	if err := a.store.UpdateInsightStatus(ctx, rec.ID, model.StatusInProgress, ""); err != nil {
		return nil, eris.Wrap(err, "insight: mark in progress")
	}
	rec.MarkInProgress()
	log.Info("insight: starting analysis", zap.String("id", rec.ID), zap.Bool("refresh", opts.Refresh))

	defer func() {
		if r := recover(); r != nil {
			err = a.fail(ctx, rec, fmt.Errorf("panic: %v", r))
			rec = nil
		}
	}()

	page, err := a.fetcher.Fetch(ctx, base)
	if err != nil {
		return nil, a.fail(ctx, rec, err)
	}

	draft := a.extract(ctx, base, page)

	draft.ID = rec.ID
	draft.WebsiteURL = rec.WebsiteURL
	draft.CreatedAt = rec.CreatedAt
	draft.Status = model.StatusCompleted
	draft.ErrorMessage = ""
	if err := a.store.SaveInsight(ctx, draft); err != nil {
		return nil, a.fail(ctx, rec, err)
	}

	log.Info("insight: analysis complete",
		zap.String("id", draft.ID),
		zap.Bool("recognized_platform", draft.IsRecognizedPlatform),
		zap.Int("products", len(draft.ProductCatalog)),
		zap.Int("faqs", len(draft.FAQs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return draft, nil
}

// fail persists the failed status and returns the ScrapingError for cause.
func (a *Assembler) fail(ctx context.Context, rec *model.StorefrontInsight, cause error) error {
	rec.MarkFailed(cause.Error())
	if err := a.store.UpdateInsightStatus(ctx, rec.ID, model.StatusFailed, rec.ErrorMessage); err != nil {
		zap.L().Error("insight: persist failed status",
			zap.String("url", rec.WebsiteURL),
			zap.Error(err),
		)
	}
	zap.L().Error("insight: analysis failed",
		zap.String("url", rec.WebsiteURL),
		zap.String("id", rec.ID),
		zap.Int("upstream_status", fetcher.StatusOf(cause)),
		zap.Error(cause),
	)
	return &ScrapingError{URL: rec.WebsiteURL, Err: cause}
}
