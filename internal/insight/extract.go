package insight

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/storefront-insights/internal/discovery"
	"github.com/sells-group/storefront-insights/internal/fetcher"
	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/scrape"
)

type extractTask struct {
	field string
	run   func()
}

// extract builds every field from the homepage and the secondary pages.
// Nothing here is fatal: each failure leaves its field empty.
func (a *Assembler) extract(ctx context.Context, base string, page *fetcher.Page) *model.StorefrontInsight {
	log := zap.L().With(zap.String("url", base))
	draft := &model.StorefrontInsight{}

	// Links on a redirected homepage resolve against where we landed.
	site := origin(page.FinalURL, base)
	doc := page.Doc
	if page.Blocked {
		log.Warn("insight: homepage looks like a challenge page",
			zap.String("block_type", string(page.BlockType)),
		)
	}

	draft.IsRecognizedPlatform = scrape.IsRecognizedPlatform(page.HTML)

	tasks := []extractTask{
		{field: "brand_name", run: func() {
			draft.BrandName = scrape.BrandName(doc)
		}},
		{field: "contact_details", run: func() {
			draft.ContactDetails = scrape.ContactDetails(doc)
		}},
		{field: "social_handles", run: func() {
			draft.SocialHandles = scrape.SocialHandles(page.HTML)
		}},
		{field: "important_links", run: func() {
			draft.ImportantLinks = scrape.ImportantLinks(doc, site)
		}},
		{field: "hero_products", run: func() {
			draft.HeroProducts = scrape.HeroProducts(doc, site)
		}},
	}

	// Each task writes a distinct field, so Wait is the only synchronization.
	var g errgroup.Group
	g.SetLimit(a.workers)
	for _, task := range tasks {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error("insight: extractor panicked",
						zap.String("field", task.field),
						zap.Any("panic", r),
					)
				}
			}()
			task.run()
			return nil
		})
	}
	_ = g.Wait()

	if draft.IsRecognizedPlatform {
		products, err := scrape.FetchCatalog(ctx, a.fetcher, site)
		if err != nil {
			log.Warn("insight: catalog unavailable, continuing without it", zap.Error(err))
		} else {
			draft.ProductCatalog = products
		}
	}

	a.probeSecondary(ctx, site, doc, draft)

	draft.Normalize()
	return draft
}

// probeSecondary walks privacy, refund, about and FAQ candidates one kind at
// a time so a single storefront never sees parallel probing.
func (a *Assembler) probeSecondary(ctx context.Context, site string, homepage *goquery.Document, draft *model.StorefrontInsight) {
	for _, kind := range model.AllPageKinds() {
		candidates := a.finder.Candidates(kind, homepage, site)

		switch kind {
		case model.PageKindPrivacy:
			if found, ok := a.prober.Probe(ctx, kind, candidates, nil); ok {
				draft.PrivacyPolicy = found.Text
			}
		case model.PageKindRefund:
			if found, ok := a.prober.Probe(ctx, kind, candidates, nil); ok {
				draft.RefundPolicy = found.Text
			}
		case model.PageKindAbout:
			if found, ok := a.prober.Probe(ctx, kind, candidates, nil); ok {
				draft.BrandContext = a.summarizer.SummarizeBrand(ctx, found.Text)
			}
		case model.PageKindFAQ:
			var faqs []model.FAQ
			accept := discovery.AcceptFunc(func(ctx context.Context, text string) bool {
				faqs = a.summarizer.ExtractFAQs(ctx, text)
				return len(faqs) > 0
			})
			if _, ok := a.prober.Probe(ctx, kind, candidates, accept); ok {
				draft.FAQs = faqs
			}
		}
	}
}
