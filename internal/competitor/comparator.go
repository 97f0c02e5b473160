// Package competitor finds and scores competing storefronts for an
// analyzed brand.
package competitor

import (
	"context"
	"net/url"
	"strings"

	"github.com/antzucaro/matchr"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/insight"
	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/store"
)

// DefaultMax is how many competitors are analyzed per brand.
const DefaultMax = 3

// UnknownBrand stands in for a storefront without a detectable name.
const UnknownBrand = "Unknown Brand"

// nearDuplicateThreshold is the Jaro-Winkler score above which two hosts
// are treated as the same storefront (e.g. acme.com and acme.co).
const nearDuplicateThreshold = 0.92

// Finder suggests competitor URLs. Implementations never fail; an empty
// slice means no suggestions.
type Finder interface {
	FindCompetitors(ctx context.Context, brand, industry string) []string
}

// Options configures a Comparator.
type Options struct {
	Max int
}

// Comparator analyzes a brand and its competitors.
type Comparator struct {
	analyzer insight.Analyzer
	finder   Finder
	store    store.Store
	max      int
}

// New creates a Comparator.
func New(analyzer insight.Analyzer, finder Finder, st store.Store, opts Options) *Comparator {
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	return &Comparator{analyzer: analyzer, finder: finder, store: st, max: opts.Max}
}

// Compare analyzes websiteURL, then up to Max suggested competitors. Only a
// failure of the subject analysis is returned; competitor failures are
// recorded on their entries with a nil insight and score.
func (c *Comparator) Compare(ctx context.Context, websiteURL string, opts insight.AnalyzeOptions) (*model.CompetitorReport, error) {
	subject, err := c.analyzer.Analyze(ctx, websiteURL, opts)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("url", subject.WebsiteURL))

	brand := subject.BrandName
	if brand == "" {
		brand = UnknownBrand
	}
	industry := Industry(subject.ProductCatalog)

	suggested := c.finder.FindCompetitors(ctx, brand, industry)
	urls := selectCompetitors(subject.WebsiteURL, suggested, c.max)
	log.Info("competitor: analyzing competitors",
		zap.String("brand", brand),
		zap.String("industry", industry),
		zap.Int("suggested", len(suggested)),
		zap.Int("selected", len(urls)),
	)

	report := &model.CompetitorReport{
		BrandInsights: subject,
		Competitors:   make([]model.CompetitorAnalysis, 0, len(urls)),
	}
	for _, u := range urls {
		ca := c.analyzeOne(ctx, subject, u, opts)
		if err := c.store.SaveCompetitorAnalysis(ctx, &ca); err != nil {
			log.Warn("competitor: persist analysis failed",
				zap.String("competitor", u),
				zap.Error(err),
			)
		}
		report.Competitors = append(report.Competitors, ca)
	}
	return report, nil
}

func (c *Comparator) analyzeOne(ctx context.Context, subject *model.StorefrontInsight, competitorURL string, opts insight.AnalyzeOptions) model.CompetitorAnalysis {
	ca := model.CompetitorAnalysis{
		InsightID:     subject.ID,
		CompetitorURL: competitorURL,
	}

	in, err := c.analyzer.Analyze(ctx, competitorURL, opts)
	if err != nil {
		zap.L().Warn("competitor: could not analyze competitor",
			zap.String("competitor", competitorURL),
			zap.Error(err),
		)
		ca.Error = err.Error()
		return ca
	}

	score := Similarity(subject, in)
	ca.Competitor = in
	ca.SimilarityScore = &score
	return ca
}

// selectCompetitors normalizes suggestions and drops invalid URLs, the
// subject's own host and near-duplicate hosts, keeping at most limit.
func selectCompetitors(subjectURL string, suggested []string, limit int) []string {
	subjectHost := comparableHost(subjectURL)
	var kept []string
	var keptHosts []string

	for _, raw := range suggested {
		if len(kept) >= limit {
			break
		}
		norm, err := insight.NormalizeURL(raw)
		if err != nil {
			zap.L().Debug("competitor: skipping invalid suggestion", zap.String("suggestion", raw))
			continue
		}
		host := comparableHost(norm)
		if host == "" || similarHost(host, subjectHost) {
			continue
		}
		dup := false
		for _, h := range keptHosts {
			if similarHost(host, h) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, norm)
		keptHosts = append(keptHosts, host)
	}
	return kept
}

func similarHost(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || matchr.JaroWinkler(a, b, false) >= nearDuplicateThreshold
}

func comparableHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
