// Package store persists storefront insights and competitor analyses.
package store

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storefront-insights/internal/model"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store defines the persistence interface for storefront analyses.
type Store interface {
	// Insights
	CreateInsight(ctx context.Context, websiteURL string) (*model.StorefrontInsight, error)
	GetInsight(ctx context.Context, id string) (*model.StorefrontInsight, error)
	GetInsightByURL(ctx context.Context, websiteURL string) (*model.StorefrontInsight, error)
	UpdateInsightStatus(ctx context.Context, id string, status model.Status, errMsg string) error
	SaveInsight(ctx context.Context, in *model.StorefrontInsight) error
	ListRecentInsights(ctx context.Context, limit int) ([]model.StorefrontInsight, error)

	// Competitors
	SaveCompetitorAnalysis(ctx context.Context, ca *model.CompetitorAnalysis) error
	ListCompetitorAnalyses(ctx context.Context, insightID string) ([]model.CompetitorAnalysis, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Option configures a store implementation.
type Option func(*options)

type options struct {
	logStatements bool
}

// WithStatementLogging logs every statement at debug level.
func WithStatementLogging(on bool) Option {
	return func(o *options) { o.logStatements = on }
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Default and maximum page sizes for ListRecentInsights.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// ClampLimit applies the default and maximum list sizes.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
