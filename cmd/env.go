package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/competitor"
	"github.com/sells-group/storefront-insights/internal/fetcher"
	"github.com/sells-group/storefront-insights/internal/insight"
	"github.com/sells-group/storefront-insights/internal/store"
	"github.com/sells-group/storefront-insights/internal/summarize"
	anthropicpkg "github.com/sells-group/storefront-insights/pkg/anthropic"
)

// insightsEnv holds the initialized store, clients and services needed by
// the serve/analyze/competitors commands.
type insightsEnv struct {
	Store      store.Store
	Assembler  *insight.Assembler
	Comparator *competitor.Comparator
}

// Close releases resources held by the environment.
func (e *insightsEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates configuration, opens and migrates the store, and wires
// the fetcher, summarizer, assembler and comparator. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*insightsEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key, anthropicpkg.Options{BaseURL: cfg.Anthropic.BaseURL})
	sum := summarize.New(client, summarize.Options{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Timeout:   cfg.LLM.Timeout(),
		Breaker:   summarize.NewBreaker(cfg.LLM.BreakerThreshold, cfg.LLM.BreakerResetSecs),
	})

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           cfg.Fetch.Timeout(),
		CloudflareBypass:  cfg.Fetch.CloudflareBypass,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	})
	if cfg.Fetch.CloudflareBypass {
		zap.L().Info("cloudflare bypass transport enabled")
	}

	asm := insight.New(st, f, sum, insight.Options{Workers: cfg.Insight.Workers})
	cmp := competitor.New(asm, sum, st, competitor.Options{Max: cfg.Competitors.Max})

	return &insightsEnv{Store: st, Assembler: asm, Comparator: cmp}, nil
}

// initStore opens the configured backend. Statement logging follows the
// environment name.
func initStore(ctx context.Context) (store.Store, error) {
	opts := []store.Option{store.WithStatementLogging(cfg.IsDevelopment())}

	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "insights.db"
		}
		return store.NewSQLite(dsn, opts...)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		}, opts...)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
