package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/storefront-insights/internal/config"
)

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestInitStore_SQLite(t *testing.T) {
	withConfig(t, &config.Config{
		Env:   "development",
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "insights.db")},
	})

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, st.Ping(context.Background()))
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{Driver: "mysql"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitStore_PostgresBadURL(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{Driver: "postgres", DatabaseURL: "::not a url::"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
}

func TestInitEnv_MissingKey(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{Driver: "sqlite"}})

	_, err := initEnv(context.Background())
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
}

func TestInitEnv_Wires(t *testing.T) {
	withConfig(t, &config.Config{
		Store:       config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "insights.db")},
		Anthropic:   config.AnthropicConfig{Key: "sk-test", Model: "claude-haiku-4-5-20251001", MaxTokens: 512},
		Fetch:       config.FetchConfig{TimeoutSecs: 5, RequestsPerSecond: 2},
		LLM:         config.LLMConfig{TimeoutSecs: 10, BreakerThreshold: 3, BreakerResetSecs: 5},
		Insight:     config.InsightConfig{Workers: 2},
		Competitors: config.CompetitorsConfig{Max: 2},
	})

	env, err := initEnv(context.Background())
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Store)
	assert.NotNil(t, env.Assembler)
	assert.NotNil(t, env.Comparator)
	assert.NoError(t, env.Store.Ping(context.Background()))
}

func TestNewHTTPServer(t *testing.T) {
	srv := newHTTPServer(9090, nil)
	assert.Equal(t, ":9090", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
