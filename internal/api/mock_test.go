package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/storefront-insights/internal/insight"
	"github.com/sells-group/storefront-insights/internal/model"
)

// --- Analyzer Mock ---

type mockAnalyzer struct {
	mock.Mock
}

func newMockAnalyzer(t *testing.T) *mockAnalyzer {
	m := &mockAnalyzer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockAnalyzer) Analyze(ctx context.Context, websiteURL string, opts insight.AnalyzeOptions) (*model.StorefrontInsight, error) {
	args := m.Called(ctx, websiteURL, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorefrontInsight), args.Error(1)
}

// --- Comparer Mock ---

type mockComparer struct {
	mock.Mock
}

func newMockComparer(t *testing.T) *mockComparer {
	m := &mockComparer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockComparer) Compare(ctx context.Context, websiteURL string, opts insight.AnalyzeOptions) (*model.CompetitorReport, error) {
	args := m.Called(ctx, websiteURL, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompetitorReport), args.Error(1)
}
