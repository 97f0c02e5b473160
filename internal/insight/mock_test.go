package insight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/storefront-insights/internal/model"
)

// --- Summarizer Mock ---

type mockSummarizer struct {
	mock.Mock
}

func newMockSummarizer(t *testing.T) *mockSummarizer {
	m := &mockSummarizer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockSummarizer) ExtractFAQs(ctx context.Context, text string) []model.FAQ {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.FAQ)
}

func (m *mockSummarizer) SummarizeBrand(ctx context.Context, text string) string {
	args := m.Called(ctx, text)
	return args.String(0)
}
