package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/storefront-insights/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return newPostgresWithPool(mock), mock
}

func anyArgs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = pgxmock.AnyArg()
	}
	return out
}

func TestPostgresStore_GetInsight_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, website_url, .* FROM storefront_insights WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetInsight(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "get insight")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInsightByURL(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := mock.NewRows(insightColumns).AddRow(
		"id-1", "https://acme.com", nil,
		[]byte(`[{"id":7,"title":"Trail Shoe","handle":"trail-shoe","vendor":"","product_type":"Footwear","price":120,"url":"https://acme.com/products/trail-shoe","is_hero_product":false}]`),
		[]byte(`[]`),
		nil, nil, nil,
		[]byte(`[]`),
		[]byte(`{"emails":["hi@acme.com"],"phones":[]}`),
		[]byte(`{"instagram":"https://www.instagram.com/acme"}`),
		[]byte(`{}`),
		true, "completed", nil,
		now, now,
	)
	mock.ExpectQuery(`FROM storefront_insights WHERE website_url = \$1`).
		WithArgs("https://acme.com").
		WillReturnRows(rows)

	got, err := s.GetInsightByURL(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Empty(t, got.BrandName)
	require.Len(t, got.ProductCatalog, 1)
	assert.Equal(t, "Footwear", got.ProductCatalog[0].Category)
	assert.NotNil(t, got.HeroProducts)
	assert.Equal(t, []string{"hi@acme.com"}, got.ContactDetails.Emails)
	assert.Equal(t, "https://www.instagram.com/acme", got.SocialHandles.Instagram)
	assert.True(t, got.IsRecognizedPlatform)
	assert.Equal(t, now, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateInsight(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO storefront_insights .* ON CONFLICT \(website_url\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), "https://acme.com", "pending", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`WHERE website_url = \$1`).
		WithArgs("https://acme.com").
		WillReturnRows(mock.NewRows(insightColumns).AddRow(
			"id-1", "https://acme.com", nil,
			[]byte(`[]`), []byte(`[]`),
			nil, nil, nil,
			[]byte(`[]`), []byte(`{}`), []byte(`{}`), []byte(`{}`),
			false, "pending", nil,
			now, now,
		))

	in, err := s.CreateInsight(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", in.ID)
	assert.Equal(t, model.StatusPending, in.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateInsightStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE storefront_insights SET status = \$1, error_message = \$2`).
		WithArgs("failed", "boom", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateInsightStatus(context.Background(), "missing", model.StatusFailed, "boom")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateInsightStatus_ClearsError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE storefront_insights SET status`).
		WithArgs("in_progress", nil, pgxmock.AnyArg(), "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateInsightStatus(context.Background(), "id-1", model.StatusInProgress, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateInsightStatus_InvalidStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	err := s.UpdateInsightStatus(context.Background(), "id-1", model.Status("done"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid insight status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveInsight_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO "storefront_insights" .* ON CONFLICT \("website_url"\) DO UPDATE SET .* RETURNING "id"`).
		WithArgs(anyArgs(len(insightColumns))...).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("existing-id"))

	in := completedInsight("https://acme.com")
	in.ID = "new-id"
	require.NoError(t, s.SaveInsight(context.Background(), in))
	assert.Equal(t, "existing-id", in.ID)
	assert.False(t, in.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveInsight_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO "storefront_insights"`).
		WithArgs(anyArgs(len(insightColumns))...).
		WillReturnError(errors.New("connection lost"))

	err := s.SaveInsight(context.Background(), completedInsight("https://acme.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: save insight")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRecentInsights_ClampsLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(MaxListLimit).
		WillReturnRows(mock.NewRows(insightColumns))

	list, err := s.ListRecentInsights(context.Background(), 5000)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCompetitorAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO competitor_analyses`).
		WithArgs(pgxmock.AnyArg(), "id-1", "https://down.com", pgxmock.AnyArg(), pgxmock.AnyArg(), "timeout", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ca := &model.CompetitorAnalysis{InsightID: "id-1", CompetitorURL: "https://down.com", Error: "timeout"}
	require.NoError(t, s.SaveCompetitorAnalysis(context.Background(), ca))
	assert.NotEmpty(t, ca.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCompetitorAnalyses(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM competitor_analyses WHERE brand_insight_id = \$1`).
		WithArgs("id-1").
		WillReturnRows(mock.NewRows(competitorColumns).
			AddRow("ca-1", "id-1", "https://down.com", nil, nil, nil, now))

	list, err := s.ListCompetitorAnalyses(context.Background(), "id-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://down.com", list[0].CompetitorURL)
	assert.Nil(t, list[0].Competitor)
	assert.Nil(t, list[0].SimilarityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrateAndPing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS storefront_insights`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectPing()

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
