package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/storefront-insights/internal/db"
	"github.com/sells-group/storefront-insights/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db   *sql.DB
	opts options

	upsertInsight string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, opts ...Option) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{
		db:            conn,
		opts:          buildOptions(opts),
		upsertInsight: insightUpsert(db.SQLite),
	}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS storefront_insights (
	id                     TEXT PRIMARY KEY,
	website_url            TEXT NOT NULL UNIQUE,
	brand_name             TEXT,
	product_catalog        TEXT NOT NULL DEFAULT '[]',
	hero_products          TEXT NOT NULL DEFAULT '[]',
	privacy_policy         TEXT,
	refund_policy          TEXT,
	brand_context          TEXT,
	faqs                   TEXT NOT NULL DEFAULT '[]',
	contact_details        TEXT NOT NULL DEFAULT '{}',
	social_handles         TEXT NOT NULL DEFAULT '{}',
	important_links        TEXT NOT NULL DEFAULT '{}',
	is_recognized_platform BOOLEAN NOT NULL DEFAULT 0,
	status                 TEXT NOT NULL DEFAULT 'pending',
	error_message          TEXT,
	created_at             DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS competitor_analyses (
	id               TEXT PRIMARY KEY,
	brand_insight_id TEXT NOT NULL REFERENCES storefront_insights(id),
	competitor_url   TEXT NOT NULL,
	insights         TEXT,
	similarity_score REAL,
	error            TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_insights_status ON storefront_insights(status);
CREATE INDEX IF NOT EXISTS idx_insights_created_at ON storefront_insights(created_at);
CREATE INDEX IF NOT EXISTS idx_competitor_analyses_insight ON competitor_analyses(brand_insight_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.opts.traceStatement("sqlite", "migrate", sqliteMigration)
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	s.opts.traceStatement("sqlite", op, query)
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SQLiteStore) CreateInsight(ctx context.Context, websiteURL string) (*model.StorefrontInsight, error) {
	now := time.Now().UTC()
	_, err := s.exec(ctx, "create_insight",
		`INSERT INTO storefront_insights (id, website_url, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT (website_url) DO NOTHING`,
		uuid.New().String(), websiteURL, string(model.StatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert insight %s", websiteURL)
	}
	return s.GetInsightByURL(ctx, websiteURL)
}

func (s *SQLiteStore) GetInsight(ctx context.Context, id string) (*model.StorefrontInsight, error) {
	q := insightSelect + ` WHERE id = ?`
	s.opts.traceStatement("sqlite", "get_insight", q)
	in, err := scanSQLiteInsight(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get insight %s", id)
	}
	return in, nil
}

func (s *SQLiteStore) GetInsightByURL(ctx context.Context, websiteURL string) (*model.StorefrontInsight, error) {
	q := insightSelect + ` WHERE website_url = ?`
	s.opts.traceStatement("sqlite", "get_insight_by_url", q)
	in, err := scanSQLiteInsight(s.db.QueryRowContext(ctx, q, websiteURL))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get insight by url %s", websiteURL)
	}
	return in, nil
}

func (s *SQLiteStore) UpdateInsightStatus(ctx context.Context, id string, status model.Status, errMsg string) error {
	if !status.Valid() {
		return eris.Errorf("sqlite: invalid insight status %q", status)
	}
	res, err := s.exec(ctx, "update_insight_status",
		`UPDATE storefront_insights SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), nullable(errMsg), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update insight status %s", id)
	}
	return checkRowsAffected(res, "insight", id)
}

func (s *SQLiteStore) SaveInsight(ctx context.Context, in *model.StorefrontInsight) error {
	docs, err := encodeDocs(in)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	in.UpdatedAt = now

	s.opts.traceStatement("sqlite", "save_insight", s.upsertInsight)
	err = s.db.QueryRowContext(ctx, s.upsertInsight,
		in.ID, in.WebsiteURL, nullable(in.BrandName),
		string(docs.Catalog), string(docs.Hero),
		nullable(in.PrivacyPolicy), nullable(in.RefundPolicy), nullable(in.BrandContext),
		string(docs.FAQs), string(docs.Contact), string(docs.Social), string(docs.Links),
		in.IsRecognizedPlatform, string(in.Status), nullable(in.ErrorMessage),
		in.CreatedAt, in.UpdatedAt,
	).Scan(&in.ID)
	return eris.Wrapf(err, "sqlite: save insight %s", in.WebsiteURL)
}

func (s *SQLiteStore) ListRecentInsights(ctx context.Context, limit int) ([]model.StorefrontInsight, error) {
	q := insightSelect + ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	s.opts.traceStatement("sqlite", "list_recent_insights", q)
	rows, err := s.db.QueryContext(ctx, q, ClampLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list insights")
	}
	defer rows.Close()

	out := []model.StorefrontInsight{}
	for rows.Next() {
		in, err := scanSQLiteInsight(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: list insights")
		}
		out = append(out, *in)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list insights iterate")
}

func (s *SQLiteStore) SaveCompetitorAnalysis(ctx context.Context, ca *model.CompetitorAnalysis) error {
	if ca.ID == "" {
		ca.ID = uuid.New().String()
	}
	if ca.CreatedAt.IsZero() {
		ca.CreatedAt = time.Now().UTC()
	}

	var snapshot any
	if ca.Competitor != nil {
		cp := *ca.Competitor
		cp.Normalize()
		raw, err := marshalSnapshot(&cp)
		if err != nil {
			return err
		}
		snapshot = string(raw)
	}
	var score any
	if ca.SimilarityScore != nil {
		score = *ca.SimilarityScore
	}

	_, err := s.exec(ctx, "save_competitor_analysis",
		`INSERT INTO competitor_analyses (id, brand_insight_id, competitor_url, insights, similarity_score, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ca.ID, ca.InsightID, ca.CompetitorURL, snapshot, score, nullable(ca.Error), ca.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert competitor analysis for %s", ca.InsightID)
}

func (s *SQLiteStore) ListCompetitorAnalyses(ctx context.Context, insightID string) ([]model.CompetitorAnalysis, error) {
	q := competitorSelect + ` WHERE brand_insight_id = ? ORDER BY created_at ASC, rowid ASC`
	s.opts.traceStatement("sqlite", "list_competitor_analyses", q)
	rows, err := s.db.QueryContext(ctx, q, insightID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list competitor analyses")
	}
	defer rows.Close()

	out := []model.CompetitorAnalysis{}
	for rows.Next() {
		var ca model.CompetitorAnalysis
		var snapshot, errMsg sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&ca.ID, &ca.InsightID, &ca.CompetitorURL, &snapshot, &score, &errMsg, &ca.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan competitor analysis")
		}
		if snapshot.Valid {
			comp, err := unmarshalSnapshot([]byte(snapshot.String))
			if err != nil {
				return nil, err
			}
			ca.Competitor = comp
		}
		if score.Valid {
			v := score.Float64
			ca.SimilarityScore = &v
		}
		ca.Error = errMsg.String
		out = append(out, ca)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list competitor analyses iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteInsight(row scannable) (*model.StorefrontInsight, error) {
	var in model.StorefrontInsight
	var brand, privacy, refund, brandCtx, errMsg sql.NullString
	var catalog, hero, faqs, contact, social, links string
	var status string

	err := row.Scan(
		&in.ID, &in.WebsiteURL, &brand,
		&catalog, &hero,
		&privacy, &refund, &brandCtx,
		&faqs, &contact, &social, &links,
		&in.IsRecognizedPlatform, &status, &errMsg,
		&in.CreatedAt, &in.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan insight")
	}

	in.BrandName = brand.String
	in.PrivacyPolicy = privacy.String
	in.RefundPolicy = refund.String
	in.BrandContext = brandCtx.String
	in.ErrorMessage = errMsg.String
	in.Status = model.Status(status)

	docs := insightDocs{
		Catalog: []byte(catalog),
		Hero:    []byte(hero),
		FAQs:    []byte(faqs),
		Contact: []byte(contact),
		Social:  []byte(social),
		Links:   []byte(links),
	}
	if err := docs.decodeInto(&in); err != nil {
		return nil, err
	}
	return &in, nil
}
