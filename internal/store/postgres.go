package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/storefront-insights/internal/db"
	"github.com/sells-group/storefront-insights/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	opts    options

	upsertInsight string
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, opts ...Option) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresWithPool(pool, opts...), nil
}

func newPostgresWithPool(pool db.Pool, opts ...Option) *PostgresStore {
	return &PostgresStore{
		pool:          pool,
		closeFn:       pool.Close,
		opts:          buildOptions(opts),
		upsertInsight: insightUpsert(db.Postgres),
	}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS storefront_insights (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	website_url            TEXT NOT NULL UNIQUE,
	brand_name             TEXT,
	product_catalog        JSONB NOT NULL DEFAULT '[]',
	hero_products          JSONB NOT NULL DEFAULT '[]',
	privacy_policy         TEXT,
	refund_policy          TEXT,
	brand_context          TEXT,
	faqs                   JSONB NOT NULL DEFAULT '[]',
	contact_details        JSONB NOT NULL DEFAULT '{}',
	social_handles         JSONB NOT NULL DEFAULT '{}',
	important_links        JSONB NOT NULL DEFAULT '{}',
	is_recognized_platform BOOLEAN NOT NULL DEFAULT false,
	status                 TEXT NOT NULL DEFAULT 'pending',
	error_message          TEXT,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS competitor_analyses (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	brand_insight_id TEXT NOT NULL REFERENCES storefront_insights(id),
	competitor_url   TEXT NOT NULL,
	insights         JSONB,
	similarity_score DOUBLE PRECISION,
	error            TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_insights_status ON storefront_insights(status);
CREATE INDEX IF NOT EXISTS idx_insights_created_at ON storefront_insights(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_competitor_analyses_insight ON competitor_analyses(brand_insight_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	s.opts.traceStatement("postgres", "migrate", postgresMigration)
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateInsight(ctx context.Context, websiteURL string) (*model.StorefrontInsight, error) {
	const q = `INSERT INTO storefront_insights (id, website_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (website_url) DO NOTHING`
	s.opts.traceStatement("postgres", "create_insight", q)

	now := time.Now().UTC()
	if _, err := s.pool.Exec(ctx, q, uuid.New().String(), websiteURL, string(model.StatusPending), now, now); err != nil {
		return nil, eris.Wrapf(err, "postgres: insert insight %s", websiteURL)
	}
	return s.GetInsightByURL(ctx, websiteURL)
}

func (s *PostgresStore) GetInsight(ctx context.Context, id string) (*model.StorefrontInsight, error) {
	q := insightSelect + ` WHERE id = $1`
	s.opts.traceStatement("postgres", "get_insight", q)
	in, err := scanPostgresInsight(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get insight %s", id)
	}
	return in, nil
}

func (s *PostgresStore) GetInsightByURL(ctx context.Context, websiteURL string) (*model.StorefrontInsight, error) {
	q := insightSelect + ` WHERE website_url = $1`
	s.opts.traceStatement("postgres", "get_insight_by_url", q)
	in, err := scanPostgresInsight(s.pool.QueryRow(ctx, q, websiteURL))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get insight by url %s", websiteURL)
	}
	return in, nil
}

func (s *PostgresStore) UpdateInsightStatus(ctx context.Context, id string, status model.Status, errMsg string) error {
	if !status.Valid() {
		return eris.Errorf("postgres: invalid insight status %q", status)
	}
	const q = `UPDATE storefront_insights SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`
	s.opts.traceStatement("postgres", "update_insight_status", q)

	tag, err := s.pool.Exec(ctx, q, string(status), nullable(errMsg), time.Now().UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update insight status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "insight %s", id)
	}
	return nil
}

func (s *PostgresStore) SaveInsight(ctx context.Context, in *model.StorefrontInsight) error {
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

	s.opts.traceStatement("postgres", "save_insight", s.upsertInsight)
	err = s.pool.QueryRow(ctx, s.upsertInsight,
		in.ID, in.WebsiteURL, nullable(in.BrandName),
		docs.Catalog, docs.Hero,
		nullable(in.PrivacyPolicy), nullable(in.RefundPolicy), nullable(in.BrandContext),
		docs.FAQs, docs.Contact, docs.Social, docs.Links,
		in.IsRecognizedPlatform, string(in.Status), nullable(in.ErrorMessage),
		in.CreatedAt, in.UpdatedAt,
	).Scan(&in.ID)
	return eris.Wrapf(err, "postgres: save insight %s", in.WebsiteURL)
}

func (s *PostgresStore) ListRecentInsights(ctx context.Context, limit int) ([]model.StorefrontInsight, error) {
	q := insightSelect + ` ORDER BY created_at DESC, id DESC LIMIT $1`
	s.opts.traceStatement("postgres", "list_recent_insights", q)

	rows, err := s.pool.Query(ctx, q, ClampLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list insights")
	}
	defer rows.Close()

	out := []model.StorefrontInsight{}
	for rows.Next() {
		in, err := scanPostgresInsight(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list insights")
		}
		out = append(out, *in)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list insights iterate")
}

func (s *PostgresStore) SaveCompetitorAnalysis(ctx context.Context, ca *model.CompetitorAnalysis) error {
	const q = `INSERT INTO competitor_analyses (id, brand_insight_id, competitor_url, insights, similarity_score, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	s.opts.traceStatement("postgres", "save_competitor_analysis", q)

	if ca.ID == "" {
		ca.ID = uuid.New().String()
	}
	if ca.CreatedAt.IsZero() {
		ca.CreatedAt = time.Now().UTC()
	}

	var snapshot []byte
	if ca.Competitor != nil {
		cp := *ca.Competitor
		cp.Normalize()
		raw, err := marshalSnapshot(&cp)
		if err != nil {
			return err
		}
		snapshot = raw
	}

	_, err := s.pool.Exec(ctx, q,
		ca.ID, ca.InsightID, ca.CompetitorURL, snapshot, ca.SimilarityScore, nullable(ca.Error), ca.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert competitor analysis for %s", ca.InsightID)
}

func (s *PostgresStore) ListCompetitorAnalyses(ctx context.Context, insightID string) ([]model.CompetitorAnalysis, error) {
	q := competitorSelect + ` WHERE brand_insight_id = $1 ORDER BY created_at ASC, id ASC`
	s.opts.traceStatement("postgres", "list_competitor_analyses", q)

	rows, err := s.pool.Query(ctx, q, insightID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list competitor analyses")
	}
	defer rows.Close()

	out := []model.CompetitorAnalysis{}
	for rows.Next() {
		var ca model.CompetitorAnalysis
		var snapshot []byte
		var score pgtype.Float8
		var errMsg pgtype.Text
		if err := rows.Scan(&ca.ID, &ca.InsightID, &ca.CompetitorURL, &snapshot, &score, &errMsg, &ca.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor analysis")
		}
		if len(snapshot) > 0 {
			comp, err := unmarshalSnapshot(snapshot)
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
	return out, eris.Wrap(rows.Err(), "postgres: list competitor analyses iterate")
}

func scanPostgresInsight(row pgx.Row) (*model.StorefrontInsight, error) {
	var in model.StorefrontInsight
	var brand, privacy, refund, brandCtx, errMsg pgtype.Text
	var docs insightDocs
	var status string

	err := row.Scan(
		&in.ID, &in.WebsiteURL, &brand,
		&docs.Catalog, &docs.Hero,
		&privacy, &refund, &brandCtx,
		&docs.FAQs, &docs.Contact, &docs.Social, &docs.Links,
		&in.IsRecognizedPlatform, &status, &errMsg,
		&in.CreatedAt, &in.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan insight")
	}

	in.BrandName = brand.String
	in.PrivacyPolicy = privacy.String
	in.RefundPolicy = refund.String
	in.BrandContext = brandCtx.String
	in.ErrorMessage = errMsg.String
	in.Status = model.Status(status)

	if err := docs.decodeInto(&in); err != nil {
		return nil, err
	}
	return &in, nil
}
