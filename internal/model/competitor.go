package model

import "time"

// CompetitorAnalysis links a completed insight to one competitor storefront.
// Competitor and SimilarityScore are nil when the competitor could not be
// analyzed.
type CompetitorAnalysis struct {
	ID              string             `json:"id"`
	InsightID       string             `json:"brand_insight_id"`
	CompetitorURL   string             `json:"competitor_url"`
	Competitor      *StorefrontInsight `json:"insights"`
	SimilarityScore *float64           `json:"similarity_score"`
	Error           string             `json:"error,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// CompetitorReport is a brand's insight together with its competitors.
type CompetitorReport struct {
	BrandInsights *StorefrontInsight   `json:"brand_insights"`
	Competitors   []CompetitorAnalysis `json:"competitors"`
}
