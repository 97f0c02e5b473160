package model

import (
	"time"
)

// Status represents where a storefront analysis is in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Product is a single catalog or hero item.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	Vendor      string  `json:"vendor"`
	Category    string  `json:"product_type"`
	Price       float64 `json:"price"`
	URL         string  `json:"url"`
	ImageURL    string  `json:"image_url,omitempty"`
	Description string  `json:"description,omitempty"`
	IsHero      bool    `json:"is_hero_product"`
}

// FAQ is one question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ContactDetails holds deduplicated contact channels found on the homepage.
type ContactDetails struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// StorefrontInsight is the aggregate record for one analyzed storefront.
// WebsiteURL is the identity; empty strings stand in for null fields.
type StorefrontInsight struct {
	ID                   string         `json:"id"`
	WebsiteURL           string         `json:"website_url"`
	BrandName            string         `json:"brand_name,omitempty"`
	ProductCatalog       []Product      `json:"product_catalog"`
	HeroProducts         []Product      `json:"hero_products"`
	PrivacyPolicy        string         `json:"privacy_policy,omitempty"`
	RefundPolicy         string         `json:"refund_policy,omitempty"`
	BrandContext         string         `json:"brand_context,omitempty"`
	FAQs                 []FAQ          `json:"faqs"`
	ContactDetails       ContactDetails `json:"contact_details"`
	SocialHandles        SocialHandles  `json:"social_handles"`
	ImportantLinks       ImportantLinks `json:"important_links"`
	IsRecognizedPlatform bool           `json:"is_shopify_store"`
	Status               Status         `json:"scraping_status"`
	ErrorMessage         string         `json:"error_message,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// NewStorefrontInsight returns a pending record for url.
func NewStorefrontInsight(id, url string, now time.Time) *StorefrontInsight {
	return &StorefrontInsight{
		ID:         id,
		WebsiteURL: url,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkInProgress moves the record into in_progress and clears a stale error.
func (s *StorefrontInsight) MarkInProgress() {
	s.Status = StatusInProgress
	s.ErrorMessage = ""
}

// MarkFailed moves the record into failed. A failed record always carries
// a message, so an empty msg is replaced with a generic one.
func (s *StorefrontInsight) MarkFailed(msg string) {
	if msg == "" {
		msg = "analysis failed"
	}
	s.Status = StatusFailed
	s.ErrorMessage = msg
}

// Normalize replaces nil slices with empty ones so the JSON shape is stable.
func (s *StorefrontInsight) Normalize() {
	if s.ProductCatalog == nil {
		s.ProductCatalog = []Product{}
	}
	if s.HeroProducts == nil {
		s.HeroProducts = []Product{}
	}
	if s.FAQs == nil {
		s.FAQs = []FAQ{}
	}
	if s.ContactDetails.Emails == nil {
		s.ContactDetails.Emails = []string{}
	}
	if s.ContactDetails.Phones == nil {
		s.ContactDetails.Phones = []string{}
	}
}

// Categories returns the set of lowercased, non-empty catalog categories.
func (s *StorefrontInsight) Categories() map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range s.ProductCatalog {
		if c := normalizeCategory(p.Category); c != "" {
			out[c] = struct{}{}
		}
	}
	return out
}

// AveragePrice returns the mean of positive catalog prices and whether any
// priced product exists.
func (s *StorefrontInsight) AveragePrice() (float64, bool) {
	var sum float64
	var n int
	for _, p := range s.ProductCatalog {
		if p.Price > 0 {
			sum += p.Price
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
