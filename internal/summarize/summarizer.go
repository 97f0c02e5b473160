// Package summarize turns free page text into structured facts with a hosted
// language model. Every method degrades to an empty result; callers never
// see an error from here.
package summarize

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/storefront-insights/internal/model"
	"github.com/sells-group/storefront-insights/internal/resilience"
	"github.com/sells-group/storefront-insights/pkg/anthropic"
)

const (
	DefaultModel     = "claude-haiku-4-5-20251001"
	DefaultMaxTokens = 1024
	DefaultTimeout   = 60 * time.Second

	// temperature keeps extraction output stable across runs.
	temperature = 0.0

	// Input caps, in runes.
	faqInputLimit   = 10000
	brandInputLimit = 8000
)

// Options configures a Summarizer. Zero values fall back to the defaults.
type Options struct {
	Model     string
	MaxTokens int64
	Timeout   time.Duration
	Breaker   *resilience.Breaker
}

// Summarizer wraps an anthropic.Client with prompts, per-call timeouts, and
// a circuit breaker.
type Summarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	breaker   *resilience.Breaker
}

// New creates a Summarizer.
func New(client anthropic.Client, opts Options) *Summarizer {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Breaker == nil {
		opts.Breaker = NewBreaker(0, 0)
	}
	return &Summarizer{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
		breaker:   opts.Breaker,
	}
}

// NewBreaker returns a breaker that trips on upstream outages: network
// failures, expired deadlines, and 408/429/5xx API responses.
func NewBreaker(threshold, resetSecs int) *resilience.Breaker {
	cfg := resilience.FromConfig("anthropic", threshold, resetSecs)
	cfg.ShouldTrip = shouldTrip
	return resilience.NewBreaker(cfg)
}

func shouldTrip(err error) bool {
	return resilience.IsTransientHTTPStatus(anthropic.StatusCode(err)) || resilience.IsTransient(err)
}

// complete sends system instructions and a single user turn and returns the
// trimmed response text, or "" on any failure.
func (s *Summarizer) complete(ctx context.Context, task, system, prompt string) string {
	log := zap.L().With(zap.String("task", task), zap.String("model", s.model))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	temp := temperature
	resp, err := resilience.Call(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       s.model,
			MaxTokens:   s.maxTokens,
			System:      []anthropic.SystemBlock{{Text: system}},
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temp,
		})
	})
	if err != nil {
		log.Warn("summarize: llm call failed", zap.Error(err))
		return ""
	}
	if resp == nil {
		log.Warn("summarize: empty llm response")
		return ""
	}

	resp.Usage.LogCost(s.model, task)

	if resp.StopReason == "refusal" {
		log.Warn("summarize: llm refused request")
		return ""
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		log.Warn("summarize: llm returned no text", zap.String("stop_reason", resp.StopReason))
	}
	return text
}

// ExtractFAQs pulls question/answer pairs out of FAQ page text. Pairs with an
// empty question or answer are dropped.
func (s *Summarizer) ExtractFAQs(ctx context.Context, text string) []model.FAQ {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	raw := s.complete(ctx, "faq_extraction", faqSystem, pagePrefix+truncateRunes(text, faqInputLimit))
	if raw == "" {
		return nil
	}

	faqs, err := parseFAQs(raw)
	if err != nil {
		zap.L().Warn("summarize: unparseable faq response", zap.Error(err), zap.Int("response_len", len(raw)))
		return nil
	}
	return faqs
}

// SummarizeBrand condenses about-page text into a short plain-text summary.
func (s *Summarizer) SummarizeBrand(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return stripFences(s.complete(ctx, "brand_context", brandSystem, pagePrefix+truncateRunes(text, brandInputLimit)))
}

// FindCompetitors asks for competitor storefront URLs for brand in industry.
// The URLs are returned as the model wrote them; callers normalize them.
func (s *Summarizer) FindCompetitors(ctx context.Context, brand, industry string) []string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil
	}
	if strings.TrimSpace(industry) == "" {
		industry = "E-commerce"
	}

	raw := s.complete(ctx, "competitor_search", competitorSystem, competitorPrompt(brand, industry))
	if raw == "" {
		return nil
	}

	urls, err := parseURLList(raw)
	if err != nil {
		zap.L().Warn("summarize: unparseable competitor response", zap.Error(err), zap.String("brand", brand))
		return nil
	}
	return urls
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
