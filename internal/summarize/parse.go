package summarize

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/titanous/json5"

	"github.com/sells-group/storefront-insights/internal/model"
)

// stripFences removes a surrounding Markdown code fence, with or without a
// language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// jsonPayload trims text to the outermost JSON object or array.
func jsonPayload(text string) string {
	text = stripFences(text)
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return text[start:]
	}
	return text[start : end+1]
}

// decode parses strict JSON first and falls back to JSON5, which tolerates
// trailing commas, single quotes, and comments.
func decode(text string, v any) error {
	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}
	if err5 := json5.Unmarshal([]byte(text), v); err5 != nil {
		return eris.Wrap(err, "summarize: decode json")
	}
	return nil
}

type faqJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func parseFAQs(raw string) ([]model.FAQ, error) {
	payload := jsonPayload(raw)

	var items []faqJSON
	if strings.HasPrefix(payload, "[") {
		if err := decode(payload, &items); err != nil {
			return nil, err
		}
	} else {
		var wrapper struct {
			FAQs []faqJSON `json:"faqs"`
		}
		if err := decode(payload, &wrapper); err != nil {
			return nil, err
		}
		items = wrapper.FAQs
	}

	var out []model.FAQ
	for _, it := range items {
		q := strings.TrimSpace(it.Question)
		a := strings.TrimSpace(it.Answer)
		if q == "" || a == "" {
			continue
		}
		out = append(out, model.FAQ{Question: q, Answer: a})
	}
	return out, nil
}

func parseURLList(raw string) ([]string, error) {
	payload := jsonPayload(raw)

	var items []string
	if strings.HasPrefix(payload, "{") {
		var wrapper struct {
			Competitors []string `json:"competitors"`
		}
		if err := decode(payload, &wrapper); err != nil {
			return nil, err
		}
		items = wrapper.Competitors
	} else if err := decode(payload, &items); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(strings.TrimRight(it, "/"))
		if it == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out, nil
}
