package insight

import (
	"net/url"
	"strings"
)

// NormalizeURL validates raw and reduces it to scheme://host. Bare hosts
// default to https. Only http and https are accepted.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ValidationError{URL: raw, Reason: "url is empty"}
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", &ValidationError{URL: raw, Reason: "url does not parse"}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &ValidationError{URL: raw, Reason: "scheme must be http or https"}
	}
	if u.Hostname() == "" {
		return "", &ValidationError{URL: raw, Reason: "host is required"}
	}
	if u.User != nil {
		return "", &ValidationError{URL: raw, Reason: "credentials are not allowed"}
	}

	return scheme + "://" + strings.ToLower(u.Host), nil
}

// origin returns scheme://host of raw, or fallback when raw does not parse.
func origin(raw, fallback string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return fallback
	}
	return u.Scheme + "://" + u.Host
}
