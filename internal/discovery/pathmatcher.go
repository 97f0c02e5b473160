package discovery

import (
	"net/url"
	"path"
	"strings"
)

// DefaultExcludePatterns keep the probe away from transactional and
// catalog pages that never hold policy or brand copy.
var DefaultExcludePatterns = []string{
	"/cart",
	"/cart/*",
	"/checkout*",
	"/checkouts/*",
	"/account",
	"/account/*",
	"/products/*",
	"/collections/*",
	"/search*",
	"*.pdf",
}

// PathMatcher filters URLs based on glob-style path patterns.
// A pattern containing "/" is matched against the whole path, with
// "/x/*" also covering deeper paths. A pattern without "/" is matched
// against the last path segment, so "*.pdf" excludes PDFs at any depth.
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns.
// Falls back to DefaultExcludePatterns if none are provided.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = DefaultExcludePatterns
	}
	return &PathMatcher{patterns: patterns}
}

// IsExcluded checks whether a URL matches any exclude pattern.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	urlPath := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(strings.ToLower(pattern), urlPath) {
			return true
		}
	}
	return false
}

func matchSegmented(pattern, urlPath string) bool {
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(urlPath))
		return ok
	}

	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}

	// "/blog/*" also matches "/blog" and "/blog/a/b/c".
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
