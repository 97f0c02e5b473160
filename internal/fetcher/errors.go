package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when the target answers 404.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fetcher: page not found: %s", e.URL)
}

// HTTPError is returned for any other status >= 400. BlockType is set when
// the error page is an anti-bot challenge.
type HTTPError struct {
	URL        string
	StatusCode int
	BlockType  BlockType
}

func (e *HTTPError) Error() string {
	if e.BlockType != BlockNone {
		return fmt.Sprintf("fetcher: blocked by %s challenge (status %d) at %s", e.BlockType, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetcher: unexpected status %d from %s", e.StatusCode, e.URL)
}

// TransportError covers DNS, connection and timeout failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetcher: request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func classifyStatus(url string, code int, block BlockType) error {
	switch {
	case code == http.StatusNotFound:
		return &NotFoundError{URL: url}
	case code >= 400:
		return &HTTPError{URL: url, StatusCode: code, BlockType: block}
	}
	return nil
}
