package insight

import (
	"errors"
	"fmt"

	"github.com/sells-group/storefront-insights/internal/fetcher"
)

// ValidationError is returned when a website URL cannot be analyzed as given.
type ValidationError struct {
	URL    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("insight: invalid website url %q: %s", e.URL, e.Reason)
}

// ScrapingError is returned when an analysis fails after the record was
// created. The record is persisted as failed before it is returned.
type ScrapingError struct {
	URL string
	Err error
}

func (e *ScrapingError) Error() string {
	return fmt.Sprintf("insight: failed to extract insights for %s: %v", e.URL, e.Err)
}

func (e *ScrapingError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsScraping reports whether err is (or wraps) a ScrapingError.
func IsScraping(err error) bool {
	var se *ScrapingError
	return errors.As(err, &se)
}

// IsTargetNotFound reports whether the storefront itself answered not-found.
func IsTargetNotFound(err error) bool {
	return fetcher.IsNotFound(err)
}
