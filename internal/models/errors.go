// Package models defines the service DTOs and typed errors.
package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// CloudflareBlockError represents a Cloudflare blocking error
type CloudflareBlockError struct {
	Domain string
	Err    error
}

func (e *CloudflareBlockError) Error() string {
	return fmt.Sprintf("blocked by Cloudflare on domain %s: %v", e.Domain, e.Err)
}

func (e *CloudflareBlockError) Unwrap() error { return e.Err }

// TimeoutError represents a timeout error
type TimeoutError struct {
	Operation string
	Timeout   string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s after %s: %v", e.Operation, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InvalidURLError represents an invalid URL error
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %s: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// HTTPError represents an HTTP-related error
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %v", e.StatusCode, e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ContentExtractionError represents an error during content extraction
type ContentExtractionError struct {
	Step string
	Err  error
}

func (e *ContentExtractionError) Error() string {
	return fmt.Sprintf("content extraction failed at %s: %v", e.Step, e.Err)
}

func (e *ContentExtractionError) Unwrap() error { return e.Err }

// StatusFor maps a scrape error to the HTTP status and message returned to
// clients.
func StatusFor(err error) (int, string) {
	var cfErr *CloudflareBlockError
	var timeoutErr *TimeoutError
	var invalidErr *InvalidURLError
	var extractErr *ContentExtractionError
	switch {
	case errors.As(err, &cfErr):
		return http.StatusUnavailableForLegalReasons, "Blocked by site protection"
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Scrape took too long"
	case errors.As(err, &invalidErr):
		return http.StatusBadRequest, "Invalid URL format"
	case errors.As(err, &extractErr):
		return http.StatusInternalServerError, "Failed to extract content"
	default:
		return http.StatusInternalServerError, "Failed to scrape"
	}
}
