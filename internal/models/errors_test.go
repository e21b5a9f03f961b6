package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extract-article-reader/internal/readability"
)

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"cloudflare", &CloudflareBlockError{Domain: "example.com", Err: context.Canceled}, "blocked by Cloudflare on domain example.com"},
		{"timeout", &TimeoutError{Operation: "fetch", Timeout: "18s", Err: context.Canceled}, "timeout during fetch after 18s"},
		{"invalid url", &InvalidURLError{URL: "::", Err: context.Canceled}, "invalid URL ::"},
		{"http", &HTTPError{StatusCode: 403, URL: "https://example.com", Err: context.Canceled}, "HTTP 403 for URL https://example.com"},
		{"extraction", &ContentExtractionError{Step: "parse", Err: context.Canceled}, "content extraction failed at parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, context.Canceled)
			assert.Contains(t, wrapped.Error(), tt.msg)
		})
	}
}

func TestErrorsAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("scrape: %w", &HTTPError{StatusCode: 451, URL: "u", Err: errors.New("gone")})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 451, httpErr.StatusCode)
}

func TestScrapeResponseJSON_FlattensArticle(t *testing.T) {
	t.Parallel()

	resp := ScrapeResponse{
		Article:  &readability.Article{Title: "T", HTML: "<article></article>", ReadTime: "0:10"},
		Content:  "line",
		Fallback: true,
	}
	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "T", decoded["title"])
	assert.Equal(t, "<article></article>", decoded["html"])
	assert.Equal(t, "line", decoded["content"])
	assert.Equal(t, true, decoded["fallback"])
	assert.Contains(t, decoded, "metadata")
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"cloudflare", &CloudflareBlockError{Domain: "example.com", Err: errors.New("CF_BLOCKED")}, 451},
		{"timeout", &TimeoutError{Operation: "scrape", Timeout: "1s", Err: context.DeadlineExceeded}, 504},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), 504},
		{"invalid", &InvalidURLError{URL: "x", Err: errors.New("bad")}, 400},
		{"extraction", &ContentExtractionError{Step: "parse", Err: errors.New("bad")}, 500},
		{"other", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, msg := StatusFor(tt.err)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, msg)
		})
	}
}
