package models

import (
	"time"

	"extract-article-reader/internal/readability"
)

// ScrapeRequest represents the incoming Lambda event
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeResponse is the extracted article returned by the service.
type ScrapeResponse struct {
	*readability.Article
	// Content is the article text with one paragraph per line.
	Content string `json:"content,omitempty"`
	// Fallback is set when the secondary extractor produced the article.
	Fallback bool     `json:"fallback"`
	Metadata Metadata `json:"metadata"`
}

// ReadableResponse answers the precheck endpoint.
type ReadableResponse struct {
	Readable bool     `json:"readable"`
	Metadata Metadata `json:"metadata"`
}

// BlockedResponse represents when scraping is blocked
type BlockedResponse struct {
	Error    string   `json:"error"`
	Provider string   `json:"provider"`
	Domain   string   `json:"domain"`
	Metadata Metadata `json:"metadata"`
}

// ErrorResponse represents error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Metadata contains request metadata
type Metadata struct {
	URL        string    `json:"url"`
	ScrapedAt  time.Time `json:"scrapedAt"`
	DurationMs int64     `json:"durationMs"`
	Cached     bool      `json:"cached,omitempty"`
}
