// Package scraper provides text processing utilities for content extraction.
package scraper

import (
	"strings"

	"extract-article-reader/internal/config"
)

var fetchRegexes = config.CompileRegexes()

// CleanWhitespace removes excessive whitespace from text content
func CleanWhitespace(text string) string {
	if text == "" {
		return ""
	}

	cleaned := text
	for strings.Contains(cleaned, TripleNewline) {
		cleaned = strings.ReplaceAll(cleaned, TripleNewline, DoubleNewline)
	}
	for strings.Contains(cleaned, DoubleSpace) {
		cleaned = strings.ReplaceAll(cleaned, DoubleSpace, SingleSpace)
	}
	return strings.TrimSpace(cleaned)
}

// ContainsAny checks if a string contains any of the substrings (case-insensitive)
func ContainsAny(s string, substrings []string) bool {
	sLower := strings.ToLower(s)
	for _, substr := range substrings {
		if strings.Contains(sLower, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

// IsCloudflareBlock checks if the error indicates Cloudflare blocking
func IsCloudflareBlock(err error) bool {
	if err == nil {
		return false
	}
	return ContainsAny(err.Error(), CloudflarePatterns)
}

// LooksLikeCFBlock checks if HTML content is a Cloudflare challenge page
func LooksLikeCFBlock(html string) bool {
	return fetchRegexes["cfBlock"].MatchString(strings.ToLower(html))
}

// metaRefreshTarget returns the URL of a meta refresh in a short page.
func metaRefreshTarget(html string) string {
	if len(html) > metaRefreshMaxBytes {
		return ""
	}
	if m := fetchRegexes["metaRefresh"].FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}
