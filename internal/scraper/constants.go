// Package scraper provides constants used throughout the scraping functionality.
package scraper

import "time"

// Timeout constants
const (
	HTTPTimeout    = 18 * time.Second
	BrowserTimeout = 40 * time.Second
)

// TextElements are the article elements that make up the plain text content.
const TextElements = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"

// Text processing constants
const (
	DoubleNewline = "\n\n"
	SingleNewline = "\n"
	TripleNewline = "\n\n\n"
	DoubleSpace   = "  "
	SingleSpace   = " "
)

// Browser configuration
const (
	DefaultWindowWidth  = 1366
	DefaultWindowHeight = 900
	MaxRedirects        = 5
)

// metaRefreshMaxBytes bounds the pages whose meta refresh is followed.
const metaRefreshMaxBytes = 4096

// alternateStatusCodes trigger the AMP and mobile alternates.
var alternateStatusCodes = map[int]bool{403: true, 406: true, 451: true}

// BlockedDomains are ad and tracker hosts refused inside the browser.
var BlockedDomains = []string{
	"doubleclick",
	"googlesyndication",
	"google-analytics",
	"facebook.com/tr",
	"taboola",
	"outbrain",
	"scorecardresearch",
	"chartbeat",
	"amazon-adsystem",
}

// Cloudflare detection patterns
var CloudflarePatterns = []string{
	"CF_BLOCKED",
	"cloudflare",
	"HTTP 403",
	"all alternate URLs failed",
	"attention required",
	"cloudflare ray id",
	"what can i do to resolve this?",
	"why have i been blocked?",
	"performance & security by cloudflare",
}
