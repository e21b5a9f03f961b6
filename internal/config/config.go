// Package config reads the fetch and extraction settings from the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ScrapeConfig contains general scraping configuration
type ScrapeConfig struct {
	UserAgent      string
	TimeoutMs      int
	SizeLimitBytes int
	MaxRetries     int
	ChromeMajor    int
}

// ExtractConfig holds the engine defaults applied to every extraction.
type ExtractConfig struct {
	CharThreshold     int
	NbTopCandidates   int
	MaxElemsToParse   int
	ClassesToPreserve []string
	Debug             bool
	// SiteConfigPath points at a YAML or JSON site override table. Empty
	// means no overrides.
	SiteConfigPath string
}

// CacheConfig configures the per-URL response cache of the HTTP service.
// A zero TTL disables the cache.
type CacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultScrapeConfig returns the default scraping configuration
func DefaultScrapeConfig() ScrapeConfig {
	chromeMajor := envInt("CHROME_MAJOR", 133)

	userAgent := os.Getenv("SCRAPE_USER_AGENT")
	if userAgent == "" {
		userAgent = fmt.Sprintf("Mozilla/5.0 (Windows NT 10; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.6943.126 Safari/537.36", chromeMajor)
	}

	return ScrapeConfig{
		UserAgent:      userAgent,
		TimeoutMs:      envInt("SCRAPE_TIMEOUT_MS", 15000),
		SizeLimitBytes: envInt("SCRAPE_SIZE_LIMIT_BYTES", 6_000_000),
		MaxRetries:     envInt("SCRAPE_MAX_RETRIES", 2),
		ChromeMajor:    chromeMajor,
	}
}

// DefaultExtractConfig returns the extraction configuration. Zero values
// leave the engine defaults in place.
func DefaultExtractConfig() ExtractConfig {
	var classes []string
	for _, c := range strings.Split(os.Getenv("EXTRACT_CLASSES_TO_PRESERVE"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			classes = append(classes, c)
		}
	}
	return ExtractConfig{
		CharThreshold:     envInt("EXTRACT_CHAR_THRESHOLD", 0),
		NbTopCandidates:   envInt("EXTRACT_NB_TOP_CANDIDATES", 0),
		MaxElemsToParse:   envInt("EXTRACT_MAX_ELEMS", 0),
		ClassesToPreserve: classes,
		Debug:             envBool("EXTRACT_DEBUG"),
		SiteConfigPath:    strings.TrimSpace(os.Getenv("SITE_CONFIG_PATH")),
	}
}

// DefaultCacheConfig reads SCRAPE_CACHE_TTL_SECONDS, defaulting to ten
// minutes.
func DefaultCacheConfig() CacheConfig {
	ttl := time.Duration(envInt("SCRAPE_CACHE_TTL_SECONDS", 600)) * time.Second
	if ttl <= 0 {
		return CacheConfig{}
	}
	return CacheConfig{TTL: ttl, CleanupInterval: 2 * ttl}
}

// LogLevel parses LOG_LEVEL, defaulting to info.
func LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// CompileRegexes pre-compiles the patterns of the fetch layer.
func CompileRegexes() map[string]*regexp.Regexp {
	return map[string]*regexp.Regexp{
		"cfBlock":     regexp.MustCompile(`(attention required|cloudflare ray id|what can i do to resolve this\?|why have i been blocked\?|performance & security by cloudflare)`),
		"metaRefresh": regexp.MustCompile(`(?i)<meta[^>]+http-equiv=["']?refresh["']?[^>]*content=["']?\d+\s*;\s*url=([^"'>\s]+)`),
	}
}

func envInt(key string, fallback int) int {
	if env := os.Getenv(key); env != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(env)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
