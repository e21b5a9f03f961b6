// Package scraper provides the core web scraping functionality with a hybrid approach:
// HTTP-first scraping with browser automation fallback. Fetched pages go through
// the reader engine, with Cloudflare detection on the way.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/models"
	"extract-article-reader/internal/readability"
	"extract-article-reader/internal/siteconfig"
)

// Fetcher retrieves the markup of a page and the URL it was served from.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (html, finalURL string, err error)
}

// Scraper orchestrates the scraping process with HTTP-first, browser-fallback strategy
type Scraper struct {
	httpClient    Fetcher
	browserClient Fetcher
	extractor     *ArticleExtractor
	log           zerolog.Logger
}

// NewScraper builds a scraper from the environment configuration. It fails
// when the site override table cannot be loaded.
func NewScraper(log zerolog.Logger) (*Scraper, error) {
	scrapeCfg := config.DefaultScrapeConfig()
	extractCfg := config.DefaultExtractConfig()

	var sites *siteconfig.Table
	if extractCfg.SiteConfigPath != "" {
		var err error
		if sites, err = siteconfig.Load(extractCfg.SiteConfigPath); err != nil {
			return nil, fmt.Errorf("loading site config: %w", err)
		}
		log.Info().Str("path", extractCfg.SiteConfigPath).Int("sites", sites.Len()).Msg("loaded site config")
	}

	return New(
		NewHTTPClient(scrapeCfg, log),
		NewBrowserClient(scrapeCfg, log),
		NewArticleExtractor(extractCfg, sites, log),
		log,
	), nil
}

// New assembles a scraper from its parts. browserClient may be nil to
// disable the browser fallback.
func New(httpClient, browserClient Fetcher, extractor *ArticleExtractor, log zerolog.Logger) *Scraper {
	return &Scraper{
		httpClient:    httpClient,
		browserClient: browserClient,
		extractor:     extractor,
		log:           log.With().Str("component", "scraper").Logger(),
	}
}

// ValidateURL checks that targetURL is an absolute http(s) URL.
func ValidateURL(targetURL string) (*url.URL, error) {
	u, err := url.ParseRequestURI(targetURL)
	if err != nil {
		return nil, &models.InvalidURLError{URL: targetURL, Err: err}
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return nil, &models.InvalidURLError{URL: targetURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &models.InvalidURLError{URL: targetURL, Err: errors.New("missing host")}
	}
	return u, nil
}

// fetch runs the HTTP phase, then the browser phase when HTTP fails.
func (s *Scraper) fetch(ctx context.Context, targetURL string) (string, string, error) {
	u, err := ValidateURL(targetURL)
	if err != nil {
		return "", "", err
	}

	// Phase 1: HTTP fetching with alternate URLs
	httpCtx, cancel := context.WithTimeout(ctx, HTTPTimeout)
	defer cancel()

	markup, finalURL, httpErr := s.httpClient.Fetch(httpCtx, targetURL)
	if httpErr == nil {
		return markup, finalURL, nil
	}
	s.log.Debug().Err(httpErr).Str("url", targetURL).Msg("http fetch failed")

	if ctx.Err() != nil {
		return "", "", s.contextError(ctx, httpErr)
	}
	if s.browserClient == nil {
		return "", "", s.fetchError(u, httpErr, httpErr)
	}

	// Phase 2: Browser fallback
	markup, finalURL, browserErr := s.browserClient.Fetch(ctx, targetURL)
	if browserErr == nil {
		return markup, finalURL, nil
	}
	s.log.Debug().Err(browserErr).Str("url", targetURL).Msg("browser fetch failed")

	if ctx.Err() != nil {
		return "", "", s.contextError(ctx, browserErr)
	}
	return "", "", s.fetchError(u, browserErr, errors.Join(httpErr, browserErr))
}

func (s *Scraper) fetchError(u *url.URL, last, all error) error {
	if IsCloudflareBlock(last) {
		return &models.CloudflareBlockError{Domain: u.Hostname(), Err: last}
	}
	return fmt.Errorf("scraping failed: %w", all)
}

func (s *Scraper) contextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		timeout := "unknown"
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline).Round(time.Millisecond).String()
		}
		return &models.TimeoutError{Operation: "scrape", Timeout: timeout, Err: errors.Join(ctx.Err(), err)}
	}
	return fmt.Errorf("scraping canceled: %w", errors.Join(ctx.Err(), err))
}

// ScrapeSmart implements the hybrid scraping strategy: HTTP first, browser fallback
func (s *Scraper) ScrapeSmart(ctx context.Context, targetURL string) (models.ScrapeResponse, error) {
	markup, finalURL, err := s.fetch(ctx, targetURL)
	if err != nil {
		return models.ScrapeResponse{}, err
	}

	result, err := s.extractor.ExtractArticle(markup, finalURL)
	if err != nil {
		return models.ScrapeResponse{}, err
	}
	s.log.Debug().Str("url", finalURL).Bool("fallback", result.Fallback).Int("length", result.Length).Msg("extracted article")
	return result, nil
}

// ScrapeSmartWithTimeout runs ScrapeSmart with a timeout
func (s *Scraper) ScrapeSmartWithTimeout(ctx context.Context, targetURL string, timeoutMs int) (models.ScrapeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	return s.ScrapeSmart(ctx, targetURL)
}

// Readable fetches targetURL and reports whether the page probably holds
// an article, without running the extraction.
func (s *Scraper) Readable(ctx context.Context, targetURL string) (bool, error) {
	markup, _, err := s.fetch(ctx, targetURL)
	if err != nil {
		return false, err
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return false, &models.ContentExtractionError{Step: "parse", Err: err}
	}
	return readability.IsProbablyReadable(doc, nil), nil
}
