package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/models"
)

// ErrNotHTML is returned for responses that are not HTML documents.
var ErrNotHTML = errors.New("non-HTML content-type")

var errBlockedPage = errors.New("CF_BLOCKED")

type HTTPClient struct {
	client *http.Client
	config config.ScrapeConfig
	log    zerolog.Logger
}

func NewHTTPClient(cfg config.ScrapeConfig, log zerolog.Logger) *HTTPClient {
	// Configure HTTP client with connection pooling
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client: client,
		config: cfg,
		log:    log.With().Str("component", "http").Logger(),
	}
}

// setRequestHeaders sets browser-like headers on the request
func (h *HTTPClient) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Referer", "https://www.google.com/")
}

// retryWithBackoff waits with exponential backoff, then fetches again.
func (h *HTTPClient) retryWithBackoff(ctx context.Context, targetURL string, retryCount int, cause error) (string, string, error) {
	if retryCount >= h.config.MaxRetries {
		return "", "", fmt.Errorf("max retries exceeded: %w", cause)
	}

	delay := time.Duration(1000*(1<<retryCount)) * time.Millisecond
	if delay > 5*time.Second {
		delay = 5 * time.Second
	}
	h.log.Debug().Str("url", targetURL).Dur("delay", delay).Int("retry", retryCount+1).Msg("retrying after server error")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", "", ctx.Err()
	case <-timer.C:
	}
	return h.FetchHTML(ctx, targetURL, retryCount+1)
}

// FetchHTML fetches HTML content from a URL with retry logic. It returns
// the body and the URL it was served from after redirects.
func (h *HTTPClient) FetchHTML(ctx context.Context, targetURL string, retryCount int) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	h.setRequestHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		statusErr := &models.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        targetURL,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
		if resp.StatusCode >= 500 {
			return h.retryWithBackoff(ctx, targetURL, retryCount, statusErr)
		}
		return "", "", statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	lower := strings.ToLower(contentType)
	if !strings.Contains(lower, "text/html") && !strings.Contains(lower, "application/xhtml") {
		return "", "", fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(h.config.SizeLimitBytes)))
	if err != nil {
		return "", "", fmt.Errorf("failed to read response: %w", err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return string(body), finalURL, nil
}

// GenerateAlternateURLs creates alternative URLs for AMP/mobile fallback
func GenerateAlternateURLs(originalURL string) ([]string, error) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return nil, &models.InvalidURLError{URL: originalURL, Err: err}
	}

	alternates := make([]string, 0, 4)

	// AMP prefix (/amp/path)
	if !strings.HasPrefix(u.Path, "/amp/") {
		ampURL := *u
		ampURL.Path = "/amp" + u.Path
		alternates = append(alternates, ampURL.String())
	}

	// AMP suffix (/path/amp)
	if !strings.HasSuffix(u.Path, "/amp") {
		ampURL := *u
		ampURL.Path = strings.TrimSuffix(ampURL.Path, "/") + "/amp"
		alternates = append(alternates, ampURL.String())
	}

	// Query AMP
	queryURL := *u
	query := queryURL.Query()
	query.Set("outputType", "amp")
	queryURL.RawQuery = query.Encode()
	alternates = append(alternates, queryURL.String())

	// m. subdomain
	if !strings.HasPrefix(u.Hostname(), "m.") {
		mobileURL := *u
		mobileURL.Host = "m." + u.Host
		alternates = append(alternates, mobileURL.String())
	}

	return alternates, nil
}

// shouldTryAlternates reports whether a failed primary fetch is worth
// retrying on the AMP and mobile variants.
func shouldTryAlternates(err error) bool {
	if errors.Is(err, errBlockedPage) {
		return true
	}
	var httpErr *models.HTTPError
	if errors.As(err, &httpErr) {
		return alternateStatusCodes[httpErr.StatusCode] || httpErr.StatusCode >= 500
	}
	return false
}

// Fetch tries the primary URL first, then its alternates in parallel. The
// first alternate that returns a usable page wins.
func (h *HTTPClient) Fetch(ctx context.Context, targetURL string) (string, string, error) {
	html, finalURL, err := h.FetchHTML(ctx, targetURL, 0)
	if err == nil {
		if next := metaRefreshTarget(html); next != "" {
			if ref, perr := url.Parse(next); perr == nil {
				if base, perr := url.Parse(finalURL); perr == nil {
					h.log.Debug().Str("from", finalURL).Str("to", next).Msg("following meta refresh")
					html, finalURL, err = h.FetchHTML(ctx, base.ResolveReference(ref).String(), 0)
				}
			}
		}
	}
	if err == nil && !LooksLikeCFBlock(html) {
		return html, finalURL, nil
	}
	if err == nil {
		err = errBlockedPage
	}
	if !shouldTryAlternates(err) {
		return "", "", err
	}

	alternates, aerr := GenerateAlternateURLs(targetURL)
	if aerr != nil {
		return "", "", aerr
	}
	h.log.Debug().Err(err).Strs("alternates", alternates).Msg("primary fetch failed, trying alternates")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type fetched struct {
		html string
		url  string
	}
	results := make(chan fetched, len(alternates))
	var g errgroup.Group
	for _, altURL := range alternates {
		g.Go(func() error {
			body, final, err := h.FetchHTML(ctx, altURL, 0)
			if err != nil {
				return err
			}
			if LooksLikeCFBlock(body) {
				return errBlockedPage
			}
			results <- fetched{html: body, url: final}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(results)
	}()

	if result, ok := <-results; ok {
		return result.html, result.url, nil
	}
	return "", "", fmt.Errorf("all alternate URLs failed: %w", errors.Join(err, <-done))
}
