package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"extract-article-reader/internal/config"
)

// BrowserClient renders pages in headless Chrome.
type BrowserClient struct {
	config  config.ScrapeConfig
	options BrowserOptions
	log     zerolog.Logger
}

func NewBrowserClient(cfg config.ScrapeConfig, log zerolog.Logger) *BrowserClient {
	opts := OptimizedBrowserOptions()
	opts.UserAgent = cfg.UserAgent
	return &BrowserClient{
		config:  cfg,
		options: opts,
		log:     log.With().Str("component", "browser").Logger(),
	}
}

// Fetch renders targetURL, then its alternates when the page is a
// Cloudflare challenge. It returns the rendered markup and the final URL.
func (b *BrowserClient) Fetch(ctx context.Context, targetURL string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, BrowserTimeout)
	defer cancel()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, BuildChromeOptions(b.options)...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx)
	defer cancel()

	start := time.Now()
	html, finalURL, err := b.navigateAndExtract(ctx, targetURL)
	if err == nil && !LooksLikeCFBlock(html) {
		b.log.Debug().Str("url", finalURL).Dur("took", time.Since(start)).Msg("rendered page")
		return html, finalURL, nil
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", "", err
	}

	blocked := err == nil

	alternates, aerr := GenerateAlternateURLs(targetURL)
	if aerr != nil {
		return "", "", aerr
	}
	for _, altURL := range alternates {
		html, finalURL, altErr := b.navigateAndExtract(ctx, altURL)
		if altErr == nil && !LooksLikeCFBlock(html) {
			b.log.Debug().Str("url", finalURL).Dur("took", time.Since(start)).Msg("rendered alternate")
			return html, finalURL, nil
		}
		if altErr == nil {
			blocked = true
		} else {
			err = altErr
		}
		if ctx.Err() != nil {
			break
		}
	}

	if blocked {
		return "", "", fmt.Errorf("%w: all URLs failed or were blocked by Cloudflare", errBlockedPage)
	}
	return "", "", err
}

// navigateAndExtract navigates to a URL and extracts HTML content
func (b *BrowserClient) navigateAndExtract(ctx context.Context, targetURL string) (string, string, error) {
	var html string
	var finalURL string

	err := chromedp.Run(ctx,
		chromedp.Navigate(targetURL),
		chromedp.Evaluate(GetRequestBlockingScript(b.options), nil),
		chromedp.WaitReady("body"),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", "", fmt.Errorf("navigation failed: %w", err)
	}

	return html, finalURL, nil
}
