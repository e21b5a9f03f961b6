// Package scraper provides browser configuration options for Chrome automation.
package scraper

import (
	"encoding/json"

	"github.com/chromedp/chromedp"
)

// BrowserOptions contains configuration for browser automation
type BrowserOptions struct {
	Optimized    bool
	BlockImages  bool
	BlockJS      bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	// BlockedDomains are refused by the fetch and XHR overrides.
	BlockedDomains []string
}

// DefaultBrowserOptions returns standard browser options
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		WindowWidth:    DefaultWindowWidth,
		WindowHeight:   DefaultWindowHeight,
		BlockedDomains: BlockedDomains,
	}
}

// OptimizedBrowserOptions returns optimized browser options for faster scraping
func OptimizedBrowserOptions() BrowserOptions {
	opts := DefaultBrowserOptions()
	opts.Optimized = true
	opts.BlockImages = true
	return opts
}

// BuildChromeOptions creates Chrome options based on BrowserOptions
func BuildChromeOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	chromeOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	chromeOpts = append(chromeOpts,
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-features", "VizDisplayCompositor"),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)

	if opts.UserAgent != "" {
		chromeOpts = append(chromeOpts, chromedp.UserAgent(opts.UserAgent))
	}

	if opts.Optimized {
		if opts.BlockImages {
			chromeOpts = append(chromeOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
		}
		if opts.BlockJS {
			chromeOpts = append(chromeOpts, chromedp.Flag("disable-javascript", true))
		}
		chromeOpts = append(chromeOpts,
			chromedp.Flag("disable-plugins", true),
			chromedp.Flag("disable-extensions", true),
		)
	}

	return chromeOpts
}

// GetRequestBlockingScript returns JavaScript for blocking unwanted requests
func GetRequestBlockingScript(opts BrowserOptions) string {
	domains, err := json.Marshal(opts.BlockedDomains)
	if err != nil || opts.BlockedDomains == nil {
		domains = []byte("[]")
	}

	script := `
		const blockedDomains = ` + string(domains) + `;
		const isBlocked = (url) => typeof url === 'string' && blockedDomains.some(domain => url.includes(domain));

		const originalFetch = window.fetch;
		window.fetch = function(...args) {
			if (isBlocked(args[0])) {
				return Promise.reject(new Error('Blocked'));
			}
			return originalFetch.apply(this, args);
		};

		const originalOpen = XMLHttpRequest.prototype.open;
		XMLHttpRequest.prototype.open = function(method, url, ...args) {
			if (isBlocked(url)) {
				throw new Error('Blocked');
			}
			return originalOpen.apply(this, [method, url, ...args]);
		};
	`

	if opts.Optimized {
		script += `
		Object.defineProperty(navigator, 'webdriver', {
			get: () => false
		});
		`
	}

	return script
}
