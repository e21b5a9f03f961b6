package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserOptions(t *testing.T) {
	t.Parallel()

	def := DefaultBrowserOptions()
	assert.False(t, def.Optimized)
	assert.Equal(t, DefaultWindowWidth, def.WindowWidth)
	assert.Equal(t, BlockedDomains, def.BlockedDomains)

	opt := OptimizedBrowserOptions()
	assert.True(t, opt.Optimized)
	assert.True(t, opt.BlockImages)
	assert.False(t, opt.BlockJS)

	assert.Greater(t, len(BuildChromeOptions(opt)), len(BuildChromeOptions(def)))
}

func TestGetRequestBlockingScript(t *testing.T) {
	t.Parallel()

	script := GetRequestBlockingScript(BrowserOptions{BlockedDomains: []string{"ads.example", "track'er"}})
	assert.Contains(t, script, `const blockedDomains = ["ads.example","track'er"];`)
	assert.NotContains(t, script, "webdriver")

	optimized := GetRequestBlockingScript(OptimizedBrowserOptions())
	assert.Contains(t, optimized, `"doubleclick"`)
	assert.Contains(t, optimized, "webdriver")

	assert.True(t, strings.Contains(GetRequestBlockingScript(BrowserOptions{}), "const blockedDomains = [];"))
}
