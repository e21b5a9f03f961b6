package scraper

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  a  b   c  ", "a b c"},
		{"one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"\n\nkeep\n\nparagraphs\n", "keep\n\nparagraphs"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanWhitespace(tt.in), "input %q", tt.in)
	}
}

func TestIsCloudflareBlock(t *testing.T) {
	t.Parallel()

	assert.False(t, IsCloudflareBlock(nil))
	assert.False(t, IsCloudflareBlock(errors.New("connection refused")))
	assert.True(t, IsCloudflareBlock(errors.New("HTTP 403 for URL https://example.com: Forbidden")))
	assert.True(t, IsCloudflareBlock(errBlockedPage))
	assert.True(t, IsCloudflareBlock(errors.New("Performance & Security by Cloudflare")))
}

func TestLooksLikeCFBlock(t *testing.T) {
	t.Parallel()

	assert.True(t, LooksLikeCFBlock(`<title>Attention Required! | Cloudflare</title>`))
	assert.True(t, LooksLikeCFBlock(`<p>Cloudflare Ray ID: 1234</p>`))
	assert.False(t, LooksLikeCFBlock(`<p>An article about content delivery networks.</p>`))
}

func TestMetaRefreshTarget(t *testing.T) {
	t.Parallel()

	page := `<html><head><meta http-equiv="refresh" content="0; url=/next"></head></html>`
	assert.Equal(t, "/next", metaRefreshTarget(page))
	assert.Empty(t, metaRefreshTarget(`<html><body>no refresh</body></html>`))

	long := page + strings.Repeat(" ", metaRefreshMaxBytes)
	assert.Empty(t, metaRefreshTarget(long))
}

func TestFindMetaTag(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head>
		<meta property="og:image" content="">
		<meta name="twitter:image" content="https://cdn.example.com/t.jpg">
		<meta property="og:image" content="https://cdn.example.com/og.jpg">
	</head></html>`))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/t.jpg", FindMetaTag(doc, "og:image", "twitter:image"))
	assert.Equal(t, "https://cdn.example.com/og.jpg", FindMetaTag(doc, "og:image", ""))
	assert.Empty(t, FindMetaTag(doc, "og:title", "description"))
}

func TestExtractTextFromElements(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<article>
		<p>First paragraph.</p>
		<h2>Section</h2>
		<ul><li>item <p>nested</p></li></ul>
		<blockquote><p>Quoted</p></blockquote>
		<p>   </p>
	</article>`))
	require.NoError(t, err)

	got := ExtractTextFromElements(doc.Selection, TextElements)
	assert.Equal(t, "First paragraph.\n\nSection\n\nitem nested\nQuoted", got)
}
