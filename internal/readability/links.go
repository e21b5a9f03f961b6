package readability

import (
	"net/url"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// collectLinks returns the external http(s) links of root, deduplicated by
// case-insensitive URL in document order.
func (p *parser) collectLinks(root *html.Node) []Link {
	links := []Link{}
	seen := make(map[string]bool)
	for _, a := range tree.ElementsByTag(root, "a") {
		href := strings.TrimSpace(dom.GetAttribute(a, "href"))
		u, err := url.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		if p.pageURL != nil && strings.EqualFold(u.Hostname(), p.pageURL.Hostname()) {
			continue
		}
		key := strings.ToLower(href)
		if seen[key] {
			continue
		}
		seen[key] = true

		alt := dom.GetAttribute(a, "title")
		if img := tree.Find(a, "img"); img != nil && alt == "" {
			alt = dom.GetAttribute(img, "alt")
		}
		title := tree.InnerText(a, true)
		if title == "" {
			title = alt
		}
		if title == "" {
			title = href
		}
		links = append(links, Link{Title: title, Type: "text", URL: href, Alt: alt})
	}
	return links
}
