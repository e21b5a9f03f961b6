package readability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func newTestParser(t *testing.T, markup, pageURL string, opts *Options) *parser {
	t.Helper()
	p := newParser(parseDoc(t, markup), pageURL, opts.withDefaults())
	require.NotNil(t, p.body)
	return p
}

// firstByID returns the first element of root with the given id.
func firstByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				for _, a := range c.Attr {
					if a.Key == "id" && a.Val == id {
						found = c
						return
					}
				}
				walk(c)
			}
		}
	}
	walk(root)
	return found
}

func countTags(root *html.Node, tag string) int {
	return len(tree.ElementsByTag(root, tag))
}
