package readability

import (
	"fmt"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// buildOutline lists the headings of root in document order. Headings
// without an id, or with one already used, get a generated "ros-N" id.
func (p *parser) buildOutline(root *html.Node) []OutlineEntry {
	outline := []OutlineEntry{}
	used := make(map[string]bool)
	for _, h := range tree.ElementsByTag(root, "h1", "h2", "h3", "h4", "h5", "h6") {
		title := tree.InnerText(h, true)
		if title == "" {
			continue
		}
		id := dom.ID(h)
		if id == "" || used[id] {
			id = p.nextOutlineID(used)
			dom.SetAttribute(h, "id", id)
		}
		used[id] = true
		outline = append(outline, OutlineEntry{
			ID:    id,
			Level: int(tree.Tag(h)[1] - '0'),
			Type:  "heading",
			Title: title,
		})
	}
	return outline
}

func (p *parser) nextOutlineID(used map[string]bool) string {
	for {
		p.idCounter++
		id := fmt.Sprintf("ros-%d", p.idCounter)
		if !used[id] {
			return id
		}
	}
}
