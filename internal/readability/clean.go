package readability

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// prepArticle cleans a content root. skipClean disables the conditional
// removals, for roots picked directly by a site selector.
func (p *parser) prepArticle(root *html.Node, flags Flags, skipClean bool) {
	for _, sel := range p.site.ExcludeElems {
		for _, n := range p.matchAll(sel, root) {
			if n != root {
				tree.Detach(n)
			}
		}
	}
	cleanStyles(root)
	p.markDataTables(root)
	p.fixLazyImages(root)

	if !skipClean {
		p.cleanConditionally(root, "form", flags)
		p.cleanConditionally(root, "fieldset", flags)
		cleanTags(root, "object", "embed", "h1", "footer", "link", "aside", "canvas")

		for _, child := range dom.Children(root) {
			p.cleanMatchedNodes(child, func(n *html.Node, matchString string) bool {
				return patterns[patShare].MatchString(matchString) && tree.TextLength(n) < p.opts.CharThreshold
			})
		}

		p.removeTitleHeading(root)

		cleanTags(root, "iframe", "input", "textarea", "select", "button")
		p.cleanHeaders(root, flags)

		p.cleanConditionally(root, "table", flags)
		p.cleanConditionally(root, "ul", flags)
		p.cleanConditionally(root, "div", flags)
	}

	p.cleanImages(root, flags)
	p.unwrapNoscriptImages(root)

	removeNodes(root, func(n *html.Node) bool {
		if !tree.IsTag(n, "p") {
			return false
		}
		media := len(tree.ElementsByTag(n, "img", "embed", "object", "iframe", "picture", "video", "svg"))
		return media == 0 && tree.InnerText(n, false) == ""
	})
	for _, br := range tree.ElementsByTag(root, "br") {
		if tree.Tag(tree.NextSignificant(br.NextSibling)) == "p" {
			tree.Detach(br)
		}
	}
	collapseSingleCellTables(root)
}

// cleanStyles drops presentational attributes below root, leaving <svg>
// subtrees untouched.
func cleanStyles(root *html.Node) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || tree.Tag(c) == "svg" {
			continue
		}
		if tree.IsTag(c, "img", "picture") {
			keepLayoutSize(c)
		}
		for _, attr := range presentationalAttributes {
			dom.RemoveAttribute(c, attr)
		}
		if deprecatedSizeAttributeElems[tree.Tag(c)] {
			dom.RemoveAttribute(c, "width")
			dom.RemoveAttribute(c, "height")
		}
		cleanStyles(c)
	}
}

// keepLayoutSize saves pixel sizes of the inline style as data-width and
// data-height before the style is dropped.
func keepLayoutSize(n *html.Node) {
	style := dom.GetAttribute(n, "style")
	if style == "" {
		return
	}
	for _, side := range []struct{ pattern, attr string }{
		{patStyleWidth, "data-width"},
		{patStyleHeight, "data-height"},
	} {
		if m := patterns[side.pattern].FindStringSubmatch(style); m != nil && !dom.HasAttribute(n, side.attr) {
			dom.SetAttribute(n, side.attr, m[1])
		}
	}
}

// cleanTags removes every descendant with one of tags. Embeds pointing at
// a known video host and picked elements are kept.
func cleanTags(root *html.Node, tags ...string) {
	for _, n := range tree.ElementsByTag(root, tags...) {
		if tree.IsTag(n, "object", "embed", "iframe") && isVideoEmbed(n) {
			continue
		}
		if hasClass(n, pickedClass) {
			continue
		}
		tree.Detach(n)
	}
}

func isVideoEmbed(n *html.Node) bool {
	for _, attr := range n.Attr {
		if patterns[patVideos].MatchString(attr.Val) {
			return true
		}
	}
	return tree.IsTag(n, "object") && patterns[patVideos].MatchString(dom.InnerHTML(n))
}

// cleanMatchedNodes removes the descendants of e for which filter is true.
func (p *parser) cleanMatchedNodes(e *html.Node, filter func(*html.Node, string) bool) {
	end := tree.NextNode(e, true)
	for next := tree.NextNode(e, false); next != nil && next != end; {
		if filter(next, dom.ClassName(next)+" "+dom.ID(next)) {
			next = tree.RemoveAndAdvance(next)
		} else {
			next = tree.NextNode(next, false)
		}
	}
}

// removeTitleHeading drops a lone <h2> that repeats the article title.
func (p *parser) removeTitleHeading(root *html.Node) {
	h2s := tree.ElementsByTag(root, "h2")
	if len(h2s) != 1 || p.title == "" {
		return
	}
	heading := tree.InnerText(h2s[0], true)
	titleLen := float64(utf8.RuneCountInString(p.title))
	rate := (float64(utf8.RuneCountInString(heading)) - titleLen) / titleLen
	if math.Abs(rate) >= 0.5 {
		return
	}
	var match bool
	if rate > 0 {
		match = strings.Contains(heading, p.title)
	} else {
		match = strings.Contains(p.title, heading)
	}
	if match {
		tree.Detach(h2s[0])
	}
}

// cleanHeaders removes h1/h2 elements with a negative class weight unless
// an in-page anchor points at them.
func (p *parser) cleanHeaders(root *html.Node, flags Flags) {
	targets := fragmentTargets(root, p.pageURL)
	for _, h := range tree.ElementsByTag(root, "h1", "h2") {
		if classWeight(h, flags) < 0 && !isAnchorTarget(h, targets) {
			p.log.Debug().Str("heading", tree.InnerText(h, true)).Msg("removing header with negative weight")
			tree.Detach(h)
		}
	}
}

func isAnchorTarget(node *html.Node, targets map[string]bool) bool {
	if len(targets) == 0 {
		return false
	}
	match := func(n *html.Node) bool {
		return targets[dom.ID(n)] || (tree.Tag(n) == "a" && targets[dom.GetAttribute(n, "name")])
	}
	return match(node) || hasDescendant(node, match)
}

// isProtected reports whether node is exempt from conditional removal.
func (p *parser) isProtected(node *html.Node) bool {
	if p.dataTables[node] || tree.HasAncestorTag(node, "table", 0, func(t *html.Node) bool { return p.dataTables[t] }) {
		return true
	}
	if hasDescendant(node, func(n *html.Node) bool { return p.dataTables[n] }) {
		return true
	}
	if tree.HasAncestorTag(node, "code", 0, nil) || tree.HasAncestorTag(node, "pre", 0, nil) || containsHighlightedCode(node) {
		return true
	}
	return isPicked(node)
}

// cleanConditionally removes descendants with the given tag that look like
// boilerplate. Nodes are visited innermost first.
func (p *parser) cleanConditionally(root *html.Node, tag string, flags Flags) {
	if !flags.CleanConditionally {
		return
	}
	nodes := tree.ElementsByTag(root, tag)
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		if !tree.Contains(root, node) {
			continue
		}
		if p.shouldRemoveConditionally(node, tag, flags) {
			p.log.Debug().Str("tag", tag).Str("class", dom.ClassName(node)).Msg("conditionally removing node")
			tree.Detach(node)
		}
	}
}

func (p *parser) shouldRemoveConditionally(node *html.Node, tag string, flags Flags) bool {
	if p.isProtected(node) {
		return false
	}

	text := tree.InnerText(node, true)
	contentLength := utf8.RuneCountInString(text)
	isList := tag == "ul" || tag == "ol"
	if !isList && contentLength > 0 {
		listLength := 0
		for _, list := range tree.ElementsByTag(node, "ul", "ol") {
			listLength += tree.TextLength(list)
		}
		isList = float64(listLength)/float64(contentLength) > 0.9
	}

	weight := classWeight(node, flags)
	if weight < 0 {
		return true
	}
	if commaCount(text) >= 20 {
		return false
	}

	paragraphs := len(tree.ElementsByTag(node, "p"))
	images := len(tree.ElementsByTag(node, "img"))
	// Lists get an allowance of 100 items before they outweigh paragraphs.
	listItems := len(tree.ElementsByTag(node, "li")) - 100
	inputs := len(tree.ElementsByTag(node, "input"))

	embeds := 0
	for _, embed := range tree.ElementsByTag(node, "object", "embed", "iframe") {
		if isVideoEmbed(embed) {
			return false
		}
		embeds++
	}

	density := linkDensity(node)
	inFigure := tree.HasAncestorTag(node, "figure", 3, nil)

	remove := (images > 1 && float64(paragraphs)/float64(images) < 0.5 && !inFigure) ||
		((tag == "ul" || tag == "ol") && len(tree.ElementsByTag(node, "li")) == 0) ||
		(!isList && listItems > paragraphs) ||
		(inputs > paragraphs/3) ||
		(!isList && contentLength < 25 && (images == 0 || images > 2) && !inFigure) ||
		(!isList && weight < 25 && density > 0.2) ||
		(weight >= 25 && density > 0.5) ||
		((embeds == 1 && contentLength < 75) || embeds > 1)

	// A list of images with one image per item is a gallery.
	if isList && remove {
		for _, child := range dom.Children(node) {
			if len(dom.Children(child)) > 1 {
				return remove
			}
		}
		if images > 0 && images == len(tree.ElementsByTag(node, "li")) {
			return false
		}
	}
	return remove
}
