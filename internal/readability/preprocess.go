package readability

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"extract-article-reader/internal/siteconfig"
	"extract-article-reader/internal/tree"
)

// prepDocument normalizes the whole document once, before any pass.
func (p *parser) prepDocument() {
	removeNodes(p.docElement, func(n *html.Node) bool {
		return n.Type == html.CommentNode || tree.IsTag(n, "script", "style")
	})

	for _, sel := range p.site.IgnoreElements {
		for _, n := range p.matchAll(sel, p.docElement) {
			tree.Detach(n)
		}
	}

	p.detectSiteAuthor()

	for _, ns := range tree.ElementsByTag(p.body, "noscript") {
		expandNoscript(ns)
	}

	for _, font := range tree.ElementsByTag(p.body, "font") {
		tree.SetTag(font, "span")
	}

	replaceBrs(p.body)
}

// expandNoscript parses the raw text the HTML parser keeps inside
// <noscript> into real child nodes, so its markup is not counted as text.
func expandNoscript(ns *html.Node) {
	if ns.FirstChild == nil || ns.FirstChild != ns.LastChild || ns.FirstChild.Type != html.TextNode {
		return
	}
	nodes, err := html.ParseFragment(strings.NewReader(ns.FirstChild.Data), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return
	}
	ns.RemoveChild(ns.FirstChild)
	for _, n := range nodes {
		ns.AppendChild(n)
	}
}

// removeNodes detaches every node below root for which match is true.
func removeNodes(root *html.Node, match func(*html.Node) bool) {
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if match(c) {
			root.RemoveChild(c)
		} else {
			removeNodes(c, match)
		}
		c = next
	}
}

// matchAll runs a site selector. Invalid selectors are logged and match nothing.
func (p *parser) matchAll(selector string, root *html.Node) []*html.Node {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		p.log.Warn().Err(err).Str("selector", selector).Msg("ignoring invalid site selector")
		return nil
	}
	return sel.MatchAll(root)
}

func (p *parser) matchFirst(selector string, root *html.Node) *html.Node {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		p.log.Warn().Err(err).Str("selector", selector).Msg("ignoring invalid site selector")
		return nil
	}
	return sel.MatchFirst(root)
}

// detectSiteAuthor applies the site author patterns in order. The first
// pattern yielding text sets the byline; later patterns are not tried.
func (p *parser) detectSiteAuthor() {
	var raw string
	for _, pattern := range p.site.AuthorName {
		if p.byline != "" {
			return
		}
		if expr, ok := strings.CutPrefix(pattern, siteconfig.AuthorRegexPrefix); ok {
			rx, err := regexp.Compile(expr)
			if err != nil {
				p.log.Warn().Err(err).Str("pattern", expr).Msg("ignoring invalid author pattern")
				continue
			}
			if raw == "" {
				raw = dom.OuterHTML(p.docElement)
			}
			m := rx.FindStringSubmatch(raw)
			if m == nil {
				continue
			}
			value := m[0]
			if len(m) > 1 && m[1] != "" {
				value = m[1]
			}
			p.setSiteByline(plainText(value))
			continue
		}
		if n := p.matchFirst(pattern, p.body); n != nil {
			if p.setSiteByline(tree.InnerText(n, true)) {
				tree.Detach(n)
			}
		}
	}
}

func (p *parser) setSiteByline(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	p.byline = text
	p.bylineFromSite = true
	return true
}

// checkByline records node as the byline when it looks like one and none
// was found yet. The caller removes the node on true.
func (p *parser) checkByline(node *html.Node, matchString string) bool {
	if p.byline != "" {
		return false
	}
	rel := dom.GetAttribute(node, "rel")
	itemprop := dom.GetAttribute(node, "itemprop")
	if rel != "author" && !strings.Contains(itemprop, "author") && !patterns[patByline].MatchString(matchString) {
		return false
	}
	text := tree.InnerText(node, true)
	if n := utf8.RuneCountInString(text); n == 0 || n >= 100 {
		return false
	}
	p.byline = text
	p.log.Debug().Str("byline", text).Msg("found byline")
	return true
}

// replaceBrs turns chains of two or more <br> into a paragraph holding the
// phrasing content that follows. Inside <pre> or <code> a lone <br>
// becomes a newline and chains are left alone.
func replaceBrs(root *html.Node) {
	for _, br := range tree.ElementsByTag(root, "br") {
		if br.Parent == nil || !tree.Contains(root, br) {
			continue
		}

		if tree.HasAncestorTag(br, "pre", 2, nil) || tree.HasAncestorTag(br, "code", 2, nil) {
			if tree.Tag(tree.NextSignificant(br.NextSibling)) != "br" && tree.Tag(prevSignificant(br.PrevSibling)) != "br" {
				tree.Replace(br, tree.NewText("\n"))
			}
			continue
		}

		replaced := false
		next := br.NextSibling
		for n := tree.NextSignificant(next); n != nil && tree.Tag(n) == "br"; n = tree.NextSignificant(next) {
			replaced = true
			next = n.NextSibling
			tree.Detach(n)
		}
		if !replaced {
			continue
		}

		para := tree.NewElement("p")
		tree.Replace(br, para)
		for next = para.NextSibling; next != nil; {
			if tree.Tag(next) == "br" {
				if tree.Tag(tree.NextSignificant(next.NextSibling)) == "br" {
					break
				}
			}
			if !tree.IsPhrasingContent(next) {
				break
			}
			sibling := next.NextSibling
			tree.AppendChild(para, next)
			next = sibling
		}
		for para.LastChild != nil && tree.IsWhitespace(para.LastChild) {
			para.RemoveChild(para.LastChild)
		}
		if tree.Tag(para.Parent) == "p" {
			tree.SetTag(para.Parent, "div")
		}
	}
}

func prevSignificant(node *html.Node) *html.Node {
	for node != nil && node.Type != html.ElementNode && strings.TrimSpace(dom.TextContent(node)) == "" {
		node = node.PrevSibling
	}
	return node
}
