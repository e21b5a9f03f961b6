package tree

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	rxNormalize  = regexp.MustCompile(`[\s\p{Zs}\x{FEFF}]{2,}`)
	rxHasContent = regexp.MustCompile(`\S$`)
)

// phrasingTags are the inline elements that may be wrapped into a paragraph.
var phrasingTags = map[string]bool{
	"abbr": true, "audio": true, "b": true, "bdo": true, "br": true, "button": true,
	"cite": true, "code": true, "data": true, "datalist": true, "dfn": true, "em": true,
	"embed": true, "i": true, "img": true, "input": true, "kbd": true, "label": true,
	"mark": true, "math": true, "meter": true, "noscript": true, "object": true,
	"output": true, "progress": true, "q": true, "ruby": true, "samp": true,
	"script": true, "select": true, "small": true, "span": true, "strong": true,
	"sub": true, "sup": true, "textarea": true, "time": true, "var": true, "wbr": true,
}

// blockTags are the children that keep a DIV from being turned into a paragraph.
var blockTags = map[string]bool{
	"blockquote": true, "dl": true, "div": true, "img": true, "ol": true,
	"p": true, "pre": true, "table": true, "ul": true,
}

// InnerText returns the trimmed text content of node. With normalizeSpaces,
// runs of two or more whitespace characters collapse to a single space.
func InnerText(node *html.Node, normalizeSpaces bool) string {
	text := strings.TrimSpace(dom.TextContent(node))
	if normalizeSpaces {
		text = rxNormalize.ReplaceAllString(text, " ")
	}
	return text
}

// TextLength is the rune count of the normalized inner text of node.
func TextLength(node *html.Node) int {
	return utf8.RuneCountInString(InnerText(node, true))
}

// IsPhrasingContent reports whether node is inline content: a text node, an
// inline tag, or an <a>/<del>/<ins> whose children are all phrasing content.
func IsPhrasingContent(node *html.Node) bool {
	if node.Type == html.TextNode {
		return true
	}
	if node.Type != html.ElementNode {
		return false
	}
	if phrasingTags[node.Data] {
		return true
	}
	if IsTag(node, "a", "del", "ins") {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if !IsPhrasingContent(c) {
				return false
			}
		}
		return true
	}
	return false
}

// IsWhitespace reports whether node is a blank text node or a <br>.
func IsWhitespace(node *html.Node) bool {
	switch node.Type {
	case html.TextNode:
		return strings.TrimSpace(node.Data) == ""
	case html.ElementNode:
		return node.Data == "br"
	}
	return false
}

// NextSignificant returns node or the first following sibling that is not a
// whitespace-only text node.
func NextSignificant(node *html.Node) *html.Node {
	for node != nil && node.Type != html.ElementNode && strings.TrimSpace(dom.TextContent(node)) == "" {
		node = node.NextSibling
	}
	return node
}

// HasSingleTagInside reports whether node has exactly one element child, of
// the given tag, and no text children with content.
func HasSingleTagInside(node *html.Node, tag string) bool {
	children := dom.Children(node)
	if len(children) != 1 || Tag(children[0]) != tag {
		return false
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && rxHasContent.MatchString(c.Data) {
			return false
		}
	}
	return true
}

// HasChildBlockElement reports whether any descendant of node is a block element.
func HasChildBlockElement(node *html.Node) bool {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockTags[c.Data] || HasChildBlockElement(c)) {
			return true
		}
	}
	return false
}

// AllPhrasing reports whether every child of node is phrasing content.
func AllPhrasing(node *html.Node) bool {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if !IsPhrasingContent(c) {
			return false
		}
	}
	return true
}

// SetInnerHTML replaces the children of node with markup parsed in node's context.
func SetInnerHTML(node *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     node.Data,
		DataAtom: node.DataAtom,
	})
	if err != nil {
		return err
	}
	for c := node.FirstChild; c != nil; {
		next := c.NextSibling
		node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		node.AppendChild(n)
	}
	return nil
}

// NewElement creates a detached element with the given tag.
func NewElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// NewText creates a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
