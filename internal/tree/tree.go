// Package tree provides traversal and mutation helpers over golang.org/x/net/html
// trees. Every walk in the extraction engine goes through NextNode so that a
// caller can always fetch the successor before detaching the current node.
package tree

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NextNode returns the depth-first, pre-order successor of node among element
// nodes. With skipChildren the subtree below node is not entered.
func NextNode(node *html.Node, skipChildren bool) *html.Node {
	if node == nil {
		return nil
	}
	if !skipChildren {
		if first := dom.FirstElementChild(node); first != nil {
			return first
		}
	}
	if next := dom.NextElementSibling(node); next != nil {
		return next
	}
	for node = node.Parent; node != nil; node = node.Parent {
		if next := dom.NextElementSibling(node); next != nil {
			return next
		}
	}
	return nil
}

// RemoveAndAdvance detaches node from its parent and returns the node that
// a walk would have visited after node's subtree.
func RemoveAndAdvance(node *html.Node) *html.Node {
	next := NextNode(node, true)
	Detach(node)
	return next
}

// Detach removes node from its parent, if it has one.
func Detach(node *html.Node) {
	if node != nil && node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

// AppendChild moves child to the end of parent's children, detaching it from
// its current position first. Node identity is preserved.
func AppendChild(parent, child *html.Node) {
	Detach(child)
	parent.AppendChild(child)
}

// Replace puts replacement where old is in the tree and detaches old.
func Replace(old, replacement *html.Node) {
	if old.Parent == nil {
		return
	}
	Detach(replacement)
	old.Parent.InsertBefore(replacement, old)
	old.Parent.RemoveChild(old)
}

// MoveChildren appends every child of src to dst, preserving order.
func MoveChildren(dst, src *html.Node) {
	for child := src.FirstChild; child != nil; {
		next := child.NextSibling
		AppendChild(dst, child)
		child = next
	}
}

// SetTag renames an element in place. Attributes, children and the node's
// identity are kept, so side tables keyed by the node stay valid.
func SetTag(node *html.Node, tag string) {
	tag = strings.ToLower(tag)
	node.Data = tag
	node.DataAtom = atom.Lookup([]byte(tag))
}

// Tag returns the lower-case tag name of an element, or "" for other nodes.
func Tag(node *html.Node) string {
	if node == nil || node.Type != html.ElementNode {
		return ""
	}
	return dom.TagName(node)
}

// IsTag reports whether node is an element with one of the given tag names.
func IsTag(node *html.Node, tags ...string) bool {
	name := Tag(node)
	if name == "" {
		return false
	}
	for _, t := range tags {
		if name == t {
			return true
		}
	}
	return false
}

// HasAncestorTag walks up to maxDepth parents (unbounded when maxDepth <= 0)
// and reports whether one of them is a tag element satisfying predicate.
func HasAncestorTag(node *html.Node, tag string, maxDepth int, predicate func(*html.Node) bool) bool {
	depth := 0
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if maxDepth > 0 && depth >= maxDepth {
			return false
		}
		if Tag(parent) == tag && (predicate == nil || predicate(parent)) {
			return true
		}
		depth++
	}
	return false
}

// Ancestors returns up to maxDepth element ancestors of node, nearest first.
// A maxDepth <= 0 returns all of them.
func Ancestors(node *html.Node, maxDepth int) []*html.Node {
	var out []*html.Node
	for parent := node.Parent; parent != nil && parent.Type == html.ElementNode; parent = parent.Parent {
		out = append(out, parent)
		if maxDepth > 0 && len(out) == maxDepth {
			break
		}
	}
	return out
}

// CountElements returns the number of element nodes under root, root included.
func CountElements(root *html.Node) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return count
}

// ElementsByTag returns the descendants of root (root excluded) whose tag is
// one of tags, in document order.
func ElementsByTag(root *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && IsTag(c, tags...) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Find returns the first descendant of root with the given tag, or nil.
func Find(root *html.Node, tag string) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if Tag(c) == tag {
			return c
		}
		if found := Find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Contains reports whether node is root or one of its descendants.
func Contains(root, node *html.Node) bool {
	for ; node != nil; node = node.Parent {
		if node == root {
			return true
		}
	}
	return false
}

// Body returns the <body> element of a parsed document, or nil.
func Body(doc *html.Node) *html.Node {
	bodies := dom.GetElementsByTagName(doc, "body")
	if len(bodies) == 0 {
		return nil
	}
	return bodies[0]
}
