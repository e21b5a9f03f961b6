package readability

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// passState is the scoring state of one grab pass. A fresh one is made for
// every pass so a node has a score entry only if this pass visited it.
type passState struct {
	flags      Flags
	scores     map[*html.Node]float64
	candidates []*html.Node
}

func newPassState(flags Flags) *passState {
	return &passState{flags: flags, scores: make(map[*html.Node]float64)}
}

// addCandidate gives node its initial score the first time it is seen.
func (st *passState) addCandidate(node *html.Node) {
	if _, ok := st.scores[node]; ok {
		return
	}
	st.scores[node] = initialScore(node, st.flags)
	st.candidates = append(st.candidates, node)
}

// initialScore is the tag weight of node plus its class weight.
func initialScore(node *html.Node, flags Flags) float64 {
	score := classWeight(node, flags)
	switch tree.Tag(node) {
	case "div":
		score += 5
	case "pre", "td", "blockquote":
		score += 3
	case "address", "ol", "ul", "dl", "dd", "dt", "li", "form":
		score -= 3
	case "h1", "h2", "h3", "h4", "h5", "h6", "th":
		score -= 5
	}
	return score
}

// classWeight scores class and id against the positive and negative
// patterns. Image-like elements are also matched against the image patterns.
func classWeight(node *html.Node, flags Flags) float64 {
	if !flags.WeightClasses {
		return 0
	}
	weight := 0.0
	for _, hint := range []string{dom.ClassName(node), dom.ID(node)} {
		if hint == "" {
			continue
		}
		if patterns[patNegative].MatchString(hint) {
			weight -= 25
		}
		if patterns[patPositive].MatchString(hint) {
			weight += 25
		}
	}
	if imageLikeTags[tree.Tag(node)] {
		hint := strings.Join([]string{dom.ClassName(node), dom.ID(node), dom.GetAttribute(node, "src")}, " ")
		if patterns[patImageNegative].MatchString(hint) {
			weight -= 25
		}
		if patterns[patImagePositive].MatchString(hint) {
			weight += 25
		}
	}
	return weight
}

// linkDensity is the share of node's text that sits inside anchors. Anchors
// pointing at an in-page fragment count for 30%. The result is in [0, 1].
func linkDensity(node *html.Node) float64 {
	textLength := tree.TextLength(node)
	if textLength == 0 {
		return 0
	}
	var linkLength float64
	for _, a := range tree.ElementsByTag(node, "a") {
		coefficient := 1.0
		if patterns[patHashURL].MatchString(dom.GetAttribute(a, "href")) {
			coefficient = 0.3
		}
		linkLength += float64(tree.TextLength(a)) * coefficient
	}
	density := linkLength / float64(textLength)
	switch {
	case density < 0:
		return 0
	case density > 1:
		return 1
	}
	return density
}

func commaCount(text string) int {
	return len(patterns[patCommas].FindAllStringIndex(text, -1))
}

func hasProtectedClass(node *html.Node) bool {
	return patterns[patProtected].MatchString(dom.ClassName(node))
}

// isPicked reports whether node, an ancestor or a descendant was chosen by a
// site extractElems selector.
func isPicked(node *html.Node) bool {
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if hasClass(n, pickedClass) {
			return true
		}
	}
	return hasDescendant(node, func(n *html.Node) bool { return hasClass(n, pickedClass) })
}

func hasClass(node *html.Node, class string) bool {
	for _, c := range strings.Fields(dom.ClassName(node)) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(node *html.Node, class string) {
	if hasClass(node, class) {
		return
	}
	classes := strings.TrimSpace(dom.ClassName(node) + " " + class)
	dom.SetAttribute(node, "class", classes)
}

func isLazyImage(node *html.Node) bool {
	for _, attr := range lazyImageAttrs {
		if dom.HasAttribute(node, attr) {
			return true
		}
	}
	return tree.IsTag(node, "img", "picture", "source") && strings.Contains(strings.ToLower(dom.ClassName(node)), "lazy")
}

func hasLazyImage(node *html.Node) bool {
	return isLazyImage(node) || hasDescendant(node, isLazyImage)
}

func hasMedia(node *html.Node) bool {
	return hasDescendant(node, func(n *html.Node) bool { return mediaTags[tree.Tag(n)] })
}

func isHighlightedCode(node *html.Node) bool {
	if !tree.IsTag(node, "pre", "code") {
		return false
	}
	if patterns[patCodeHighlight].MatchString(dom.ClassName(node)) {
		return true
	}
	return node.Parent != nil && patterns[patCodeHighlight].MatchString(dom.ClassName(node.Parent))
}

func containsHighlightedCode(node *html.Node) bool {
	return isHighlightedCode(node) || hasDescendant(node, isHighlightedCode)
}

// hasDescendant reports whether any element below node satisfies match.
func hasDescendant(node *html.Node, match func(*html.Node) bool) bool {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if match(c) || hasDescendant(c, match) {
			return true
		}
	}
	return false
}

// nearestDir returns the dir attribute of node or its closest ancestor.
func nearestDir(node *html.Node) string {
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if dir := dom.GetAttribute(n, "dir"); dir != "" {
			return dir
		}
	}
	return ""
}
