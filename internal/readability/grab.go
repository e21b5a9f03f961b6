package readability

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// attempt is the outcome of one grab pass.
type attempt struct {
	root       *html.Node
	textLength int
	dir        string
}

// grabArticle runs one scoring pass over the document and returns the
// cleaned content root it picked. The document is mutated in place.
func (p *parser) grabArticle(flags Flags) attempt {
	p.log.Debug().Stringer("flags", flags).Msg("starting grab pass")
	st := newPassState(flags)

	elements := p.collectScorable(st)
	p.scoreElements(st, elements)
	top := p.topCandidates(st)
	root := p.resolveRoot(st, top)
	dir := nearestDir(root)

	article := p.absorbSiblings(st, root)
	p.prepArticle(article, flags, false)

	length := tree.TextLength(article)
	p.log.Debug().Int("textLength", length).Stringer("flags", flags).Msg("grab pass done")
	return attempt{root: article, textLength: length, dir: dir}
}

// collectScorable walks the whole document once, removing unwanted nodes,
// turning loose phrasing content into paragraphs and returning the
// elements to score.
func (p *parser) collectScorable(st *passState) []*html.Node {
	var toScore []*html.Node
	node := p.docElement
	for node != nil {
		tag := tree.Tag(node)
		matchString := dom.ClassName(node) + " " + dom.ID(node)

		if hasProtectedClass(node) {
			if tagsToScore[tag] {
				toScore = append(toScore, node)
			}
			toScore = append(toScore, tree.ElementsByTag(node, scorableTags...)...)
			node = tree.NextNode(node, true)
			continue
		}

		if p.checkByline(node, matchString) {
			node = tree.RemoveAndAdvance(node)
			continue
		}

		if st.flags.StripUnlikelys && isUnlikelyCandidate(node, tag, matchString) {
			p.log.Debug().Str("tag", tag).Str("match", matchString).Msg("removing unlikely candidate")
			node = tree.RemoveAndAdvance(node)
			continue
		}

		if emptyRemovableTags[tag] && isElementWithoutContent(node) {
			node = tree.RemoveAndAdvance(node)
			continue
		}

		if tagsToScore[tag] {
			toScore = append(toScore, node)
		}

		if tag == "div" {
			wrapPhrasingRuns(node)
			switch {
			case tree.HasSingleTagInside(node, "p") && linkDensity(node) < 0.25:
				child := dom.Children(node)[0]
				tree.Replace(node, child)
				node = child
				toScore = append(toScore, node)
			case !tree.HasChildBlockElement(node):
				tree.SetTag(node, "p")
				toScore = append(toScore, node)
			}
		}
		node = tree.NextNode(node, false)
	}
	return toScore
}

var scorableTags = func() []string {
	out := make([]string, 0, len(tagsToScore))
	for t := range tagsToScore {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}()

func isUnlikelyCandidate(node *html.Node, tag, matchString string) bool {
	if !patterns[patUnlikely].MatchString(matchString) || patterns[patOkMaybe].MatchString(matchString) {
		return false
	}
	switch tag {
	case "html", "body", "a":
		return false
	}
	if tree.Find(node, "a") != nil {
		return false
	}
	return !containsHighlightedCode(node)
}

// isElementWithoutContent reports whether node has no text, no media and no
// lazy-image marker.
func isElementWithoutContent(node *html.Node) bool {
	if strings.TrimSpace(dom.TextContent(node)) != "" {
		return false
	}
	return !hasMedia(node) && !hasLazyImage(node)
}

// wrapPhrasingRuns groups consecutive phrasing children of div into <p>
// elements, dropping whitespace left at the end of each group.
func wrapPhrasingRuns(div *html.Node) {
	var para *html.Node
	closePara := func() {
		for para != nil && para.LastChild != nil && tree.IsWhitespace(para.LastChild) {
			para.RemoveChild(para.LastChild)
		}
		para = nil
	}
	for child := div.FirstChild; child != nil; {
		next := child.NextSibling
		switch {
		case tree.IsPhrasingContent(child) && para != nil:
			tree.AppendChild(para, child)
		case tree.IsPhrasingContent(child):
			if !tree.IsWhitespace(child) {
				para = tree.NewElement("p")
				div.InsertBefore(para, child)
				tree.AppendChild(para, child)
			}
		default:
			closePara()
		}
		child = next
	}
	closePara()
}

// scoreElements adds the content score of every collected element to its
// three nearest ancestors.
func (p *parser) scoreElements(st *passState, elements []*html.Node) {
	for _, el := range elements {
		if el.Parent == nil || el.Parent.Type != html.ElementNode || !tree.Contains(p.docElement, el) {
			continue
		}
		text := tree.InnerText(el, true)
		length := utf8.RuneCountInString(text)
		if length < 25 {
			continue
		}
		ancestors := tree.Ancestors(el, 3)
		if len(ancestors) == 0 {
			continue
		}

		score := 1 + float64(commaCount(text)) + math.Min(math.Floor(float64(length)/100), 3)
		for level, ancestor := range ancestors {
			if ancestor.Parent == nil || ancestor.Parent.Type != html.ElementNode {
				continue
			}
			st.addCandidate(ancestor)
			divider := 1.0
			switch {
			case level == 1:
				divider = 2
			case level > 1:
				divider = float64(level * 3)
			}
			st.scores[ancestor] += score / divider
		}
	}
}

// topCandidates scales every candidate by its link density and keeps the
// best NbTopCandidates in descending order.
func (p *parser) topCandidates(st *passState) []*html.Node {
	limit := p.opts.NbTopCandidates
	top := make([]*html.Node, 0, limit+1)
	for _, c := range st.candidates {
		score := st.scores[c] * (1 - linkDensity(c))
		st.scores[c] = score
		idx := len(top)
		for i, t := range top {
			if score > st.scores[t] {
				idx = i
				break
			}
		}
		if idx >= limit {
			continue
		}
		top = slices.Insert(top, idx, c)
		if len(top) > limit {
			top = top[:limit]
		}
	}
	if p.log.Debug().Enabled() {
		for i, c := range top {
			p.log.Debug().Int("rank", i).Str("tag", tree.Tag(c)).
				Str("class", dom.ClassName(c)).Float64("score", st.scores[c]).Msg("top candidate")
		}
	}
	return top
}

// resolveRoot turns the candidate list into the single content root.
func (p *parser) resolveRoot(st *passState, top []*html.Node) *html.Node {
	var root *html.Node
	if len(top) > 0 {
		root = top[0]
	}
	if root == nil || tree.Tag(root) == "body" {
		wrapper := tree.NewElement("div")
		tree.MoveChildren(wrapper, p.body)
		p.body.AppendChild(wrapper)
		st.addCandidate(wrapper)
		p.log.Debug().Msg("no usable candidate, wrapping body")
		return wrapper
	}

	// Several close runners-up under one ancestor mean the article is split.
	if best := st.scores[root]; best > 0 {
		var alternatives [][]*html.Node
		for _, c := range top[1:] {
			if st.scores[c]/best >= 0.75 {
				alternatives = append(alternatives, tree.Ancestors(c, 0))
			}
		}
		if len(alternatives) >= 3 {
			for parent := root.Parent; isScorableAncestor(parent); parent = parent.Parent {
				hits := 0
				for _, ancestors := range alternatives {
					if slices.Contains(ancestors, parent) {
						hits++
					}
				}
				if hits >= 3 {
					root = parent
					break
				}
			}
		}
	}
	st.addCandidate(root)

	lastScore := st.scores[root]
	for parent := root.Parent; isScorableAncestor(parent); parent = parent.Parent {
		score, ok := st.scores[parent]
		if !ok {
			continue
		}
		if score < lastScore/3 || score <= lastScore {
			break
		}
		root = parent
		lastScore = score
	}

	for parent := root.Parent; isScorableAncestor(parent) && len(dom.Children(parent)) == 1; parent = root.Parent {
		root = parent
	}
	st.addCandidate(root)

	p.log.Debug().Str("tag", tree.Tag(root)).Str("class", dom.ClassName(root)).
		Float64("score", st.scores[root]).Msg("resolved content root")
	return root
}

func isScorableAncestor(node *html.Node) bool {
	return node != nil && node.Type == html.ElementNode && tree.Tag(node) != "body" && tree.Tag(node) != "html"
}

// absorbSiblings moves root and its qualifying siblings into a new container.
func (p *parser) absorbSiblings(st *passState, root *html.Node) *html.Node {
	article := tree.NewElement("div")
	rootScore := st.scores[root]
	threshold := math.Max(10, rootScore*0.2)
	rootClass := dom.ClassName(root)

	for _, sibling := range dom.Children(root.Parent) {
		if !shouldAbsorb(st, sibling, root, rootScore, threshold, rootClass) {
			continue
		}
		if !blockLevelTags[tree.Tag(sibling)] {
			tree.SetTag(sibling, "div")
		}
		tree.AppendChild(article, sibling)
	}
	return article
}

func shouldAbsorb(st *passState, sibling, root *html.Node, rootScore, threshold float64, rootClass string) bool {
	if sibling == root {
		return true
	}
	bonus := 0.0
	// Compared as whole attribute strings, not class sets.
	if rootClass != "" && dom.ClassName(sibling) == rootClass {
		bonus = rootScore * 0.2
	}
	if score, ok := st.scores[sibling]; ok && score+bonus >= threshold {
		return true
	}
	switch tree.Tag(sibling) {
	case "p":
		density := linkDensity(sibling)
		text := tree.InnerText(sibling, true)
		length := utf8.RuneCountInString(text)
		if length > 80 && density < 0.25 {
			return true
		}
		return length > 0 && length < 80 && density == 0 && patterns[patSentenceEnd].MatchString(text)
	case "figure", "picture":
		return hasLazyImage(sibling)
	}
	return false
}
