package readability

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"extract-article-reader/internal/tree"
)

// fixLazyImages copies the real source of lazily loaded images into src or
// srcset and drops tiny base64 placeholders.
func (p *parser) fixLazyImages(root *html.Node) {
	for _, elem := range tree.ElementsByTag(root, "img", "picture", "figure") {
		src := dom.GetAttribute(elem, "src")
		if parts := patterns[patB64DataURL].FindStringSubmatch(src); parts != nil {
			if parts[1] == "image/svg+xml" {
				continue
			}
			removable := false
			for _, attr := range elem.Attr {
				if attr.Key != "src" && patterns[patImageExt].MatchString(attr.Val) {
					removable = true
					break
				}
			}
			// Placeholders are a few dozen bytes of base64.
			if removable && len(src)-len(parts[0]) < 133 {
				dom.RemoveAttribute(elem, "src")
				src = ""
			}
		}

		srcset := dom.GetAttribute(elem, "srcset")
		lazy := strings.Contains(strings.ToLower(dom.ClassName(elem)), "lazy")
		if (src != "" || (srcset != "" && srcset != "null")) && !lazy {
			continue
		}

		for _, attr := range slices.Clone(elem.Attr) {
			switch attr.Key {
			case "src", "srcset", "alt":
				continue
			}
			copyTo := ""
			switch {
			case patterns[patSrcsetValue].MatchString(attr.Val):
				copyTo = "srcset"
			case patterns[patSrcValue].MatchString(attr.Val):
				copyTo = "src"
			}
			if copyTo == "" {
				continue
			}
			switch tree.Tag(elem) {
			case "img", "picture":
				dom.SetAttribute(elem, copyTo, attr.Val)
			case "figure":
				if len(tree.ElementsByTag(elem, "img", "picture")) == 0 {
					img := tree.NewElement("img")
					dom.SetAttribute(img, copyTo, attr.Val)
					elem.AppendChild(img)
				}
			}
		}
	}
}

// cleanImages removes images with a negative class weight or a resolved
// size below the thresholds.
func (p *parser) cleanImages(root *html.Node, flags Flags) {
	var nodes []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if tree.IsTag(c, "img", "svg") || isLazyImage(c) {
				nodes = append(nodes, c)
			}
			if tree.Tag(c) != "svg" {
				collect(c)
			}
		}
	}
	collect(root)

	for _, n := range nodes {
		if !tree.Contains(root, n) {
			continue
		}
		if classWeight(n, flags) < 0 {
			p.log.Debug().Str("src", dom.GetAttribute(n, "src")).Msg("removing image with negative weight")
			tree.Detach(n)
			continue
		}
		if w, h := p.imageSize(n); isTooSmall(w, h) {
			p.log.Debug().Str("src", dom.GetAttribute(n, "src")).Float64("width", w).Float64("height", h).Msg("removing small image")
			tree.Detach(n)
		}
	}
}

// isTooSmall is true for images up to 250x250 and for thin strips whose
// short side is at most 100 with an aspect ratio of 3 or more.
func isTooSmall(w, h float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	if w <= 250 && h <= 250 {
		return true
	}
	short, long := math.Min(w, h), math.Max(w, h)
	return short <= 100 && long <= 600 && long/short >= 3
}

// imageSize resolves the dimensions of an image element. Unknown sides are
// 0. When Options.Root is set it is searched for an image with the same src.
func (p *parser) imageSize(n *html.Node) (w, h float64) {
	w, h = nodeSize(n)
	if (w > 0 && h > 0) || p.opts.Root == nil {
		return w, h
	}
	src := dom.GetAttribute(n, "src")
	if src == "" {
		return w, h
	}
	for _, img := range tree.ElementsByTag(p.opts.Root, tree.Tag(n)) {
		if dom.GetAttribute(img, "src") != src {
			continue
		}
		rw, rh := nodeSize(img)
		if w == 0 {
			w = rw
		}
		if h == 0 {
			h = rh
		}
		break
	}
	return w, h
}

// nodeSize reads dimensions in order of trust: intrinsic size hints, inline
// style, width/height attributes, the widest srcset entry, then viewBox.
func nodeSize(n *html.Node) (w, h float64) {
	fill := func(cw, ch float64) {
		if w == 0 && cw > 0 {
			w = cw
		}
		if h == 0 && ch > 0 {
			h = ch
		}
	}

	for _, pair := range [][2]string{
		{"data-natural-width", "data-natural-height"},
		{"data-original-width", "data-original-height"},
		{"data-width", "data-height"},
	} {
		fill(parseDimension(dom.GetAttribute(n, pair[0])), parseDimension(dom.GetAttribute(n, pair[1])))
	}

	if style := dom.GetAttribute(n, "style"); style != "" {
		var sw, sh float64
		if m := patterns[patStyleWidth].FindStringSubmatch(style); m != nil {
			sw, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := patterns[patStyleHeight].FindStringSubmatch(style); m != nil {
			sh, _ = strconv.ParseFloat(m[1], 64)
		}
		fill(sw, sh)
	}

	fill(parseDimension(dom.GetAttribute(n, "width")), parseDimension(dom.GetAttribute(n, "height")))

	if srcset := dom.GetAttribute(n, "srcset"); srcset != "" {
		widest := 0.0
		for _, m := range patterns[patSrcsetWidth].FindAllStringSubmatch(srcset, -1) {
			if v, err := strconv.ParseFloat(m[2], 64); err == nil && v > widest {
				widest = v
			}
		}
		fill(widest, 0)
	}

	if viewBox := strings.Fields(strings.ReplaceAll(dom.GetAttribute(n, "viewBox"), ",", " ")); len(viewBox) == 4 {
		vw, _ := strconv.ParseFloat(viewBox[2], 64)
		vh, _ := strconv.ParseFloat(viewBox[3], 64)
		fill(vw, vh)
	}
	return w, h
}

// parseDimension parses "640" or "640px". Relative units yield 0.
func parseDimension(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// unwrapNoscriptImages recovers the real source of a placeholder <img>
// from the <noscript> right after it. Every <noscript> is then dropped.
func (p *parser) unwrapNoscriptImages(root *html.Node) {
	for _, ns := range tree.ElementsByTag(root, "noscript") {
		if !tree.Contains(root, ns) {
			continue
		}
		prev := prevSignificant(ns.PrevSibling)
		if tree.Tag(prev) == "img" && !hasUsableSource(prev) {
			if img := noscriptImage(ns); img != nil {
				for _, attr := range []string{"src", "srcset", "alt", "width", "height"} {
					if v := dom.GetAttribute(img, attr); v != "" && (attr == "src" || attr == "srcset" || !dom.HasAttribute(prev, attr)) {
						dom.SetAttribute(prev, attr, v)
					}
				}
				p.log.Debug().Str("src", dom.GetAttribute(prev, "src")).Msg("recovered image from noscript")
			}
		}
		tree.Detach(ns)
	}
}

func hasUsableSource(img *html.Node) bool {
	if dom.GetAttribute(img, "srcset") != "" {
		return true
	}
	src := strings.TrimSpace(dom.GetAttribute(img, "src"))
	return src != "" && !strings.HasPrefix(strings.ToLower(src), "data:")
}

// noscriptImage finds the <img> inside a <noscript>, parsing its raw text
// when the parser kept the content unparsed.
func noscriptImage(ns *html.Node) *html.Node {
	if img := tree.Find(ns, "img"); img != nil {
		return img
	}
	nodes, err := html.ParseFragment(strings.NewReader(dom.TextContent(ns)), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return nil
	}
	for _, n := range nodes {
		if tree.Tag(n) == "img" {
			return n
		}
		if img := tree.Find(n, "img"); img != nil {
			return img
		}
	}
	return nil
}

// dedupeImages removes repeated image sources. The enclosing <figure>,
// looked up within three levels, goes with the repeated image.
func dedupeImages(root *html.Node) {
	seen := make(map[string]bool)
	for _, img := range tree.ElementsByTag(root, "img") {
		if !tree.Contains(root, img) {
			continue
		}
		src := strings.TrimSpace(dom.GetAttribute(img, "src"))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			continue
		}
		if !seen[src] {
			seen[src] = true
			continue
		}
		target := img
		ancestor := img.Parent
		for level := 0; level < 3 && ancestor != nil && ancestor != root; level++ {
			if tree.Tag(ancestor) == "figure" {
				target = ancestor
				break
			}
			ancestor = ancestor.Parent
		}
		tree.Detach(target)
	}
}
