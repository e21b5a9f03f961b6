package readability

import (
	"math"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// Cover images must exceed these sizes.
const (
	coverMinWidth  = 500
	coverMinHeight = 300
	// coverLeadChars is the prefix of the article markup whose images are
	// already shown inline and so not used as the cover.
	coverLeadChars = 500
)

type coverCandidate struct {
	src  string
	w, h float64
}

// coverCandidates sizes the article images and the og:image. It runs
// before the final pass strips the size attributes.
func (p *parser) coverCandidates(root *html.Node, md metadata) []coverCandidate {
	var candidates []coverCandidate
	for _, img := range tree.ElementsByTag(root, "img") {
		src := strings.TrimSpace(dom.GetAttribute(img, "src"))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			continue
		}
		w, h := p.imageSize(img)
		candidates = append(candidates, coverCandidate{src: p.toAbsoluteURI(src), w: w, h: h})
	}
	if md.image != "" {
		candidates = append(candidates, coverCandidate{
			src: p.toAbsoluteURI(md.image),
			w:   md.imageWidth,
			h:   md.imageHeight,
		})
	}
	return candidates
}

// chooseCover returns the largest candidate by its longer side, skipping
// images found in the first characters of the final markup.
func chooseCover(candidates []coverCandidate, markup string) string {
	lead := markup
	if runes := []rune(markup); len(runes) > coverLeadChars {
		lead = string(runes[:coverLeadChars])
	}

	best, bestSide := "", 0.0
	for _, c := range candidates {
		if c.w <= coverMinWidth || c.h <= coverMinHeight {
			continue
		}
		if strings.Contains(lead, c.src) || strings.Contains(lead, html.EscapeString(c.src)) {
			continue
		}
		if side := math.Max(c.w, c.h); side > bestSide {
			best, bestSide = c.src, side
		}
	}
	return best
}
