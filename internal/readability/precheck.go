package readability

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Precheck defaults.
const (
	DefaultMinContentLength = 140
	DefaultMinScore         = 20
)

// PrecheckOptions tunes IsProbablyReadable.
type PrecheckOptions struct {
	// MinContentLength is the text length a node needs to count.
	MinContentLength int
	// MinScore is the accumulated score that makes a document readable.
	MinScore float64
}

// IsProbablyReadable is a cheap test of whether Parse is likely to find an
// article in doc. It does not modify doc.
func IsProbablyReadable(doc *html.Node, opts *PrecheckOptions) bool {
	minLength, minScore := DefaultMinContentLength, float64(DefaultMinScore)
	if opts != nil {
		if opts.MinContentLength > 0 {
			minLength = opts.MinContentLength
		}
		if opts.MinScore > 0 {
			minScore = opts.MinScore
		}
	}

	gdoc := goquery.NewDocumentFromNode(doc)
	nodes := gdoc.Find("p, pre, article")
	// Paragraphs built from line breaks show up as <div> parents of <br>.
	nodes = nodes.AddSelection(gdoc.Find("div > br").Parent())

	score := 0.0
	readable := false
	nodes.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !isProbablyVisible(s) {
			return true
		}
		matchString := s.AttrOr("class", "") + " " + s.AttrOr("id", "")
		if patterns[patUnlikely].MatchString(matchString) && !patterns[patOkMaybe].MatchString(matchString) {
			return true
		}
		if s.Is("li p") {
			return true
		}
		length := utf8.RuneCountInString(strings.TrimSpace(s.Text()))
		if length < minLength {
			return true
		}
		score += math.Sqrt(float64(length - minLength))
		if score > minScore {
			readable = true
			return false
		}
		return true
	})
	return readable
}

func isProbablyVisible(s *goquery.Selection) bool {
	if patterns[patDisplayNone].MatchString(s.AttrOr("style", "")) {
		return false
	}
	if _, hidden := s.Attr("hidden"); hidden {
		return false
	}
	if s.AttrOr("aria-hidden", "") == "true" && !strings.Contains(s.AttrOr("class", ""), "fallback-image") {
		return false
	}
	return true
}
