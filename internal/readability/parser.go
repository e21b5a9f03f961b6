// Package readability extracts the main article of an HTML document: its
// cleaned markup, text, title, byline, outline and links.
//
// Parse scores the nodes of the document, picks the subtree most likely to
// be the article and cleans it. When the result is shorter than
// Options.CharThreshold the pass is retried with weaker heuristics, up to
// four passes in total.
package readability

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/dom"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"extract-article-reader/internal/lang"
	"extract-article-reader/internal/siteconfig"
	"extract-article-reader/internal/tree"
)

// wordsPerSecond is the reading speed behind ReadSeconds.
const wordsPerSecond = 3.5

type parser struct {
	opts    Options
	site    siteconfig.WebsiteConfig
	log     zerolog.Logger
	classes classMatcher

	doc        *html.Node
	docElement *html.Node
	body       *html.Node
	pageURL    *url.URL
	baseURL    *url.URL

	title          string
	byline         string
	bylineFromSite bool
	dataTables     map[*html.Node]bool
	idCounter      int
}

// FromReader parses the HTML read from r and runs Parse on it.
func FromReader(r io.Reader, pageURL string, opts *Options) (*Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return Parse(doc, pageURL, opts)
}

// Parse extracts the article of doc, which is modified in place. pageURL
// is used to resolve relative links and may be empty.
func Parse(doc *html.Node, pageURL string, opts *Options) (*Article, error) {
	o := opts.withDefaults()
	p := newParser(doc, pageURL, o)

	if o.MaxElemsToParse > 0 {
		if n := tree.CountElements(doc); n > o.MaxElemsToParse {
			return nil, fmt.Errorf("%w: %d elements, limit %d", ErrTooManyElements, n, o.MaxElemsToParse)
		}
	}
	if p.docElement == nil || p.body == nil {
		return nil, ErrNoBody
	}

	p.prepDocument()
	md := p.readMetadata()
	p.title = md.title

	res, err := p.selectContent()
	if err != nil {
		return nil, err
	}
	return p.buildArticle(res, md)
}

func newParser(doc *html.Node, pageURL string, opts Options) *parser {
	log := opts.logger()
	p := &parser{
		opts:       opts,
		site:       *opts.Site,
		log:        log,
		classes:    newClassMatcher(opts.ClassesToPreserve, log),
		doc:        doc,
		dataTables: make(map[*html.Node]bool),
	}

	switch doc.Type {
	case html.ElementNode:
		p.docElement = doc
	case html.DocumentNode:
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				p.docElement = c
				break
			}
		}
	}
	if p.docElement != nil {
		p.body = tree.Body(p.docElement)
	}

	if u, err := url.Parse(strings.TrimSpace(pageURL)); err == nil && u.IsAbs() {
		p.pageURL = u
		p.baseURL = u
	}
	if p.docElement != nil {
		if base := tree.Find(p.docElement, "base"); base != nil {
			if href := strings.TrimSpace(dom.GetAttribute(base, "href")); href != "" {
				if ref, err := url.Parse(href); err == nil {
					switch {
					case p.pageURL != nil:
						p.baseURL = p.pageURL.ResolveReference(ref)
					case ref.IsAbs():
						p.baseURL = ref
					}
				}
			}
		}
	}
	return p
}

// selectContent finds the content root, from the site selectors when they
// match and from the scoring passes otherwise.
func (p *parser) selectContent() (attempt, error) {
	if p.site.ContentElem != "" {
		if n := p.matchFirst(p.site.ContentElem, p.body); n != nil {
			p.log.Debug().Str("selector", p.site.ContentElem).Msg("using site content element")
			dir := nearestDir(n)
			root := tree.NewElement("div")
			tree.AppendChild(root, n)
			p.prepArticle(root, AllFlags(), true)
			return attempt{root: root, textLength: tree.TextLength(root), dir: dir}, nil
		}
	}

	if len(p.site.ExtractElems) > 0 {
		root := tree.NewElement("div")
		dir := ""
		picked := 0
		for _, sel := range p.site.ExtractElems {
			for _, n := range p.matchAll(sel, p.body) {
				if picked > 0 && p.site.ExtractElemsJoiner != "" {
					p.appendJoiner(root)
				}
				if picked == 0 {
					dir = nearestDir(n)
				}
				clone := dom.Clone(n, true)
				addClass(clone, pickedClass)
				root.AppendChild(clone)
				picked++
			}
		}
		if picked > 0 {
			p.log.Debug().Int("picked", picked).Msg("using site extract elements")
			p.prepArticle(root, AllFlags(), false)
			return attempt{root: root, textLength: tree.TextLength(root), dir: dir}, nil
		}
	}

	return p.grabWithRetry()
}

func (p *parser) appendJoiner(root *html.Node) {
	holder := tree.NewElement("div")
	if err := tree.SetInnerHTML(holder, p.site.ExtractElemsJoiner); err != nil {
		p.log.Warn().Err(err).Msg("ignoring invalid extract joiner")
		return
	}
	tree.MoveChildren(root, holder)
}

// buildArticle runs the final pass on the content root and assembles the
// result.
func (p *parser) buildArticle(res attempt, md metadata) (*Article, error) {
	root := res.root
	covers := p.coverCandidates(root, md)
	p.postProcess(root)

	text := tree.InnerText(root, false)
	length := utf8.RuneCountInString(text)
	images := len(tree.ElementsByTag(root, "img"))
	if length == 0 || (length < 100 && images < 2) {
		return nil, fmt.Errorf("%w: %d characters, %d images", ErrNoContent, length, images)
	}

	outline := p.buildOutline(root)
	links := p.collectLinks(root)

	article := tree.NewElement("article")
	tree.MoveChildren(article, root)
	markup := dom.OuterHTML(article)

	byline := p.byline
	if !p.bylineFromSite && md.byline != "" {
		byline = md.byline
	}
	byline = plainText(byline)

	excerpt := md.excerpt
	if excerpt == "" {
		if first := tree.Find(article, "p"); first != nil {
			excerpt = tree.InnerText(first, true)
		}
	}

	detected := lang.Detect(text)
	language := detected.Lang
	if !detected.Reliable && md.lang != "" {
		language = strings.ToLower(strings.SplitN(strings.ReplaceAll(md.lang, "_", "-"), "-", 2)[0])
	}

	readSeconds, readTime := ReadTime(detected.WordCount)

	a := &Article{
		Title:       p.title,
		CoverURL:    chooseCover(covers, markup),
		Byline:      byline,
		Dir:         res.dir,
		HTML:        markup,
		Text:        text,
		Length:      length,
		Excerpt:     excerpt,
		SiteName:    md.siteName,
		AuthorName:  authorName(byline),
		RTL:         strings.EqualFold(dom.GetAttribute(p.docElement, "dir"), "rtl"),
		Lang:        language,
		WordsCount:  detected.WordCount,
		ReadSeconds: readSeconds,
		ReadTime:    readTime,
		Outline:     outline,
		Links:       links,
	}
	if p.pageURL != nil {
		a.URL = p.pageURL.String()
		a.Domain = p.pageURL.Hostname()
	}
	return a, nil
}

// ReadTime returns the reading time of a text with the given word count,
// in seconds and as "m:ss".
func ReadTime(words int) (int, string) {
	seconds := int(math.Round(float64(words) / wordsPerSecond))
	return seconds, fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// authorName strips a leading "By" and similar from a byline.
func authorName(byline string) string {
	return strings.TrimSpace(patterns[patBylinePrefix].ReplaceAllString(byline, ""))
}
