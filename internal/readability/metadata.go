package readability

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	rxSpaces     = regexp.MustCompile(`\s+`)
)

// metadata is what the document head says about the article.
type metadata struct {
	title       string
	byline      string
	excerpt     string
	siteName    string
	image       string
	imageWidth  float64
	imageHeight float64
	lang        string
}

// plainText strips markup from s and decodes entities.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// readMetadata scans the meta tags for Dublin Core, Open Graph, Twitter and
// Weibo fields. The title falls back to the site title selector and the
// document <title>.
func (p *parser) readMetadata() metadata {
	doc := goquery.NewDocumentFromNode(p.doc)
	values := make(map[string]string)

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		matched := false
		if property := s.AttrOr("property", ""); property != "" {
			for _, m := range patterns[patMetaProperty].FindAllString(property, -1) {
				values[rxSpaces.ReplaceAllString(strings.ToLower(m), "")] = content
				matched = true
			}
		}
		if name := s.AttrOr("name", ""); !matched && patterns[patMetaName].MatchString(name) {
			key := rxSpaces.ReplaceAllString(strings.ToLower(name), "")
			values[strings.ReplaceAll(key, ".", ":")] = content
		}
	})

	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := values[k]; v != "" {
				return v
			}
		}
		return ""
	}

	md := metadata{
		title: pick("dc:title", "dcterm:title", "og:title", "weibo:article:title",
			"weibo:webpage:title", "title", "twitter:title"),
		byline: pick("dc:creator", "dcterm:creator", "author"),
		excerpt: pick("dc:description", "dcterm:description", "og:description",
			"weibo:article:description", "weibo:webpage:description", "description", "twitter:description"),
		siteName:    pick("og:site_name"),
		image:       pick("og:image", "twitter:image"),
		imageWidth:  parseDimension(pick("og:image:width")),
		imageHeight: parseDimension(pick("og:image:height")),
	}
	if author := values["article:author"]; md.byline == "" && author != "" && !strings.Contains(author, "://") {
		md.byline = author
	}

	if p.site.TitleElem != "" {
		if n := p.matchFirst(p.site.TitleElem, p.docElement); n != nil {
			if t := tree.InnerText(n, true); t != "" {
				md.title = t
			}
		}
	}
	if md.title == "" {
		md.title = p.documentTitle(doc)
	}

	md.title = plainText(md.title)
	md.byline = plainText(md.byline)
	md.excerpt = plainText(md.excerpt)
	md.siteName = plainText(md.siteName)
	md.lang = strings.TrimSpace(doc.Find("html").AttrOr("lang", ""))
	return md
}

// documentTitle derives a title from <title>, dropping site names
// separated by "|", "-", "»" and similar, or by a colon.
func (p *parser) documentTitle(doc *goquery.Document) string {
	original := strings.TrimSpace(doc.Find("title").First().Text())
	current := original
	hierarchical := false

	switch {
	case patterns[patTitleSep].MatchString(current):
		hierarchical = patterns[patTitleHier].MatchString(current)
		current = patterns[patTitleLast].ReplaceAllString(original, "$1")
		if wordCount(current) < 3 {
			current = patterns[patTitleFirst].ReplaceAllString(original, "$1")
		}
	case strings.Contains(current, ": "):
		exact := false
		doc.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			exact = strings.TrimSpace(s.Text()) == current
			return !exact
		})
		if !exact {
			current = original[strings.LastIndex(original, ": ")+2:]
			if wordCount(current) < 3 {
				current = original[strings.Index(original, ": ")+2:]
			} else if wordCount(original[:strings.Index(original, ": ")]) > 5 {
				current = original
			}
		}
	case len([]rune(current)) > 150 || len([]rune(current)) < 15:
		if h1 := doc.Find("h1"); h1.Length() == 1 {
			current = h1.Text()
		}
	}

	current = strings.TrimSpace(rxSpaces.ReplaceAllString(current, " "))
	words := wordCount(current)
	if words <= 4 && (!hierarchical || words != wordCount(patterns[patTitleSepChars].ReplaceAllString(original, ""))-1) {
		current = original
	}
	return current
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
