package readability

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// allowedAttributes lists per tag the attributes kept by the final pass, in
// addition to globalAttributes, a referenced id and the preserved classes.
var allowedAttributes = map[string]map[string]bool{
	"a":          {"href": true, "title": true, "target": true, "rel": true},
	"img":        {"src": true, "alt": true, "srcset": true},
	"source":     {"src": true, "srcset": true, "type": true, "media": true, "sizes": true},
	"video":      {"src": true, "poster": true, "controls": true},
	"audio":      {"src": true, "controls": true},
	"track":      {"src": true, "kind": true, "srclang": true, "label": true},
	"iframe":     {"src": true, "allowfullscreen": true},
	"embed":      {"src": true, "type": true},
	"object":     {"data": true, "type": true},
	"td":         {"colspan": true, "rowspan": true, "headers": true},
	"th":         {"colspan": true, "rowspan": true, "headers": true, "scope": true},
	"col":        {"span": true},
	"colgroup":   {"span": true},
	"ol":         {"start": true, "reversed": true, "type": true},
	"li":         {"value": true},
	"time":       {"datetime": true},
	"blockquote": {"cite": true},
	"q":          {"cite": true},
	"del":        {"cite": true, "datetime": true},
	"ins":        {"cite": true, "datetime": true},
	"abbr":       {"title": true},
}

var globalAttributes = map[string]bool{"dir": true, "lang": true}

// keepWhenEmpty are leaves that carry meaning without text.
var keepWhenEmpty = map[string]bool{
	"img": true, "br": true, "hr": true, "video": true, "audio": true, "source": true,
	"track": true, "iframe": true, "embed": true, "object": true, "svg": true, "math": true,
	"canvas": true, "td": true, "th": true, "tr": true, "col": true, "colgroup": true, "wbr": true,
}


// postProcess is the last cleaning step, run once on the accepted root.
func (p *parser) postProcess(root *html.Node) {
	p.fixRelativeURIs(root)
	p.stripAttributes(root)
	removeEmptyLeaves(root, fragmentTargets(root, p.pageURL))
	dedupeImages(root)
}

// fixRelativeURIs makes link and media URLs absolute. javascript: links are
// replaced by their content.
func (p *parser) fixRelativeURIs(root *html.Node) {
	for _, a := range tree.ElementsByTag(root, "a") {
		href := dom.GetAttribute(a, "href")
		if href == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") {
			unwrapLink(a)
			continue
		}
		dom.SetAttribute(a, "href", p.toAbsoluteURI(href))
	}

	for _, media := range tree.ElementsByTag(root, "img", "picture", "figure", "video", "audio", "source", "track", "iframe", "embed") {
		for _, attr := range []string{"src", "poster", "data-src", "data-original", "data-lazy-src", "data-url", "data-hi-res-src"} {
			if v := dom.GetAttribute(media, attr); v != "" {
				dom.SetAttribute(media, attr, p.toAbsoluteURI(v))
			}
		}
		for _, attr := range []string{"srcset", "data-srcset", "data-lazy-srcset"} {
			if v := dom.GetAttribute(media, attr); v != "" {
				dom.SetAttribute(media, attr, p.absoluteSrcset(v))
			}
		}
		if v := dom.GetAttribute(media, "data-cell-options"); v != "" {
			if src := p.cellOptionsSource(v); src != "" && tree.Tag(media) == "img" && !hasUsableSource(media) {
				dom.SetAttribute(media, "src", p.toAbsoluteURI(src))
			}
		}
	}
}

func unwrapLink(a *html.Node) {
	if a.FirstChild != nil && a.FirstChild == a.LastChild && a.FirstChild.Type == html.TextNode {
		tree.Replace(a, tree.NewText(a.FirstChild.Data))
		return
	}
	span := tree.NewElement("span")
	tree.MoveChildren(span, a)
	tree.Replace(a, span)
}

// toAbsoluteURI resolves uri against the document base. Fragments of the
// document itself and opaque schemes are returned as is, as is anything
// that fails to parse.
func (p *parser) toAbsoluteURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if uri == "" || p.baseURL == nil {
		return uri
	}
	if strings.HasPrefix(uri, "#") && p.pageURL != nil && p.baseURL.String() == p.pageURL.String() {
		return uri
	}
	lower := strings.ToLower(uri)
	for _, scheme := range []string{"data:", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(lower, scheme) {
			return uri
		}
	}
	ref, err := url.Parse(uri)
	if err != nil {
		p.log.Debug().Err(err).Str("uri", uri).Msg("keeping unresolvable uri")
		return uri
	}
	return p.baseURL.ResolveReference(ref).String()
}

func (p *parser) absoluteSrcset(srcset string) string {
	rx := patterns[patSrcsetURL]
	return rx.ReplaceAllStringFunc(srcset, func(m string) string {
		sub := rx.FindStringSubmatch(m)
		if sub == nil {
			return m
		}
		return p.toAbsoluteURI(sub[1]) + sub[2] + sub[3]
	})
}

// cellOptionsSource returns the first top-level image URL of a JSON
// data-cell-options payload, or "" when there is none.
func (p *parser) cellOptionsSource(raw string) string {
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		p.log.Debug().Err(err).Msg("ignoring malformed data-cell-options")
		return ""
	}
	for _, key := range []string{"src", "url", "image"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// fragmentTargets collects the fragment names that anchors under root link
// to within the page itself.
func fragmentTargets(root *html.Node, pageURL *url.URL) map[string]bool {
	targets := make(map[string]bool)
	for _, a := range tree.ElementsByTag(root, "a") {
		href := strings.TrimSpace(dom.GetAttribute(a, "href"))
		if frag, ok := strings.CutPrefix(href, "#"); ok {
			if frag != "" {
				targets[frag] = true
			}
			continue
		}
		if pageURL == nil {
			continue
		}
		u, err := url.Parse(href)
		if err == nil && u.Fragment != "" && u.Host == pageURL.Host && u.Path == pageURL.Path {
			targets[u.Fragment] = true
		}
	}
	return targets
}

// stripAttributes applies the attribute allow-list below root. svg and math
// subtrees keep their attributes.
func (p *parser) stripAttributes(root *html.Node) {
	targets := fragmentTargets(root, p.pageURL)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || tree.IsTag(c, "svg", "math") {
				continue
			}
			p.stripNodeAttributes(c, targets)
			walk(c)
		}
	}
	walk(root)
}

func (p *parser) stripNodeAttributes(n *html.Node, targets map[string]bool) {
	allowed := allowedAttributes[tree.Tag(n)]
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		switch {
		case attr.Namespace != "":
		case key == "id", key == "name" && tree.IsTag(n, "a"):
			if targets[attr.Val] {
				kept = append(kept, attr)
			}
		case key == "class":
			if classes := p.filterClasses(attr.Val); classes != "" {
				attr.Val = classes
				kept = append(kept, attr)
			}
		case globalAttributes[key] || allowed[key]:
			kept = append(kept, attr)
		}
	}
	n.Attr = kept
}

func (p *parser) filterClasses(value string) string {
	var kept []string
	for _, c := range strings.Fields(value) {
		if p.classes.keep(c) {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}

// removeEmptyLeaves removes elements without children elements or text,
// innermost first, so containers emptied on the way go too. Empty anchors
// named in targets stay.
func removeEmptyLeaves(root *html.Node, targets map[string]bool) {
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && !tree.IsTag(c, "svg", "math") {
			removeEmptyLeaves(c, targets)
			if !keepWhenEmpty[tree.Tag(c)] && !isFragmentAnchor(c, targets) && dom.FirstElementChild(c) == nil && strings.TrimSpace(dom.TextContent(c)) == "" {
				root.RemoveChild(c)
			}
		}
		c = next
	}
}

func isFragmentAnchor(n *html.Node, targets map[string]bool) bool {
	if !tree.IsTag(n, "a") {
		return false
	}
	for _, attr := range []string{"id", "name"} {
		if v := dom.GetAttribute(n, attr); v != "" && targets[v] {
			return true
		}
	}
	return false
}
