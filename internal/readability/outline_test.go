package readability

import (
	"testing"

	"github.com/go-shiori/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOutline(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body><div id="root">`+
		`<h2>One</h2><h3>Two</h3><h2 id="ros-1">Dup</h2><h4> </h4><h2 id="keep">Keep</h2>`+
		`</div></body></html>`, "", nil)
	root := firstByID(p.doc, "root")
	outline := p.buildOutline(root)

	require.Len(t, outline, 4)
	assert.Equal(t, []OutlineEntry{
		{ID: "ros-1", Level: 2, Type: "heading", Title: "One"},
		{ID: "ros-2", Level: 3, Type: "heading", Title: "Two"},
		{ID: "ros-3", Level: 2, Type: "heading", Title: "Dup"},
		{ID: "keep", Level: 2, Type: "heading", Title: "Keep"},
	}, outline)

	seen := make(map[string]bool)
	for _, entry := range outline {
		assert.False(t, seen[entry.ID], "duplicate id %s", entry.ID)
		seen[entry.ID] = true
		assert.NotNil(t, firstByID(root, entry.ID), "heading %q carries its id", entry.Title)
	}
}

func TestCollectLinks(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body><div id="root">`+
		`<a href="https://other.org/A">Other</a>`+
		`<a href="HTTPS://OTHER.ORG/a">Other again</a>`+
		`<a href="https://example.com/x">internal</a>`+
		`<a href="/relative">relative</a>`+
		`<a href="ftp://files.org/f">ftp</a>`+
		`<a href="https://img.org/p"><img alt="Pic" src="p.jpg"></a>`+
		`<a href="https://bare.org/" title="Bare site"></a>`+
		`</div></body></html>`, "https://example.com/post", nil)
	links := p.collectLinks(firstByID(p.doc, "root"))

	assert.Equal(t, []Link{
		{Title: "Other", Type: "text", URL: "https://other.org/A"},
		{Title: "Pic", Type: "text", URL: "https://img.org/p", Alt: "Pic"},
		{Title: "Bare site", Type: "text", URL: "https://bare.org/", Alt: "Bare site"},
	}, links)
}

func TestChooseCover(t *testing.T) {
	t.Parallel()

	markup := `<article><p><img src="lead.jpg"/><img src="c.jpg?a=1&amp;b=2"/></p></article>`
	candidates := []coverCandidate{
		{src: "a.jpg", w: 800, h: 600},
		{src: "b.jpg", w: 1200, h: 400},
		{src: "small.jpg", w: 400, h: 400},
		{src: "thin.jpg", w: 2000, h: 300},
		{src: "lead.jpg", w: 2000, h: 2000},
		{src: "c.jpg?a=1&b=2", w: 3000, h: 3000},
	}
	assert.Equal(t, "b.jpg", chooseCover(candidates, markup))
	assert.Empty(t, chooseCover(candidates[2:4], markup))
	assert.Empty(t, chooseCover(nil, markup))
}

func TestCoverCandidates_IncludeMetaImage(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body><div id="root"><img src="/a.jpg" width="900" height="600">`+
		`<img src="data:image/png;base64,AA"></div></body></html>`, "https://example.com/post", nil)
	candidates := p.coverCandidates(firstByID(p.doc, "root"), metadata{image: "/og.jpg", imageWidth: 1200, imageHeight: 630})

	assert.Equal(t, []coverCandidate{
		{src: "https://example.com/a.jpg", w: 900, h: 600},
		{src: "https://example.com/og.jpg", w: 1200, h: 630},
	}, candidates)
	assert.Equal(t, "https://example.com/og.jpg", chooseCover(candidates, dom.OuterHTML(firstByID(p.doc, "root"))))
}
