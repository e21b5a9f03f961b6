package readability

import (
	"testing"

	"github.com/go-shiori/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extract-article-reader/internal/tree"
)

func TestFixRelativeURIs(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body><div id="root">`+
		`<a id="a1" href="/about">about</a>`+
		`<a id="a2" href="#sec">section</a>`+
		`<a id="a3" href="javascript:void(0)">click</a>`+
		`<a id="a4" href="mailto:x@y.z">mail</a>`+
		`<img id="i1" src="img/a.png" srcset="a.png 1x, /b.png 2x">`+
		`<img id="i2" data-cell-options='{"src":"/c.jpg"}'>`+
		`<img id="i3" src="keep.png" data-cell-options='{bad'>`+
		`</div></body></html>`, "https://example.com/blog/post", nil)
	root := firstByID(p.doc, "root")
	p.fixRelativeURIs(root)

	assert.Equal(t, "https://example.com/about", dom.GetAttribute(firstByID(root, "a1"), "href"))
	assert.Equal(t, "#sec", dom.GetAttribute(firstByID(root, "a2"), "href"))
	assert.Nil(t, firstByID(root, "a3"))
	assert.Contains(t, dom.TextContent(root), "click")
	assert.Equal(t, "mailto:x@y.z", dom.GetAttribute(firstByID(root, "a4"), "href"))

	i1 := firstByID(root, "i1")
	assert.Equal(t, "https://example.com/blog/img/a.png", dom.GetAttribute(i1, "src"))
	assert.Equal(t, "https://example.com/blog/a.png 1x, https://example.com/b.png 2x", dom.GetAttribute(i1, "srcset"))

	i2 := firstByID(root, "i2")
	assert.Equal(t, "https://example.com/c.jpg", dom.GetAttribute(i2, "src"))
	assert.Equal(t, `{"src":"/c.jpg"}`, dom.GetAttribute(i2, "data-cell-options"))

	i3 := firstByID(root, "i3")
	assert.Equal(t, "https://example.com/blog/keep.png", dom.GetAttribute(i3, "src"))
}

func TestToAbsoluteURI_BaseElement(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><head><base href="https://cdn.example.org/assets/"></head><body></body></html>`,
		"https://example.com/post", nil)

	assert.Equal(t, "https://cdn.example.org/assets/a.png", p.toAbsoluteURI("a.png"))
	// With a foreign base, fragments resolve against it.
	assert.Equal(t, "https://cdn.example.org/assets/#top", p.toAbsoluteURI("#top"))
	assert.Equal(t, "data:image/png;base64,AA", p.toAbsoluteURI("data:image/png;base64,AA"))
}

func TestToAbsoluteURI_NoPageURL(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body></body></html>`, "", nil)
	assert.Equal(t, "/a.png", p.toAbsoluteURI("/a.png"))
}

func TestStripAttributes(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body><div id="root">`+
		`<p id="target" class="page intro" data-x="1" lang="en" onclick="x()">text</p>`+
		`<a href="#target" class="btn" title="t">jump</a>`+
		`<p id="orphan">more</p>`+
		`<svg id="s" class="icon" viewBox="0 0 1 1"></svg>`+
		`</div></body></html>`, "https://example.com/post", &Options{ClassesToPreserve: []string{"re:^in"}})
	root := firstByID(p.doc, "root")
	p.stripAttributes(root)

	target := firstByID(root, "target")
	require.NotNil(t, target)
	assert.Equal(t, "page intro", dom.ClassName(target))
	assert.Equal(t, "en", dom.GetAttribute(target, "lang"))
	assert.False(t, dom.HasAttribute(target, "data-x"))
	assert.False(t, dom.HasAttribute(target, "onclick"))

	a := dom.QuerySelector(root, "a")
	require.NotNil(t, a)
	assert.False(t, dom.HasAttribute(a, "class"))
	assert.Equal(t, "t", dom.GetAttribute(a, "title"))

	assert.Nil(t, firstByID(root, "orphan"))
	assert.Equal(t, "icon", dom.ClassName(firstByID(root, "s")))
}

func TestRemoveEmptyLeaves(t *testing.T) {
	t.Parallel()

	root := firstByID(parseDoc(t, `<div id="root"><div><span> </span></div><p>kept</p><img src="a.jpg"><svg></svg></div>`), "root")
	removeEmptyLeaves(root, nil)
	assert.Equal(t, `<p>kept</p><img src="a.jpg"/><svg></svg>`, dom.InnerHTML(root))
}

func TestCellOptionsSource(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, `<html><body></body></html>`, "https://example.com/post", nil)
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "src", raw: `{"src":"/a.jpg","width":10}`, want: "/a.jpg"},
		{name: "src before url", raw: `{"url":"/b.jpg","src":"/a.jpg"}`, want: "/a.jpg"},
		{name: "image", raw: `{"image":"/c.jpg"}`, want: "/c.jpg"},
		{name: "nested only", raw: `{"slides":[{"src":"/d.jpg"}]}`, want: ""},
		{name: "malformed", raw: `{bad`, want: ""},
		{name: "array", raw: `["/e.jpg"]`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.cellOptionsSource(tt.raw))
		})
	}
}

func TestPostProcess_KeepsEmptyFragmentTargets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		anchor string
		attr   string
		kept   bool
	}{
		{name: "named target", anchor: `<a name="sec"></a>`, attr: "name", kept: true},
		{name: "id target", anchor: `<a id="sec"></a>`, attr: "id", kept: true},
		{name: "unreferenced", anchor: `<a name="other"></a>`, attr: "name", kept: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newTestParser(t, `<html><body><div id="root">`+
				`<p><a href="#sec">jump</a></p>`+tt.anchor+`<p>Section body.</p>`+
				`</div></body></html>`, "https://example.com/post", nil)
			root := firstByID(p.doc, "root")
			p.postProcess(root)

			anchors := tree.ElementsByTag(root, "a")
			if !tt.kept {
				assert.Len(t, anchors, 1)
				return
			}
			require.Len(t, anchors, 2)
			assert.Equal(t, "sec", dom.GetAttribute(anchors[1], tt.attr))
			assert.Equal(t, "#sec", dom.GetAttribute(anchors[0], "href"))
		})
	}
}
