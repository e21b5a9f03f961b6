package readability

import (
	"testing"

	"github.com/go-shiori/dom"
	"github.com/stretchr/testify/assert"
)

func TestIsDataTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"presentation role", `<table id="t" role="presentation" summary="x"><tr><td>a</td></tr></table>`, false},
		{"summary", `<table id="t" summary="Sales"><tr><td>a</td></tr></table>`, true},
		{"caption", `<table id="t"><caption>Sales</caption><tr><td>a</td></tr></table>`, true},
		{"header cells", `<table id="t"><tr><th>a</th></tr></table>`, true},
		{"nested table", `<table id="t"><tr><td><table><tr><th>a</th></tr></table></td></tr></table>`, false},
		{"many columns", `<table id="t"><tr><td>1</td><td>2</td><td>3</td><td>4</td><td>5</td></tr></table>`, true},
		{"colspan counts", `<table id="t"><tr><td colspan="5">1</td></tr></table>`, true},
		{"large grid", `<table id="t"><tr><td>1</td><td>2</td><td>3</td><td>4</td></tr>` +
			`<tr><td>1</td><td>2</td><td>3</td><td>4</td></tr><tr><td>1</td><td>2</td><td>3</td><td>4</td></tr></table>`, true},
		{"small layout grid", `<table id="t"><tr><td>1</td><td>2</td></tr><tr><td>3</td><td>4</td></tr></table>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isDataTable(firstByID(parseDoc(t, tt.markup), "t")))
		})
	}
}

func TestCollapseSingleCellTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"phrasing cell", `<table><tbody><tr><td>Hello <b>world</b></td></tr></tbody></table>`, `<p>Hello <b>world</b></p>`},
		{"block cell", `<table><tr><td><div>block</div></td></tr></table>`, `<div><div>block</div></div>`},
		{"two cells", `<table><tr><td>a</td><td>b</td></tr></table>`, `<table><tbody><tr><td>a</td><td>b</td></tr></tbody></table>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := firstByID(parseDoc(t, `<div id="root">`+tt.markup+`</div>`), "root")
			collapseSingleCellTables(root)
			assert.Equal(t, tt.want, dom.InnerHTML(root))
		})
	}
}
