package readability

import (
	"strconv"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"extract-article-reader/internal/tree"
)

// markDataTables records which tables below root hold tabular data.
func (p *parser) markDataTables(root *html.Node) {
	if p.dataTables == nil {
		p.dataTables = make(map[*html.Node]bool)
	}
	for _, table := range tree.ElementsByTag(root, "table") {
		if isDataTable(table) {
			p.dataTables[table] = true
		}
	}
}

func isDataTable(table *html.Node) bool {
	if dom.GetAttribute(table, "role") == "presentation" || dom.GetAttribute(table, "datatable") == "0" {
		return false
	}
	if tree.Find(table, "table") != nil {
		return false
	}
	if dom.GetAttribute(table, "summary") != "" {
		return true
	}
	if caption := tree.Find(table, "caption"); caption != nil && tree.InnerText(caption, true) != "" {
		return true
	}
	if len(tree.ElementsByTag(table, "col", "colgroup", "tfoot", "thead", "th")) > 0 {
		return true
	}
	rows, columns := tableSize(table)
	if rows >= 10 || columns > 4 {
		return true
	}
	return rows*columns > 10
}

// tableSize counts rows including rowspan and the widest row including colspan.
func tableSize(table *html.Node) (rows, columns int) {
	for _, tr := range tree.ElementsByTag(table, "tr") {
		rowSpan := spanAttr(tr, "rowspan")
		rows += rowSpan
		cols := 0
		for _, cell := range dom.Children(tr) {
			if tree.IsTag(cell, "td", "th") {
				cols += spanAttr(cell, "colspan")
			}
		}
		columns = max(columns, cols)
	}
	return rows, columns
}

func spanAttr(node *html.Node, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(dom.GetAttribute(node, name)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// collapseSingleCellTables replaces tables with one row and one cell by the
// cell: a <p> when the cell holds only phrasing content, a <div> otherwise.
func collapseSingleCellTables(root *html.Node) {
	for _, table := range tree.ElementsByTag(root, "table") {
		if table.Parent == nil {
			continue
		}
		body := table
		if tree.HasSingleTagInside(table, "tbody") {
			body = dom.FirstElementChild(table)
		}
		if !tree.HasSingleTagInside(body, "tr") {
			continue
		}
		row := dom.FirstElementChild(body)
		if !tree.HasSingleTagInside(row, "td") {
			continue
		}
		cell := dom.FirstElementChild(row)
		tag := "div"
		if tree.AllPhrasing(cell) {
			tag = "p"
		}
		tree.SetTag(cell, tag)
		tree.Replace(table, cell)
	}
}
