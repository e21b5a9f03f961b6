// Package scraper provides helper functions for article content extraction.
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindMetaTag searches for a meta tag with the given property or name
func FindMetaTag(doc *goquery.Document, property, name string) string {
	var value string

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return true
		}
		if property != "" && s.AttrOr("property", "") == property {
			value = content
			return false
		}
		if name != "" && s.AttrOr("name", "") == name {
			value = content
			return false
		}
		return true
	})

	return value
}

// ExtractTextFromElements extracts text content preserving structure from HTML elements
func ExtractTextFromElements(selection *goquery.Selection, elements string) string {
	var content strings.Builder

	selection.Find(elements).Each(func(_ int, s *goquery.Selection) {
		// Nested matches are written by their outermost match.
		if s.ParentsFiltered(elements).Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		switch goquery.NodeName(s) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if content.Len() > 0 {
				content.WriteString(DoubleNewline)
			}
			content.WriteString(text)
			content.WriteString(SingleNewline)
		default:
			if content.Len() > 0 {
				content.WriteString(SingleNewline)
			}
			content.WriteString(text)
		}
	})

	return content.String()
}
