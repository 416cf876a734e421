package product

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText strips HTML markup from catalog descriptions and collapses runs of
// whitespace. Plain text only has its whitespace collapsed.
func cleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, div, tr, h1, h2, h3, h4").AppendHtml(" ")
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
