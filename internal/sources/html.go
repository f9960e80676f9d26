package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// selectionText flattens the text nodes under sel, trimming each fragment
// and joining the non-empty ones with sep. Unlike goquery's Text it keeps
// a separator between fragments from sibling elements, which the
// line-anchored extraction patterns depend on.
func selectionText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(node *html.Node, parts *[]string) {
	if node.Type == html.TextNode {
		if t := strings.TrimSpace(node.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
