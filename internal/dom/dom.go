// Package dom holds small goquery helpers shared by the site extractors.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse builds a document from raw page bytes.
func Parse(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// TextContent concatenates every text node under n, in document order,
// without trimming or inserting separators.
func TextContent(n *html.Node) string {
	var buffer bytes.Buffer
	textContent(n, &buffer)
	return buffer.String()
}

func textContent(n *html.Node, buffer *bytes.Buffer) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		buffer.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, buffer)
	}
}

// OwnText returns the text that precedes the first child element of n,
// i.e. the node's leading text only.
func OwnText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil && c.Type != html.ElementNode; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// Texts returns the text content of each selected node.
func Texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, TextContent(n))
	}
	return out
}

// FirstText returns the trimmed text of the first node matched by selector,
// or fallback when nothing matches.
func FirstText(doc *goquery.Document, selector, fallback string) string {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return fallback
	}
	return strings.TrimSpace(TextContent(sel.Nodes[0]))
}
