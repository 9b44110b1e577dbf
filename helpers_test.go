package hello_test

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"impractical.co/hello"
)

// badgeTextOf returns the text inside the name badge of doc, as a browser
// would show it, or "<no badge>" if doc doesn't have one.
func badgeTextOf(doc hello.MarkupDocument) string {
	root, err := html.Parse(bytes.NewReader(doc.Bytes()))
	if err != nil {
		return "<unparseable: " + err.Error() + ">"
	}
	badge := findByClass(root, "badge-text")
	if badge == nil {
		return "<no badge>"
	}
	return textOf(badge)
}

// countByClass returns the number of elements in doc with class.
func countByClass(doc hello.MarkupDocument, class string) int {
	root, err := html.Parse(bytes.NewReader(doc.Bytes()))
	if err != nil {
		return -1
	}
	var count int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, class) {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return count
}

func findByClass(n *html.Node, class string) *html.Node {
	if hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" && slices.Contains(strings.Fields(attr.Val), class) {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
