package googlebooks

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// cleanDescription converts HTML descriptions to Markdown. Plain text passes
// through unchanged; if conversion fails the text content is kept.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "<") {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return textContent(s)
	}
	return strings.TrimSpace(markdown)
}

// textContent returns the text nodes of an HTML fragment, whitespace collapsed.
func textContent(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
