// Package htmltext converts the HTML fragments the platform returns for post
// titles and content into markdown or plain text for the summary file.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToMarkdown renders an HTML fragment as markdown: anchors become [text](href),
// <p> and <br> become newlines, everything else is flattened to its text.
func ToMarkdown(fragment string) string {
	return convert(fragment, true)
}

// ToPlain renders an HTML fragment as plain text, dropping markup entirely.
func ToPlain(fragment string) string {
	return convert(fragment, false)
}

func convert(fragment string, markdown bool) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var sb strings.Builder
	for _, n := range nodes {
		walk(&sb, n, markdown)
	}
	return strings.TrimSpace(sb.String())
}

func walk(sb *strings.Builder, n *html.Node, markdown bool) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "p", "br", "div":
			sb.WriteString("\n")
		case "a":
			if markdown {
				sb.WriteString("[")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(sb, c, markdown)
				}
				sb.WriteString("](" + attr(n, "href") + ")")
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(sb, c, markdown)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
