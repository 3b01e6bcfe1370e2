package document

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// fromHTML reduces an HTML document to its title and readable body text.
// It prefers <main> or <article> over <body> and skips script, style and
// navigation boilerplate. Paragraph-level elements become blank-line
// separated blocks so the splitter sees the same shape as plain text input.
func fromHTML(input []byte) (string, string) {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return "", ""
	}

	title := strings.TrimSpace(headTitle(root))
	content := firstElement(root, "main")
	if content == nil {
		content = firstElement(root, "article")
	}
	if content == nil {
		content = firstElement(root, "body")
	}
	if content == nil {
		return title, ""
	}

	var b strings.Builder
	walkText(&b, content)
	return title, collapseBlankLines(b.String())
}

func headTitle(root *html.Node) string {
	head := firstElement(root, "head")
	if head == nil {
		return ""
	}
	t := firstElement(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func firstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func walkText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe":
			return
		case "br":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(strings.ReplaceAll(n.Data, "\t", " "))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "div", "section":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		}
	}
}

// collapseBlankLines trims every line and squeezes runs of blank lines down
// to a single separator.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}
