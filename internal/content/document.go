package content

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// paragraphTags are the block-level elements counted in the paragraph
// index, matching the selector list the reader renders highlights against:
// p, li, h1-h6, blockquote, td, th, figcaption.
var paragraphTags = map[string]bool{
	"p": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "td": true, "th": true, "figcaption": true,
}

// Document is a parsed article content tree. The paragraph index it exposes
// is a pure function of the HTML: parsing the same sanitized snapshot always
// produces the same ordered paragraph list.
type Document struct {
	doc  *html.Node // full parsed document, kept for rendering
	root *html.Node // body element holding the content
}

// ParseDocument parses sanitized article HTML into a Document.
func ParseDocument(sanitized string) (*Document, error) {
	doc, err := html.Parse(strings.NewReader(sanitized))
	if err != nil {
		return nil, err
	}
	body := findElement(doc, "body")
	if body == nil {
		return nil, errors.New("content: no body in parsed document")
	}
	return &Document{doc: doc, root: body}, nil
}

// Root returns the content root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Paragraphs returns the paragraph-like elements under the content root in
// document order. This ordering is the coordinate space for anchors.
func (d *Document) Paragraphs() []*html.Node {
	var paragraphs []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode && paragraphTags[n.Data] {
			paragraphs = append(paragraphs, n)
		}
	})
	return paragraphs
}

// ParagraphTexts returns the concatenated text content of every paragraph,
// in index order.
func (d *Document) ParagraphTexts() []string {
	paragraphs := d.Paragraphs()
	texts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		texts[i] = Text(p)
	}
	return texts
}

// HTML renders the content back to an HTML fragment (children of the
// content root, without html/head/body wrappers).
func (d *Document) HTML() (string, error) {
	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// NodeAtPath resolves a child-index path from the content root. Returns nil
// if the path walks off the tree.
func (d *Document) NodeAtPath(path []int) *html.Node {
	n := d.root
	for _, idx := range path {
		if idx < 0 {
			return nil
		}
		c := n.FirstChild
		for ; c != nil && idx > 0; c = c.NextSibling {
			idx--
		}
		if c == nil {
			return nil
		}
		n = c
	}
	return n
}

// PathTo returns the child-index path from the content root to n, or nil if
// n is not under the root.
func (d *Document) PathTo(n *html.Node) []int {
	var path []int
	for n != nil && n != d.root {
		idx := 0
		for s := n.PrevSibling; s != nil; s = s.PrevSibling {
			idx++
		}
		path = append([]int{idx}, path...)
		n = n.Parent
	}
	if n == nil {
		return nil
	}
	return path
}

// Text returns the concatenated text content of n's subtree, in-order.
func Text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

// walk visits n and its subtree in pre-order (document order).
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
