package anchor

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
)

// Attribute names carried by every marker so interactions can resolve a
// clicked marker back to its highlight.
const (
	MarkIDAttr    = "data-highlight-id"
	MarkColorAttr = "data-color"
)

// Apply marks every highlight's text span in the document. Prior markers
// are fully unwrapped first so offset math never runs against a tree that
// already contains marks. Highlights whose anchors no longer resolve are
// skipped individually; one stale highlight never blocks the rest.
func Apply(doc *content.Document, highlights []model.Highlight) {
	Unwrap(doc)

	paragraphs := doc.Paragraphs()
	for i := range highlights {
		h := &highlights[i]
		if h.ParagraphIndex < 0 || h.ParagraphIndex >= len(paragraphs) {
			continue // content changed underneath this highlight
		}
		applyToParagraph(paragraphs[h.ParagraphIndex], h)
	}
}

// Unwrap removes every marker from the document, merging marker text back
// into the surrounding text nodes and renormalizing adjacent text nodes.
// Running it against an unmarked tree is a no-op.
func Unwrap(doc *content.Document) {
	marks := findMarks(doc.Root())
	for _, mark := range marks {
		parent := mark.Parent
		if parent == nil {
			continue
		}
		for mark.FirstChild != nil {
			child := mark.FirstChild
			mark.RemoveChild(child)
			parent.InsertBefore(child, mark)
		}
		parent.RemoveChild(mark)
	}
	normalize(doc.Root())
}

// textSpan is one clipped sub-range of a text node covered by a highlight.
type textSpan struct {
	node       *html.Node
	start, end int // rune offsets local to the node
}

// applyToParagraph wraps the highlight's range inside para. Sub-ranges are
// wrapped in reverse document order: wrapping a text node splits it, which
// would invalidate forward-iteration offsets for later nodes.
func applyToParagraph(para *html.Node, h *model.Highlight) {
	charCount := 0
	var spans []textSpan

	for _, node := range textNodes(para) {
		length := len([]rune(node.Data))
		nodeStart := charCount
		nodeEnd := charCount + length

		if nodeEnd > h.StartOffset && nodeStart < h.EndOffset {
			start := h.StartOffset - nodeStart
			if start < 0 {
				start = 0
			}
			end := h.EndOffset - nodeStart
			if end > length {
				end = length
			}
			if start >= end {
				return // stale anchor produced an inverted clip, skip highlight
			}
			spans = append(spans, textSpan{node: node, start: start, end: end})
		}

		charCount += length
	}

	for i := len(spans) - 1; i >= 0; i-- {
		wrapSpan(spans[i], h)
	}
}

// wrapSpan splits the span's text node into (before, mark, after) pieces.
func wrapSpan(span textSpan, h *model.Highlight) {
	parent := span.node.Parent
	if parent == nil {
		return
	}

	before := runeSlice(span.node.Data, 0, span.start)
	marked := runeSlice(span.node.Data, span.start, span.end)
	after := runeSlice(span.node.Data, span.end, len([]rune(span.node.Data)))

	mark := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr: []html.Attribute{
			{Key: MarkIDAttr, Val: h.ID},
			{Key: MarkColorAttr, Val: string(h.Color)},
		},
	}
	mark.AppendChild(&html.Node{Type: html.TextNode, Data: marked})

	if before != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, span.node)
	}
	parent.InsertBefore(mark, span.node)
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, span.node)
	}
	parent.RemoveChild(span.node)
}

// MarkID returns the highlight id carried by a marker element, or "".
func MarkID(n *html.Node) string {
	if n.Type != html.ElementNode || n.Data != "mark" {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == MarkIDAttr {
			return attr.Val
		}
	}
	return ""
}

func findMarks(root *html.Node) []*html.Node {
	var marks []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if MarkID(n) != "" {
			marks = append(marks, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return marks
}

// normalize merges adjacent sibling text nodes throughout the subtree,
// mirroring DOM Node.normalize().
func normalize(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue // retry merge with the new next sibling
		}
		if c.Type == html.ElementNode {
			normalize(c)
		}
		c = next
	}
}
