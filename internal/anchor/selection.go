// Package anchor converts text selections into stable paragraph-relative
// anchors and re-applies stored highlights to freshly parsed content.
//
// Offsets are counted in runes over the concatenated text content of a
// paragraph-like element, never over raw HTML, so formatting tags inside a
// paragraph do not move anchors.
package anchor

import (
	"golang.org/x/net/html"

	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
)

// Point addresses a position inside the content tree: a child-index path
// from the content root to a text node, plus a rune offset into that node.
// It is the tree-shaped stand-in for one boundary of a live DOM range.
type Point struct {
	Path   []int
	Offset int
}

// Selection is a pair of points produced by the UI layer from a native text
// selection.
type Selection struct {
	Start Point
	End   Point
}

// Resolved is a selection converted to a stable anchor, together with the
// exact text it covers.
type Resolved struct {
	Anchor model.Anchor
	Text   string
}

// Resolve converts a selection into a paragraph-relative anchor. It returns
// nil when the selection is invalid: collapsed, outside the content root,
// not on text nodes, or spanning more than one paragraph.
func Resolve(doc *content.Document, sel Selection) *Resolved {
	startNode := doc.NodeAtPath(sel.Start.Path)
	endNode := doc.NodeAtPath(sel.End.Path)
	if startNode == nil || endNode == nil {
		return nil
	}
	if startNode.Type != html.TextNode || endNode.Type != html.TextNode {
		return nil
	}
	if startNode == endNode && sel.Start.Offset == sel.End.Offset {
		return nil // collapsed
	}

	// First paragraph in index order that contains the start node.
	paragraphs := doc.Paragraphs()
	paragraphIndex := -1
	var para *html.Node
	for i, p := range paragraphs {
		if containsNode(p, startNode) {
			paragraphIndex = i
			para = p
			break
		}
	}
	if paragraphIndex == -1 {
		return nil
	}

	// In-order text walk accumulating rune counts. Both boundaries must
	// land inside this paragraph; cross-paragraph selections are rejected.
	charCount := 0
	startOffset, endOffset := 0, 0
	foundStart, foundEnd := false, false
	for _, node := range textNodes(para) {
		if node == startNode {
			startOffset = charCount + sel.Start.Offset
			foundStart = true
		}
		if node == endNode {
			endOffset = charCount + sel.End.Offset
			foundEnd = true
			break
		}
		charCount += len([]rune(node.Data))
	}
	if !foundStart || !foundEnd || endOffset <= startOffset {
		return nil
	}

	text := []rune(content.Text(para))
	if endOffset > len(text) {
		return nil
	}

	return &Resolved{
		Anchor: model.Anchor{
			ParagraphIndex: paragraphIndex,
			StartOffset:    startOffset,
			EndOffset:      endOffset,
		},
		Text: string(text[startOffset:endOffset]),
	}
}

// MakeSelection builds the selection a UI would produce for the given
// paragraph-relative rune range: it locates the text nodes containing both
// boundaries and returns node-local points. Returns false when the range
// does not fit the paragraph.
func MakeSelection(doc *content.Document, paragraphIndex, start, end int) (Selection, bool) {
	paragraphs := doc.Paragraphs()
	if paragraphIndex < 0 || paragraphIndex >= len(paragraphs) || start < 0 || end <= start {
		return Selection{}, false
	}
	para := paragraphs[paragraphIndex]

	var sel Selection
	foundStart, foundEnd := false, false
	charCount := 0
	for _, node := range textNodes(para) {
		length := len([]rune(node.Data))
		if !foundStart && start >= charCount && start < charCount+length {
			sel.Start = Point{Path: doc.PathTo(node), Offset: start - charCount}
			foundStart = true
		}
		if !foundEnd && end > charCount && end <= charCount+length {
			sel.End = Point{Path: doc.PathTo(node), Offset: end - charCount}
			foundEnd = true
		}
		charCount += length
	}
	if !foundStart || !foundEnd {
		return Selection{}, false
	}
	return sel, true
}

// textNodes returns the text nodes of n's subtree in document order.
func textNodes(n *html.Node) []*html.Node {
	var nodes []*html.Node
	var visit func(*html.Node)
	visit = func(c *html.Node) {
		if c.Type == html.TextNode {
			nodes = append(nodes, c)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return nodes
}

func containsNode(root, target *html.Node) bool {
	for n := target; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// runeSlice slices s by rune positions, clamping out-of-range bounds.
func runeSlice(s string, start, end int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}
