package anchor_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/marginalia/internal/anchor"
	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
)

const testContent = `<h1>A Heading</h1><p>The quick brown fox jumps over the lazy dog.</p><p>Second paragraph with <em>nested emphasis</em> inside it.</p><ul><li>List item text</li></ul>`

func parse(t *testing.T, html string) *content.Document {
	t.Helper()
	doc, err := content.ParseDocument(html)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func render(t *testing.T, doc *content.Document) string {
	t.Helper()
	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return out
}

func mustResolve(t *testing.T, doc *content.Document, paragraphIndex, start, end int) *anchor.Resolved {
	t.Helper()
	sel, ok := anchor.MakeSelection(doc, paragraphIndex, start, end)
	if !ok {
		t.Fatalf("could not build selection for paragraph %d [%d:%d)", paragraphIndex, start, end)
	}
	resolved := anchor.Resolve(doc, sel)
	if resolved == nil {
		t.Fatalf("selection did not resolve for paragraph %d [%d:%d)", paragraphIndex, start, end)
	}
	return resolved
}

func TestResolve_RoundTrip(t *testing.T) {
	doc := parse(t, testContent)

	// "quick brown" in paragraph 1.
	resolved := mustResolve(t, doc, 1, 4, 15)

	if resolved.Text != "quick brown" {
		t.Errorf("expected text %q, got %q", "quick brown", resolved.Text)
	}
	if resolved.Anchor.ParagraphIndex != 1 || resolved.Anchor.StartOffset != 4 || resolved.Anchor.EndOffset != 15 {
		t.Errorf("unexpected anchor: %+v", resolved.Anchor)
	}

	// Re-applying the triple against a fresh parse marks exactly that text.
	fresh := parse(t, testContent)
	h := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1",
		Text:      resolved.Text,
		Color:     model.ColorYellow,
		Anchor:    resolved.Anchor,
	})
	anchor.Apply(fresh, []model.Highlight{h})

	out := render(t, fresh)
	want := `<mark data-highlight-id="` + h.ID + `" data-color="yellow">quick brown</mark>`
	if !strings.Contains(out, want) {
		t.Errorf("expected marker %q in output:\n%s", want, out)
	}
}

func TestResolve_AcrossInlineElements(t *testing.T) {
	doc := parse(t, testContent)

	// Paragraph 2 text: "Second paragraph with nested emphasis inside it."
	// The range spans plain text and the <em> element.
	resolved := mustResolve(t, doc, 2, 17, 37)
	if resolved.Text != "with nested emphasis" {
		t.Errorf("unexpected text: %q", resolved.Text)
	}
}

func TestResolve_RejectsCollapsed(t *testing.T) {
	doc := parse(t, testContent)
	sel, ok := anchor.MakeSelection(doc, 1, 4, 5)
	if !ok {
		t.Fatal("could not build selection")
	}
	sel.End = sel.Start // collapse

	if anchor.Resolve(doc, sel) != nil {
		t.Error("collapsed selection should not resolve")
	}
}

func TestResolve_RejectsCrossParagraph(t *testing.T) {
	doc := parse(t, testContent)
	a, ok := anchor.MakeSelection(doc, 1, 0, 5)
	if !ok {
		t.Fatal("could not build start selection")
	}
	b, ok := anchor.MakeSelection(doc, 2, 0, 5)
	if !ok {
		t.Fatal("could not build end selection")
	}
	cross := anchor.Selection{Start: a.Start, End: b.End}

	if anchor.Resolve(doc, cross) != nil {
		t.Error("cross-paragraph selection should not resolve")
	}
}

func TestApply_SpansMultipleTextNodes(t *testing.T) {
	doc := parse(t, testContent)

	// Cover "with nested emphasis inside" in paragraph 2: three text nodes
	// (before <em>, inside <em>, after <em>).
	h := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1",
		Text:      "with nested emphasis inside",
		Color:     model.ColorGreen,
		Anchor:    model.Anchor{ParagraphIndex: 2, StartOffset: 17, EndOffset: 44},
	})
	anchor.Apply(doc, []model.Highlight{h})

	out := render(t, doc)
	if got := strings.Count(out, anchor.MarkIDAttr); got != 3 {
		t.Errorf("expected 3 markers for a three-node span, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "<em>") {
		t.Errorf("inline element structure destroyed:\n%s", out)
	}

	// Marked or not, the paragraph's visible text must be unchanged.
	marked := parse(t, out)
	texts := marked.ParagraphTexts()
	if len(texts) < 3 || texts[2] != "Second paragraph with nested emphasis inside it." {
		t.Errorf("marking changed paragraph text: %v", texts)
	}
}

func TestApply_Idempotent(t *testing.T) {
	doc := parse(t, testContent)
	h := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1",
		Text:      "quick brown",
		Color:     model.ColorBlue,
		Anchor:    model.Anchor{ParagraphIndex: 1, StartOffset: 4, EndOffset: 15},
	})

	anchor.Apply(doc, []model.Highlight{h})
	once := render(t, doc)

	anchor.Apply(doc, []model.Highlight{h})
	twice := render(t, doc)

	if once != twice {
		t.Errorf("apply is not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
}

func TestUnwrap_RestoresOriginal(t *testing.T) {
	doc := parse(t, testContent)
	original := render(t, doc)

	h := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1",
		Text:      "lazy dog",
		Color:     model.ColorPink,
		Anchor:    model.Anchor{ParagraphIndex: 1, StartOffset: 35, EndOffset: 43},
	})
	anchor.Apply(doc, []model.Highlight{h})
	if !strings.Contains(render(t, doc), "<mark") {
		t.Fatal("marker was not applied")
	}

	anchor.Unwrap(doc)
	if got := render(t, doc); got != original {
		t.Errorf("unwrap did not restore original:\nwant: %s\ngot:  %s", original, got)
	}
}

func TestApply_MultipleHighlightsSameParagraph(t *testing.T) {
	doc := parse(t, testContent)

	// Non-overlapping ranges in the same paragraph, given out of document
	// order; both must land on their own text.
	early := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1", Text: "quick",
		Color:  model.ColorYellow,
		Anchor: model.Anchor{ParagraphIndex: 1, StartOffset: 4, EndOffset: 9},
	})
	late := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1", Text: "lazy",
		Color:  model.ColorOrange,
		Anchor: model.Anchor{ParagraphIndex: 1, StartOffset: 35, EndOffset: 39},
	})
	anchor.Apply(doc, []model.Highlight{late, early})

	out := render(t, doc)
	if !strings.Contains(out, `data-color="orange">lazy</mark>`) {
		t.Errorf("late highlight misplaced:\n%s", out)
	}
	if !strings.Contains(out, `data-color="yellow">quick</mark>`) {
		t.Errorf("early highlight misplaced:\n%s", out)
	}
}

func TestApply_SkipsStaleAnchors(t *testing.T) {
	doc := parse(t, testContent)

	stale := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1", Text: "gone",
		Color:  model.ColorYellow,
		Anchor: model.Anchor{ParagraphIndex: 99, StartOffset: 0, EndOffset: 4},
	})
	good := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a1", Text: "Heading",
		Color:  model.ColorGreen,
		Anchor: model.Anchor{ParagraphIndex: 0, StartOffset: 2, EndOffset: 9},
	})
	anchor.Apply(doc, []model.Highlight{stale, good})

	out := render(t, doc)
	if strings.Count(out, "<mark") != 1 {
		t.Errorf("expected exactly one marker, got:\n%s", out)
	}
	if !strings.Contains(out, ">Heading</mark>") {
		t.Errorf("good highlight lost to a stale sibling:\n%s", out)
	}
}
