package content_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/marginalia/internal/content"
)

func TestSanitize_StripsScriptsAndHandlers(t *testing.T) {
	raw := `<p onclick="alert(1)">Hello <script>alert(2)</script>world</p>`
	got := content.Sanitize(raw)

	if strings.Contains(got, "script") {
		t.Errorf("script survived sanitization: %q", got)
	}
	if strings.Contains(got, "onclick") {
		t.Errorf("event handler survived sanitization: %q", got)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Errorf("text content lost: %q", got)
	}
}

func TestSanitize_KeepsStructure(t *testing.T) {
	raw := `<h2>Title</h2><p>Body with <em>emphasis</em> and <a href="https://example.com">a link</a>.</p><ul><li>one</li></ul>`
	got := content.Sanitize(raw)

	for _, want := range []string{"<h2>", "<em>", "<li>", `href="https://example.com"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in sanitized output, got %q", want, got)
		}
	}
}

func TestSanitize_AllowsEmbeds(t *testing.T) {
	raw := `<iframe src="https://www.youtube.com/embed/x" allowfullscreen="true"></iframe>`
	got := content.Sanitize(raw)

	if !strings.Contains(got, "<iframe") {
		t.Errorf("iframe embed removed: %q", got)
	}
}

func TestParagraphs_DocumentOrder(t *testing.T) {
	sanitized := `<h1>Heading</h1><p>First</p><blockquote><p>Nested</p></blockquote><ul><li>Item</li></ul>`
	doc, err := content.ParseDocument(sanitized)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	texts := doc.ParagraphTexts()
	// blockquote and its nested p both count, blockquote first (pre-order).
	want := []string{"Heading", "First", "Nested", "Nested", "Item"}
	if len(texts) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %v", len(want), len(texts), texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("paragraph %d: expected %q, got %q", i, want[i], texts[i])
		}
	}
}

func TestParagraphs_PureFunctionOfHTML(t *testing.T) {
	sanitized := content.Sanitize(`<p>One</p><p>Two <strong>bold</strong></p><h3>Three</h3>`)

	doc1, err := content.ParseDocument(sanitized)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doc2, err := content.ParseDocument(sanitized)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	texts1 := doc1.ParagraphTexts()
	texts2 := doc2.ParagraphTexts()
	if len(texts1) != len(texts2) {
		t.Fatalf("paragraph index not stable: %d vs %d", len(texts1), len(texts2))
	}
	for i := range texts1 {
		if texts1[i] != texts2[i] {
			t.Errorf("paragraph %d differs between parses: %q vs %q", i, texts1[i], texts2[i])
		}
	}
}

func TestHTML_RoundTripsContent(t *testing.T) {
	sanitized := `<p>Hello <em>there</em></p>`
	doc, err := content.ParseDocument(sanitized)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	got, err := doc.HTML()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got != sanitized {
		t.Errorf("expected %q, got %q", sanitized, got)
	}
}

func TestStripText(t *testing.T) {
	raw := `<p>Hello   <strong>world</strong></p><script>var x = 1;</script><p>again</p>`
	got := content.StripText(raw)

	if got != "Hello world again" {
		t.Errorf("expected %q, got %q", "Hello world again", got)
	}
}
