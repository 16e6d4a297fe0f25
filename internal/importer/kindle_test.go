package importer_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/marginalia/internal/importer"
	"github.com/nikbrunner/marginalia/internal/storage"
)

const clippings = `The Dispossessed (Ursula K. Le Guin)
- Your Highlight on Location 120-124 | Added on Monday, March 3, 2025 10:14:32 PM

You can't crush ideas by suppressing them. You can only crush them by ignoring them.
==========
The Dispossessed (Ursula K. Le Guin)
- Your Bookmark on Location 200 | Added on Monday, March 3, 2025 10:30:01 PM

==========
The Dispossessed (Ursula K. Le Guin)
- Your Highlight on Location 340-342 | Added on Tuesday, March 4, 2025 8:02:11 AM

It is our suffering that brings us together.
==========
Thinking in Systems (Donella H. Meadows)
- Your Highlight on Location 55-58 | Added on Wednesday, March 5, 2025 9:45:00 AM

A system is more than the sum of its parts.
==========
`

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "marginalia.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImportKindle(t *testing.T) {
	s := openStore(t)

	result, err := importer.ImportKindle(s, strings.NewReader(clippings), "")
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	if result.ArticlesCreated != 2 {
		t.Errorf("expected 2 articles, got %d", result.ArticlesCreated)
	}
	if result.HighlightsAdded != 3 {
		t.Errorf("expected 3 highlights (bookmark skipped), got %d", result.HighlightsAdded)
	}

	article, err := s.FindArticleByTitle("", "The Dispossessed")
	if err != nil {
		t.Fatalf("expected synthetic article: %v", err)
	}
	if !strings.HasPrefix(article.URL, "kindle://") {
		t.Errorf("expected kindle:// url, got %q", article.URL)
	}
	if !article.HasTag("kindle") {
		t.Error("expected kindle tag")
	}
	if !strings.Contains(article.Content, "Le Guin") {
		t.Errorf("expected author in placeholder content, got %q", article.Content)
	}

	highlights, err := s.ListHighlights(article.ID)
	if err != nil {
		t.Fatalf("failed to list highlights: %v", err)
	}
	if len(highlights) != 2 {
		t.Errorf("expected 2 highlights for the book, got %d", len(highlights))
	}
}

func TestImportKindle_Idempotent(t *testing.T) {
	s := openStore(t)

	if _, err := importer.ImportKindle(s, strings.NewReader(clippings), ""); err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := importer.ImportKindle(s, strings.NewReader(clippings), "")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if second.ArticlesCreated != 0 {
		t.Errorf("expected no new articles on re-import, got %d", second.ArticlesCreated)
	}
	if second.HighlightsAdded != 0 {
		t.Errorf("expected no new highlights on re-import, got %d", second.HighlightsAdded)
	}
	if second.HighlightsSkipped != 3 {
		t.Errorf("expected 3 skipped duplicates, got %d", second.HighlightsSkipped)
	}

	article, err := s.FindArticleByTitle("", "The Dispossessed")
	if err != nil {
		t.Fatalf("failed to find article: %v", err)
	}
	highlights, err := s.ListHighlights(article.ID)
	if err != nil {
		t.Fatalf("failed to list highlights: %v", err)
	}
	if len(highlights) != 2 {
		t.Errorf("expected 2 highlights after re-import, got %d", len(highlights))
	}
}

func TestImportKindle_TitleWithParentheses(t *testing.T) {
	s := openStore(t)

	input := `Godel, Escher, Bach (20th Anniversary Edition) (Douglas Hofstadter)
- Your Highlight on Location 10-12 | Added on Monday, March 3, 2025 10:14:32 PM

A strange loop arises when movement through a hierarchy lands you back where you started.
==========
`
	if _, err := importer.ImportKindle(s, strings.NewReader(input), ""); err != nil {
		t.Fatalf("failed to import: %v", err)
	}

	article, err := s.FindArticleByTitle("", "Godel, Escher, Bach (20th Anniversary Edition)")
	if err != nil {
		t.Fatalf("expected title to keep its own parentheses: %v", err)
	}
	if !strings.Contains(article.Content, "Hofstadter") {
		t.Errorf("expected author from the last group, got %q", article.Content)
	}
}

func TestImportKindle_ByteOrderMarkStripped(t *testing.T) {
	s := openStore(t)

	// Kindle writes My Clippings.txt with a UTF-8 BOM before the first title.
	result, err := importer.ImportKindle(s, strings.NewReader("\uFEFF"+clippings), "")
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	if result.ArticlesCreated != 2 {
		t.Errorf("expected 2 articles, got %d", result.ArticlesCreated)
	}
	if _, err := s.FindArticleByTitle("", "The Dispossessed"); err != nil {
		t.Errorf("expected title without the mark: %v", err)
	}
}
