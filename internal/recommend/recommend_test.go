package recommend

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

func article(title string, tags []string, content string) model.Article {
	return model.NewArticle(model.NewArticleParams{
		URL:     "https://example.com/" + title,
		Title:   title,
		Tags:    tags,
		Content: content,
	})
}

func TestRelated_TagOverlapOutweighsTerms(t *testing.T) {
	current := article("current", []string{"golang", "databases"}, "<p>indexing strategies for btree storage</p>")

	tagged := article("tagged", []string{"golang"}, "<p>nothing in common textually whatsoever here</p>")
	wordy := article("wordy", nil, "<p>indexing btree</p>")
	all := []model.Article{current, tagged, wordy}

	scored := Related(current, all)
	if len(scored) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(scored))
	}
	if scored[0].Article.Title != "tagged" {
		t.Errorf("expected the tag match ranked first, got %q", scored[0].Article.Title)
	}
	if len(scored[0].MatchedTags) != 1 || scored[0].MatchedTags[0] != "golang" {
		t.Errorf("expected matched tag recorded, got %v", scored[0].MatchedTags)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("expected tag overlap to outscore term matches, got %d vs %d", scored[0].Score, scored[1].Score)
	}
}

func TestRelated_ExcludesReadArchivedAndSelf(t *testing.T) {
	current := article("current", []string{"go"}, "")

	read := article("read", []string{"go"}, "")
	read.IsRead = true
	archived := article("archived", []string{"go"}, "")
	archived.IsArchived = true
	fresh := article("fresh", []string{"go"}, "")

	scored := Related(current, []model.Article{current, read, archived, fresh})
	if len(scored) != 1 || scored[0].Article.Title != "fresh" {
		t.Fatalf("expected only the unread unarchived candidate, got %+v", scored)
	}
}

func TestRelated_ZeroScoresDropped(t *testing.T) {
	current := article("current", nil, "")
	current.DateAdded = model.FormatTime(time.Now().AddDate(0, 0, -30))

	unrelated := article("unrelated", nil, "<p>completely different subject matter</p>")
	unrelated.DateAdded = model.FormatTime(time.Now().AddDate(0, 0, -30))

	if scored := Related(current, []model.Article{current, unrelated}); len(scored) != 0 {
		t.Fatalf("expected no recommendations without overlap, got %+v", scored)
	}
}

func TestRelated_CapsAtFive(t *testing.T) {
	current := article("current", []string{"go"}, "")
	all := []model.Article{current}
	for i := 0; i < 8; i++ {
		all = append(all, article(string(rune('a'+i)), []string{"go"}, ""))
	}

	if scored := Related(current, all); len(scored) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(scored))
	}
}

func TestExtractTerms_FrequencyOrderAndStopwords(t *testing.T) {
	terms := extractTerms("<p>compiler compiler compiler linker linker the the the the symbol</p>")
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %v", terms)
	}
	if terms[0] != "compiler" || terms[1] != "linker" || terms[2] != "symbol" {
		t.Errorf("expected frequency order, got %v", terms)
	}
}

func TestComputeStats(t *testing.T) {
	s, err := storage.Open(filepath.Join(t.TempDir(), "marginalia.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	a, err := s.CreateArticle(model.NewArticleParams{URL: "https://example.com/a", Title: "A", Tags: []string{"go"}})
	if err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	if _, err := s.CreateArticle(model.NewArticleParams{URL: "https://example.com/b", Title: "B"}); err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	if err := s.MarkAsRead(a.ID); err != nil {
		t.Fatalf("failed to mark read: %v", err)
	}
	start := time.Now()
	if _, _, err := s.RecordReadingSession(a.ID, start, start.Add(time.Minute)); err != nil {
		t.Fatalf("failed to record session: %v", err)
	}
	if _, err := s.AddHighlight(model.NewHighlightParams{
		ArticleID: a.ID,
		Text:      "quote",
		Anchor:    model.Anchor{ParagraphIndex: 0, StartOffset: 0, EndOffset: 5},
	}); err != nil {
		t.Fatalf("failed to highlight: %v", err)
	}

	stats, err := ComputeStats(s, "", time.Now())
	if err != nil {
		t.Fatalf("failed to compute stats: %v", err)
	}

	if stats.TotalArticles != 2 || stats.ReadArticles != 1 {
		t.Errorf("expected 2 total / 1 read, got %d / %d", stats.TotalArticles, stats.ReadArticles)
	}
	if stats.ReadThisWeek != 1 || stats.ReadThisMonth != 1 {
		t.Errorf("expected the read to count this week and month, got %d / %d", stats.ReadThisWeek, stats.ReadThisMonth)
	}
	if stats.TotalReadTime != time.Minute {
		t.Errorf("expected 1m total read time, got %v", stats.TotalReadTime)
	}
	if stats.AvgReadTime != time.Minute {
		t.Errorf("expected 1m average, got %v", stats.AvgReadTime)
	}
	if stats.Streak != 1 {
		t.Errorf("expected a 1 day streak, got %d", stats.Streak)
	}
	if stats.HighlightCount != 1 {
		t.Errorf("expected 1 highlight, got %d", stats.HighlightCount)
	}
	if len(stats.TopTags) != 1 || stats.TopTags[0].Tag != "go" {
		t.Errorf("expected top tag go, got %v", stats.TopTags)
	}
}
