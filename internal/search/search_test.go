package search

import (
	"testing"

	"github.com/nikbrunner/marginalia/internal/model"
)

func articles(titles ...string) []model.Article {
	out := make([]model.Article, len(titles))
	for i, title := range titles {
		out[i] = model.NewArticle(model.NewArticleParams{
			URL:   "https://example.com/" + title,
			Title: title,
		})
	}
	return out
}

func TestFuzzyArticles_EmptyQuery(t *testing.T) {
	results := FuzzyArticles(articles("Go Concurrency Patterns"), "")
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzyArticles_ExactMatch(t *testing.T) {
	results := FuzzyArticles(articles("Go Concurrency Patterns", "Rust Ownership"), "Rust Ownership")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Article.Title != "Rust Ownership" {
		t.Errorf("expected Rust Ownership, got %s", results[0].Article.Title)
	}
}

func TestFuzzyArticles_FuzzyMatch(t *testing.T) {
	// "gocon" should fuzzy match "Go Concurrency Patterns"
	results := FuzzyArticles(articles("Go Concurrency Patterns", "Postgres Performance"), "gocon")
	if len(results) == 0 {
		t.Fatal("expected a fuzzy match")
	}
	if results[0].Article.Title != "Go Concurrency Patterns" {
		t.Errorf("expected Go Concurrency Patterns first, got %s", results[0].Article.Title)
	}
}

func TestFuzzyArticles_NoMatch(t *testing.T) {
	results := FuzzyArticles(articles("Go Concurrency Patterns"), "zzzz")
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}
