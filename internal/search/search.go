package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/marginalia/internal/model"
)

// Result represents a fuzzy search match.
type Result struct {
	Article        *model.Article
	MatchedIndexes []int
	Score          int
}

// articleTitles implements fuzzy.Source for an article slice.
type articleTitles []*model.Article

func (at articleTitles) String(i int) string {
	return at[i].Title
}

func (at articleTitles) Len() int {
	return len(at)
}

// FuzzyArticles searches articles by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzyArticles(articles []model.Article, query string) []Result {
	if query == "" {
		return nil
	}

	candidates := make(articleTitles, len(articles))
	for i := range articles {
		candidates[i] = &articles[i]
	}

	matches := fuzzy.FindFrom(query, candidates)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Article:        candidates[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
