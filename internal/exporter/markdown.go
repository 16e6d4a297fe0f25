// Package exporter writes store contents out as Markdown digests and
// JSON backups.
package exporter

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

// ArticleMarkdown renders one article's highlights as a Markdown digest,
// oldest highlight first.
func ArticleMarkdown(s *storage.Store, articleID string) (string, error) {
	article, err := s.GetArticle(articleID)
	if err != nil {
		return "", err
	}
	highlights, err := s.ListHighlights(articleID)
	if err != nil {
		return "", err
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", article.Title)
	fmt.Fprintf(&md, "Source: %s\n\n", article.URL)
	md.WriteString("---\n\n")

	for _, h := range highlights {
		writeHighlight(&md, h)
		fmt.Fprintf(&md, "*Color: %s*\n\n---\n\n", colorLabel(h.Color))
	}

	return md.String(), nil
}

// AllHighlightsMarkdown renders every highlight of a user, grouped by
// article in order of first highlight.
func AllHighlightsMarkdown(s *storage.Store, userID, date string) (string, error) {
	highlights, err := s.AllHighlights(userID)
	if err != nil {
		return "", err
	}
	// AllHighlights is newest-first; the digest reads oldest-first.
	for i, j := 0, len(highlights)-1; i < j; i, j = i+1, j-1 {
		highlights[i], highlights[j] = highlights[j], highlights[i]
	}

	var md strings.Builder
	md.WriteString("# Marginalia - All Highlights\n\n")
	fmt.Fprintf(&md, "Exported: %s\n\n", date)

	var articleIDs []string
	byArticle := map[string][]model.Highlight{}
	for _, h := range highlights {
		if _, seen := byArticle[h.ArticleID]; !seen {
			articleIDs = append(articleIDs, h.ArticleID)
		}
		byArticle[h.ArticleID] = append(byArticle[h.ArticleID], h)
	}

	for _, id := range articleIDs {
		article, err := s.GetArticle(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&md, "## %s\n\n", article.Title)
		fmt.Fprintf(&md, "Source: %s\n\n", article.URL)
		for _, h := range byArticle[id] {
			writeHighlight(&md, h)
		}
		md.WriteString("---\n\n")
	}

	return md.String(), nil
}

func writeHighlight(md *strings.Builder, h model.Highlight) {
	fmt.Fprintf(md, "> %s\n\n", h.Text)
	if h.Note != "" {
		fmt.Fprintf(md, "**Note:** %s\n\n", h.Note)
	}
}

func colorLabel(c model.HighlightColor) string {
	name := string(c)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
