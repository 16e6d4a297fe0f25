// Package importer brings external data into the store: Kindle clippings
// files and JSON backups. Imports are additive and safe to repeat.
package importer

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

const clippingDelimiter = "=========="

// KindleResult summarizes one clippings import.
type KindleResult struct {
	ArticlesCreated   int
	HighlightsAdded   int
	HighlightsSkipped int
}

type clipping struct {
	title  string
	author string
	text   string
}

// ImportKindle reads a Kindle "My Clippings.txt" stream and stores every
// highlight, one synthetic article per book title. Re-importing the same
// file is a no-op: articles match by title, highlights by exact text.
func ImportKindle(s *storage.Store, r io.Reader, userID string) (KindleResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return KindleResult{}, err
	}

	var result KindleResult
	articles := map[string]model.Article{} // title -> article

	for _, entry := range strings.Split(string(raw), clippingDelimiter) {
		clip, ok := parseClipping(entry)
		if !ok {
			continue
		}

		article, seen := articles[clip.title]
		if !seen {
			article, err = kindleArticle(s, clip, userID, &result)
			if err != nil {
				return result, err
			}
			articles[clip.title] = article
		}

		exists, err := s.HighlightExists(article.ID, clip.text)
		if err != nil {
			return result, err
		}
		if exists {
			result.HighlightsSkipped++
			continue
		}

		_, err = s.AddHighlight(model.NewHighlightParams{
			ArticleID: article.ID,
			Text:      clip.text,
			Anchor:    model.Anchor{ParagraphIndex: 0, StartOffset: 0, EndOffset: len([]rune(clip.text))},
			UserID:    userID,
		})
		if err != nil {
			return result, err
		}
		result.HighlightsAdded++
	}

	return result, nil
}

// kindleArticle finds or creates the synthetic article for a book title.
func kindleArticle(s *storage.Store, clip clipping, userID string, result *KindleResult) (model.Article, error) {
	article, err := s.FindArticleByTitle(userID, clip.title)
	if err == nil {
		return article, nil
	}
	if err != storage.ErrNotFound {
		return model.Article{}, err
	}

	content := "<p><em>Imported from Kindle</em></p>"
	if clip.author != "" {
		content = fmt.Sprintf("<p><em>Imported from Kindle. By %s.</em></p>", html.EscapeString(clip.author))
	}

	article, err = s.CreateArticle(model.NewArticleParams{
		URL:      "kindle://book/" + url.PathEscape(clip.title),
		Title:    clip.title,
		Content:  content,
		Excerpt:  clip.author,
		SiteName: "Kindle",
		Tags:     []string{"kindle"},
		UserID:   userID,
	})
	if err != nil {
		return model.Article{}, err
	}
	result.ArticlesCreated++
	return article, nil
}

// parseClipping reads one delimiter-separated entry. Bookmarks carry no
// text and are dropped.
func parseClipping(entry string) (clipping, bool) {
	lines := []string{}
	for _, line := range strings.Split(entry, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\uFEFF"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 3 {
		return clipping{}, false
	}

	meta := lines[1]
	if strings.Contains(meta, "Bookmark") {
		return clipping{}, false
	}
	if !strings.Contains(meta, "Location") {
		return clipping{}, false
	}

	title, author := splitTitleAuthor(lines[0])
	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	if title == "" || text == "" {
		return clipping{}, false
	}
	return clipping{title: title, author: author, text: text}, true
}

// splitTitleAuthor parses "Title (Author)" first lines. The author is the
// last parenthesized group; titles may contain parentheses of their own.
func splitTitleAuthor(line string) (title, author string) {
	open := strings.LastIndex(line, "(")
	if open == -1 || !strings.HasSuffix(line, ")") {
		return strings.TrimSpace(line), ""
	}
	title = strings.TrimSpace(line[:open])
	author = strings.TrimSpace(line[open+1 : len(line)-1])
	if title == "" {
		return strings.TrimSpace(line), ""
	}
	return title, author
}
