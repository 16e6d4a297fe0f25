package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/nikbrunner/marginalia/internal/model"
)

// Import helpers insert records additively, skipping anything whose ID is
// already present. They are used by backup restore and the Kindle importer
// and never fire the change hook; imported data is local until the next
// explicit sync.

// ImportArticle inserts the article unless its ID already exists.
// Returns true when a row was written.
func (s *Store) ImportArticle(a model.Article) (bool, error) {
	exists, err := s.rowExists("articles", a.ID)
	if err != nil || exists {
		return false, err
	}
	if err := insertArticle(s.db, a); err != nil {
		return false, fmt.Errorf("import article: %w", err)
	}
	return true, nil
}

// ImportHighlight inserts the highlight unless its ID already exists.
func (s *Store) ImportHighlight(h model.Highlight) (bool, error) {
	exists, err := s.rowExists("highlights", h.ID)
	if err != nil || exists {
		return false, err
	}
	if err := insertHighlight(s.db, h); err != nil {
		return false, fmt.Errorf("import highlight: %w", err)
	}
	return true, nil
}

// ImportFolder inserts the folder unless its ID already exists.
func (s *Store) ImportFolder(f model.Folder) (bool, error) {
	exists, err := s.rowExists("folders", f.ID)
	if err != nil || exists {
		return false, err
	}
	if err := insertFolder(s.db, f); err != nil {
		return false, fmt.Errorf("import folder: %w", err)
	}
	return true, nil
}

// ImportSession inserts the reading session unless its ID already exists.
func (s *Store) ImportSession(rs model.ReadingSession) (bool, error) {
	exists, err := s.rowExists("sessions", rs.ID)
	if err != nil || exists {
		return false, err
	}
	_, err = s.db.Exec(
		"INSERT INTO sessions (id, article_id, start_time, end_time, duration) VALUES (?, ?, ?, ?, ?)",
		rs.ID, rs.ArticleID, rs.StartTime, rs.EndTime, rs.Duration,
	)
	if err != nil {
		return false, fmt.Errorf("import session: %w", err)
	}
	return true, nil
}

// FindArticleByTitle returns the user's article with that exact title,
// or ErrNotFound. Titles are not unique; the oldest match wins.
func (s *Store) FindArticleByTitle(userID, title string) (model.Article, error) {
	row := s.db.QueryRow(
		"SELECT "+articleColumns+" FROM articles WHERE user_id = ? AND title = ? ORDER BY date_added LIMIT 1",
		userID, title,
	)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, ErrNotFound
	}
	return a, err
}

// HighlightExists reports whether the article already has a highlight with
// exactly this text.
func (s *Store) HighlightExists(articleID, text string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM highlights WHERE article_id = ? AND text = ?",
		articleID, text,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) rowExists(table, id string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE id = ?", id).Scan(&n)
	return n > 0, err
}
