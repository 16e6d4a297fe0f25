package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nikbrunner/marginalia/internal/model"
)

const highlightColumns = `id, article_id, text, color, note, tags,
	paragraph_index, start_offset, end_offset, collection_id, timestamp, last_modified, user_id`

// AddHighlight validates and inserts a new highlight for an article.
func (s *Store) AddHighlight(params model.NewHighlightParams) (model.Highlight, error) {
	if params.ArticleID == "" || params.Text == "" {
		return model.Highlight{}, fmt.Errorf("%w: article id and text are required", ErrInvalidInput)
	}
	if !params.Anchor.Valid() {
		return model.Highlight{}, fmt.Errorf("%w: anchor %+v", ErrInvalidInput, params.Anchor)
	}

	highlight := model.NewHighlight(params)
	if err := insertHighlight(s.db, highlight); err != nil {
		return model.Highlight{}, err
	}

	s.emit(putHighlight(highlight))
	return highlight, nil
}

// GetHighlight loads a single highlight by id.
func (s *Store) GetHighlight(id string) (model.Highlight, error) {
	row := s.db.QueryRow("SELECT "+highlightColumns+" FROM highlights WHERE id = ?", id)
	highlight, err := scanHighlight(row)
	if err == sql.ErrNoRows {
		return model.Highlight{}, ErrNotFound
	}
	return highlight, err
}

// UpdateHighlight merges a patch into an existing highlight and bumps
// lastModified. Returns ErrNotFound for a missing id.
func (s *Store) UpdateHighlight(id string, patch model.HighlightPatch) (model.Highlight, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Highlight{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow("SELECT "+highlightColumns+" FROM highlights WHERE id = ?", id)
	highlight, err := scanHighlight(row)
	if err == sql.ErrNoRows {
		return model.Highlight{}, ErrNotFound
	}
	if err != nil {
		return model.Highlight{}, err
	}

	patch.Apply(&highlight)
	highlight.LastModified = model.Now()

	if _, err := tx.Exec("DELETE FROM highlights WHERE id = ?", id); err != nil {
		return model.Highlight{}, err
	}
	if err := insertHighlight(tx, highlight); err != nil {
		return model.Highlight{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Highlight{}, err
	}

	s.emit(putHighlight(highlight))
	return highlight, nil
}

// DeleteHighlight removes a highlight. No cascade.
func (s *Store) DeleteHighlight(id string) error {
	highlight, err := s.GetHighlight(id)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM highlights WHERE id = ?", id); err != nil {
		return err
	}
	s.emit(deleteChange(KindHighlights, id, highlight.UserID))
	return nil
}

// RemoveHighlightLocal deletes a highlight without notifying the change
// hook. Used when applying a remote removal.
func (s *Store) RemoveHighlightLocal(id string) error {
	_, err := s.db.Exec("DELETE FROM highlights WHERE id = ?", id)
	return err
}

// ListHighlights returns an article's highlights ordered by creation time,
// which keeps marker application order stable across renders.
func (s *Store) ListHighlights(articleID string) ([]model.Highlight, error) {
	return s.queryHighlights(
		"SELECT "+highlightColumns+" FROM highlights WHERE article_id = ? ORDER BY timestamp",
		articleID,
	)
}

// AllHighlights returns every highlight in a user's partition, newest first.
func (s *Store) AllHighlights(userID string) ([]model.Highlight, error) {
	return s.queryHighlights(
		"SELECT "+highlightColumns+" FROM highlights WHERE user_id = ? ORDER BY timestamp DESC",
		userID,
	)
}

// CollectionHighlights returns the members of a collection, newest first.
func (s *Store) CollectionHighlights(collectionID string) ([]model.Highlight, error) {
	return s.queryHighlights(
		"SELECT "+highlightColumns+" FROM highlights WHERE collection_id = ? ORDER BY timestamp DESC",
		collectionID,
	)
}

// ApplyRemoteHighlight applies a remote record under the last-write-wins
// rule. Returns whether the remote record was applied.
func (s *Store) ApplyRemoteHighlight(remote model.Highlight) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var localModified string
	err = tx.QueryRow("SELECT last_modified FROM highlights WHERE id = ?", remote.ID).Scan(&localModified)
	switch {
	case err == sql.ErrNoRows:
		// adopt
	case err != nil:
		return false, err
	case remote.LastModified <= localModified:
		return false, nil
	default:
		if _, err := tx.Exec("DELETE FROM highlights WHERE id = ?", remote.ID); err != nil {
			return false, err
		}
	}

	if err := insertHighlight(tx, remote); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) queryHighlights(query string, args ...any) ([]model.Highlight, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	highlights := []model.Highlight{}
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, err
		}
		highlights = append(highlights, h)
	}
	return highlights, rows.Err()
}

func insertHighlight(db execer, h model.Highlight) error {
	tags, err := json.Marshal(model.NormalizeTags(h.Tags))
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO highlights (`+highlightColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.ID, h.ArticleID, h.Text, string(h.Color), h.Note, string(tags),
		h.ParagraphIndex, h.StartOffset, h.EndOffset, h.CollectionID,
		h.Timestamp, h.LastModified, h.UserID,
	)
	return err
}

func scanHighlight(row rowScanner) (model.Highlight, error) {
	var h model.Highlight
	var collectionID sql.NullString
	var tagsJSON string
	var color string

	err := row.Scan(
		&h.ID, &h.ArticleID, &h.Text, &color, &h.Note, &tagsJSON,
		&h.ParagraphIndex, &h.StartOffset, &h.EndOffset, &collectionID,
		&h.Timestamp, &h.LastModified, &h.UserID,
	)
	if err != nil {
		return model.Highlight{}, err
	}

	h.Color = model.HighlightColor(color)
	if collectionID.Valid {
		h.CollectionID = &collectionID.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &h.Tags); err != nil {
		h.Tags = []string{}
	}
	return h, nil
}
