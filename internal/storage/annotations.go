package storage

import (
	"database/sql"
	"fmt"

	"github.com/nikbrunner/marginalia/internal/model"
)

const annotationColumns = `id, article_id, paragraph_index, text, created_at, last_modified, user_id`

// AddAnnotation creates a whole-paragraph annotation on an article.
func (s *Store) AddAnnotation(params model.NewAnnotationParams) (model.Annotation, error) {
	if params.ArticleID == "" || params.Text == "" {
		return model.Annotation{}, fmt.Errorf("%w: article id and text are required", ErrInvalidInput)
	}
	if params.ParagraphIndex < 0 {
		return model.Annotation{}, fmt.Errorf("%w: negative paragraph index", ErrInvalidInput)
	}

	annotation := model.NewAnnotation(params)
	_, err := s.db.Exec(
		"INSERT INTO annotations ("+annotationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		annotation.ID, annotation.ArticleID, annotation.ParagraphIndex,
		annotation.Text, annotation.CreatedAt, annotation.LastModified, annotation.UserID,
	)
	if err != nil {
		return model.Annotation{}, err
	}
	return annotation, nil
}

// UpdateAnnotation replaces an annotation's text and bumps lastModified.
func (s *Store) UpdateAnnotation(id, text string) (model.Annotation, error) {
	annotation, err := s.getAnnotation(id)
	if err != nil {
		return model.Annotation{}, err
	}

	annotation.Text = text
	annotation.LastModified = model.Now()
	_, err = s.db.Exec(
		"UPDATE annotations SET text = ?, last_modified = ? WHERE id = ?",
		annotation.Text, annotation.LastModified, id,
	)
	if err != nil {
		return model.Annotation{}, err
	}
	return annotation, nil
}

// DeleteAnnotation removes an annotation.
func (s *Store) DeleteAnnotation(id string) error {
	if _, err := s.getAnnotation(id); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM annotations WHERE id = ?", id)
	return err
}

// ListAnnotations returns an article's annotations ordered by paragraph.
func (s *Store) ListAnnotations(articleID string) ([]model.Annotation, error) {
	rows, err := s.db.Query(
		"SELECT "+annotationColumns+" FROM annotations WHERE article_id = ? ORDER BY paragraph_index",
		articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	annotations := []model.Annotation{}
	for rows.Next() {
		var a model.Annotation
		if err := rows.Scan(
			&a.ID, &a.ArticleID, &a.ParagraphIndex, &a.Text,
			&a.CreatedAt, &a.LastModified, &a.UserID,
		); err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

func (s *Store) getAnnotation(id string) (model.Annotation, error) {
	var a model.Annotation
	err := s.db.QueryRow(
		"SELECT "+annotationColumns+" FROM annotations WHERE id = ?", id,
	).Scan(&a.ID, &a.ArticleID, &a.ParagraphIndex, &a.Text, &a.CreatedAt, &a.LastModified, &a.UserID)
	if err == sql.ErrNoRows {
		return model.Annotation{}, ErrNotFound
	}
	return a, err
}
