package storage

import (
	"database/sql"
	"fmt"

	"github.com/nikbrunner/marginalia/internal/model"
)

// AddCollection creates a highlight collection.
func (s *Store) AddCollection(name, userID string) (model.Collection, error) {
	if name == "" {
		return model.Collection{}, fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}

	collection := model.NewCollection(name, userID)
	_, err := s.db.Exec(
		"INSERT INTO collections (id, name, user_id, created_at) VALUES (?, ?, ?, ?)",
		collection.ID, collection.Name, collection.UserID, collection.CreatedAt,
	)
	if err != nil {
		return model.Collection{}, err
	}
	return collection, nil
}

// GetCollection loads a single collection by id.
func (s *Store) GetCollection(id string) (model.Collection, error) {
	var c model.Collection
	err := s.db.QueryRow(
		"SELECT id, name, user_id, created_at FROM collections WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Collection{}, ErrNotFound
	}
	return c, err
}

// DeleteCollection removes a collection and detaches its member highlights
// in one transaction. The highlights themselves are kept.
func (s *Store) DeleteCollection(id string) error {
	if _, err := s.GetCollection(id); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE highlights SET collection_id = NULL WHERE collection_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM collections WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListCollections returns a user's collections in creation order.
func (s *Store) ListCollections(userID string) ([]model.Collection, error) {
	rows, err := s.db.Query(
		"SELECT id, name, user_id, created_at FROM collections WHERE user_id = ? ORDER BY created_at",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := []model.Collection{}
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}
