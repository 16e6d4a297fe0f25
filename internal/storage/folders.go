package storage

import (
	"database/sql"
	"fmt"

	"github.com/nikbrunner/marginalia/internal/model"
)

const folderColumns = `id, name, color, ord, created_at, user_id`

// AddFolder creates a folder. Its manual sort position is the user's
// current folder count.
func (s *Store) AddFolder(name, color, userID string) (model.Folder, error) {
	if name == "" {
		return model.Folder{}, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM folders WHERE user_id = ?", userID).Scan(&count); err != nil {
		return model.Folder{}, err
	}

	folder := model.NewFolder(model.NewFolderParams{
		Name:   name,
		Color:  color,
		Order:  count,
		UserID: userID,
	})
	if err := insertFolder(s.db, folder); err != nil {
		return model.Folder{}, err
	}

	s.emit(putFolder(folder))
	return folder, nil
}

// GetFolder loads a single folder by id.
func (s *Store) GetFolder(id string) (model.Folder, error) {
	row := s.db.QueryRow("SELECT "+folderColumns+" FROM folders WHERE id = ?", id)
	folder, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return model.Folder{}, ErrNotFound
	}
	return folder, err
}

// UpdateFolder merges a patch into an existing folder.
func (s *Store) UpdateFolder(id string, patch model.FolderPatch) (model.Folder, error) {
	folder, err := s.GetFolder(id)
	if err != nil {
		return model.Folder{}, err
	}

	patch.Apply(&folder)
	_, err = s.db.Exec(
		"UPDATE folders SET name = ?, color = ?, ord = ? WHERE id = ?",
		folder.Name, folder.Color, folder.Order, id,
	)
	if err != nil {
		return model.Folder{}, err
	}

	s.emit(putFolder(folder))
	return folder, nil
}

// DeleteFolder removes a folder and unassigns its articles in one
// transaction. Member articles are kept, not deleted.
func (s *Store) DeleteFolder(id string) error {
	folder, err := s.GetFolder(id)
	if err != nil {
		return err
	}
	if err := s.detachAndDeleteFolder(id); err != nil {
		return err
	}
	s.emit(deleteChange(KindFolders, id, folder.UserID))
	return nil
}

// RemoveFolderLocal deletes a folder (same article unassignment as
// DeleteFolder) without notifying the change hook.
func (s *Store) RemoveFolderLocal(id string) error {
	err := s.detachAndDeleteFolder(id)
	if err == ErrNotFound {
		return nil
	}
	return err
}

func (s *Store) detachAndDeleteFolder(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE articles SET folder_id = NULL WHERE folder_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM folders WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListFolders returns a user's folders in manual sort order.
func (s *Store) ListFolders(userID string) ([]model.Folder, error) {
	rows, err := s.db.Query(
		"SELECT "+folderColumns+" FROM folders WHERE user_id = ? ORDER BY ord, created_at",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// FolderArticleCounts returns the number of unarchived articles per folder.
func (s *Store) FolderArticleCounts(userID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT folder_id, COUNT(*) FROM articles
		WHERE user_id = ? AND folder_id IS NOT NULL AND is_archived = 0
		GROUP BY folder_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var folderID string
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, err
		}
		counts[folderID] = count
	}
	return counts, rows.Err()
}

// ApplyRemoteFolder adopts a remote folder only when no local record
// exists. Folders carry no fine-grained modification timestamp, so an
// existing local folder is never overwritten from a pull.
func (s *Store) ApplyRemoteFolder(remote model.Folder) (bool, error) {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM folders WHERE id = ?", remote.ID).Scan(&exists); err != nil {
		return false, err
	}
	if exists > 0 {
		return false, nil
	}
	if err := insertFolder(s.db, remote); err != nil {
		return false, err
	}
	return true, nil
}

func insertFolder(db execer, f model.Folder) error {
	_, err := db.Exec(
		"INSERT INTO folders ("+folderColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		f.ID, f.Name, f.Color, f.Order, f.CreatedAt, f.UserID,
	)
	return err
}

func scanFolder(row rowScanner) (model.Folder, error) {
	var f model.Folder
	err := row.Scan(&f.ID, &f.Name, &f.Color, &f.Order, &f.CreatedAt, &f.UserID)
	return f, err
}
