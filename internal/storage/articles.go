package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nikbrunner/marginalia/internal/model"
)

const articleColumns = `id, url, title, content, excerpt, thumbnail, site_name,
	is_read, is_favorite, is_archived, read_progress, reading_time, folder_id, tags,
	read_count, total_read_time, last_read_at, date_added, last_modified, sync_status, user_id`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// CreateArticle validates and inserts a new article. Saving the same URL
// twice for the same user fails with ErrDuplicateArticle; the same URL for
// a different user is a separate record.
func (s *Store) CreateArticle(params model.NewArticleParams) (model.Article, error) {
	if err := validateURL(params.URL); err != nil {
		return model.Article{}, err
	}
	if params.Title == "" {
		return model.Article{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var exists int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM articles WHERE url = ? AND user_id = ?",
		params.URL, params.UserID,
	).Scan(&exists)
	if err != nil {
		return model.Article{}, err
	}
	if exists > 0 {
		return model.Article{}, ErrDuplicateArticle
	}

	article := model.NewArticle(params)
	if err := insertArticle(s.db, article); err != nil {
		return model.Article{}, err
	}

	s.emit(putArticle(article))
	return article, nil
}

// GetArticle loads a single article by id.
func (s *Store) GetArticle(id string) (model.Article, error) {
	row := s.db.QueryRow("SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return model.Article{}, ErrNotFound
	}
	return article, err
}

// UpdateArticle merges a patch into an existing article and bumps
// lastModified. Returns ErrNotFound for a missing id.
func (s *Store) UpdateArticle(id string, patch model.ArticlePatch) (model.Article, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Article{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow("SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return model.Article{}, ErrNotFound
	}
	if err != nil {
		return model.Article{}, err
	}

	patch.Apply(&article)
	article.LastModified = model.Now()

	if err := replaceArticle(tx, article); err != nil {
		return model.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Article{}, err
	}

	s.emit(putArticle(article))
	return article, nil
}

// DeleteArticle removes an article together with all of its highlights,
// reading sessions and annotations in one transaction.
func (s *Store) DeleteArticle(id string) error {
	userID, highlightIDs, err := s.deleteArticleCascade(id)
	if err != nil {
		return err
	}

	for _, hid := range highlightIDs {
		s.emit(deleteChange(KindHighlights, hid, userID))
	}
	s.emit(deleteChange(KindArticles, id, userID))
	return nil
}

// RemoveArticleLocal deletes an article (with the same cascade as
// DeleteArticle) without notifying the change hook. Used when a remote
// removal is being applied: the delete originated remotely, so it must not
// be pushed back out.
func (s *Store) RemoveArticleLocal(id string) error {
	_, _, err := s.deleteArticleCascade(id)
	if err == ErrNotFound {
		return nil
	}
	return err
}

func (s *Store) deleteArticleCascade(id string) (string, []string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow("SELECT user_id FROM articles WHERE id = ?", id).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, err
	}

	var highlightIDs []string
	rows, err := tx.Query("SELECT id FROM highlights WHERE article_id = ?", id)
	if err != nil {
		return "", nil, err
	}
	for rows.Next() {
		var hid string
		if err := rows.Scan(&hid); err != nil {
			rows.Close()
			return "", nil, err
		}
		highlightIDs = append(highlightIDs, hid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", nil, err
	}

	for _, stmt := range []string{
		"DELETE FROM highlights WHERE article_id = ?",
		"DELETE FROM sessions WHERE article_id = ?",
		"DELETE FROM annotations WHERE article_id = ?",
		"DELETE FROM articles WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return "", nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", nil, err
	}
	return userID, highlightIDs, nil
}

// ToggleFavorite flips the favorite flag. A missing id is a silent no-op.
func (s *Store) ToggleFavorite(id string) error {
	article, err := s.GetArticle(id)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	fav := !article.IsFavorite
	_, err = s.UpdateArticle(id, model.ArticlePatch{IsFavorite: &fav})
	return err
}

// ToggleArchive flips the archived flag. A missing id is a silent no-op.
func (s *Store) ToggleArchive(id string) error {
	article, err := s.GetArticle(id)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	archived := !article.IsArchived
	_, err = s.UpdateArticle(id, model.ArticlePatch{IsArchived: &archived})
	return err
}

// MarkAsRead marks the article read and stamps lastReadAt. A missing id is
// a silent no-op.
func (s *Store) MarkAsRead(id string) error {
	_, err := s.GetArticle(id)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	read := true
	now := model.Now()
	_, err = s.UpdateArticle(id, model.ArticlePatch{IsRead: &read, LastReadAt: &now})
	return err
}

// MarkSyncStatus annotates an article's sync state without bumping
// lastModified or notifying the change hook: a failed push must not look
// like a user edit.
func (s *Store) MarkSyncStatus(id string, status model.SyncStatus) error {
	_, err := s.db.Exec("UPDATE articles SET sync_status = ? WHERE id = ?", string(status), id)
	return err
}

// ApplyRemoteArticle applies a remote record under the last-write-wins
// rule: a missing local record or a strictly newer remote lastModified
// replaces the whole local record. Returns whether the remote record was
// applied. The change hook is not notified.
func (s *Store) ApplyRemoteArticle(remote model.Article) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var localModified string
	err = tx.QueryRow("SELECT last_modified FROM articles WHERE id = ?", remote.ID).Scan(&localModified)
	switch {
	case err == sql.ErrNoRows:
		// adopt
	case err != nil:
		return false, err
	case remote.LastModified <= localModified:
		return false, nil // local is as new or newer, discard
	default:
		if _, err := tx.Exec("DELETE FROM articles WHERE id = ?", remote.ID); err != nil {
			return false, err
		}
	}

	remote.SyncStatus = model.SyncSynced
	if err := insertArticle(tx, remote); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func insertArticle(db execer, a model.Article) error {
	tags, err := json.Marshal(model.NormalizeTags(a.Tags))
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.URL, a.Title, a.Content, a.Excerpt, a.Thumbnail, a.SiteName,
		boolInt(a.IsRead), boolInt(a.IsFavorite), boolInt(a.IsArchived),
		a.ReadProgress, a.ReadingTime, a.FolderID, string(tags),
		a.ReadCount, a.TotalReadTime, a.LastReadAt, a.DateAdded, a.LastModified,
		string(a.SyncStatus), a.UserID,
	)
	return err
}

func replaceArticle(db execer, a model.Article) error {
	if _, err := db.Exec("DELETE FROM articles WHERE id = ?", a.ID); err != nil {
		return err
	}
	return insertArticle(db, a)
}

func scanArticle(row rowScanner) (model.Article, error) {
	var a model.Article
	var folderID sql.NullString
	var tagsJSON string
	var isRead, isFavorite, isArchived int
	var syncStatus string

	err := row.Scan(
		&a.ID, &a.URL, &a.Title, &a.Content, &a.Excerpt, &a.Thumbnail, &a.SiteName,
		&isRead, &isFavorite, &isArchived,
		&a.ReadProgress, &a.ReadingTime, &folderID, &tagsJSON,
		&a.ReadCount, &a.TotalReadTime, &a.LastReadAt, &a.DateAdded, &a.LastModified,
		&syncStatus, &a.UserID,
	)
	if err != nil {
		return model.Article{}, err
	}

	a.IsRead = isRead == 1
	a.IsFavorite = isFavorite == 1
	a.IsArchived = isArchived == 1
	if folderID.Valid {
		a.FolderID = &folderID.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &a.Tags); err != nil {
		a.Tags = []string{}
	}
	a.SyncStatus = model.SyncStatus(syncStatus)
	return a, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: not an absolute url: %q", ErrInvalidInput, raw)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
