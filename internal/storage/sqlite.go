// Package storage is the authoritative local store for articles,
// highlights, folders, collections, annotations and reading sessions.
// It is the only owner of entity state; everything else holds ids.
package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// Store is the sqlite-backed local store. All operations are scoped by a
// user id; the empty user id is the anonymous local-only partition and is
// never mixed with a signed-in user's data.
type Store struct {
	db       *sql.DB
	path     string
	onChange func(Change)
}

// Open opens (and migrates) the store at the given database path, creating
// the parent directory if needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// OnChange registers a hook invoked after every committed mutation to a
// synced entity (articles, highlights, folders). The hook runs on the
// mutating goroutine, strictly after the local transaction has committed.
func (s *Store) OnChange(fn func(Change)) {
	s.onChange = fn
}

// emit delivers a change to the registered hook, if any.
func (s *Store) emit(c Change) {
	if s.onChange != nil {
		s.onChange(c)
	}
}

// migrate runs database migrations.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *Store) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			excerpt TEXT NOT NULL DEFAULT '',
			thumbnail TEXT NOT NULL DEFAULT '',
			site_name TEXT NOT NULL DEFAULT '',
			is_read INTEGER NOT NULL DEFAULT 0,
			is_favorite INTEGER NOT NULL DEFAULT 0,
			is_archived INTEGER NOT NULL DEFAULT 0,
			read_progress INTEGER NOT NULL DEFAULT 0,
			reading_time INTEGER NOT NULL DEFAULT 1,
			folder_id TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			read_count INTEGER NOT NULL DEFAULT 0,
			total_read_time INTEGER NOT NULL DEFAULT 0,
			last_read_at TEXT NOT NULL DEFAULT '',
			date_added TEXT NOT NULL,
			last_modified TEXT NOT NULL,
			sync_status TEXT NOT NULL DEFAULT 'pending',
			user_id TEXT NOT NULL DEFAULT ''
		);

		-- user_id is stored NOT NULL with '' for the anonymous partition:
		-- a nullable column would break this uniqueness guarantee, since
		-- sqlite treats NULLs as distinct in unique indexes.
		CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_url_user ON articles(url, user_id);
		CREATE INDEX IF NOT EXISTS idx_articles_folder_id ON articles(folder_id);
		CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id);
		CREATE INDEX IF NOT EXISTS idx_articles_date_added ON articles(date_added);
		CREATE INDEX IF NOT EXISTS idx_articles_flags ON articles(is_read, is_favorite, is_archived);

		CREATE TABLE IF NOT EXISTS highlights (
			id TEXT PRIMARY KEY NOT NULL,
			article_id TEXT NOT NULL,
			text TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT 'yellow',
			note TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			paragraph_index INTEGER NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset INTEGER NOT NULL,
			collection_id TEXT,
			timestamp TEXT NOT NULL,
			last_modified TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_highlights_article_id ON highlights(article_id);
		CREATE INDEX IF NOT EXISTS idx_highlights_collection_id ON highlights(collection_id);
		CREATE INDEX IF NOT EXISTS idx_highlights_user_id ON highlights(user_id);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			ord INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_folders_user_order ON folders(user_id, ord);

		CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS annotations (
			id TEXT PRIMARY KEY NOT NULL,
			article_id TEXT NOT NULL,
			paragraph_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_modified TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_annotations_article_id ON annotations(article_id);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY NOT NULL,
			article_id TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			duration INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_article_id ON sessions(article_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DefaultPath returns the default sqlite database path:
// ~/.config/marginalia/marginalia.db
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marginalia", "marginalia.db"), nil
}
