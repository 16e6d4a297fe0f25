package exporter

import (
	"encoding/json"
	"io"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

// WriteBackup streams a full JSON backup of a user's data.
func WriteBackup(s *storage.Store, userID string, w io.Writer) error {
	articles, err := s.AllArticles(userID)
	if err != nil {
		return err
	}
	highlights, err := s.AllHighlights(userID)
	if err != nil {
		return err
	}
	folders, err := s.ListFolders(userID)
	if err != nil {
		return err
	}
	sessions, err := s.AllSessions()
	if err != nil {
		return err
	}

	backup := model.Backup{
		Version:    model.BackupVersion,
		ExportDate: model.Now(),
		Articles:   articles,
		Highlights: highlights,
		Folders:    folders,
		Sessions:   sessions,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}
