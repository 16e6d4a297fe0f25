package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

// BackupResult summarizes one backup restore.
type BackupResult struct {
	Articles   int
	Highlights int
	Folders    int
	Sessions   int
	Skipped    int
}

// ImportBackup restores a JSON backup additively: records whose ids are
// already present are skipped, nothing is overwritten or deleted.
func ImportBackup(s *storage.Store, r io.Reader) (BackupResult, error) {
	var backup model.Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return BackupResult{}, fmt.Errorf("invalid backup file: %w", err)
	}
	if backup.Version > model.BackupVersion {
		return BackupResult{}, fmt.Errorf("backup version %d is newer than supported version %d", backup.Version, model.BackupVersion)
	}

	var result BackupResult

	for _, f := range backup.Folders {
		inserted, err := s.ImportFolder(f)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Folders++
		} else {
			result.Skipped++
		}
	}

	for _, a := range backup.Articles {
		inserted, err := s.ImportArticle(a)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Articles++
		} else {
			result.Skipped++
		}
	}

	for _, h := range backup.Highlights {
		inserted, err := s.ImportHighlight(h)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Highlights++
		} else {
			result.Skipped++
		}
	}

	for _, sess := range backup.Sessions {
		inserted, err := s.ImportSession(sess)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Sessions++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}
