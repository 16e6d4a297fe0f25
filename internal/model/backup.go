package model

// BackupVersion is the current backup file format version.
const BackupVersion = 1

// Backup is the JSON shape of a full data export.
type Backup struct {
	Version    int              `json:"version"`
	ExportDate string           `json:"exportDate"`
	Articles   []Article        `json:"articles"`
	Highlights []Highlight      `json:"highlights"`
	Folders    []Folder         `json:"folders"`
	Sessions   []ReadingSession `json:"sessions"`
}
