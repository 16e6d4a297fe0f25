package model

import "strings"

// SyncStatus tracks whether an article has been written to the remote replica.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// Article is a saved web article. Content is the sanitized HTML snapshot
// captured at save time; it is the coordinate space for every highlight and
// annotation and must not change once set.
type Article struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Excerpt   string `json:"excerpt"`
	Thumbnail string `json:"thumbnail"`
	SiteName  string `json:"siteName"`

	// Reading state
	IsRead       bool `json:"isRead"`
	IsFavorite   bool `json:"isFavorite"`
	IsArchived   bool `json:"isArchived"`
	ReadProgress int  `json:"readProgress"`
	ReadingTime  int  `json:"readingTime"` // minutes, >= 1

	// Organization
	FolderID *string  `json:"folderId"` // nil = no folder
	Tags     []string `json:"tags"`

	// Analytics
	ReadCount     int    `json:"readCount"`
	TotalReadTime int64  `json:"totalReadTime"` // milliseconds
	LastReadAt    string `json:"lastReadAt"`    // empty = never read

	// Timestamps
	DateAdded    string `json:"dateAdded"`
	LastModified string `json:"lastModified"`

	// Sync
	SyncStatus SyncStatus `json:"syncStatus"`
	UserID     string     `json:"userId"` // empty = local-only/anonymous
}

// NewArticleParams holds parameters for creating a new Article.
type NewArticleParams struct {
	URL         string
	Title       string
	Content     string
	Excerpt     string
	Thumbnail   string
	SiteName    string
	ReadingTime int
	Tags        []string
	FolderID    *string
	UserID      string
}

// NewArticle creates an Article with generated ID, timestamps and default
// flags. ReadingTime is clamped to at least one minute.
func NewArticle(params NewArticleParams) Article {
	readingTime := params.ReadingTime
	if readingTime < 1 {
		readingTime = 1
	}

	now := Now()
	return Article{
		ID:           NewID(),
		URL:          params.URL,
		Title:        params.Title,
		Content:      params.Content,
		Excerpt:      params.Excerpt,
		Thumbnail:    params.Thumbnail,
		SiteName:     params.SiteName,
		ReadingTime:  readingTime,
		FolderID:     params.FolderID,
		Tags:         NormalizeTags(params.Tags),
		DateAdded:    now,
		LastModified: now,
		SyncStatus:   SyncPending,
		UserID:       params.UserID,
	}
}

// ParsedArticle is the extraction boundary result for a URL.
type ParsedArticle struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Excerpt     string `json:"excerpt"`
	Thumbnail   string `json:"thumbnail"`
	SiteName    string `json:"siteName"`
	ReadingTime int    `json:"readingTime"`
}

// NormalizeTags lowercases and deduplicates tags, preserving first-seen
// order. Never returns nil.
func NormalizeTags(tags []string) []string {
	result := []string{}
	seen := map[string]bool{}
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

// HasTag reports whether the article carries the given tag (case-insensitive).
func (a *Article) HasTag(tag string) bool {
	t := strings.ToLower(tag)
	for _, have := range a.Tags {
		if have == t {
			return true
		}
	}
	return false
}
