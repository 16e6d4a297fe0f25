package model

// Patch types describe partial updates. A nil field leaves the target field
// unchanged. Content, IDs and creation timestamps are deliberately absent:
// they are immutable once set.

// ArticlePatch is a partial update to an Article.
type ArticlePatch struct {
	Title         *string
	Excerpt       *string
	Thumbnail     *string
	IsRead        *bool
	IsFavorite    *bool
	IsArchived    *bool
	ReadProgress  *int
	FolderID      *string
	ClearFolder   bool
	Tags          []string
	ReadCount     *int
	TotalReadTime *int64
	LastReadAt    *string
	SyncStatus    *SyncStatus
}

// Apply merges the patch into a. It does not touch LastModified; the store
// bumps that on every mutation.
func (p ArticlePatch) Apply(a *Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Excerpt != nil {
		a.Excerpt = *p.Excerpt
	}
	if p.Thumbnail != nil {
		a.Thumbnail = *p.Thumbnail
	}
	if p.IsRead != nil {
		a.IsRead = *p.IsRead
	}
	if p.IsFavorite != nil {
		a.IsFavorite = *p.IsFavorite
	}
	if p.IsArchived != nil {
		a.IsArchived = *p.IsArchived
	}
	if p.ReadProgress != nil {
		a.ReadProgress = *p.ReadProgress
	}
	if p.ClearFolder {
		a.FolderID = nil
	} else if p.FolderID != nil {
		a.FolderID = p.FolderID
	}
	if p.Tags != nil {
		a.Tags = NormalizeTags(p.Tags)
	}
	if p.ReadCount != nil {
		a.ReadCount = *p.ReadCount
	}
	if p.TotalReadTime != nil {
		a.TotalReadTime = *p.TotalReadTime
	}
	if p.LastReadAt != nil {
		a.LastReadAt = *p.LastReadAt
	}
	if p.SyncStatus != nil {
		a.SyncStatus = *p.SyncStatus
	}
}

// HighlightPatch is a partial update to a Highlight. Anchor fields are
// immutable: a highlight never moves, it only resolves or goes stale.
type HighlightPatch struct {
	Color           *HighlightColor
	Note            *string
	Tags            []string
	CollectionID    *string
	ClearCollection bool
}

// Apply merges the patch into h.
func (p HighlightPatch) Apply(h *Highlight) {
	if p.Color != nil && p.Color.Valid() {
		h.Color = *p.Color
	}
	if p.Note != nil {
		h.Note = *p.Note
	}
	if p.Tags != nil {
		h.Tags = NormalizeTags(p.Tags)
	}
	if p.ClearCollection {
		h.CollectionID = nil
	} else if p.CollectionID != nil {
		h.CollectionID = p.CollectionID
	}
}

// FolderPatch is a partial update to a Folder.
type FolderPatch struct {
	Name  *string
	Color *string
	Order *int
}

// Apply merges the patch into f.
func (p FolderPatch) Apply(f *Folder) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	if p.Order != nil {
		f.Order = *p.Order
	}
}
