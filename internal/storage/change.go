package storage

import "github.com/nikbrunner/marginalia/internal/model"

// Kind names a synced record collection.
type Kind string

const (
	KindArticles   Kind = "articles"
	KindHighlights Kind = "highlights"
	KindFolders    Kind = "folders"
)

// Op is the kind of mutation a Change describes.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Change describes one committed mutation to a synced entity. For OpPut
// exactly one of the record pointers is set; for OpDelete only ID and
// UserID are.
type Change struct {
	Kind   Kind
	Op     Op
	ID     string
	UserID string

	Article   *model.Article
	Highlight *model.Highlight
	Folder    *model.Folder
}

func putArticle(a model.Article) Change {
	return Change{Kind: KindArticles, Op: OpPut, ID: a.ID, UserID: a.UserID, Article: &a}
}

func putHighlight(h model.Highlight) Change {
	return Change{Kind: KindHighlights, Op: OpPut, ID: h.ID, UserID: h.UserID, Highlight: &h}
}

func putFolder(f model.Folder) Change {
	return Change{Kind: KindFolders, Op: OpPut, ID: f.ID, UserID: f.UserID, Folder: &f}
}

func deleteChange(kind Kind, id, userID string) Change {
	return Change{Kind: kind, Op: OpDelete, ID: id, UserID: userID}
}
