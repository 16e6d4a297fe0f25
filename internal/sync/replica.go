// Package sync keeps the local store and a remote replica converged.
// The replica holds raw JSON documents per collection; conflict
// resolution happens locally, last writer wins by lastModified.
package sync

import (
	"context"
	"encoding/json"
)

// Collection names a replicated document set.
type Collection string

const (
	CollectionArticles   Collection = "articles"
	CollectionHighlights Collection = "highlights"
	CollectionFolders    Collection = "folders"
)

// Op is the kind of a replica event.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Event is one remote change. Data is nil for deletes.
type Event struct {
	Op   Op
	ID   string
	Data json.RawMessage
}

// Replica is a remote document store the engine pushes to and pulls from.
type Replica interface {
	// GetAll returns every document of a user's collection, keyed by id.
	GetAll(ctx context.Context, col Collection, userID string) (map[string]json.RawMessage, error)

	// Put stores a document in a user's collection, overwriting any
	// previous version.
	Put(ctx context.Context, col Collection, userID, id string, data json.RawMessage) error

	// Delete removes a document from a user's collection. Deleting a
	// missing id is not an error.
	Delete(ctx context.Context, col Collection, userID, id string) error

	// Subscribe streams remote changes to a user's collection until the
	// context is cancelled or the returned stop function is called.
	Subscribe(ctx context.Context, col Collection, userID string, fn func(Event)) (stop func(), err error)
}
