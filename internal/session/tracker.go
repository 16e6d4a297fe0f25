// Package session measures time actually spent reading an article.
package session

import (
	"time"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

// Tracker accumulates one reading session at a time. Start when the
// reader opens an article, Stop when they leave; the store discards
// anything shorter than the minimum, so stray opens cost nothing.
type Tracker struct {
	store *storage.Store
	now   func() time.Time

	articleID string
	startedAt time.Time
	active    bool
}

// NewTracker creates an idle tracker.
func NewTracker(store *storage.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Start begins timing the article. Starting while active abandons the
// previous interval without recording it.
func (t *Tracker) Start(articleID string) {
	t.articleID = articleID
	t.startedAt = t.now()
	t.active = true
}

// Active reports whether a session is running.
func (t *Tracker) Active() bool { return t.active }

// Stop ends the current session and records it. Returns the recorded
// session and true when it met the minimum duration; Stop while idle
// is a no-op.
func (t *Tracker) Stop() (model.ReadingSession, bool, error) {
	if !t.active {
		return model.ReadingSession{}, false, nil
	}
	t.active = false
	return t.store.RecordReadingSession(t.articleID, t.startedAt, t.now())
}
