package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	stdsync "sync"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

// Engine bridges the local store and a remote replica. Local writes are
// pushed as they happen; remote changes are pulled on start and then
// streamed. Conflicts resolve last-writer-wins by lastModified, so both
// sides converge without coordination.
type Engine struct {
	store   *storage.Store
	replica Replica
	log     *slog.Logger
	userID  string

	mu      stdsync.Mutex
	ctx     context.Context
	stops   []func()
	stopped bool
}

// New creates an engine. A nil replica yields a no-op engine: Start and
// Stop succeed and the store stays local-only.
func New(store *storage.Store, replica Replica, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, replica: replica, log: log}
}

// Start pulls remote state, subscribes to remote changes and begins
// pushing local writes. It returns after the initial pull; streaming
// continues until Stop or context cancellation.
func (e *Engine) Start(ctx context.Context, userID string) error {
	if e.replica == nil {
		return nil
	}

	e.mu.Lock()
	e.ctx = ctx
	e.userID = userID
	e.stopped = false
	e.mu.Unlock()

	e.store.OnChange(e.push)

	if err := e.pull(ctx, userID); err != nil {
		return err
	}

	subs := []struct {
		col Collection
		fn  func(Event)
	}{
		{CollectionArticles, e.onRemoteArticle},
		{CollectionHighlights, e.onRemoteHighlight},
		{CollectionFolders, e.onRemoteFolder},
	}
	for _, sub := range subs {
		stop, err := e.replica.Subscribe(ctx, sub.col, userID, sub.fn)
		if err != nil {
			e.Stop()
			return err
		}
		e.mu.Lock()
		e.stops = append(e.stops, stop)
		e.mu.Unlock()
	}

	return nil
}

// Stop ends the subscriptions. Events already in flight are dropped.
func (e *Engine) Stop() {
	e.mu.Lock()
	stops := e.stops
	e.stops = nil
	e.stopped = true
	e.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// pull fetches every remote document and folds it into the store.
func (e *Engine) pull(ctx context.Context, userID string) error {
	articles, err := e.replica.GetAll(ctx, CollectionArticles, userID)
	if err != nil {
		return err
	}
	for id, data := range articles {
		var a model.Article
		if err := json.Unmarshal(data, &a); err != nil {
			e.log.Warn("skipping malformed remote article", "id", id, "error", err)
			continue
		}
		if _, err := e.store.ApplyRemoteArticle(a); err != nil {
			return err
		}
	}

	highlights, err := e.replica.GetAll(ctx, CollectionHighlights, userID)
	if err != nil {
		return err
	}
	for id, data := range highlights {
		var h model.Highlight
		if err := json.Unmarshal(data, &h); err != nil {
			e.log.Warn("skipping malformed remote highlight", "id", id, "error", err)
			continue
		}
		if _, err := e.store.ApplyRemoteHighlight(h); err != nil {
			return err
		}
	}

	folders, err := e.replica.GetAll(ctx, CollectionFolders, userID)
	if err != nil {
		return err
	}
	for id, data := range folders {
		var f model.Folder
		if err := json.Unmarshal(data, &f); err != nil {
			e.log.Warn("skipping malformed remote folder", "id", id, "error", err)
			continue
		}
		if _, err := e.store.ApplyRemoteFolder(f); err != nil {
			return err
		}
	}

	return nil
}

// push mirrors one local write to the replica. Store writes have already
// committed when this runs, so failures only affect sync status, never
// local data.
func (e *Engine) push(c storage.Change) {
	e.mu.Lock()
	ctx := e.ctx
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return
	}

	col := map[storage.Kind]Collection{
		storage.KindArticles:   CollectionArticles,
		storage.KindHighlights: CollectionHighlights,
		storage.KindFolders:    CollectionFolders,
	}[c.Kind]

	if c.Op == storage.OpDelete {
		if err := e.replica.Delete(ctx, col, c.UserID, c.ID); err != nil {
			e.log.Warn("failed to push delete", "collection", col, "id", c.ID, "error", err)
		}
		return
	}

	switch {
	case c.Article != nil:
		// Push the synced state so other devices adopt it as clean.
		a := *c.Article
		a.SyncStatus = model.SyncSynced
		data, err := json.Marshal(a)
		if err == nil {
			err = e.replica.Put(ctx, col, a.UserID, a.ID, data)
		}
		status := model.SyncSynced
		if err != nil {
			e.log.Warn("failed to push article", "id", a.ID, "error", err)
			status = model.SyncError
		}
		if err := e.store.MarkSyncStatus(a.ID, status); err != nil {
			e.log.Warn("failed to mark sync status", "id", a.ID, "error", err)
		}

	case c.Highlight != nil:
		data, err := json.Marshal(c.Highlight)
		if err == nil {
			err = e.replica.Put(ctx, col, c.UserID, c.ID, data)
		}
		if err != nil {
			e.log.Warn("failed to push highlight", "id", c.ID, "error", err)
		}

	case c.Folder != nil:
		data, err := json.Marshal(c.Folder)
		if err == nil {
			err = e.replica.Put(ctx, col, c.UserID, c.ID, data)
		}
		if err != nil {
			e.log.Warn("failed to push folder", "id", c.ID, "error", err)
		}
	}
}

func (e *Engine) onRemoteArticle(ev Event) {
	if e.isStopped() {
		return
	}
	if ev.Op == OpDelete {
		if err := e.store.RemoveArticleLocal(ev.ID); err != nil {
			e.log.Warn("failed to apply remote article delete", "id", ev.ID, "error", err)
		}
		return
	}
	var a model.Article
	if err := json.Unmarshal(ev.Data, &a); err != nil {
		e.log.Warn("skipping malformed remote article", "id", ev.ID, "error", err)
		return
	}
	if _, err := e.store.ApplyRemoteArticle(a); err != nil {
		e.log.Warn("failed to apply remote article", "id", ev.ID, "error", err)
	}
}

func (e *Engine) onRemoteHighlight(ev Event) {
	if e.isStopped() {
		return
	}
	if ev.Op == OpDelete {
		if err := e.store.RemoveHighlightLocal(ev.ID); err != nil {
			e.log.Warn("failed to apply remote highlight delete", "id", ev.ID, "error", err)
		}
		return
	}
	var h model.Highlight
	if err := json.Unmarshal(ev.Data, &h); err != nil {
		e.log.Warn("skipping malformed remote highlight", "id", ev.ID, "error", err)
		return
	}
	if _, err := e.store.ApplyRemoteHighlight(h); err != nil {
		e.log.Warn("failed to apply remote highlight", "id", ev.ID, "error", err)
	}
}

func (e *Engine) onRemoteFolder(ev Event) {
	if e.isStopped() {
		return
	}
	if ev.Op == OpDelete {
		if err := e.store.RemoveFolderLocal(ev.ID); err != nil {
			e.log.Warn("failed to apply remote folder delete", "id", ev.ID, "error", err)
		}
		return
	}
	var f model.Folder
	if err := json.Unmarshal(ev.Data, &f); err != nil {
		e.log.Warn("skipping malformed remote folder", "id", ev.ID, "error", err)
		return
	}
	if _, err := e.store.ApplyRemoteFolder(f); err != nil {
		e.log.Warn("failed to apply remote folder", "id", ev.ID, "error", err)
	}
}

func (e *Engine) isStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}
