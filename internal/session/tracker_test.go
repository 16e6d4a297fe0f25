package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

func setup(t *testing.T) (*storage.Store, model.Article, *Tracker, *time.Time) {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "marginalia.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	a, err := s.CreateArticle(model.NewArticleParams{URL: "https://example.com/a", Title: "A"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	clock := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(s)
	tracker.now = func() time.Time { return clock }
	return s, a, tracker, &clock
}

func TestTracker_RecordsSession(t *testing.T) {
	s, a, tracker, clock := setup(t)

	tracker.Start(a.ID)
	if !tracker.Active() {
		t.Fatal("expected tracker active after Start")
	}

	*clock = clock.Add(30 * time.Second)
	sess, recorded, err := tracker.Stop()
	if err != nil {
		t.Fatalf("failed to stop: %v", err)
	}
	if !recorded {
		t.Fatal("expected session recorded")
	}
	if sess.Duration != 30000 {
		t.Errorf("expected 30000ms, got %d", sess.Duration)
	}
	if tracker.Active() {
		t.Error("expected tracker idle after Stop")
	}

	got, err := s.GetArticle(a.ID)
	if err != nil {
		t.Fatalf("failed to get article: %v", err)
	}
	if got.ReadCount != 1 || got.TotalReadTime != 30000 {
		t.Errorf("expected counters updated, got count=%d total=%d", got.ReadCount, got.TotalReadTime)
	}
}

func TestTracker_ShortSessionDiscarded(t *testing.T) {
	_, a, tracker, clock := setup(t)

	tracker.Start(a.ID)
	*clock = clock.Add(3 * time.Second)
	_, recorded, err := tracker.Stop()
	if err != nil {
		t.Fatalf("failed to stop: %v", err)
	}
	if recorded {
		t.Error("expected short session discarded")
	}
}

func TestTracker_StopWhileIdle(t *testing.T) {
	_, _, tracker, _ := setup(t)

	_, recorded, err := tracker.Stop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded {
		t.Error("expected idle Stop to record nothing")
	}
}

func TestTracker_RestartAbandonsPrevious(t *testing.T) {
	s, a, tracker, clock := setup(t)

	tracker.Start(a.ID)
	*clock = clock.Add(time.Minute)
	tracker.Start(a.ID) // restart, the first minute is abandoned
	*clock = clock.Add(10 * time.Second)

	sess, recorded, err := tracker.Stop()
	if err != nil {
		t.Fatalf("failed to stop: %v", err)
	}
	if !recorded {
		t.Fatal("expected session recorded")
	}
	if sess.Duration != 10000 {
		t.Errorf("expected 10000ms, got %d", sess.Duration)
	}

	got, err := s.GetArticle(a.ID)
	if err != nil {
		t.Fatalf("failed to get article: %v", err)
	}
	if got.ReadCount != 1 {
		t.Errorf("expected a single recorded session, got %d", got.ReadCount)
	}
}
