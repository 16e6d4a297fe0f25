package recommend

import (
	"time"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/storage"
)

// Stats is an aggregate view of a user's reading history.
type Stats struct {
	TotalArticles  int
	ReadArticles   int
	TotalReadTime  time.Duration
	AvgReadTime    time.Duration // per recorded session
	ReadThisWeek   int
	ReadThisMonth  int
	Streak         int // consecutive days with reading activity, today or yesterday backwards
	HighlightCount int
	TopTags        []storage.TagCount
}

// ComputeStats aggregates articles, sessions and highlights into Stats.
func ComputeStats(s *storage.Store, userID string, now time.Time) (Stats, error) {
	articles, err := s.AllArticles(userID)
	if err != nil {
		return Stats{}, err
	}
	highlights, err := s.AllHighlights(userID)
	if err != nil {
		return Stats{}, err
	}
	sessions, err := s.AllSessions()
	if err != nil {
		return Stats{}, err
	}
	tags, err := s.TagCounts(userID)
	if err != nil {
		return Stats{}, err
	}
	if len(tags) > 5 {
		tags = tags[:5]
	}

	stats := Stats{
		TotalArticles:  len(articles),
		HighlightCount: len(highlights),
		TopTags:        tags,
	}

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	for _, a := range articles {
		if !a.IsRead {
			continue
		}
		stats.ReadArticles++
		if a.LastReadAt == "" {
			continue
		}
		readAt, err := model.ParseTime(a.LastReadAt)
		if err != nil {
			continue
		}
		if readAt.After(weekAgo) {
			stats.ReadThisWeek++
		}
		if readAt.After(monthAgo) {
			stats.ReadThisMonth++
		}
	}

	var total time.Duration
	days := map[string]bool{}
	for _, sess := range sessions {
		total += time.Duration(sess.Duration) * time.Millisecond
		days[time.UnixMilli(sess.StartTime).UTC().Format("2006-01-02")] = true
	}
	stats.TotalReadTime = total
	if len(sessions) > 0 {
		stats.AvgReadTime = total / time.Duration(len(sessions))
	}
	stats.Streak = streak(days, now)

	return stats, nil
}

// streak counts consecutive active days ending today, or yesterday when
// today has no activity yet.
func streak(days map[string]bool, now time.Time) int {
	day := now.UTC()
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	count := 0
	for days[day.Format("2006-01-02")] {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}
