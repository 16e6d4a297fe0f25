package model

import "time"

// MinSessionDuration is the shortest reading session worth recording.
// Sub-5s views are presumed accidental and are discarded.
const MinSessionDuration = 5 * time.Second

// ReadingSession is one write-once interval of active reading. Times are
// Unix milliseconds.
type ReadingSession struct {
	ID        string `json:"id"`
	ArticleID string `json:"articleId"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	Duration  int64  `json:"duration"` // milliseconds
}

// NewReadingSession creates a ReadingSession for the given interval.
func NewReadingSession(articleID string, start, end time.Time) ReadingSession {
	startMs := start.UnixMilli()
	endMs := end.UnixMilli()
	return ReadingSession{
		ID:        NewID(),
		ArticleID: articleID,
		StartTime: startMs,
		EndTime:   endMs,
		Duration:  endMs - startMs,
	}
}
