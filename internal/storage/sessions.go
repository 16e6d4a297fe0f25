package storage

import (
	"database/sql"
	"time"

	"github.com/nikbrunner/marginalia/internal/model"
)

// RecordReadingSession persists a reading interval for an article. Sessions
// shorter than model.MinSessionDuration are discarded (reported by the
// second return value) with no side effects. A recorded session and the
// owning article's analytics counters commit in one transaction: the
// counters never move without a session row, and vice versa.
func (s *Store) RecordReadingSession(articleID string, start, end time.Time) (model.ReadingSession, bool, error) {
	session := model.NewReadingSession(articleID, start, end)
	if session.Duration < model.MinSessionDuration.Milliseconds() {
		return model.ReadingSession{}, false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.ReadingSession{}, false, err
	}
	defer tx.Rollback()

	row := tx.QueryRow("SELECT "+articleColumns+" FROM articles WHERE id = ?", articleID)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return model.ReadingSession{}, false, ErrNotFound
	}
	if err != nil {
		return model.ReadingSession{}, false, err
	}

	_, err = tx.Exec(
		"INSERT INTO sessions (id, article_id, start_time, end_time, duration) VALUES (?, ?, ?, ?, ?)",
		session.ID, session.ArticleID, session.StartTime, session.EndTime, session.Duration,
	)
	if err != nil {
		return model.ReadingSession{}, false, err
	}

	article.TotalReadTime += session.Duration
	article.ReadCount++
	article.LastReadAt = model.Now()
	article.LastModified = model.Now()
	if err := replaceArticle(tx, article); err != nil {
		return model.ReadingSession{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return model.ReadingSession{}, false, err
	}

	s.emit(putArticle(article))
	return session, true, nil
}

// ListSessions returns an article's reading sessions, oldest first.
func (s *Store) ListSessions(articleID string) ([]model.ReadingSession, error) {
	rows, err := s.db.Query(
		"SELECT id, article_id, start_time, end_time, duration FROM sessions WHERE article_id = ? ORDER BY start_time",
		articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.ReadingSession{}
	for rows.Next() {
		var sess model.ReadingSession
		if err := rows.Scan(&sess.ID, &sess.ArticleID, &sess.StartTime, &sess.EndTime, &sess.Duration); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// AllSessions returns every reading session, for backup export.
func (s *Store) AllSessions() ([]model.ReadingSession, error) {
	rows, err := s.db.Query("SELECT id, article_id, start_time, end_time, duration FROM sessions ORDER BY start_time")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.ReadingSession{}
	for rows.Next() {
		var sess model.ReadingSession
		if err := rows.Scan(&sess.ID, &sess.ArticleID, &sess.StartTime, &sess.EndTime, &sess.Duration); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
