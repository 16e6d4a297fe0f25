package storage

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
)

// Filter selects articles by reading status.
type Filter string

const (
	FilterAll       Filter = "all" // hides archived
	FilterFavorites Filter = "favorites"
	FilterArchived  Filter = "archived"
	FilterUnread    Filter = "unread"
)

// Sort orders a listing.
type Sort string

const (
	SortDateAdded   Sort = "dateAdded"   // newest first
	SortLastRead    Sort = "lastRead"    // most recently read first, never-read last
	SortReadingTime Sort = "readingTime" // shortest first
	SortTitle       Sort = "title"       // locale-aware ascending
)

// ReadTimeBucket selects articles by estimated reading time.
type ReadTimeBucket string

const (
	ReadTimeAny    ReadTimeBucket = ""
	ReadTimeShort  ReadTimeBucket = "short"  // under 5 minutes
	ReadTimeMedium ReadTimeBucket = "medium" // 5 to 14 minutes
	ReadTimeLong   ReadTimeBucket = "long"   // 15 minutes and up
)

// ArticleQuery describes a library listing: filters narrow, sort orders.
type ArticleQuery struct {
	UserID        string
	Filter        Filter
	FolderID      string // non-empty limits to one folder
	Tag           string
	Search        string
	SearchContent bool // extend free-text search into stripped article text
	ReadTime      ReadTimeBucket
	Sort          Sort
}

var titleCollator = collate.New(language.Und, collate.IgnoreCase)

// ListArticles returns the user's articles matching the query.
func (s *Store) ListArticles(q ArticleQuery) ([]model.Article, error) {
	articles, err := s.AllArticles(q.UserID)
	if err != nil {
		return nil, err
	}

	filtered := articles[:0]
	for _, a := range articles {
		if !matchesQuery(a, q) {
			continue
		}
		filtered = append(filtered, a)
	}
	articles = filtered

	switch q.Sort {
	case SortTitle:
		sort.SliceStable(articles, func(i, j int) bool {
			return titleCollator.CompareString(articles[i].Title, articles[j].Title) < 0
		})
	case SortReadingTime:
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].ReadingTime < articles[j].ReadingTime
		})
	case SortLastRead:
		sort.SliceStable(articles, func(i, j int) bool {
			// Empty lastReadAt (never read) sorts last.
			return articles[i].LastReadAt > articles[j].LastReadAt
		})
	default: // SortDateAdded
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].DateAdded > articles[j].DateAdded
		})
	}

	return articles, nil
}

func matchesQuery(a model.Article, q ArticleQuery) bool {
	switch q.Filter {
	case FilterFavorites:
		if !a.IsFavorite {
			return false
		}
	case FilterArchived:
		if !a.IsArchived {
			return false
		}
	case FilterUnread:
		if a.IsRead || a.IsArchived {
			return false
		}
	default: // FilterAll hides archived
		if a.IsArchived {
			return false
		}
	}

	if q.FolderID != "" && (a.FolderID == nil || *a.FolderID != q.FolderID) {
		return false
	}
	if q.Tag != "" && !a.HasTag(q.Tag) {
		return false
	}

	switch q.ReadTime {
	case ReadTimeShort:
		if a.ReadingTime >= 5 {
			return false
		}
	case ReadTimeMedium:
		if a.ReadingTime < 5 || a.ReadingTime >= 15 {
			return false
		}
	case ReadTimeLong:
		if a.ReadingTime < 15 {
			return false
		}
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		match := strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.URL), needle)
		if !match {
			for _, tag := range a.Tags {
				if strings.Contains(tag, needle) {
					match = true
					break
				}
			}
		}
		if !match && q.SearchContent {
			match = strings.Contains(strings.ToLower(content.StripText(a.Content)), needle)
		}
		if !match {
			return false
		}
	}

	return true
}

// AllArticles returns every article in a user's partition, unordered.
func (s *Store) AllArticles(userID string) ([]model.Article, error) {
	rows, err := s.db.Query("SELECT "+articleColumns+" FROM articles WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// TagCount is one entry of a tag frequency listing.
type TagCount struct {
	Tag   string
	Count int
}

// TagCounts returns the user's tags with usage counts, most used first.
func (s *Store) TagCounts(userID string) ([]TagCount, error) {
	articles, err := s.AllArticles(userID)
	if err != nil {
		return nil, err
	}

	freq := map[string]int{}
	for _, a := range articles {
		for _, tag := range a.Tags {
			freq[tag]++
		}
	}

	counts := make([]TagCount, 0, len(freq))
	for tag, count := range freq {
		counts = append(counts, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag < counts[j].Tag
	})
	return counts, nil
}

// CountArticles returns the user's total and unread article counts.
func (s *Store) CountArticles(userID string) (total, unread int, err error) {
	articles, err := s.AllArticles(userID)
	if err != nil {
		return 0, 0, err
	}
	for _, a := range articles {
		total++
		if !a.IsRead && !a.IsArchived {
			unread++
		}
	}
	return total, unread, nil
}

// dailySampleSize is how many highlights the daily sample shows.
const dailySampleSize = 5

// DailyHighlights returns a deterministic per-day sample of the user's
// highlights: the date string seeds a Fisher-Yates shuffle, so the same
// five highlights come back all day and change the next day. Returns nil
// until the user has at least five highlights.
func (s *Store) DailyHighlights(userID, date string) ([]model.Highlight, error) {
	highlights, err := s.AllHighlights(userID)
	if err != nil {
		return nil, err
	}
	if len(highlights) < dailySampleSize {
		return nil, nil
	}

	// Stable input order so the seeded shuffle is reproducible.
	sort.Slice(highlights, func(i, j int) bool {
		return highlights[i].ID < highlights[j].ID
	})

	h := fnv.New64a()
	h.Write([]byte(date))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	for i := len(highlights) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		highlights[i], highlights[j] = highlights[j], highlights[i]
	}

	return highlights[:dailySampleSize], nil
}
