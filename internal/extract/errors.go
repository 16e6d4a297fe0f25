package extract

import "fmt"

// Kind classifies extraction failures so callers can phrase them for
// the user.
type Kind string

const (
	KindInvalidURL       Kind = "invalid_url"
	KindTimeout          Kind = "timeout"
	KindFetchFailed      Kind = "fetch_failed"
	KindExtractionFailed Kind = "extraction_failed"
)

// Error is an extraction failure. Status carries the HTTP status code
// for fetch failures, zero otherwise.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return fmt.Sprintf("invalid url %q", e.URL)
	case KindTimeout:
		return fmt.Sprintf("timed out fetching %s", e.URL)
	case KindFetchFailed:
		if e.Status != 0 {
			return fmt.Sprintf("fetching %s returned status %d", e.URL, e.Status)
		}
		return fmt.Sprintf("failed to fetch %s", e.URL)
	case KindExtractionFailed:
		return fmt.Sprintf("no readable content found at %s", e.URL)
	}
	return fmt.Sprintf("extraction failed for %s", e.URL)
}

func (e *Error) Unwrap() error { return e.Err }
