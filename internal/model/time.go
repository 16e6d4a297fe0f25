package model

import "time"

// TimeFormat is the timestamp layout used for dateAdded, lastModified and
// friends. It is fixed-width, zero-padded and always UTC, so lexicographic
// comparison of two formatted timestamps orders them chronologically. The
// sync engine relies on this for last-write-wins conflict resolution.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Now returns the current time formatted as a TimeFormat string.
func Now() string {
	return FormatTime(time.Now())
}

// FormatTime formats t as a TimeFormat string in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a TimeFormat string.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeFormat, s)
}
