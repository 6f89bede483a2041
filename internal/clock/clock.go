// Package clock holds the time and identifier helpers shared by every entity:
// the ISO-8601 timestamp format persisted in storage and the time-ordered id
// provider used when records are first created.
package clock

import (
	"strings"
	"time"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// ISOLayout matches the millisecond-precision UTC format written by the browser app.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

const dateLayout = "2006-01-02"

// OrSystem returns c, or time.Now when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO parses stored timestamps. RFC 3339 values of any precision and bare
// calendar dates are accepted; anything else reports ok=false.
func ParseISO(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(dateLayout, trimmed); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

// UnixMilliOrZero returns the timestamp in epoch milliseconds, or zero when the
// value cannot be parsed.
func UnixMilliOrZero(raw string) int64 {
	parsed, ok := ParseISO(raw)
	if !ok {
		return 0
	}
	return parsed.UnixMilli()
}
