package sessions

import (
	"fmt"
	"strings"
)

// DefaultSubject replaces a blank session subject.
const DefaultSubject = "General"

// StudySession is a finalized, immutable record of time spent on a subject.
type StudySession struct {
	ID                string `json:"id"`
	Subject           string `json:"subject"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	DurationInSeconds int64  `json:"durationInSeconds"`
}

// EntityID returns the session identifier.
func (s StudySession) EntityID() string {
	return s.ID
}

// Summary renders the session as a one-line description.
func (s StudySession) Summary() string {
	return fmt.Sprintf("Studied %s for %s", s.Subject, FormatDuration(s.DurationInSeconds))
}

// ActiveSession is the in-memory view of the session being timed. It is
// never persisted.
type ActiveSession struct {
	ID             string `json:"id"`
	Subject        string `json:"subject"`
	StartedAt      string `json:"startedAt"`
	StartTime      string `json:"startTime,omitempty"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
	IsRunning      bool   `json:"isRunning"`
}

// NormalizeSubject trims raw and maps blank to DefaultSubject.
func NormalizeSubject(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultSubject
	}
	return trimmed
}

// FormatDuration renders seconds as "1h 5m", "12m 30s" or "45s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatClock renders seconds as a stopwatch reading, HH:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
