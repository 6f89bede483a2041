package views

import (
	"sort"
	"strings"
	"unicode"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
	"github.com/MarcoPoloResearchLab/studyhub/internal/sessions"
)

// Result types.
const (
	ResultNote    = "note"
	ResultPlan    = "plan"
	ResultSession = "session"
)

const (
	snippetLength = 100
	snippetLead   = 20
)

// Corpus is the searchable state.
type Corpus struct {
	Notes    []notes.Note
	Plans    []plans.Plan
	Sessions []sessions.StudySession
}

// SearchResult describes one matching record.
type SearchResult struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

// Search returns every note, plan and session containing query, ignoring
// case, newest first. Records without a readable date sort last.
func Search(corpus Corpus, query string) []SearchResult {
	needle := foldRunes(strings.TrimSpace(query))
	results := make([]SearchResult, 0)
	if len(needle) == 0 {
		return results
	}

	for _, note := range corpus.Notes {
		if !anyContains(needle, note.Title, note.Subject, note.Content) {
			continue
		}
		results = append(results, SearchResult{
			Type:    ResultNote,
			ID:      note.ID,
			Title:   note.Title,
			Snippet: snippet(note.Content, needle),
			Date:    firstNonEmpty(note.UpdatedAt, note.CreatedAt),
		})
	}
	for _, plan := range corpus.Plans {
		if !anyContains(needle, plan.Title, plan.Subject, plan.Description) {
			continue
		}
		results = append(results, SearchResult{
			Type:    ResultPlan,
			ID:      plan.ID,
			Title:   plan.Title,
			Snippet: snippet(plan.Description, needle),
			Date:    plan.Deadline,
		})
	}
	for _, session := range corpus.Sessions {
		if !anyContains(needle, session.Subject) {
			continue
		}
		results = append(results, SearchResult{
			Type:    ResultSession,
			ID:      session.ID,
			Title:   session.Subject,
			Snippet: snippet(session.Summary(), needle),
			Date:    firstNonEmpty(session.EndTime, session.StartTime),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return clock.UnixMilliOrZero(results[i].Date) > clock.UnixMilliOrZero(results[j].Date)
	})
	return results
}

// snippet returns up to snippetLength runes of source starting snippetLead
// runes before the first match, or the leading runes when source does not
// contain the match.
func snippet(source string, needle []rune) string {
	runes := []rune(source)
	start := 0
	if index := indexFold(runes, needle); index > snippetLead {
		start = index - snippetLead
	}
	end := min(start+snippetLength, len(runes))
	return string(runes[start:end])
}

func anyContains(needle []rune, fields ...string) bool {
	for _, field := range fields {
		if indexFold([]rune(field), needle) >= 0 {
			return true
		}
	}
	return false
}

// indexFold returns the rune index of the first case-insensitive occurrence
// of needle, which must already be folded, or -1.
func indexFold(haystack, needle []rune) int {
	for start := 0; start+len(needle) <= len(haystack); start++ {
		matched := true
		for offset, want := range needle {
			if unicode.ToLower(haystack[start+offset]) != want {
				matched = false
				break
			}
		}
		if matched {
			return start
		}
	}
	return -1
}

func foldRunes(value string) []rune {
	runes := []rune(value)
	for index, r := range runes {
		runes[index] = unicode.ToLower(r)
	}
	return runes
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
