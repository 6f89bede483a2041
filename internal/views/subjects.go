package views

import (
	"sort"
	"strings"

	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
)

// SubjectCount is one entry of the subject sidebar.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// BuildSubjectList groups notes by exact subject, blank subjects counting as
// notes.DefaultSubject, and sorts the groups alphabetically.
func BuildSubjectList(items []notes.Note) []SubjectCount {
	counts := make(map[string]int)
	for _, note := range items {
		subject := strings.TrimSpace(note.Subject)
		if subject == "" {
			subject = notes.DefaultSubject
		}
		counts[subject]++
	}

	subjects := make([]SubjectCount, 0, len(counts))
	for subject, count := range counts {
		subjects = append(subjects, SubjectCount{Subject: subject, Count: count})
	}
	sort.Slice(subjects, func(i, j int) bool {
		left, right := strings.ToLower(subjects[i].Subject), strings.ToLower(subjects[j].Subject)
		if left != right {
			return left < right
		}
		return subjects[i].Subject < subjects[j].Subject
	})
	return subjects
}

// NotesBySubject returns the notes filed under subject, matching the grouping
// of BuildSubjectList.
func NotesBySubject(items []notes.Note, subject string) []notes.Note {
	matched := make([]notes.Note, 0)
	for _, note := range items {
		noteSubject := strings.TrimSpace(note.Subject)
		if noteSubject == "" {
			noteSubject = notes.DefaultSubject
		}
		if noteSubject == subject {
			matched = append(matched, note)
		}
	}
	return matched
}
