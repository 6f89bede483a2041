package views

import (
	"reflect"
	"testing"

	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
)

func TestBuildSubjectList(t *testing.T) {
	testCases := []struct {
		name     string
		subjects []string
		expected []SubjectCount
	}{
		{
			name:     "empty",
			subjects: nil,
			expected: []SubjectCount{},
		},
		{
			name:     "case sensitive groups with blank default",
			subjects: []string{"Math", "", "math"},
			expected: []SubjectCount{
				{Subject: "Math", Count: 1},
				{Subject: "math", Count: 1},
				{Subject: "Untitled", Count: 1},
			},
		},
		{
			name:     "counts and alphabetical order",
			subjects: []string{"Physics", "Biology", "Physics", "  ", "Untitled", "art"},
			expected: []SubjectCount{
				{Subject: "art", Count: 1},
				{Subject: "Biology", Count: 1},
				{Subject: "Physics", Count: 2},
				{Subject: "Untitled", Count: 2},
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			items := make([]notes.Note, 0, len(testCase.subjects))
			for _, subject := range testCase.subjects {
				items = append(items, notes.Note{Subject: subject})
			}
			got := BuildSubjectList(items)
			if !reflect.DeepEqual(got, testCase.expected) {
				t.Fatalf("BuildSubjectList = %#v, want %#v", got, testCase.expected)
			}
		})
	}
}

func TestNotesBySubject(t *testing.T) {
	items := []notes.Note{
		{ID: "1", Subject: "Math"},
		{ID: "2", Subject: ""},
		{ID: "3", Subject: "math"},
		{ID: "4", Subject: "Untitled"},
	}
	got := NotesBySubject(items, "Untitled")
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "4" {
		t.Fatalf("unexpected notes %#v", got)
	}
	if got := NotesBySubject(items, "Math"); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("subject grouping must be case sensitive, got %#v", got)
	}
}
