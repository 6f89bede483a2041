package notes

import "strings"

const (
	// DefaultTitle replaces a blank note title at write time.
	DefaultTitle = "Untitled note"
	// DefaultSubject replaces a blank note subject at write time.
	DefaultSubject = "Untitled"
)

// Note is a persisted study note.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// EntityID returns the note identifier.
func (n Note) EntityID() string {
	return n.ID
}

// NoteInput carries the fields of a new note.
type NoteInput struct {
	Title   string
	Subject string
	Content string
}

// NoteUpdate carries a partial edit; nil fields are left untouched.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Subject *string `json:"subject,omitempty"`
	Content *string `json:"content,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Subject == nil && u.Content == nil
}

// Merge overlays next onto u, later fields winning.
func (u NoteUpdate) Merge(next NoteUpdate) NoteUpdate {
	merged := u
	if next.Title != nil {
		merged.Title = next.Title
	}
	if next.Subject != nil {
		merged.Subject = next.Subject
	}
	if next.Content != nil {
		merged.Content = next.Content
	}
	return merged
}

func (u NoteUpdate) applyTo(note *Note) {
	if u.Title != nil {
		note.Title = normalizeTitle(*u.Title)
	}
	if u.Subject != nil {
		note.Subject = normalizeSubject(*u.Subject)
	}
	if u.Content != nil {
		note.Content = *u.Content
	}
}

func normalizeTitle(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultTitle
	}
	return trimmed
}

func normalizeSubject(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultSubject
	}
	return trimmed
}
