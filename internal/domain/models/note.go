package models

import "time"

// Note is a markdown note. FolderID is nil for notes outside any folder;
// it is cleared (never cascaded) when the owning folder is deleted.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FolderID  *string   `json:"folder_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Tags holds the note's tag names; populated on single-note reads.
	Tags []string `json:"tags,omitempty"`
}

// Tag names are globally unique, case-sensitive, and created implicitly
// on first use.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Suggestion is a stored AI assist result for a note.
type Suggestion struct {
	ID        string    `json:"id"`
	NoteID    string    `json:"note_id"`
	Type      string    `json:"suggestion_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
