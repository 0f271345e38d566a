package models

import "time"

// FolderTreeNode is a folder in the nested tree view. NotesCount counts
// only directly-owned notes, not descendants.
type FolderTreeNode struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	ParentID   *string           `json:"parent_id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	NotesCount int               `json:"notes_count"`
	Children   []*FolderTreeNode `json:"children"` // pointers for proper nesting
}
