package models

// SearchOptions configures a note search. Query is matched as a
// case-insensitive substring of title or content.
type SearchOptions struct {
	Query string

	// FolderID restricts results to that exact folder (no descendant
	// expansion). nil = all folders.
	FolderID *string

	// Tags restricts results to notes holding at least one of the listed
	// tags (OR semantics). Empty = no tag filter.
	Tags []string
}

// SearchResults is the search response payload.
type SearchResults struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}
