package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// SuggestionRepository stores AI assist results tied to a note. Rows
// cascade away when the note is deleted.
type SuggestionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSuggestionRepository creates a new suggestion repository.
func NewSuggestionRepository(config *RepositoryConfig) *SuggestionRepository {
	return &SuggestionRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Create inserts a suggestion. ID and CreatedAt must already be set.
func (r *SuggestionRepository) Create(ctx context.Context, s *models.Suggestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_suggestions (id, note_id, suggestion_type, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.NoteID, s.Type, s.Content, toMillis(s.CreatedAt),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("note %s: %w", s.NoteID, domain.ErrNotFound)
		}
		return storageErr("create suggestion", err)
	}
	return nil
}

// ListForNote returns a note's suggestions, newest first.
func (r *SuggestionRepository) ListForNote(ctx context.Context, noteID string) ([]models.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, note_id, suggestion_type, content, created_at
		FROM ai_suggestions
		WHERE note_id = ?
		ORDER BY created_at DESC`, noteID)
	if err != nil {
		return nil, storageErr("list suggestions", err)
	}
	defer rows.Close()

	suggestions := make([]models.Suggestion, 0)
	for rows.Next() {
		var s models.Suggestion
		var createdAt int64
		if err := rows.Scan(&s.ID, &s.NoteID, &s.Type, &s.Content, &createdAt); err != nil {
			return nil, storageErr("scan suggestion", err)
		}
		s.CreatedAt = fromMillis(createdAt)
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate suggestions", err)
	}
	return suggestions, nil
}
