package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// NoteRepository persists notes and serves the search queries.
type NoteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(config *RepositoryConfig) *NoteRepository {
	return &NoteRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Create inserts a new note. ID and timestamps must already be set.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, folder_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.Title,
		note.Content,
		note.FolderID,
		toMillis(note.CreatedAt),
		toMillis(note.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("folder for note: %w", domain.ErrNotFound)
		}
		return storageErr("create note", err)
	}
	return nil
}

// GetByID retrieves a note by ID. Tags are not populated here; the
// service layer attaches them.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, folder_id, created_at, updated_at
		FROM notes
		WHERE id = ?`, id)

	note, err := scanNote(row)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageErr("get note", err)
	}
	return note, nil
}

// Update writes title, content, folder_id and updated_at for an existing
// note. Partial-update merging happens in the service layer.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, folder_id = ?, updated_at = ?
		WHERE id = ?`,
		note.Title,
		note.Content,
		note.FolderID,
		toMillis(note.UpdatedAt),
		note.ID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("folder for note: %w", domain.ErrNotFound)
		}
		return storageErr("update note", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update note", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a note; tag associations cascade away with it.
// Deleting a non-existent id is a no-op.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return storageErr("delete note", err)
	}
	return nil
}

// List returns notes ordered newest-updated first, optionally restricted
// to one folder.
func (r *NoteRepository) List(ctx context.Context, folderID *string) ([]models.Note, error) {
	query := `
		SELECT id, title, content, folder_id, created_at, updated_at
		FROM notes`
	var args []any
	if folderID != nil {
		query += ` WHERE folder_id = ?`
		args = append(args, *folderID)
	}
	query += ` ORDER BY updated_at DESC`

	return r.queryNotes(ctx, query, args...)
}

// Search finds notes whose title or content contains the query as a
// case-insensitive substring, optionally restricted to an exact folder
// and/or to notes holding at least one of the given tags.
func (r *NoteRepository) Search(ctx context.Context, opts models.SearchOptions) ([]models.Note, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT DISTINCT n.id, n.title, n.content, n.folder_id, n.created_at, n.updated_at
		FROM notes n
		LEFT JOIN note_tags nt ON n.id = nt.note_id
		LEFT JOIN tags t ON nt.tag_id = t.id
		WHERE (LOWER(n.title) LIKE '%' || LOWER(?) || '%'
		   OR LOWER(n.content) LIKE '%' || LOWER(?) || '%')`)
	args := []any{opts.Query, opts.Query}

	if opts.FolderID != nil {
		sb.WriteString(` AND n.folder_id = ?`)
		args = append(args, *opts.FolderID)
	}
	if len(opts.Tags) > 0 {
		sb.WriteString(` AND t.name IN (?` + strings.Repeat(", ?", len(opts.Tags)-1) + `)`)
		for _, tag := range opts.Tags {
			args = append(args, tag)
		}
	}
	sb.WriteString(` ORDER BY n.updated_at DESC`)

	return r.queryNotes(ctx, sb.String(), args...)
}

func (r *NoteRepository) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query notes", err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storageErr("scan note", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate notes", err)
	}
	return notes, nil
}

func scanNote(row rowScanner) (*models.Note, error) {
	var note models.Note
	var createdAt, updatedAt int64
	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.FolderID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	note.CreatedAt = fromMillis(createdAt)
	note.UpdatedAt = fromMillis(updatedAt)
	return &note, nil
}
