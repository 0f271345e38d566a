package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// TagRepository persists tags and note-tag associations. Tag insert and
// link insert are both "insert if absent", so callers may re-issue them
// idempotently after a partial failure.
type TagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(config *RepositoryConfig) *TagRepository {
	return &TagRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Ensure returns the tag with the given name, creating it on first use.
// Names are globally unique and case-sensitive.
func (r *TagRepository) Ensure(ctx context.Context, name string) (*models.Tag, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO tags (id, name, created_at)
		VALUES (?, ?, ?)`,
		uuid.NewString(), name, toMillis(time.Now().UTC()),
	)
	if err != nil {
		return nil, storageErr("ensure tag", err)
	}

	return r.getByName(ctx, name)
}

func (r *TagRepository) getByName(ctx context.Context, name string) (*models.Tag, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM tags WHERE name = ?`, name)

	tag, err := scanTag(row)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("tag %q: %w", name, domain.ErrNotFound)
		}
		return nil, storageErr("get tag", err)
	}
	return tag, nil
}

// Link associates a tag with a note; linking an already-linked pair is a
// no-op.
func (r *TagRepository) Link(ctx context.Context, noteID, tagID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
		noteID, tagID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("note %s or tag %s: %w", noteID, tagID, domain.ErrNotFound)
		}
		return storageErr("link tag", err)
	}
	return nil
}

// Unlink removes a single note-tag association.
func (r *TagRepository) Unlink(ctx context.Context, noteID, tagID string) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?`,
		noteID, tagID,
	); err != nil {
		return storageErr("unlink tag", err)
	}
	return nil
}

// UnlinkAll removes every association for a note. Used by the
// replace-the-full-set update semantics.
func (r *TagRepository) UnlinkAll(ctx context.Context, noteID string) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM note_tags WHERE note_id = ?`, noteID,
	); err != nil {
		return storageErr("unlink tags", err)
	}
	return nil
}

// ListForNote returns the tags linked to a note.
func (r *TagRepository) ListForNote(ctx context.Context, noteID string) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN note_tags nt ON t.id = nt.tag_id
		WHERE nt.note_id = ?
		ORDER BY t.name ASC`, noteID)
	if err != nil {
		return nil, storageErr("list note tags", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, storageErr("scan tag", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate tags", err)
	}
	return tags, nil
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	var createdAt int64
	if err := row.Scan(&tag.ID, &tag.Name, &createdAt); err != nil {
		return nil, err
	}
	tag.CreatedAt = fromMillis(createdAt)
	return &tag, nil
}
