package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// FolderRepository persists the folder forest.
type FolderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *RepositoryConfig) *FolderRepository {
	return &FolderRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Create inserts a new folder. ID and timestamps must already be set.
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (id, name, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		folder.ID,
		folder.Name,
		folder.ParentID,
		toMillis(folder.CreatedAt),
		toMillis(folder.UpdatedAt),
	)
	if err != nil {
		return storageErr("create folder", err)
	}
	return nil
}

// GetByID retrieves a folder by ID.
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM folders
		WHERE id = ?`, id)

	folder, err := scanFolder(row)
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageErr("get folder", err)
	}
	return folder, nil
}

// Update writes name, parent_id and updated_at for an existing folder.
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE folders
		SET name = ?, parent_id = ?, updated_at = ?
		WHERE id = ?`,
		folder.Name,
		folder.ParentID,
		toMillis(folder.UpdatedAt),
		folder.ID,
	)
	if err != nil {
		return storageErr("update folder", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update folder", err)
	}
	if affected == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a folder. Schema-level cascade deletes descendant
// folders and clears folder_id on notes in the deleted subtree.
// Deleting a non-existent id is a no-op.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
		return storageErr("delete folder", err)
	}
	return nil
}

// ListAll returns every folder ordered by name ascending.
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, parent_id, created_at, updated_at
		FROM folders
		ORDER BY name ASC`)
	if err != nil {
		return nil, storageErr("list folders", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, storageErr("scan folder", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate folders", err)
	}
	return folders, nil
}

// NoteCounts returns the number of notes directly owned by each folder.
// Folders without notes are absent from the map.
func (r *FolderRepository) NoteCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT folder_id, COUNT(*)
		FROM notes
		WHERE folder_id IS NOT NULL
		GROUP BY folder_id`)
	if err != nil {
		return nil, storageErr("count notes per folder", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var folderID string
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, storageErr("scan note count", err)
		}
		counts[folderID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate note counts", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	var createdAt, updatedAt int64
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	folder.CreatedAt = fromMillis(createdAt)
	folder.UpdatedAt = fromMillis(updatedAt)
	return &folder, nil
}
