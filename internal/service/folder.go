package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/repository/sqlite"
)

// MaxFolderNameLength bounds folder names.
const MaxFolderNameLength = 255

// FolderService owns folder lifecycle and the forest invariants.
type FolderService struct {
	folderRepo *sqlite.FolderRepository
	noteRepo   *sqlite.NoteRepository
	logger     *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(folderRepo *sqlite.FolderRepository, noteRepo *sqlite.NoteRepository, logger *slog.Logger) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		noteRepo:   noteRepo,
		logger:     logger,
	}
}

// CreateFolderRequest is the payload for folder creation.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// UpdateFolderRequest is the payload for partial folder updates.
// ParentID is tri-state: absent = keep, null = move to root.
type UpdateFolderRequest struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// CreateFolder creates a folder, optionally under a parent.
func (s *FolderService) CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, MaxFolderNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID.
func (s *FolderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// ListFolders returns all folders ordered by name.
func (s *FolderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return s.folderRepo.ListAll(ctx)
}

// UpdateFolder applies a partial update (rename and/or move). The second
// return value is false when the request supplied neither field, which is
// a no-op rather than an error.
func (s *FolderService) UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, bool, error) {
	if req.Name == nil && !req.ParentID.Present {
		return nil, false, nil
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.Validate(name, validation.Required, validation.Length(1, MaxFolderNameLength)); err != nil {
			return nil, false, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
		req.Name = &name
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}

	if req.ParentID.Present {
		if req.ParentID.Value != nil && *req.ParentID.Value != "" {
			parent, err := s.folderRepo.GetByID(ctx, *req.ParentID.Value)
			if err != nil {
				return nil, false, err
			}
			if err := s.checkNoCycle(ctx, id, parent.ID); err != nil {
				return nil, false, err
			}
			folder.ParentID = &parent.ID
		} else {
			// null (or empty) = move to root
			folder.ParentID = nil
		}
	}

	folder.UpdatedAt = time.Now().UTC()

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, false, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, true, nil
}

// DeleteFolder deletes a folder, its descendant folders, and detaches
// their notes. Deleting a non-existent id is a no-op success.
func (s *FolderService) DeleteFolder(ctx context.Context, id string) error {
	if err := s.folderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("folder deleted", "id", id)
	return nil
}

// FolderNotes returns the notes directly owned by a folder, newest first.
func (s *FolderService) FolderNotes(ctx context.Context, id string) ([]models.Note, error) {
	if _, err := s.folderRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.noteRepo.List(ctx, &id)
}

// checkNoCycle rejects a reparent that would make folderID its own
// ancestor. The walk keeps a visited set so a corrupted parent chain
// cannot loop it forever.
func (s *FolderService) checkNoCycle(ctx context.Context, folderID, newParentID string) error {
	if folderID == newParentID {
		return &domain.ConflictError{
			Message:      "cannot move a folder into itself",
			ResourceType: "folder",
			ResourceID:   folderID,
		}
	}

	visited := map[string]bool{newParentID: true}
	currentID := newParentID
	for {
		current, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			return err
		}
		if current.ParentID == nil {
			return nil
		}
		if *current.ParentID == folderID {
			return &domain.ConflictError{
				Message:      "cannot move a folder into its own descendant",
				ResourceType: "folder",
				ResourceID:   folderID,
			}
		}
		if visited[*current.ParentID] {
			// Parent chain already contains a cycle; refuse to extend it.
			return &domain.ConflictError{
				Message:      "folder hierarchy contains a cycle",
				ResourceType: "folder",
				ResourceID:   currentID,
			}
		}
		visited[*current.ParentID] = true
		currentID = *current.ParentID
	}
}
