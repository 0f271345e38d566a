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

// MaxNoteTitleLength bounds note titles.
const MaxNoteTitleLength = 500

// NoteService owns note lifecycle and tag association semantics.
type NoteService struct {
	noteRepo       *sqlite.NoteRepository
	folderRepo     *sqlite.FolderRepository
	tagRepo        *sqlite.TagRepository
	suggestionRepo *sqlite.SuggestionRepository
	logger         *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(
	noteRepo *sqlite.NoteRepository,
	folderRepo *sqlite.FolderRepository,
	tagRepo *sqlite.TagRepository,
	suggestionRepo *sqlite.SuggestionRepository,
	logger *slog.Logger,
) *NoteService {
	return &NoteService{
		noteRepo:       noteRepo,
		folderRepo:     folderRepo,
		tagRepo:        tagRepo,
		suggestionRepo: suggestionRepo,
		logger:         logger,
	}
}

// CreateNoteRequest is the payload for note creation.
type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID *string  `json:"folder_id"`
	Tags     []string `json:"tags"`
}

// UpdateNoteRequest is the payload for partial note updates. Supplying
// Tags replaces the full tag set; absent Tags leaves links untouched.
// FolderID is tri-state: absent = keep, null = detach from folder.
type UpdateNoteRequest struct {
	Title    *string                 `json:"title"`
	Content  *string                 `json:"content"`
	FolderID httputil.OptionalString `json:"folder_id"`
	Tags     *[]string               `json:"tags"`
}

// CreateNote creates a note and links its tags, creating absent tags on
// the way. Note insert and tag linking are separate statements: a partial
// failure leaves the note without some links, and callers may re-issue
// tag operations idempotently.
func (s *NoteService) CreateNote(ctx context.Context, req *CreateNoteRequest) (*models.Note, error) {
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, MaxNoteTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		FolderID:  req.FolderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	if err := s.linkTags(ctx, note.ID, req.Tags); err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		"id", note.ID,
		"title", note.Title,
		"folder_id", note.FolderID,
		"tag_count", len(req.Tags),
	)

	return note, nil
}

// GetNote retrieves a note with its tag names attached.
func (s *NoteService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListForNote(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Tags = make([]string, 0, len(tags))
	for _, tag := range tags {
		note.Tags = append(note.Tags, tag.Name)
	}

	return note, nil
}

// ListNotes returns notes ordered newest-updated first, optionally
// restricted to one folder.
func (s *NoteService) ListNotes(ctx context.Context, folderID *string) ([]models.Note, error) {
	if folderID != nil && *folderID == "" {
		folderID = nil
	}
	return s.noteRepo.List(ctx, folderID)
}

// UpdateNote applies a partial update. Only supplied fields change;
// updated_at always advances. A supplied tag list replaces the full set.
func (s *NoteService) UpdateNote(ctx context.Context, id string, req *UpdateNoteRequest) (*models.Note, error) {
	if req.Title != nil {
		if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, MaxNoteTitleLength)); err != nil {
			return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
		}
	}

	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.FolderID.Present {
		if req.FolderID.Value != nil && *req.FolderID.Value != "" {
			folder, err := s.folderRepo.GetByID(ctx, *req.FolderID.Value)
			if err != nil {
				return nil, err
			}
			note.FolderID = &folder.ID
		} else {
			note.FolderID = nil
		}
	}

	note.UpdatedAt = time.Now().UTC()

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	if req.Tags != nil {
		// Replace, never merge: drop every link, then relink.
		if err := s.tagRepo.UnlinkAll(ctx, id); err != nil {
			return nil, err
		}
		if err := s.linkTags(ctx, id, *req.Tags); err != nil {
			return nil, err
		}
	}

	s.logger.Info("note updated", "id", note.ID)

	return note, nil
}

// DeleteNote deletes a note; its tag associations and suggestions
// cascade away. Deleting a non-existent id is a no-op success.
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("note deleted", "id", id)
	return nil
}

// NoteTags returns the tags linked to a note.
func (s *NoteService) NoteTags(ctx context.Context, noteID string) ([]models.Tag, error) {
	if _, err := s.noteRepo.GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	return s.tagRepo.ListForNote(ctx, noteID)
}

// AddTag links a single tag to a note, creating the tag on first use.
// Adding an already-linked tag is a no-op success.
func (s *NoteService) AddTag(ctx context.Context, noteID, tagName string) error {
	tagName = strings.TrimSpace(tagName)
	if err := validation.Validate(tagName, validation.Required); err != nil {
		return fmt.Errorf("%w: tagName: %v", domain.ErrValidation, err)
	}

	if _, err := s.noteRepo.GetByID(ctx, noteID); err != nil {
		return err
	}

	tag, err := s.tagRepo.Ensure(ctx, tagName)
	if err != nil {
		return err
	}
	return s.tagRepo.Link(ctx, noteID, tag.ID)
}

// RemoveTag removes a single note-tag association.
func (s *NoteService) RemoveTag(ctx context.Context, noteID, tagID string) error {
	return s.tagRepo.Unlink(ctx, noteID, tagID)
}

// NoteSuggestions returns the stored AI assist results for a note,
// newest first.
func (s *NoteService) NoteSuggestions(ctx context.Context, noteID string) ([]models.Suggestion, error) {
	if _, err := s.noteRepo.GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	return s.suggestionRepo.ListForNote(ctx, noteID)
}

// linkTags creates-and-links each tag name. Duplicate names in the input
// collapse to one link.
func (s *NoteService) linkTags(ctx context.Context, noteID string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.tagRepo.Ensure(ctx, name)
		if err != nil {
			return err
		}
		if err := s.tagRepo.Link(ctx, noteID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}
