package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/llm"
	"inkwell/internal/repository/sqlite"
)

// Completer is the opaque text-assist capability. *llm.Client satisfies
// it; tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, action llm.Action, content, language, tone string) (string, error)
}

// AssistService runs AI text-assist actions and records the results as
// suggestions when the request names a note.
type AssistService struct {
	completer      Completer
	suggestionRepo *sqlite.SuggestionRepository
	logger         *slog.Logger
}

// NewAssistService creates a new assist service.
func NewAssistService(completer Completer, suggestionRepo *sqlite.SuggestionRepository, logger *slog.Logger) *AssistService {
	return &AssistService{
		completer:      completer,
		suggestionRepo: suggestionRepo,
		logger:         logger,
	}
}

// AssistRequest is the payload for an assist call.
type AssistRequest struct {
	Action   llm.Action `json:"action"`
	Content  string     `json:"content"`
	Language string     `json:"language"`
	Tone     string     `json:"tone"`
	NoteID   string     `json:"note_id"`
}

// Assist validates the request, delegates to the completion capability,
// and best-effort records the result against the note when one is named.
func (s *AssistService) Assist(ctx context.Context, req *AssistRequest) (string, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required),
	); err != nil {
		return "", fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if req.Action != "" && !llm.IsValidAction(req.Action) {
		return "", fmt.Errorf("%w: unknown action %q", domain.ErrValidation, req.Action)
	}
	action := req.Action
	if action == "" {
		action = llm.ActionContinue
	}

	result, err := s.completer.Complete(ctx, action, req.Content, req.Language, req.Tone)
	if err != nil {
		return "", err
	}

	if req.NoteID != "" {
		suggestion := &models.Suggestion{
			ID:        uuid.NewString(),
			NoteID:    req.NoteID,
			Type:      string(action),
			Content:   result,
			CreatedAt: time.Now().UTC(),
		}
		// The assist result is already in hand; a failed record keeps
		// the response usable.
		if err := s.suggestionRepo.Create(ctx, suggestion); err != nil {
			s.logger.Warn("failed to record suggestion",
				"note_id", req.NoteID,
				"action", action,
				"error", err,
			)
		}
	}

	s.logger.Info("assist completed", "action", action, "note_id", req.NoteID)

	return result, nil
}
