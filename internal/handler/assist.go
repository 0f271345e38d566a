package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/domain"
	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// AssistHandler handles AI assist HTTP requests. Its responses carry the
// {success, content?, error?} envelope rather than the plain {error}
// shape the other handlers use.
type AssistHandler struct {
	assistService *service.AssistService
	logger        *slog.Logger
}

// NewAssistHandler creates a new assist handler.
func NewAssistHandler(assistService *service.AssistService, logger *slog.Logger) *AssistHandler {
	return &AssistHandler{
		assistService: assistService,
		logger:        logger,
	}
}

type assistResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Assist runs one text-assist action over the supplied content.
// POST /api/ai/assist
func (h *AssistHandler) Assist(w http.ResponseWriter, r *http.Request) {
	var req service.AssistRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, assistResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	content, err := h.assistService.Assist(r.Context(), &req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrUpstream):
			status = http.StatusBadGateway
		}
		h.logger.Error("assist failed", "action", req.Action, "error", err)
		httputil.RespondJSON(w, status, assistResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assistResponse{
		Success: true,
		Content: content,
	})
}
