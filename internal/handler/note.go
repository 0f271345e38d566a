package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// NoteHandler handles note and note-tag HTTP requests.
type NoteHandler struct {
	noteService *service.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// ListNotes returns notes newest-updated first, optionally restricted to
// one folder.
// GET /api/notes?folder_id=
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	var folderID *string
	if v := r.URL.Query().Get("folder_id"); v != "" {
		folderID = &v
	}

	notes, err := h.noteService.ListNotes(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, notes)
}

// GetNote returns a single note with its tag names.
// GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.GetNote(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, note)
}

// CreateNote creates a note, creating and linking any tags supplied.
// POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"id": note.ID})
}

// UpdateNote applies a partial update; a supplied tag list replaces the
// full set.
// PUT /api/notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.noteService.UpdateNote(r.Context(), r.PathValue("id"), &req); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondSuccess(w, true)
}

// DeleteNote deletes a note and its tag associations.
// DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.noteService.DeleteNote(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondSuccess(w, true)
}

// NoteTags lists the tags linked to a note.
// GET /api/notes/{id}/tags
func (h *NoteHandler) NoteTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.noteService.NoteTags(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tags)
}

type addTagRequest struct {
	TagName string `json:"tagName"`
}

// AddTag links one tag to a note, creating the tag on first use.
// POST /api/notes/{id}/tags
func (h *NoteHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req addTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.noteService.AddTag(r.Context(), r.PathValue("id"), req.TagName); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondSuccess(w, true)
}

// RemoveTag removes one note-tag association.
// DELETE /api/notes/{id}/tags/{tagId}
func (h *NoteHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	if err := h.noteService.RemoveTag(r.Context(), r.PathValue("id"), r.PathValue("tagId")); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondSuccess(w, true)
}

// NoteSuggestions lists the stored AI assist results for a note.
// GET /api/notes/{id}/suggestions
func (h *NoteHandler) NoteSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.noteService.NoteSuggestions(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, suggestions)
}
