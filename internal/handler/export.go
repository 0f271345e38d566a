package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// ExportHandler serves note downloads.
type ExportHandler struct {
	exportService *service.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService *service.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// NoteMarkdown downloads a note as a markdown file.
// GET /api/export/notes/{id}/markdown
func (h *ExportHandler) NoteMarkdown(w http.ResponseWriter, r *http.Request) {
	note, err := h.exportService.GetNote(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	setDownloadHeaders(w, "text/markdown; charset=utf-8", service.SanitizeFilename(note.Title)+".md")
	w.Write([]byte(h.exportService.RenderMarkdown(note)))
}

// NoteJSON downloads a note as a JSON file.
// GET /api/export/notes/{id}/json
func (h *ExportHandler) NoteJSON(w http.ResponseWriter, r *http.Request) {
	note, err := h.exportService.GetNote(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", attachmentFilename(service.SanitizeFilename(note.Title)+".json"))
	httputil.RespondJSON(w, http.StatusOK, note)
}

// NoteHTML downloads a note rendered to HTML.
// GET /api/export/notes/{id}/html
func (h *ExportHandler) NoteHTML(w http.ResponseWriter, r *http.Request) {
	note, err := h.exportService.GetNote(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	html, err := h.exportService.RenderHTML(note)
	if err != nil {
		handleError(w, err)
		return
	}

	setDownloadHeaders(w, "text/html; charset=utf-8", service.SanitizeFilename(note.Title)+".html")
	w.Write([]byte(html))
}

// AllNotesJSON downloads every note as one JSON file.
// GET /api/export/notes/json
func (h *ExportHandler) AllNotesJSON(w http.ResponseWriter, r *http.Request) {
	notes, err := h.exportService.ListAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("notes_export_%s.json", now.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", attachmentFilename(filename))
	httputil.RespondJSON(w, http.StatusOK, service.AllNotesExport{
		ExportedAt: now,
		TotalNotes: len(notes),
		Notes:      notes,
	})
}

func setDownloadHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachmentFilename(filename))
}

func attachmentFilename(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", url.PathEscape(filename))
}
