package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"inkwell/internal/domain/models"
	"inkwell/internal/repository/sqlite"
)

// filenameUnsafe matches every rune that is not a word character, a CJK
// ideograph, a hyphen, or a dot.
var filenameUnsafe = regexp.MustCompile(`[^\w\x{4e00}-\x{9fa5}\-.]`)

// ExportService renders notes for file download.
type ExportService struct {
	noteRepo *sqlite.NoteRepository
	markdown goldmark.Markdown
	logger   *slog.Logger
}

// NewExportService creates a new export service.
func NewExportService(noteRepo *sqlite.NoteRepository, logger *slog.Logger) *ExportService {
	return &ExportService{
		noteRepo: noteRepo,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logger,
	}
}

// AllNotesExport is the payload of the whole-store JSON export.
type AllNotesExport struct {
	ExportedAt time.Time     `json:"exported_at"`
	TotalNotes int           `json:"total_notes"`
	Notes      []models.Note `json:"notes"`
}

// GetNote fetches the note to export.
func (s *ExportService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return s.noteRepo.GetByID(ctx, id)
}

// ListAll returns every note, newest-updated first, for the bulk export.
func (s *ExportService) ListAll(ctx context.Context) ([]models.Note, error) {
	return s.noteRepo.List(ctx, nil)
}

// RenderMarkdown produces the markdown file body for a note.
func (s *ExportService) RenderMarkdown(note *models.Note) string {
	return fmt.Sprintf("# %s\n\nCreated: %s\nUpdated: %s\n\n%s",
		note.Title,
		note.CreatedAt.Format(time.RFC3339),
		note.UpdatedAt.Format(time.RFC3339),
		note.Content,
	)
}

// RenderHTML converts a note's markdown content to HTML with the title
// as a top-level heading.
func (s *ExportService) RenderHTML(note *models.Note) (string, error) {
	source := fmt.Sprintf("# %s\n\n%s", note.Title, note.Content)

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render note %s: %w", note.ID, err)
	}
	return buf.String(), nil
}

// SanitizeFilename replaces unsafe filename runes with underscores.
func SanitizeFilename(name string) string {
	return filenameUnsafe.ReplaceAllString(name, "_")
}
