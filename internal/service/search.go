package service

import (
	"context"
	"log/slog"

	"inkwell/internal/domain/models"
	"inkwell/internal/repository/sqlite"
)

// SearchService answers substring searches across note title and content.
type SearchService struct {
	noteRepo *sqlite.NoteRepository
	logger   *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(noteRepo *sqlite.NoteRepository, logger *slog.Logger) *SearchService {
	return &SearchService{
		noteRepo: noteRepo,
		logger:   logger,
	}
}

// Search runs a case-insensitive substring search. An empty query is not
// an error: it returns the empty result set rather than matching
// everything.
func (s *SearchService) Search(ctx context.Context, opts models.SearchOptions) (*models.SearchResults, error) {
	if opts.Query == "" {
		return &models.SearchResults{Notes: []models.Note{}, Total: 0}, nil
	}
	if opts.FolderID != nil && *opts.FolderID == "" {
		opts.FolderID = nil
	}

	notes, err := s.noteRepo.Search(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search completed",
		"query", opts.Query,
		"result_count", len(notes),
	)

	return &models.SearchResults{Notes: notes, Total: len(notes)}, nil
}
