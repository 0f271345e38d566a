package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

// SearchHandler handles search HTTP requests.
type SearchHandler struct {
	searchService *service.SearchService
	logger        *slog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search runs a substring search over note titles and contents.
// A missing or empty query is answered with the empty result set and
// status 400 rather than matching everything.
// GET /api/search?query=&folder_id=&tags=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := params.Get("query")
	if query == "" {
		httputil.RespondJSON(w, http.StatusBadRequest, models.SearchResults{
			Notes: []models.Note{},
			Total: 0,
		})
		return
	}

	opts := models.SearchOptions{Query: query}
	if v := params.Get("folder_id"); v != "" {
		opts.FolderID = &v
	}
	// Tags arrive as repeated ?tags= parameters or one comma-separated value.
	for _, raw := range params["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}

	results, err := h.searchService.Search(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}
