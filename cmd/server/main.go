package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/llm"
	"inkwell/internal/middleware"
	"inkwell/internal/repository/sqlite"
	"inkwell/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"db_path", cfg.DBPath,
	)

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("database ready", "path", cfg.DBPath)

	// Repositories
	repoConfig := &sqlite.RepositoryConfig{DB: db, Logger: logger}
	folderRepo := sqlite.NewFolderRepository(repoConfig)
	noteRepo := sqlite.NewNoteRepository(repoConfig)
	tagRepo := sqlite.NewTagRepository(repoConfig)
	suggestionRepo := sqlite.NewSuggestionRepository(repoConfig)

	// AI completion client
	llmClient, err := llm.NewClient(llm.ClientConfig{
		Endpoint:   cfg.AIEndpoint,
		APIKey:     cfg.AIKey,
		APIVersion: cfg.AIAPIVersion,
		Deployment: cfg.AIDeployment,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}
	if !llmClient.Configured() {
		logger.Warn("AI completion endpoint not configured; /api/ai/assist will fail")
	}

	// Services
	folderService := service.NewFolderService(folderRepo, noteRepo, logger)
	noteService := service.NewNoteService(noteRepo, folderRepo, tagRepo, suggestionRepo, logger)
	treeService := service.NewTreeService(folderRepo, logger)
	searchService := service.NewSearchService(noteRepo, logger)
	assistService := service.NewAssistService(llmClient, suggestionRepo, logger)
	exportService := service.NewExportService(noteRepo, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(folderService, treeService, logger)
	noteHandler := handler.NewNoteHandler(noteService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	assistHandler := handler.NewAssistHandler(assistService, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Note routes
	mux.HandleFunc("GET /api/notes", noteHandler.ListNotes)
	mux.HandleFunc("POST /api/notes", noteHandler.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", noteHandler.GetNote)
	mux.HandleFunc("PUT /api/notes/{id}", noteHandler.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", noteHandler.DeleteNote)
	mux.HandleFunc("GET /api/notes/{id}/tags", noteHandler.NoteTags)
	mux.HandleFunc("POST /api/notes/{id}/tags", noteHandler.AddTag)
	mux.HandleFunc("DELETE /api/notes/{id}/tags/{tagId}", noteHandler.RemoveTag)
	mux.HandleFunc("GET /api/notes/{id}/suggestions", noteHandler.NoteSuggestions)

	// Folder routes ("tree" must stay more specific than "{id}")
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", folderHandler.GetTree)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PUT /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/notes", folderHandler.FolderNotes)

	// Search
	mux.HandleFunc("GET /api/search", searchHandler.Search)

	// AI assist
	mux.HandleFunc("POST /api/ai/assist", assistHandler.Assist)

	// Export
	mux.HandleFunc("GET /api/export/notes/json", exportHandler.AllNotesJSON)
	mux.HandleFunc("GET /api/export/notes/{id}/markdown", exportHandler.NoteMarkdown)
	mux.HandleFunc("GET /api/export/notes/{id}/json", exportHandler.NoteJSON)
	mux.HandleFunc("GET /api/export/notes/{id}/html", exportHandler.NoteHTML)

	// Apply middleware in reverse order (they wrap each other)
	var root http.Handler = mux
	root = middleware.RequestLogger(logger)(root)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
