package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"lexvault/internal/auth"
	"lexvault/internal/config"
	"lexvault/internal/handler"
	"lexvault/internal/middleware"
	"lexvault/internal/repository/postgres"
	postgresDocstore "lexvault/internal/repository/postgres/docstore"
	serviceAuth "lexvault/internal/service/auth"
	serviceDocstore "lexvault/internal/service/docstore"
	"lexvault/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_root", cfg.StorageRoot,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	docRepo := postgresDocstore.NewDocumentRepository(repoConfig)
	versionRepo := postgresDocstore.NewVersionRepository(repoConfig)
	folderRepo := postgresDocstore.NewFolderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Physical storage
	blobs := storage.NewFileStore()

	// MIME registry (embedded extension table)
	mimes, err := serviceDocstore.NewMimeRegistry()
	if err != nil {
		log.Fatalf("Failed to load MIME registry: %v", err)
	}

	// Create services
	versionService := serviceDocstore.NewVersionService(docRepo, versionRepo, txManager, blobs, cfg.StorageRoot, logger)
	lockService := serviceDocstore.NewLockService(docRepo, versionService, logger)
	unlockAuthorizer := serviceAuth.NewOwnerBasedUnlockAuthorizer(docRepo, cfg.AdminUsers)
	docService := serviceDocstore.NewDocumentService(
		docRepo,
		versionRepo,
		folderRepo,
		versionService,
		lockService,
		unlockAuthorizer,
		txManager,
		blobs,
		mimes,
		logger,
	)
	folderService := serviceDocstore.NewFolderService(folderRepo, docRepo, docService, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, versionService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("GET /api/documents/{id}/download", docHandler.DownloadDocument)

	// Version routes
	mux.HandleFunc("GET /api/documents/{id}/versions", docHandler.ListVersions)
	mux.HandleFunc("POST /api/documents/{id}/versions", docHandler.UploadVersion)
	mux.HandleFunc("GET /api/documents/{id}/versions/{n}", docHandler.GetVersion)

	// Lock protocol routes
	mux.HandleFunc("POST /api/documents/{id}/checkout", docHandler.CheckoutDocument)
	mux.HandleFunc("POST /api/documents/{id}/checkin", docHandler.CheckinDocument)
	mux.HandleFunc("POST /api/documents/{id}/unlock", docHandler.ForceUnlock)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow large downloads on slow links
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
