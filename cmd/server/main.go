package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"medvault/internal/config"
	"medvault/internal/handler"
	"medvault/internal/middleware"
	"medvault/internal/repository/filestore"
	"medvault/internal/repository/leveldb"
	"medvault/internal/service/launcher"
	"medvault/internal/service/media"
	"medvault/internal/service/patient"
	"medvault/internal/service/settings"
	"medvault/internal/service/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create repositories
	repoConfig, err := filestore.NewRepositoryConfig(cfg.DataDir, logger)
	if err != nil {
		log.Fatalf("Failed to prepare data directory: %v", err)
	}
	rootRepo := filestore.NewStorageRootRepository(repoConfig)
	recordRepo := filestore.NewRecordRepository(repoConfig)
	settingsRepo := filestore.NewSettingsRepository(repoConfig)
	dictRepo := filestore.NewDictionaryRepository(repoConfig)

	folderIndex, err := leveldb.NewFolderIndex(cfg.DataDir, logger)
	if err != nil {
		log.Fatalf("Failed to open folder index: %v", err)
	}
	defer folderIndex.Close()

	// Storage roots
	registry, err := storage.NewRegistry(ctx, rootRepo, cfg.StatsStaleAfter, logger)
	if err != nil {
		log.Fatalf("Failed to load storage registry: %v", err)
	}
	resolver := storage.NewPathResolver(registry, logger)

	// Media
	classifier, err := media.NewClassifier()
	if err != nil {
		log.Fatalf("Failed to load media classification table: %v", err)
	}
	mediaOpts := media.Options{
		PageSize:           cfg.PageSize,
		MaxConcurrentScans: cfg.MaxConcurrentScans,
		Prober:             media.NewProber(classifier, cfg.FFProbePath, logger),
	}
	if cfg.WatchFolders {
		watcher, err := media.NewWatcher(folderIndex, logger)
		if err != nil {
			// The index still works without it, entries just age out by mtime
			logger.Warn("folder watcher unavailable", "error", err)
		} else {
			defer watcher.Close()
			mediaOpts.Watcher = watcher
		}
	}
	mediaService := media.NewMediaService(resolver, folderIndex, classifier, mediaOpts, logger)

	// Metadata, settings and OS integration
	patientService := patient.NewPatientService(registry, resolver, recordRepo, logger)
	settingsService := settings.NewSettingsService(settingsRepo, logger)
	dictService := settings.NewDictionaryService(dictRepo, logger)
	osLauncher := launcher.NewLauncher(logger)
	praatService := launcher.NewPraatService(osLauncher, settingsService, logger)

	// Register RPC channels
	rpc := handler.NewDispatcher(logger)
	handler.NewStorageHandler(registry, patientService, osLauncher, logger).Register(rpc)
	handler.NewPatientHandler(patientService, mediaService, osLauncher, logger).Register(rpc)
	handler.NewMediaHandler(mediaService, osLauncher, logger).Register(rpc)
	handler.NewSettingsHandler(settingsService, dictService, logger).Register(rpc)
	handler.NewPraatHandler(praatService, logger).Register(rpc)

	logger.Info("services initialized", "channels", len(rpc.Channels()))

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	rpc.Routes(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Order: CORS → RequestLogger → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         "127.0.0.1:" + cfg.Port,
		Handler:      h,
		ReadTimeout:  2 * time.Minute, // Recordings arrive in a single request
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
