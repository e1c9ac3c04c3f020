// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"folio-go/internal/cache"
	"folio-go/internal/config"
	"folio-go/internal/content"
	"folio-go/internal/handler/api"
	"folio-go/internal/logging"
	"folio-go/internal/middleware"
	"folio-go/internal/model"
	"folio-go/internal/scheduler"
	"folio-go/internal/service"
	"folio-go/internal/store"
	"folio-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	createToken := flag.String("create-token", "", "Create an API token with the given name and exit")
	tokenPerms := flag.String("token-permissions", "", "Comma-separated permissions for -create-token (default: all)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "folio - portfolio content backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DB_PATH          SQLite database path (default: ./data/folio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_UPLOADS_DIR      Upload storage directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_REDIS_URL        Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("folio %s\n", buildInfo())
		os.Exit(0)
	}

	if *createToken != "" {
		if err := runCreateToken(*createToken, *tokenPerms); err != nil {
			slog.Error("token creation failed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// runCreateToken mints a bearer token and prints it once. The raw value is
// not stored, only its hash.
func runCreateToken(name, permsCSV string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	perms := model.AllPermissions()
	if permsCSV != "" {
		perms = perms[:0]
		for _, p := range strings.Split(permsCSV, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !model.IsValidPermission(p) {
				return fmt.Errorf("unknown permission %q", p)
			}
			perms = append(perms, p)
		}
	}

	raw, prefix, err := model.GenerateToken()
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	now := time.Now()
	token, err := store.New(db).CreateAPIToken(context.Background(), store.CreateAPITokenParams{
		Name:        name,
		TokenHash:   model.HashToken(raw),
		TokenPrefix: prefix,
		Permissions: model.PermissionsToJSON(perms),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	_, _ = fmt.Printf("Token %q created (id %d, permissions %s)\n", token.Name, token.ID, token.Permissions)
	_, _ = fmt.Printf("Bearer token (shown once, store it safely):\n\n  %s\n", raw)
	return nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := buildInfo()

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting folio",
		"version", versionInfo.Version,
		"commit", versionInfo.GitCommit,
		"env", cfg.Env)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	contentCache, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := contentCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("using redis cache", "prefix", cfg.CachePrefix)
	} else {
		slog.Info("using in-memory cache", "max_size", cfg.CacheMaxSize)
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	contentSvc := content.NewService(db, contentCache, logger)
	mediaSvc := service.NewMediaService(db, cfg.UploadsDir, logger)
	apiHandler := api.NewHandler(db, contentSvc, mediaSvc, logger)

	sched := scheduler.New(db, mediaSvc, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	r := buildRouter(cfg, db, apiHandler)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildRouter wires all API routes with their auth, permission, and rate
// limit middleware.
func buildRouter(cfg *config.Config, db *sql.DB, h *api.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5)) // Gzip compression with level 5
	r.Use(chimw.Timeout(time.Duration(cfg.RequestTimeout) * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	globalLimiter := middleware.NewGlobalRateLimiter(cfg.GlobalRateRPS, cfg.GlobalRateBurst)
	r.Use(globalLimiter.Middleware())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)

		// Public reads
		r.Get("/content/{page}", h.GetContent)
		r.Get("/comments", h.ListComments)
		r.Post("/messages", h.CreateMessage)

		// Optionally authenticated: tokens see drafts
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalTokenAuth(db))
			r.Get("/projects", h.ListProjects)
			r.Get("/projects/{id}", h.GetProject)
		})

		// Comment writes carry their own permissions
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(db))
			r.Use(middleware.TokenRateLimit(cfg.WriteRateRPS, cfg.WriteRateBurst))
			r.With(middleware.RequirePermission(model.PermissionWriteComments)).
				Post("/comments", h.CreateComment)
			r.With(middleware.RequirePermission(model.PermissionDeleteComments)).
				Delete("/comments/{id}", h.DeleteComment)
		})

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(db))
			r.Use(middleware.RequirePermission(model.PermissionAdminDashboard))
			r.Use(middleware.TokenRateLimit(cfg.WriteRateRPS, cfg.WriteRateBurst))

			r.Put("/content/{page}", h.ReplaceContent)
			r.Patch("/content/{page}/field", h.PatchContentField)
			r.Get("/content/{page}/export", h.ExportContent)
			r.Post("/content/{page}/import", h.ImportContent)

			r.Get("/messages", h.ListMessages)
			r.Post("/messages/{id}/read", h.MarkMessageRead)
			r.Delete("/messages/{id}", h.DeleteMessage)

			r.Post("/projects", h.CreateProject)
			r.Put("/projects/{id}", h.UpdateProject)
			r.Delete("/projects/{id}", h.DeleteProject)

			r.Post("/uploads/image", h.UploadImage)
			r.Post("/uploads/resume", h.UploadResume)
			r.Get("/uploads/usage", h.StorageUsage)
		})
	})

	// Uploaded media is served straight from disk
	uploadsFS := http.FileServer(http.Dir(cfg.UploadsDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadsFS))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Resource not found", "")
	})

	return r
}
