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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/pwr-cms/internal/cache"
	"github.com/olegiv/pwr-cms/internal/config"
	"github.com/olegiv/pwr-cms/internal/handler/api"
	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
	"github.com/olegiv/pwr-cms/internal/storage"
	"github.com/olegiv/pwr-cms/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "pwr-cms - Precious Waste Refinery CMS backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_DB_PATH           SQLite database path (default: ./data/cms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_UPLOADS_DIR       Media uploads directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_SESSION_TTL       Bearer session lifetime (default: 24h)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_ADMIN_PASSWORD    Admin password, required on first run\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_REDIS_URL         Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("pwr-cms %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Seed admin account and default settings (idempotent)
	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Cache backend: Redis when configured, in-process memory otherwise
	var settingsCache cache.Cache
	if cfg.UseRedisCache() {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		})
		if err != nil {
			slog.Warn("redis unavailable, falling back to memory cache", "error", err)
			settingsCache = cache.NewMemoryCache(cache.MemoryCacheOptions{
				DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
				MaxSize:         cfg.CacheMaxSize,
				CleanupInterval: time.Minute,
			})
		} else {
			settingsCache = redisCache
			slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
		}
	} else {
		settingsCache = cache.NewMemoryCache(cache.MemoryCacheOptions{
			DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
			MaxSize:         cfg.CacheMaxSize,
			CleanupInterval: time.Minute,
		})
		slog.Info("cache initialized", "backend", "memory")
	}
	defer func() {
		if err := settingsCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// Media storage
	disk, err := storage.NewDisk(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("initializing uploads directory: %w", err)
	}
	slog.Info("media storage initialized", "dir", disk.Root())

	// Services
	contentService := service.NewContentService(db)
	settingsService := service.NewSettingsService(db, settingsCache, time.Duration(cfg.CacheTTL)*time.Second)
	mediaService := service.NewMediaService(db, disk, cfg.PublicURL, cfg.MaxUploadSize)
	userService := service.NewUserService(db, cfg.SessionTTL)

	// Scheduled maintenance: media cleanup sweep plus expired-session purge
	queries := store.New(db)
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.CleanupCron, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if result, err := mediaService.Cleanup(sweepCtx); err != nil {
			slog.Error("media cleanup sweep failed", "error", err)
		} else {
			slog.Info("media cleanup sweep finished",
				"records_removed", result.RecordsRemoved,
				"files_removed", result.FilesRemoved,
				"orphans_removed", result.OrphansRemoved,
			)
		}

		if n, err := queries.DeleteExpiredSessions(sweepCtx, time.Now()); err != nil {
			slog.Error("expired session purge failed", "error", err)
		} else if n > 0 {
			slog.Info("expired sessions purged", "count", n)
		}
	}); err != nil {
		return fmt.Errorf("registering cleanup sweep: %w", err)
	}
	sched.Start()
	defer sched.Stop()
	slog.Info("cleanup sweep scheduled", "cron", cfg.CleanupCron)

	apiHandler := api.NewHandler(contentService, settingsService, mediaService, userService, cfg.MaxUploadFiles)
	authenticate := middleware.Authenticate(userService)
	loginRateLimiter := middleware.NewRateLimiter(0.5, 5)

	r := newRouter(apiHandler, authenticate, loginRateLimiter, cfg.UploadsDir)
	slog.Info("REST API v1 mounted at /api/v1")

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newRouter assembles the HTTP surface. Media reads sit behind
// authentication; content and settings reads stay public.
func newRouter(apiHandler *api.Handler, authenticate func(http.Handler) http.Handler, loginRateLimiter *middleware.RateLimiter, uploadsDir string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/status", apiHandler.Status)
		r.Get("/content", apiHandler.ListContent)
		r.Get("/content/search/{term}", apiHandler.SearchContent)
		r.Get("/content/{section}", apiHandler.GetContentBySection)
		r.Get("/settings", apiHandler.GetSettings)
		r.Get("/settings/{category}", apiHandler.GetSettingsByCategory)
		r.With(loginRateLimiter.Middleware()).Post("/auth/login", apiHandler.Login)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/auth/me", apiHandler.Me)
			r.Put("/auth/me", apiHandler.UpdateMe)
			r.Post("/auth/logout", apiHandler.Logout)
			r.Put("/auth/password", apiHandler.ChangePassword)

			// Media reads require a session but no permission
			r.Get("/media", apiHandler.ListMedia)
			r.Get("/media/search/{term}", apiHandler.SearchMedia)
			r.Get("/media/{id}", apiHandler.GetMedia)

			// Content writes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleEditor))
				r.Use(middleware.RequirePermission(model.PermissionManageContent))
				r.Post("/content", apiHandler.CreateContent)
				r.Put("/content/reorder", apiHandler.ReorderContent)
				r.Put("/content/{id}", apiHandler.UpdateContent)
			})
			// Hard deletes are role-only gates
			r.With(
				middleware.RequireRole(model.RoleAdmin),
			).Delete("/content/{id}", apiHandler.DeleteContent)
			r.With(
				middleware.RequirePermission(model.PermissionViewAnalytics),
			).Get("/content/stats", apiHandler.ContentStats)

			// Settings writes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Use(middleware.RequirePermission(model.PermissionManageSettings))
				r.Put("/settings/reset/{category}", apiHandler.ResetSettings)
				r.Put("/settings/{category}", apiHandler.UpdateSettings)
			})

			// Media writes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionManageMedia))
				r.Post("/media/upload", apiHandler.UploadMedia)
				r.Post("/media/bulk-tag", apiHandler.BulkTagMedia)
				r.Put("/media/{id}", apiHandler.UpdateMedia)
				r.Delete("/media/{id}", apiHandler.DeleteMedia)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Post("/media/bulk-delete", apiHandler.BulkDeleteMedia)
				r.Post("/media/cleanup", apiHandler.CleanupMedia)
			})

			// User management
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Use(middleware.RequirePermission(model.PermissionManageUsers))
				r.Get("/users", apiHandler.ListUsers)
				r.Post("/users", apiHandler.CreateUser)
				r.Get("/users/{id}", apiHandler.GetUser)
				r.Put("/users/{id}", apiHandler.UpdateUser)
			})
			r.With(
				middleware.RequireRole(model.RoleAdmin),
			).Delete("/users/{id}", apiHandler.DeleteUser)
		})
	})

	// Serve uploaded media files
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir)))
	r.Handle("/uploads/*", uploadsHandler)

	return r
}
