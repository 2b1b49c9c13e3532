// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"CMS_DB_PATH" envDefault:"./data/cms.db"`
	ServerHost string `env:"CMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"CMS_ENV" envDefault:"development"`
	LogLevel   string `env:"CMS_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"CMS_UPLOADS_DIR" envDefault:"./uploads"`
	PublicURL  string `env:"CMS_PUBLIC_URL" envDefault:"/uploads"` // URL prefix served for uploaded files

	// Session configuration
	SessionTTL time.Duration `env:"CMS_SESSION_TTL" envDefault:"24h"`

	// Upload limits
	MaxUploadSize  int64 `env:"CMS_MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10 MiB per file
	MaxUploadFiles int   `env:"CMS_MAX_UPLOAD_FILES" envDefault:"10"`

	// Cache configuration
	RedisURL     string `env:"CMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"CMS_CACHE_PREFIX" envDefault:"cms:"`    // Redis key prefix
	CacheTTL     int    `env:"CMS_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"CMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Media cleanup sweep
	CleanupCron string `env:"CMS_CLEANUP_CRON" envDefault:"0 3 * * *"` // Daily at 03:00

	// Seeding configuration
	AdminEmail    string `env:"CMS_ADMIN_EMAIL" envDefault:"admin@preciouswasterefinery.com"`
	AdminPassword string `env:"CMS_ADMIN_PASSWORD"` // Required on first run to seed the admin account
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.SessionTTL < time.Minute {
		return nil, fmt.Errorf("CMS_SESSION_TTL must be at least 1m, got %s", cfg.SessionTTL)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("CMS_MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize)
	}
	if cfg.MaxUploadFiles < 1 {
		return nil, fmt.Errorf("CMS_MAX_UPLOAD_FILES must be at least 1, got %d", cfg.MaxUploadFiles)
	}

	return cfg, nil
}
