// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/cache"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/store"
)

const settingsCacheKey = "settings:all"

// SettingsService manages category-scoped site settings.
type SettingsService struct {
	queries  *store.Queries
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewSettingsService creates a new settings service. The cache fronts the
// grouped read path and is invalidated on every write.
func NewSettingsService(db *sql.DB, c cache.Cache, cacheTTL time.Duration) *SettingsService {
	return &SettingsService{
		queries:  store.New(db),
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// GroupedSettings maps category to key to value.
type GroupedSettings map[string]map[string]json.RawMessage

// GetAll returns every setting grouped by category.
func (s *SettingsService) GetAll(ctx context.Context) (GroupedSettings, error) {
	if cached, err := s.cache.Get(ctx, settingsCacheKey); err == nil {
		var grouped GroupedSettings
		if err := json.Unmarshal(cached, &grouped); err == nil {
			return grouped, nil
		}
	}

	settings, err := s.queries.ListSettings(ctx)
	if err != nil {
		return nil, apperr.Internal("listing settings", err)
	}

	grouped := GroupedSettings{}
	for _, setting := range settings {
		if grouped[setting.Category] == nil {
			grouped[setting.Category] = map[string]json.RawMessage{}
		}
		grouped[setting.Category][setting.Key] = setting.Value
	}

	if data, err := json.Marshal(grouped); err == nil {
		if err := s.cache.Set(ctx, settingsCacheKey, data, s.cacheTTL); err != nil {
			slog.Warn("caching settings failed", "error", err)
		}
	}

	return grouped, nil
}

// GetByCategory returns the key/value map of one category. A category with
// no stored settings is NotFound.
func (s *SettingsService) GetByCategory(ctx context.Context, category string) (map[string]json.RawMessage, error) {
	settings, err := s.queries.ListSettingsByCategory(ctx, category)
	if err != nil {
		return nil, apperr.Internal("listing category settings", err)
	}
	if len(settings) == 0 {
		return nil, apperr.Newf(apperr.KindNotFound, "No settings found for category: %s", category)
	}

	values := map[string]json.RawMessage{}
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	return values, nil
}

// Update upserts the given keys in one category and restamps their
// metadata. Keys are written concurrently and independently; the first
// error is reported after all keys settle, without rolling back the rest.
func (s *SettingsService) Update(ctx context.Context, category string, updates map[string]json.RawMessage, userID int64) (map[string]json.RawMessage, error) {
	if !model.IsValidSettingCategory(category) {
		return nil, apperr.Validation("Invalid settings category")
	}
	if len(updates) == 0 {
		return nil, apperr.Validation("No settings provided")
	}

	now := time.Now()
	modifiedBy := sql.NullInt64{Int64: userID, Valid: true}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for key, value := range updates {
		wg.Add(1)
		go func(key string, value json.RawMessage) {
			defer wg.Done()
			_, err := s.queries.UpsertSetting(ctx, store.UpsertSettingParams{
				Key:          key,
				Value:        value,
				Category:     category,
				LastModified: now,
				ModifiedBy:   modifiedBy,
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(key, value)
	}
	wg.Wait()

	s.invalidate(ctx)

	if firstErr != nil {
		return nil, apperr.Internal("updating settings", firstErr)
	}

	slog.Info("settings updated", "category", category, "keys", len(updates))
	return s.GetByCategory(ctx, category)
}

// ResetCategory restores the compiled defaults of one category.
func (s *SettingsService) ResetCategory(ctx context.Context, category string, userID int64) (map[string]json.RawMessage, error) {
	defaults := model.DefaultSettings(category)
	if defaults == nil {
		return nil, apperr.Validation("Invalid settings category")
	}

	now := time.Now()
	modifiedBy := sql.NullInt64{Int64: userID, Valid: true}

	for key, value := range defaults {
		_, err := s.queries.UpsertSetting(ctx, store.UpsertSettingParams{
			Key:          key,
			Value:        value,
			Category:     category,
			LastModified: now,
			ModifiedBy:   modifiedBy,
		})
		if err != nil {
			s.invalidate(ctx)
			return nil, apperr.Internal("resetting settings", err)
		}
	}

	s.invalidate(ctx)
	slog.Info("settings reset to defaults", "category", category)
	return defaults, nil
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		slog.Warn("invalidating settings cache failed", "error", err)
	}
}
