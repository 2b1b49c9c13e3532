// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/olegiv/pwr-cms/internal/model"
)

const settingColumns = `id, key, value, category, description, last_modified, modified_by`

func scanSetting(row interface{ Scan(dest ...any) error }) (model.Setting, error) {
	var s model.Setting
	var value string
	err := row.Scan(&s.ID, &s.Key, &value, &s.Category, &s.Description, &s.LastModified, &s.ModifiedBy)
	s.Value = json.RawMessage(value)
	return s, err
}

func collectSettings(rows *sql.Rows) ([]model.Setting, error) {
	defer rows.Close()

	settings := []model.Setting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// ListSettings returns every setting.
func (q *Queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+settingColumns+` FROM settings ORDER BY category, key`)
	if err != nil {
		return nil, err
	}
	return collectSettings(rows)
}

// ListSettingsByCategory returns the settings of one category.
func (q *Queries) ListSettingsByCategory(ctx context.Context, category string) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+settingColumns+` FROM settings WHERE category = ? ORDER BY key`,
		category,
	)
	if err != nil {
		return nil, err
	}
	return collectSettings(rows)
}

// UpsertSettingParams holds the fields for UpsertSetting.
type UpsertSettingParams struct {
	Key          string
	Value        json.RawMessage
	Category     string
	Description  string
	LastModified time.Time
	ModifiedBy   sql.NullInt64
}

// UpsertSetting inserts or replaces a setting value. The key is unique
// across categories, so an update never moves a key between categories.
func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) (model.Setting, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO settings (key, value, category, description, last_modified, modified_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			last_modified = excluded.last_modified,
			modified_by = excluded.modified_by
		RETURNING `+settingColumns,
		arg.Key, string(arg.Value), arg.Category, arg.Description, arg.LastModified, arg.ModifiedBy,
	)
	return scanSetting(row)
}

// InsertSettingIfAbsent inserts a setting only when the key does not exist
// yet. Safe to run concurrently; existing values are never overwritten.
func (q *Queries) InsertSettingIfAbsent(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, category, description, last_modified, modified_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING`,
		arg.Key, string(arg.Value), arg.Category, arg.Description, arg.LastModified, arg.ModifiedBy,
	)
	return err
}
