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

const mediaColumns = `id, name, filename, mime_type, size, url, uploaded_by, width, height, format, alt, tags, is_active, created_at, updated_at`

func scanMedia(row interface{ Scan(dest ...any) error }) (model.Media, error) {
	var m model.Media
	var tags string
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Filename,
		&m.MimeType,
		&m.Size,
		&m.URL,
		&m.UploadedBy,
		&m.Width,
		&m.Height,
		&m.Format,
		&m.Alt,
		&tags,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	m.Tags = json.RawMessage(tags)
	return m, err
}

func collectMedia(rows *sql.Rows) ([]model.Media, error) {
	defer rows.Close()

	items := []model.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CreateMediaParams holds the fields for CreateMedia.
type CreateMediaParams struct {
	Name       string
	Filename   string
	MimeType   string
	Size       int64
	URL        string
	UploadedBy sql.NullInt64
	Width      sql.NullInt64
	Height     sql.NullInt64
	Format     string
	Alt        string
	Tags       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateMedia inserts a media record and returns the stored row.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO media (name, filename, mime_type, size, url, uploaded_by, width, height, format, alt, tags, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		RETURNING `+mediaColumns,
		arg.Name, arg.Filename, arg.MimeType, arg.Size, arg.URL, arg.UploadedBy,
		arg.Width, arg.Height, arg.Format, arg.Alt, string(arg.Tags), arg.CreatedAt, arg.UpdatedAt,
	)
	return scanMedia(row)
}

// GetMediaByID fetches a media record by primary key.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

// ListMediaParams holds pagination for ListMedia.
type ListMediaParams struct {
	Limit  int64
	Offset int64
}

// ListMedia returns active media newest-first.
func (q *Queries) ListMedia(ctx context.Context, arg ListMediaParams) ([]model.Media, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE is_active = 1
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectMedia(rows)
}

// CountMedia returns the number of active media records.
func (q *Queries) CountMedia(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE is_active = 1`).Scan(&count)
	return count, err
}

// UpdateMediaParams holds the fields for UpdateMedia.
type UpdateMediaParams struct {
	ID        int64
	Name      string
	Alt       string
	Tags      json.RawMessage
	IsActive  bool
	UpdatedAt time.Time
}

// UpdateMedia updates catalog metadata and returns the stored row.
func (q *Queries) UpdateMedia(ctx context.Context, arg UpdateMediaParams) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE media
		SET name = ?, alt = ?, tags = ?, is_active = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+mediaColumns,
		arg.Name, arg.Alt, string(arg.Tags), arg.IsActive, arg.UpdatedAt, arg.ID,
	)
	return scanMedia(row)
}

// DeleteMedia removes a media record by primary key.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}

// SearchMedia matches active media whose name or tags contain term,
// case-insensitively.
func (q *Queries) SearchMedia(ctx context.Context, term string) ([]model.Media, error) {
	pattern := "%" + term + "%"
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE is_active = 1
		  AND (name LIKE ? COLLATE NOCASE OR tags LIKE ? COLLATE NOCASE)
		ORDER BY created_at DESC, id DESC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, err
	}
	return collectMedia(rows)
}

// ListInactiveMedia returns records marked inactive, oldest first, for the
// cleanup sweep.
func (q *Queries) ListInactiveMedia(ctx context.Context) ([]model.Media, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE is_active = 0
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collectMedia(rows)
}

// ListMediaFilenames returns every stored filename, active or not, for
// orphan-file reconciliation.
func (q *Queries) ListMediaFilenames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT filename FROM media`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
