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

const contentColumns = `id, section, type, position, is_active, payload, seo_title, seo_description, seo_keywords, last_modified, modified_by, created_at`

func scanContentBlock(row interface{ Scan(dest ...any) error }) (model.ContentBlock, error) {
	var b model.ContentBlock
	var payload string
	err := row.Scan(
		&b.ID,
		&b.Section,
		&b.Type,
		&b.Position,
		&b.IsActive,
		&payload,
		&b.SEOTitle,
		&b.SEODescription,
		&b.SEOKeywords,
		&b.LastModified,
		&b.ModifiedBy,
		&b.CreatedAt,
	)
	b.Payload = json.RawMessage(payload)
	return b, err
}

func collectContentBlocks(rows *sql.Rows) ([]model.ContentBlock, error) {
	defer rows.Close()

	blocks := []model.ContentBlock{}
	for rows.Next() {
		b, err := scanContentBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// CreateContentBlockParams holds the fields for CreateContentBlock.
type CreateContentBlockParams struct {
	Section        string
	Type           string
	Position       int
	IsActive       bool
	Payload        json.RawMessage
	SEOTitle       string
	SEODescription string
	SEOKeywords    string
	LastModified   time.Time
	ModifiedBy     sql.NullInt64
	CreatedAt      time.Time
}

// CreateContentBlock inserts a content block and returns the stored row.
func (q *Queries) CreateContentBlock(ctx context.Context, arg CreateContentBlockParams) (model.ContentBlock, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO content_blocks (section, type, position, is_active, payload, seo_title, seo_description, seo_keywords, last_modified, modified_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+contentColumns,
		arg.Section, arg.Type, arg.Position, arg.IsActive, string(arg.Payload),
		arg.SEOTitle, arg.SEODescription, arg.SEOKeywords, arg.LastModified, arg.ModifiedBy, arg.CreatedAt,
	)
	return scanContentBlock(row)
}

// GetContentBlockByID fetches a content block by primary key.
func (q *Queries) GetContentBlockByID(ctx context.Context, id int64) (model.ContentBlock, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content_blocks WHERE id = ?`, id)
	return scanContentBlock(row)
}

// ListActiveContentBlocksParams holds pagination for ListActiveContentBlocks.
type ListActiveContentBlocksParams struct {
	Limit  int64
	Offset int64
}

// ListActiveContentBlocks returns active blocks ordered by position, with
// id as the stable tiebreaker.
func (q *Queries) ListActiveContentBlocks(ctx context.Context, arg ListActiveContentBlocksParams) ([]model.ContentBlock, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM content_blocks
		WHERE is_active = 1
		ORDER BY position ASC, id ASC
		LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectContentBlocks(rows)
}

// CountActiveContentBlocks returns the number of active blocks.
func (q *Queries) CountActiveContentBlocks(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_blocks WHERE is_active = 1`).Scan(&count)
	return count, err
}

// ListContentBlocksBySection returns the active blocks of one section in
// position order.
func (q *Queries) ListContentBlocksBySection(ctx context.Context, section string) ([]model.ContentBlock, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM content_blocks
		WHERE section = ? AND is_active = 1
		ORDER BY position ASC, id ASC`,
		section,
	)
	if err != nil {
		return nil, err
	}
	return collectContentBlocks(rows)
}

// UpdateContentBlockParams holds the fields for UpdateContentBlock.
type UpdateContentBlockParams struct {
	ID             int64
	Section        string
	Type           string
	Position       int
	IsActive       bool
	Payload        json.RawMessage
	SEOTitle       string
	SEODescription string
	SEOKeywords    string
	LastModified   time.Time
	ModifiedBy     sql.NullInt64
}

// UpdateContentBlock replaces the mutable fields of a block and returns the
// stored row.
func (q *Queries) UpdateContentBlock(ctx context.Context, arg UpdateContentBlockParams) (model.ContentBlock, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE content_blocks
		SET section = ?, type = ?, position = ?, is_active = ?, payload = ?,
		    seo_title = ?, seo_description = ?, seo_keywords = ?,
		    last_modified = ?, modified_by = ?
		WHERE id = ?
		RETURNING `+contentColumns,
		arg.Section, arg.Type, arg.Position, arg.IsActive, string(arg.Payload),
		arg.SEOTitle, arg.SEODescription, arg.SEOKeywords,
		arg.LastModified, arg.ModifiedBy, arg.ID,
	)
	return scanContentBlock(row)
}

// UpdateContentBlockPositionParams holds the fields for UpdateContentBlockPosition.
type UpdateContentBlockPositionParams struct {
	ID           int64
	Position     int
	LastModified time.Time
	ModifiedBy   sql.NullInt64
}

// UpdateContentBlockPosition moves one block. Returns sql.ErrNoRows when the
// block does not exist so reorder transactions can fail whole.
func (q *Queries) UpdateContentBlockPosition(ctx context.Context, arg UpdateContentBlockPositionParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE content_blocks
		SET position = ?, last_modified = ?, modified_by = ?
		WHERE id = ?`,
		arg.Position, arg.LastModified, arg.ModifiedBy, arg.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteContentBlock removes a block by primary key.
func (q *Queries) DeleteContentBlock(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM content_blocks WHERE id = ?`, id)
	return err
}

// SearchContentBlocks matches active blocks whose payload title or
// description contains term, case-insensitively.
func (q *Queries) SearchContentBlocks(ctx context.Context, term string) ([]model.ContentBlock, error) {
	pattern := "%" + term + "%"
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM content_blocks
		WHERE is_active = 1
		  AND (json_extract(payload, '$.title') LIKE ? COLLATE NOCASE
		    OR json_extract(payload, '$.description') LIKE ? COLLATE NOCASE)
		ORDER BY position ASC, id ASC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, err
	}
	return collectContentBlocks(rows)
}

// ContentStatsRow is one section's block counts.
type ContentStatsRow struct {
	Section string `json:"section"`
	Total   int64  `json:"total"`
	Active  int64  `json:"active"`
}

// ContentStatsBySection returns per-section totals for all sections with at
// least one block.
func (q *Queries) ContentStatsBySection(ctx context.Context) ([]ContentStatsRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT section, COUNT(*), SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END)
		FROM content_blocks
		GROUP BY section`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []ContentStatsRow{}
	for rows.Next() {
		var s ContentStatsRow
		if err := rows.Scan(&s.Section, &s.Total, &s.Active); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
