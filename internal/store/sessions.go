// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/pwr-cms/internal/model"
)

const sessionColumns = `id, user_id, token_hash, expires_at, created_at`

func scanSession(row interface{ Scan(dest ...any) error }) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// CreateSessionParams holds the fields for CreateSession.
type CreateSessionParams struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateSession inserts a session row for an issued token.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (model.Session, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO sessions (user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+sessionColumns,
		arg.UserID, arg.TokenHash, arg.ExpiresAt, arg.CreatedAt,
	)
	return scanSession(row)
}

// GetSessionByTokenHash fetches a session by its token hash.
func (q *Queries) GetSessionByTokenHash(ctx context.Context, tokenHash string) (model.Session, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, tokenHash)
	return scanSession(row)
}

// DeleteSession revokes a session by token hash.
func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

// DeleteSessionsForUser revokes every session of a user.
func (q *Queries) DeleteSessionsForUser(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
// Returns the number of rows removed.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
