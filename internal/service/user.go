// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/auth"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/store"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// UserService manages accounts and bearer sessions.
type UserService struct {
	queries    *store.Queries
	sessionTTL time.Duration
}

// NewUserService creates a new user service.
func NewUserService(db *sql.DB, sessionTTL time.Duration) *UserService {
	return &UserService{
		queries:    store.New(db),
		sessionTTL: sessionTTL,
	}
}

// Login verifies credentials and issues a bearer token. The raw token is
// returned once; only its hash is stored.
func (s *UserService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.User{}, "", apperr.Validation("Email and password are required")
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, "", apperr.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return model.User{}, "", apperr.Internal("fetching user", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return model.User{}, "", apperr.Unauthenticated("Invalid credentials")
	}
	if !user.IsActive {
		return model.User{}, "", apperr.Unauthenticated("Account is deactivated")
	}

	// Transparent parameter upgrade on successful login.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			_ = s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				ID:           user.ID,
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
			})
		}
	}

	token, err := model.GenerateSessionToken()
	if err != nil {
		return model.User{}, "", apperr.Internal("generating session token", err)
	}

	now := time.Now()
	_, err = s.queries.CreateSession(ctx, store.CreateSessionParams{
		UserID:    user.ID,
		TokenHash: model.HashSessionToken(token),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return model.User{}, "", apperr.Internal("creating session", err)
	}

	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("stamping last login failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = sql.NullTime{Time: now, Valid: true}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Logout revokes the session behind the raw bearer token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if err := s.queries.DeleteSession(ctx, model.HashSessionToken(token)); err != nil {
		return apperr.Internal("revoking session", err)
	}
	return nil
}

// Authenticate resolves a raw bearer token to its active user. Expired
// sessions are revoked on sight.
func (s *UserService) Authenticate(ctx context.Context, token string) (model.User, error) {
	session, err := s.queries.GetSessionByTokenHash(ctx, model.HashSessionToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.Unauthenticated("Invalid or expired token")
	}
	if err != nil {
		return model.User{}, apperr.Internal("fetching session", err)
	}

	if session.IsExpired() {
		_ = s.queries.DeleteSession(ctx, session.TokenHash)
		return model.User{}, apperr.Unauthenticated("Invalid or expired token")
	}

	user, err := s.queries.GetUserByID(ctx, session.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.Unauthenticated("Invalid or expired token")
	}
	if err != nil {
		return model.User{}, apperr.Internal("fetching user", err)
	}
	if !user.IsActive {
		return model.User{}, apperr.Unauthenticated("Account is deactivated")
	}

	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return model.User{}, apperr.Internal("fetching user", err)
	}
	return user, nil
}

// List returns one page of users, newest first, plus the total.
func (s *UserService) List(ctx context.Context, limit, offset int64) ([]model.User, int64, error) {
	users, err := s.queries.ListUsers(ctx, store.ListUsersParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, apperr.Internal("listing users", err)
	}

	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return nil, 0, apperr.Internal("counting users", err)
	}
	return users, total, nil
}

// CreateUserInput holds the fields accepted when creating an account.
type CreateUserInput struct {
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Create validates and stores a new account.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, apperr.Validation("A valid email is required")
	}
	if strings.TrimSpace(input.Username) == "" {
		return model.User{}, apperr.Validation("Username is required")
	}
	if len(input.Password) < MinPasswordLength {
		return model.User{}, apperr.Newf(apperr.KindValidation, "Password must be at least %d characters", MinPasswordLength)
	}
	if !model.IsValidRole(input.Role) {
		return model.User{}, apperr.Newf(apperr.KindValidation, "Invalid role: %s", input.Role)
	}
	if bad := model.ValidatePermissions(input.Permissions); bad != "" {
		return model.User{}, apperr.Newf(apperr.KindValidation, "Unknown permission: %s", bad)
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, apperr.Conflict("Email is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperr.Internal("checking email", err)
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return model.User{}, apperr.Internal("hashing password", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Username:     input.Username,
		PasswordHash: passwordHash,
		Role:         input.Role,
		Permissions:  model.PermissionsToJSON(input.Permissions),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, apperr.Internal("creating user", err)
	}

	slog.Info("user created", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

// UpdateUserInput holds the partial account update fields.
type UpdateUserInput struct {
	Username    *string   `json:"username"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	IsActive    *bool     `json:"is_active"`
}

// Update applies a partial update to an account.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (model.User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if input.Username != nil {
		if strings.TrimSpace(*input.Username) == "" {
			return model.User{}, apperr.Validation("Username must not be empty")
		}
		current.Username = *input.Username
	}
	if input.Role != nil {
		if !model.IsValidRole(*input.Role) {
			return model.User{}, apperr.Newf(apperr.KindValidation, "Invalid role: %s", *input.Role)
		}
		current.Role = *input.Role
	}
	if input.Permissions != nil {
		if bad := model.ValidatePermissions(*input.Permissions); bad != "" {
			return model.User{}, apperr.Newf(apperr.KindValidation, "Unknown permission: %s", bad)
		}
		current.Permissions = model.PermissionsToJSON(*input.Permissions)
	}
	if input.IsActive != nil {
		current.IsActive = *input.IsActive
	}

	user, err := s.queries.UpdateUser(ctx, store.UpdateUserParams{
		ID:          id,
		Username:    current.Username,
		Role:        current.Role,
		Permissions: current.Permissions,
		IsActive:    current.IsActive,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return model.User{}, apperr.Internal("updating user", err)
	}

	// Deactivation revokes open sessions immediately.
	if input.IsActive != nil && !*input.IsActive {
		if err := s.queries.DeleteSessionsForUser(ctx, id); err != nil {
			slog.Warn("revoking sessions of deactivated user failed", "user_id", id, "error", err)
		}
	}

	return user, nil
}

// UpdateProfileInput holds the self-service profile fields.
type UpdateProfileInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UpdateProfile lets a user change their own username and email. Role,
// permissions, and active state stay untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (model.User, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if input.Username != nil {
		if strings.TrimSpace(*input.Username) == "" {
			return model.User{}, apperr.Validation("Username must not be empty")
		}
		current.Username = *input.Username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return model.User{}, apperr.Validation("A valid email is required")
		}
		if email != current.Email {
			if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
				return model.User{}, apperr.Conflict("Email is already registered")
			} else if !errors.Is(err, sql.ErrNoRows) {
				return model.User{}, apperr.Internal("checking email", err)
			}
		}
		current.Email = email
	}

	user, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		ID:        userID,
		Email:     current.Email,
		Username:  current.Username,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return model.User{}, apperr.Internal("updating profile", err)
	}

	slog.Info("profile updated", "user_id", userID)
	return user, nil
}

// Delete removes an account. Its sessions cascade with it.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.queries.DeleteUser(ctx, id); err != nil {
		return apperr.Internal("deleting user", err)
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}

// ChangePassword verifies the current password and replaces it. All other
// sessions of the user stay valid.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < MinPasswordLength {
		return apperr.Newf(apperr.KindValidation, "Password must be at least %d characters", MinPasswordLength)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil || !ok {
		return apperr.Validation("Current password is incorrect")
	}

	newHash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Internal("hashing password", err)
	}

	err = s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:           userID,
		PasswordHash: newHash,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		return apperr.Internal("updating password", err)
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}
