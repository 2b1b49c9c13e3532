// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// errorBody is the JSON error envelope shared with the API handlers.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response in the API envelope.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Message: message})
}

// extractBearerToken pulls the raw token out of the Authorization header.
// Returns an empty string when the header is missing or malformed.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate creates middleware that resolves the bearer token to a user
// and stores it in the request context. Requests without a valid token get
// 401 before any role or permission gate runs.
func Authenticate(users *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "Authentication required. Use: Bearer <token>")
				return
			}

			user, err := users.Authenticate(r.Context(), token)
			if err != nil {
				if apperr.IsKind(err, apperr.KindUnauthenticated) {
					WriteError(w, http.StatusUnauthorized, apperr.MessageOf(err))
					return
				}
				slog.Error("authenticating request failed", "error", err)
				WriteError(w, http.StatusInternalServerError, apperr.MessageOf(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the authenticated user's ID from context, or 0 if absent.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// RequireRole creates middleware that allows only users holding one of the
// given roles. Roles are not hierarchical and do not grant permissions.
// Must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !user.HasAnyRole(roles...) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_roles", roles,
				)
				WriteError(w, http.StatusForbidden, "Insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission creates middleware that allows only users granted the
// given permission. The user's role is not consulted. Must run after
// Authenticate.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !user.HasPermission(permission) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_permission", permission,
				)
				WriteError(w, http.StatusForbidden, "Missing permission: "+permission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
