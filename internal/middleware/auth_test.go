// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
	"github.com/olegiv/pwr-cms/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "cms-mw-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withUser(req *http.Request, user model.User) *http.Request {
	return req.WithContext(WithUser(req.Context(), user))
}

func TestAuthenticate(t *testing.T) {
	db := testDB(t)
	users := service.NewUserService(db, time.Hour)

	_, err := users.Create(context.Background(), service.CreateUserInput{
		Email:    "editor@example.com",
		Username: "editor",
		Password: "password-123",
		Role:     model.RoleEditor,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, token, err := users.Login(context.Background(), "editor@example.com", "password-123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var seen *model.User
	handler := Authenticate(users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer not-a-real-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/api/v1/content", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.Email != "editor@example.com" {
					t.Errorf("user not injected into context: %+v", seen)
				}
			}
		})
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	db := testDB(t)
	users := service.NewUserService(db, time.Hour)
	queries := store.New(db)

	user, err := users.Create(context.Background(), service.CreateUserInput{
		Email:    "x@example.com",
		Username: "x",
		Password: "password-123",
		Role:     model.RoleEditor,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	token, err := model.GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	_, err = queries.CreateSession(context.Background(), store.CreateSessionParams{
		UserID:    user.ID,
		TokenHash: model.HashSessionToken(token),
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	handler := Authenticate(users)(okHandler())
	req := httptest.NewRequest("GET", "/api/v1/content", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		user       *model.User
		wantStatus int
	}{
		{"admin allowed on admin route", []string{model.RoleAdmin}, &model.User{ID: 1, Role: model.RoleAdmin}, http.StatusOK},
		{"editor forbidden on admin route", []string{model.RoleAdmin}, &model.User{ID: 2, Role: model.RoleEditor}, http.StatusForbidden},
		{"editor allowed when listed", []string{model.RoleAdmin, model.RoleEditor}, &model.User{ID: 2, Role: model.RoleEditor}, http.StatusOK},
		{"no user gets 401 not 403", []string{model.RoleAdmin}, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.roles...)(okHandler())

			req := httptest.NewRequest("GET", "/api/v1/users", nil)
			if tt.user != nil {
				req = withUser(req, *tt.user)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	granted := model.User{
		ID:          1,
		Role:        model.RoleEditor,
		Permissions: model.PermissionsToJSON([]string{model.PermissionManageContent}),
	}
	// Admin role without the grant must still be refused
	adminWithoutGrant := model.User{
		ID:          2,
		Role:        model.RoleAdmin,
		Permissions: "[]",
	}

	tests := []struct {
		name       string
		permission string
		user       *model.User
		wantStatus int
	}{
		{"granted permission passes", model.PermissionManageContent, &granted, http.StatusOK},
		{"missing permission forbidden", model.PermissionManageSettings, &granted, http.StatusForbidden},
		{"role does not imply permission", model.PermissionManageContent, &adminWithoutGrant, http.StatusForbidden},
		{"no user gets 401 not 403", model.PermissionManageContent, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequirePermission(tt.permission)(okHandler())

			req := httptest.NewRequest("POST", "/api/v1/content", nil)
			if tt.user != nil {
				req = withUser(req, *tt.user)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := GetUserID(req); got != 0 {
		t.Errorf("GetUserID without user = %d, want 0", got)
	}

	req = withUser(req, model.User{ID: 42})
	if got := GetUserID(req); got != 42 {
		t.Errorf("GetUserID = %d, want 42", got)
	}
}
