// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/pwr-cms/internal/cache"
	"github.com/olegiv/pwr-cms/internal/handler/api"
	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
	"github.com/olegiv/pwr-cms/internal/storage"
	"github.com/olegiv/pwr-cms/internal/store"
)

type routerFixture struct {
	router  http.Handler
	content *service.ContentService
	users   *service.UserService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "router_test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	disk, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}

	contentService := service.NewContentService(db)
	settingsService := service.NewSettingsService(db, c, time.Minute)
	mediaService := service.NewMediaService(db, disk, "/uploads", 1<<20)
	userService := service.NewUserService(db, time.Hour)

	apiHandler := api.NewHandler(contentService, settingsService, mediaService, userService, 10)
	router := newRouter(apiHandler, middleware.Authenticate(userService),
		middleware.NewRateLimiter(1000, 1000), t.TempDir())

	return &routerFixture{router: router, content: contentService, users: userService}
}

// loginAs creates an account with the given role and permissions and
// returns a live bearer token for it.
func (f *routerFixture) loginAs(t *testing.T, email, role string, permissions []string) string {
	t.Helper()
	ctx := context.Background()

	_, err := f.users.Create(ctx, service.CreateUserInput{
		Email:       email,
		Username:    strings.SplitN(email, "@", 2)[0],
		Password:    "password-123",
		Role:        role,
		Permissions: permissions,
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}

	_, token, err := f.users.Login(ctx, email, "password-123")
	if err != nil {
		t.Fatalf("logging in %s: %v", email, err)
	}
	return token
}

func (f *routerFixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestMediaReadsRequireSession(t *testing.T) {
	f := newRouterFixture(t)

	// Without a token every media read is rejected before route logic
	for _, target := range []string{
		"/api/v1/media",
		"/api/v1/media/search/logo",
		"/api/v1/media/1",
	} {
		if w := f.do(http.MethodGet, target, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", target, w.Code)
		}
	}

	// Any authenticated user may read media, no permission needed
	token := f.loginAs(t, "viewer@example.com", model.RoleEditor, nil)
	if w := f.do(http.MethodGet, "/api/v1/media", token, ""); w.Code != http.StatusOK {
		t.Errorf("GET /media with token: status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	// Content and settings reads stay public
	for _, target := range []string{"/api/v1/content", "/api/v1/settings"} {
		if w := f.do(http.MethodGet, target, "", ""); w.Code != http.StatusOK {
			t.Errorf("GET %s without token: status = %d, want 200", target, w.Code)
		}
	}
}

func TestContentDeleteIsRoleGated(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	block, err := f.content.Create(ctx, service.CreateBlockInput{
		Section:  model.SectionHero,
		Type:     model.BlockTypeText,
		Position: 1,
		Payload:  json.RawMessage(`{"title":"Welcome"}`),
	}, 1)
	if err != nil {
		t.Fatalf("creating block: %v", err)
	}

	// An admin holding no permissions at all may still hard-delete
	adminToken := f.loginAs(t, "admin@example.com", model.RoleAdmin, nil)
	target := fmt.Sprintf("/api/v1/content/%d", block.ID)
	if w := f.do(http.MethodDelete, target, adminToken, ""); w.Code != http.StatusOK {
		t.Errorf("admin delete: status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	// An editor with manage_content may write but never hard-delete
	block, err = f.content.Create(ctx, service.CreateBlockInput{
		Section:  model.SectionHero,
		Type:     model.BlockTypeText,
		Position: 2,
		Payload:  json.RawMessage(`{"title":"Second"}`),
	}, 1)
	if err != nil {
		t.Fatalf("creating block: %v", err)
	}
	editorToken := f.loginAs(t, "editor@example.com", model.RoleEditor,
		[]string{model.PermissionManageContent})
	target = fmt.Sprintf("/api/v1/content/%d", block.ID)
	if w := f.do(http.MethodDelete, target, editorToken, ""); w.Code != http.StatusForbidden {
		t.Errorf("editor delete: status = %d, want 403", w.Code)
	}
}

func TestUserDeleteIsRoleGated(t *testing.T) {
	f := newRouterFixture(t)

	adminToken := f.loginAs(t, "admin@example.com", model.RoleAdmin, nil)

	target, err := f.users.Create(context.Background(), service.CreateUserInput{
		Email:    "target@example.com",
		Username: "target",
		Password: "password-123",
		Role:     model.RoleEditor,
	})
	if err != nil {
		t.Fatalf("creating target user: %v", err)
	}

	// Listing users still needs manage_users
	if w := f.do(http.MethodGet, "/api/v1/users", adminToken, ""); w.Code != http.StatusForbidden {
		t.Errorf("list users without manage_users: status = %d, want 403", w.Code)
	}

	// Deleting a user is gated on the admin role alone
	path := fmt.Sprintf("/api/v1/users/%d", target.ID)
	if w := f.do(http.MethodDelete, path, adminToken, ""); w.Code != http.StatusOK {
		t.Errorf("admin delete user: status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
}
