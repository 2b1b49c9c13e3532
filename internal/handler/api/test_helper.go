// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pwr-cms/internal/cache"
	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
	"github.com/olegiv/pwr-cms/internal/storage"
	"github.com/olegiv/pwr-cms/internal/store"
)

// testDB creates a temporary migrated test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "cms-api-test-*.db")
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

// testSetup builds a full handler over a fresh database and upload dir.
func testSetup(t *testing.T) (*Handler, *sql.DB) {
	t.Helper()

	db := testDB(t)
	if err := store.SeedDefaultSettings(context.Background(), store.New(db)); err != nil {
		t.Fatalf("SeedDefaultSettings: %v", err)
	}

	disk, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { c.Close() })

	h := NewHandler(
		service.NewContentService(db),
		service.NewSettingsService(db, c, time.Minute),
		service.NewMediaService(db, disk, "/uploads", 1<<20),
		service.NewUserService(db, time.Hour),
		10,
	)
	return h, db
}

// createAPIUser registers an account directly through the service layer.
func createAPIUser(t *testing.T, h *Handler, email, role string, perms []string) model.User {
	t.Helper()

	user, err := h.users.Create(context.Background(), service.CreateUserInput{
		Email:       email,
		Username:    "tester",
		Password:    "password-123",
		Role:        role,
		Permissions: perms,
	})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates an HTTP request with a JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// asUser injects an authenticated user into the request context.
func asUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

// executeHandler runs a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// envelope mirrors Response with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

// decodeEnvelope unmarshals the response envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshaling envelope: %v (body: %s)", err, w.Body.String())
	}
	return env
}

// decodeData unmarshals the envelope's data field into T.
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshaling data: %v (data: %s)", err, string(env.Data))
	}
	return data
}

// pngBytes encodes a small PNG for upload tests.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(4 * x), G: uint8(5 * y), B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// newUploadRequest builds a multipart upload request with the given files.
func newUploadRequest(t *testing.T, files map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
