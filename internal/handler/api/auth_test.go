// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/olegiv/pwr-cms/internal/model"
)

func TestLogin(t *testing.T) {
	h, _ := testSetup(t)
	createAPIUser(t, h, "editor@example.com", model.RoleEditor,
		[]string{model.PermissionManageContent})

	req := newJSONRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"editor@example.com","password":"password-123"}`, nil)
	w := executeHandler(t, h.Login, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", w.Code, w.Body.String())
	}

	resp := decodeData[struct {
		Token string      `json:"token"`
		User  profileBody `json:"user"`
	}](t, w)
	if resp.Token == "" {
		t.Error("token missing from login response")
	}
	if resp.User.Email != "editor@example.com" {
		t.Errorf("email = %s", resp.User.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := testSetup(t)
	createAPIUser(t, h, "editor@example.com", model.RoleEditor, nil)

	req := newJSONRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"editor@example.com","password":"wrong"}`, nil)
	w := executeHandler(t, h.Login, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "Invalid credentials" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestLogout(t *testing.T) {
	h, _ := testSetup(t)
	createAPIUser(t, h, "e@example.com", model.RoleEditor, nil)

	loginReq := newJSONRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"e@example.com","password":"password-123"}`, nil)
	w := executeHandler(t, h.Login, loginReq)
	resp := decodeData[struct {
		Token string `json:"token"`
	}](t, w)

	req := newJSONRequest(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	if w = executeHandler(t, h.Logout, req); w.Code != http.StatusOK {
		t.Errorf("logout status = %d", w.Code)
	}

	// Without a bearer header there is nothing to revoke
	req = newJSONRequest(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	if w = executeHandler(t, h.Logout, req); w.Code != http.StatusUnauthorized {
		t.Errorf("logout without token status = %d, want 401", w.Code)
	}
}

func TestMe(t *testing.T) {
	h, _ := testSetup(t)
	user := createAPIUser(t, h, "me@example.com", model.RoleAdmin,
		[]string{model.PermissionManageUsers})

	w := executeHandler(t, h.Me, asUser(newGetRequest(t, "/api/v1/auth/me", nil), user))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	profile := decodeData[profileBody](t, w)
	if profile.Email != "me@example.com" || profile.Role != model.RoleAdmin {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if len(profile.Permissions) != 1 || profile.Permissions[0] != model.PermissionManageUsers {
		t.Errorf("permissions = %v", profile.Permissions)
	}

	// No password material in the response
	if body := w.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "hash") {
		t.Errorf("profile leaks password material: %s", body)
	}
}

func TestUpdateMe(t *testing.T) {
	h, _ := testSetup(t)
	user := createAPIUser(t, h, "me@example.com", model.RoleEditor,
		[]string{model.PermissionManageContent})

	req := asUser(newJSONRequest(t, http.MethodPut, "/api/v1/auth/me",
		`{"username":"renamed","email":"renamed@example.com"}`, nil), user)
	w := executeHandler(t, h.UpdateMe, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", w.Code, w.Body.String())
	}
	profile := decodeData[profileBody](t, w)
	if profile.Username != "renamed" || profile.Email != "renamed@example.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.Role != model.RoleEditor {
		t.Errorf("role = %s, profile update must not touch it", profile.Role)
	}

	// Another account's email is refused
	createAPIUser(t, h, "taken@example.com", model.RoleEditor, nil)
	req = asUser(newJSONRequest(t, http.MethodPut, "/api/v1/auth/me",
		`{"email":"taken@example.com"}`, nil), user)
	if w = executeHandler(t, h.UpdateMe, req); w.Code != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	h, _ := testSetup(t)
	user := createAPIUser(t, h, "cp@example.com", model.RoleEditor, nil)

	req := asUser(newJSONRequest(t, http.MethodPut, "/api/v1/auth/password",
		`{"current_password":"password-123","new_password":"brand-new-pass"}`, nil), user)
	if w := executeHandler(t, h.ChangePassword, req); w.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", w.Code, w.Body.String())
	}

	// Old password no longer works
	loginReq := newJSONRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"cp@example.com","password":"password-123"}`, nil)
	if w := executeHandler(t, h.Login, loginReq); w.Code != http.StatusUnauthorized {
		t.Errorf("old password login status = %d, want 401", w.Code)
	}

	loginReq = newJSONRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"cp@example.com","password":"brand-new-pass"}`, nil)
	if w := executeHandler(t, h.Login, loginReq); w.Code != http.StatusOK {
		t.Errorf("new password login status = %d, want 200", w.Code)
	}
}
