// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/pwr-cms/internal/model"
)

func TestCreateUserEndpoint(t *testing.T) {
	h, _ := testSetup(t)
	admin := createAPIUser(t, h, "admin@example.com", model.RoleAdmin,
		[]string{model.PermissionManageUsers})

	body := `{"email":"new@example.com","username":"newbie","password":"password-123","role":"editor","permissions":["manage_content"]}`
	req := asUser(newJSONRequest(t, http.MethodPost, "/api/v1/users", body, nil), admin)
	w := executeHandler(t, h.CreateUser, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d (body: %s)", w.Code, w.Body.String())
	}
	profile := decodeData[profileBody](t, w)
	if profile.Email != "new@example.com" || profile.Role != model.RoleEditor {
		t.Errorf("unexpected profile: %+v", profile)
	}

	// Duplicate email conflicts
	req = asUser(newJSONRequest(t, http.MethodPost, "/api/v1/users", body, nil), admin)
	if w = executeHandler(t, h.CreateUser, req); w.Code != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", w.Code)
	}

	// Unknown permission rejects
	bad := `{"email":"x@example.com","username":"x","password":"password-123","role":"editor","permissions":["rule_the_world"]}`
	req = asUser(newJSONRequest(t, http.MethodPost, "/api/v1/users", bad, nil), admin)
	if w = executeHandler(t, h.CreateUser, req); w.Code != http.StatusBadRequest {
		t.Errorf("unknown permission status = %d, want 400", w.Code)
	}
}

func TestUpdateUserEndpoint(t *testing.T) {
	h, _ := testSetup(t)
	admin := createAPIUser(t, h, "admin@example.com", model.RoleAdmin,
		[]string{model.PermissionManageUsers})
	target := createAPIUser(t, h, "target@example.com", model.RoleEditor, nil)
	id := fmt.Sprint(target.ID)

	req := asUser(newJSONRequest(t, http.MethodPut, "/api/v1/users/"+id,
		`{"role":"admin","permissions":["manage_settings"]}`, map[string]string{"id": id}), admin)
	w := executeHandler(t, h.UpdateUser, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", w.Code, w.Body.String())
	}
	profile := decodeData[profileBody](t, w)
	if profile.Role != model.RoleAdmin {
		t.Errorf("role = %s, want admin", profile.Role)
	}
	if len(profile.Permissions) != 1 || profile.Permissions[0] != model.PermissionManageSettings {
		t.Errorf("permissions = %v", profile.Permissions)
	}
}

func TestDeleteUserEndpoint(t *testing.T) {
	h, _ := testSetup(t)
	admin := createAPIUser(t, h, "admin@example.com", model.RoleAdmin,
		[]string{model.PermissionManageUsers})
	target := createAPIUser(t, h, "target@example.com", model.RoleEditor, nil)

	// Self-deletion is refused
	selfID := fmt.Sprint(admin.ID)
	req := asUser(newJSONRequest(t, http.MethodDelete, "/api/v1/users/"+selfID, "",
		map[string]string{"id": selfID}), admin)
	if w := executeHandler(t, h.DeleteUser, req); w.Code != http.StatusBadRequest {
		t.Errorf("self delete status = %d, want 400", w.Code)
	}

	id := fmt.Sprint(target.ID)
	req = asUser(newJSONRequest(t, http.MethodDelete, "/api/v1/users/"+id, "",
		map[string]string{"id": id}), admin)
	if w := executeHandler(t, h.DeleteUser, req); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	getReq := newGetRequest(t, "/api/v1/users/"+id, map[string]string{"id": id})
	if w := executeHandler(t, h.GetUser, getReq); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestListUsersEndpoint(t *testing.T) {
	h, _ := testSetup(t)
	admin := createAPIUser(t, h, "admin@example.com", model.RoleAdmin,
		[]string{model.PermissionManageUsers})
	createAPIUser(t, h, "second@example.com", model.RoleEditor, nil)

	req := asUser(newGetRequest(t, "/api/v1/users", nil), admin)
	w := executeHandler(t, h.ListUsers, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	result := decodeData[PagedResult](t, w)
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
}
