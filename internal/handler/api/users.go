// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/service"
)

const (
	defaultUsersLimit = 20
	maxUsersLimit     = 100
)

// ListUsers handles GET /api/v1/users. Newest first, paginated.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := Paginate(r, defaultUsersLimit, maxUsersLimit)

	users, total, err := h.users.List(r.Context(), int64(params.Limit), params.Offset)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	profiles := make([]profileBody, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, profileOf(u))
	}

	WriteData(w, http.StatusOK, NewPagedResult(params, total, profiles))
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, profileOf(user))
}

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if err := decodeBody(r, &input); err != nil {
		WriteErr(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), input)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, profileOf(user))
}

// UpdateUser handles PUT /api/v1/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	var input service.UpdateUserInput
	if err := decodeBody(r, &input); err != nil {
		WriteErr(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), id, input)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, profileOf(user))
}

// DeleteUser handles DELETE /api/v1/users/{id}. Accounts cannot delete
// themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	if id == middleware.GetUserID(r) {
		WriteErr(w, r, apperr.Validation("You cannot delete your own account"))
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteMessage(w, "User deleted")
}
