// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
)

// loginRequest is the body of POST /api/v1/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the bearer token and the profile it belongs to.
// The raw token is shown exactly once.
type loginResponse struct {
	Token string      `json:"token"`
	User  profileBody `json:"user"`
}

// profileBody is the public shape of a user account.
type profileBody struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"is_active"`
}

func profileOf(user model.User) profileBody {
	return profileBody{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		Role:        user.Role,
		Permissions: user.GetPermissions(),
		IsActive:    user.IsActive,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErr(w, r, err)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, loginResponse{Token: token, User: profileOf(user)})
}

// Logout handles POST /api/v1/auth/logout. Revokes the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		WriteErr(w, r, apperr.Unauthenticated("Authentication required"))
		return
	}

	if err := h.users.Logout(r.Context(), strings.TrimSpace(parts[1])); err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteMessage(w, "Logged out")
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteErr(w, r, apperr.Unauthenticated("Authentication required"))
		return
	}

	WriteData(w, http.StatusOK, profileOf(*user))
}

// UpdateMe handles PUT /api/v1/auth/me. Self-service username/email update.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteErr(w, r, apperr.Unauthenticated("Authentication required"))
		return
	}

	var input service.UpdateProfileInput
	if err := decodeBody(r, &input); err != nil {
		WriteErr(w, r, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, input)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, profileOf(updated))
}

// changePasswordRequest is the body of PUT /api/v1/auth/password.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles PUT /api/v1/auth/password. Verifies the current
// password before replacing it.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteErr(w, r, apperr.Unauthenticated("Authentication required"))
		return
	}

	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErr(w, r, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteMessage(w, "Password changed")
}
