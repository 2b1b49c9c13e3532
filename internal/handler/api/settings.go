// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pwr-cms/internal/middleware"
)

// GetSettings handles GET /api/v1/settings. Returns every setting grouped
// by category.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.settings.GetAll(r.Context())
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, grouped)
}

// GetSettingsByCategory handles GET /api/v1/settings/{category}.
func (h *Handler) GetSettingsByCategory(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.GetByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, values)
}

// UpdateSettings handles PUT /api/v1/settings/{category}. The body is a flat
// key→value object of the keys to change.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]json.RawMessage
	if err := decodeBody(r, &values); err != nil {
		WriteErr(w, r, err)
		return
	}

	updated, err := h.settings.Update(r.Context(), chi.URLParam(r, "category"), values, middleware.GetUserID(r))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, updated)
}

// ResetSettings handles PUT /api/v1/settings/reset/{category}. Restores the
// category to its compiled defaults.
func (h *Handler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.settings.ResetCategory(r.Context(), chi.URLParam(r, "category"), middleware.GetUserID(r))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, defaults)
}
