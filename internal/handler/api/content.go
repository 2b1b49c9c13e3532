// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/service"
)

const (
	defaultContentLimit = 20
	maxContentLimit     = 100
)

// ListContent handles GET /api/v1/content. Active blocks only, ordered by
// position, paginated.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	params := Paginate(r, defaultContentLimit, maxContentLimit)

	blocks, total, err := h.content.ListActive(r.Context(), int64(params.Limit), params.Offset)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, NewPagedResult(params, total, blocks))
}

// GetContentBySection handles GET /api/v1/content/{section}.
func (h *Handler) GetContentBySection(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.content.GetBySection(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteDataCount(w, blocks, len(blocks))
}

// SearchContent handles GET /api/v1/content/search/{term}.
func (h *Handler) SearchContent(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.content.Search(r.Context(), chi.URLParam(r, "term"))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteDataCount(w, blocks, len(blocks))
}

// ContentStats handles GET /api/v1/content/stats.
func (h *Handler) ContentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.content.Stats(r.Context())
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, stats)
}

// CreateContent handles POST /api/v1/content.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBlockInput
	if err := decodeBody(r, &input); err != nil {
		WriteErr(w, r, err)
		return
	}

	block, err := h.content.Create(r.Context(), input, middleware.GetUserID(r))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusCreated, block)
}

// UpdateContent handles PUT /api/v1/content/{id}.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	var input service.UpdateBlockInput
	if err := decodeBody(r, &input); err != nil {
		WriteErr(w, r, err)
		return
	}

	block, err := h.content.Update(r.Context(), id, input, middleware.GetUserID(r))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, block)
}

// DeleteContent handles DELETE /api/v1/content/{id}.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	if err := h.content.Delete(r.Context(), id); err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteMessage(w, "Content block deleted")
}

// reorderRequest is the body of PUT /api/v1/content/reorder.
type reorderRequest struct {
	Items []service.ReorderItem `json:"items"`
}

// ReorderContent handles PUT /api/v1/content/reorder. The batch applies
// atomically or not at all.
func (h *Handler) ReorderContent(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErr(w, r, err)
		return
	}

	if err := h.content.Reorder(r.Context(), req.Items, middleware.GetUserID(r)); err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteMessage(w, "Content blocks reordered")
}
