// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/middleware"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/service"
)

const (
	defaultMediaLimit = 20
	maxMediaLimit     = 100
)

// ListMedia handles GET /api/v1/media. Active items only, newest first,
// paginated.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	params := Paginate(r, defaultMediaLimit, maxMediaLimit)

	items, total, err := h.media.List(r.Context(), int64(params.Limit), params.Offset)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, NewPagedResult(params, total, items))
}

// GetMedia handles GET /api/v1/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	item, err := h.media.Get(r.Context(), id)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, item)
}

// SearchMedia handles GET /api/v1/media/search/{term}.
func (h *Handler) SearchMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.Search(r.Context(), chi.URLParam(r, "term"))
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteDataCount(w, items, len(items))
}

// UploadMedia handles POST /api/v1/media/upload. Accepts multipart form
// files under the "files" field, several per request.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteErr(w, r, apperr.Validation("Invalid multipart form"))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		WriteErr(w, r, apperr.Validation("No files provided"))
		return
	}
	if len(files) > h.maxUploadFiles {
		WriteErr(w, r, apperr.Newf(apperr.KindValidation, "Too many files: at most %d per request", h.maxUploadFiles))
		return
	}

	userID := middleware.GetUserID(r)
	uploaded := make([]model.Media, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			WriteErr(w, r, apperr.Validation("Unreadable file: "+header.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			WriteErr(w, r, apperr.Validation("Unreadable file: "+header.Filename))
			return
		}

		item, err := h.media.Upload(r.Context(), service.UploadInput{
			Name: header.Filename,
			Data: data,
			Alt:  r.FormValue("alt"),
		}, userID)
		if err != nil {
			WriteErr(w, r, err)
			return
		}
		uploaded = append(uploaded, item)
	}

	WriteJSON(w, http.StatusCreated, Response{Success: true, Data: uploaded, Count: intPtr(len(uploaded))})
}

func intPtr(i int) *int { return &i }

// UpdateMedia handles PUT /api/v1/media/{id}.
func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	var input service.UpdateMediaInput
	if err := decodeBody(r, &input); err != nil {
		WriteErr(w, r, err)
		return
	}

	item, err := h.media.Update(r.Context(), id, input)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, item)
}

// DeleteMedia handles DELETE /api/v1/media/{id}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	if err := h.media.Delete(r.Context(), id); err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteMessage(w, "Media deleted")
}

// bulkIDsRequest is the body of the bulk media operations.
type bulkIDsRequest struct {
	IDs  []int64  `json:"ids"`
	Tags []string `json:"tags,omitempty"`
}

// BulkDeleteMedia handles POST /api/v1/media/bulk-delete. Missing IDs are
// skipped and reported, not fatal.
func (h *Handler) BulkDeleteMedia(w http.ResponseWriter, r *http.Request) {
	var req bulkIDsRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErr(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		WriteErr(w, r, apperr.Validation("No ids provided"))
		return
	}

	result, err := h.media.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}

// BulkTagMedia handles POST /api/v1/media/bulk-tag. Tags are merged into
// each item's existing set.
func (h *Handler) BulkTagMedia(w http.ResponseWriter, r *http.Request) {
	var req bulkIDsRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErr(w, r, err)
		return
	}
	if len(req.IDs) == 0 || len(req.Tags) == 0 {
		WriteErr(w, r, apperr.Validation("Both ids and tags are required"))
		return
	}

	result, err := h.media.BulkTag(r.Context(), req.IDs, req.Tags)
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}

// CleanupMedia handles POST /api/v1/media/cleanup. Removes inactive records
// with their files and reconciles orphan files.
func (h *Handler) CleanupMedia(w http.ResponseWriter, r *http.Request) {
	result, err := h.media.Cleanup(r.Context())
	if err != nil {
		WriteErr(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, result)
}
