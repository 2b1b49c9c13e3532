// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers for the CMS.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/service"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	content        *service.ContentService
	settings       *service.SettingsService
	media          *service.MediaService
	users          *service.UserService
	maxUploadFiles int
}

// NewHandler creates a new API handler.
func NewHandler(
	content *service.ContentService,
	settings *service.SettingsService,
	media *service.MediaService,
	users *service.UserService,
	maxUploadFiles int,
) *Handler {
	return &Handler{
		content:        content,
		settings:       settings,
		media:          media,
		users:          users,
		maxUploadFiles: maxUploadFiles,
	}
}

// Response is the standard API response envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteData writes a successful response carrying data.
func WriteData(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, Response{Success: true, Data: data})
}

// WriteDataCount writes a successful response carrying a list and its length.
func WriteDataCount(w http.ResponseWriter, data any, count int) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

// WriteMessage writes a successful response carrying only a message.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// statusOf maps an error kind to its HTTP status code.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteErr maps a service error to its HTTP status and envelope. Internal
// detail is logged, never sent to the client.
func WriteErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	WriteJSON(w, status, Response{Success: false, Message: apperr.MessageOf(err)})
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return id, nil
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteData(w, http.StatusOK, StatusResponse{Status: "ok", Version: "v1"})
}
