// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/olegiv/pwr-cms/internal/apperr"
)

func TestStatus(t *testing.T) {
	h, _ := testSetup(t)

	w := executeHandler(t, h.Status, newGetRequest(t, "/api/v1/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	data := decodeData[StatusResponse](t, w)
	if data.Status != "ok" || data.Version != "v1" {
		t.Errorf("unexpected status body: %+v", data)
	}
}

func TestStatusOfMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Unauthenticated("no"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Storage("disk", nil), http.StatusBadGateway},
		{apperr.Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestInternalErrorMessageHidden(t *testing.T) {
	req := newGetRequest(t, "/api/v1/content", nil)
	w := executeHandler(t, func(w http.ResponseWriter, r *http.Request) {
		WriteErr(w, r, apperr.Internal("connection string leaked", nil))
	}, req)

	env := decodeEnvelope(t, w)
	if env.Message != "Internal server error" {
		t.Errorf("internal detail leaked to client: %q", env.Message)
	}
	if env.Success {
		t.Error("success should be false on error")
	}
}
