// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
)

// PageParams holds normalized pagination query values.
type PageParams struct {
	Page   int
	Limit  int
	Offset int64
}

// Paginate parses page and limit query parameters. Non-numeric or
// out-of-range values fall back to sane bounds rather than erroring:
// page is at least 1, limit is clamped to [1, maxLimit].
func Paginate(r *http.Request, defaultLimit, maxLimit int) PageParams {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return PageParams{
		Page:   page,
		Limit:  limit,
		Offset: int64(page-1) * int64(limit),
	}
}

// PagedResult wraps one page of items with its paging metadata.
type PagedResult struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
	Data       any   `json:"data"`
}

// NewPagedResult assembles the paging envelope for one page of items.
func NewPagedResult(params PageParams, total int64, data any) PagedResult {
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return PagedResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(params.Page)*int64(params.Limit) < total,
		Data:       data,
	}
}
