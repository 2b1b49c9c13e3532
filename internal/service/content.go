// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the application operations on top of the
// store: content lifecycle, settings, media catalog, and accounts.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/store"
)

// ContentService manages ordered content blocks.
type ContentService struct {
	db        *sql.DB
	queries   *store.Queries
	sanitizer *bluemonday.Policy
}

// NewContentService creates a new content service.
func NewContentService(db *sql.DB) *ContentService {
	return &ContentService{
		db:        db,
		queries:   store.New(db),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// CreateBlockInput holds the fields accepted when creating a block.
type CreateBlockInput struct {
	Section        string          `json:"section"`
	Type           string          `json:"type"`
	Position       int             `json:"position"`
	IsActive       *bool           `json:"is_active"`
	Payload        json.RawMessage `json:"payload"`
	SEOTitle       string          `json:"seo_title"`
	SEODescription string          `json:"seo_description"`
	SEOKeywords    string          `json:"seo_keywords"`
}

// UpdateBlockInput holds the fields accepted when updating a block.
// Nil pointers leave the stored value unchanged.
type UpdateBlockInput struct {
	Section        *string         `json:"section"`
	Type           *string         `json:"type"`
	Position       *int            `json:"position"`
	IsActive       *bool           `json:"is_active"`
	Payload        json.RawMessage `json:"payload"`
	SEOTitle       *string         `json:"seo_title"`
	SEODescription *string         `json:"seo_description"`
	SEOKeywords    *string         `json:"seo_keywords"`
}

// ReorderItem is one entry of a reorder request.
type ReorderItem struct {
	ID       int64 `json:"id"`
	Position int   `json:"position"`
}

// ListActive returns one page of active blocks in position order plus the
// total count of active blocks.
func (s *ContentService) ListActive(ctx context.Context, limit, offset int64) ([]model.ContentBlock, int64, error) {
	blocks, err := s.queries.ListActiveContentBlocks(ctx, store.ListActiveContentBlocksParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, apperr.Internal("listing content", err)
	}

	total, err := s.queries.CountActiveContentBlocks(ctx)
	if err != nil {
		return nil, 0, apperr.Internal("counting content", err)
	}

	return blocks, total, nil
}

// GetBySection returns the active blocks of one section in position order.
// An unknown section is a validation error; a known section with no blocks
// yields an empty slice.
func (s *ContentService) GetBySection(ctx context.Context, section string) ([]model.ContentBlock, error) {
	if !model.IsValidSection(section) {
		return nil, apperr.Newf(apperr.KindValidation, "Invalid section: %s", section)
	}

	blocks, err := s.queries.ListContentBlocksBySection(ctx, section)
	if err != nil {
		return nil, apperr.Internal("listing section content", err)
	}
	return blocks, nil
}

// Get returns a single block by id.
func (s *ContentService) Get(ctx context.Context, id int64) (model.ContentBlock, error) {
	block, err := s.queries.GetContentBlockByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentBlock{}, apperr.NotFound("Content block not found")
	}
	if err != nil {
		return model.ContentBlock{}, apperr.Internal("fetching content block", err)
	}
	return block, nil
}

// Create validates and stores a new block stamped with the acting user.
func (s *ContentService) Create(ctx context.Context, input CreateBlockInput, userID int64) (model.ContentBlock, error) {
	if !model.IsValidSection(input.Section) {
		return model.ContentBlock{}, apperr.Newf(apperr.KindValidation, "Invalid section: %s", input.Section)
	}
	if !model.IsValidBlockType(input.Type) {
		return model.ContentBlock{}, apperr.Newf(apperr.KindValidation, "Invalid block type: %s", input.Type)
	}
	if input.Position < 0 {
		return model.ContentBlock{}, apperr.Validation("Position must not be negative")
	}

	payload, err := s.sanitizePayload(input.Type, input.Payload)
	if err != nil {
		return model.ContentBlock{}, apperr.Wrap(apperr.KindValidation, "Invalid payload", err)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := time.Now()
	block, err := s.queries.CreateContentBlock(ctx, store.CreateContentBlockParams{
		Section:        input.Section,
		Type:           input.Type,
		Position:       input.Position,
		IsActive:       isActive,
		Payload:        payload,
		SEOTitle:       input.SEOTitle,
		SEODescription: input.SEODescription,
		SEOKeywords:    input.SEOKeywords,
		LastModified:   now,
		ModifiedBy:     sql.NullInt64{Int64: userID, Valid: true},
		CreatedAt:      now,
	})
	if err != nil {
		return model.ContentBlock{}, apperr.Internal("creating content block", err)
	}
	return block, nil
}

// Update applies a partial update and restamps last_modified/modified_by.
func (s *ContentService) Update(ctx context.Context, id int64, input UpdateBlockInput, userID int64) (model.ContentBlock, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.ContentBlock{}, err
	}

	if input.Section != nil {
		if !model.IsValidSection(*input.Section) {
			return model.ContentBlock{}, apperr.Newf(apperr.KindValidation, "Invalid section: %s", *input.Section)
		}
		current.Section = *input.Section
	}
	if input.Type != nil {
		if !model.IsValidBlockType(*input.Type) {
			return model.ContentBlock{}, apperr.Newf(apperr.KindValidation, "Invalid block type: %s", *input.Type)
		}
		current.Type = *input.Type
	}
	if input.Position != nil {
		if *input.Position < 0 {
			return model.ContentBlock{}, apperr.Validation("Position must not be negative")
		}
		current.Position = *input.Position
	}
	if input.IsActive != nil {
		current.IsActive = *input.IsActive
	}
	if input.SEOTitle != nil {
		current.SEOTitle = *input.SEOTitle
	}
	if input.SEODescription != nil {
		current.SEODescription = *input.SEODescription
	}
	if input.SEOKeywords != nil {
		current.SEOKeywords = *input.SEOKeywords
	}

	// The payload always revalidates against the effective type: either a
	// new payload arrived, or a type change must match the stored payload.
	payload := current.Payload
	if input.Payload != nil {
		payload = input.Payload
	}
	payload, err = s.sanitizePayload(current.Type, payload)
	if err != nil {
		return model.ContentBlock{}, apperr.Wrap(apperr.KindValidation, "Invalid payload", err)
	}

	block, err := s.queries.UpdateContentBlock(ctx, store.UpdateContentBlockParams{
		ID:             id,
		Section:        current.Section,
		Type:           current.Type,
		Position:       current.Position,
		IsActive:       current.IsActive,
		Payload:        payload,
		SEOTitle:       current.SEOTitle,
		SEODescription: current.SEODescription,
		SEOKeywords:    current.SEOKeywords,
		LastModified:   time.Now(),
		ModifiedBy:     sql.NullInt64{Int64: userID, Valid: true},
	})
	if err != nil {
		return model.ContentBlock{}, apperr.Internal("updating content block", err)
	}
	return block, nil
}

// Delete removes a block.
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.queries.DeleteContentBlock(ctx, id); err != nil {
		return apperr.Internal("deleting content block", err)
	}
	return nil
}

// Reorder moves blocks to new positions in a single transaction. An unknown
// id or a negative position fails the whole batch.
func (s *ContentService) Reorder(ctx context.Context, items []ReorderItem, userID int64) error {
	if len(items) == 0 {
		return apperr.Validation("Reorder requires at least one item")
	}
	for _, item := range items {
		if item.Position < 0 {
			return apperr.Validation("Position must not be negative")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal("starting reorder transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now()
	modifiedBy := sql.NullInt64{Int64: userID, Valid: true}

	for _, item := range items {
		err := qtx.UpdateContentBlockPosition(ctx, store.UpdateContentBlockPositionParams{
			ID:           item.ID,
			Position:     item.Position,
			LastModified: now,
			ModifiedBy:   modifiedBy,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Newf(apperr.KindNotFound, "Content block %d not found", item.ID)
		}
		if err != nil {
			return apperr.Internal("reordering content", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("committing reorder", err)
	}
	return nil
}

// Search returns active blocks whose payload title or description matches
// the term.
func (s *ContentService) Search(ctx context.Context, term string) ([]model.ContentBlock, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.Validation("Search term is required")
	}

	blocks, err := s.queries.SearchContentBlocks(ctx, term)
	if err != nil {
		return nil, apperr.Internal("searching content", err)
	}
	return blocks, nil
}

// Stats returns per-section block counts.
func (s *ContentService) Stats(ctx context.Context) ([]store.ContentStatsRow, error) {
	stats, err := s.queries.ContentStatsBySection(ctx)
	if err != nil {
		return nil, apperr.Internal("collecting content stats", err)
	}
	return stats, nil
}

// sanitizePayload validates the payload shape for blockType and runs the
// free-text fields through the HTML sanitizer.
func (s *ContentService) sanitizePayload(blockType string, raw json.RawMessage) (json.RawMessage, error) {
	decoded, err := model.DecodePayload(blockType, raw)
	if err != nil {
		return nil, err
	}

	switch p := decoded.(type) {
	case *model.TextPayload:
		p.Title = s.sanitizer.Sanitize(p.Title)
		p.Subtitle = s.sanitizer.Sanitize(p.Subtitle)
		p.Description = s.sanitizer.Sanitize(p.Description)
		for i := range p.Buttons {
			p.Buttons[i].Text = s.sanitizer.Sanitize(p.Buttons[i].Text)
		}
	case *model.ImagePayload:
		p.Alt = s.sanitizer.Sanitize(p.Alt)
		p.Caption = s.sanitizer.Sanitize(p.Caption)
	case *model.ListPayload:
		p.Title = s.sanitizer.Sanitize(p.Title)
		p.Description = s.sanitizer.Sanitize(p.Description)
		for i := range p.Items {
			p.Items[i].Title = s.sanitizer.Sanitize(p.Items[i].Title)
			p.Items[i].Description = s.sanitizer.Sanitize(p.Items[i].Description)
		}
	case *model.FormPayload:
		p.Title = s.sanitizer.Sanitize(p.Title)
		p.Description = s.sanitizer.Sanitize(p.Description)
		p.SuccessMessage = s.sanitizer.Sanitize(p.SuccessMessage)
	case *model.StatsPayload:
		p.Title = s.sanitizer.Sanitize(p.Title)
		for i := range p.Stats {
			p.Stats[i].Label = s.sanitizer.Sanitize(p.Stats[i].Label)
		}
	}

	out, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("re-encoding payload: %w", err)
	}
	return out, nil
}
