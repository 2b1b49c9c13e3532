// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Page sections a content block can belong to.
const (
	SectionHero     = "hero"
	SectionImpact   = "impact"
	SectionServices = "services"
	SectionPricing  = "pricing"
	SectionProcess  = "process"
	SectionJoin     = "join"
	SectionContact  = "contact"
	SectionFooter   = "footer"
)

// Content block types. Each type fixes the shape of the block payload.
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
	BlockTypeList  = "list"
	BlockTypeForm  = "form"
	BlockTypeStats = "stats"
)

// AllSections returns all page sections in display order.
func AllSections() []string {
	return []string{
		SectionHero,
		SectionImpact,
		SectionServices,
		SectionPricing,
		SectionProcess,
		SectionJoin,
		SectionContact,
		SectionFooter,
	}
}

// AllBlockTypes returns all content block types.
func AllBlockTypes() []string {
	return []string{
		BlockTypeText,
		BlockTypeImage,
		BlockTypeList,
		BlockTypeForm,
		BlockTypeStats,
	}
}

// IsValidSection checks if section is a known page section.
func IsValidSection(section string) bool {
	for _, s := range AllSections() {
		if s == section {
			return true
		}
	}
	return false
}

// IsValidBlockType checks if blockType is a known content block type.
func IsValidBlockType(blockType string) bool {
	for _, t := range AllBlockTypes() {
		if t == blockType {
			return true
		}
	}
	return false
}

// ContentBlock represents one ordered block of a page section.
type ContentBlock struct {
	ID             int64           `json:"id"`
	Section        string          `json:"section"`
	Type           string          `json:"type"`
	Position       int             `json:"position"`
	IsActive       bool            `json:"is_active"`
	Payload        json.RawMessage `json:"payload"`
	SEOTitle       string          `json:"seo_title,omitempty"`
	SEODescription string          `json:"seo_description,omitempty"`
	SEOKeywords    string          `json:"seo_keywords,omitempty"`
	LastModified   time.Time       `json:"last_modified"`
	ModifiedBy     sql.NullInt64   `json:"modified_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Button is a call-to-action inside a text payload.
type Button struct {
	Text  string `json:"text"`
	Link  string `json:"link"`
	Style string `json:"style,omitempty"`
}

// TextPayload is the payload of a "text" block.
type TextPayload struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Buttons     []Button `json:"buttons,omitempty"`
}

// ImagePayload is the payload of an "image" block.
type ImagePayload struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// ListItem is a single entry of a list payload.
type ListItem struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	Link        string `json:"link,omitempty"`
}

// ListPayload is the payload of a "list" block.
type ListPayload struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Items       []ListItem `json:"items"`
}

// FormField describes one input of a form payload.
type FormField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// FormPayload is the payload of a "form" block.
type FormPayload struct {
	Title          string      `json:"title,omitempty"`
	Description    string      `json:"description,omitempty"`
	Fields         []FormField `json:"fields"`
	SubmitLabel    string      `json:"submit_label,omitempty"`
	SuccessMessage string      `json:"success_message,omitempty"`
}

// Stat is a single figure of a stats payload.
type Stat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Suffix string `json:"suffix,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// StatsPayload is the payload of a "stats" block.
type StatsPayload struct {
	Title string `json:"title,omitempty"`
	Stats []Stat `json:"stats"`
}

// DecodePayload validates raw against the payload shape of blockType.
// Unknown fields are rejected so a payload cannot smuggle another
// type's fields. Returns the decoded payload.
func DecodePayload(blockType string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("payload is required")
	}

	var target any
	switch blockType {
	case BlockTypeText:
		target = &TextPayload{}
	case BlockTypeImage:
		target = &ImagePayload{}
	case BlockTypeList:
		target = &ListPayload{}
	case BlockTypeForm:
		target = &FormPayload{}
	case BlockTypeStats:
		target = &StatsPayload{}
	default:
		return nil, fmt.Errorf("unknown block type: %s", blockType)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", blockType, err)
	}
	return target, nil
}
