// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Accepted upload MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Media represents an uploaded file in the media catalog.
type Media struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Filename   string          `json:"filename"`
	MimeType   string          `json:"mime_type"`
	Size       int64           `json:"size"`
	URL        string          `json:"url"`
	UploadedBy sql.NullInt64   `json:"uploaded_by,omitempty"`
	Width      sql.NullInt64   `json:"width,omitempty"`
	Height     sql.NullInt64   `json:"height,omitempty"`
	Format     string          `json:"format,omitempty"`
	Alt        string          `json:"alt,omitempty"`
	Tags       json.RawMessage `json:"tags"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// GetTags parses the JSON tags column into a slice.
func (m *Media) GetTags() []string {
	var tags []string
	if len(m.Tags) == 0 {
		return tags
	}
	_ = json.Unmarshal(m.Tags, &tags)
	return tags
}

// HasTag checks if the media carries the given tag.
func (m *Media) HasTag(tag string) bool {
	for _, t := range m.GetTags() {
		if t == tag {
			return true
		}
	}
	return false
}

// TagsToJSON converts a slice of tags to a JSON value for storage.
func TagsToJSON(tags []string) json.RawMessage {
	if len(tags) == 0 {
		return json.RawMessage("[]")
	}
	data, _ := json.Marshal(tags)
	return data
}

// SupportedUploadTypes returns the MIME types accepted for upload.
func SupportedUploadTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// IsSupportedUploadType checks if a MIME type is accepted for upload.
func IsSupportedUploadType(mimeType string) bool {
	for _, t := range SupportedUploadTypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}

// GenerateFilename builds a unique stored filename for an upload:
// unix-millis, a short random hex tag, the slugified original stem, and
// the original extension (lowercased).
func GenerateFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	stem := Slugify(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if stem == "" {
		stem = "file"
	}

	tag := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]

	return fmt.Sprintf("%d-%s-%s%s", time.Now().UnixMilli(), tag, stem, ext)
}
