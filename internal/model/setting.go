// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Setting categories
const (
	SettingCategoryTheme    = "theme"
	SettingCategoryLayout   = "layout"
	SettingCategoryContact  = "contact"
	SettingCategorySEO      = "seo"
	SettingCategoryFeatures = "features"
)

// AllSettingCategories returns all setting categories.
func AllSettingCategories() []string {
	return []string{
		SettingCategoryTheme,
		SettingCategoryLayout,
		SettingCategoryContact,
		SettingCategorySEO,
		SettingCategoryFeatures,
	}
}

// IsValidSettingCategory checks if category is a known setting category.
func IsValidSettingCategory(category string) bool {
	for _, c := range AllSettingCategories() {
		if c == category {
			return true
		}
	}
	return false
}

// Setting represents one site configuration value. Keys are unique across
// all categories.
type Setting struct {
	ID           int64           `json:"id"`
	Key          string          `json:"key"`
	Value        json.RawMessage `json:"value"`
	Category     string          `json:"category"`
	Description  string          `json:"description,omitempty"`
	LastModified time.Time       `json:"last_modified"`
	ModifiedBy   sql.NullInt64   `json:"modified_by,omitempty"`
}

// DefaultSettings returns the compiled default values for a category,
// or nil for an unknown category. Values are JSON-encoded as stored.
func DefaultSettings(category string) map[string]json.RawMessage {
	var defaults map[string]any

	switch category {
	case SettingCategoryTheme:
		defaults = map[string]any{
			"primaryColor":    "#2F855A",
			"secondaryColor":  "#276749",
			"accentColor":     "#48BB78",
			"backgroundColor": "#FFFFFF",
			"textColor":       "#1A202C",
			"fontPrimary":     "Poppins",
			"fontSecondary":   "Inter",
		}
	case SettingCategoryLayout:
		defaults = map[string]any{
			"containerWidth": "1200px",
			"spacing": map[string]any{
				"section": "4rem",
				"element": "1rem",
			},
			"borderRadius": "0.5rem",
		}
	case SettingCategoryContact:
		defaults = map[string]any{
			"email":   "info@preciouswasterefinery.com",
			"phone":   "+1 234 567 890",
			"address": "123 Eco Street, Green City",
			"socialMedia": map[string]any{
				"facebook":  "",
				"twitter":   "",
				"instagram": "",
				"linkedin":  "",
			},
		}
	case SettingCategorySEO:
		defaults = map[string]any{
			"title":             "Precious Waste Refinery - Responsible E-Waste Recycling",
			"description":       "Professional e-waste recycling services for a sustainable future",
			"keywords":          []string{"e-waste", "recycling", "electronics", "sustainability"},
			"googleAnalyticsId": "",
		}
	case SettingCategoryFeatures:
		defaults = map[string]any{
			"enableBlog":       true,
			"enableNewsletter": true,
			"enableChat":       false,
			"enableAnalytics":  true,
		}
	default:
		return nil
	}

	out := make(map[string]json.RawMessage, len(defaults))
	for key, value := range defaults {
		data, _ := json.Marshal(value)
		out[key] = data
	}
	return out
}
