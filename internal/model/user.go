// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, ContentBlock, Setting, and Media.
package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Granted permissions. The set is closed: anything outside it is rejected
// at the boundary, never stored.
const (
	PermissionManageContent  = "manage_content"
	PermissionManageUsers    = "manage_users"
	PermissionManageSettings = "manage_settings"
	PermissionViewAnalytics  = "view_analytics"
	PermissionManageMedia    = "manage_media"
)

// AllRoles returns all assignable user roles.
func AllRoles() []string {
	return []string{RoleAdmin, RoleEditor}
}

// AllPermissions returns all grantable permissions.
func AllPermissions() []string {
	return []string{
		PermissionManageContent,
		PermissionManageUsers,
		PermissionManageSettings,
		PermissionViewAnalytics,
		PermissionManageMedia,
	}
}

// IsValidRole checks if role is one of the assignable roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}

// IsValidPermission checks if perm belongs to the closed permission set.
func IsValidPermission(perm string) bool {
	for _, p := range AllPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// ValidatePermissions returns the first unknown permission in perms,
// or "" when all are valid.
func ValidatePermissions(perms []string) string {
	for _, p := range perms {
		if !IsValidPermission(p) {
			return p
		}
	}
	return ""
}

// User represents a CMS account.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	Permissions  string       `json:"-"` // JSON array stored as string
	IsActive     bool         `json:"is_active"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasRole checks if the user holds the given role. Roles never imply one
// another; admin is not a superset of editor.
func (u *User) HasRole(role string) bool {
	return u.Role == role
}

// HasAnyRole checks if the user holds any of the given roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// GetPermissions parses the JSON permissions string into a slice.
func (u *User) GetPermissions() []string {
	var perms []string
	if u.Permissions == "" || u.Permissions == "[]" {
		return perms
	}
	_ = json.Unmarshal([]byte(u.Permissions), &perms)
	return perms
}

// HasPermission checks if the user has a specific granted permission.
// Role is not consulted; a permission must be granted explicitly.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.GetPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsToJSON converts a slice of permissions to a JSON string.
func PermissionsToJSON(perms []string) string {
	if len(perms) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(perms)
	return string(data)
}
