// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/pwr-cms/internal/auth"
	"github.com/olegiv/pwr-cms/internal/model"
)

// Seed creates initial data: the admin account and the default settings.
// Both steps are idempotent; existing rows are never overwritten.
func Seed(ctx context.Context, db *sql.DB, adminEmail, adminPassword string) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries, adminEmail, adminPassword); err != nil {
		return err
	}
	return SeedDefaultSettings(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries, email, password string) error {
	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	if password == "" {
		return fmt.Errorf("CMS_ADMIN_PASSWORD is required to seed the admin account")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// Role does not imply permissions, so the admin gets the full set
	// granted explicitly.
	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		Username:     "admin",
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Permissions:  model.PermissionsToJSON(model.AllPermissions()),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return nil
}

// SeedDefaultSettings inserts the compiled defaults for every category,
// skipping keys that already exist.
func SeedDefaultSettings(ctx context.Context, queries *Queries) error {
	now := time.Now()
	for _, category := range model.AllSettingCategories() {
		for key, value := range model.DefaultSettings(category) {
			err := queries.InsertSettingIfAbsent(ctx, UpsertSettingParams{
				Key:          key,
				Value:        value,
				Category:     category,
				Description:  fmt.Sprintf("Default setting for %s", key),
				LastModified: now,
			})
			if err != nil {
				return fmt.Errorf("seeding setting %s: %w", key, err)
			}
		}
	}
	return nil
}
