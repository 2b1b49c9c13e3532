// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage persists uploaded file bytes on local disk. The catalog
// record lives in the database; this package only owns the binary data.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores files in a single flat directory under root.
type Disk struct {
	root string
}

// NewDisk creates the storage directory if needed and returns a Disk store.
func NewDisk(root string) (*Disk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Disk{root: abs}, nil
}

// Root returns the absolute storage directory.
func (d *Disk) Root() string {
	return d.root
}

// safePath validates filename and returns its absolute path inside root.
func (d *Disk) safePath(filename string) (string, error) {
	// Sanitize filename to prevent path traversal
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == "" || safe != filename {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	path := filepath.Join(d.root, safe)
	rel, err := filepath.Rel(d.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected")
	}
	return path, nil
}

// Save writes data to filename inside the store.
func (d *Disk) Save(filename string, data []byte) error {
	path, err := d.safePath(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Delete removes filename from the store. Returns os.ErrNotExist when the
// backing file is already gone.
func (d *Disk) Delete(filename string) error {
	path, err := d.safePath(filename)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Exists reports whether filename is present in the store.
func (d *Disk) Exists(filename string) bool {
	path, err := d.safePath(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns the filenames currently present in the store.
func (d *Disk) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("reading storage root: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
