// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olegiv/pwr-cms/internal/apperr"
	"github.com/olegiv/pwr-cms/internal/imaging"
	"github.com/olegiv/pwr-cms/internal/model"
	"github.com/olegiv/pwr-cms/internal/storage"
	"github.com/olegiv/pwr-cms/internal/store"
)

// MediaService manages the media catalog and the files behind it.
type MediaService struct {
	queries   *store.Queries
	disk      *storage.Disk
	publicURL string
	maxSize   int64
}

// NewMediaService creates a new media service. publicURL is the URL prefix
// under which stored files are served.
func NewMediaService(db *sql.DB, disk *storage.Disk, publicURL string, maxSize int64) *MediaService {
	return &MediaService{
		queries:   store.New(db),
		disk:      disk,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		maxSize:   maxSize,
	}
}

// UploadInput holds one file to ingest.
type UploadInput struct {
	Name string // original filename as supplied by the client
	Data []byte
	Alt  string
	Tags []string
}

// Upload validates, stores, and catalogs one uploaded file. The file is
// written to disk before the record; a record failure therefore leaves an
// orphan file that the cleanup sweep reconciles later.
func (s *MediaService) Upload(ctx context.Context, input UploadInput, userID int64) (model.Media, error) {
	if len(input.Data) == 0 {
		return model.Media{}, apperr.Validation("Uploaded file is empty")
	}
	if int64(len(input.Data)) > s.maxSize {
		return model.Media{}, apperr.Newf(apperr.KindValidation, "File exceeds maximum upload size of %d bytes", s.maxSize)
	}

	// Trust the bytes, not the declared Content-Type.
	mimeType := imaging.DetectMimeType(input.Data)
	if !model.IsSupportedUploadType(mimeType) {
		return model.Media{}, apperr.Newf(apperr.KindValidation, "File type %s is not allowed", mimeType)
	}

	probe, err := imaging.ProbeImage(input.Data)
	if err != nil {
		return model.Media{}, apperr.Wrap(apperr.KindValidation, "Unreadable image", err)
	}

	filename := model.GenerateFilename(input.Name)
	if err := s.disk.Save(filename, input.Data); err != nil {
		return model.Media{}, apperr.Storage("Saving uploaded file failed", err)
	}

	// Thumbnail generation is best-effort; the original upload stands
	// even when the variant fails.
	if thumb, thumbName, err := imaging.Thumbnail(input.Data, filename); err != nil {
		slog.Warn("thumbnail generation failed", "filename", filename, "error", err)
	} else if err := s.disk.Save(thumbName, thumb); err != nil {
		slog.Warn("saving thumbnail failed", "filename", thumbName, "error", err)
	}

	now := time.Now()
	media, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
		Name:       input.Name,
		Filename:   filename,
		MimeType:   mimeType,
		Size:       int64(len(input.Data)),
		URL:        s.publicURL + "/" + filename,
		UploadedBy: sql.NullInt64{Int64: userID, Valid: true},
		Width:      sql.NullInt64{Int64: int64(probe.Width), Valid: true},
		Height:     sql.NullInt64{Int64: int64(probe.Height), Valid: true},
		Format:     probe.Format,
		Alt:        input.Alt,
		Tags:       model.TagsToJSON(input.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return model.Media{}, apperr.Internal("cataloging uploaded file", err)
	}

	slog.Info("media uploaded", "id", media.ID, "filename", filename, "size", media.Size)
	return media, nil
}

// List returns one page of active media, newest first, plus the total.
func (s *MediaService) List(ctx context.Context, limit, offset int64) ([]model.Media, int64, error) {
	items, err := s.queries.ListMedia(ctx, store.ListMediaParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, apperr.Internal("listing media", err)
	}

	total, err := s.queries.CountMedia(ctx)
	if err != nil {
		return nil, 0, apperr.Internal("counting media", err)
	}
	return items, total, nil
}

// Get returns a single media record by id.
func (s *MediaService) Get(ctx context.Context, id int64) (model.Media, error) {
	media, err := s.queries.GetMediaByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Media{}, apperr.NotFound("Media not found")
	}
	if err != nil {
		return model.Media{}, apperr.Internal("fetching media", err)
	}
	return media, nil
}

// UpdateMediaInput holds the partial metadata update fields.
type UpdateMediaInput struct {
	Name     *string   `json:"name"`
	Alt      *string   `json:"alt"`
	Tags     *[]string `json:"tags"`
	IsActive *bool     `json:"is_active"`
}

// Update applies a partial metadata update.
func (s *MediaService) Update(ctx context.Context, id int64, input UpdateMediaInput) (model.Media, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.Media{}, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return model.Media{}, apperr.Validation("Name must not be empty")
		}
		current.Name = *input.Name
	}
	if input.Alt != nil {
		current.Alt = *input.Alt
	}
	if input.Tags != nil {
		current.Tags = model.TagsToJSON(*input.Tags)
	}
	if input.IsActive != nil {
		current.IsActive = *input.IsActive
	}

	media, err := s.queries.UpdateMedia(ctx, store.UpdateMediaParams{
		ID:        id,
		Name:      current.Name,
		Alt:       current.Alt,
		Tags:      current.Tags,
		IsActive:  current.IsActive,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return model.Media{}, apperr.Internal("updating media", err)
	}
	return media, nil
}

// Delete removes the backing file first, then the record. A missing
// backing file is a storage failure and the record is retained so the
// inconsistency stays visible.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	media, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.disk.Delete(media.Filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.Storage("Backing file is missing", err)
		}
		return apperr.Storage("Deleting backing file failed", err)
	}
	s.deleteThumb(media.Filename)

	if err := s.queries.DeleteMedia(ctx, id); err != nil {
		return apperr.Internal("deleting media record", err)
	}

	slog.Info("media deleted", "id", id, "filename", media.Filename)
	return nil
}

// Search returns active media whose name or tags match the term.
func (s *MediaService) Search(ctx context.Context, term string) ([]model.Media, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.Validation("Search term is required")
	}

	items, err := s.queries.SearchMedia(ctx, term)
	if err != nil {
		return nil, apperr.Internal("searching media", err)
	}
	return items, nil
}

// BulkResult reports the outcome of a bulk operation.
type BulkResult struct {
	Processed int     `json:"processed"`
	Skipped   []int64 `json:"skipped"`
}

// BulkDelete deletes each id independently. Missing ids are skipped and
// reported; one failure does not stop the rest.
func (s *MediaService) BulkDelete(ctx context.Context, ids []int64) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, apperr.Validation("No media ids provided")
	}

	result := BulkResult{Skipped: []int64{}}
	for _, id := range ids {
		err := s.Delete(ctx, id)
		switch {
		case err == nil:
			result.Processed++
		case apperr.IsKind(err, apperr.KindNotFound):
			result.Skipped = append(result.Skipped, id)
		default:
			slog.Warn("bulk delete failed for item", "id", id, "error", err)
			result.Skipped = append(result.Skipped, id)
		}
	}
	return result, nil
}

// BulkTag appends tags to each id independently. Missing ids are skipped.
func (s *MediaService) BulkTag(ctx context.Context, ids []int64, tags []string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, apperr.Validation("No media ids provided")
	}
	if len(tags) == 0 {
		return BulkResult{}, apperr.Validation("No tags provided")
	}

	result := BulkResult{Skipped: []int64{}}
	for _, id := range ids {
		media, err := s.Get(ctx, id)
		if err != nil {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		merged := media.GetTags()
		for _, tag := range tags {
			if !media.HasTag(tag) {
				merged = append(merged, tag)
			}
		}

		_, err = s.queries.UpdateMedia(ctx, store.UpdateMediaParams{
			ID:        id,
			Name:      media.Name,
			Alt:       media.Alt,
			Tags:      model.TagsToJSON(merged),
			IsActive:  media.IsActive,
			UpdatedAt: time.Now(),
		})
		if err != nil {
			slog.Warn("bulk tag failed for item", "id", id, "error", err)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Processed++
	}
	return result, nil
}

// CleanupResult reports what the cleanup sweep removed.
type CleanupResult struct {
	RecordsRemoved int `json:"records_removed"`
	FilesRemoved   int `json:"files_removed"`
	OrphansRemoved int `json:"orphans_removed"`
}

// Cleanup hard-deletes inactive records together with their files, then
// reconciles orphans: files on disk that no catalog record references.
func (s *MediaService) Cleanup(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult

	inactive, err := s.queries.ListInactiveMedia(ctx)
	if err != nil {
		return result, apperr.Internal("listing inactive media", err)
	}

	for _, media := range inactive {
		if err := s.disk.Delete(media.Filename); err == nil {
			result.FilesRemoved++
		} else if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("cleanup could not delete file", "filename", media.Filename, "error", err)
			continue
		}
		s.deleteThumb(media.Filename)

		if err := s.queries.DeleteMedia(ctx, media.ID); err != nil {
			slog.Warn("cleanup could not delete record", "id", media.ID, "error", err)
			continue
		}
		result.RecordsRemoved++
	}

	orphans, err := s.removeOrphans(ctx)
	if err != nil {
		return result, err
	}
	result.OrphansRemoved = orphans

	slog.Info("media cleanup finished",
		"records_removed", result.RecordsRemoved,
		"files_removed", result.FilesRemoved,
		"orphans_removed", result.OrphansRemoved)
	return result, nil
}

// removeOrphans deletes stored files that no catalog record references.
// Thumbnails of referenced files are kept.
func (s *MediaService) removeOrphans(ctx context.Context) (int, error) {
	filenames, err := s.queries.ListMediaFilenames(ctx)
	if err != nil {
		return 0, apperr.Internal("listing media filenames", err)
	}

	referenced := make(map[string]bool, len(filenames)*2)
	for _, name := range filenames {
		referenced[name] = true
		referenced[imaging.ThumbnailName(name)] = true
	}

	onDisk, err := s.disk.List()
	if err != nil {
		return 0, apperr.Storage("listing stored files", err)
	}

	removed := 0
	for _, name := range onDisk {
		if referenced[name] {
			continue
		}
		if err := s.disk.Delete(name); err != nil {
			slog.Warn("could not remove orphan file", "filename", name, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *MediaService) deleteThumb(filename string) {
	if err := s.disk.Delete(imaging.ThumbnailName(filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("deleting thumbnail failed", "filename", filename, "error", err)
	}
}
