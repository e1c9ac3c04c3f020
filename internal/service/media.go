// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds business logic above the store: media uploads and
// storage-usage accounting.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio-go/internal/imaging"
	"folio-go/internal/model"
	"folio-go/internal/store"
	"folio-go/internal/util"
)

// Upload limits
const (
	MaxImageSize  = 20 * 1024 * 1024 // 20MB
	MaxResumeSize = 10 * 1024 * 1024 // 10MB

	DefaultUploadDir = "./uploads"
)

// UploadResult is a stored upload plus its generated image renditions.
type UploadResult struct {
	Media    store.Media
	Variants []imaging.Variant
}

// MediaService handles portfolio uploads: profile and project images, and
// the downloadable résumé PDF.
type MediaService struct {
	db        *sql.DB
	queries   *store.Queries
	processor *imaging.Processor
	logger    *slog.Logger
}

// NewMediaService creates a media service storing files under uploadDir.
func NewMediaService(db *sql.DB, uploadDir string, logger *slog.Logger) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{
		db:        db,
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		logger:    logger,
	}
}

// UploadImage processes and stores a portfolio image upload.
func (s *MediaService) UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > MaxImageSize {
		return nil, fmt.Errorf("image exceeds maximum size (%d bytes)", MaxImageSize)
	}

	mimeType := headerMimeType(header)
	if !model.IsSupportedImageMimeType(mimeType) {
		return nil, fmt.Errorf("file type %s is not allowed for images", mimeType)
	}

	fileUUID := uuid.New().String()
	filename := util.SanitizeFilename(header.Filename)

	processed, err := s.processor.ProcessImage(file, fileUUID, filename)
	if err != nil {
		return nil, fmt.Errorf("processing image: %w", err)
	}

	media, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
		Uuid:      fileUUID,
		Kind:      model.MediaKindImage,
		Filename:  filename,
		MimeType:  processed.MimeType,
		Size:      processed.Size,
		Width:     int64(processed.Width),
		Height:    int64(processed.Height),
		CreatedAt: time.Now(),
	})
	if err != nil {
		_ = s.processor.DeleteFiles(fileUUID)
		return nil, fmt.Errorf("storing media record: %w", err)
	}

	variants, err := s.processor.CreateVariants(processed.FilePath, fileUUID, filename)
	if err != nil {
		// The original is stored; renditions are best-effort.
		s.logger.Warn("variant generation failed", "uuid", fileUUID, "error", err)
	}

	return &UploadResult{Media: media, Variants: variants}, nil
}

// UploadResume stores a résumé PDF. Only one résumé is kept; a new upload
// replaces any previous one.
func (s *MediaService) UploadResume(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > MaxResumeSize {
		return nil, fmt.Errorf("resume exceeds maximum size (%d bytes)", MaxResumeSize)
	}

	mimeType := headerMimeType(header)
	if mimeType != model.MimeTypePDF {
		return nil, fmt.Errorf("resume must be a PDF, got %s", mimeType)
	}

	fileUUID := uuid.New().String()
	filename := util.SanitizeFilename(header.Filename)

	saved, err := s.processor.SaveRaw(file, fileUUID, filename)
	if err != nil {
		return nil, fmt.Errorf("saving resume: %w", err)
	}
	if saved.MimeType != model.MimeTypePDF {
		_ = s.processor.DeleteFiles(fileUUID)
		return nil, fmt.Errorf("resume content is not a PDF")
	}

	// Replace any previously uploaded resume.
	if existing, err := s.queries.ListMedia(ctx); err == nil {
		for _, m := range existing {
			if m.Kind == model.MediaKindResume {
				if err := s.Delete(ctx, m.Uuid); err != nil {
					s.logger.Warn("removing previous resume failed", "uuid", m.Uuid, "error", err)
				}
			}
		}
	}

	media, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
		Uuid:      fileUUID,
		Kind:      model.MediaKindResume,
		Filename:  filename,
		MimeType:  model.MimeTypePDF,
		Size:      saved.Size,
		CreatedAt: time.Now(),
	})
	if err != nil {
		_ = s.processor.DeleteFiles(fileUUID)
		return nil, fmt.Errorf("storing media record: %w", err)
	}

	return &UploadResult{Media: media}, nil
}

// Delete removes an upload record and its files.
func (s *MediaService) Delete(ctx context.Context, uuid string) error {
	if _, err := s.queries.GetMediaByUUID(ctx, uuid); err != nil {
		return fmt.Errorf("looking up media: %w", err)
	}
	if err := s.queries.DeleteMedia(ctx, uuid); err != nil {
		return fmt.Errorf("deleting media record: %w", err)
	}
	if err := s.processor.DeleteFiles(uuid); err != nil {
		// Record is gone; leftover files are only a disk-space concern.
		s.logger.Warn("deleting media files failed", "uuid", uuid, "error", err)
	}
	return nil
}

// Usage aggregates stored bytes and file counts per media kind.
func (s *MediaService) Usage(ctx context.Context) (model.StorageUsage, error) {
	images, err := s.queries.SumMediaByKind(ctx, model.MediaKindImage)
	if err != nil {
		return model.StorageUsage{}, fmt.Errorf("summing image usage: %w", err)
	}
	resumes, err := s.queries.SumMediaByKind(ctx, model.MediaKindResume)
	if err != nil {
		return model.StorageUsage{}, fmt.Errorf("summing resume usage: %w", err)
	}

	return model.StorageUsage{
		TotalBytes:  images.Bytes + resumes.Bytes,
		TotalFiles:  images.Files + resumes.Files,
		ImageBytes:  images.Bytes,
		ImageFiles:  images.Files,
		ResumeBytes: resumes.Bytes,
		ResumeFiles: resumes.Files,
	}, nil
}

// URL returns the public path for an upload, optionally for a rendition.
func (s *MediaService) URL(media store.Media, variant string) string {
	if variant == "" || variant == "original" {
		return fmt.Sprintf("/uploads/originals/%s/%s", media.Uuid, media.Filename)
	}
	return fmt.Sprintf("/uploads/%s/%s/%s", variant, media.Uuid, media.Filename)
}

// headerMimeType resolves an upload's MIME type from the multipart header,
// falling back to the filename extension.
func headerMimeType(header *multipart.FileHeader) string {
	if mt := header.Header.Get("Content-Type"); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	case ".pdf":
		return model.MimeTypePDF
	default:
		return "application/octet-stream"
	}
}
