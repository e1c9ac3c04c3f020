// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements the per-(page, language) document store behind
// the inline editor: whole-document replace, field-path patch, and the
// read-through cache in front of both.
package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"folio-go/internal/cache"
	"folio-go/internal/fieldpath"
	"folio-go/internal/model"
	"folio-go/internal/store"
)

// Error taxonomy for content operations.
var (
	// ErrInvalidPage indicates a page name outside the allowed set.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidLanguage indicates a language code outside the allowed set.
	ErrInvalidLanguage = errors.New("invalid language")
	// ErrInvalidFieldPath indicates an unparseable path or one addressing a
	// container of the wrong kind.
	ErrInvalidFieldPath = fieldpath.ErrInvalidPath
	// ErrNotFound indicates no document has been written for the pair yet.
	// Callers apply compiled-in defaults; it is not an end-user error.
	ErrNotFound = errors.New("content not found")
	// ErrStoreUnavailable indicates the underlying persistence failed.
	ErrStoreUnavailable = errors.New("content store unavailable")
)

// DefaultCacheTTL is the default lifetime of cached documents.
const DefaultCacheTTL = time.Hour

// Service coordinates reads and writes of content documents.
type Service struct {
	queries   *store.Queries
	cache     cache.Cache
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	cacheTTL  time.Duration
}

// NewService creates a content service. The cache may be nil to disable
// read-through caching.
func NewService(db *sql.DB, c cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		queries:   store.New(db),
		cache:     c,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
		cacheTTL:  DefaultCacheTTL,
	}
}

// validatePair rejects unknown pages and languages before any mutation.
func validatePair(page, language string) error {
	if !model.IsValidPage(page) {
		return fmt.Errorf("%w: %q", ErrInvalidPage, page)
	}
	if !model.IsValidLanguage(language) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, language)
	}
	return nil
}

func cacheKey(page, language string) string {
	return "content:" + page + ":" + language
}

// Get returns the stored document for a (page, language) pair.
// Returns ErrNotFound when nothing has been written yet; the caller is
// expected to fall back to compiled-in defaults, not surface an error.
func (s *Service) Get(ctx context.Context, page, language string) (model.ContentDocument, error) {
	if err := validatePair(page, language); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey(page, language)); err == nil {
			var doc model.ContentDocument
			if err := json.Unmarshal(data, &doc); err == nil {
				return doc, nil
			}
			// Corrupt cache entry: drop it and fall through to the store.
			_ = s.cache.Delete(ctx, cacheKey(page, language))
		}
	}

	row, err := s.queries.GetContentDocument(ctx, store.GetContentDocumentParams{
		Page: page, Language: language,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var doc model.ContentDocument
	if err := json.Unmarshal([]byte(row.Content), &doc); err != nil {
		return nil, fmt.Errorf("decoding stored document %s/%s: %w", page, language, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(doc); err == nil {
			_ = s.cache.Set(ctx, cacheKey(page, language), data, s.cacheTTL)
		}
	}

	return doc, nil
}

// Replace upserts the full document for a (page, language) pair, stamping the
// updated-at timestamp. Last write wins; no merge. String values are passed
// through the HTML sanitizer on the way in.
func (s *Service) Replace(ctx context.Context, page, language string, doc model.ContentDocument) (model.ContentRecord, error) {
	if err := validatePair(page, language); err != nil {
		return model.ContentRecord{}, err
	}
	if doc == nil {
		doc = model.ContentDocument{}
	}

	sanitized := s.sanitizeValue(doc).(map[string]any)

	data, err := json.Marshal(sanitized)
	if err != nil {
		return model.ContentRecord{}, fmt.Errorf("encoding document %s/%s: %w", page, language, err)
	}

	now := time.Now().UTC()
	row, err := s.queries.UpsertContentDocument(ctx, store.UpsertContentDocumentParams{
		Page:      page,
		Language:  language,
		Content:   string(data),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.ContentRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.invalidate(ctx, page, language)
	s.logger.Info("content document replaced", "page", page, "language", language)

	return model.ContentRecord{
		ID:        row.ID,
		Page:      row.Page,
		Language:  row.Language,
		Content:   sanitized,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// PatchField sets a single field-path location and re-persists the whole
// mutated document. This is a read-modify-write cycle, not a targeted column
// update: concurrent patches from two editors racing on different fields of
// the same document can lose one editor's change (last replace wins). Callers
// needing concurrent multi-field edits must serialize on the client.
func (s *Service) PatchField(ctx context.Context, page, language, field string, value any) (any, error) {
	if err := validatePair(page, language); err != nil {
		return nil, err
	}

	path, err := fieldpath.Parse(field)
	if err != nil {
		return nil, err
	}

	doc, err := s.Get(ctx, page, language)
	if errors.Is(err, ErrNotFound) {
		doc = model.ContentDocument{}
	} else if err != nil {
		return nil, err
	}

	value = s.sanitizeValue(value)
	if err := fieldpath.Set(doc, path, value); err != nil {
		return nil, err
	}

	if _, err := s.Replace(ctx, page, language, doc); err != nil {
		return nil, err
	}

	return value, nil
}

// invalidate drops the cached document after a write.
func (s *Service) invalidate(ctx context.Context, page, language string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(page, language)); err != nil {
		s.logger.Warn("content cache invalidation failed",
			"page", page, "language", language, "error", err)
	}
}

// sanitizeValue walks a JSON-like value and sanitizes every string with the
// UGC policy. Plain text passes through unchanged; markup is stripped of
// anything unsafe.
func (s *Service) sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return s.sanitizer.Sanitize(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = s.sanitizeValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = s.sanitizeValue(child)
		}
		return out
	default:
		return v
	}
}
