// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"folio-go/internal/content"
	"folio-go/internal/model"
)

// ErrInvalidPayload indicates an import payload that is not a JSON object of
// the expected envelope shape.
var ErrInvalidPayload = errors.New("invalid import payload")

// Transcoder moves whole content documents in and out of the store,
// bypassing field addressing entirely.
type Transcoder struct {
	content *content.Service
	logger  *slog.Logger
}

// NewTranscoder creates a transcoder over the given content service.
func NewTranscoder(svc *content.Service, logger *slog.Logger) *Transcoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcoder{content: svc, logger: logger}
}

// Export fetches the full document for (page, language) and wraps it in the
// portable envelope. Propagates content.ErrNotFound when nothing is stored.
func (t *Transcoder) Export(ctx context.Context, page, language string) (*ExportFile, error) {
	doc, err := t.content.Get(ctx, page, language)
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Version:    ExportVersion,
		Page:       page,
		Language:   language,
		ExportedAt: time.Now().UTC(),
		Content:    doc,
	}, nil
}

// ExportToWriter streams the export as indented JSON.
func (t *Transcoder) ExportToWriter(ctx context.Context, page, language string, w io.Writer) error {
	file, err := t.Export(ctx, page, language)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	t.logger.Info("content exported", "page", page, "language", language)
	return nil
}

// Import validates that the payload parses as an object and performs a full
// replace of the (page, language) document. No partial merge; no schema
// validation of the document beyond "is a JSON object".
func (t *Transcoder) Import(ctx context.Context, page, language string, doc model.ContentDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: content must be a JSON object", ErrInvalidPayload)
	}

	if _, err := t.content.Replace(ctx, page, language, doc); err != nil {
		return err
	}

	t.logger.Info("content imported", "page", page, "language", language)
	return nil
}

// ImportFromReader decodes an export file (or a bare {content, language}
// body) and imports it into (page, language). The page and language given by
// the caller win over whatever the envelope claims.
func (t *Transcoder) ImportFromReader(ctx context.Context, page, language string, r io.Reader) error {
	var payload map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := validateEnvelope(payload); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, schemaErrorDetail(err))
	}

	doc, _ := payload["content"].(map[string]any)
	return t.Import(ctx, page, language, doc)
}
