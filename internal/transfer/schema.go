// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer provides import/export of content documents as portable
// JSON files.
package transfer

import (
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"folio-go/internal/model"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportFile is the portable envelope written by Export and accepted by
// Import. Content is the document itself and is deliberately schema-free.
type ExportFile struct {
	Version    string                `json:"version"`
	Page       string                `json:"page"`
	Language   string                `json:"language"`
	ExportedAt time.Time             `json:"exported_at"`
	Content    model.ContentDocument `json:"content"`
}

// Filename returns the download filename for the export, "{page}-{language}.json".
func (f *ExportFile) Filename() string {
	return f.Page + "-" + f.Language + ".json"
}

// envelopeSchema validates the envelope shape only. The content document has
// no schema beyond "is a JSON object".
const envelopeSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"version": {"type": "string"},
		"page": {"type": "string"},
		"language": {"type": "string"},
		"exported_at": {"type": "string"},
		"content": {"type": "object"}
	}
}`

var compiledEnvelopeSchema = jsonschema.MustCompileString("envelope.json", envelopeSchema)

// validateEnvelope checks a decoded import payload against the envelope schema.
func validateEnvelope(payload map[string]any) error {
	return compiledEnvelopeSchema.Validate(payload)
}

// schemaErrorDetail flattens a jsonschema validation error into one line.
func schemaErrorDetail(err error) string {
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		leaf := ve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
		if loc == "" {
			loc = "payload"
		}
		return loc + ": " + leaf.Message
	}
	return err.Error()
}
