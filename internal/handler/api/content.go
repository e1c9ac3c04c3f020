// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"folio-go/internal/content"
	"folio-go/internal/model"
	"folio-go/internal/transfer"
)

// ReplaceContentRequest is the body of PUT /api/content/{page}.
type ReplaceContentRequest struct {
	Content  model.ContentDocument `json:"content"`
	Language string                `json:"language"`
}

// PatchFieldRequest is the body of PATCH /api/content/{page}/field.
type PatchFieldRequest struct {
	Field    string `json:"field"`
	Value    any    `json:"value"`
	Language string `json:"language"`
}

// ImportContentRequest is the body of POST /api/content/{page}/import.
type ImportContentRequest struct {
	Content  model.ContentDocument `json:"content"`
	Language string                `json:"language"`
}

// contentLanguage returns the effective language for a request body value,
// defaulting to English when the caller sends none.
func contentLanguage(language string) string {
	if language == "" {
		return model.LangEnglish
	}
	return language
}

// writeContentError maps content service errors onto the API error envelope.
func (h *Handler) writeContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidPage):
		WriteError(w, http.StatusBadRequest, "invalid_page", "Unknown content page", err.Error())
	case errors.Is(err, content.ErrInvalidLanguage):
		WriteError(w, http.StatusBadRequest, "invalid_language", "Unsupported language", err.Error())
	case errors.Is(err, content.ErrInvalidFieldPath):
		WriteError(w, http.StatusBadRequest, "invalid_field_path", "Invalid field path", err.Error())
	case errors.Is(err, content.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "No content stored", "")
	case errors.Is(err, content.ErrStoreUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "store_unavailable", "Content store unavailable", "")
	case errors.Is(err, transfer.ErrInvalidPayload):
		WriteError(w, http.StatusBadRequest, "bad_request", "Invalid import payload", err.Error())
	default:
		h.logger.Error("content request failed", "error", err)
		WriteInternalError(w, "Content request failed")
	}
}

// GetContent handles GET /api/content/{page}?lang=.
// An empty store is not an error: the response tells the client to render
// its compiled-in defaults.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	lang := contentLanguage(r.URL.Query().Get("lang"))

	doc, err := h.content.Get(r.Context(), page, lang)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			w.Header().Set(model.FallbackHeader, "true")
			WriteJSON(w, http.StatusOK, map[string]bool{"useClientFallback": true})
			return
		}
		h.writeContentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// ReplaceContent handles PUT /api/content/{page}.
func (h *Handler) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")

	var req ReplaceContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Content == nil {
		WriteBadRequest(w, "Missing content")
		return
	}
	lang := contentLanguage(req.Language)

	if _, err := h.content.Replace(r.Context(), page, lang, req.Content); err != nil {
		h.writeContentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"page":     page,
		"language": lang,
	})
}

// PatchContentField handles PATCH /api/content/{page}/field.
// The response echoes the value as persisted, which may differ from the
// submitted one after sanitization.
func (h *Handler) PatchContentField(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")

	var req PatchFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Field == "" {
		WriteBadRequest(w, "Missing field path")
		return
	}
	lang := contentLanguage(req.Language)

	persisted, err := h.content.PatchField(r.Context(), page, lang, req.Field, req.Value)
	if err != nil {
		h.writeContentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"field":   req.Field,
		"value":   persisted,
	})
}

// ExportContent handles GET /api/content/{page}/export?lang=.
func (h *Handler) ExportContent(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	lang := contentLanguage(r.URL.Query().Get("lang"))

	export, err := h.transcoder.Export(r.Context(), page, lang)
	if err != nil {
		h.writeContentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(export)
}

// ImportContent handles POST /api/content/{page}/import.
// Import is a full replace of the stored document.
func (h *Handler) ImportContent(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")

	var req ImportContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	lang := contentLanguage(req.Language)

	if err := h.transcoder.Import(r.Context(), page, lang, req.Content); err != nil {
		h.writeContentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
