// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"folio-go/internal/service"
)

// MediaResponse represents a stored upload in API responses.
type MediaResponse struct {
	UUID      string            `json:"uuid"`
	Kind      string            `json:"kind"`
	Filename  string            `json:"filename"`
	MimeType  string            `json:"mime_type"`
	Size      int64             `json:"size"`
	Width     int64             `json:"width,omitempty"`
	Height    int64             `json:"height,omitempty"`
	URL       string            `json:"url"`
	Variants  []VariantResponse `json:"variants,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// VariantResponse represents one generated rendition of an image.
type VariantResponse struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
	URL    string `json:"url"`
}

func (h *Handler) uploadToResponse(result *service.UploadResult) MediaResponse {
	m := result.Media
	resp := MediaResponse{
		UUID:      m.Uuid,
		Kind:      m.Kind,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Width:     m.Width,
		Height:    m.Height,
		URL:       h.media.URL(m, "original"),
		CreatedAt: m.CreatedAt,
	}
	for _, v := range result.Variants {
		resp.Variants = append(resp.Variants, VariantResponse{
			Type:   v.Type,
			Width:  v.Width,
			Height: v.Height,
			Size:   v.Size,
			URL:    h.media.URL(m, v.Type),
		})
	}
	return resp
}

// UploadImage handles POST /api/uploads/image. Requires admin:dashboard.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxImageSize); err != nil {
		WriteBadRequest(w, "Failed to parse upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.media.UploadImage(r.Context(), file, header)
	if err != nil {
		WriteValidationError(w, err.Error())
		return
	}

	WriteCreated(w, h.uploadToResponse(result))
}

// UploadResume handles POST /api/uploads/resume. Requires admin:dashboard.
func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxResumeSize); err != nil {
		WriteBadRequest(w, "Failed to parse upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.media.UploadResume(r.Context(), file, header)
	if err != nil {
		WriteValidationError(w, err.Error())
		return
	}

	WriteCreated(w, h.uploadToResponse(result))
}

// StorageUsage handles GET /api/uploads/usage. Requires admin:dashboard.
func (h *Handler) StorageUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.media.Usage(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to compute storage usage")
		return
	}

	WriteSuccess(w, usage, nil)
}
