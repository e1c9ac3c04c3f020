// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"folio-go/internal/model"
	"folio-go/internal/store"
)

// Comment length limits, matching the public form.
const (
	maxCommentAuthorLen = 100
	maxCommentBodyLen   = 2000
)

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID        int64     `json:"id"`
	Page      string    `json:"page"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest is the body of POST /api/comments.
type CreateCommentRequest struct {
	Page   string `json:"page"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

func storeCommentToResponse(c store.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Page:      c.Page,
		Author:    c.Author,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// CreateComment handles POST /api/comments. Requires write:comments.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	req.Author = strings.TrimSpace(req.Author)
	req.Body = strings.TrimSpace(req.Body)

	if !model.IsValidPage(req.Page) {
		WriteError(w, http.StatusBadRequest, "invalid_page", "Unknown content page", req.Page)
		return
	}
	switch {
	case req.Author == "":
		WriteValidationError(w, "author is required")
		return
	case len(req.Author) > maxCommentAuthorLen:
		WriteValidationError(w, "author is too long")
		return
	case req.Body == "":
		WriteValidationError(w, "body is required")
		return
	case len(req.Body) > maxCommentBodyLen:
		WriteValidationError(w, "body is too long")
		return
	}

	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		Page:      req.Page,
		Author:    req.Author,
		Body:      req.Body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to create comment")
		return
	}

	WriteCreated(w, storeCommentToResponse(comment))
}

// ListComments handles GET /api/comments?page=. Public.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if !model.IsValidPage(page) {
		WriteError(w, http.StatusBadRequest, "invalid_page", "Unknown content page", page)
		return
	}

	comments, err := h.queries.ListCommentsByPage(r.Context(), page)
	if err != nil {
		WriteInternalError(w, "Failed to list comments")
		return
	}

	responses := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, storeCommentToResponse(c))
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// DeleteComment handles DELETE /api/comments/{id}. Requires delete:comments.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := requireEntityByID(w, r, "comment", func(id int64) (store.Comment, error) {
		return h.queries.GetComment(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteComment(r.Context(), comment.ID); err != nil {
		WriteInternalError(w, "Failed to delete comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
