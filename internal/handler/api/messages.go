// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"folio-go/internal/store"
)

// Contact form length limits.
const (
	maxMessageNameLen    = 100
	maxMessageSubjectLen = 200
	maxMessageBodyLen    = 5000
)

// MessageResponse represents a contact message in API responses.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMessageRequest is the body of POST /api/messages.
type CreateMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func storeMessageToResponse(m store.ContactMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Body:      m.Body,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// CreateMessage handles POST /api/messages. Public contact form endpoint.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)

	switch {
	case req.Name == "":
		WriteValidationError(w, "name is required")
		return
	case len(req.Name) > maxMessageNameLen:
		WriteValidationError(w, "name is too long")
		return
	case req.Email == "":
		WriteValidationError(w, "email is required")
		return
	case req.Body == "":
		WriteValidationError(w, "body is required")
		return
	case len(req.Subject) > maxMessageSubjectLen:
		WriteValidationError(w, "subject is too long")
		return
	case len(req.Body) > maxMessageBodyLen:
		WriteValidationError(w, "body is too long")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteValidationError(w, "email is not a valid address")
		return
	}

	msg, err := h.queries.CreateContactMessage(r.Context(), store.CreateContactMessageParams{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to store message")
		return
	}

	WriteCreated(w, storeMessageToResponse(msg))
}

// ListMessages handles GET /api/messages. Requires admin:dashboard.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.queries.ListContactMessages(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list messages")
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, storeMessageToResponse(m))
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// MarkMessageRead handles POST /api/messages/{id}/read. Requires admin:dashboard.
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	msg, ok := requireEntityByID(w, r, "message", func(id int64) (store.ContactMessage, error) {
		return h.queries.GetContactMessage(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.MarkContactMessageRead(r.Context(), msg.ID); err != nil {
		WriteInternalError(w, "Failed to update message")
		return
	}
	msg.IsRead = true

	WriteSuccess(w, storeMessageToResponse(msg), nil)
}

// DeleteMessage handles DELETE /api/messages/{id}. Requires admin:dashboard.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	msg, ok := requireEntityByID(w, r, "message", func(id int64) (store.ContactMessage, error) {
		return h.queries.GetContactMessage(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteContactMessage(r.Context(), msg.ID); err != nil {
		WriteInternalError(w, "Failed to delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
