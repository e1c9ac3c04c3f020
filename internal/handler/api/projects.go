// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"folio-go/internal/middleware"
	"folio-go/internal/model"
	"folio-go/internal/store"
	"folio-go/internal/util"
)

var (
	descriptionMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	descriptionPolicy   = bluemonday.UGCPolicy()
)

// renderDescription converts a project's markdown description to sanitized HTML.
func renderDescription(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return descriptionPolicy.Sanitize(buf.String())
}

// ProjectResponse represents a project in API responses. Description is the
// markdown source; DescriptionHTML is rendered and sanitized.
type ProjectResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	RepoURL         string     `json:"repo_url,omitempty"`
	DemoURL         string     `json:"demo_url,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	Position        int64      `json:"position"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	RepoURL     string `json:"repo_url"`
	DemoURL     string `json:"demo_url"`
	ImageURL    string `json:"image_url"`
	Position    int64  `json:"position"`
	Status      string `json:"status"`
}

// UpdateProjectRequest is the body of PUT /api/projects/{id}.
type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	RepoURL     *string `json:"repo_url,omitempty"`
	DemoURL     *string `json:"demo_url,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Position    *int64  `json:"position,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func storeProjectToResponse(p store.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		DescriptionHTML: renderDescription(p.Description),
		RepoURL:         p.RepoUrl,
		DemoURL:         p.DemoUrl,
		ImageURL:        p.ImageUrl,
		Position:        p.Position,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	return resp
}

// ListProjects handles GET /api/projects.
// Public requests see published projects only; authenticated requests see all.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var projects []store.Project
	var err error
	if middleware.GetToken(r) != nil {
		projects, err = h.queries.ListProjects(ctx)
	} else {
		projects, err = h.queries.ListPublishedProjects(ctx)
	}
	if err != nil {
		WriteInternalError(w, "Failed to list projects")
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, storeProjectToResponse(p))
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetProject handles GET /api/projects/{id}.
// Unpublished projects are visible to authenticated requests only.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (store.Project, error) {
		return h.queries.GetProject(r.Context(), id)
	})
	if !ok {
		return
	}

	if project.Status != model.ProjectStatusPublished && middleware.GetToken(r) == nil {
		WriteNotFound(w, "Project not found")
		return
	}

	WriteSuccess(w, storeProjectToResponse(project), nil)
}

// CreateProject handles POST /api/projects. Requires admin:dashboard.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	if req.Title == "" {
		WriteValidationError(w, "title is required")
		return
	}
	if req.Status == "" {
		req.Status = model.ProjectStatusDraft
	}
	if req.Status != model.ProjectStatusDraft && req.Status != model.ProjectStatusPublished {
		WriteValidationError(w, "status must be 'draft' or 'published'")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(slug) {
		WriteValidationError(w, "slug contains invalid characters")
		return
	}
	taken, err := h.queries.CountProjectsBySlug(ctx, slug)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if taken != 0 {
		WriteValidationError(w, "slug already exists")
		return
	}

	now := time.Now()
	params := store.CreateProjectParams{
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		RepoUrl:     req.RepoURL,
		DemoUrl:     req.DemoURL,
		ImageUrl:    req.ImageURL,
		Position:    req.Position,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Status == model.ProjectStatusPublished {
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}

	project, err := h.queries.CreateProject(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to create project")
		return
	}

	WriteCreated(w, storeProjectToResponse(project))
}

// UpdateProject handles PUT /api/projects/{id}. Requires admin:dashboard.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := requireEntityByID(w, r, "project", func(id int64) (store.Project, error) {
		return h.queries.GetProject(ctx, id)
	})
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	params := store.UpdateProjectParams{
		ID:          existing.ID,
		Title:       existing.Title,
		Slug:        existing.Slug,
		Description: existing.Description,
		RepoUrl:     existing.RepoUrl,
		DemoUrl:     existing.DemoUrl,
		ImageUrl:    existing.ImageUrl,
		Position:    existing.Position,
		Status:      existing.Status,
		UpdatedAt:   time.Now(),
		PublishedAt: existing.PublishedAt,
	}

	if req.Title != nil {
		if *req.Title == "" {
			WriteValidationError(w, "title cannot be empty")
			return
		}
		params.Title = *req.Title
	}
	if req.Slug != nil && *req.Slug != existing.Slug {
		if !util.IsValidSlug(*req.Slug) {
			WriteValidationError(w, "slug contains invalid characters")
			return
		}
		taken, err := h.queries.CountProjectsBySlug(ctx, *req.Slug)
		if err != nil {
			WriteInternalError(w, "Failed to check slug")
			return
		}
		if taken != 0 {
			WriteValidationError(w, "slug already exists")
			return
		}
		params.Slug = *req.Slug
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.RepoURL != nil {
		params.RepoUrl = *req.RepoURL
	}
	if req.DemoURL != nil {
		params.DemoUrl = *req.DemoURL
	}
	if req.ImageURL != nil {
		params.ImageUrl = *req.ImageURL
	}
	if req.Position != nil {
		params.Position = *req.Position
	}
	if req.Status != nil {
		if *req.Status != model.ProjectStatusDraft && *req.Status != model.ProjectStatusPublished {
			WriteValidationError(w, "status must be 'draft' or 'published'")
			return
		}
		params.Status = *req.Status
		if *req.Status == model.ProjectStatusPublished && !existing.PublishedAt.Valid {
			params.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
		}
	}

	project, err := h.queries.UpdateProject(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to update project")
		return
	}

	WriteSuccess(w, storeProjectToResponse(project), nil)
}

// DeleteProject handles DELETE /api/projects/{id}. Requires admin:dashboard.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project, ok := requireEntityByID(w, r, "project", func(id int64) (store.Project, error) {
		return h.queries.GetProject(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteProject(r.Context(), project.ID); err != nil {
		WriteInternalError(w, "Failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
