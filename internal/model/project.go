// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Project statuses
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
)

// Project represents a portfolio project record.
type Project struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"` // markdown source
	RepoURL     string       `json:"repo_url,omitempty"`
	DemoURL     string       `json:"demo_url,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Position    int64        `json:"position"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	PublishedAt sql.NullTime `json:"published_at,omitempty"`
}

// IsPublished returns true if the project is published.
func (p *Project) IsPublished() bool {
	return p.Status == ProjectStatusPublished
}
