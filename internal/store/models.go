// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// ContentDocument is a stored content document row. Content holds the JSON
// text of the document; decoding is the content service's concern.
type ContentDocument struct {
	ID        int64
	Page      string
	Language  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is a stored visitor comment row.
type Comment struct {
	ID        int64
	Page      string
	Author    string
	Body      string
	CreatedAt time.Time
}

// ContactMessage is a stored contact form submission row.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Body      string
	IsRead    bool
	CreatedAt time.Time
}

// Project is a stored portfolio project row.
type Project struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	RepoUrl     string
	DemoUrl     string
	ImageUrl    string
	Position    int64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt sql.NullTime
}

// Media is a stored upload row.
type Media struct {
	ID        int64
	Uuid      string
	Kind      string
	Filename  string
	MimeType  string
	Size      int64
	Width     int64
	Height    int64
	CreatedAt time.Time
}

// ApiToken is a stored API bearer token row.
type ApiToken struct {
	ID          int64
	Name        string
	TokenHash   string
	TokenPrefix string
	Permissions string
	LastUsedAt  sql.NullTime
	ExpiresAt   sql.NullTime
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is a stored event log row.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	TokenID   sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}
