// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx the query layer needs.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries exposes typed database operations.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// --- Content documents ---

const getContentDocument = `
SELECT id, page, language, content, created_at, updated_at
FROM content_documents
WHERE page = ? AND language = ?
`

// GetContentDocumentParams identifies one (page, language) document.
type GetContentDocumentParams struct {
	Page     string
	Language string
}

// GetContentDocument returns the stored document for a (page, language) pair.
// Returns sql.ErrNoRows when no document has been written yet.
func (q *Queries) GetContentDocument(ctx context.Context, arg GetContentDocumentParams) (ContentDocument, error) {
	row := q.db.QueryRowContext(ctx, getContentDocument, arg.Page, arg.Language)
	var d ContentDocument
	err := row.Scan(&d.ID, &d.Page, &d.Language, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

const upsertContentDocument = `
INSERT INTO content_documents (page, language, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (page, language) DO UPDATE SET
    content = excluded.content,
    updated_at = excluded.updated_at
RETURNING id, page, language, content, created_at, updated_at
`

// UpsertContentDocumentParams carries a full document write.
type UpsertContentDocumentParams struct {
	Page      string
	Language  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertContentDocument inserts or replaces the whole document for a
// (page, language) pair. Last write wins; no merge.
func (q *Queries) UpsertContentDocument(ctx context.Context, arg UpsertContentDocumentParams) (ContentDocument, error) {
	row := q.db.QueryRowContext(ctx, upsertContentDocument,
		arg.Page, arg.Language, arg.Content, arg.CreatedAt, arg.UpdatedAt)
	var d ContentDocument
	err := row.Scan(&d.ID, &d.Page, &d.Language, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

const listContentDocuments = `
SELECT id, page, language, content, created_at, updated_at
FROM content_documents
ORDER BY page, language
`

// ListContentDocuments returns every stored document.
func (q *Queries) ListContentDocuments(ctx context.Context) ([]ContentDocument, error) {
	rows, err := q.db.QueryContext(ctx, listContentDocuments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []ContentDocument
	for rows.Next() {
		var d ContentDocument
		if err := rows.Scan(&d.ID, &d.Page, &d.Language, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// --- Comments ---

const createComment = `
INSERT INTO comments (page, author, body, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, page, author, body, created_at
`

// CreateCommentParams carries a new comment.
type CreateCommentParams struct {
	Page      string
	Author    string
	Body      string
	CreatedAt time.Time
}

// CreateComment stores a visitor comment.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment, arg.Page, arg.Author, arg.Body, arg.CreatedAt)
	var c Comment
	err := row.Scan(&c.ID, &c.Page, &c.Author, &c.Body, &c.CreatedAt)
	return c, err
}

const getComment = `
SELECT id, page, author, body, created_at FROM comments WHERE id = ?
`

// GetComment returns one comment by ID.
func (q *Queries) GetComment(ctx context.Context, id int64) (Comment, error) {
	row := q.db.QueryRowContext(ctx, getComment, id)
	var c Comment
	err := row.Scan(&c.ID, &c.Page, &c.Author, &c.Body, &c.CreatedAt)
	return c, err
}

const listCommentsByPage = `
SELECT id, page, author, body, created_at
FROM comments
WHERE page = ?
ORDER BY created_at DESC
`

// ListCommentsByPage returns all comments for a page, newest first.
func (q *Queries) ListCommentsByPage(ctx context.Context, page string) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByPage, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Page, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const deleteComment = `DELETE FROM comments WHERE id = ?`

// DeleteComment removes a comment.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteComment, id)
	return err
}

// --- Contact messages ---

const createContactMessage = `
INSERT INTO contact_messages (name, email, subject, body, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, email, subject, body, is_read, created_at
`

// CreateContactMessageParams carries a new contact form submission.
type CreateContactMessageParams struct {
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// CreateContactMessage stores a contact form submission.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, createContactMessage,
		arg.Name, arg.Email, arg.Subject, arg.Body, arg.CreatedAt)
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt)
	return m, err
}

const getContactMessage = `
SELECT id, name, email, subject, body, is_read, created_at
FROM contact_messages WHERE id = ?
`

// GetContactMessage returns one message by ID.
func (q *Queries) GetContactMessage(ctx context.Context, id int64) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, getContactMessage, id)
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt)
	return m, err
}

const listContactMessages = `
SELECT id, name, email, subject, body, is_read, created_at
FROM contact_messages
ORDER BY created_at DESC
`

// ListContactMessages returns all messages, newest first.
func (q *Queries) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

const markContactMessageRead = `UPDATE contact_messages SET is_read = 1 WHERE id = ?`

// MarkContactMessageRead flags a message as read.
func (q *Queries) MarkContactMessageRead(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markContactMessageRead, id)
	return err
}

const deleteContactMessage = `DELETE FROM contact_messages WHERE id = ?`

// DeleteContactMessage removes a message.
func (q *Queries) DeleteContactMessage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteContactMessage, id)
	return err
}

// --- Projects ---

const createProject = `
INSERT INTO projects (title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at
`

// CreateProjectParams carries a new project record.
type CreateProjectParams struct {
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

// CreateProject stores a new project.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRowContext(ctx, createProject,
		arg.Title, arg.Slug, arg.Description, arg.RepoUrl, arg.DemoUrl, arg.ImageUrl,
		arg.Position, arg.Status, arg.CreatedAt, arg.UpdatedAt, arg.PublishedAt)
	return scanProject(row)
}

const getProject = `
SELECT id, title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at
FROM projects WHERE id = ?
`

// GetProject returns one project by ID.
func (q *Queries) GetProject(ctx context.Context, id int64) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProject, id))
}

const getProjectBySlug = `
SELECT id, title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at
FROM projects WHERE slug = ?
`

// GetProjectBySlug returns one project by slug.
func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProjectBySlug, slug))
}

const countProjectsBySlug = `SELECT COUNT(*) FROM projects WHERE slug = ?`

// CountProjectsBySlug returns how many projects use the given slug.
func (q *Queries) CountProjectsBySlug(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countProjectsBySlug, slug).Scan(&n)
	return n, err
}

const listProjects = `
SELECT id, title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at
FROM projects
ORDER BY position, id
`

// ListProjects returns every project ordered by position.
func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	return q.queryProjects(ctx, listProjects)
}

const listPublishedProjects = `
SELECT id, title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at
FROM projects
WHERE status = 'published'
ORDER BY position, id
`

// ListPublishedProjects returns published projects ordered by position.
func (q *Queries) ListPublishedProjects(ctx context.Context) ([]Project, error) {
	return q.queryProjects(ctx, listPublishedProjects)
}

const updateProject = `
UPDATE projects
SET title = ?, slug = ?, description = ?, repo_url = ?, demo_url = ?, image_url = ?,
    position = ?, status = ?, updated_at = ?, published_at = ?
WHERE id = ?
RETURNING id, title, slug, description, repo_url, demo_url, image_url, position, status, created_at, updated_at, published_at
`

// UpdateProjectParams carries a full project update.
type UpdateProjectParams struct {
	Title       string
	Slug        string
	Description string
	RepoUrl     string
	DemoUrl     string
	ImageUrl    string
	Position    int64
	Status      string
	UpdatedAt   time.Time
	PublishedAt sql.NullTime
	ID          int64
}

// UpdateProject replaces a project record.
func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRowContext(ctx, updateProject,
		arg.Title, arg.Slug, arg.Description, arg.RepoUrl, arg.DemoUrl, arg.ImageUrl,
		arg.Position, arg.Status, arg.UpdatedAt, arg.PublishedAt, arg.ID)
	return scanProject(row)
}

const deleteProject = `DELETE FROM projects WHERE id = ?`

// DeleteProject removes a project.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteProject, id)
	return err
}

func scanProject(row *sql.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.RepoUrl, &p.DemoUrl,
		&p.ImageUrl, &p.Position, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	return p, err
}

func (q *Queries) queryProjects(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.RepoUrl, &p.DemoUrl,
			&p.ImageUrl, &p.Position, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// --- Media ---

const createMedia = `
INSERT INTO media (uuid, kind, filename, mime_type, size, width, height, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, uuid, kind, filename, mime_type, size, width, height, created_at
`

// CreateMediaParams carries a new upload record.
type CreateMediaParams struct {
	Uuid      string
	Kind      string
	Filename  string
	MimeType  string
	Size      int64
	Width     int64
	Height    int64
	CreatedAt time.Time
}

// CreateMedia stores an upload record.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	row := q.db.QueryRowContext(ctx, createMedia,
		arg.Uuid, arg.Kind, arg.Filename, arg.MimeType, arg.Size, arg.Width, arg.Height, arg.CreatedAt)
	var m Media
	err := row.Scan(&m.ID, &m.Uuid, &m.Kind, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.CreatedAt)
	return m, err
}

const getMediaByUUID = `
SELECT id, uuid, kind, filename, mime_type, size, width, height, created_at
FROM media WHERE uuid = ?
`

// GetMediaByUUID returns one upload record by UUID.
func (q *Queries) GetMediaByUUID(ctx context.Context, uuid string) (Media, error) {
	row := q.db.QueryRowContext(ctx, getMediaByUUID, uuid)
	var m Media
	err := row.Scan(&m.ID, &m.Uuid, &m.Kind, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.CreatedAt)
	return m, err
}

const listMedia = `
SELECT id, uuid, kind, filename, mime_type, size, width, height, created_at
FROM media
ORDER BY created_at DESC
`

// ListMedia returns all upload records, newest first.
func (q *Queries) ListMedia(ctx context.Context) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx, listMedia)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.Uuid, &m.Kind, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

const deleteMedia = `DELETE FROM media WHERE uuid = ?`

// DeleteMedia removes an upload record.
func (q *Queries) DeleteMedia(ctx context.Context, uuid string) error {
	_, err := q.db.ExecContext(ctx, deleteMedia, uuid)
	return err
}

const sumMediaByKind = `
SELECT COALESCE(SUM(size), 0), COUNT(*) FROM media WHERE kind = ?
`

// SumMediaByKindRow holds aggregate size/count for one media kind.
type SumMediaByKindRow struct {
	Bytes int64
	Files int64
}

// SumMediaByKind returns total bytes and file count for a media kind.
func (q *Queries) SumMediaByKind(ctx context.Context, kind string) (SumMediaByKindRow, error) {
	var r SumMediaByKindRow
	err := q.db.QueryRowContext(ctx, sumMediaByKind, kind).Scan(&r.Bytes, &r.Files)
	return r, err
}

// --- API tokens ---

const createAPIToken = `
INSERT INTO api_tokens (name, token_hash, token_prefix, permissions, expires_at, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, token_hash, token_prefix, permissions, last_used_at, expires_at, is_active, created_at, updated_at
`

// CreateAPITokenParams carries a new API token record.
type CreateAPITokenParams struct {
	Name        string
	TokenHash   string
	TokenPrefix string
	Permissions string
	ExpiresAt   sql.NullTime
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateAPIToken stores a new token record.
func (q *Queries) CreateAPIToken(ctx context.Context, arg CreateAPITokenParams) (ApiToken, error) {
	row := q.db.QueryRowContext(ctx, createAPIToken,
		arg.Name, arg.TokenHash, arg.TokenPrefix, arg.Permissions,
		arg.ExpiresAt, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	return scanAPIToken(row)
}

const getAPITokenByHash = `
SELECT id, name, token_hash, token_prefix, permissions, last_used_at, expires_at, is_active, created_at, updated_at
FROM api_tokens WHERE token_hash = ?
`

// GetAPITokenByHash looks up a token by its SHA-256 hash.
func (q *Queries) GetAPITokenByHash(ctx context.Context, hash string) (ApiToken, error) {
	return scanAPIToken(q.db.QueryRowContext(ctx, getAPITokenByHash, hash))
}

const updateAPITokenLastUsed = `UPDATE api_tokens SET last_used_at = ? WHERE id = ?`

// UpdateAPITokenLastUsedParams carries a last-used timestamp update.
type UpdateAPITokenLastUsedParams struct {
	LastUsedAt sql.NullTime
	ID         int64
}

// UpdateAPITokenLastUsed stamps the token's last use.
func (q *Queries) UpdateAPITokenLastUsed(ctx context.Context, arg UpdateAPITokenLastUsedParams) error {
	_, err := q.db.ExecContext(ctx, updateAPITokenLastUsed, arg.LastUsedAt, arg.ID)
	return err
}

const deactivateAPIToken = `UPDATE api_tokens SET is_active = 0, updated_at = ? WHERE id = ?`

// DeactivateAPITokenParams carries a token revocation.
type DeactivateAPITokenParams struct {
	UpdatedAt time.Time
	ID        int64
}

// DeactivateAPIToken revokes a token.
func (q *Queries) DeactivateAPIToken(ctx context.Context, arg DeactivateAPITokenParams) error {
	_, err := q.db.ExecContext(ctx, deactivateAPIToken, arg.UpdatedAt, arg.ID)
	return err
}

func scanAPIToken(row *sql.Row) (ApiToken, error) {
	var t ApiToken
	err := row.Scan(&t.ID, &t.Name, &t.TokenHash, &t.TokenPrefix, &t.Permissions,
		&t.LastUsedAt, &t.ExpiresAt, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// --- Events ---

const createEvent = `
INSERT INTO events (level, category, message, token_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, level, category, message, token_id, metadata, created_at
`

// CreateEventParams carries a new event log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	TokenID   sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent stores an event log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.Level, arg.Category, arg.Message, arg.TokenID, arg.Metadata, arg.CreatedAt)
	var e Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.TokenID, &e.Metadata, &e.CreatedAt)
	return e, err
}

const listRecentEvents = `
SELECT id, level, category, message, token_id, metadata, created_at
FROM events
ORDER BY created_at DESC
LIMIT ?
`

// ListRecentEvents returns the newest events up to limit.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.TokenID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

// DeleteEventsBefore prunes events older than the cutoff.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
