// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client is the Go client for the content API. Page views, edit
// sessions and widgets talk to the server exclusively through it: reads fall
// back to compiled-in defaults when the server has no document yet, writes
// carry the bearer token, and API errors come back decoded from the server's
// error envelope.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"folio-go/internal/model"
	"folio-go/internal/transfer"
)

// APIError is a decoded server error envelope.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
}

// Error codes returned by the content API.
const (
	CodeInvalidPage      = "invalid_page"
	CodeInvalidLanguage  = "invalid_language"
	CodeInvalidFieldPath = "invalid_field_path"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
)

// Client talks to one content API server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API at baseURL. The token may be empty for
// read-only use.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches the document for (page, language). When the server has no
// stored document it answers {"useClientFallback": true} with
// model.FallbackHeader set; the header, not the body, decides, so a stored
// document that happens to contain a useClientFallback key still decodes as
// content. Callers render their compiled-in defaults on fallback=true.
func (c *Client) Get(ctx context.Context, page, language string) (doc model.ContentDocument, fallback bool, err error) {
	u := fmt.Sprintf("%s/api/content/%s?lang=%s", c.baseURL, url.PathEscape(page), url.QueryEscape(language))
	body, header, err := c.doHeaders(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	if header.Get(model.FallbackHeader) == "true" {
		return nil, true, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("decoding content: %w", err)
	}
	return payload, false, nil
}

// Replace stores a whole document for (page, language).
func (c *Client) Replace(ctx context.Context, page, language string, doc model.ContentDocument) error {
	u := fmt.Sprintf("%s/api/content/%s", c.baseURL, url.PathEscape(page))
	req := map[string]any{"content": doc, "language": language}
	_, err := c.do(ctx, http.MethodPut, u, req)
	return err
}

// PatchField updates one field addressed by path inside the stored document
// and returns the value the server persisted.
func (c *Client) PatchField(ctx context.Context, page, language, field string, value any) (any, error) {
	u := fmt.Sprintf("%s/api/content/%s/field", c.baseURL, url.PathEscape(page))
	req := map[string]any{"field": field, "value": value, "language": language}
	body, err := c.do(ctx, http.MethodPatch, u, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success bool   `json:"success"`
		Field   string `json:"field"`
		Value   any    `json:"value"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding patch response: %w", err)
	}
	return resp.Value, nil
}

// Export downloads the export envelope for (page, language).
func (c *Client) Export(ctx context.Context, page, language string) (*transfer.ExportFile, error) {
	u := fmt.Sprintf("%s/api/content/%s/export?lang=%s", c.baseURL, url.PathEscape(page), url.QueryEscape(language))
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var file transfer.ExportFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	return &file, nil
}

// Import uploads a whole document, replacing whatever (page, language)
// currently holds.
func (c *Client) Import(ctx context.Context, page, language string, doc model.ContentDocument) error {
	u := fmt.Sprintf("%s/api/content/%s/import", c.baseURL, url.PathEscape(page))
	req := map[string]any{"content": doc, "language": language}
	_, err := c.do(ctx, http.MethodPost, u, req)
	return err
}

// CommitFunc adapts the client to the edit session's commit signature.
func (c *Client) CommitFunc() func(ctx context.Context, page, language, field string, value any) error {
	return func(ctx context.Context, page, language, field string, value any) error {
		_, err := c.PatchField(ctx, page, language, field, value)
		return err
	}
}

// do sends one request and returns the response body, decoding the error
// envelope on non-2xx statuses.
func (c *Client) do(ctx context.Context, method, u string, payload any) ([]byte, error) {
	body, _, err := c.doHeaders(ctx, method, u, payload)
	return body, err
}

// doHeaders is do plus the response headers, for callers that read
// server-set markers such as the content fallback header.
func (c *Client) doHeaders(ctx context.Context, method, u string, payload any) ([]byte, http.Header, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr := envelope.Error
		apiErr.Status = status
		return &apiErr
	}
	return &APIError{Status: status, Code: "unknown", Message: http.StatusText(status)}
}
