// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"
)

// API permissions
const (
	PermissionAdminDashboard = "admin:dashboard"
	PermissionWriteComments  = "write:comments"
	PermissionDeleteComments = "delete:comments"
)

// AllPermissions returns all available API permissions.
func AllPermissions() []string {
	return []string{
		PermissionAdminDashboard,
		PermissionWriteComments,
		PermissionDeleteComments,
	}
}

// IsValidPermission reports whether perm is a known API permission.
func IsValidPermission(perm string) bool {
	for _, p := range AllPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// APIToken represents a bearer token issued for the API. The raw token is
// shown once at creation; only its SHA-256 hash is stored.
type APIToken struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	TokenHash   string       `json:"-"` // Never expose hash in JSON
	TokenPrefix string       `json:"token_prefix"`
	Permissions string       `json:"-"` // JSON array stored as string
	LastUsedAt  sql.NullTime `json:"last_used_at,omitempty"`
	ExpiresAt   sql.NullTime `json:"expires_at,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// GenerateToken generates a new random bearer token.
// Returns the raw token (to show user once) and the token prefix.
func GenerateToken() (rawToken string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	rawToken = base64.URLEncoding.EncodeToString(bytes)
	prefix = rawToken[:8]

	return rawToken, prefix, nil
}

// HashToken creates a SHA-256 hash of the token for storage.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// GetPermissions parses the JSON permissions string into a slice.
func (t *APIToken) GetPermissions() []string {
	var perms []string
	if t.Permissions == "" || t.Permissions == "[]" {
		return perms
	}
	_ = json.Unmarshal([]byte(t.Permissions), &perms)
	return perms
}

// HasPermission checks if the token has a specific permission.
func (t *APIToken) HasPermission(perm string) bool {
	for _, p := range t.GetPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAnyPermission checks if the token has any of the specified permissions.
func (t *APIToken) HasAnyPermission(perms ...string) bool {
	tokenPerms := t.GetPermissions()
	for _, perm := range perms {
		for _, tp := range tokenPerms {
			if tp == perm {
				return true
			}
		}
	}
	return false
}

// IsExpired checks if the token has expired.
func (t *APIToken) IsExpired() bool {
	if !t.ExpiresAt.Valid {
		return false // No expiration set
	}
	return time.Now().After(t.ExpiresAt.Time)
}

// IsValid checks if the token is active and not expired.
func (t *APIToken) IsValid() bool {
	return t.IsActive && !t.IsExpired()
}

// PermissionsToJSON converts a slice of permissions to a JSON string.
func PermissionsToJSON(perms []string) string {
	if len(perms) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(perms)
	return string(data)
}
