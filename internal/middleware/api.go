// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for bearer-token
// authentication, permission checks, rate limiting, and security headers.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"folio-go/internal/model"
	"folio-go/internal/store"
)

// ContextKey is the type used for request context keys set by this package.
type ContextKey string

// ContextKeyToken is the context key holding the authenticated API token.
const ContextKeyToken ContextKey = "api_token"

// APIError is the JSON error envelope returned by API routes.
type APIError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response in the envelope form.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// validateToken parses the Authorization header and looks the token up by
// hash. If required is true and validation fails, an error response is
// written; the second return value reports whether that happened.
func validateToken(w http.ResponseWriter, r *http.Request, queries *store.Queries, required bool) (*store.ApiToken, bool) {
	refuse := func(message string) (*store.ApiToken, bool) {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", message, "")
			return nil, true
		}
		return nil, false
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return refuse("Missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return refuse("Invalid Authorization header format. Use: Bearer <token>")
	}
	raw := parts[1]
	if raw == "" {
		return refuse("Token is empty")
	}

	token, err := queries.GetAPITokenByHash(r.Context(), model.HashToken(raw))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return refuse("Invalid token")
		}
		if required {
			slog.Error("token lookup failed", "error", err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token", "")
			return nil, true
		}
		return nil, false
	}

	if !token.IsActive {
		return refuse("Token is inactive")
	}
	if token.ExpiresAt.Valid && time.Now().After(token.ExpiresAt.Time) {
		return refuse("Token has expired")
	}

	return &token, false
}

// TokenAuth requires a valid bearer token on every request and places it in
// the request context.
func TokenAuth(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errorWritten := validateToken(w, r, queries, true)
			if errorWritten {
				return
			}

			touchTokenLastUsed(queries, token.ID)
			serveWithToken(next, w, r, *token)
		})
	}
}

// OptionalTokenAuth places a valid bearer token in the request context when
// one is presented, but never rejects the request.
func OptionalTokenAuth(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := validateToken(w, r, queries, false)
			if token == nil {
				next.ServeHTTP(w, r)
				return
			}

			touchTokenLastUsed(queries, token.ID)
			serveWithToken(next, w, r, *token)
		})
	}
}

// GetToken retrieves the authenticated token from the request context, or
// nil when the request carried none.
func GetToken(r *http.Request) *store.ApiToken {
	token, ok := r.Context().Value(ContextKeyToken).(store.ApiToken)
	if !ok {
		return nil
	}
	return &token
}

// TokenPermissions parses the JSON permission list stored on a token.
func TokenPermissions(token *store.ApiToken) []string {
	if token == nil || token.Permissions == "" || token.Permissions == "[]" {
		return nil
	}
	var permissions []string
	_ = json.Unmarshal([]byte(token.Permissions), &permissions)
	return permissions
}

// touchTokenLastUsed stamps last_used_at in a background goroutine so the
// request path never waits on it.
func touchTokenLastUsed(queries *store.Queries, tokenID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queries.UpdateAPITokenLastUsed(ctx, store.UpdateAPITokenLastUsedParams{
			LastUsedAt: sql.NullTime{Time: time.Now(), Valid: true},
			ID:         tokenID,
		})
	}()
}

func serveWithToken(next http.Handler, w http.ResponseWriter, r *http.Request, token store.ApiToken) {
	ctx := context.WithValue(r.Context(), ContextKeyToken, token)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// RequirePermission requires one specific permission on the authenticated
// token. Must run after TokenAuth.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetToken(r)
			if token == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Token required", "")
				return
			}

			if !hasPermission(TokenPermissions(token), permission) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Token lacks required permission: "+permission, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission requires at least one of the given permissions. Must
// run after TokenAuth.
func RequireAnyPermission(requiredPerms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetToken(r)
			if token == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Token required", "")
				return
			}

			granted := TokenPermissions(token)
			for _, required := range requiredPerms {
				if hasPermission(granted, required) {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteAPIError(w, http.StatusForbidden, "forbidden", "Token lacks required permissions", "")
		})
	}
}

func hasPermission(granted []string, required string) bool {
	for _, p := range granted {
		if p == required {
			return true
		}
	}
	return false
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// TokenRateLimit rate limits requests per authenticated token.
// Unauthenticated requests pass through; pair with GlobalRateLimiter for
// those.
func TokenRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	cache := newLimiterCache[int64](rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetToken(r)
			if token == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !cache.get(token.ID).Allow() {
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimiter rate limits by client IP, for unauthenticated traffic.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
}

// NewGlobalRateLimiter creates a per-IP rate limiter.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		cache: newLimiterCache[string](rps, burst),
	}
}

// Middleware returns the per-IP rate limiting middleware.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.cache.get(ip).Allow() {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the client address behind common reverse-proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	return r.RemoteAddr
}
