// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application.
package model

import "time"

// Page names editable through the inline editor.
const (
	PageAbout       = "about"
	PageResume      = "resume"
	PageHome        = "home"
	PageContactInfo = "contact_info"
)

// ContentPages lists every page name the content store accepts.
var ContentPages = []string{PageAbout, PageResume, PageHome, PageContactInfo}

// Content language codes (ISO 639-1).
const (
	LangEnglish = "en"
	LangFrench  = "fr"
)

// ContentLanguages lists every language code the content store accepts.
var ContentLanguages = []string{LangEnglish, LangFrench}

// FallbackHeader marks a content read response as the no-stored-document
// signal, so clients never have to guess whether {"useClientFallback": true}
// is the signal or a legitimately stored one-key document.
const FallbackHeader = "X-Use-Client-Fallback"

// IsValidPage reports whether name is one of the known content pages.
func IsValidPage(name string) bool {
	for _, p := range ContentPages {
		if p == name {
			return true
		}
	}
	return false
}

// IsValidLanguage reports whether code is one of the supported languages.
func IsValidLanguage(code string) bool {
	for _, l := range ContentLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// ContentDocument is the JSON-like value holding all editable content for one
// (page, language) pair. Values are maps, slices, strings, numbers and bools
// as produced by encoding/json; no fixed schema is enforced.
type ContentDocument = map[string]any

// ContentRecord is a stored content document with its identity and timestamps.
type ContentRecord struct {
	ID        int64           `json:"id"`
	Page      string          `json:"page"`
	Language  string          `json:"language"`
	Content   ContentDocument `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ImageRef is the canonical in-process form of an image value inside a
// content document. The wire accepts either a bare URL string or a
// {url, noBorder} object; writes always emit the object form.
type ImageRef struct {
	URL      string `json:"url"`
	NoBorder bool   `json:"noBorder"`
}

// ParseImageValue converts either wire form of an image value into an ImageRef.
// Returns false if v is neither a string nor an object with a string url.
func ParseImageValue(v any) (ImageRef, bool) {
	switch val := v.(type) {
	case string:
		return ImageRef{URL: val}, true
	case map[string]any:
		url, ok := val["url"].(string)
		if !ok {
			return ImageRef{}, false
		}
		noBorder, _ := val["noBorder"].(bool)
		return ImageRef{URL: url, NoBorder: noBorder}, true
	default:
		return ImageRef{}, false
	}
}

// Value returns the canonical wire form of the image reference.
func (r ImageRef) Value() map[string]any {
	return map[string]any{"url": r.URL, "noBorder": r.NoBorder}
}
