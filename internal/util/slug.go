// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug generation and upload filename sanitizing.
package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugRegex       = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug: lowercase, accents
// stripped, spaces as hyphens, everything else removed.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s contains only lowercase letters, digits and
// single interior hyphens.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

var filenameReplacer = strings.NewReplacer(
	" ", "-",
	"'", "",
	`"`, "",
	"<", "",
	">", "",
	"&", "",
	"#", "",
	"?", "",
	"%", "",
)

// SanitizeFilename strips path components and characters that are unsafe in
// stored filenames, and guarantees an extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = filenameReplacer.Replace(filename)
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}
	return filename
}
