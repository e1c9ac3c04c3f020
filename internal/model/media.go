// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Media kinds
const (
	MediaKindImage  = "image"
	MediaKindResume = "resume"
)

// Media represents an uploaded file (portfolio image or résumé PDF).
type Media struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Width     int64     `json:"width,omitempty"`
	Height    int64     `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Supported upload MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

// IsSupportedImageMimeType reports whether a MIME type is accepted for
// portfolio image uploads.
func IsSupportedImageMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// ImageVariantConfig describes one resized rendition of an uploaded image.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool
}

// ImageVariants are the renditions generated for every portfolio image
// upload. Thumbnails crop to a square; display fits within bounds.
var ImageVariants = map[string]ImageVariantConfig{
	"thumbnail": {Width: 320, Height: 320, Quality: 85, Crop: true},
	"display":   {Width: 1600, Height: 1200, Quality: 90, Crop: false},
}

// StorageUsage summarizes disk consumption of uploaded media.
type StorageUsage struct {
	TotalBytes  int64 `json:"total_bytes"`
	TotalFiles  int64 `json:"total_files"`
	ImageBytes  int64 `json:"image_bytes"`
	ImageFiles  int64 `json:"image_files"`
	ResumeBytes int64 `json:"resume_bytes"`
	ResumeFiles int64 `json:"resume_files"`
}
