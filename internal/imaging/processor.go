// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes portfolio image uploads: EXIF auto-rotation,
// re-encoding without metadata, and resized renditions for thumbnails and
// page display.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"folio-go/internal/model"
)

// Result describes a stored image file.
type Result struct {
	Width    int
	Height   int
	MimeType string
	Size     int64
	FilePath string
}

// Variant describes one stored rendition of an image.
type Variant struct {
	Type     string
	Width    int
	Height   int
	Size     int64
	FilePath string
}

// Processor stores processed images under a base upload directory.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// ProcessImage decodes an upload, applies EXIF orientation, re-encodes it
// (dropping metadata), and saves the original under originals/{uuid}/.
func (p *Processor) ProcessImage(r io.Reader, uuid, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = applyOrientation(img, exifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	encoded, err := encode(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	path, err := p.save(filepath.Join("originals", uuid), filename, encoded)
	if err != nil {
		return nil, fmt.Errorf("saving original: %w", err)
	}

	return &Result{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: formatMimeType(format),
		Size:     int64(len(encoded)),
		FilePath: path,
	}, nil
}

// CreateVariants generates every configured rendition from a stored
// original. Renditions that would upscale the source are skipped;
// individual failures do not abort the rest.
func (p *Processor) CreateVariants(sourcePath, uuid, filename string) ([]Variant, error) {
	img, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source image: %w", err)
	}
	src := img.Bounds()

	var variants []Variant
	var failures []string
	for variantType, cfg := range model.ImageVariants {
		if src.Dx() <= cfg.Width && src.Dy() <= cfg.Height && !cfg.Crop {
			continue
		}

		var resized image.Image
		if cfg.Crop {
			resized = imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
		} else {
			resized = imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
		}

		encoded, err := encode(resized, formatFromFilename(filename), cfg.Quality)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", variantType, err))
			continue
		}
		path, err := p.save(filepath.Join(variantType, uuid), filename, encoded)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", variantType, err))
			continue
		}

		b := resized.Bounds()
		variants = append(variants, Variant{
			Type:     variantType,
			Width:    b.Dx(),
			Height:   b.Dy(),
			Size:     int64(len(encoded)),
			FilePath: path,
		})
	}

	if len(failures) > 0 && len(variants) == 0 {
		return nil, fmt.Errorf("all variants failed: %s", strings.Join(failures, "; "))
	}
	return variants, nil
}

// SaveRaw stores an upload without image processing, for non-image kinds
// such as résumé PDFs.
func (p *Processor) SaveRaw(r io.Reader, uuid, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	path, err := p.save(filepath.Join("originals", uuid), filename, data)
	if err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}

	return &Result{
		MimeType: p.DetectMimeType(data),
		Size:     int64(len(data)),
		FilePath: path,
	}, nil
}

// DetectMimeType sniffs the MIME type of upload data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// DeleteFiles removes the original and every rendition for an upload.
func (p *Processor) DeleteFiles(uuid string) error {
	dirs := []string{filepath.Join(p.uploadDir, "originals", uuid)}
	for variantType := range model.ImageVariants {
		dirs = append(dirs, filepath.Join(p.uploadDir, variantType, uuid))
	}
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", dir, err)
		}
	}
	return nil
}

// exifOrientation reads the EXIF orientation tag, defaulting to 1 (normal).
func exifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation normalizes an image per its EXIF orientation value.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		// WebP has no pure-Go encoder; it and everything else goes out
		// as JPEG.
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the image format from raw bytes. TIFF is rejected
// (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	default:
		return "jpeg"
	}
}

func formatMimeType(format string) string {
	switch format {
	case "jpeg":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	case "webp":
		return model.MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

// save writes data under uploadDir/subDir/filename, refusing any path that
// escapes the upload directory.
func (p *Processor) save(subDir, filename string, data []byte) (string, error) {
	safeFilename := filepath.Base(filename)
	if safeFilename == "." || safeFilename == ".." || safeFilename == "" {
		return "", fmt.Errorf("invalid filename")
	}

	cleanSubDir := filepath.Clean(subDir)
	if strings.Contains(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid subdirectory path")
	}

	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("resolving upload directory: %w", err)
	}
	absTarget := filepath.Join(absBase, cleanSubDir)
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(absTarget, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(absTarget, safeFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return path, nil
}
