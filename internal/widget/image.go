// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"io"

	"folio-go/internal/editsession"
	"folio-go/internal/model"
)

// ErrInvalidImageValue is returned when a bound document value is neither a
// URL string nor a {url, noBorder} object.
var ErrInvalidImageValue = errors.New("widget: invalid image value")

// Uploader stores raw image bytes somewhere reachable and returns the URL to
// reference them by.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// ImageField binds an image reference to a field path. It accepts both wire
// forms of an image value on read and always commits the canonical
// {url, noBorder} object form.
type ImageField struct {
	session  *editsession.Session
	path     string
	uploader Uploader
	ref      model.ImageRef
}

// NewImageField binds an image widget to a field path. The value may be a
// bare URL string or a {url, noBorder} object; nil binds an empty reference.
func NewImageField(s *editsession.Session, path string, uploader Uploader, value any) (*ImageField, error) {
	var ref model.ImageRef
	if value != nil {
		parsed, ok := model.ParseImageValue(value)
		if !ok {
			return nil, ErrInvalidImageValue
		}
		ref = parsed
	}
	return &ImageField{session: s, path: path, uploader: uploader, ref: ref}, nil
}

// Ref returns the displayed image reference.
func (f *ImageField) Ref() model.ImageRef { return f.ref }

// Editable reports whether the widget should render edit controls.
func (f *ImageField) Editable() bool { return editable(f.session) }

// SetURL commits a directly entered URL, keeping the current noBorder flag.
func (f *ImageField) SetURL(ctx context.Context, url string) error {
	return f.commitRef(ctx, model.ImageRef{URL: url, NoBorder: f.ref.NoBorder})
}

// SetNoBorder commits a changed border flag for the current URL.
func (f *ImageField) SetNoBorder(ctx context.Context, noBorder bool) error {
	return f.commitRef(ctx, model.ImageRef{URL: f.ref.URL, NoBorder: noBorder})
}

// Upload stores the raw image through the uploader and commits the returned
// URL.
func (f *ImageField) Upload(ctx context.Context, filename string, r io.Reader) error {
	if f.uploader == nil {
		return errors.New("widget: no uploader configured")
	}
	url, err := f.uploader.Upload(ctx, filename, r)
	if err != nil {
		return err
	}
	return f.SetURL(ctx, url)
}

// commitRef writes the canonical object form through the session. The
// displayed reference advances only on success.
func (f *ImageField) commitRef(ctx context.Context, next model.ImageRef) error {
	if err := commitValue(ctx, f.session, f.path, f.ref.Value(), next.Value()); err != nil {
		return err
	}
	f.ref = next
	return nil
}
