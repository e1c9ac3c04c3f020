// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"

	"folio-go/internal/editsession"
)

// TextField binds a single string value to a field path. Typical lifecycle:
// Begin on click-to-edit, Input as the draft changes, then Blur to commit or
// Escape to discard.
type TextField struct {
	session *editsession.Session
	path    string
	value   string
	draft   string
	editing bool
}

// NewTextField binds a text widget to a field path with its currently
// displayed value.
func NewTextField(s *editsession.Session, path, value string) *TextField {
	return &TextField{session: s, path: path, value: value}
}

// Value returns the displayed (last known-good) value.
func (t *TextField) Value() string { return t.value }

// Path returns the bound field path.
func (t *TextField) Path() string { return t.path }

// Editable reports whether the widget should render an edit control.
func (t *TextField) Editable() bool { return editable(t.session) }

// Begin activates the field for editing, seeding the draft with the current
// value.
func (t *TextField) Begin() error {
	if err := t.session.ActivateField(t.path, t.value); err != nil {
		return err
	}
	t.draft = t.value
	t.editing = true
	return nil
}

// Input replaces the draft.
func (t *TextField) Input(s string) error {
	if !t.editing {
		return editsession.ErrNoActiveField
	}
	t.draft = s
	return t.session.SetDraft(s)
}

// Blur commits the draft. On success the displayed value becomes the draft;
// on failure it stays at the last known-good value and the error is
// returned.
func (t *TextField) Blur(ctx context.Context) error {
	if !t.editing {
		return editsession.ErrNoActiveField
	}
	t.editing = false

	draft := t.draft
	if err := t.session.Commit(ctx); err != nil {
		t.draft = t.value
		return err
	}
	t.value = draft
	return nil
}

// Escape discards the draft without committing.
func (t *TextField) Escape() {
	if !t.editing {
		return
	}
	t.editing = false
	t.draft = t.value
	t.session.Cancel()
}
