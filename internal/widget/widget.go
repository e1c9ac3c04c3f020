// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package widget provides the editable field bindings used by page views:
// text fields, ordered record lists, and image references. Each widget owns
// one slice of a content document addressed by a field path, renders its
// current value, and routes commits through an edit session so a page view
// never has more than one write in flight.
package widget

import (
	"context"

	"folio-go/internal/editsession"
)

// commitValue runs one activate / draft / commit cycle against the session.
// The session rejects it when editing is off, another field is active, or a
// previous commit has not completed yet.
func commitValue(ctx context.Context, s *editsession.Session, path string, current, next any) error {
	if err := s.ActivateField(path, current); err != nil {
		return err
	}
	if err := s.SetDraft(next); err != nil {
		s.Cancel()
		return err
	}
	return s.Commit(ctx)
}

// editable reports whether the session currently allows edit controls.
func editable(s *editsession.Session) bool {
	return s.State() != editsession.StateViewOnly
}
