// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editsession tracks the inline-editing lifecycle for a single page
// view: whether the viewer may edit, whether editing is toggled on, and which
// field (if any) is currently under modification. Sessions are process-local
// and never persisted; callers create one per page view and discard it on
// navigation.
package editsession

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
)

// State is the editing state of a session.
type State int

const (
	// StateViewOnly renders every field as static content. Default for
	// unauthorized viewers and for authorized viewers who have not toggled
	// editing on.
	StateViewOnly State = iota

	// StateEditableIdle renders fields as clickable edit targets with no
	// field under active modification.
	StateEditableIdle

	// StateFieldActive means exactly one field holds an uncommitted draft.
	StateFieldActive
)

func (s State) String() string {
	switch s {
	case StateViewOnly:
		return "view_only"
	case StateEditableIdle:
		return "editable_idle"
	case StateFieldActive:
		return "field_active"
	default:
		return "unknown"
	}
}

var (
	// ErrNotAuthorized is returned when a viewer without edit permission
	// tries to enable editing.
	ErrNotAuthorized = errors.New("editsession: viewer not authorized to edit")

	// ErrNotEditing is returned when a field operation is attempted while
	// editing is toggled off.
	ErrNotEditing = errors.New("editsession: editing not enabled")

	// ErrFieldActive is returned when a second field tries to activate
	// while another holds a draft.
	ErrFieldActive = errors.New("editsession: another field is active")

	// ErrCommitInFlight is returned when a field tries to activate before
	// the previous commit has completed.
	ErrCommitInFlight = errors.New("editsession: commit in flight")

	// ErrNoActiveField is returned by draft operations with no field
	// active.
	ErrNoActiveField = errors.New("editsession: no active field")
)

// CommitFunc persists one field value. Implementations typically wrap the
// content API's PATCH field operation.
type CommitFunc func(ctx context.Context, page, language, field string, value any) error

// Session is the per-page-view editing state machine. Safe for concurrent
// use: commits run with the lock released so UI goroutines can still query
// state, but no new field may activate until the in-flight commit completes.
type Session struct {
	page       string
	language   string
	authorized bool
	commit     CommitFunc
	logger     *slog.Logger

	mu          sync.Mutex
	state       State
	activeField string
	draft       any
	lastGood    any
	committing  bool
}

// New creates a session for one (page, language) view. The authorized flag
// comes from the viewer's permission set and cannot change for the lifetime
// of the session; a permission change means a new page view and a new
// session.
func New(page, language string, authorized bool, commit CommitFunc, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		page:       page,
		language:   language,
		authorized: authorized,
		commit:     commit,
		logger:     logger,
		state:      StateViewOnly,
	}
}

// State returns the current editing state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authorized reports whether the viewer may edit at all.
func (s *Session) Authorized() bool { return s.authorized }

// ActiveField returns the field path of the active draft, or "" when idle.
func (s *Session) ActiveField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeField
}

// Draft returns the uncommitted value of the active field.
func (s *Session) Draft() (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFieldActive {
		return nil, ErrNoActiveField
	}
	return s.draft, nil
}

// EnableEditing moves ViewOnly → EditableIdle. Only authorized viewers may
// enable editing; everyone else stays in ViewOnly.
func (s *Session) EnableEditing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized {
		return ErrNotAuthorized
	}
	if s.state == StateViewOnly {
		s.state = StateEditableIdle
	}
	return nil
}

// DisableEditing returns the session to ViewOnly, discarding any active
// draft without committing it.
func (s *Session) DisableEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearActiveLocked()
	s.state = StateViewOnly
}

// ActivateField moves EditableIdle → FieldActive for one field, seeding the
// draft with the currently displayed value. Activation is refused while
// another field is active or a commit is still in flight, so a client's
// writes stay serialized.
func (s *Session) ActivateField(field string, current any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateViewOnly:
		return ErrNotEditing
	case s.committing:
		return ErrCommitInFlight
	case s.state == StateFieldActive:
		return ErrFieldActive
	}

	s.state = StateFieldActive
	s.activeField = field
	s.draft = current
	s.lastGood = current
	return nil
}

// SetDraft replaces the uncommitted value of the active field.
func (s *Session) SetDraft(value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFieldActive {
		return ErrNoActiveField
	}
	s.draft = value
	return nil
}

// Cancel discards the draft and returns to EditableIdle without committing.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFieldActive {
		return
	}
	s.clearActiveLocked()
	s.state = StateEditableIdle
}

// Commit persists the active draft and returns to EditableIdle. An unchanged
// draft deactivates without touching the store. On failure the displayed
// value stays at the last known-good value, the error is returned, and no
// retry is attempted. While the commit runs, ActivateField refuses new
// activations; callers may invoke Commit from a goroutine and treat it as
// fire-and-forget.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateFieldActive {
		s.mu.Unlock()
		return ErrNoActiveField
	}

	field := s.activeField
	draft := s.draft
	if reflect.DeepEqual(draft, s.lastGood) {
		s.clearActiveLocked()
		s.state = StateEditableIdle
		s.mu.Unlock()
		return nil
	}

	s.committing = true
	s.mu.Unlock()

	err := s.commit(ctx, s.page, s.language, field, draft)

	s.mu.Lock()
	s.committing = false
	// DisableEditing or Cancel may have run while the callback was in
	// flight; their transition wins over the commit's return to idle.
	if s.state == StateFieldActive {
		s.clearActiveLocked()
		s.state = StateEditableIdle
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("field commit failed",
			"page", s.page, "language", s.language, "field", field, "error", err)
		return err
	}
	return nil
}

func (s *Session) clearActiveLocked() {
	s.activeField = ""
	s.draft = nil
	s.lastGood = nil
}
