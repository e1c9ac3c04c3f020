// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package widget

import (
	"context"
	"errors"

	"folio-go/internal/editsession"
)

// ErrIndexOutOfRange is returned by list mutations addressing a missing
// element.
var ErrIndexOutOfRange = errors.New("widget: list index out of range")

// FieldSpec names one field of a list record and its default value for newly
// appended records.
type FieldSpec struct {
	Name    string
	Default any
}

// ListField binds an ordered sequence of uniform records to a field path.
// Every mutation resubmits the entire list in one commit; there is no
// per-element diffing.
type ListField struct {
	session *editsession.Session
	path    string
	schema  []FieldSpec
	items   []map[string]any
}

// NewListField binds a list widget to a field path. The value slice may come
// straight from a decoded content document; non-object elements are dropped.
func NewListField(s *editsession.Session, path string, schema []FieldSpec, value []any) *ListField {
	items := make([]map[string]any, 0, len(value))
	for _, v := range value {
		if rec, ok := v.(map[string]any); ok {
			items = append(items, rec)
		}
	}
	return &ListField{session: s, path: path, schema: schema, items: items}
}

// Len returns the number of records.
func (l *ListField) Len() int { return len(l.items) }

// Item returns the record at index i.
func (l *ListField) Item(i int) (map[string]any, error) {
	if i < 0 || i >= len(l.items) {
		return nil, ErrIndexOutOfRange
	}
	return l.items[i], nil
}

// Value returns the whole list in document form.
func (l *ListField) Value() []any {
	out := make([]any, len(l.items))
	for i, rec := range l.items {
		out[i] = rec
	}
	return out
}

// Editable reports whether the widget should render edit controls.
func (l *ListField) Editable() bool { return editable(l.session) }

// Append adds a new record built from the schema defaults and commits the
// whole list.
func (l *ListField) Append(ctx context.Context) error {
	rec := make(map[string]any, len(l.schema))
	for _, f := range l.schema {
		rec[f.Name] = f.Default
	}
	next := append(copyItems(l.items), rec)
	return l.commitList(ctx, next)
}

// RemoveAt deletes the record at index i and commits the whole list.
func (l *ListField) RemoveAt(ctx context.Context, i int) error {
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	next := copyItems(l.items)
	next = append(next[:i], next[i+1:]...)
	return l.commitList(ctx, next)
}

// MoveUp swaps the record at index i with its predecessor and commits.
func (l *ListField) MoveUp(ctx context.Context, i int) error {
	if i <= 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	next := copyItems(l.items)
	next[i-1], next[i] = next[i], next[i-1]
	return l.commitList(ctx, next)
}

// MoveDown swaps the record at index i with its successor and commits.
func (l *ListField) MoveDown(ctx context.Context, i int) error {
	if i < 0 || i >= len(l.items)-1 {
		return ErrIndexOutOfRange
	}
	next := copyItems(l.items)
	next[i], next[i+1] = next[i+1], next[i]
	return l.commitList(ctx, next)
}

// SetField replaces one named field of the record at index i and commits the
// whole list.
func (l *ListField) SetField(ctx context.Context, i int, name string, value any) error {
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	next := copyItems(l.items)
	rec := make(map[string]any, len(next[i]))
	for k, v := range next[i] {
		rec[k] = v
	}
	rec[name] = value
	next[i] = rec
	return l.commitList(ctx, next)
}

// commitList submits the candidate list through the session. The displayed
// items advance only on success; a failed commit keeps the last known-good
// list.
func (l *ListField) commitList(ctx context.Context, next []map[string]any) error {
	current := l.Value()
	value := make([]any, len(next))
	for i, rec := range next {
		value[i] = rec
	}
	if err := commitValue(ctx, l.session, l.path, current, value); err != nil {
		return err
	}
	l.items = next
	return nil
}

func copyItems(items []map[string]any) []map[string]any {
	out := make([]map[string]any, len(items))
	copy(out, items)
	return out
}
