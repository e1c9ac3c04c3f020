// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fieldpath parses dotted/bracketed field paths such as
// "skillCategories[0].skills[1].name" and resolves them against JSON-like
// documents (map[string]any / []any trees as produced by encoding/json).
package fieldpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath indicates a field path that cannot be parsed or that
// addresses a container of the wrong kind.
var ErrInvalidPath = errors.New("invalid field path")

// SegmentKind discriminates between map-key and sequence-index segments.
type SegmentKind int

// Segment kinds
const (
	KindKey SegmentKind = iota
	KindIndex
)

// Segment is one step of a field path: either a map key or a sequence index.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// String returns the segment in path syntax.
func (s Segment) String() string {
	if s.Kind == KindIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path is an ordered sequence of segments, parsed once before any traversal.
type Path []Segment

// String reassembles the path into its string form.
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if seg.Kind == KindKey && i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// Parse splits a field path into segments by "." and "[n]" bracket groups,
// preserving order. The first segment must be a map key because documents
// are objects at the root. Empty segments, negative or non-numeric indexes,
// and unterminated brackets are rejected.
func Parse(path string) (Path, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segs Path
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			return nil, fmt.Errorf("%w: empty segment at position %d in %q", ErrInvalidPath, i, path)
		case '[':
			if len(segs) == 0 {
				return nil, fmt.Errorf("%w: path %q must start with a key", ErrInvalidPath, path)
			}
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated bracket in %q", ErrInvalidPath, path)
			}
			idxStr := path[i+1 : i+end]
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 || strings.HasPrefix(idxStr, "+") {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, idxStr, path)
			}
			segs = append(segs, Segment{Kind: KindIndex, Index: idx})
			i += end + 1
			// After a bracket group: end of path, another bracket, or a dot.
			if i < len(path) {
				if path[i] == '.' {
					i++
					if i == len(path) {
						return nil, fmt.Errorf("%w: trailing dot in %q", ErrInvalidPath, path)
					}
				} else if path[i] != '[' {
					return nil, fmt.Errorf("%w: unexpected %q after index in %q", ErrInvalidPath, string(path[i]), path)
				}
			}
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			segs = append(segs, Segment{Kind: KindKey, Key: path[i:j]})
			i = j
			if i < len(path) && path[i] == '.' {
				i++
				if i == len(path) {
					return nil, fmt.Errorf("%w: trailing dot in %q", ErrInvalidPath, path)
				}
			}
		}
	}

	return segs, nil
}

// Get reads the value addressed by path. The second return value reports
// whether the location exists. Addressing into a container of the wrong kind
// returns ErrInvalidPath; a merely absent key or out-of-range index does not.
func Get(doc map[string]any, path Path) (any, bool, error) {
	if len(path) == 0 {
		return nil, false, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var cur any = doc
	for _, seg := range path {
		switch c := cur.(type) {
		case map[string]any:
			if seg.Kind != KindKey {
				return nil, false, fmt.Errorf("%w: index %s addresses an object", ErrInvalidPath, seg)
			}
			child, ok := c[seg.Key]
			if !ok {
				return nil, false, nil
			}
			cur = child
		case []any:
			if seg.Kind != KindIndex {
				return nil, false, fmt.Errorf("%w: key %q addresses a sequence", ErrInvalidPath, seg.Key)
			}
			if seg.Index >= len(c) {
				return nil, false, nil
			}
			cur = c[seg.Index]
		default:
			return nil, false, fmt.Errorf("%w: segment %s addresses a scalar", ErrInvalidPath, seg)
		}
	}

	return cur, true, nil
}

// Set writes value at the location addressed by path, creating missing
// interior containers along the way: a map if the next segment is a key, a
// sequence if it is an index. Sequences are extended with nulls up to the
// needed index. Existing sibling data is never dropped. Addressing into a
// container of the wrong kind returns ErrInvalidPath.
func Set(doc map[string]any, path Path, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if path[0].Kind != KindKey {
		return fmt.Errorf("%w: document root is an object", ErrInvalidPath)
	}

	var cur any = doc
	// reattach writes the current container back into its parent after a
	// sequence grows and reallocates.
	reattach := func(any) {}

	for i, seg := range path {
		last := i == len(path)-1

		switch c := cur.(type) {
		case map[string]any:
			if seg.Kind != KindKey {
				return fmt.Errorf("%w: index %s addresses an object", ErrInvalidPath, seg)
			}
			if last {
				c[seg.Key] = value
				return nil
			}
			child, ok := c[seg.Key]
			if !ok || child == nil {
				child = newContainer(path[i+1])
				c[seg.Key] = child
			}
			key := seg.Key
			parent := c
			reattach = func(v any) { parent[key] = v }
			cur = child

		case []any:
			if seg.Kind != KindIndex {
				return fmt.Errorf("%w: key %q addresses a sequence", ErrInvalidPath, seg.Key)
			}
			if seg.Index >= len(c) {
				grown := append(c, make([]any, seg.Index+1-len(c))...)
				reattach(grown)
				c = grown
			}
			if last {
				c[seg.Index] = value
				return nil
			}
			if c[seg.Index] == nil {
				c[seg.Index] = newContainer(path[i+1])
			}
			idx := seg.Index
			parent := c
			reattach = func(v any) { parent[idx] = v }
			cur = c[seg.Index]

		default:
			return fmt.Errorf("%w: segment %s addresses a scalar", ErrInvalidPath, seg)
		}
	}

	return nil
}

// Delete removes the value addressed by path. Deleting an absent location is
// a no-op. For sequences the element is spliced out.
func Delete(doc map[string]any, path Path) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	if len(path) == 1 {
		if path[0].Kind != KindKey {
			return fmt.Errorf("%w: document root is an object", ErrInvalidPath)
		}
		delete(doc, path[0].Key)
		return nil
	}

	parentVal, ok, err := Get(doc, path[:len(path)-1])
	if err != nil || !ok {
		return err
	}

	seg := path[len(path)-1]
	switch c := parentVal.(type) {
	case map[string]any:
		if seg.Kind != KindKey {
			return fmt.Errorf("%w: index %s addresses an object", ErrInvalidPath, seg)
		}
		delete(c, seg.Key)
		return nil
	case []any:
		if seg.Kind != KindIndex {
			return fmt.Errorf("%w: key %q addresses a sequence", ErrInvalidPath, seg.Key)
		}
		if seg.Index >= len(c) {
			return nil
		}
		spliced := append(c[:seg.Index], c[seg.Index+1:]...)
		// Write the shortened sequence back into its own parent.
		return Set(doc, path[:len(path)-1], spliced)
	default:
		return fmt.Errorf("%w: segment %s addresses a scalar", ErrInvalidPath, seg)
	}
}

// newContainer creates the container implied by the next segment kind.
func newContainer(next Segment) any {
	if next.Kind == KindIndex {
		return make([]any, 0)
	}
	return make(map[string]any)
}
