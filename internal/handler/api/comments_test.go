// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
)

func TestCreateComment(t *testing.T) {
	_, h := testSetup(t)

	req := newJSONRequest(t, http.MethodPost, "/api/comments",
		`{"page":"about","author":"Ada","body":"Nice site!"}`, nil)
	w := executeHandler(t, h.CreateComment, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	comment := unmarshalData[CommentResponse](t, w)
	if comment.ID == 0 {
		t.Error("comment ID should be set")
	}
	if comment.Page != "about" || comment.Author != "Ada" || comment.Body != "Nice site!" {
		t.Errorf("unexpected comment: %+v", comment)
	}
	if comment.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestCreateComment_Validation(t *testing.T) {
	_, h := testSetup(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown page", `{"page":"blog","author":"Ada","body":"hi"}`, http.StatusBadRequest},
		{"missing author", `{"page":"about","body":"hi"}`, http.StatusUnprocessableEntity},
		{"missing body", `{"page":"about","author":"Ada"}`, http.StatusUnprocessableEntity},
		{"author too long", `{"page":"about","author":"` + strings.Repeat("a", 101) + `","body":"hi"}`, http.StatusUnprocessableEntity},
		{"body too long", `{"page":"about","author":"Ada","body":"` + strings.Repeat("b", 2001) + `"}`, http.StatusUnprocessableEntity},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, "/api/comments", tt.body, nil)
			w := executeHandler(t, h.CreateComment, req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestListComments(t *testing.T) {
	_, h := testSetup(t)

	for _, body := range []string{
		`{"page":"about","author":"Ada","body":"first"}`,
		`{"page":"about","author":"Grace","body":"second"}`,
		`{"page":"home","author":"Ada","body":"other page"}`,
	} {
		req := newJSONRequest(t, http.MethodPost, "/api/comments", body, nil)
		if w := executeHandler(t, h.CreateComment, req); w.Code != http.StatusCreated {
			t.Fatalf("seeding comment failed: %d %s", w.Code, w.Body.String())
		}
	}

	req := newGetRequest(t, "/api/comments?page=about", nil)
	w := executeHandler(t, h.ListComments, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	comments, meta := unmarshalList[CommentResponse](t, w)
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if meta == nil || meta.Total != 2 {
		t.Errorf("meta total = %+v, want 2", meta)
	}
	for _, c := range comments {
		if c.Page != "about" {
			t.Errorf("comment for wrong page: %+v", c)
		}
	}
}

func TestListComments_UnknownPage(t *testing.T) {
	_, h := testSetup(t)

	req := newGetRequest(t, "/api/comments?page=blog", nil)
	w := executeHandler(t, h.ListComments, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := unmarshalError(t, w).Error.Code; code != "invalid_page" {
		t.Errorf("error code = %q, want invalid_page", code)
	}
}

func TestDeleteComment(t *testing.T) {
	_, h := testSetup(t)

	create := newJSONRequest(t, http.MethodPost, "/api/comments",
		`{"page":"about","author":"Ada","body":"bye"}`, nil)
	created := unmarshalData[CommentResponse](t, executeHandler(t, h.CreateComment, create))

	id := strconv.FormatInt(created.ID, 10)
	del := newDeleteRequest(t, "/api/comments/"+id, map[string]string{"id": id})
	w := executeHandler(t, h.DeleteComment, del)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	list := newGetRequest(t, "/api/comments?page=about", nil)
	comments, _ := unmarshalList[CommentResponse](t, executeHandler(t, h.ListComments, list))
	if len(comments) != 0 {
		t.Errorf("expected 0 comments after delete, got %d", len(comments))
	}
}

func TestDeleteComment_NotFound(t *testing.T) {
	_, h := testSetup(t)

	del := newDeleteRequest(t, "/api/comments/99", map[string]string{"id": "99"})
	w := executeHandler(t, h.DeleteComment, del)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteComment_InvalidID(t *testing.T) {
	_, h := testSetup(t)

	del := newDeleteRequest(t, "/api/comments/abc", map[string]string{"id": "abc"})
	w := executeHandler(t, h.DeleteComment, del)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
