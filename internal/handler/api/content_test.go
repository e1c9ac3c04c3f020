// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"folio-go/internal/model"
	"folio-go/internal/transfer"
)

func TestGetContent_EmptyStoreFallsBack(t *testing.T) {
	_, h := testSetup(t)

	req := newGetRequest(t, "/api/content/about?lang=en", map[string]string{"page": "about"})
	w := executeHandler(t, h.GetContent, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body["useClientFallback"])
	require.Equal(t, "true", w.Header().Get(model.FallbackHeader))
}

func TestGetContent_StoredDocumentOmitsFallbackHeader(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"content":{"useClientFallback":true},"language":"en"}`, map[string]string{"page": "about"})
	require.Equal(t, http.StatusOK, executeHandler(t, h.ReplaceContent, put).Code)

	req := newGetRequest(t, "/api/content/about?lang=en", map[string]string{"page": "about"})
	w := executeHandler(t, h.GetContent, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get(model.FallbackHeader))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, true, doc["useClientFallback"])
}

func TestGetContent_InvalidPage(t *testing.T) {
	_, h := testSetup(t)

	req := newGetRequest(t, "/api/content/blog?lang=en", map[string]string{"page": "blog"})
	w := executeHandler(t, h.GetContent, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_page", unmarshalError(t, w).Error.Code)
}

func TestGetContent_InvalidLanguage(t *testing.T) {
	_, h := testSetup(t)

	req := newGetRequest(t, "/api/content/about?lang=de", map[string]string{"page": "about"})
	w := executeHandler(t, h.GetContent, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_language", unmarshalError(t, w).Error.Code)
}

func TestReplaceContent_ThenGet(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"content":{"title":"Hi"},"language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.ReplaceContent, put)

	require.Equal(t, http.StatusOK, w.Code)

	var putResp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &putResp))
	require.Equal(t, true, putResp["success"])
	require.Equal(t, "about", putResp["page"])
	require.Equal(t, "en", putResp["language"])

	get := newGetRequest(t, "/api/content/about?lang=en", map[string]string{"page": "about"})
	w = executeHandler(t, h.GetContent, get)

	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "Hi", doc["title"])
}

func TestReplaceContent_MissingContent(t *testing.T) {
	_, h := testSetup(t)

	req := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.ReplaceContent, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceContent_InvalidPageWritesNothing(t *testing.T) {
	db, h := testSetup(t)

	req := newJSONRequest(t, http.MethodPut, "/api/content/blog",
		`{"content":{"title":"Hi"},"language":"en"}`, map[string]string{"page": "blog"})
	w := executeHandler(t, h.ReplaceContent, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_page", unmarshalError(t, w).Error.Code)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM content_documents").Scan(&count))
	require.Zero(t, count)
}

func TestPatchContentField(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"content":{"title":"Hi"},"language":"en"}`, map[string]string{"page": "about"})
	executeHandler(t, h.ReplaceContent, put)

	patch := newJSONRequest(t, http.MethodPatch, "/api/content/about/field",
		`{"field":"title","value":"Hello","language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.PatchContentField, patch)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	require.Equal(t, "title", resp["field"])
	require.Equal(t, "Hello", resp["value"])

	get := newGetRequest(t, "/api/content/about?lang=en", map[string]string{"page": "about"})
	w = executeHandler(t, h.GetContent, get)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "Hello", doc["title"])
}

func TestPatchContentField_NestedPath(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/resume",
		`{"content":{"skillCategories":[{"skills":[{"name":"C"},{"name":"Rust"}]}]},"language":"en"}`,
		map[string]string{"page": "resume"})
	executeHandler(t, h.ReplaceContent, put)

	patch := newJSONRequest(t, http.MethodPatch, "/api/content/resume/field",
		`{"field":"skillCategories[0].skills[1].name","value":"Go","language":"en"}`,
		map[string]string{"page": "resume"})
	w := executeHandler(t, h.PatchContentField, patch)

	require.Equal(t, http.StatusOK, w.Code)

	get := newGetRequest(t, "/api/content/resume?lang=en", map[string]string{"page": "resume"})
	w = executeHandler(t, h.GetContent, get)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	cats := doc["skillCategories"].([]any)
	skills := cats[0].(map[string]any)["skills"].([]any)
	require.Equal(t, "C", skills[0].(map[string]any)["name"])
	require.Equal(t, "Go", skills[1].(map[string]any)["name"])
}

func TestPatchContentField_WrongContainerKind(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"content":{"title":"Hi"},"language":"en"}`, map[string]string{"page": "about"})
	executeHandler(t, h.ReplaceContent, put)

	// title is a string, not a sequence.
	patch := newJSONRequest(t, http.MethodPatch, "/api/content/about/field",
		`{"field":"title[0]","value":"x","language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.PatchContentField, patch)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_field_path", unmarshalError(t, w).Error.Code)
}

func TestPatchContentField_MissingField(t *testing.T) {
	_, h := testSetup(t)

	patch := newJSONRequest(t, http.MethodPatch, "/api/content/about/field",
		`{"value":"x","language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.PatchContentField, patch)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportContent(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"content":{"title":"Hi"},"language":"en"}`, map[string]string{"page": "about"})
	executeHandler(t, h.ReplaceContent, put)

	req := newGetRequest(t, "/api/content/about/export?lang=en", map[string]string{"page": "about"})
	w := executeHandler(t, h.ExportContent, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="about-en.json"`)

	var export transfer.ExportFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
	require.Equal(t, transfer.ExportVersion, export.Version)
	require.Equal(t, "about", export.Page)
	require.Equal(t, "en", export.Language)
	require.Equal(t, "Hi", export.Content["title"])
}

func TestExportContent_NothingStored(t *testing.T) {
	_, h := testSetup(t)

	req := newGetRequest(t, "/api/content/about/export?lang=en", map[string]string{"page": "about"})
	w := executeHandler(t, h.ExportContent, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not_found", unmarshalError(t, w).Error.Code)
}

func TestImportContent_FullReplace(t *testing.T) {
	_, h := testSetup(t)

	put := newJSONRequest(t, http.MethodPut, "/api/content/about",
		`{"content":{"title":"Hi","old":"value"},"language":"en"}`, map[string]string{"page": "about"})
	executeHandler(t, h.ReplaceContent, put)

	imp := newJSONRequest(t, http.MethodPost, "/api/content/about/import",
		`{"content":{"title":"Imported"},"language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.ImportContent, imp)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["success"])

	get := newGetRequest(t, "/api/content/about?lang=en", map[string]string{"page": "about"})
	w = executeHandler(t, h.GetContent, get)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "Imported", doc["title"])
	require.NotContains(t, doc, "old")
}

func TestImportContent_InvalidPayload(t *testing.T) {
	_, h := testSetup(t)

	imp := newJSONRequest(t, http.MethodPost, "/api/content/about/import",
		`{"language":"en"}`, map[string]string{"page": "about"})
	w := executeHandler(t, h.ImportContent, imp)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "bad_request", unmarshalError(t, w).Error.Code)
}

func TestContentLanguageDefaults(t *testing.T) {
	if got := contentLanguage(""); got != "en" {
		t.Errorf("contentLanguage(\"\") = %q, want \"en\"", got)
	}
	if got := contentLanguage("fr"); got != "fr" {
		t.Errorf("contentLanguage(\"fr\") = %q, want \"fr\"", got)
	}
}
