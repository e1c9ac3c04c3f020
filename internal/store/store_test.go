package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestGetContentDocument_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	_, err := q.GetContentDocument(ctx, GetContentDocumentParams{Page: "about", Language: "en"})
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpsertContentDocument(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	doc, err := q.UpsertContentDocument(ctx, UpsertContentDocumentParams{
		Page:      "about",
		Language:  "en",
		Content:   `{"title":"Hi"}`,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertContentDocument: %v", err)
	}
	if doc.ID == 0 {
		t.Error("doc.ID should not be 0")
	}
	if doc.Content != `{"title":"Hi"}` {
		t.Errorf("Content = %q", doc.Content)
	}

	// Second upsert replaces content and keeps identity
	later := now.Add(time.Minute)
	doc2, err := q.UpsertContentDocument(ctx, UpsertContentDocumentParams{
		Page:      "about",
		Language:  "en",
		Content:   `{"title":"Hello"}`,
		CreatedAt: later,
		UpdatedAt: later,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if doc2.ID != doc.ID {
		t.Errorf("upsert created a new row: %d != %d", doc2.ID, doc.ID)
	}
	if doc2.Content != `{"title":"Hello"}` {
		t.Errorf("Content = %q", doc2.Content)
	}
	if !doc2.UpdatedAt.After(doc.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v vs %v", doc2.UpdatedAt, doc.UpdatedAt)
	}

	// Different language is a separate document
	docFr, err := q.UpsertContentDocument(ctx, UpsertContentDocumentParams{
		Page:      "about",
		Language:  "fr",
		Content:   `{"title":"Salut"}`,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("fr upsert: %v", err)
	}
	if docFr.ID == doc.ID {
		t.Error("fr document should be a separate row")
	}
}

func TestListContentDocuments(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	for _, pair := range []struct{ page, lang string }{
		{"home", "en"}, {"about", "en"}, {"about", "fr"},
	} {
		if _, err := q.UpsertContentDocument(ctx, UpsertContentDocumentParams{
			Page: pair.page, Language: pair.lang, Content: "{}",
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			t.Fatalf("upsert %s/%s: %v", pair.page, pair.lang, err)
		}
	}

	docs, err := q.ListContentDocuments(ctx)
	if err != nil {
		t.Fatalf("ListContentDocuments: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("len = %d, want 3", len(docs))
	}
	// Ordered by page then language
	if docs[0].Page != "about" || docs[0].Language != "en" {
		t.Errorf("first doc = %s/%s", docs[0].Page, docs[0].Language)
	}
}

func TestComments(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	c, err := q.CreateComment(ctx, CreateCommentParams{
		Page: "about", Author: "Visitor", Body: "Nice site", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if c.ID == 0 {
		t.Error("comment ID should not be 0")
	}

	comments, err := q.ListCommentsByPage(ctx, "about")
	if err != nil {
		t.Fatalf("ListCommentsByPage: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "Nice site" {
		t.Errorf("comments = %+v", comments)
	}

	if err := q.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	comments, _ = q.ListCommentsByPage(ctx, "about")
	if len(comments) != 0 {
		t.Errorf("expected no comments after delete, got %d", len(comments))
	}
}

func TestContactMessages(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	m, err := q.CreateContactMessage(ctx, CreateContactMessageParams{
		Name: "A", Email: "a@example.com", Subject: "Hello", Body: "Hi there",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateContactMessage: %v", err)
	}
	if m.IsRead {
		t.Error("new message should be unread")
	}

	if err := q.MarkContactMessageRead(ctx, m.ID); err != nil {
		t.Fatalf("MarkContactMessageRead: %v", err)
	}
	got, err := q.GetContactMessage(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetContactMessage: %v", err)
	}
	if !got.IsRead {
		t.Error("message should be read")
	}
}

func TestProjects(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	p, err := q.CreateProject(ctx, CreateProjectParams{
		Title: "Folio", Slug: "folio", Description: "My site",
		Status: "draft", Position: 1, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	// Draft is not listed as published
	published, err := q.ListPublishedProjects(ctx)
	if err != nil {
		t.Fatalf("ListPublishedProjects: %v", err)
	}
	if len(published) != 0 {
		t.Errorf("published = %d, want 0", len(published))
	}

	_, err = q.UpdateProject(ctx, UpdateProjectParams{
		Title: p.Title, Slug: p.Slug, Description: p.Description,
		Position: p.Position, Status: "published",
		UpdatedAt:   now.Add(time.Minute),
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		ID:          p.ID,
	})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	published, _ = q.ListPublishedProjects(ctx)
	if len(published) != 1 {
		t.Fatalf("published = %d, want 1", len(published))
	}

	n, err := q.CountProjectsBySlug(ctx, "folio")
	if err != nil || n != 1 {
		t.Errorf("CountProjectsBySlug = %d, %v", n, err)
	}
}

func TestMediaUsage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	sizes := map[string][]int64{
		"image":  {1000, 2500},
		"resume": {40000},
	}
	i := 0
	for kind, ss := range sizes {
		for _, size := range ss {
			i++
			if _, err := q.CreateMedia(ctx, CreateMediaParams{
				Uuid: "uuid-" + kind + "-" + time.Now().Add(time.Duration(i)).String(),
				Kind: kind, Filename: "f", MimeType: "application/octet-stream",
				Size: size, CreatedAt: now,
			}); err != nil {
				t.Fatalf("CreateMedia: %v", err)
			}
		}
	}

	img, err := q.SumMediaByKind(ctx, "image")
	if err != nil {
		t.Fatalf("SumMediaByKind: %v", err)
	}
	if img.Bytes != 3500 || img.Files != 2 {
		t.Errorf("image usage = %+v", img)
	}

	res, _ := q.SumMediaByKind(ctx, "resume")
	if res.Bytes != 40000 || res.Files != 1 {
		t.Errorf("resume usage = %+v", res)
	}

	none, _ := q.SumMediaByKind(ctx, "video")
	if none.Bytes != 0 || none.Files != 0 {
		t.Errorf("empty kind usage = %+v", none)
	}
}

func TestAPITokens(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	tok, err := q.CreateAPIToken(ctx, CreateAPITokenParams{
		Name: "admin", TokenHash: "hash123", TokenPrefix: "abcd1234",
		Permissions: `["admin:dashboard"]`, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAPIToken: %v", err)
	}

	found, err := q.GetAPITokenByHash(ctx, "hash123")
	if err != nil {
		t.Fatalf("GetAPITokenByHash: %v", err)
	}
	if found.ID != tok.ID || !found.IsActive {
		t.Errorf("found = %+v", found)
	}

	_, err = q.GetAPITokenByHash(ctx, "nope")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}

	if err := q.DeactivateAPIToken(ctx, DeactivateAPITokenParams{UpdatedAt: now, ID: tok.ID}); err != nil {
		t.Fatalf("DeactivateAPIToken: %v", err)
	}
	found, _ = q.GetAPITokenByHash(ctx, "hash123")
	if found.IsActive {
		t.Error("token should be deactivated")
	}
}

func TestEvents(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	for _, at := range []time.Time{old, recent} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level: "info", Category: "system", Message: "tick",
			Metadata: "{}", CreatedAt: at,
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	deleted, err := q.DeleteEventsBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteEventsBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	events, err := q.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}
