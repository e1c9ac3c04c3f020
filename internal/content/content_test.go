package content

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"folio-go/internal/cache"
	"folio-go/internal/model"
	"folio-go/internal/store"
)

// testService creates a content service backed by a temporary database.
func testService(t *testing.T, withCache bool) *Service {
	t.Helper()

	f, err := os.CreateTemp("", "folio-content-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	var c cache.Cache
	if withCache {
		c = cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
		t.Cleanup(func() { _ = c.Close() })
	}

	return NewService(db, c, nil)
}

func TestGetNotFound(t *testing.T) {
	s := testService(t, false)

	_, err := s.Get(context.Background(), model.PageAbout, model.LangEnglish)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	if _, err := s.Get(ctx, "nope", "en"); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Get invalid page: %v", err)
	}
	if _, err := s.Get(ctx, "about", "de"); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("Get invalid language: %v", err)
	}
	if _, err := s.Replace(ctx, "nope", "en", model.ContentDocument{}); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Replace invalid page: %v", err)
	}
	if _, err := s.PatchField(ctx, "about", "xx", "title", "v"); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("PatchField invalid language: %v", err)
	}
}

func TestInvalidPagePerformsNoWrite(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	_, err := s.Replace(ctx, "nope", "en", model.ContentDocument{"title": "x"})
	if !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}

	// The store is unaffected: every valid pair still reads as NotFound.
	for _, page := range model.ContentPages {
		if _, err := s.Get(ctx, page, model.LangEnglish); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%s) after rejected write: %v", page, err)
		}
	}
}

func TestReplaceThenGet(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	rec, err := s.Replace(ctx, model.PageAbout, model.LangEnglish,
		model.ContentDocument{"title": "Hi"})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if rec.Page != "about" || rec.Language != "en" {
		t.Errorf("record = %+v", rec)
	}

	doc, err := s.Get(ctx, model.PageAbout, model.LangEnglish)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc["title"] != "Hi" {
		t.Errorf("title = %v", doc["title"])
	}

	// Replace is whole-document: no merge with the previous value.
	if _, err := s.Replace(ctx, model.PageAbout, model.LangEnglish,
		model.ContentDocument{"subtitle": "there"}); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	doc, _ = s.Get(ctx, model.PageAbout, model.LangEnglish)
	if _, ok := doc["title"]; ok {
		t.Error("replace should not merge: title survived")
	}
	if doc["subtitle"] != "there" {
		t.Errorf("subtitle = %v", doc["subtitle"])
	}
}

func TestReplaceStampsUpdatedAt(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	first, err := s.Replace(ctx, model.PageHome, model.LangEnglish,
		model.ContentDocument{"title": "a"})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	second, err := s.Replace(ctx, model.PageHome, model.LangEnglish,
		model.ContentDocument{"title": "b"})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v vs %v", second.UpdatedAt, first.UpdatedAt)
	}
}

func TestPatchFieldScenario(t *testing.T) {
	// Empty store -> NotFound. PUT {title: Hi} -> Get returns it.
	// PATCH title=Hello -> Get returns the new value.
	s := testService(t, false)
	ctx := context.Background()

	if _, err := s.Get(ctx, "about", "en"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("fresh store should be NotFound, got %v", err)
	}

	if _, err := s.Replace(ctx, "about", "en", model.ContentDocument{"title": "Hi"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	doc, _ := s.Get(ctx, "about", "en")
	if doc["title"] != "Hi" {
		t.Fatalf("title = %v", doc["title"])
	}

	if _, err := s.PatchField(ctx, "about", "en", "title", "Hello"); err != nil {
		t.Fatalf("PatchField: %v", err)
	}
	doc, _ = s.Get(ctx, "about", "en")
	if doc["title"] != "Hello" {
		t.Errorf("title = %v", doc["title"])
	}
}

func TestPatchFieldNested(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	_, err := s.Replace(ctx, "resume", "en", model.ContentDocument{
		"skillCategories": []any{
			map[string]any{
				"name": "Languages",
				"skills": []any{
					map[string]any{"name": "Python", "level": "expert"},
					map[string]any{"name": "Rust", "level": "intermediate"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, err := s.PatchField(ctx, "resume", "en", "skillCategories[0].skills[1].name", "Go"); err != nil {
		t.Fatalf("PatchField: %v", err)
	}

	doc, _ := s.Get(ctx, "resume", "en")
	cats := doc["skillCategories"].([]any)
	skills := cats[0].(map[string]any)["skills"].([]any)

	second := skills[1].(map[string]any)
	if second["name"] != "Go" {
		t.Errorf("skills[1].name = %v", second["name"])
	}
	// Only that entry's name changed
	if second["level"] != "intermediate" {
		t.Errorf("skills[1].level = %v", second["level"])
	}
	first := skills[0].(map[string]any)
	if first["name"] != "Python" || first["level"] != "expert" {
		t.Errorf("skills[0] changed: %v", first)
	}
	if cats[0].(map[string]any)["name"] != "Languages" {
		t.Error("category name changed")
	}
}

func TestPatchFieldOnEmptyStore(t *testing.T) {
	// NotFound is treated as an empty document.
	s := testService(t, false)
	ctx := context.Background()

	if _, err := s.PatchField(ctx, "home", "fr", "title", "Salut"); err != nil {
		t.Fatalf("PatchField: %v", err)
	}

	doc, err := s.Get(ctx, "home", "fr")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc["title"] != "Salut" {
		t.Errorf("title = %v", doc["title"])
	}
}

func TestPatchFieldInvalidPath(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	if _, err := s.Replace(ctx, "about", "en", model.ContentDocument{"title": "Hi"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	// Unparseable path
	if _, err := s.PatchField(ctx, "about", "en", "jobs[x]", "v"); !errors.Is(err, ErrInvalidFieldPath) {
		t.Errorf("expected ErrInvalidFieldPath, got %v", err)
	}
	// Wrong container kind
	if _, err := s.PatchField(ctx, "about", "en", "title[0]", "v"); !errors.Is(err, ErrInvalidFieldPath) {
		t.Errorf("expected ErrInvalidFieldPath, got %v", err)
	}

	// Rejected before any mutation
	doc, _ := s.Get(ctx, "about", "en")
	if doc["title"] != "Hi" {
		t.Errorf("document altered by rejected patch: %v", doc)
	}
}

func TestLanguagesAreIndependent(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	_, _ = s.Replace(ctx, "about", "en", model.ContentDocument{"title": "Hello"})
	_, _ = s.Replace(ctx, "about", "fr", model.ContentDocument{"title": "Bonjour"})

	en, _ := s.Get(ctx, "about", "en")
	fr, _ := s.Get(ctx, "about", "fr")
	if en["title"] != "Hello" || fr["title"] != "Bonjour" {
		t.Errorf("en=%v fr=%v", en["title"], fr["title"])
	}
}

func TestCacheInvalidationOnWrite(t *testing.T) {
	s := testService(t, true)
	ctx := context.Background()

	_, _ = s.Replace(ctx, "home", "en", model.ContentDocument{"title": "v1"})

	// Prime the cache
	doc, err := s.Get(ctx, "home", "en")
	if err != nil || doc["title"] != "v1" {
		t.Fatalf("Get: %v %v", doc, err)
	}

	// Write through the service; the cached copy must not be served afterwards
	_, _ = s.Replace(ctx, "home", "en", model.ContentDocument{"title": "v2"})
	doc, _ = s.Get(ctx, "home", "en")
	if doc["title"] != "v2" {
		t.Errorf("stale cache: title = %v", doc["title"])
	}

	if _, err := s.PatchField(ctx, "home", "en", "title", "v3"); err != nil {
		t.Fatalf("PatchField: %v", err)
	}
	doc, _ = s.Get(ctx, "home", "en")
	if doc["title"] != "v3" {
		t.Errorf("stale cache after patch: title = %v", doc["title"])
	}
}

func TestSanitizesMarkup(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	_, err := s.Replace(ctx, "about", "en", model.ContentDocument{
		"bio": `<p>hi</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	doc, _ := s.Get(ctx, "about", "en")
	bio := doc["bio"].(string)
	if bio != "<p>hi</p>" {
		t.Errorf("bio = %q", bio)
	}
}

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument(model.PageHome, model.LangEnglish)
	if doc["title"] != "Welcome" {
		t.Errorf("title = %v", doc["title"])
	}

	// Mutating the returned copy must not affect later calls
	doc["title"] = "changed"
	again := DefaultDocument(model.PageHome, model.LangEnglish)
	if again["title"] != "Welcome" {
		t.Error("DefaultDocument returned shared state")
	}

	if got := DefaultDocument("nope", "en"); len(got) != 0 {
		t.Errorf("unknown page should yield empty doc, got %v", got)
	}
}
