// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"folio-go/internal/model"
	"folio-go/internal/service"
	"folio-go/internal/store"
)

func testScheduler(t *testing.T) (*Scheduler, *sql.DB) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "folio-scheduler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	media := service.NewMediaService(db, t.TempDir(), logger)
	return New(db, media, logger), db
}

func TestScheduler_StorageSnapshot(t *testing.T) {
	s, db := testScheduler(t)

	if err := s.RunJob(t.Context(), "storage-snapshot"); err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(t.Context(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != model.EventCategoryMedia {
		t.Errorf("Category = %q, want %q", events[0].Category, model.EventCategoryMedia)
	}
	if events[0].Message != "Storage usage snapshot" {
		t.Errorf("Message = %q", events[0].Message)
	}
}

func TestScheduler_PruneEvents(t *testing.T) {
	s, db := testScheduler(t)
	q := store.New(db)

	old := time.Now().Add(-EventRetention - 24*time.Hour)
	recent := time.Now().Add(-time.Hour)
	for _, createdAt := range []time.Time{old, recent} {
		_, err := q.CreateEvent(t.Context(), store.CreateEventParams{
			Level:     model.EventLevelInfo,
			Category:  model.EventCategorySystem,
			Message:   "test event",
			Metadata:  "{}",
			CreatedAt: createdAt,
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	if err := s.RunJob(t.Context(), "prune-events"); err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	events, err := q.ListRecentEvents(t.Context(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event after pruning, got %d", len(events))
	}
	if events[0].CreatedAt.Before(time.Now().Add(-EventRetention)) {
		t.Error("remaining event is older than the retention window")
	}
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	s, _ := testScheduler(t)

	if err := s.RunJob(t.Context(), "no-such-job"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestScheduler_Jobs(t *testing.T) {
	s, _ := testScheduler(t)

	jobs := s.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "prune-events" || jobs[1].Name != "storage-snapshot" {
		t.Errorf("jobs not sorted by name: %q, %q", jobs[0].Name, jobs[1].Name)
	}
	for _, job := range jobs {
		if job.Schedule == "" {
			t.Errorf("job %q has empty schedule", job.Name)
		}
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, _ := testScheduler(t)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, job := range s.Jobs() {
		if job.NextRun.IsZero() {
			t.Errorf("job %q has no next run after Start", job.Name)
		}
	}

	s.Stop()
}
