// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"folio-go/internal/model"
	"folio-go/internal/service"
	"folio-go/internal/store"
)

// EventRetention is how long event log entries are kept before pruning.
const EventRetention = 90 * 24 * time.Hour

// Job is a named maintenance task with a cron schedule.
type Job struct {
	Name        string
	Description string
	Schedule    string
	Run         func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	NextRun     time.Time
}

// Scheduler runs background maintenance: an hourly storage-usage snapshot
// and daily pruning of old event log entries.
type Scheduler struct {
	db      *sql.DB
	queries *store.Queries
	media   *service.MediaService
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.RWMutex
	entries map[string]cron.EntryID
	jobs    map[string]Job
}

// New creates a scheduler with the built-in maintenance jobs registered.
func New(db *sql.DB, media *service.MediaService, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		db:      db,
		queries: store.New(db),
		media:   media,
		cron:    cron.New(),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
		jobs:    make(map[string]Job),
	}

	s.register(Job{
		Name:        "storage-snapshot",
		Description: "Record current media storage usage in the event log",
		Schedule:    "0 * * * *",
		Run:         s.snapshotStorageUsage,
	})
	s.register(Job{
		Name:        "prune-events",
		Description: "Delete event log entries older than the retention window",
		Schedule:    "30 3 * * *",
		Run:         s.pruneEvents,
	})

	return s
}

func (s *Scheduler) register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = job
}

// Start schedules all registered jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, job := range s.jobs {
		if _, ok := s.entries[name]; ok {
			continue
		}
		run := job.Run
		jobName := name
		id, err := s.cron.AddFunc(job.Schedule, func() {
			if err := run(context.Background()); err != nil {
				s.logger.Error("scheduled job failed", "job", jobName, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", name, err)
		}
		s.entries[name] = id
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.entries))
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs returns the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for name, job := range s.jobs {
		info := JobInfo{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
		}
		if id, ok := s.entries[name]; ok {
			info.NextRun = s.cron.Entry(id).Next
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// RunJob triggers a registered job by name, outside its schedule.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.Run(ctx)
}

// snapshotStorageUsage records the current upload storage totals as an
// event so usage can be tracked over time.
func (s *Scheduler) snapshotStorageUsage(ctx context.Context) error {
	usage, err := s.media.Usage(ctx)
	if err != nil {
		return fmt.Errorf("querying storage usage: %w", err)
	}

	metadata, _ := json.Marshal(usage)
	_, err = s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryMedia,
		Message:   "Storage usage snapshot",
		Metadata:  string(metadata),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("recording snapshot event: %w", err)
	}

	s.logger.Debug("storage usage snapshot recorded",
		"total_bytes", usage.TotalBytes,
		"total_files", usage.TotalFiles,
	)
	return nil
}

// pruneEvents deletes event log entries older than EventRetention.
func (s *Scheduler) pruneEvents(ctx context.Context) error {
	cutoff := time.Now().Add(-EventRetention)
	deleted, err := s.queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pruning events: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("pruned old events", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
