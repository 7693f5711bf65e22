// Package scheduler re-runs the card pipeline on a cron schedule as the
// snapshot file is refreshed during a race day.
package scheduler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RunFunc processes one refreshed snapshot file.
type RunFunc func(ctx context.Context, path string) error

// Scheduler manages the scheduled snapshot refresh job. A content-hash cache
// skips runs whose input has not changed since the last processing.
type Scheduler struct {
	cron       *cron.Cron
	logger     *logrus.Logger
	seen       *gocache.Cache
	jobTimeout time.Duration
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
}

// New creates a scheduler. cacheTTL bounds how long a processed snapshot
// hash suppresses re-runs.
func New(logger *logrus.Logger, cacheTTL time.Duration) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		logger:     logger,
		seen:       gocache.New(cacheTTL, 2*cacheTTL),
		jobTimeout: 10 * time.Minute,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleCardRefresh schedules run against path on the given cron
// expression (standard five-field specs and @every intervals both work).
func (s *Scheduler) ScheduleCardRefresh(cronExpression, path string, run RunFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		changed, hash, err := s.snapshotChanged(path)
		if err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("Snapshot unreadable, skipping run")
			return
		}
		if !changed {
			s.logger.WithField("path", path).Debug("Snapshot unchanged, skipping run")
			return
		}

		s.logger.WithField("path", path).Info("Snapshot refreshed, running pipeline")
		if err := run(ctx, path); err != nil {
			s.logger.WithError(err).WithField("path", path).Error("Scheduled run failed")
			return
		}
		s.seen.SetDefault(cacheKey(path), hash)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"schedule": cronExpression,
		"path":     path,
	}).Info("Scheduled card refresh job")

	return nil
}

// snapshotChanged hashes the file content and compares it to the cached
// hash of the last successful run.
func (s *Scheduler) snapshotChanged(path string) (bool, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if prev, found := s.seen.Get(cacheKey(path)); found && prev.(string) == hash {
		return false, hash, nil
	}
	return true, hash, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	next := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}

func cacheKey(path string) string {
	return "snapshot:" + path
}
