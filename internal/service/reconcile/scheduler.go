// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package reconcile keeps the local meeting store in step with Zoom through
// periodic jobs.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/instrumentation"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/concurrent"
)

const tracerName = "github.com/linuxfoundation/lfx-v2-meeting-sync/internal/service/reconcile"

// Job names.
const (
	JobMeetings         = "meetings"
	JobRecordings       = "recordings"
	JobPruneRecordings  = "prune-recordings"
	JobTrackingFields   = "tracking-fields"
	defaultSyncInterval = time.Hour
)

// JobNames lists every job in the order a full run executes them.
var JobNames = []string{JobMeetings, JobRecordings, JobPruneRecordings, JobTrackingFields}

// Cooldown is the shared quota cooldown written by the Zoom client.
type Cooldown interface {
	Load(ctx context.Context) error
	Active(now time.Time) bool
	Until() time.Time
}

// TrackingFieldSyncer stores tracking field definitions and per-meeting values.
type TrackingFieldSyncer interface {
	SyncMeetingTrackingFields(ctx context.Context, meetingUID string, values map[string]string) error
	SyncTrackingFields(ctx context.Context) (*service.TrackingFieldSyncResult, error)
}

// Config holds the scheduler settings.
type Config struct {
	// Interval between two full runs.
	Interval time.Duration
	// Workers bounds the per-item concurrency of a job.
	Workers int
	// ViewRecordings enables recording discovery.
	ViewRecordings bool
}

// Dependencies are the stores and collaborators the jobs work on.
type Dependencies struct {
	Gateway        domain.MeetingGateway
	Meetings       domain.MeetingRepository
	Recordings     domain.RecordingRepository
	Calendar       domain.CalendarCollaborator
	TrackingFields TrackingFieldSyncer
	Cooldown       Cooldown
	Metrics        *instrumentation.JobMetrics
}

// Summary counts what a job did.
type Summary struct {
	Processed int
	Changed   int
	Failed    int
}

type job func(ctx context.Context) (Summary, error)

// Scheduler runs the reconciliation jobs.
type Scheduler struct {
	gateway        domain.MeetingGateway
	meetings       domain.MeetingRepository
	recordings     domain.RecordingRepository
	calendar       domain.CalendarCollaborator
	trackingFields TrackingFieldSyncer
	cooldown       Cooldown
	metrics        *instrumentation.JobMetrics
	pool           *concurrent.WorkerPool
	config         Config
	jobs           map[string]job

	now    func() time.Time
	newUID func() string
}

// NewScheduler creates a scheduler.
func NewScheduler(deps Dependencies, config Config) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = defaultSyncInterval
	}

	s := &Scheduler{
		gateway:        deps.Gateway,
		meetings:       deps.Meetings,
		recordings:     deps.Recordings,
		calendar:       deps.Calendar,
		trackingFields: deps.TrackingFields,
		cooldown:       deps.Cooldown,
		metrics:        deps.Metrics,
		pool:           concurrent.NewWorkerPool(config.Workers),
		config:         config,
		now:            time.Now,
		newUID:         func() string { return uuid.New().String() },
	}
	s.jobs = map[string]job{
		JobMeetings:        s.syncMeetings,
		JobRecordings:      s.discoverRecordings,
		JobPruneRecordings: s.pruneRecordings,
		JobTrackingFields:  s.syncTrackingFields,
	}
	return s
}

// Run executes every job now and then on each interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "starting reconciliation scheduler",
		"interval", s.config.Interval.String(),
		"workers", s.pool.Size())

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		if err := s.RunAll(ctx); err != nil {
			slog.WarnContext(ctx, "reconciliation run finished with errors", logging.ErrKey, err)
		}

		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "reconciliation scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunAll executes every job once, in JobNames order.
func (s *Scheduler) RunAll(ctx context.Context) error {
	var errs []error
	for _, name := range JobNames {
		if ctx.Err() != nil {
			break
		}
		if err := s.RunJob(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// RunJob executes one job unless the quota cooldown is still active.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	run, ok := s.jobs[name]
	if !ok {
		return domain.NewValidationError(fmt.Sprintf("unknown job %q", name))
	}

	ctx = logging.AppendCtx(ctx, slog.String("job", name))
	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconcile."+name)
	defer span.End()

	if err := s.cooldown.Load(ctx); err != nil {
		slog.WarnContext(ctx, "failed to load quota cooldown", logging.ErrKey, err)
	}
	if s.cooldown.Active(s.now()) {
		slog.InfoContext(ctx, "skipping job, Zoom quota exhausted",
			"retry_after", s.cooldown.Until().UTC().Format(time.RFC3339))
		span.SetAttributes(attribute.String("result", instrumentation.ResultSkipped))
		s.metrics.RecordRun(ctx, name, instrumentation.ResultSkipped, 0)
		return nil
	}

	slog.InfoContext(ctx, "starting job")
	started := s.now()

	summary, err := run(ctx)

	elapsed := s.now().Sub(started)
	result := instrumentation.ResultSuccess
	switch {
	case err != nil && domain.IsFatal(err):
		result = instrumentation.ResultAborted
	case err != nil:
		result = instrumentation.ResultFailed
	}

	s.metrics.RecordRun(ctx, name, result, elapsed)
	s.metrics.RecordItems(ctx, name, instrumentation.OutcomeProcessed, summary.Processed)
	s.metrics.RecordItems(ctx, name, instrumentation.OutcomeChanged, summary.Changed)
	s.metrics.RecordItems(ctx, name, instrumentation.OutcomeFailed, summary.Failed)

	span.SetAttributes(
		attribute.String("result", result),
		attribute.Int("processed", summary.Processed),
		attribute.Int("changed", summary.Changed),
		attribute.Int("failed", summary.Failed),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		attrs := []any{
			logging.ErrKey, err,
			"processed", summary.Processed,
			"changed", summary.Changed,
			"failed", summary.Failed,
		}
		if domain.GetErrorType(err) != domain.ErrorTypeQuotaExhausted {
			attrs = append(attrs, logging.PriorityCritical())
		}
		slog.ErrorContext(ctx, "job aborted", attrs...)
		return err
	}

	slog.InfoContext(ctx, "finished job",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"failed", summary.Failed,
		"duration", elapsed.String())
	return nil
}

// quotaError turns an active cooldown into the error that aborts a job.
// Recording listings swallow Zoom errors, so the cooldown is the only signal.
func (s *Scheduler) quotaError() error {
	if !s.cooldown.Active(s.now()) {
		return nil
	}
	until := s.cooldown.Until()
	return domain.NewQuotaExhaustedError(
		fmt.Sprintf("zoom quota exhausted until %s", until.UTC().Format(time.RFC3339)), 0, until)
}

// forEachItem runs fn for every item on pool. Item errors are logged by fn and
// counted; the first fatal error cancels the remaining items and is returned.
func forEachItem[T any](ctx context.Context, pool *concurrent.WorkerPool, items []T, fn func(context.Context, T) error) (int, error) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		fatal error
	)
	errs := concurrent.ForEach(jobCtx, pool, items, func(ctx context.Context, item T) error {
		err := fn(ctx, item)
		if err != nil && domain.IsFatal(err) {
			mu.Lock()
			if fatal == nil {
				fatal = err
			}
			mu.Unlock()
			cancel()
		}
		return err
	})

	failed := 0
	for _, err := range errs {
		if domain.IsFatal(err) || errors.Is(err, context.Canceled) {
			continue
		}
		failed++
	}

	if fatal != nil {
		return failed, fatal
	}
	return failed, ctx.Err()
}
