// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/linuxfoundation/lfx-v2-meeting-sync/internal/instrumentation"

// Metric attribute keys
const (
	attrJob     = "job"
	attrResult  = "result"
	attrOutcome = "outcome"
)

// Job results.
const (
	ResultSuccess = "success"
	ResultSkipped = "skipped"
	ResultAborted = "aborted"
	ResultFailed  = "failed"
)

// Item outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeChanged   = "changed"
	OutcomeFailed    = "failed"
)

// JobMetrics records reconciliation job runs and their per-item outcomes.
type JobMetrics struct {
	runs     metric.Int64Counter
	items    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewJobMetrics creates the job instruments on meter.
func NewJobMetrics(meter metric.Meter) (*JobMetrics, error) {
	m := &JobMetrics{}
	var err error

	m.runs, err = meter.Int64Counter(
		"meeting_sync_job_runs_total",
		metric.WithDescription("Reconciliation job runs by job and result"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_sync_job_runs_total counter: %w", err)
	}

	m.items, err = meter.Int64Counter(
		"meeting_sync_job_items_total",
		metric.WithDescription("Items processed by reconciliation jobs by outcome"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_sync_job_items_total counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"meeting_sync_job_duration_seconds",
		metric.WithDescription("Reconciliation job duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 1, 5, 15, 60, 300, 900, 3600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting_sync_job_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// DefaultJobMetrics creates job instruments on the global meter provider.
// It falls back to a recorder that drops everything when creation fails.
func DefaultJobMetrics() *JobMetrics {
	m, err := NewJobMetrics(otel.Meter(meterName))
	if err != nil {
		return &JobMetrics{}
	}
	return m
}

// RecordRun records one finished job run.
func (m *JobMetrics) RecordRun(ctx context.Context, job, result string, elapsed time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrJob, job),
		attribute.String(attrResult, result),
	))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String(attrJob, job)))
}

// RecordItems adds n items with the given outcome for job.
func (m *JobMetrics) RecordItems(ctx context.Context, job, outcome string, n int) {
	if m == nil || m.items == nil || n == 0 {
		return
	}
	m.items.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String(attrJob, job),
		attribute.String(attrOutcome, outcome),
	))
}
