// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// Get returns a revision that Update must echo back for optimistic concurrency.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Get(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	Delete(ctx context.Context, meetingUID string) error

	// Bulk operations
	List(ctx context.Context) ([]*models.Meeting, error)
	ListByRemoteState(ctx context.Context, state models.RemoteState) ([]*models.Meeting, error)
}

// RecordingRepository defines the interface for recording storage operations.
type RecordingRepository interface {
	Create(ctx context.Context, recording *models.Recording) error
	Get(ctx context.Context, recordingUID string) (*models.Recording, error)
	Update(ctx context.Context, recording *models.Recording) error
	Delete(ctx context.Context, recordingUID string) error

	ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Recording, error)
	List(ctx context.Context) ([]*models.Recording, error)
}

// TrackingFieldRepository stores per-meeting tracking field values.
type TrackingFieldRepository interface {
	Put(ctx context.Context, value *models.TrackingFieldValue) error
	Delete(ctx context.Context, meetingUID, field string) error
	ListByMeeting(ctx context.Context, meetingUID string) ([]*models.TrackingFieldValue, error)
	DeleteByMeeting(ctx context.Context, meetingUID string) error
	// DeleteByField removes the values of a field across all meetings and returns how many were removed.
	DeleteByField(ctx context.Context, field string) (int, error)
}

// ConfigStore is a flat key/value configuration store.
// GetConfig returns "" for unset keys; SetConfig with "" removes the key.
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	ListConfigKeys(ctx context.Context) ([]string, error)
}
