// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

func newRecording(uid, meetingUID, remoteID string, start time.Time) *models.Recording {
	return &models.Recording{
		UID:            uid,
		MeetingUID:     meetingUID,
		RemoteID:       remoteID,
		Name:           "Recording " + uid,
		ExternalURL:    "https://zoom.us/rec/play/" + remoteID,
		Type:           models.RecordingTypeVideo,
		RecordingStart: start,
	}
}

func TestNatsRecordingRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	kv := newMockNatsKeyValue()
	repo := NewNatsRecordingRepository(kv)
	t0 := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newRecording("r-2", "m-1", "zoom-b", t0.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newRecording("r-1", "m-1", "zoom-a", t0)))
	require.NoError(t, repo.Create(ctx, newRecording("r-3", "m-2", "zoom-a", t0)))

	assert.Contains(t, kv.data, "index/meeting/m-1/r-1")
	assert.Contains(t, kv.data, "index/meeting/m-1/r-2")

	byMeeting, err := repo.ListByMeeting(ctx, "m-1")
	require.NoError(t, err)
	require.Len(t, byMeeting, 2)
	assert.Equal(t, "r-1", byMeeting[0].UID)
	assert.Equal(t, "r-2", byMeeting[1].UID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.ListByMeeting(ctx, "m-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNatsRecordingRepository_Create(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		existing     []*models.Recording
		recording    *models.Recording
		expectedType domain.ErrorType
	}{
		{
			name:         "same remote id in the same meeting",
			existing:     []*models.Recording{newRecording("r-1", "m-1", "zoom-a", t0)},
			recording:    newRecording("r-2", "m-1", "zoom-a", t0),
			expectedType: domain.ErrorTypeConflict,
		},
		{
			name:         "missing uid",
			recording:    newRecording("", "m-1", "zoom-a", t0),
			expectedType: domain.ErrorTypeValidation,
		},
		{
			name:         "missing meeting",
			recording:    newRecording("r-1", "", "zoom-a", t0),
			expectedType: domain.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewNatsRecordingRepository(newMockNatsKeyValue())
			for _, r := range tt.existing {
				require.NoError(t, repo.Create(ctx, r))
			}

			err := repo.Create(ctx, tt.recording)

			require.Error(t, err)
			assert.Equal(t, tt.expectedType, domain.GetErrorType(err))
		})
	}
}

func TestNatsRecordingRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	kv := newMockNatsKeyValue()
	repo := NewNatsRecordingRepository(kv)
	rec := newRecording("r-1", "m-1", "zoom-a", time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, rec))

	rec.Visible = true
	rec.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, rec))

	got, err := repo.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.True(t, got.Visible)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, "r-1"))
	assert.NotContains(t, kv.data, "index/meeting/m-1/r-1")

	_, err = repo.Get(ctx, "r-1")
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(repo.Update(ctx, rec)))
	assert.True(t, domain.IsNotFound(repo.Delete(ctx, "r-1")))
}

func TestNatsRecordingRepository_DanglingIndex(t *testing.T) {
	ctx := context.Background()
	kv := newMockNatsKeyValue()
	repo := NewNatsRecordingRepository(kv)
	require.NoError(t, repo.Create(ctx, newRecording("r-1", "m-1", "zoom-a", time.Now().UTC())))
	kv.store("index/meeting/m-1/r-gone", []byte{})

	recordings, err := repo.ListByMeeting(ctx, "m-1")

	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, "r-1", recordings[0].UID)
}
