// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// NatsRecordingRepository is the NATS KV store repository for recordings.
// Each recording has an index entry under its meeting so that ListByMeeting
// does not read the whole bucket.
type NatsRecordingRepository struct {
	*NatsBaseRepository[models.Recording]
	keys *KeyBuilder
}

var _ domain.RecordingRepository = (*NatsRecordingRepository)(nil)

// NewNatsRecordingRepository creates a new NATS KV store repository for recordings.
func NewNatsRecordingRepository(kvStore INatsKeyValue) *NatsRecordingRepository {
	return &NatsRecordingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Recording](kvStore, "recording"),
		keys:               NewKeyBuilder(""),
	}
}

func (r *NatsRecordingRepository) key(recordingUID string) string {
	return r.keys.EntityKey(KeyPrefixRecording, recordingUID)
}

// Create stores a recording and indexes it by meeting.
// A second recording with the same (MeetingUID, RemoteID) is a conflict.
func (r *NatsRecordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	if recording == nil || recording.UID == "" {
		return domain.NewValidationError("recording UID is required")
	}
	if recording.MeetingUID == "" {
		return domain.NewValidationError("recording meeting UID is required")
	}

	existing, err := r.ListByMeeting(ctx, recording.MeetingUID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.RemoteID == recording.RemoteID {
			return domain.NewConflictError(fmt.Sprintf("recording %s already exists for meeting %s",
				recording.RemoteID, recording.MeetingUID))
		}
	}

	if err := r.NatsBaseRepository.Put(ctx, r.key(recording.UID), recording); err != nil {
		return err
	}
	return r.PutIndex(ctx, r.keys.IndexKey(KeyPrefixIndexMeeting, recording.MeetingUID, recording.UID))
}

// Get retrieves a recording by UID
func (r *NatsRecordingRepository) Get(ctx context.Context, recordingUID string) (*models.Recording, error) {
	return r.NatsBaseRepository.Get(ctx, r.key(recordingUID))
}

// Update overwrites a recording. The meeting a recording belongs to never changes.
func (r *NatsRecordingRepository) Update(ctx context.Context, recording *models.Recording) error {
	if recording == nil || recording.UID == "" {
		return domain.NewValidationError("recording UID is required")
	}

	_, rev, err := r.NatsBaseRepository.GetWithRevision(ctx, r.key(recording.UID))
	if err != nil {
		return err
	}
	return r.NatsBaseRepository.Update(ctx, r.key(recording.UID), recording, rev)
}

// Delete removes a recording and its meeting index entry
func (r *NatsRecordingRepository) Delete(ctx context.Context, recordingUID string) error {
	recording, err := r.Get(ctx, recordingUID)
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.Delete(ctx, r.key(recordingUID)); err != nil {
		return err
	}
	return r.DeleteIndex(ctx, r.keys.IndexKey(KeyPrefixIndexMeeting, recording.MeetingUID, recordingUID))
}

// ListByMeeting returns the recordings of a meeting ordered by start time.
func (r *NatsRecordingRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Recording, error) {
	uids, err := r.ListIndex(ctx, r.keys.IndexPrefix(KeyPrefixIndexMeeting, meetingUID))
	if err != nil {
		return nil, err
	}

	recordings := make([]*models.Recording, 0, len(uids))
	for _, uid := range uids {
		recording, err := r.Get(ctx, uid)
		if err != nil {
			if domain.IsNotFound(err) {
				slog.WarnContext(ctx, "dangling recording index entry", "meeting_uid", meetingUID, "recording_uid", uid)
				continue
			}
			slog.ErrorContext(ctx, "error reading indexed recording", logging.ErrKey, err, "recording_uid", uid)
			return nil, err
		}
		recordings = append(recordings, recording)
	}

	sortRecordings(recordings)
	return recordings, nil
}

// List returns every stored recording.
func (r *NatsRecordingRepository) List(ctx context.Context) ([]*models.Recording, error) {
	recordings, err := r.ListEntities(ctx, r.keys.EntityPrefix(KeyPrefixRecording))
	if err != nil {
		return nil, err
	}
	sortRecordings(recordings)
	return recordings, nil
}

func sortRecordings(recordings []*models.Recording) {
	sort.SliceStable(recordings, func(i, j int) bool {
		if !recordings[i].RecordingStart.Equal(recordings[j].RecordingStart) {
			return recordings[i].RecordingStart.Before(recordings[j].RecordingStart)
		}
		return recordings[i].UID < recordings[j].UID
	})
}
