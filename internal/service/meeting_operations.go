// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/constants"
)

func validateMeetingPayload(meeting *models.Meeting) error {
	if meeting == nil {
		return domain.NewValidationError("meeting is required")
	}
	if meeting.Name == "" {
		return domain.NewValidationError("meeting name is required")
	}
	if meeting.HostID == "" {
		return domain.NewValidationError("meeting host is required")
	}
	if meeting.Mode == "" {
		return domain.NewValidationError("meeting scheduling mode is required")
	}
	if meeting.Mode == models.SchedulingModeRecurringFixed && meeting.Recurrence == nil {
		return domain.NewValidationError("recurring meeting with fixed time requires a recurrence")
	}
	if meeting.Duration < 0 || meeting.Duration > constants.MaxMeetingDurationMinutes*60 {
		return domain.NewValidationError(fmt.Sprintf("meeting duration must be between 0 and %d minutes",
			constants.MaxMeetingDurationMinutes))
	}
	return nil
}

// CreateMeeting creates the meeting in Zoom, stores it locally and notifies
// the calendar and grading collaborators.
//
// When a collaborator fails the created meeting is still returned together
// with the error, since the meeting exists on both sides.
func (s *MeetingSyncService) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	if err := validateMeetingPayload(meeting); err != nil {
		slog.WarnContext(ctx, "invalid meeting payload", logging.ErrKey, err)
		return nil, err
	}

	if meeting.UID == "" {
		meeting.UID = uuid.New().String()
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	created, err := s.Gateway.CreateMeeting(ctx, meeting)
	if err != nil {
		return nil, err
	}
	created.TimeModified = s.now()

	if err := s.MeetingRepository.Create(ctx, created); err != nil {
		slog.ErrorContext(ctx, "failed to store created meeting",
			logging.ErrKey, err,
			"meeting_id", created.RemoteID,
			logging.PriorityCritical())
		return nil, err
	}

	slog.InfoContext(ctx, "created meeting",
		"meeting_id", created.RemoteID,
		"host_id", created.HostID,
		"occurrences", len(created.Occurrences))

	if err := s.SyncMeetingTrackingFields(ctx, created.UID, created.TrackingFields); err != nil {
		slog.WarnContext(ctx, "failed to store tracking field values", logging.ErrKey, err)
	}

	if err := s.notifyUpsert(ctx, created); err != nil {
		return created, err
	}

	return created, nil
}

// UpdateMeeting pushes the local changes to Zoom, refetches the meeting so
// derived values such as occurrences are current, and stores the result.
func (s *MeetingSyncService) UpdateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	if meeting == nil || meeting.UID == "" {
		return nil, domain.NewValidationError("meeting UID is required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	existing, revision, err := s.MeetingRepository.Get(ctx, meeting.UID)
	if err != nil {
		return nil, err
	}

	desired := *meeting
	desired.RemoteID = existing.RemoteID
	desired.IsWebinar = existing.IsWebinar
	desired.RemoteState = existing.RemoteState
	if desired.HostID == "" {
		desired.HostID = existing.HostID
	}
	if err := validateMeetingPayload(&desired); err != nil {
		slog.WarnContext(ctx, "invalid meeting payload", logging.ErrKey, err)
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.Int64("meeting_id", desired.RemoteID))

	values, err := s.storedTrackingFields(ctx, desired.UID)
	if err != nil {
		return nil, err
	}
	maps.Copy(values, desired.TrackingFields)
	desired.TrackingFields = values

	if err := s.Gateway.UpdateMeeting(ctx, &desired); err != nil {
		return nil, err
	}

	updated, err := s.Gateway.FetchMeeting(ctx, &desired)
	if err != nil {
		slog.ErrorContext(ctx, "failed to refetch updated meeting", logging.ErrKey, err)
		return nil, err
	}
	updated.TimeModified = s.now()

	if err := s.MeetingRepository.Update(ctx, updated, revision); err != nil {
		slog.ErrorContext(ctx, "failed to store updated meeting", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "updated meeting")

	if err := s.SyncMeetingTrackingFields(ctx, updated.UID, updated.TrackingFields); err != nil {
		slog.WarnContext(ctx, "failed to store tracking field values", logging.ErrKey, err)
	}

	if err := s.notifyUpsert(ctx, updated); err != nil {
		return updated, err
	}

	return updated, nil
}

// DeleteMeeting removes the meeting from Zoom and then every local trace of it.
// A meeting that is already gone from Zoom is not an error.
func (s *MeetingSyncService) DeleteMeeting(ctx context.Context, meetingUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return errServiceUnavailable
	}

	if meetingUID == "" {
		return domain.NewValidationError("meeting UID is required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, _, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.Int64("meeting_id", meeting.RemoteID))

	if meeting.RemoteState != models.RemoteStateExpired && meeting.RemoteID != 0 {
		err := s.Gateway.DeleteMeeting(ctx, meeting.RemoteID, meeting.IsWebinar)
		switch {
		case err == nil:
		case domain.IsNotFound(err) || domain.IsMeetingGone(err):
			slog.InfoContext(ctx, "meeting already gone from Zoom")
		default:
			slog.ErrorContext(ctx, "failed to delete Zoom meeting", logging.ErrKey, err)
			return err
		}
	}

	if err := s.TrackingFieldRepository.DeleteByMeeting(ctx, meetingUID); err != nil {
		slog.ErrorContext(ctx, "failed to delete tracking field values", logging.ErrKey, err)
		return err
	}

	recordings, err := s.RecordingRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list recordings", logging.ErrKey, err)
		return err
	}
	for _, recording := range recordings {
		if err := s.RecordingRepository.Delete(ctx, recording.UID); err != nil && !domain.IsNotFound(err) {
			slog.ErrorContext(ctx, "failed to delete recording", logging.ErrKey, err, "recording_uid", recording.UID)
			return err
		}
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		return s.Calendar.DeleteEventsForMeeting(ctx, meeting)
	})
	g.Go(func() error {
		return s.Grading.DeleteGradeItem(ctx, meeting)
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to notify collaborators of deleted meeting", logging.ErrKey, err)
		return domain.NewInternalError("failed to notify collaborators", err)
	}

	if err := s.MeetingRepository.Delete(ctx, meetingUID); err != nil {
		slog.ErrorContext(ctx, "failed to delete meeting", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "deleted meeting", "recordings", len(recordings))
	return nil
}

// SyncMeetingTrackingFields makes the stored tracking field values of a meeting
// match values, which is keyed by normalized field name. Only configured fields
// are kept; an empty value removes the stored one.
func (s *MeetingSyncService) SyncMeetingTrackingFields(ctx context.Context, meetingUID string, values map[string]string) error {
	stored, err := s.storedTrackingFields(ctx, meetingUID)
	if err != nil {
		return err
	}

	for key := range s.Config.TrackingFields {
		value := values[key]
		current, exists := stored[key]

		switch {
		case value == "" && exists:
			if err := s.TrackingFieldRepository.Delete(ctx, meetingUID, key); err != nil {
				return err
			}
		case value != "" && (!exists || current != value):
			if err := s.TrackingFieldRepository.Put(ctx, &models.TrackingFieldValue{
				MeetingUID: meetingUID,
				Field:      key,
				Value:      value,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *MeetingSyncService) storedTrackingFields(ctx context.Context, meetingUID string) (map[string]string, error) {
	stored, err := s.TrackingFieldRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list tracking field values", logging.ErrKey, err)
		return nil, err
	}
	values := make(map[string]string, len(stored))
	for _, v := range stored {
		values[v.Field] = v.Value
	}
	return values, nil
}

func (s *MeetingSyncService) notifyUpsert(ctx context.Context, meeting *models.Meeting) error {
	g := new(errgroup.Group)
	g.Go(func() error {
		return s.Calendar.UpsertEventsForMeeting(ctx, meeting)
	})
	g.Go(func() error {
		return s.Grading.UpsertGradeItem(ctx, meeting)
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to notify collaborators", logging.ErrKey, err)
		return domain.NewInternalError("failed to notify collaborators", err)
	}
	return nil
}
