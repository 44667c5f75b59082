// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// ListRecordingsForDisplay returns the stored recordings of a meeting grouped
// by meeting run, earliest run first. Hidden recordings are only included for
// callers that can manage the meeting.
func (s *MeetingSyncService) ListRecordingsForDisplay(ctx context.Context, meetingUID string, canManage bool) ([]models.RecordingDisplayGroup, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	if !s.Config.ViewRecordings {
		return []models.RecordingDisplayGroup{}, nil
	}

	recordings, err := s.RecordingRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list recordings", logging.ErrKey, err, "meeting_uid", meetingUID)
		return nil, err
	}

	return GroupRecordingsForDisplay(recordings, canManage), nil
}

// GroupRecordingsForDisplay groups recordings by meeting UUID. Groups are
// ordered by their earliest recording and recordings by start time then type.
func GroupRecordingsForDisplay(recordings []*models.Recording, includeHidden bool) []models.RecordingDisplayGroup {
	index := make(map[string]int)
	groups := []models.RecordingDisplayGroup{}

	for _, rec := range recordings {
		if rec == nil || (!rec.Visible && !includeHidden) {
			continue
		}
		i, ok := index[rec.MeetingUUID]
		if !ok {
			i = len(groups)
			index[rec.MeetingUUID] = i
			groups = append(groups, models.RecordingDisplayGroup{
				MeetingUUID: rec.MeetingUUID,
				StartTime:   rec.RecordingStart,
			})
		}
		g := &groups[i]
		g.Recordings = append(g.Recordings, rec)
		if rec.RecordingStart.Before(g.StartTime) {
			g.StartTime = rec.RecordingStart
		}
	}

	for i := range groups {
		recs := groups[i].Recordings
		sort.SliceStable(recs, func(a, b int) bool {
			if !recs[a].RecordingStart.Equal(recs[b].RecordingStart) {
				return recs[a].RecordingStart.Before(recs[b].RecordingStart)
			}
			return recs[a].Type > recs[b].Type
		})
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].StartTime.Before(groups[b].StartTime)
	})

	return groups
}

// SetRecordingVisibility shows or hides a stored recording.
func (s *MeetingSyncService) SetRecordingVisibility(ctx context.Context, recordingUID string, visible bool) (*models.Recording, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	if recordingUID == "" {
		return nil, domain.NewValidationError("recording UID is required")
	}

	recording, err := s.RecordingRepository.Get(ctx, recordingUID)
	if err != nil {
		return nil, err
	}
	if recording.Visible == visible {
		return recording, nil
	}

	recording.Visible = visible
	recording.UpdatedAt = s.now()
	if err := s.RecordingRepository.Update(ctx, recording); err != nil {
		slog.ErrorContext(ctx, "failed to update recording visibility", logging.ErrKey, err, "recording_uid", recordingUID)
		return nil, err
	}

	slog.InfoContext(ctx, "changed recording visibility", "recording_uid", recordingUID, "visible", visible)
	return recording, nil
}
