// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// syncMeetings pulls the remote state of every meeting that exists on Zoom and
// applies the differences locally.
func (s *Scheduler) syncMeetings(ctx context.Context) (Summary, error) {
	meetings, err := s.meetings.ListByRemoteState(ctx, models.RemoteStateExists)
	if err != nil {
		return Summary{}, err
	}

	var changed atomic.Int64
	failed, err := forEachItem(ctx, s.pool, meetings, func(ctx context.Context, meeting *models.Meeting) error {
		updated, err := s.syncMeeting(ctx, meeting.UID)
		if err != nil {
			return err
		}
		if updated {
			changed.Add(1)
		}
		return nil
	})

	return Summary{Processed: len(meetings), Changed: int(changed.Load()), Failed: failed}, err
}

func (s *Scheduler) syncMeeting(ctx context.Context, uid string) (bool, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", uid))

	local, revision, err := s.meetings.Get(ctx, uid)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load meeting", logging.ErrKey, err)
		return false, err
	}

	remote, err := s.gateway.FetchMeeting(ctx, local)
	if err != nil {
		if domain.IsNotFound(err) {
			slog.WarnContext(ctx, "meeting no longer exists on Zoom, marking expired",
				"meeting_id", local.RemoteID)
			local.RemoteState = models.RemoteStateExpired
			local.TimeModified = s.now().UTC()
			if err := s.meetings.Update(ctx, local, revision); err != nil {
				slog.ErrorContext(ctx, "failed to mark meeting expired", logging.ErrKey, err)
				return false, err
			}
			return true, nil
		}
		slog.ErrorContext(ctx, "failed to fetch meeting from Zoom", logging.ErrKey, err)
		return false, err
	}

	changes := DiffMeetings(local, remote)
	if len(changes) > 0 {
		fields := make([]string, 0, len(changes))
		for _, c := range changes {
			fields = append(fields, c.Field)
		}
		slog.InfoContext(ctx, "meeting changed on Zoom", "fields", fields)

		remote.TimeModified = s.now().UTC()
		if err := s.meetings.Update(ctx, remote, revision); err != nil {
			slog.ErrorContext(ctx, "failed to store meeting changes", logging.ErrKey, err)
			return false, err
		}

		if ScheduleChanged(changes) || remote.Mode == models.SchedulingModeRecurringNoTime {
			if err := s.calendar.UpsertEventsForMeeting(ctx, remote); err != nil {
				slog.WarnContext(ctx, "failed to update calendar events", logging.ErrKey, err)
			}
		}
	}

	if err := s.trackingFields.SyncMeetingTrackingFields(ctx, uid, remote.TrackingFields); err != nil {
		slog.WarnContext(ctx, "failed to sync tracking field values", logging.ErrKey, err)
	}

	return len(changes) > 0, nil
}

// discoverRecordings stores every playable remote recording not yet known locally.
func (s *Scheduler) discoverRecordings(ctx context.Context) (Summary, error) {
	if !s.config.ViewRecordings {
		slog.DebugContext(ctx, "recordings are disabled")
		return Summary{}, nil
	}

	all, err := s.meetings.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	now := s.now()
	var meetings []*models.Meeting
	for _, m := range all {
		if m.RemoteID == 0 {
			continue
		}
		if m.IsRecurring() || now.After(m.EndTime()) {
			meetings = append(meetings, m)
		}
	}

	var created atomic.Int64
	failed, err := forEachItem(ctx, s.pool, meetings, func(ctx context.Context, meeting *models.Meeting) error {
		n, err := s.discoverMeetingRecordings(ctx, meeting)
		created.Add(int64(n))
		return err
	})

	return Summary{Processed: len(meetings), Changed: int(created.Load()), Failed: failed}, err
}

func (s *Scheduler) discoverMeetingRecordings(ctx context.Context, meeting *models.Meeting) (int, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	stored, err := s.recordings.ListByMeeting(ctx, meeting.UID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list stored recordings", logging.ErrKey, err)
		return 0, err
	}
	known := make(map[string]bool, len(stored))
	for _, r := range stored {
		known[r.RemoteID] = true
	}

	groups := s.gateway.ListRecordings(ctx, strconv.FormatInt(meeting.RemoteID, 10))
	if err := s.quotaError(); err != nil {
		return 0, err
	}

	created := 0
	for _, group := range groups {
		for _, remote := range group.Recordings {
			if known[remote.RemoteID] {
				continue
			}
			now := s.now().UTC()
			recording := &models.Recording{
				UID:            s.newUID(),
				MeetingUID:     meeting.UID,
				RemoteID:       remote.RemoteID,
				MeetingUUID:    remote.MeetingUUID,
				Name:           recordingName(meeting.Name, remote.Type),
				ExternalURL:    remote.URL,
				Passcode:       remote.Passcode,
				Type:           remote.Type,
				RecordingStart: group.RecordingStart,
				Visible:        meeting.RecordingsVisibleDefault,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := s.recordings.Create(ctx, recording); err != nil {
				slog.ErrorContext(ctx, "failed to store recording", logging.ErrKey, err,
					"recording_id", remote.RemoteID)
				return created, err
			}
			known[remote.RemoteID] = true
			created++
		}
	}

	if created > 0 {
		slog.InfoContext(ctx, "stored new recordings", "count", created)
	}
	return created, nil
}

func recordingName(meetingName string, recordingType models.RecordingType) string {
	return strings.TrimSpace(meetingName) + " (" + string(recordingType) + ")"
}

// pruneRecordings removes local recordings that Zoom no longer lists for their
// meeting run. A run whose listing fails for any reason but not found is left alone.
func (s *Scheduler) pruneRecordings(ctx context.Context) (Summary, error) {
	all, err := s.recordings.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	byRun := make(map[string][]*models.Recording)
	for _, r := range all {
		if r.MeetingUUID == "" {
			continue
		}
		byRun[r.MeetingUUID] = append(byRun[r.MeetingUUID], r)
	}
	runs := make([]string, 0, len(byRun))
	for uuid := range byRun {
		runs = append(runs, uuid)
	}
	slices.Sort(runs)

	var deleted atomic.Int64
	failed, err := forEachItem(ctx, s.pool, runs, func(ctx context.Context, meetingUUID string) error {
		n, err := s.pruneRun(ctx, meetingUUID, byRun[meetingUUID])
		deleted.Add(int64(n))
		return err
	})

	return Summary{Processed: len(runs), Changed: int(deleted.Load()), Failed: failed}, err
}

func (s *Scheduler) pruneRun(ctx context.Context, meetingUUID string, stored []*models.Recording) (int, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uuid", meetingUUID))

	groups, err := s.gateway.FetchRecordings(ctx, meetingUUID)
	if err != nil && !domain.IsNotFound(err) {
		slog.WarnContext(ctx, "failed to list recordings on Zoom, keeping stored recordings", logging.ErrKey, err)
		return 0, err
	}

	present := make(map[string]bool)
	for _, group := range groups {
		for _, r := range group.Recordings {
			present[r.RemoteID] = true
		}
	}

	deleted := 0
	for _, r := range stored {
		if present[r.RemoteID] {
			continue
		}
		if err := s.recordings.Delete(ctx, r.UID); err != nil && !domain.IsNotFound(err) {
			slog.ErrorContext(ctx, "failed to delete recording", logging.ErrKey, err,
				"recording_uid", r.UID)
			return deleted, err
		}
		slog.InfoContext(ctx, "deleted recording missing on Zoom",
			"recording_uid", r.UID,
			"recording_id", r.RemoteID)
		deleted++
	}
	return deleted, nil
}

func (s *Scheduler) syncTrackingFields(ctx context.Context) (Summary, error) {
	result, err := s.trackingFields.SyncTrackingFields(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Processed: len(result.Synced) + len(result.Removed),
		Changed:   len(result.Removed) + result.ValuesRemoved,
	}, nil
}
