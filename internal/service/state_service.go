// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/utils"
)

// ComputeState derives the availability of a meeting at now. Attendees may
// join lead before the start of the current occurrence until its end.
func ComputeState(meeting *models.Meeting, now time.Time, lead time.Duration) models.MeetingState {
	noFixedTime := !meeting.HasFixedTime()

	// Zero for recurring meetings without a pending occurrence, which leaves them finished.
	start := NextOccurrenceStart(meeting, now)

	firstAvailable := start.Add(-lead)
	lastAvailable := start.Add(time.Duration(meeting.Duration) * time.Second)

	inProgress := !firstAvailable.After(now) && !now.After(lastAvailable)

	return models.MeetingState{
		InProgress:     inProgress,
		Available:      noFixedTime || inProgress,
		Finished:       !noFixedTime && now.After(lastAvailable),
		Start:          start,
		FirstAvailable: firstAvailable,
		LastAvailable:  lastAvailable,
		Duration:       meeting.Duration,
		Recurring:      meeting.IsRecurring(),
		NoFixedTime:    noFixedTime,
	}
}

// GetState returns the availability snapshot of a stored meeting.
func (s *MeetingSyncService) GetState(ctx context.Context, meetingUID string) (*models.MeetingState, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	meeting, _, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	state := ComputeState(meeting, s.now(), s.Config.LeadTime)
	return &state, nil
}

// ResolveJoinTarget decides where caller should be sent to join a meeting.
// The real host gets a fresh start URL; everybody else gets their registrant
// join URL or the meeting join URL, labelled with their display name.
func (s *MeetingSyncService) ResolveJoinTarget(ctx context.Context, meetingUID string, caller models.Caller) (*models.JoinTarget, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	if !caller.Authorized {
		return &models.JoinTarget{Error: models.JoinErrorForbidden}, nil
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	meeting, _, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	state := ComputeState(meeting, s.now(), s.Config.LeadTime)
	available := state.Available

	registrantURL := ""
	if meeting.RequiresRegistration() && caller.Email != "" {
		registrantURL, err = s.Gateway.RegistrantJoinURL(ctx, meeting, caller.Email)
		if err != nil {
			slog.WarnContext(ctx, "failed to look up registrant", logging.ErrKey, err)
			registrantURL = ""
		}
		// Unregistered callers are let through so they can register.
		if registrantURL == "" {
			available = true
		}
	}

	if !available {
		return &models.JoinTarget{Error: models.JoinErrorUnavailable}, nil
	}

	isRealHost, isAltHost := s.hostRole(ctx, meeting, caller)

	if isRealHost {
		if s.Config.RecycleOnJoin {
			if err := s.Gateway.ProvideLicense(ctx, meeting.HostID); err != nil {
				slog.WarnContext(ctx, "failed to provide license to host", logging.ErrKey, err)
			}
		}
		return &models.JoinTarget{URL: s.startURL(ctx, meeting), IsHost: true}, nil
	}

	joinURL := utils.Coalesce(registrantURL, meeting.JoinURL)
	return &models.JoinTarget{URL: withDisplayName(joinURL, caller.DisplayName), IsHost: isAltHost}, nil
}

func (s *MeetingSyncService) hostRole(ctx context.Context, meeting *models.Meeting, caller models.Caller) (realHost, altHost bool) {
	identifier, err := s.Identity.ExternalIdentifier(ctx, caller)
	if err != nil {
		slog.DebugContext(ctx, "caller has no external identifier", logging.ErrKey, err)
		return false, false
	}

	altHost = slices.Contains(meeting.AlternativeHosts, identifier)

	zoomUserID, err := s.Gateway.ResolveUserID(ctx, identifier)
	if err != nil {
		slog.DebugContext(ctx, "caller is not a Zoom user", logging.ErrKey, err)
		return false, altHost
	}
	return zoomUserID == meeting.HostID, altHost
}

// startURL fetches the current start URL, which Zoom rotates, and falls back
// to the stored join URL.
func (s *MeetingSyncService) startURL(ctx context.Context, meeting *models.Meeting) string {
	fresh, err := s.Gateway.FetchMeeting(ctx, meeting)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch start URL, using join URL", logging.ErrKey, err)
		return meeting.JoinURL
	}
	return utils.Coalesce(fresh.StartURL, fresh.JoinURL, meeting.JoinURL)
}

func withDisplayName(rawURL, displayName string) string {
	if rawURL == "" || displayName == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("uname", displayName)
	u.RawQuery = q.Encode()
	return u.String()
}
