// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
)

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// LeadTime is how long before the start attendees may already join.
	LeadTime time.Duration
	// ViewRecordings enables recording discovery and display.
	ViewRecordings bool
	// RecycleOnJoin provides the host a license when they start a meeting.
	RecycleOnJoin bool
	// TrackingFields maps normalized keys to the Zoom labels that are synced.
	TrackingFields map[string]string
}

// Repositories groups the local stores the service reads and writes.
type Repositories struct {
	Meetings       domain.MeetingRepository
	Recordings     domain.RecordingRepository
	TrackingFields domain.TrackingFieldRepository
	Config         domain.ConfigStore
}

// Collaborators groups the host-side collaborators notified about meeting changes.
type Collaborators struct {
	Calendar domain.CalendarCollaborator
	Grading  domain.GradingCollaborator
	Identity domain.IdentityService
}

// MeetingSyncService exposes the meeting operations a host calls into.
type MeetingSyncService struct {
	Gateway                 domain.MeetingGateway
	MeetingRepository       domain.MeetingRepository
	RecordingRepository     domain.RecordingRepository
	TrackingFieldRepository domain.TrackingFieldRepository
	ConfigStore             domain.ConfigStore
	Calendar                domain.CalendarCollaborator
	Grading                 domain.GradingCollaborator
	Identity                domain.IdentityService
	Config                  ServiceConfig

	// Now returns the current time. Tests replace it.
	Now func() time.Time
}

// NewMeetingSyncService creates a new MeetingSyncService.
func NewMeetingSyncService(
	gateway domain.MeetingGateway,
	repos Repositories,
	collaborators Collaborators,
	config ServiceConfig,
) *MeetingSyncService {
	return &MeetingSyncService{
		Gateway:                 gateway,
		MeetingRepository:       repos.Meetings,
		RecordingRepository:     repos.Recordings,
		TrackingFieldRepository: repos.TrackingFields,
		ConfigStore:             repos.Config,
		Calendar:                collaborators.Calendar,
		Grading:                 collaborators.Grading,
		Identity:                collaborators.Identity,
		Config:                  config,
		Now:                     time.Now,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingSyncService) ServiceReady() bool {
	return s.Gateway != nil &&
		s.MeetingRepository != nil &&
		s.RecordingRepository != nil &&
		s.TrackingFieldRepository != nil &&
		s.ConfigStore != nil &&
		s.Calendar != nil &&
		s.Grading != nil &&
		s.Identity != nil
}

func (s *MeetingSyncService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

var errServiceUnavailable = domain.NewUnavailableError("meeting sync service not initialized")
