// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// MeetingGateway is the remote side of a meeting: every call goes to Zoom.
type MeetingGateway interface {
	// CreateMeeting creates the remote meeting and returns the local record populated from the response.
	CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error)
	UpdateMeeting(ctx context.Context, meeting *models.Meeting) error
	DeleteMeeting(ctx context.Context, remoteID int64, isWebinar bool) error
	// FetchMeeting returns local populated from the current remote state.
	// TrackingFields of the result carry the remote tracking field values.
	FetchMeeting(ctx context.Context, local *models.Meeting) (*models.Meeting, error)

	// ListRecordings returns playable recordings grouped by start time. Remote errors yield an empty result.
	ListRecordings(ctx context.Context, meetingIDOrUUID string) []models.RecordingGroup
	// FetchRecordings is ListRecordings with the remote error returned.
	FetchRecordings(ctx context.Context, meetingIDOrUUID string) ([]models.RecordingGroup, error)
	// Invitation returns the invitation text, or "" for webinars and on any remote error.
	Invitation(ctx context.Context, meeting *models.Meeting) string
	RegistrantJoinURL(ctx context.Context, meeting *models.Meeting, email string) (string, error)
	ListTrackingFields(ctx context.Context) (map[string]models.TrackingField, error)
	ResolveUserID(ctx context.Context, identifier string) (string, error)
	ProvideLicense(ctx context.Context, zoomUserID string) error
}
