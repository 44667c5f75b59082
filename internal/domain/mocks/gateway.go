// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

var _ domain.MeetingGateway = (*MockMeetingGateway)(nil)

// MockMeetingGateway implements MeetingGateway for testing
type MockMeetingGateway struct {
	mock.Mock
}

func (m *MockMeetingGateway) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	args := m.Called(ctx, meeting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingGateway) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingGateway) DeleteMeeting(ctx context.Context, remoteID int64, isWebinar bool) error {
	args := m.Called(ctx, remoteID, isWebinar)
	return args.Error(0)
}

func (m *MockMeetingGateway) FetchMeeting(ctx context.Context, local *models.Meeting) (*models.Meeting, error) {
	args := m.Called(ctx, local)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingGateway) ListRecordings(ctx context.Context, meetingIDOrUUID string) []models.RecordingGroup {
	args := m.Called(ctx, meetingIDOrUUID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.RecordingGroup)
}

func (m *MockMeetingGateway) FetchRecordings(ctx context.Context, meetingIDOrUUID string) ([]models.RecordingGroup, error) {
	args := m.Called(ctx, meetingIDOrUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecordingGroup), args.Error(1)
}

func (m *MockMeetingGateway) Invitation(ctx context.Context, meeting *models.Meeting) string {
	args := m.Called(ctx, meeting)
	return args.String(0)
}

func (m *MockMeetingGateway) RegistrantJoinURL(ctx context.Context, meeting *models.Meeting, email string) (string, error) {
	args := m.Called(ctx, meeting, email)
	return args.String(0), args.Error(1)
}

func (m *MockMeetingGateway) ListTrackingFields(ctx context.Context) (map[string]models.TrackingField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.TrackingField), args.Error(1)
}

func (m *MockMeetingGateway) ResolveUserID(ctx context.Context, identifier string) (string, error) {
	args := m.Called(ctx, identifier)
	return args.String(0), args.Error(1)
}

func (m *MockMeetingGateway) ProvideLicense(ctx context.Context, zoomUserID string) error {
	args := m.Called(ctx, zoomUserID)
	return args.Error(0)
}
