// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

// MockMeetingsAPI is a mock implementation of Zoom meeting API operations for testing
type MockMeetingsAPI struct {
	CreateMeetingFunc   func(ctx context.Context, userID string, webinar bool, request *api.MeetingRequest) (*api.MeetingResponse, error)
	UpdateMeetingFunc   func(ctx context.Context, meetingID int64, webinar bool, request *api.MeetingRequest) error
	DeleteMeetingFunc   func(ctx context.Context, meetingID int64, webinar bool) error
	GetMeetingFunc      func(ctx context.Context, meetingID int64, webinar bool) (*api.MeetingResponse, error)
	GetInvitationFunc   func(ctx context.Context, meetingID int64) (string, error)
	ListRegistrantsFunc func(ctx context.Context, meetingID int64, webinar bool) ([]api.Registrant, error)

	// Calls records the method names invoked, in order.
	Calls []string
}

// CreateMeeting mocks the CreateMeeting API call
func (m *MockMeetingsAPI) CreateMeeting(ctx context.Context, userID string, webinar bool, request *api.MeetingRequest) (*api.MeetingResponse, error) {
	m.Calls = append(m.Calls, "CreateMeeting")
	if m.CreateMeetingFunc != nil {
		return m.CreateMeetingFunc(ctx, userID, webinar, request)
	}
	// Default mock response
	return &api.MeetingResponse{
		ID:        123456789,
		UUID:      "test-uuid-123",
		HostID:    userID,
		Topic:     request.Topic,
		Type:      request.Type,
		Status:    "waiting",
		StartTime: request.StartTime,
		Duration:  request.Duration,
		Timezone:  request.Timezone,
		JoinURL:   "https://zoom.us/j/123456789",
		StartURL:  "https://zoom.us/s/123456789",
		Password:  "test123",
	}, nil
}

// UpdateMeeting mocks the UpdateMeeting API call
func (m *MockMeetingsAPI) UpdateMeeting(ctx context.Context, meetingID int64, webinar bool, request *api.MeetingRequest) error {
	m.Calls = append(m.Calls, "UpdateMeeting")
	if m.UpdateMeetingFunc != nil {
		return m.UpdateMeetingFunc(ctx, meetingID, webinar, request)
	}
	return nil
}

// DeleteMeeting mocks the DeleteMeeting API call
func (m *MockMeetingsAPI) DeleteMeeting(ctx context.Context, meetingID int64, webinar bool) error {
	m.Calls = append(m.Calls, "DeleteMeeting")
	if m.DeleteMeetingFunc != nil {
		return m.DeleteMeetingFunc(ctx, meetingID, webinar)
	}
	return nil
}

// GetMeeting mocks the GetMeeting API call
func (m *MockMeetingsAPI) GetMeeting(ctx context.Context, meetingID int64, webinar bool) (*api.MeetingResponse, error) {
	m.Calls = append(m.Calls, "GetMeeting")
	if m.GetMeetingFunc != nil {
		return m.GetMeetingFunc(ctx, meetingID, webinar)
	}
	return &api.MeetingResponse{ID: meetingID, Type: api.MeetingTypeScheduled}, nil
}

// GetInvitation mocks the GetInvitation API call
func (m *MockMeetingsAPI) GetInvitation(ctx context.Context, meetingID int64) (string, error) {
	m.Calls = append(m.Calls, "GetInvitation")
	if m.GetInvitationFunc != nil {
		return m.GetInvitationFunc(ctx, meetingID)
	}
	return "", nil
}

// ListRegistrants mocks the ListRegistrants API call
func (m *MockMeetingsAPI) ListRegistrants(ctx context.Context, meetingID int64, webinar bool) ([]api.Registrant, error) {
	m.Calls = append(m.Calls, "ListRegistrants")
	if m.ListRegistrantsFunc != nil {
		return m.ListRegistrantsFunc(ctx, meetingID, webinar)
	}
	return nil, nil
}
