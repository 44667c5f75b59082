// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

// MockClient is a complete mock implementation of the Zoom API client
// It embeds the meeting, user and recording mocks to provide full API coverage
type MockClient struct {
	*MockMeetingsAPI
	*MockUsersAPI

	ListRecordingsFunc       func(ctx context.Context, meetingIDOrUUID string) (*api.RecordingsResponse, error)
	GetRecordingSettingsFunc func(ctx context.Context, meetingIDOrUUID string) (*api.RecordingSettings, error)
	ListTrackingFieldsFunc   func(ctx context.Context) ([]api.TrackingField, error)
}

// NewMockClient creates a new mock client with default implementations
func NewMockClient() *MockClient {
	return &MockClient{
		MockMeetingsAPI: &MockMeetingsAPI{},
		MockUsersAPI:    &MockUsersAPI{},
	}
}

// ListRecordings mocks the ListRecordings API call
func (m *MockClient) ListRecordings(ctx context.Context, meetingIDOrUUID string) (*api.RecordingsResponse, error) {
	if m.ListRecordingsFunc != nil {
		return m.ListRecordingsFunc(ctx, meetingIDOrUUID)
	}
	return &api.RecordingsResponse{}, nil
}

// GetRecordingSettings mocks the GetRecordingSettings API call
func (m *MockClient) GetRecordingSettings(ctx context.Context, meetingIDOrUUID string) (*api.RecordingSettings, error) {
	if m.GetRecordingSettingsFunc != nil {
		return m.GetRecordingSettingsFunc(ctx, meetingIDOrUUID)
	}
	return &api.RecordingSettings{}, nil
}

// ListTrackingFields mocks the ListTrackingFields API call
func (m *MockClient) ListTrackingFields(ctx context.Context) ([]api.TrackingField, error) {
	if m.ListTrackingFieldsFunc != nil {
		return m.ListTrackingFieldsFunc(ctx)
	}
	return nil, nil
}

// Ensure MockClient implements ClientAPI interface
var _ api.ClientAPI = (*MockClient)(nil)
