// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

// MockUsersAPI is a mock implementation of Zoom user API operations for testing
type MockUsersAPI struct {
	ListUsersFunc               func(ctx context.Context) ([]api.ZoomUser, error)
	GetUserFunc                 func(ctx context.Context, identifier string) (*api.ZoomUser, error)
	GetUserSettingsFunc         func(ctx context.Context, userID string) (*api.UserSettings, error)
	GetUserSecuritySettingsFunc func(ctx context.Context, userID string) (*api.MeetingSecurity, error)
	ListSchedulersFunc          func(ctx context.Context, userID string) ([]api.Scheduler, error)
	UpdateUserTypeFunc          func(ctx context.Context, userID string, userType int) error
}

// ListUsers mocks the ListUsers API call
func (m *MockUsersAPI) ListUsers(ctx context.Context) ([]api.ZoomUser, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	// Default mock response with various user types and statuses for testing
	return []api.ZoomUser{
		{
			ID:            "user1",
			Email:         "user1@example.com",
			FirstName:     "John",
			LastName:      "Doe",
			Type:          api.UserTypeLicensed,
			Status:        api.UserStatusActive,
			LastLoginTime: "2024-03-01T10:00:00Z",
		},
		{
			ID:        "user2",
			Email:     "user2@example.com",
			FirstName: "Jane",
			LastName:  "Smith",
			Type:      api.UserTypeBasic,
			Status:    api.UserStatusActive,
		},
		{
			ID:            "user3",
			Email:         "user3@example.com",
			FirstName:     "Bob",
			LastName:      "Johnson",
			Type:          api.UserTypeLicensed,
			Status:        api.UserStatusInactive,
			LastLoginTime: "2023-11-15T08:30:00Z",
		},
	}, nil
}

// GetUser mocks the GetUser API call
func (m *MockUsersAPI) GetUser(ctx context.Context, identifier string) (*api.ZoomUser, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, identifier)
	}
	return &api.ZoomUser{ID: identifier, Email: identifier, Type: api.UserTypeLicensed, Status: api.UserStatusActive}, nil
}

// GetUserSettings mocks the GetUserSettings API call
func (m *MockUsersAPI) GetUserSettings(ctx context.Context, userID string) (*api.UserSettings, error) {
	if m.GetUserSettingsFunc != nil {
		return m.GetUserSettingsFunc(ctx, userID)
	}
	settings := &api.UserSettings{}
	settings.Recording.AutoRecording = "none"
	return settings, nil
}

// GetUserSecuritySettings mocks the GetUserSecuritySettings API call
func (m *MockUsersAPI) GetUserSecuritySettings(ctx context.Context, userID string) (*api.MeetingSecurity, error) {
	if m.GetUserSecuritySettingsFunc != nil {
		return m.GetUserSecuritySettingsFunc(ctx, userID)
	}
	return &api.MeetingSecurity{MeetingPasswordRequirement: api.DefaultPasswordRequirement}, nil
}

// ListSchedulers mocks the ListSchedulers API call
func (m *MockUsersAPI) ListSchedulers(ctx context.Context, userID string) ([]api.Scheduler, error) {
	if m.ListSchedulersFunc != nil {
		return m.ListSchedulersFunc(ctx, userID)
	}
	return nil, nil
}

// UpdateUserType mocks the UpdateUserType API call
func (m *MockUsersAPI) UpdateUserType(ctx context.Context, userID string, userType int) error {
	if m.UpdateUserTypeFunc != nil {
		return m.UpdateUserTypeFunc(ctx, userID, userType)
	}
	return nil
}
