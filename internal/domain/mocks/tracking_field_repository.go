// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

var _ domain.TrackingFieldRepository = (*MockTrackingFieldRepository)(nil)

// MockTrackingFieldRepository implements TrackingFieldRepository for testing
type MockTrackingFieldRepository struct {
	mock.Mock
}

func (m *MockTrackingFieldRepository) Put(ctx context.Context, value *models.TrackingFieldValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockTrackingFieldRepository) Delete(ctx context.Context, meetingUID, field string) error {
	args := m.Called(ctx, meetingUID, field)
	return args.Error(0)
}

func (m *MockTrackingFieldRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.TrackingFieldValue, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrackingFieldValue), args.Error(1)
}

func (m *MockTrackingFieldRepository) DeleteByMeeting(ctx context.Context, meetingUID string) error {
	args := m.Called(ctx, meetingUID)
	return args.Error(0)
}

func (m *MockTrackingFieldRepository) DeleteByField(ctx context.Context, field string) (int, error) {
	args := m.Called(ctx, field)
	return args.Int(0), args.Error(1)
}

var _ domain.ConfigStore = (*MockConfigStore)(nil)

// MockConfigStore implements ConfigStore for testing
type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) GetConfig(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockConfigStore) SetConfig(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockConfigStore) ListConfigKeys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
