// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

var _ domain.RecordingRepository = (*MockRecordingRepository)(nil)

// MockRecordingRepository implements RecordingRepository for testing
type MockRecordingRepository struct {
	mock.Mock
}

func (m *MockRecordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	args := m.Called(ctx, recording)
	return args.Error(0)
}

func (m *MockRecordingRepository) Get(ctx context.Context, recordingUID string) (*models.Recording, error) {
	args := m.Called(ctx, recordingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recording), args.Error(1)
}

func (m *MockRecordingRepository) Update(ctx context.Context, recording *models.Recording) error {
	args := m.Called(ctx, recording)
	return args.Error(0)
}

func (m *MockRecordingRepository) Delete(ctx context.Context, recordingUID string) error {
	args := m.Called(ctx, recordingUID)
	return args.Error(0)
}

func (m *MockRecordingRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Recording, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recording), args.Error(1)
}

func (m *MockRecordingRepository) List(ctx context.Context) ([]*models.Recording, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recording), args.Error(1)
}
