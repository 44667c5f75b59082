// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

var (
	_ domain.CalendarCollaborator = (*MockCalendar)(nil)
	_ domain.GradingCollaborator  = (*MockGrading)(nil)
	_ domain.IdentityService      = (*MockIdentityService)(nil)
)

// MockCalendar implements CalendarCollaborator for testing
type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) UpsertEventsForMeeting(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockCalendar) DeleteEventsForMeeting(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

// MockGrading implements GradingCollaborator for testing
type MockGrading struct {
	mock.Mock
}

func (m *MockGrading) UpsertGradeItem(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockGrading) DeleteGradeItem(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

// MockIdentityService implements IdentityService for testing
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) ExternalIdentifier(ctx context.Context, caller models.Caller) (string, error) {
	args := m.Called(ctx, caller)
	return args.String(0), args.Error(1)
}
