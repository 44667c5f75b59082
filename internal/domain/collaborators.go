// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// CalendarCollaborator keeps the host calendar in step with a meeting.
type CalendarCollaborator interface {
	UpsertEventsForMeeting(ctx context.Context, meeting *models.Meeting) error
	DeleteEventsForMeeting(ctx context.Context, meeting *models.Meeting) error
}

// GradingCollaborator keeps the host gradebook in step with a meeting.
type GradingCollaborator interface {
	UpsertGradeItem(ctx context.Context, meeting *models.Meeting) error
	DeleteGradeItem(ctx context.Context, meeting *models.Meeting) error
}

// IdentityService resolves a host caller to the identifier Zoom knows them by.
type IdentityService interface {
	ExternalIdentifier(ctx context.Context, caller models.Caller) (string, error)
}
