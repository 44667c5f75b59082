// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
	keys *KeyBuilder
}

var _ domain.MeetingRepository = (*NatsMeetingRepository)(nil)

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](kvStore, "meeting"),
		keys:               NewKeyBuilder(""),
	}
}

func (r *NatsMeetingRepository) key(meetingUID string) string {
	return r.keys.EntityKey(KeyPrefixMeeting, meetingUID)
}

// Create stores a new meeting. A meeting with the same UID is a conflict.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting == nil || meeting.UID == "" {
		return domain.NewValidationError("meeting UID is required")
	}

	exists, err := r.NatsBaseRepository.Exists(ctx, r.key(meeting.UID))
	if err != nil {
		return err
	}
	if exists {
		return domain.NewConflictError("meeting " + meeting.UID + " already exists")
	}

	return r.NatsBaseRepository.Put(ctx, r.key(meeting.UID), meeting)
}

// Get retrieves a meeting and its revision by UID
func (r *NatsMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.key(meetingUID))
}

// Update replaces a meeting if its revision is still current
func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	if meeting == nil || meeting.UID == "" {
		return domain.NewValidationError("meeting UID is required")
	}
	return r.NatsBaseRepository.Update(ctx, r.key(meeting.UID), meeting, revision)
}

// Delete removes a meeting
func (r *NatsMeetingRepository) Delete(ctx context.Context, meetingUID string) error {
	return r.NatsBaseRepository.Delete(ctx, r.key(meetingUID))
}

// List returns every stored meeting ordered by UID.
func (r *NatsMeetingRepository) List(ctx context.Context) ([]*models.Meeting, error) {
	meetings, err := r.ListEntities(ctx, r.keys.EntityPrefix(KeyPrefixMeeting))
	if err != nil {
		return nil, err
	}
	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].UID < meetings[j].UID
	})
	return meetings, nil
}

// ListByRemoteState returns the meetings whose Zoom state matches state.
func (r *NatsMeetingRepository) ListByRemoteState(ctx context.Context, state models.RemoteState) ([]*models.Meeting, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var meetings []*models.Meeting
	for _, m := range all {
		if m.RemoteState == state {
			meetings = append(meetings, m)
		}
	}
	return meetings, nil
}
