// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// NatsTrackingFieldRepository stores per-meeting tracking field values.
// Keys are encoded because field names come from Zoom account labels.
type NatsTrackingFieldRepository struct {
	*NatsBaseRepository[models.TrackingFieldValue]
	keys *KeyBuilder
}

var _ domain.TrackingFieldRepository = (*NatsTrackingFieldRepository)(nil)

// NewNatsTrackingFieldRepository creates a new NATS KV store repository for tracking field values.
func NewNatsTrackingFieldRepository(kvStore INatsKeyValue) *NatsTrackingFieldRepository {
	return &NatsTrackingFieldRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.TrackingFieldValue](kvStore, "tracking field"),
		keys:               NewKeyBuilder(""),
	}
}

func (r *NatsTrackingFieldRepository) key(meetingUID, field string) string {
	return r.keys.EntityKeyEncoded(KeyPrefixTrackingField, meetingUID, field)
}

// Put stores the value of one field for one meeting, replacing any previous value.
func (r *NatsTrackingFieldRepository) Put(ctx context.Context, value *models.TrackingFieldValue) error {
	if value == nil || value.MeetingUID == "" || value.Field == "" {
		return domain.NewValidationError("tracking field value needs a meeting UID and a field")
	}
	return r.NatsBaseRepository.Put(ctx, r.key(value.MeetingUID, value.Field), value)
}

// Delete removes the value of one field for one meeting. A missing value is not an error.
func (r *NatsTrackingFieldRepository) Delete(ctx context.Context, meetingUID, field string) error {
	err := r.NatsBaseRepository.Delete(ctx, r.key(meetingUID, field))
	if err != nil && !domain.IsNotFound(err) {
		return err
	}
	return nil
}

// ListByMeeting returns the tracking field values of a meeting ordered by field.
func (r *NatsTrackingFieldRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.TrackingFieldValue, error) {
	values, err := r.ListEntitiesEncoded(ctx, "/"+KeyPrefixTrackingField+"/"+meetingUID+"/", r.keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Field < values[j].Field
	})
	return values, nil
}

// DeleteByMeeting removes every tracking field value of a meeting.
func (r *NatsTrackingFieldRepository) DeleteByMeeting(ctx context.Context, meetingUID string) error {
	values, err := r.ListByMeeting(ctx, meetingUID)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := r.Delete(ctx, v.MeetingUID, v.Field); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByField removes the values of field across all meetings.
func (r *NatsTrackingFieldRepository) DeleteByField(ctx context.Context, field string) (int, error) {
	values, err := r.ListEntitiesEncoded(ctx, "/"+KeyPrefixTrackingField+"/", r.keys)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range values {
		if v.Field != field {
			continue
		}
		if err := r.Delete(ctx, v.MeetingUID, v.Field); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
