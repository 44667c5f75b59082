// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// Tracking field properties stored as configuration, one key per property.
var trackingFieldProps = []string{"id", "field", "required", "visible", "recommended_values"}

var trackingFieldConfigKey = regexp.MustCompile(`^tf_(?P<field>.*)_(` + strings.Join(trackingFieldProps, "|") + `)$`)

// TrackingFieldConfigKey returns the configuration key of one property of a tracking field.
func TrackingFieldConfigKey(field, prop string) string {
	return fmt.Sprintf("tf_%s_%s", field, prop)
}

// TrackingFieldSyncResult summarizes a tracking field configuration sync.
type TrackingFieldSyncResult struct {
	// Synced lists the fields whose Zoom definition was stored.
	Synced []string
	// Removed lists the fields that are no longer configured or no longer exist in Zoom.
	Removed []string
	// ValuesRemoved counts the per-meeting values deleted with the removed fields.
	ValuesRemoved int
}

// SyncTrackingFields stores the Zoom definition of every configured tracking
// field and removes the stored definitions and values of fields that are gone.
// Nothing is removed when the Zoom catalog cannot be fetched.
func (s *MeetingSyncService) SyncTrackingFields(ctx context.Context) (*TrackingFieldSyncResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, errServiceUnavailable
	}

	result := &TrackingFieldSyncResult{}
	current := make(map[string]bool)

	if len(s.Config.TrackingFields) > 0 {
		catalog, err := s.Gateway.ListTrackingFields(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to list Zoom tracking fields", logging.ErrKey, err)
			return nil, err
		}

		for key := range s.Config.TrackingFields {
			definition, ok := catalog[key]
			if !ok {
				slog.WarnContext(ctx, "configured tracking field does not exist in Zoom", "tracking_field", key)
				continue
			}
			for prop, value := range trackingFieldConfigValues(definition) {
				configKey := TrackingFieldConfigKey(key, prop)
				current[configKey] = true
				if err := s.ConfigStore.SetConfig(ctx, configKey, value); err != nil {
					slog.ErrorContext(ctx, "failed to store tracking field config", logging.ErrKey, err, "config_key", configKey)
					return nil, err
				}
			}
			result.Synced = append(result.Synced, key)
		}
	}

	keys, err := s.ConfigStore.ListConfigKeys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list config keys", logging.ErrKey, err)
		return nil, err
	}

	removed := make(map[string]bool)
	for _, key := range keys {
		if current[key] {
			continue
		}
		match := trackingFieldConfigKey.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		field := match[trackingFieldConfigKey.SubexpIndex("field")]

		if err := s.ConfigStore.SetConfig(ctx, key, ""); err != nil {
			slog.ErrorContext(ctx, "failed to remove tracking field config", logging.ErrKey, err, "config_key", key)
			return nil, err
		}
		if removed[field] {
			continue
		}
		removed[field] = true

		n, err := s.TrackingFieldRepository.DeleteByField(ctx, field)
		if err != nil {
			slog.ErrorContext(ctx, "failed to delete tracking field values", logging.ErrKey, err, "tracking_field", field)
			return nil, err
		}
		result.ValuesRemoved += n
		result.Removed = append(result.Removed, field)
	}

	sort.Strings(result.Synced)
	sort.Strings(result.Removed)

	slog.InfoContext(ctx, "synced tracking fields",
		"synced", len(result.Synced),
		"removed", len(result.Removed),
		"values_removed", result.ValuesRemoved)

	return result, nil
}

func trackingFieldConfigValues(tf models.TrackingField) map[string]string {
	return map[string]string{
		"id":                 tf.ID,
		"field":              tf.Field,
		"required":           strconv.FormatBool(tf.Required),
		"visible":            strconv.FormatBool(tf.Visible),
		"recommended_values": strings.Join(tf.RecommendedValues, ", "),
	}
}
