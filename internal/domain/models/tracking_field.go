// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"strings"
)

// TrackingField is the account-level definition of a Zoom tracking field.
type TrackingField struct {
	ID                string   `json:"id"`
	Field             string   `json:"field"`
	Required          bool     `json:"required"`
	Visible           bool     `json:"visible"`
	RecommendedValues []string `json:"recommended_values,omitempty"`
}

// TrackingFieldValue is the per-meeting value of a tracking field.
type TrackingFieldValue struct {
	MeetingUID string `json:"meeting_uid"`
	Field      string `json:"tracking_field"` // normalized key
	Value      string `json:"value"`
}

// NormalizeTrackingFieldKey lower-cases a label and replaces spaces with underscores.
func NormalizeTrackingFieldKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

// ParseTrackingFieldList turns a comma separated list of labels into key → label.
func ParseTrackingFieldList(csv string) map[string]string {
	fields := make(map[string]string)
	for _, raw := range strings.Split(csv, ",") {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		fields[NormalizeTrackingFieldKey(label)] = label
	}
	return fields
}
