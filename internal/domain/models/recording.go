// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// RecordingType is the media kind of a recording.
type RecordingType string

const (
	RecordingTypeAudio RecordingType = "audio"
	RecordingTypeVideo RecordingType = "video"
)

// Recording is a locally tracked Zoom cloud recording.
// The pair (MeetingUID, RemoteID) is unique.
type Recording struct {
	UID            string        `json:"uid"`
	MeetingUID     string        `json:"meeting_uid"`
	RemoteID       string        `json:"zoom_recording_id"`
	MeetingUUID    string        `json:"meeting_uuid"` // groups files from one physical run
	Name           string        `json:"name"`
	ExternalURL    string        `json:"external_url"`
	Passcode       string        `json:"passcode,omitempty"`
	Type           RecordingType `json:"recording_type"`
	RecordingStart time.Time     `json:"recording_start"`
	Visible        bool          `json:"show_recording"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// RemoteRecording is one playable recording file returned by Zoom.
type RemoteRecording struct {
	RemoteID       string
	MeetingUUID    string
	URL            string
	Passcode       string
	Type           RecordingType
	RecordingStart time.Time
}

// RecordingGroup is a set of recording files that started at the same instant.
type RecordingGroup struct {
	RecordingStart time.Time
	Recordings     []RemoteRecording
}

// RecordingDisplayGroup is the host-facing grouping of stored recordings for one meeting run.
type RecordingDisplayGroup struct {
	MeetingUUID string       `json:"meeting_uuid"`
	StartTime   time.Time    `json:"start_time"`
	Recordings  []*Recording `json:"recordings"`
}
