// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingState is the availability snapshot a host renders for a meeting.
type MeetingState struct {
	InProgress     bool      `json:"in_progress"`
	Available      bool      `json:"available"`
	Finished       bool      `json:"finished"`
	Start          time.Time `json:"start"`
	FirstAvailable time.Time `json:"first_available"`
	LastAvailable  time.Time `json:"last_available"`
	Duration       int       `json:"duration"`
	Recurring      bool      `json:"recurring"`
	NoFixedTime    bool      `json:"no_fixed_time"`
}

// Caller is the host user asking for a join link.
type Caller struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IDNumber    string `json:"idnumber,omitempty"`
	DisplayName string `json:"display_name"`
	// Authorized is decided by the host framework.
	Authorized bool `json:"authorized"`
}

// Join target errors.
const (
	JoinErrorForbidden   = "forbidden"
	JoinErrorUnavailable = "unavailable"
)

// JoinTarget is the outcome of resolving where a caller should be sent.
type JoinTarget struct {
	URL    string `json:"url,omitempty"`
	IsHost bool   `json:"is_host,omitempty"`
	Error  string `json:"error,omitempty"`
}
