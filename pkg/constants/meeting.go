// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Meeting time constraints
const (
	// MaxEarlyJoinTimeMinutes is the maximum number of minutes users can join a meeting early
	MaxEarlyJoinTimeMinutes = 60

	// MaxMeetingDurationMinutes is the maximum duration of a meeting in minutes
	MaxMeetingDurationMinutes = 24 * 60

	// DefaultEarlyJoinTimeMinutes is how early attendees may join when nothing is configured
	DefaultEarlyJoinTimeMinutes = 15
)
