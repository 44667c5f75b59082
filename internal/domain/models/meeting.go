// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"strconv"
	"strings"
	"time"
)

// SchedulingMode describes how a meeting is scheduled.
type SchedulingMode string

const (
	SchedulingModeOneTime         SchedulingMode = "one-time"
	SchedulingModeRecurringFixed  SchedulingMode = "recurring-fixed-schedule"
	SchedulingModeRecurringNoTime SchedulingMode = "recurring-no-fixed-time"
)

// RemoteState tracks whether the Zoom side of a meeting still exists.
type RemoteState string

const (
	// RemoteStateUnknown is the state before the first successful create.
	RemoteStateUnknown RemoteState = ""
	RemoteStateExists  RemoteState = "exists"
	RemoteStateExpired RemoteState = "expired"
)

// RecurrenceType is the local recurrence kind.
type RecurrenceType int

const (
	RecurrenceTypeNoTime  RecurrenceType = 0
	RecurrenceTypeDaily   RecurrenceType = 1
	RecurrenceTypeWeekly  RecurrenceType = 2
	RecurrenceTypeMonthly RecurrenceType = 3
)

// RegistrationMode is the attendee registration policy.
type RegistrationMode string

const (
	RegistrationOff       RegistrationMode = "off"
	RegistrationManual    RegistrationMode = "manual"
	RegistrationAutomatic RegistrationMode = "automatic"
)

// Encryption types understood by Zoom.
const (
	EncryptionEnhanced = "enhanced_encryption"
	EncryptionE2EE     = "e2ee"
)

// Auto recording modes.
const (
	AutoRecordingNone        = "none"
	AutoRecordingUserDefault = "userdefault"
	AutoRecordingLocal       = "local"
	AutoRecordingCloud       = "cloud"
)

// Meeting is the locally stored representation of a Zoom meeting or webinar.
type Meeting struct {
	UID         string `json:"uid"`
	CourseID    string `json:"course_id,omitempty"`
	RemoteID    int64  `json:"meeting_id,omitempty"`
	IsWebinar   bool   `json:"webinar"`
	HostID      string `json:"host_id,omitempty"`
	ScheduleFor string `json:"schedule_for,omitempty"`

	Name     string `json:"name"`
	Intro    string `json:"intro,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	Mode        SchedulingMode `json:"mode"`
	StartTime   time.Time      `json:"start_time"`
	Duration    int            `json:"duration"` // seconds
	Recurrence  *Recurrence    `json:"recurrence,omitempty"`
	Occurrences []Occurrence   `json:"occurrences,omitempty"`

	Password          string            `json:"password,omitempty"`
	EncryptionType    string            `json:"encryption_type,omitempty"`
	WaitingRoom       bool              `json:"waiting_room"`
	JoinBeforeHost    bool              `json:"join_before_host"`
	AuthenticatedOnly bool              `json:"authenticated_users_only"`
	HostVideo         bool              `json:"host_video"`
	ParticipantVideo  bool              `json:"participant_video"`
	Audio             string            `json:"audio,omitempty"`
	MuteUponEntry     bool              `json:"mute_upon_entry"`
	AutoRecording     string            `json:"auto_recording,omitempty"`
	Registration      RegistrationMode  `json:"registration,omitempty"`
	AlternativeHosts  []string          `json:"alternative_hosts,omitempty"`
	BreakoutRooms     []BreakoutRoom    `json:"breakout_rooms,omitempty"`
	TrackingFields    map[string]string `json:"-"`

	JoinURL   string    `json:"join_url,omitempty"`
	StartURL  string    `json:"start_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	Grade                    int  `json:"grade,omitempty"`
	RecordingsVisibleDefault bool `json:"recordings_visible_default"`

	RemoteState  RemoteState `json:"exists_on_zoom,omitempty"`
	TimeModified time.Time   `json:"timemodified,omitempty"`
}

// Recurrence represents the recurrence pattern of a meeting
type Recurrence struct {
	Type           RecurrenceType `json:"type"`
	RepeatInterval int            `json:"repeat_interval,omitempty"`
	WeeklyDays     string         `json:"weekly_days,omitempty"` // comma separated, 1=Sunday..7=Saturday
	MonthlyDay     int            `json:"monthly_day,omitempty"`
	MonthlyWeek    int            `json:"monthly_week,omitempty"` // 1..4, -1 for last
	MonthlyWeekDay int            `json:"monthly_week_day,omitempty"`
	EndTimes       int            `json:"end_times,omitempty"`
	EndDateTime    *time.Time     `json:"end_date_time,omitempty"`
}

// Occurrence is one scheduled instance of a recurring-fixed meeting, as reported by Zoom.
type Occurrence struct {
	OccurrenceID string    `json:"occurrence_id"`
	StartTime    time.Time `json:"start_time"`
	Duration     int       `json:"duration"` // seconds
	Status       string    `json:"status,omitempty"`
}

// BreakoutRoom is a pre-assigned breakout room.
type BreakoutRoom struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants,omitempty"` // participant emails
}

// IsRecurring reports whether the meeting repeats.
func (m *Meeting) IsRecurring() bool {
	return m.Mode == SchedulingModeRecurringFixed || m.Mode == SchedulingModeRecurringNoTime
}

// HasFixedTime reports whether the meeting has a concrete start time.
func (m *Meeting) HasFixedTime() bool {
	return m.Mode != SchedulingModeRecurringNoTime
}

// EndTime returns the scheduled end of the one-time meeting or first occurrence.
func (m *Meeting) EndTime() time.Time {
	return m.StartTime.Add(time.Duration(m.Duration) * time.Second)
}

// RequiresRegistration reports whether attendees must register before joining.
func (m *Meeting) RequiresRegistration() bool {
	return m.Registration != "" && m.Registration != RegistrationOff
}

// Weekdays parses WeeklyDays into weekday numbers, skipping invalid entries.
func (r *Recurrence) Weekdays() []int {
	if r == nil || r.WeeklyDays == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(r.WeeklyDays, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || day < 1 || day > 7 {
			continue
		}
		days = append(days, day)
	}
	return days
}

// ParseAlternativeHosts splits a host list on ';' or ',' and drops blanks.
func ParseAlternativeHosts(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})
	hosts := make([]string, 0, len(fields))
	for _, f := range fields {
		if h := strings.TrimSpace(f); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
