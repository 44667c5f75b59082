// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// ExcludedDiffFields never count as a change: Zoom rotates the start URL on
// every call and the modification time only moves when something else changed.
var ExcludedDiffFields = map[string]bool{
	"start_url":    true,
	"timemodified": true,
}

// FieldChange is one field whose local value differs from the remote one.
type FieldChange struct {
	Field    string
	Old      string
	New      string
	Schedule bool
}

type meetingField struct {
	name string
	// schedule marks fields that show up in calendar events.
	schedule bool
	value    func(m *models.Meeting) string
}

var meetingFields = []meetingField{
	{"meeting_id", false, func(m *models.Meeting) string { return strconv.FormatInt(m.RemoteID, 10) }},
	{"webinar", false, func(m *models.Meeting) string { return strconv.FormatBool(m.IsWebinar) }},
	{"host_id", false, func(m *models.Meeting) string { return m.HostID }},
	{"name", true, func(m *models.Meeting) string { return m.Name }},
	{"intro", true, func(m *models.Meeting) string { return m.Intro }},
	{"timezone", false, func(m *models.Meeting) string { return m.Timezone }},
	{"mode", true, func(m *models.Meeting) string { return string(m.Mode) }},
	{"start_time", true, func(m *models.Meeting) string { return formatTime(m.StartTime) }},
	{"duration", true, func(m *models.Meeting) string { return strconv.Itoa(m.Duration) }},
	{"recurrence", true, func(m *models.Meeting) string { return formatRecurrence(m.Recurrence) }},
	{"occurrences", true, func(m *models.Meeting) string { return formatOccurrences(m.Occurrences) }},
	{"password", false, func(m *models.Meeting) string { return m.Password }},
	{"encryption_type", false, func(m *models.Meeting) string { return m.EncryptionType }},
	{"waiting_room", false, func(m *models.Meeting) string { return strconv.FormatBool(m.WaitingRoom) }},
	{"join_before_host", false, func(m *models.Meeting) string { return strconv.FormatBool(m.JoinBeforeHost) }},
	{"authenticated_users_only", false, func(m *models.Meeting) string { return strconv.FormatBool(m.AuthenticatedOnly) }},
	{"host_video", false, func(m *models.Meeting) string { return strconv.FormatBool(m.HostVideo) }},
	{"participant_video", false, func(m *models.Meeting) string { return strconv.FormatBool(m.ParticipantVideo) }},
	{"audio", false, func(m *models.Meeting) string { return m.Audio }},
	{"mute_upon_entry", false, func(m *models.Meeting) string { return strconv.FormatBool(m.MuteUponEntry) }},
	{"auto_recording", false, func(m *models.Meeting) string { return m.AutoRecording }},
	{"registration", false, func(m *models.Meeting) string { return string(m.Registration) }},
	{"alternative_hosts", false, func(m *models.Meeting) string { return strings.Join(m.AlternativeHosts, ",") }},
	{"breakout_rooms", false, func(m *models.Meeting) string { return formatBreakoutRooms(m.BreakoutRooms) }},
	{"join_url", false, func(m *models.Meeting) string { return m.JoinURL }},
	{"start_url", false, func(m *models.Meeting) string { return m.StartURL }},
	{"created_at", false, func(m *models.Meeting) string { return formatTime(m.CreatedAt) }},
	{"timemodified", false, func(m *models.Meeting) string { return formatTime(m.TimeModified) }},
}

// DiffMeetings compares every synced field of local and remote and returns
// the ones that differ, in table order.
func DiffMeetings(local, remote *models.Meeting) []FieldChange {
	var changes []FieldChange
	for _, f := range meetingFields {
		if ExcludedDiffFields[f.name] {
			continue
		}
		oldValue, newValue := f.value(local), f.value(remote)
		if oldValue != newValue {
			changes = append(changes, FieldChange{
				Field:    f.name,
				Old:      oldValue,
				New:      newValue,
				Schedule: f.schedule,
			})
		}
	}
	return changes
}

// ScheduleChanged reports whether any of changes shows up in calendar events.
func ScheduleChanged(changes []FieldChange) bool {
	for _, c := range changes {
		if c.Schedule {
			return true
		}
	}
	return false
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatRecurrence(r *models.Recurrence) string {
	if r == nil {
		return ""
	}
	end := ""
	if r.EndDateTime != nil {
		end = formatTime(*r.EndDateTime)
	}
	return fmt.Sprintf("type=%d interval=%d days=%s monthday=%d week=%d weekday=%d times=%d until=%s",
		r.Type, r.RepeatInterval, r.WeeklyDays, r.MonthlyDay, r.MonthlyWeek, r.MonthlyWeekDay, r.EndTimes, end)
}

func formatOccurrences(occurrences []models.Occurrence) string {
	parts := make([]string, 0, len(occurrences))
	for _, o := range occurrences {
		parts = append(parts, fmt.Sprintf("%s@%s/%d/%s", o.OccurrenceID, formatTime(o.StartTime), o.Duration, o.Status))
	}
	return strings.Join(parts, ";")
}

func formatBreakoutRooms(rooms []models.BreakoutRoom) string {
	parts := make([]string, 0, len(rooms))
	for _, r := range rooms {
		parts = append(parts, r.Name+"="+strings.Join(r.Participants, ","))
	}
	return strings.Join(parts, ";")
}
