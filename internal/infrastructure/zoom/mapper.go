// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package zoom

import (
	"sort"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/utils"
)

// Mapper translates between local meetings and Zoom meeting payloads.
type Mapper struct {
	// TrackingFields maps a normalized tracking field key to its Zoom label.
	// Only these fields are sent to Zoom.
	TrackingFields map[string]string
}

// RemoteType returns the Zoom type code for a scheduling mode.
func RemoteType(mode models.SchedulingMode, webinar bool) int {
	switch mode {
	case models.SchedulingModeRecurringNoTime:
		if webinar {
			return api.WebinarTypeRecurringNoFixedTime
		}
		return api.MeetingTypeRecurringNoFixedTime
	case models.SchedulingModeRecurringFixed:
		if webinar {
			return api.WebinarTypeRecurringFixedTime
		}
		return api.MeetingTypeRecurringFixedTime
	default:
		if webinar {
			return api.WebinarTypeScheduled
		}
		return api.MeetingTypeScheduled
	}
}

// ModeFromRemoteType is the inverse of RemoteType. Instant and unknown
// codes are treated as one-time meetings.
func ModeFromRemoteType(remoteType int) (mode models.SchedulingMode, webinar bool) {
	switch remoteType {
	case api.MeetingTypeRecurringNoFixedTime:
		return models.SchedulingModeRecurringNoTime, false
	case api.MeetingTypeRecurringFixedTime:
		return models.SchedulingModeRecurringFixed, false
	case api.WebinarTypeScheduled:
		return models.SchedulingModeOneTime, true
	case api.WebinarTypeRecurringNoFixedTime:
		return models.SchedulingModeRecurringNoTime, true
	case api.WebinarTypeRecurringFixedTime:
		return models.SchedulingModeRecurringFixed, true
	default:
		return models.SchedulingModeOneTime, false
	}
}

func hasFixedTime(remoteType int) bool {
	switch remoteType {
	case api.MeetingTypeScheduled, api.WebinarTypeScheduled,
		api.MeetingTypeRecurringFixedTime, api.WebinarTypeRecurringFixedTime:
		return true
	}
	return false
}

// ToRemote builds the create/update payload for a meeting. autoRecording is the
// already resolved auto recording mode; an empty value leaves it unset.
func (mp Mapper) ToRemote(m *models.Meeting, autoRecording string) *api.MeetingRequest {
	remoteType := RemoteType(m.Mode, m.IsWebinar)

	req := &api.MeetingRequest{
		Topic:       m.Name,
		Type:        remoteType,
		Timezone:    m.Timezone,
		Agenda:      m.Intro,
		Password:    m.Password,
		ScheduleFor: m.ScheduleFor,
	}

	if hasFixedTime(remoteType) {
		req.StartTime = m.StartTime.UTC().Format(api.TimeLayout)
		req.Duration = durationMinutes(m.Duration)
	}

	if m.Mode == models.SchedulingModeRecurringFixed {
		req.Recurrence = recurrenceToRemote(m.Recurrence)
	}

	settings := &api.MeetingSettings{
		HostVideo:             utils.Ptr(m.HostVideo),
		MeetingAuthentication: utils.Ptr(m.AuthenticatedOnly),
		ApprovalType:          utils.Ptr(approvalType(m.Registration)),
		Audio:                 m.Audio,
		AutoRecording:         autoRecording,
		AlternativeHosts:      strings.Join(m.AlternativeHosts, ","),
	}
	if !m.IsWebinar {
		settings.ParticipantVideo = utils.Ptr(m.ParticipantVideo)
		settings.JoinBeforeHost = utils.Ptr(m.JoinBeforeHost)
		settings.WaitingRoom = utils.Ptr(m.WaitingRoom)
		settings.MuteUponEntry = utils.Ptr(m.MuteUponEntry)
		if m.EncryptionType == models.EncryptionE2EE {
			settings.EncryptionType = models.EncryptionE2EE
		} else {
			settings.EncryptionType = models.EncryptionEnhanced
		}
	}
	if len(m.BreakoutRooms) > 0 {
		rooms := make([]api.BreakoutRoomDef, 0, len(m.BreakoutRooms))
		for _, room := range m.BreakoutRooms {
			rooms = append(rooms, api.BreakoutRoomDef{Name: room.Name, Participants: room.Participants})
		}
		settings.BreakoutRoom = &api.BreakoutRoomSettings{Enable: true, Rooms: rooms}
	}
	req.Settings = settings

	req.TrackingFields = mp.trackingFieldsToRemote(m.TrackingFields)
	return req
}

// FromRemote returns a copy of local updated from a Zoom meeting response.
func (mp Mapper) FromRemote(local *models.Meeting, resp *api.MeetingResponse) *models.Meeting {
	out := *local

	out.RemoteID = resp.ID
	out.HostID = utils.Coalesce(resp.HostID, local.HostID)
	out.Name = resp.Topic
	out.Intro = resp.Agenda
	out.Timezone = utils.Coalesce(resp.Timezone, local.Timezone)
	out.Password = resp.Password
	out.JoinURL = resp.JoinURL
	out.StartURL = resp.StartURL
	if created, ok := parseRemoteTime(resp.CreatedAt); ok {
		out.CreatedAt = created
	}

	out.Mode, out.IsWebinar = ModeFromRemoteType(resp.Type)
	if start, ok := parseRemoteTime(resp.StartTime); ok {
		out.StartTime = start
	}
	if resp.Duration > 0 {
		out.Duration = resp.Duration * 60
	}

	switch out.Mode {
	case models.SchedulingModeOneTime:
		out.Recurrence = nil
	case models.SchedulingModeRecurringFixed:
		if resp.Recurrence != nil {
			out.Recurrence = recurrenceFromRemote(resp.Recurrence)
		}
	}

	out.Occurrences = nil
	for _, occ := range resp.Occurrences {
		start, _ := parseRemoteTime(occ.StartTime)
		out.Occurrences = append(out.Occurrences, models.Occurrence{
			OccurrenceID: occ.OccurrenceID,
			StartTime:    start,
			Duration:     occ.Duration * 60,
			Status:       occ.Status,
		})
	}

	if s := resp.Settings; s != nil {
		out.HostVideo = boolOr(s.HostVideo, local.HostVideo)
		out.ParticipantVideo = boolOr(s.ParticipantVideo, local.ParticipantVideo)
		out.JoinBeforeHost = boolOr(s.JoinBeforeHost, local.JoinBeforeHost)
		out.MuteUponEntry = boolOr(s.MuteUponEntry, local.MuteUponEntry)
		out.WaitingRoom = boolOr(s.WaitingRoom, local.WaitingRoom)
		out.AuthenticatedOnly = boolOr(s.MeetingAuthentication, local.AuthenticatedOnly)
		out.EncryptionType = utils.Coalesce(s.EncryptionType, local.EncryptionType)
		out.Audio = utils.Coalesce(s.Audio, local.Audio)
		out.AutoRecording = utils.Coalesce(s.AutoRecording, models.AutoRecordingNone)
		if s.ApprovalType != nil {
			out.Registration = registrationMode(*s.ApprovalType)
		}
		if hosts := models.ParseAlternativeHosts(s.AlternativeHosts); len(hosts) > 0 {
			out.AlternativeHosts = hosts
		} else {
			out.AlternativeHosts = nil
		}
		if s.BreakoutRoom != nil {
			out.BreakoutRooms = breakoutRoomsFromRemote(s.BreakoutRoom)
		}
	} else {
		out.AutoRecording = models.AutoRecordingNone
	}

	out.TrackingFields = nil
	if len(resp.TrackingFields) > 0 {
		out.TrackingFields = make(map[string]string, len(resp.TrackingFields))
		for _, tf := range resp.TrackingFields {
			out.TrackingFields[models.NormalizeTrackingFieldKey(tf.Field)] = tf.Value
		}
	}

	return &out
}

func (mp Mapper) trackingFieldsToRemote(values map[string]string) []api.TrackingFieldValue {
	if len(mp.TrackingFields) == 0 || len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(mp.TrackingFields))
	for key := range mp.TrackingFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var fields []api.TrackingFieldValue
	for _, key := range keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		fields = append(fields, api.TrackingFieldValue{Field: mp.TrackingFields[key], Value: value})
	}
	return fields
}

func recurrenceToRemote(r *models.Recurrence) *api.RecurrenceSettings {
	if r == nil {
		return nil
	}
	rec := &api.RecurrenceSettings{
		Type:           int(r.Type),
		RepeatInterval: r.RepeatInterval,
	}
	switch r.Type {
	case models.RecurrenceTypeWeekly:
		rec.WeeklyDays = r.WeeklyDays
	case models.RecurrenceTypeMonthly:
		if r.MonthlyDay > 0 {
			rec.MonthlyDay = r.MonthlyDay
		} else {
			rec.MonthlyWeek = r.MonthlyWeek
			rec.MonthlyWeekDay = r.MonthlyWeekDay
		}
	}
	if r.EndDateTime != nil {
		rec.EndDateTime = r.EndDateTime.UTC().Format(api.TimeLayout)
	} else {
		rec.EndTimes = r.EndTimes
	}
	return rec
}

func recurrenceFromRemote(r *api.RecurrenceSettings) *models.Recurrence {
	rec := &models.Recurrence{
		Type:           models.RecurrenceType(r.Type),
		RepeatInterval: r.RepeatInterval,
		WeeklyDays:     r.WeeklyDays,
		MonthlyDay:     r.MonthlyDay,
		MonthlyWeek:    r.MonthlyWeek,
		MonthlyWeekDay: r.MonthlyWeekDay,
		EndTimes:       r.EndTimes,
	}
	if end, ok := parseRemoteTime(r.EndDateTime); ok {
		rec.EndDateTime = &end
		rec.EndTimes = 0
	}
	return rec
}

func breakoutRoomsFromRemote(b *api.BreakoutRoomSettings) []models.BreakoutRoom {
	if !b.Enable || len(b.Rooms) == 0 {
		return nil
	}
	rooms := make([]models.BreakoutRoom, 0, len(b.Rooms))
	for _, room := range b.Rooms {
		rooms = append(rooms, models.BreakoutRoom{Name: room.Name, Participants: room.Participants})
	}
	return rooms
}

func approvalType(mode models.RegistrationMode) int {
	switch mode {
	case models.RegistrationAutomatic:
		return api.ApprovalTypeAutomatic
	case models.RegistrationManual:
		return api.ApprovalTypeManual
	default:
		return api.ApprovalTypeNoRegistration
	}
}

func registrationMode(approval int) models.RegistrationMode {
	switch approval {
	case api.ApprovalTypeAutomatic:
		return models.RegistrationAutomatic
	case api.ApprovalTypeManual:
		return models.RegistrationManual
	default:
		return models.RegistrationOff
	}
}

// durationMinutes rounds seconds up to whole minutes.
func durationMinutes(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}

func parseRemoteTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
