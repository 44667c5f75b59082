// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// NATS subjects that the meeting sync service publishes collaborator events on.
const (
	// CalendarUpsertSubject carries the full event set of a meeting.
	// The subject is of the form: lfx.meeting-sync.calendar.upsert
	CalendarUpsertSubject = "lfx.meeting-sync.calendar.upsert"

	// CalendarDeleteSubject removes every event of a meeting.
	// The subject is of the form: lfx.meeting-sync.calendar.delete
	CalendarDeleteSubject = "lfx.meeting-sync.calendar.delete"

	// GradeUpsertSubject creates or updates the grade item of a meeting.
	// The subject is of the form: lfx.meeting-sync.grade.upsert
	GradeUpsertSubject = "lfx.meeting-sync.grade.upsert"

	// GradeDeleteSubject removes the grade item of a meeting.
	// The subject is of the form: lfx.meeting-sync.grade.delete
	GradeDeleteSubject = "lfx.meeting-sync.grade.delete"

	// UserLookupSubject asks the host whether a user with a given email exists locally.
	// The subject is of the form: lfx.meeting-sync.users.lookup
	UserLookupSubject = "lfx.meeting-sync.users.lookup"
)

// MessageAction is a type for the action of a collaborator message.
type MessageAction string

const (
	ActionUpserted MessageAction = "upserted"
	ActionDeleted  MessageAction = "deleted"
)

// CalendarEvent is one calendar entry derived from a meeting or occurrence.
type CalendarEvent struct {
	UID          string    `json:"uid"`
	MeetingUID   string    `json:"meeting_uid"`
	CourseID     string    `json:"course_id,omitempty"`
	OccurrenceID string    `json:"occurrence_id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	TimeStart    time.Time `json:"time_start"`
	Duration     int       `json:"duration"`
	Visible      bool      `json:"visible"`
}

// GradeItem is the gradebook entry of a meeting.
type GradeItem struct {
	MeetingUID string `json:"meeting_uid"`
	CourseID   string `json:"course_id,omitempty"`
	Name       string `json:"name"`
	GradeType  string `json:"grade_type"`
	GradeMax   int    `json:"grade_max,omitempty"`
	ScaleID    int    `json:"scale_id,omitempty"`
}

// Grade types.
const (
	GradeTypeNone  = "none"
	GradeTypeValue = "value"
	GradeTypeScale = "scale"
)

// CollaboratorMessage is the envelope published to collaborator subjects.
type CollaboratorMessage struct {
	Action     MessageAction `json:"action"`
	MeetingUID string        `json:"meeting_uid"`
	Data       any           `json:"data,omitempty"`
}

// UserLookupRequest is the request body sent on UserLookupSubject.
type UserLookupRequest struct {
	Email string `json:"email"`
}

// UserLookupResponse is the host reply to a UserLookupRequest.
type UserLookupResponse struct {
	Exists bool   `json:"exists"`
	Error  string `json:"error,omitempty"`
}
