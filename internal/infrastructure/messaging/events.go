// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// eventNamespace scopes calendar event ids so they are stable across republishing.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lfx-meeting-sync/calendar-event"))

func eventUID(meetingUID, occurrenceID string) string {
	return uuid.NewSHA1(eventNamespace, []byte(meetingUID+"/"+occurrenceID)).String()
}

// CalendarEvents derives the calendar entries of a meeting. Recurring meetings
// with a fixed schedule get one event per occurrence; everything else gets a
// single event, hidden when the meeting has no fixed time.
func CalendarEvents(meeting *models.Meeting) []models.CalendarEvent {
	base := models.CalendarEvent{
		MeetingUID:  meeting.UID,
		CourseID:    meeting.CourseID,
		Name:        meeting.Name,
		Description: meeting.Intro,
		Visible:     meeting.HasFixedTime(),
	}

	if meeting.Mode == models.SchedulingModeRecurringFixed && len(meeting.Occurrences) > 0 {
		events := make([]models.CalendarEvent, 0, len(meeting.Occurrences))
		for _, occ := range meeting.Occurrences {
			event := base
			event.UID = eventUID(meeting.UID, occ.OccurrenceID)
			event.OccurrenceID = occ.OccurrenceID
			event.TimeStart = occ.StartTime
			event.Duration = occ.Duration
			events = append(events, event)
		}
		return events
	}

	event := base
	event.UID = eventUID(meeting.UID, "")
	event.TimeStart = meeting.StartTime
	event.Duration = meeting.Duration
	return []models.CalendarEvent{event}
}

// GradeItemFor derives the grade item of a meeting. A positive grade is a
// maximum point value, a negative grade references a scale, zero means ungraded.
func GradeItemFor(meeting *models.Meeting) models.GradeItem {
	item := models.GradeItem{
		MeetingUID: meeting.UID,
		CourseID:   meeting.CourseID,
		Name:       meeting.Name,
		GradeType:  models.GradeTypeNone,
	}
	switch {
	case meeting.Grade > 0:
		item.GradeType = models.GradeTypeValue
		item.GradeMax = meeting.Grade
	case meeting.Grade < 0:
		item.GradeType = models.GradeTypeScale
		item.ScaleID = -meeting.Grade
	}
	return item
}
