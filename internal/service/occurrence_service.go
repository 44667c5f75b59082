// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
)

// weekdays maps the Zoom weekday numbers 1=Sunday..7=Saturday to rrule weekdays.
var weekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

func rruleWeekday(day int) (rrule.Weekday, bool) {
	if day < 1 || day > len(weekdays) {
		return rrule.Weekday{}, false
	}
	return weekdays[day-1], true
}

// RecurrenceRule builds the rule that generates the occurrences of a recurring
// meeting with a fixed schedule, anchored at the meeting start in its timezone.
func RecurrenceRule(meeting *models.Meeting) (*rrule.RRule, error) {
	if meeting == nil || meeting.Recurrence == nil {
		return nil, fmt.Errorf("meeting has no recurrence")
	}
	r := meeting.Recurrence

	loc, err := time.LoadLocation(meeting.Timezone)
	if err != nil {
		loc = time.UTC
	}

	opt := rrule.ROption{
		Dtstart:  meeting.StartTime.In(loc),
		Interval: max(r.RepeatInterval, 1),
	}

	switch r.Type {
	case models.RecurrenceTypeDaily:
		opt.Freq = rrule.DAILY
	case models.RecurrenceTypeWeekly:
		opt.Freq = rrule.WEEKLY
		for _, day := range r.Weekdays() {
			if wd, ok := rruleWeekday(day); ok {
				opt.Byweekday = append(opt.Byweekday, wd)
			}
		}
	case models.RecurrenceTypeMonthly:
		opt.Freq = rrule.MONTHLY
		if r.MonthlyDay > 0 {
			opt.Bymonthday = []int{r.MonthlyDay}
		} else if wd, ok := rruleWeekday(r.MonthlyWeekDay); ok && r.MonthlyWeek != 0 {
			opt.Byweekday = []rrule.Weekday{wd.Nth(r.MonthlyWeek)}
		}
	default:
		return nil, fmt.Errorf("recurrence type %d has no fixed schedule", r.Type)
	}

	if r.EndTimes > 0 {
		opt.Count = r.EndTimes
	} else if r.EndDateTime != nil {
		opt.Until = r.EndDateTime.In(loc)
	}

	return rrule.NewRRule(opt)
}

// NextOccurrenceStart returns the start of the occurrence a caller should see
// at now: the meeting start for one-time meetings, the earliest occurrence that
// has not ended yet for recurring meetings with a fixed schedule, and the zero
// time when there is none or the meeting has no fixed time.
//
// Stored occurrences reported by Zoom are preferred; the recurrence descriptor
// is expanded only when Zoom reported none.
func NextOccurrenceStart(meeting *models.Meeting, now time.Time) time.Time {
	if meeting == nil {
		return time.Time{}
	}

	switch meeting.Mode {
	case models.SchedulingModeRecurringNoTime:
		return time.Time{}
	case models.SchedulingModeRecurringFixed:
	default:
		return meeting.StartTime
	}

	if len(meeting.Occurrences) > 0 {
		occurrences := make([]models.Occurrence, len(meeting.Occurrences))
		copy(occurrences, meeting.Occurrences)
		sort.Slice(occurrences, func(i, j int) bool {
			return occurrences[i].StartTime.Before(occurrences[j].StartTime)
		})

		for _, occ := range occurrences {
			if occ.Status == "deleted" {
				continue
			}
			duration := occ.Duration
			if duration == 0 {
				duration = meeting.Duration
			}
			if !occ.StartTime.Add(time.Duration(duration) * time.Second).Before(now) {
				return occ.StartTime
			}
		}
		return time.Time{}
	}

	rule, err := RecurrenceRule(meeting)
	if err != nil {
		return time.Time{}
	}
	next := rule.After(now.Add(-time.Duration(meeting.Duration)*time.Second), true)
	if next.IsZero() {
		return time.Time{}
	}
	return next.UTC()
}
