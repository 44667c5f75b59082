// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/utils"
)

func date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestRecurrenceRule(t *testing.T) {
	// Monday 2025-03-03 09:00 UTC
	start := date(2025, 3, 3, 9, 0)

	tests := []struct {
		name       string
		recurrence *models.Recurrence
		expected   []time.Time
	}{
		{
			name:       "daily every other day with count",
			recurrence: &models.Recurrence{Type: models.RecurrenceTypeDaily, RepeatInterval: 2, EndTimes: 3},
			expected:   []time.Time{date(2025, 3, 3, 9, 0), date(2025, 3, 5, 9, 0), date(2025, 3, 7, 9, 0)},
		},
		{
			name:       "weekly on monday and wednesday",
			recurrence: &models.Recurrence{Type: models.RecurrenceTypeWeekly, RepeatInterval: 1, WeeklyDays: "2,4", EndTimes: 4},
			expected: []time.Time{
				date(2025, 3, 3, 9, 0), date(2025, 3, 5, 9, 0),
				date(2025, 3, 10, 9, 0), date(2025, 3, 12, 9, 0),
			},
		},
		{
			name:       "monthly by day of month",
			recurrence: &models.Recurrence{Type: models.RecurrenceTypeMonthly, RepeatInterval: 1, MonthlyDay: 15, EndTimes: 2},
			expected:   []time.Time{date(2025, 3, 15, 9, 0), date(2025, 4, 15, 9, 0)},
		},
		{
			name:       "monthly on the last friday",
			recurrence: &models.Recurrence{Type: models.RecurrenceTypeMonthly, RepeatInterval: 1, MonthlyWeek: -1, MonthlyWeekDay: 6, EndTimes: 2},
			expected:   []time.Time{date(2025, 3, 28, 9, 0), date(2025, 4, 25, 9, 0)},
		},
		{
			name: "daily until end date",
			recurrence: &models.Recurrence{
				Type:           models.RecurrenceTypeDaily,
				RepeatInterval: 1,
				EndDateTime:    utils.Ptr(date(2025, 3, 5, 9, 0)),
			},
			expected: []time.Time{date(2025, 3, 3, 9, 0), date(2025, 3, 4, 9, 0), date(2025, 3, 5, 9, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meeting := &models.Meeting{
				Mode:       models.SchedulingModeRecurringFixed,
				StartTime:  start,
				Timezone:   "UTC",
				Recurrence: tt.recurrence,
			}

			rule, err := RecurrenceRule(meeting)
			require.NoError(t, err)

			got := rule.All()
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.True(t, tt.expected[i].Equal(got[i]), "occurrence %d: want %s got %s", i, tt.expected[i], got[i])
			}
		})
	}
}

func TestRecurrenceRule_Errors(t *testing.T) {
	_, err := RecurrenceRule(&models.Meeting{})
	assert.Error(t, err)

	_, err = RecurrenceRule(&models.Meeting{Recurrence: &models.Recurrence{Type: models.RecurrenceTypeNoTime}})
	assert.Error(t, err)
}

func TestRecurrenceRule_KeepsLocalTimeAcrossDST(t *testing.T) {
	// 09:00 in New York is 14:00 UTC before the DST switch on 2025-03-09 and 13:00 after.
	meeting := &models.Meeting{
		Mode:       models.SchedulingModeRecurringFixed,
		StartTime:  date(2025, 3, 7, 14, 0),
		Timezone:   "America/New_York",
		Recurrence: &models.Recurrence{Type: models.RecurrenceTypeDaily, RepeatInterval: 1, EndTimes: 4},
	}

	rule, err := RecurrenceRule(meeting)
	require.NoError(t, err)

	got := rule.All()
	require.Len(t, got, 4)
	assert.Equal(t, 14, got[0].UTC().Hour())
	assert.Equal(t, 13, got[3].UTC().Hour())
}

func TestNextOccurrenceStart(t *testing.T) {
	now := date(2025, 3, 10, 12, 0)

	tests := []struct {
		name     string
		meeting  *models.Meeting
		expected time.Time
	}{
		{
			name:     "nil meeting",
			expected: time.Time{},
		},
		{
			name: "one-time meeting uses start time even when past",
			meeting: &models.Meeting{
				Mode:      models.SchedulingModeOneTime,
				StartTime: date(2025, 3, 1, 9, 0),
			},
			expected: date(2025, 3, 1, 9, 0),
		},
		{
			name: "recurring without fixed time has no start",
			meeting: &models.Meeting{
				Mode:      models.SchedulingModeRecurringNoTime,
				StartTime: date(2025, 3, 1, 9, 0),
			},
			expected: time.Time{},
		},
		{
			name: "stored occurrence still running is current",
			meeting: &models.Meeting{
				Mode:     models.SchedulingModeRecurringFixed,
				Duration: 3600,
				Occurrences: []models.Occurrence{
					{OccurrenceID: "3", StartTime: date(2025, 3, 17, 11, 30)},
					{OccurrenceID: "1", StartTime: date(2025, 3, 3, 11, 30)},
					{OccurrenceID: "2", StartTime: date(2025, 3, 10, 11, 30), Duration: 3600},
				},
			},
			expected: date(2025, 3, 10, 11, 30),
		},
		{
			name: "stored occurrences skip ended and deleted ones",
			meeting: &models.Meeting{
				Mode:     models.SchedulingModeRecurringFixed,
				Duration: 1800,
				Occurrences: []models.Occurrence{
					{OccurrenceID: "1", StartTime: date(2025, 3, 10, 11, 0)},
					{OccurrenceID: "2", StartTime: date(2025, 3, 11, 11, 0), Status: "deleted"},
					{OccurrenceID: "3", StartTime: date(2025, 3, 12, 11, 0)},
				},
			},
			expected: date(2025, 3, 12, 11, 0),
		},
		{
			name: "all stored occurrences ended",
			meeting: &models.Meeting{
				Mode:        models.SchedulingModeRecurringFixed,
				Duration:    1800,
				Occurrences: []models.Occurrence{{OccurrenceID: "1", StartTime: date(2025, 3, 1, 11, 0)}},
			},
			expected: time.Time{},
		},
		{
			name: "falls back to the recurrence when Zoom reported no occurrences",
			meeting: &models.Meeting{
				Mode:       models.SchedulingModeRecurringFixed,
				StartTime:  date(2025, 3, 3, 9, 0),
				Duration:   3600,
				Timezone:   "UTC",
				Recurrence: &models.Recurrence{Type: models.RecurrenceTypeWeekly, RepeatInterval: 1, WeeklyDays: "4"},
			},
			expected: date(2025, 3, 12, 9, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrenceStart(tt.meeting, now)
			assert.True(t, tt.expected.Equal(got), "want %s got %s", tt.expected, got)
		})
	}
}
