// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// Meeting and webinar type constants for Zoom API
const (
	MeetingTypeInstant              = 1
	MeetingTypeScheduled            = 2
	MeetingTypeRecurringNoFixedTime = 3
	MeetingTypeRecurringFixedTime   = 8

	WebinarTypeScheduled            = 5
	WebinarTypeRecurringNoFixedTime = 6
	WebinarTypeRecurringFixedTime   = 9
)

// Recurrence type constants for Zoom API
const (
	RecurrenceTypeDaily   = 1
	RecurrenceTypeWeekly  = 2
	RecurrenceTypeMonthly = 3
)

// Approval type constants for Zoom API registration settings
const (
	ApprovalTypeAutomatic      = 0
	ApprovalTypeManual         = 1
	ApprovalTypeNoRegistration = 2
)

// TimeLayout is the UTC layout Zoom insists on for start and end times.
const TimeLayout = "2006-01-02T15:04:05Z"

// MeetingRequest is the body of a create or update call for meetings and webinars.
// Agenda and password are always sent so an update can clear them.
type MeetingRequest struct {
	Topic          string               `json:"topic,omitempty"`
	Type           int                  `json:"type,omitempty"`
	StartTime      string               `json:"start_time,omitempty"`
	Duration       int                  `json:"duration,omitempty"`
	Timezone       string               `json:"timezone,omitempty"`
	Agenda         string               `json:"agenda"`
	Password       string               `json:"password"`
	ScheduleFor    string               `json:"schedule_for,omitempty"`
	Recurrence     *RecurrenceSettings  `json:"recurrence,omitempty"`
	Settings       *MeetingSettings     `json:"settings,omitempty"`
	TrackingFields []TrackingFieldValue `json:"tracking_fields,omitempty"`
}

// RecurrenceSettings represents Zoom meeting recurrence settings
type RecurrenceSettings struct {
	Type           int    `json:"type"`
	RepeatInterval int    `json:"repeat_interval,omitempty"`
	WeeklyDays     string `json:"weekly_days,omitempty"`
	MonthlyDay     int    `json:"monthly_day,omitempty"`
	MonthlyWeek    int    `json:"monthly_week,omitempty"`
	MonthlyWeekDay int    `json:"monthly_week_day,omitempty"`
	EndTimes       int    `json:"end_times,omitempty"`
	EndDateTime    string `json:"end_date_time,omitempty"`
}

// MeetingSettings represents Zoom meeting settings. Pointer fields distinguish
// "unset" from false so webinar payloads omit meeting-only settings.
type MeetingSettings struct {
	HostVideo             *bool                 `json:"host_video,omitempty"`
	ParticipantVideo      *bool                 `json:"participant_video,omitempty"`
	JoinBeforeHost        *bool                 `json:"join_before_host,omitempty"`
	MuteUponEntry         *bool                 `json:"mute_upon_entry,omitempty"`
	WaitingRoom           *bool                 `json:"waiting_room,omitempty"`
	MeetingAuthentication *bool                 `json:"meeting_authentication,omitempty"`
	ApprovalType          *int                  `json:"approval_type,omitempty"`
	Audio                 string                `json:"audio,omitempty"`
	AutoRecording         string                `json:"auto_recording,omitempty"`
	AlternativeHosts      string                `json:"alternative_hosts"`
	EncryptionType        string                `json:"encryption_type,omitempty"`
	BreakoutRoom          *BreakoutRoomSettings `json:"breakout_room,omitempty"`
}

// BreakoutRoomSettings pre-assigns participants to breakout rooms.
type BreakoutRoomSettings struct {
	Enable bool              `json:"enable"`
	Rooms  []BreakoutRoomDef `json:"rooms,omitempty"`
}

// BreakoutRoomDef is one pre-assigned room.
type BreakoutRoomDef struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants,omitempty"`
}

// TrackingFieldValue is a tracking field key/value pair on a meeting.
type TrackingFieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Occurrence is one instance of a recurring-fixed meeting.
type Occurrence struct {
	OccurrenceID string `json:"occurrence_id"`
	StartTime    string `json:"start_time"`
	Duration     int    `json:"duration"`
	Status       string `json:"status,omitempty"`
}

// MeetingResponse is the meeting or webinar object returned by Zoom.
type MeetingResponse struct {
	ID             int64                `json:"id"`
	UUID           string               `json:"uuid"`
	HostID         string               `json:"host_id"`
	HostEmail      string               `json:"host_email"`
	Topic          string               `json:"topic"`
	Type           int                  `json:"type"`
	Status         string               `json:"status"`
	StartTime      string               `json:"start_time"`
	Duration       int                  `json:"duration"`
	Timezone       string               `json:"timezone"`
	Agenda         string               `json:"agenda"`
	CreatedAt      string               `json:"created_at"`
	StartURL       string               `json:"start_url"`
	JoinURL        string               `json:"join_url"`
	Password       string               `json:"password"`
	Settings       *MeetingSettings     `json:"settings"`
	Recurrence     *RecurrenceSettings  `json:"recurrence"`
	Occurrences    []Occurrence         `json:"occurrences"`
	TrackingFields []TrackingFieldValue `json:"tracking_fields"`
}

// Registrant is a registered attendee of a meeting or webinar.
type Registrant struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
	JoinURL   string `json:"join_url"`
}

func resourceName(webinar bool) string {
	if webinar {
		return "webinars"
	}
	return "meetings"
}

// CreateMeeting creates a new meeting or webinar in Zoom for the specified user
func (c *Client) CreateMeeting(ctx context.Context, userID string, webinar bool, request *MeetingRequest) (*MeetingResponse, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "create_meeting"))

	path := fmt.Sprintf("/users/%s/%s", url.PathEscape(userID), resourceName(webinar))
	var meetingResp MeetingResponse
	if err := c.doRequest(ctx, http.MethodPost, path, nil, request, &meetingResp); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created Zoom meeting",
		"meeting_id", meetingResp.ID,
		"webinar", webinar,
		"occurrences", len(meetingResp.Occurrences))
	return &meetingResp, nil
}

// UpdateMeeting updates an existing meeting or webinar in Zoom
func (c *Client) UpdateMeeting(ctx context.Context, meetingID int64, webinar bool, request *MeetingRequest) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "update_meeting"))

	path := fmt.Sprintf("/%s/%d", resourceName(webinar), meetingID)
	return c.doRequest(ctx, http.MethodPatch, path, nil, request, nil)
}

// DeleteMeeting deletes a meeting or webinar from Zoom without notifying the scheduler
func (c *Client) DeleteMeeting(ctx context.Context, meetingID int64, webinar bool) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "delete_meeting"))

	path := fmt.Sprintf("/%s/%d", resourceName(webinar), meetingID)
	query := url.Values{"schedule_for_reminder": []string{"false"}}
	return c.doRequest(ctx, http.MethodDelete, path, query, nil, nil)
}

// GetMeeting fetches a meeting or webinar
func (c *Client) GetMeeting(ctx context.Context, meetingID int64, webinar bool) (*MeetingResponse, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_meeting"))

	path := fmt.Sprintf("/%s/%d", resourceName(webinar), meetingID)
	var meetingResp MeetingResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &meetingResp); err != nil {
		return nil, err
	}
	return &meetingResp, nil
}

// GetInvitation returns the invitation text of a meeting. Webinars have none.
func (c *Client) GetInvitation(ctx context.Context, meetingID int64) (string, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_invitation"))

	var resp struct {
		Invitation string `json:"invitation"`
	}
	path := fmt.Sprintf("/meetings/%d/invitation", meetingID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Invitation, nil
}

// ListRegistrants returns every registrant of a meeting or webinar
func (c *Client) ListRegistrants(ctx context.Context, meetingID int64, webinar bool) ([]Registrant, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_registrants"))

	path := fmt.Sprintf("/%s/%d/registrants", resourceName(webinar), meetingID)
	return collect[Registrant](ctx, c, path, nil, "registrants")
}
