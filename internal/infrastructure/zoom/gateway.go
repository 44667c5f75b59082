// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/utils"
)

// GatewayConfig holds the site-level defaults applied to every meeting.
type GatewayConfig struct {
	// DefaultAutoRecording applies when a meeting has no explicit auto recording mode.
	DefaultAutoRecording string
	// TrackingFields maps normalized keys to the Zoom labels that are synced.
	TrackingFields map[string]string
	Licenses       LicenseConfig
}

// Gateway implements domain.MeetingGateway on top of the Zoom REST client.
type Gateway struct {
	client    api.ClientAPI
	mapper    Mapper
	config    GatewayConfig
	directory UserDirectory
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithUserDirectory sets the directory used to restrict license recycling to local users.
func WithUserDirectory(directory UserDirectory) GatewayOption {
	return func(g *Gateway) {
		g.directory = directory
	}
}

// NewGateway creates a new meeting gateway
func NewGateway(client api.ClientAPI, config GatewayConfig, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client: client,
		mapper: Mapper{TrackingFields: config.TrackingFields},
		config: config,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ensure Gateway implements MeetingGateway
var _ domain.MeetingGateway = (*Gateway)(nil)

// CreateMeeting provides the host a license if needed, creates the meeting in
// Zoom and returns the local meeting populated from the response.
func (g *Gateway) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	if meeting.HostID == "" {
		return nil, domain.NewValidationError("meeting host is required")
	}

	if err := g.ProvideLicense(ctx, meeting.HostID); err != nil {
		if domain.IsFatal(err) {
			return nil, err
		}
		slog.WarnContext(ctx, "license recycling failed, creating meeting anyway", logging.ErrKey, err)
	}

	req := g.buildRequest(ctx, meeting)
	resp, err := g.client.CreateMeeting(ctx, meeting.HostID, meeting.IsWebinar, req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create Zoom meeting", logging.ErrKey, err)
		return nil, err
	}

	if meeting.Mode == models.SchedulingModeRecurringFixed && len(resp.Occurrences) == 0 {
		if delErr := g.client.DeleteMeeting(ctx, resp.ID, meeting.IsWebinar); delErr != nil {
			slog.ErrorContext(ctx, "failed to delete meeting without occurrences",
				logging.ErrKey, delErr,
				"meeting_id", resp.ID,
				logging.PriorityCritical())
		}
		return nil, domain.NewInvalidRecurrenceError(
			fmt.Sprintf("recurrence of meeting %q produces no occurrences", meeting.Name))
	}

	created := g.mapper.FromRemote(meeting, resp)
	created.RemoteState = models.RemoteStateExists
	return created, nil
}

// UpdateMeeting pushes the local meeting, including its tracking field values, to Zoom.
func (g *Gateway) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))
	ctx = logging.AppendCtx(ctx, slog.Int64("meeting_id", meeting.RemoteID))

	req := g.buildRequest(ctx, meeting)
	// The host of an existing meeting cannot be reassigned through an update.
	req.ScheduleFor = ""
	if err := g.client.UpdateMeeting(ctx, meeting.RemoteID, meeting.IsWebinar, req); err != nil {
		slog.ErrorContext(ctx, "failed to update Zoom meeting", logging.ErrKey, err)
		return err
	}
	return nil
}

// DeleteMeeting deletes the remote meeting. A not found error is returned as
// is; callers decide whether an already deleted meeting is a failure.
func (g *Gateway) DeleteMeeting(ctx context.Context, remoteID int64, isWebinar bool) error {
	return g.client.DeleteMeeting(ctx, remoteID, isWebinar)
}

// FetchMeeting returns local populated from the current Zoom state.
func (g *Gateway) FetchMeeting(ctx context.Context, local *models.Meeting) (*models.Meeting, error) {
	resp, err := g.client.GetMeeting(ctx, local.RemoteID, local.IsWebinar)
	if err != nil {
		return nil, err
	}
	return g.mapper.FromRemote(local, resp), nil
}

// ListRecordings returns the playable MP4 and M4A recordings of a meeting or
// meeting instance grouped by start time, earliest first. Any Zoom error reads
// as no recordings.
func (g *Gateway) ListRecordings(ctx context.Context, meetingIDOrUUID string) []models.RecordingGroup {
	groups, err := g.FetchRecordings(ctx, meetingIDOrUUID)
	if err != nil {
		slog.DebugContext(ctx, "no recordings available", logging.ErrKey, err,
			"meeting_uuid", meetingIDOrUUID)
		return nil
	}
	return groups
}

// FetchRecordings is ListRecordings returning the Zoom error instead of an
// empty result.
func (g *Gateway) FetchRecordings(ctx context.Context, meetingIDOrUUID string) ([]models.RecordingGroup, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uuid", meetingIDOrUUID))

	resp, err := g.client.ListRecordings(ctx, meetingIDOrUUID)
	if err != nil {
		return nil, err
	}
	if len(resp.RecordingFiles) == 0 {
		return nil, nil
	}

	settings, err := g.client.GetRecordingSettings(ctx, meetingIDOrUUID)
	if err != nil {
		return nil, err
	}

	byStart := make(map[int64]*models.RecordingGroup)
	for _, file := range resp.RecordingFiles {
		if file.PlayURL == "" || (file.FileType != api.FileTypeMP4 && file.FileType != api.FileTypeM4A) {
			continue
		}
		start, _ := parseRemoteTime(file.RecordingStart)

		recordingType := models.RecordingTypeVideo
		if file.RecordingType == api.RecordingTypeAudioOnly {
			recordingType = models.RecordingTypeAudio
		}

		group, ok := byStart[start.Unix()]
		if !ok {
			group = &models.RecordingGroup{RecordingStart: start}
			byStart[start.Unix()] = group
		}
		group.Recordings = append(group.Recordings, models.RemoteRecording{
			RemoteID:       file.ID,
			MeetingUUID:    utils.Coalesce(file.MeetingID, resp.UUID),
			URL:            file.PlayURL,
			Passcode:       settings.Password,
			Type:           recordingType,
			RecordingStart: start,
		})
	}

	groups := make([]models.RecordingGroup, 0, len(byStart))
	for _, group := range byStart {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].RecordingStart.Before(groups[j].RecordingStart)
	})
	return groups, nil
}

// Invitation returns the Zoom invitation text of a meeting. Webinars have none.
func (g *Gateway) Invitation(ctx context.Context, meeting *models.Meeting) string {
	if meeting.IsWebinar {
		return ""
	}
	text, err := g.client.GetInvitation(ctx, meeting.RemoteID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch meeting invitation", logging.ErrKey, err, "meeting_id", meeting.RemoteID)
		return ""
	}
	return text
}

// RegistrantJoinURL returns the personal join URL of a registrant, or "" when
// the email is not registered.
func (g *Gateway) RegistrantJoinURL(ctx context.Context, meeting *models.Meeting, email string) (string, error) {
	registrants, err := g.client.ListRegistrants(ctx, meeting.RemoteID, meeting.IsWebinar)
	if err != nil {
		return "", err
	}
	for _, r := range registrants {
		if strings.EqualFold(r.Email, email) {
			return r.JoinURL, nil
		}
	}
	return "", nil
}

// ListTrackingFields returns the account tracking fields keyed by normalized name.
func (g *Gateway) ListTrackingFields(ctx context.Context) (map[string]models.TrackingField, error) {
	fields, err := g.client.ListTrackingFields(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]models.TrackingField, len(fields))
	for _, f := range fields {
		catalog[models.NormalizeTrackingFieldKey(f.Field)] = models.TrackingField{
			ID:                f.ID,
			Field:             f.Field,
			Required:          f.Required,
			Visible:           f.Visible,
			RecommendedValues: f.RecommendedValues,
		}
	}
	return catalog, nil
}

// ResolveUserID returns the Zoom user id for an email or user id.
func (g *Gateway) ResolveUserID(ctx context.Context, identifier string) (string, error) {
	user, err := g.client.GetUser(ctx, identifier)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// MeetingCapacity returns the participant capacity of a user's meetings, 0 when unknown.
func (g *Gateway) MeetingCapacity(ctx context.Context, zoomUserID string) int {
	settings, err := g.client.GetUserSettings(ctx, zoomUserID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch user settings", logging.ErrKey, err, "zoom_user_id", zoomUserID)
		return 0
	}
	return settings.Feature.MeetingCapacity
}

func (g *Gateway) buildRequest(ctx context.Context, meeting *models.Meeting) *api.MeetingRequest {
	req := g.mapper.ToRemote(meeting, g.resolveAutoRecording(ctx, meeting))
	if req.Settings.EncryptionType == models.EncryptionE2EE && !g.endToEndAllowed(ctx, meeting.HostID) {
		req.Settings.EncryptionType = models.EncryptionEnhanced
	}
	return req
}

// resolveAutoRecording picks the explicit mode, then the site default, and
// resolves "userdefault" to the host's own recording setting.
func (g *Gateway) resolveAutoRecording(ctx context.Context, meeting *models.Meeting) string {
	mode := utils.Coalesce(meeting.AutoRecording, g.config.DefaultAutoRecording)
	if mode != models.AutoRecordingUserDefault {
		return mode
	}
	settings, err := g.client.GetUserSettings(ctx, meeting.HostID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch host recording default", logging.ErrKey, err)
		return ""
	}
	return settings.Recording.AutoRecording
}

func (g *Gateway) endToEndAllowed(ctx context.Context, zoomUserID string) bool {
	security, err := g.client.GetUserSecuritySettings(ctx, zoomUserID)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch host security settings", logging.ErrKey, err)
		return false
	}
	return security.EndToEndEncryptedMeetings
}
