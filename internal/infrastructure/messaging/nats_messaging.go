// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// DefaultRequestTimeout bounds request/reply round trips to the host.
const DefaultRequestTimeout = 5 * time.Second

// INatsConn is the subset of *nats.Conn the message builder needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

// MessageBuilder builds collaborator messages and sends them to the NATS server.
// It is the calendar and grading collaborator of the sync core: the host
// subscribes to the subjects and applies the changes to its own stores.
type MessageBuilder struct {
	NatsConn INatsConn
	Timeout  time.Duration
}

var (
	_ domain.CalendarCollaborator = (*MessageBuilder)(nil)
	_ domain.GradingCollaborator  = (*MessageBuilder)(nil)
)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
		Timeout:  DefaultRequestTimeout,
	}
}

// publish sends data on subject.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		slog.WarnContext(ctx, "NATS connection is not available", "subject", subject)
		return domain.NewUnavailableError("NATS connection is not available")
	}
	if err := m.NatsConn.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// request sends data on subject and waits for the reply.
func (m *MessageBuilder) request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*nats.Msg, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	msg, err := m.NatsConn.Request(subject, data, timeout)
	if err != nil {
		slog.ErrorContext(ctx, "error sending request to NATS", logging.ErrKey, err, "subject", subject)
		return nil, err
	}
	return msg, nil
}

// sendCollaboratorMessage wraps data in a CollaboratorMessage and publishes it.
// The payload is normalized to plain JSON values so subscribers in any
// language see the same shape.
func (m *MessageBuilder) sendCollaboratorMessage(ctx context.Context, subject string, action models.MessageAction, meetingUID string, data any) error {
	var payload any
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err, "subject", subject)
			return err
		}
		var jsonData any
		if err := json.Unmarshal(dataBytes, &jsonData); err != nil {
			slog.ErrorContext(ctx, "error unmarshalling data into JSON", logging.ErrKey, err, "subject", subject)
			return err
		}

		config := mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &payload,
		}
		decoder, err := mapstructure.NewDecoder(&config)
		if err != nil {
			slog.ErrorContext(ctx, "error creating decoder", logging.ErrKey, err, "subject", subject)
			return err
		}
		if err := decoder.Decode(jsonData); err != nil {
			slog.ErrorContext(ctx, "error decoding data", logging.ErrKey, err, "subject", subject)
			return err
		}
	}

	message := models.CollaboratorMessage{
		Action:     action,
		MeetingUID: meetingUID,
		Data:       payload,
	}
	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "constructed collaborator message",
		"subject", subject,
		"action", action,
		"meeting_uid", meetingUID,
	)

	return m.publish(ctx, subject, messageBytes)
}

// UpsertEventsForMeeting publishes the complete calendar event set of a meeting.
func (m *MessageBuilder) UpsertEventsForMeeting(ctx context.Context, meeting *models.Meeting) error {
	return m.sendCollaboratorMessage(ctx, models.CalendarUpsertSubject, models.ActionUpserted, meeting.UID, CalendarEvents(meeting))
}

// DeleteEventsForMeeting asks the host to remove every calendar event of a meeting.
func (m *MessageBuilder) DeleteEventsForMeeting(ctx context.Context, meeting *models.Meeting) error {
	return m.sendCollaboratorMessage(ctx, models.CalendarDeleteSubject, models.ActionDeleted, meeting.UID, nil)
}

// UpsertGradeItem publishes the grade item of a meeting.
func (m *MessageBuilder) UpsertGradeItem(ctx context.Context, meeting *models.Meeting) error {
	return m.sendCollaboratorMessage(ctx, models.GradeUpsertSubject, models.ActionUpserted, meeting.UID, GradeItemFor(meeting))
}

// DeleteGradeItem asks the host to remove the grade item of a meeting.
func (m *MessageBuilder) DeleteGradeItem(ctx context.Context, meeting *models.Meeting) error {
	return m.sendCollaboratorMessage(ctx, models.GradeDeleteSubject, models.ActionDeleted, meeting.UID, nil)
}

// HasUser asks the host whether a user with email exists locally.
func (m *MessageBuilder) HasUser(ctx context.Context, email string) (bool, error) {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		return false, domain.NewUnavailableError("NATS connection is not available")
	}

	data, err := json.Marshal(models.UserLookupRequest{Email: email})
	if err != nil {
		return false, err
	}

	msg, err := m.request(ctx, models.UserLookupSubject, data, m.Timeout)
	if err != nil {
		return false, domain.NewUnavailableError("user lookup failed", err)
	}

	var resp models.UserLookupResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling user lookup reply", logging.ErrKey, err)
		return false, domain.NewInternalError("invalid user lookup reply", err)
	}
	if resp.Error != "" {
		return false, domain.NewInternalError("user lookup failed: " + resp.Error)
	}
	return resp.Exists, nil
}
