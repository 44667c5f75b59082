// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api/mocks"
)

func newTestGateway(client *mocks.MockClient, config GatewayConfig) *Gateway {
	if config.TrackingFields == nil {
		config.TrackingFields = testMapper.TrackingFields
	}
	return NewGateway(client, config)
}

func oneTimeMeeting() *models.Meeting {
	return &models.Meeting{
		UID:       "local-1",
		HostID:    "host-1",
		Name:      "Algebra",
		Mode:      models.SchedulingModeOneTime,
		StartTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  3600,
	}
}

func TestGateway_CreateMeeting(t *testing.T) {
	tests := []struct {
		name          string
		meeting       func() *models.Meeting
		setupMock     func(*mocks.MockClient)
		wantErr       bool
		expectedErr   domain.ErrorType
		expectedCalls []string
	}{
		{
			name:          "one-time meeting",
			meeting:       oneTimeMeeting,
			setupMock:     func(client *mocks.MockClient) {},
			expectedCalls: []string{"CreateMeeting"},
		},
		{
			name: "recurring meeting with occurrences",
			meeting: func() *models.Meeting {
				m := oneTimeMeeting()
				m.Mode = models.SchedulingModeRecurringFixed
				m.Recurrence = &models.Recurrence{Type: models.RecurrenceTypeDaily, RepeatInterval: 1, EndTimes: 2}
				return m
			},
			setupMock: func(client *mocks.MockClient) {
				client.CreateMeetingFunc = func(ctx context.Context, userID string, webinar bool, request *api.MeetingRequest) (*api.MeetingResponse, error) {
					return &api.MeetingResponse{ID: 5, Type: request.Type, Occurrences: []api.Occurrence{
						{OccurrenceID: "1", StartTime: "2024-05-01T12:00:00Z", Duration: 60},
						{OccurrenceID: "2", StartTime: "2024-05-02T12:00:00Z", Duration: 60},
					}}, nil
				}
			},
			expectedCalls: []string{"CreateMeeting"},
		},
		{
			name: "recurring meeting without occurrences is rolled back",
			meeting: func() *models.Meeting {
				m := oneTimeMeeting()
				m.Mode = models.SchedulingModeRecurringFixed
				m.Recurrence = &models.Recurrence{Type: models.RecurrenceTypeMonthly, RepeatInterval: 1, MonthlyDay: 31, EndTimes: 1}
				return m
			},
			setupMock: func(client *mocks.MockClient) {
				client.CreateMeetingFunc = func(ctx context.Context, userID string, webinar bool, request *api.MeetingRequest) (*api.MeetingResponse, error) {
					return &api.MeetingResponse{ID: 6, Type: request.Type}, nil
				}
				client.DeleteMeetingFunc = func(ctx context.Context, meetingID int64, webinar bool) error {
					if meetingID != 6 {
						return errors.New("deleted the wrong meeting")
					}
					return nil
				}
			},
			wantErr:       true,
			expectedErr:   domain.ErrorTypeInvalidRecurrence,
			expectedCalls: []string{"CreateMeeting", "DeleteMeeting"},
		},
		{
			name:    "API error",
			meeting: oneTimeMeeting,
			setupMock: func(client *mocks.MockClient) {
				client.CreateMeetingFunc = func(ctx context.Context, userID string, webinar bool, request *api.MeetingRequest) (*api.MeetingResponse, error) {
					return nil, domain.NewBadRequestError("Validation Failed. Invalid field.", 300)
				}
			},
			wantErr:       true,
			expectedErr:   domain.ErrorTypeBadRequest,
			expectedCalls: []string{"CreateMeeting"},
		},
		{
			name: "missing host",
			meeting: func() *models.Meeting {
				m := oneTimeMeeting()
				m.HostID = ""
				return m
			},
			setupMock:   func(client *mocks.MockClient) {},
			wantErr:     true,
			expectedErr: domain.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockClient()
			tt.setupMock(client)
			gateway := newTestGateway(client, GatewayConfig{})

			created, err := gateway.CreateMeeting(context.Background(), tt.meeting())

			assert.Equal(t, tt.expectedCalls, client.Calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr, domain.GetErrorType(err))
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, created)
			assert.NotZero(t, created.RemoteID)
			assert.Equal(t, models.RemoteStateExists, created.RemoteState)
		})
	}
}

func TestGateway_CreateMeetingPayload(t *testing.T) {
	client := mocks.NewMockClient()
	var sent *api.MeetingRequest
	var sentUser string
	client.CreateMeetingFunc = func(ctx context.Context, userID string, webinar bool, request *api.MeetingRequest) (*api.MeetingResponse, error) {
		sent, sentUser = request, userID
		return &api.MeetingResponse{ID: 1, Type: request.Type, HostID: userID}, nil
	}
	client.GetUserSettingsFunc = func(ctx context.Context, userID string) (*api.UserSettings, error) {
		settings := &api.UserSettings{}
		settings.Recording.AutoRecording = models.AutoRecordingLocal
		return settings, nil
	}
	client.GetUserSecuritySettingsFunc = func(ctx context.Context, userID string) (*api.MeetingSecurity, error) {
		return &api.MeetingSecurity{EndToEndEncryptedMeetings: false}, nil
	}
	gateway := newTestGateway(client, GatewayConfig{DefaultAutoRecording: models.AutoRecordingUserDefault})

	m := oneTimeMeeting()
	m.EncryptionType = models.EncryptionE2EE
	m.TrackingFields = map[string]string{"department": "Math"}
	_, err := gateway.CreateMeeting(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, "host-1", sentUser)
	assert.Equal(t, models.AutoRecordingLocal, sent.Settings.AutoRecording, "userdefault resolves to the host setting")
	assert.Equal(t, models.EncryptionEnhanced, sent.Settings.EncryptionType, "e2ee falls back when the host cannot use it")
	assert.Equal(t, []api.TrackingFieldValue{{Field: "Department", Value: "Math"}}, sent.TrackingFields)
}

func TestGateway_UpdateMeeting(t *testing.T) {
	client := mocks.NewMockClient()
	var sent *api.MeetingRequest
	var sentID int64
	client.UpdateMeetingFunc = func(ctx context.Context, meetingID int64, webinar bool, request *api.MeetingRequest) error {
		sent, sentID = request, meetingID
		return nil
	}
	gateway := newTestGateway(client, GatewayConfig{DefaultAutoRecording: models.AutoRecordingCloud})

	m := oneTimeMeeting()
	m.RemoteID = 77
	m.ScheduleFor = "other@example.com"
	m.TrackingFields = map[string]string{"cost_center": "9"}

	require.NoError(t, gateway.UpdateMeeting(context.Background(), m))
	assert.Equal(t, int64(77), sentID)
	assert.Empty(t, sent.ScheduleFor)
	assert.Equal(t, models.AutoRecordingCloud, sent.Settings.AutoRecording)
	assert.Equal(t, []api.TrackingFieldValue{{Field: "Cost Center", Value: "9"}}, sent.TrackingFields)
	assert.Equal(t, []string{"UpdateMeeting"}, client.Calls, "updates do not touch licenses")
}

func TestGateway_FetchMeetingNotFound(t *testing.T) {
	client := mocks.NewMockClient()
	client.GetMeetingFunc = func(ctx context.Context, meetingID int64, webinar bool) (*api.MeetingResponse, error) {
		return nil, domain.NewRemoteNotFoundError("Meeting does not exist: 1.", 3001)
	}
	gateway := newTestGateway(client, GatewayConfig{})

	got, err := gateway.FetchMeeting(context.Background(), &models.Meeting{RemoteID: 1})

	assert.Nil(t, got)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsMeetingGone(err))
}

func TestGateway_ListRecordings(t *testing.T) {
	t.Run("filters and groups playable files", func(t *testing.T) {
		client := mocks.NewMockClient()
		settingsCalls := 0
		client.ListRecordingsFunc = func(ctx context.Context, id string) (*api.RecordingsResponse, error) {
			return &api.RecordingsResponse{UUID: "uuid-1", RecordingFiles: []api.RecordingFile{
				{ID: "late", MeetingID: "uuid-1", RecordingStart: "2024-05-01T13:00:00Z", FileType: "MP4", PlayURL: "https://zoom.us/rec/late"},
				{ID: "A", MeetingID: "uuid-1", RecordingStart: "2024-05-01T12:00:00Z", FileType: "MP4", PlayURL: "https://zoom.us/rec/A", RecordingType: "shared_screen_with_speaker_view"},
				{ID: "B", MeetingID: "uuid-1", RecordingStart: "2024-05-01T12:00:00Z", FileType: "M4A", PlayURL: "https://zoom.us/rec/B", RecordingType: "audio_only"},
				{ID: "chat", MeetingID: "uuid-1", RecordingStart: "2024-05-01T12:00:00Z", FileType: "CHAT", PlayURL: "https://zoom.us/rec/chat"},
				{ID: "processing", MeetingID: "uuid-1", RecordingStart: "2024-05-01T12:00:00Z", FileType: "MP4"},
			}}, nil
		}
		client.GetRecordingSettingsFunc = func(ctx context.Context, id string) (*api.RecordingSettings, error) {
			settingsCalls++
			return &api.RecordingSettings{Password: "s3cret"}, nil
		}
		gateway := newTestGateway(client, GatewayConfig{})

		groups := gateway.ListRecordings(context.Background(), "123")

		assert.Equal(t, 1, settingsCalls)
		require.Len(t, groups, 2)
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), groups[0].RecordingStart)
		require.Len(t, groups[0].Recordings, 2)
		assert.Equal(t, "A", groups[0].Recordings[0].RemoteID)
		assert.Equal(t, models.RecordingTypeVideo, groups[0].Recordings[0].Type)
		assert.Equal(t, "B", groups[0].Recordings[1].RemoteID)
		assert.Equal(t, models.RecordingTypeAudio, groups[0].Recordings[1].Type)
		assert.Equal(t, "s3cret", groups[0].Recordings[1].Passcode)
		assert.Equal(t, "uuid-1", groups[0].Recordings[1].MeetingUUID)
		assert.Equal(t, "late", groups[1].Recordings[0].RemoteID)
	})

	t.Run("no files skips the settings call", func(t *testing.T) {
		client := mocks.NewMockClient()
		client.GetRecordingSettingsFunc = func(ctx context.Context, id string) (*api.RecordingSettings, error) {
			t.Error("settings must not be fetched without recordings")
			return nil, nil
		}
		gateway := newTestGateway(client, GatewayConfig{})

		assert.Empty(t, gateway.ListRecordings(context.Background(), "123"))
	})

	t.Run("remote errors yield nothing", func(t *testing.T) {
		client := mocks.NewMockClient()
		client.ListRecordingsFunc = func(ctx context.Context, id string) (*api.RecordingsResponse, error) {
			return nil, domain.NewRemoteNotFoundError("This recording does not exist.", 3301)
		}
		gateway := newTestGateway(client, GatewayConfig{})

		assert.Empty(t, gateway.ListRecordings(context.Background(), "123"))
	})

	t.Run("fetch returns the remote error", func(t *testing.T) {
		client := mocks.NewMockClient()
		client.ListRecordingsFunc = func(ctx context.Context, id string) (*api.RecordingsResponse, error) {
			return nil, domain.NewRemoteError("HTTP 502", 502, 0)
		}
		gateway := newTestGateway(client, GatewayConfig{})

		groups, err := gateway.FetchRecordings(context.Background(), "123")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeRemote, domain.GetErrorType(err))
		assert.Nil(t, groups)
	})
}

func TestGateway_Invitation(t *testing.T) {
	tests := []struct {
		name     string
		webinar  bool
		response string
		err      error
		expected string
	}{
		{name: "meeting", response: "Join Zoom Meeting", expected: "Join Zoom Meeting"},
		{name: "webinar", webinar: true, response: "ignored", expected: ""},
		{name: "remote error", err: domain.NewRemoteError("boom", 500, 0), expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewMockClient()
			client.GetInvitationFunc = func(ctx context.Context, meetingID int64) (string, error) {
				return tt.response, tt.err
			}
			gateway := newTestGateway(client, GatewayConfig{})

			got := gateway.Invitation(context.Background(), &models.Meeting{RemoteID: 1, IsWebinar: tt.webinar})

			assert.Equal(t, tt.expected, got)
			if tt.webinar {
				assert.Empty(t, client.Calls)
			}
		})
	}
}

func TestGateway_RegistrantJoinURL(t *testing.T) {
	client := mocks.NewMockClient()
	client.ListRegistrantsFunc = func(ctx context.Context, meetingID int64, webinar bool) ([]api.Registrant, error) {
		return []api.Registrant{
			{Email: "Student@Example.com", JoinURL: "https://zoom.us/w/1?tk=abc"},
		}, nil
	}
	gateway := newTestGateway(client, GatewayConfig{})

	url, err := gateway.RegistrantJoinURL(context.Background(), &models.Meeting{RemoteID: 1}, "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://zoom.us/w/1?tk=abc", url)

	url, err = gateway.RegistrantJoinURL(context.Background(), &models.Meeting{RemoteID: 1}, "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestGateway_ListTrackingFields(t *testing.T) {
	client := mocks.NewMockClient()
	client.ListTrackingFieldsFunc = func(ctx context.Context) ([]api.TrackingField, error) {
		return []api.TrackingField{{ID: "tf1", Field: "Cost Center", Required: true, RecommendedValues: []string{"1", "2"}}}, nil
	}
	gateway := newTestGateway(client, GatewayConfig{})

	catalog, err := gateway.ListTrackingFields(context.Background())

	require.NoError(t, err)
	require.Contains(t, catalog, "cost_center")
	assert.Equal(t, "Cost Center", catalog["cost_center"].Field)
	assert.True(t, catalog["cost_center"].Required)
}

func TestGateway_ResolveUserIDAndCapacity(t *testing.T) {
	client := mocks.NewMockClient()
	client.GetUserFunc = func(ctx context.Context, identifier string) (*api.ZoomUser, error) {
		if identifier == "missing@example.com" {
			return nil, domain.NewRemoteNotFoundError("User does not exist: missing@example.com.", 1001)
		}
		return &api.ZoomUser{ID: "zoom-" + identifier}, nil
	}
	client.GetUserSettingsFunc = func(ctx context.Context, userID string) (*api.UserSettings, error) {
		settings := &api.UserSettings{}
		settings.Feature.MeetingCapacity = 300
		return settings, nil
	}
	gateway := newTestGateway(client, GatewayConfig{})

	id, err := gateway.ResolveUserID(context.Background(), "instructor@example.com")
	require.NoError(t, err)
	assert.Equal(t, "zoom-instructor@example.com", id)

	_, err = gateway.ResolveUserID(context.Background(), "missing@example.com")
	assert.True(t, domain.IsMeetingGone(err))

	assert.Equal(t, 300, gateway.MeetingCapacity(context.Background(), id))
}
