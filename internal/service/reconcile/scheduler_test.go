// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/service"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeCooldown struct {
	mu    sync.Mutex
	until time.Time
}

func (c *fakeCooldown) Load(context.Context) error { return nil }

func (c *fakeCooldown) Active(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Before(c.until)
}

func (c *fakeCooldown) Until() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.until
}

func (c *fakeCooldown) Set(until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = until
}

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) SyncMeetingTrackingFields(ctx context.Context, meetingUID string, values map[string]string) error {
	args := m.Called(ctx, meetingUID, values)
	return args.Error(0)
}

func (m *mockSyncer) SyncTrackingFields(ctx context.Context) (*service.TrackingFieldSyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TrackingFieldSyncResult), args.Error(1)
}

type schedulerMocks struct {
	gateway    *mocks.MockMeetingGateway
	meetings   *mocks.MockMeetingRepository
	recordings *mocks.MockRecordingRepository
	calendar   *mocks.MockCalendar
	syncer     *mockSyncer
	cooldown   *fakeCooldown
}

func (m *schedulerMocks) assertExpectations(t *testing.T) {
	m.gateway.AssertExpectations(t)
	m.meetings.AssertExpectations(t)
	m.recordings.AssertExpectations(t)
	m.calendar.AssertExpectations(t)
	m.syncer.AssertExpectations(t)
}

func setupScheduler(config Config) (*Scheduler, *schedulerMocks) {
	m := &schedulerMocks{
		gateway:    &mocks.MockMeetingGateway{},
		meetings:   &mocks.MockMeetingRepository{},
		recordings: &mocks.MockRecordingRepository{},
		calendar:   &mocks.MockCalendar{},
		syncer:     &mockSyncer{},
		cooldown:   &fakeCooldown{},
	}
	if config.Workers == 0 {
		config.Workers = 1
	}

	s := NewScheduler(Dependencies{
		Gateway:        m.gateway,
		Meetings:       m.meetings,
		Recordings:     m.recordings,
		Calendar:       m.calendar,
		TrackingFields: m.syncer,
		Cooldown:       m.cooldown,
	}, config)
	s.now = func() time.Time { return testNow }

	var next int
	s.newUID = func() string {
		next++
		return fmt.Sprintf("rec-%d", next)
	}
	return s, m
}

func oneTimeMeeting(uid, name string, start time.Time) *models.Meeting {
	return &models.Meeting{
		UID:         uid,
		RemoteID:    85746065432,
		HostID:      "host-1",
		Name:        name,
		Mode:        models.SchedulingModeOneTime,
		StartTime:   start,
		Duration:    3600,
		JoinURL:     "https://zoom.us/j/85746065432",
		StartURL:    "https://zoom.us/s/85746065432?zak=one",
		RemoteState: models.RemoteStateExists,
	}
}

func TestScheduler_RunJob_Unknown(t *testing.T) {
	s, _ := setupScheduler(Config{})

	err := s.RunJob(t.Context(), "everything")

	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	assert.Error(t, err)
}

func TestScheduler_RunJob_CooldownSkips(t *testing.T) {
	for _, name := range JobNames {
		t.Run(name, func(t *testing.T) {
			s, m := setupScheduler(Config{ViewRecordings: true})
			m.cooldown.Set(testNow.Add(30 * time.Minute))

			err := s.RunJob(t.Context(), name)

			require.NoError(t, err)
			m.assertExpectations(t)
		})
	}
}

func TestScheduler_SyncMeetings(t *testing.T) {
	start := testNow.Add(24 * time.Hour)

	t.Run("remote rename is stored and pushed to the calendar", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		local := oneTimeMeeting("m-1", "Foo", start)
		remote := oneTimeMeeting("m-1", "Bar", start)
		remote.StartURL = "https://zoom.us/s/85746065432?zak=two"
		remote.TrackingFields = map[string]string{"department": "Engineering"}

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{oneTimeMeeting("m-1", "Foo", start)}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(local, uint64(3), nil)
		m.gateway.On("FetchMeeting", mock.Anything, local).Return(remote, nil)
		m.meetings.On("Update", mock.Anything, mock.MatchedBy(func(mt *models.Meeting) bool {
			return mt.Name == "Bar" && mt.TimeModified.Equal(testNow)
		}), uint64(3)).Return(nil)
		m.calendar.On("UpsertEventsForMeeting", mock.Anything, remote).Return(nil)
		m.syncer.On("SyncMeetingTrackingFields", mock.Anything, "m-1", remote.TrackingFields).Return(nil)

		summary, err := s.syncMeetings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 1, Changed: 1}, summary)
		m.assertExpectations(t)
	})

	t.Run("no differences still syncs tracking fields", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		local := oneTimeMeeting("m-1", "Foo", start)
		remote := oneTimeMeeting("m-1", "Foo", start)
		remote.StartURL = "https://zoom.us/s/85746065432?zak=rotated"

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{local}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(local, uint64(1), nil)
		m.gateway.On("FetchMeeting", mock.Anything, local).Return(remote, nil)
		m.syncer.On("SyncMeetingTrackingFields", mock.Anything, "m-1", mock.Anything).Return(nil)

		summary, err := s.syncMeetings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 1}, summary)
		m.meetings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		m.calendar.AssertNotCalled(t, "UpsertEventsForMeeting", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("settings change skips the calendar", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		local := oneTimeMeeting("m-1", "Foo", start)
		remote := oneTimeMeeting("m-1", "Foo", start)
		remote.WaitingRoom = true

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{local}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(local, uint64(1), nil)
		m.gateway.On("FetchMeeting", mock.Anything, local).Return(remote, nil)
		m.meetings.On("Update", mock.Anything, remote, uint64(1)).Return(nil)
		m.syncer.On("SyncMeetingTrackingFields", mock.Anything, "m-1", mock.Anything).Return(nil)

		_, err := s.syncMeetings(t.Context())

		require.NoError(t, err)
		m.calendar.AssertNotCalled(t, "UpsertEventsForMeeting", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("recurring without fixed time always refreshes the calendar", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		local := oneTimeMeeting("m-1", "Foo", time.Time{})
		local.Mode = models.SchedulingModeRecurringNoTime
		remote := oneTimeMeeting("m-1", "Foo", time.Time{})
		remote.Mode = models.SchedulingModeRecurringNoTime
		remote.MuteUponEntry = true

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{local}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(local, uint64(1), nil)
		m.gateway.On("FetchMeeting", mock.Anything, local).Return(remote, nil)
		m.meetings.On("Update", mock.Anything, remote, uint64(1)).Return(nil)
		m.calendar.On("UpsertEventsForMeeting", mock.Anything, remote).Return(nil)
		m.syncer.On("SyncMeetingTrackingFields", mock.Anything, "m-1", mock.Anything).Return(nil)

		_, err := s.syncMeetings(t.Context())

		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("deleted on Zoom marks the meeting expired", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		local := oneTimeMeeting("m-1", "Foo", start)

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{local}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(local, uint64(7), nil)
		m.gateway.On("FetchMeeting", mock.Anything, local).
			Return(nil, domain.NewRemoteNotFoundError("Meeting does not exist", 3001))
		m.meetings.On("Update", mock.Anything, mock.MatchedBy(func(mt *models.Meeting) bool {
			return mt.RemoteState == models.RemoteStateExpired
		}), uint64(7)).Return(nil)

		summary, err := s.syncMeetings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Changed)
		m.syncer.AssertNotCalled(t, "SyncMeetingTrackingFields", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("one failing meeting does not stop the others", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		broken := oneTimeMeeting("m-1", "Foo", start)
		healthy := oneTimeMeeting("m-2", "Baz", start)

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{broken, healthy}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(broken, uint64(1), nil)
		m.meetings.On("Get", mock.Anything, "m-2").Return(healthy, uint64(1), nil)
		m.gateway.On("FetchMeeting", mock.Anything, broken).
			Return(nil, domain.NewConnectionError("connection reset"))
		m.gateway.On("FetchMeeting", mock.Anything, healthy).Return(healthy, nil)
		m.syncer.On("SyncMeetingTrackingFields", mock.Anything, "m-2", mock.Anything).Return(nil)

		summary, err := s.syncMeetings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 2, Failed: 1}, summary)
		m.assertExpectations(t)
	})

	t.Run("quota exhaustion aborts the run", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		first := oneTimeMeeting("m-1", "Foo", start)
		second := oneTimeMeeting("m-2", "Baz", start)

		m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
			Return([]*models.Meeting{first, second}, nil)
		m.meetings.On("Get", mock.Anything, "m-1").Return(first, uint64(1), nil)
		m.gateway.On("FetchMeeting", mock.Anything, first).
			Return(nil, domain.NewQuotaExhaustedError("quota exhausted", 0, testNow.Add(time.Hour)))

		summary, err := s.syncMeetings(t.Context())

		assert.True(t, domain.IsQuotaExhausted(err))
		assert.Equal(t, 0, summary.Failed)
		m.meetings.AssertNotCalled(t, "Get", mock.Anything, "m-2")
		m.assertExpectations(t)
	})
}

func remoteGroup(start time.Time, meetingUUID string, ids ...string) models.RecordingGroup {
	group := models.RecordingGroup{RecordingStart: start}
	for _, id := range ids {
		group.Recordings = append(group.Recordings, models.RemoteRecording{
			RemoteID:       id,
			MeetingUUID:    meetingUUID,
			URL:            "https://zoom.us/rec/play/" + id,
			Passcode:       "pass",
			Type:           models.RecordingTypeVideo,
			RecordingStart: start,
		})
	}
	return group
}

func TestScheduler_DiscoverRecordings(t *testing.T) {
	past := testNow.Add(-48 * time.Hour)

	t.Run("inserts every missing recording", func(t *testing.T) {
		s, m := setupScheduler(Config{ViewRecordings: true})
		meeting := oneTimeMeeting("m-1", " Design review ", past)
		meeting.RecordingsVisibleDefault = true

		m.meetings.On("List", mock.Anything).Return([]*models.Meeting{meeting}, nil)
		m.recordings.On("ListByMeeting", mock.Anything, "m-1").Return(nil, nil)
		m.gateway.On("ListRecordings", mock.Anything, "85746065432").
			Return([]models.RecordingGroup{remoteGroup(past, "run-1", "A", "B")})

		var created []*models.Recording
		m.recordings.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = append(created, args.Get(1).(*models.Recording))
			}).Return(nil)

		summary, err := s.discoverRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 1, Changed: 2}, summary)
		require.Len(t, created, 2)
		for i, id := range []string{"A", "B"} {
			assert.Equal(t, fmt.Sprintf("rec-%d", i+1), created[i].UID)
			assert.Equal(t, id, created[i].RemoteID)
			assert.Equal(t, "Design review (video)", created[i].Name)
			assert.Equal(t, "https://zoom.us/rec/play/"+id, created[i].ExternalURL)
			assert.Equal(t, models.RecordingTypeVideo, created[i].Type)
			assert.Equal(t, "run-1", created[i].MeetingUUID)
			assert.True(t, created[i].Visible)
			assert.Equal(t, testNow, created[i].CreatedAt)
		}
		m.assertExpectations(t)
	})

	t.Run("known recordings are skipped", func(t *testing.T) {
		s, m := setupScheduler(Config{ViewRecordings: true})
		meeting := oneTimeMeeting("m-1", "Design review", past)

		m.meetings.On("List", mock.Anything).Return([]*models.Meeting{meeting}, nil)
		m.recordings.On("ListByMeeting", mock.Anything, "m-1").
			Return([]*models.Recording{{UID: "r-1", MeetingUID: "m-1", RemoteID: "A"}}, nil)
		m.gateway.On("ListRecordings", mock.Anything, "85746065432").
			Return([]models.RecordingGroup{remoteGroup(past, "run-1", "A", "B")})
		m.recordings.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Recording) bool {
			return r.RemoteID == "B" && !r.Visible
		})).Return(nil).Once()

		summary, err := s.discoverRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Changed)
		m.assertExpectations(t)
	})

	t.Run("only recurring or finished meetings are checked", func(t *testing.T) {
		s, m := setupScheduler(Config{ViewRecordings: true})
		upcoming := oneTimeMeeting("m-1", "Upcoming", testNow.Add(time.Hour))
		running := oneTimeMeeting("m-2", "Running", testNow.Add(-30*time.Minute))
		neverCreated := oneTimeMeeting("m-3", "Draft", past)
		neverCreated.RemoteID = 0

		m.meetings.On("List", mock.Anything).Return([]*models.Meeting{upcoming, running, neverCreated}, nil)

		summary, err := s.discoverRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{}, summary)
		m.assertExpectations(t)
	})

	t.Run("disabled", func(t *testing.T) {
		s, m := setupScheduler(Config{ViewRecordings: false})

		summary, err := s.discoverRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{}, summary)
		m.assertExpectations(t)
	})

	t.Run("quota exhaustion mid run stops discovery", func(t *testing.T) {
		s, m := setupScheduler(Config{ViewRecordings: true})
		first := oneTimeMeeting("m-1", "First", past)
		second := oneTimeMeeting("m-2", "Second", past)
		second.RemoteID = 12345

		m.meetings.On("List", mock.Anything).Return([]*models.Meeting{first, second}, nil)
		m.recordings.On("ListByMeeting", mock.Anything, "m-1").Return(nil, nil)
		m.gateway.On("ListRecordings", mock.Anything, "85746065432").
			Run(func(mock.Arguments) { m.cooldown.Set(testNow.Add(time.Hour)) }).
			Return(nil)

		summary, err := s.discoverRecordings(t.Context())

		assert.True(t, domain.IsQuotaExhausted(err))
		assert.Equal(t, 0, summary.Changed)
		m.recordings.AssertNotCalled(t, "ListByMeeting", mock.Anything, "m-2")
		m.recordings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})
}

func TestScheduler_PruneRecordings(t *testing.T) {
	start := testNow.Add(-48 * time.Hour)

	t.Run("deletes recordings missing remotely", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		m.recordings.On("List", mock.Anything).Return([]*models.Recording{
			{UID: "r-a", MeetingUUID: "u", RemoteID: "A"},
			{UID: "r-b", MeetingUUID: "u", RemoteID: "B"},
			{UID: "r-c", MeetingUUID: "u", RemoteID: "C"},
		}, nil)
		m.gateway.On("FetchRecordings", mock.Anything, "u").
			Return([]models.RecordingGroup{remoteGroup(start, "u", "A", "B")}, nil)
		m.recordings.On("Delete", mock.Anything, "r-c").Return(nil).Once()

		summary, err := s.pruneRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 1, Changed: 1}, summary)
		m.assertExpectations(t)
	})

	t.Run("run gone on Zoom deletes every recording", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		m.recordings.On("List", mock.Anything).Return([]*models.Recording{
			{UID: "r-a", MeetingUUID: "u", RemoteID: "A"},
			{UID: "r-b", MeetingUUID: "u", RemoteID: "B"},
		}, nil)
		m.gateway.On("FetchRecordings", mock.Anything, "u").
			Return(nil, domain.NewRemoteNotFoundError("This recording does not exist.", 3301))
		m.recordings.On("Delete", mock.Anything, "r-a").Return(nil).Once()
		m.recordings.On("Delete", mock.Anything, "r-b").Return(nil).Once()

		summary, err := s.pruneRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 1, Changed: 2}, summary)
		m.assertExpectations(t)
	})

	t.Run("transient listing failure keeps the run", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		m.recordings.On("List", mock.Anything).Return([]*models.Recording{
			{UID: "r-a", MeetingUUID: "u", RemoteID: "A"},
			{UID: "r-v", MeetingUUID: "v", RemoteID: "V"},
			{UID: "r-w", MeetingUUID: "v", RemoteID: "W"},
		}, nil)
		m.gateway.On("FetchRecordings", mock.Anything, "u").
			Return(nil, domain.NewConnectionError("zoom request failed after 5 attempts"))
		m.gateway.On("FetchRecordings", mock.Anything, "v").
			Return([]models.RecordingGroup{remoteGroup(start, "v", "V")}, nil)
		m.recordings.On("Delete", mock.Anything, "r-w").Return(nil).Once()

		summary, err := s.pruneRecordings(t.Context())

		require.NoError(t, err)
		assert.Equal(t, Summary{Processed: 2, Changed: 1, Failed: 1}, summary)
		m.recordings.AssertNotCalled(t, "Delete", mock.Anything, "r-a")
		m.assertExpectations(t)
	})

	t.Run("quota exhaustion keeps every recording", func(t *testing.T) {
		s, m := setupScheduler(Config{})
		m.recordings.On("List", mock.Anything).Return([]*models.Recording{
			{UID: "r-a", MeetingUUID: "u", RemoteID: "A"},
		}, nil)
		m.gateway.On("FetchRecordings", mock.Anything, "u").
			Return(nil, domain.NewQuotaExhaustedError("zoom quota exhausted", 0, testNow.Add(time.Hour)))

		_, err := s.pruneRecordings(t.Context())

		assert.True(t, domain.IsQuotaExhausted(err))
		m.recordings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})
}

func TestScheduler_SyncTrackingFields(t *testing.T) {
	s, m := setupScheduler(Config{})
	m.syncer.On("SyncTrackingFields", mock.Anything).Return(&service.TrackingFieldSyncResult{
		Synced:        []string{"department"},
		Removed:       []string{"old_field"},
		ValuesRemoved: 2,
	}, nil)

	err := s.RunJob(t.Context(), JobTrackingFields)

	require.NoError(t, err)
	m.assertExpectations(t)
}

func TestScheduler_RunAll(t *testing.T) {
	s, m := setupScheduler(Config{ViewRecordings: false})
	m.meetings.On("ListByRemoteState", mock.Anything, models.RemoteStateExists).
		Return(nil, domain.NewInternalError("kv down"))
	m.recordings.On("List", mock.Anything).Return(nil, nil)
	m.syncer.On("SyncTrackingFields", mock.Anything).Return(&service.TrackingFieldSyncResult{}, nil)

	err := s.RunAll(t.Context())

	require.Error(t, err)
	assert.Contains(t, err.Error(), JobMeetings)
	m.assertExpectations(t)
}
