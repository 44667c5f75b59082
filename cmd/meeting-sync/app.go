// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/cmd/meeting-sync/platforms"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/idmapper"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/instrumentation"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/service/reconcile"
)

// app is the composition root shared by the run and sync commands.
type app struct {
	sdk       *instrumentation.SDK
	natsConn  *nats.Conn
	service   *service.MeetingSyncService
	scheduler *reconcile.Scheduler
}

// newApp wires telemetry, NATS, the Zoom gateway, the service and the scheduler.
// Telemetry comes first so the Zoom client picks up the global providers.
func newApp(ctx context.Context, env environment) (*app, error) {
	a := &app{}

	sdk, err := instrumentation.SetupOTelSDK(ctx)
	if err != nil {
		return nil, err
	}
	a.sdk = sdk

	a.natsConn, err = setupNATS(ctx, env.NATSURL)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	repos, err := getKeyValueStores(ctx, a.natsConn)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	identity, err := idmapper.NewFieldMapper(env.IdentifierField)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	messageBuilder := messaging.NewMessageBuilder(a.natsConn)

	var directory zoom.UserDirectory = idmapper.NewNoOpDirectory()
	if env.LicensesInstanceUsersOnly {
		directory = messageBuilder
	}

	cooldown := api.NewCooldown(repos.Config)
	if err := cooldown.Load(ctx); err != nil {
		slog.WarnContext(ctx, "failed to load quota cooldown", logging.ErrKey, err)
	}

	gateway := platforms.SetupZoom(platforms.ZoomConfig{
		AccountID:            env.Zoom.AccountID,
		ClientID:             env.Zoom.ClientID,
		ClientSecret:         env.Zoom.ClientSecret,
		Region:               env.Zoom.Region,
		APIURL:               env.Zoom.APIURL,
		DefaultAutoRecording: env.DefaultAutoRecording,
		TrackingFields:       env.DefaultTrackingFields,
		Licenses: zoom.LicenseConfig{
			Recycle:           env.RecycleLicenses,
			MaxLicenses:       env.LicensesNumber,
			InstanceUsersOnly: env.LicensesInstanceUsersOnly,
		},
	}, cooldown, directory)

	a.service = service.NewMeetingSyncService(
		gateway,
		service.Repositories{
			Meetings:       repos.Meetings,
			Recordings:     repos.Recordings,
			TrackingFields: repos.TrackingFields,
			Config:         repos.Config,
		},
		service.Collaborators{
			Calendar: messageBuilder,
			Grading:  messageBuilder,
			Identity: identity,
		},
		service.ServiceConfig{
			LeadTime:       env.LeadTime,
			ViewRecordings: env.ViewRecordings,
			RecycleOnJoin:  env.RecycleOnJoin,
			TrackingFields: models.ParseTrackingFieldList(env.DefaultTrackingFields),
		},
	)

	a.scheduler = reconcile.NewScheduler(
		reconcile.Dependencies{
			Gateway:        gateway,
			Meetings:       repos.Meetings,
			Recordings:     repos.Recordings,
			Calendar:       messageBuilder,
			TrackingFields: a.service,
			Cooldown:       cooldown,
			Metrics:        instrumentation.DefaultJobMetrics(),
		},
		reconcile.Config{
			Interval:       env.SyncInterval,
			Workers:        env.SyncWorkers,
			ViewRecordings: env.ViewRecordings,
		},
	)

	return a, nil
}

// ready reports whether NATS is connected and the service is fully wired.
func (a *app) ready() bool {
	return a.natsConn != nil && a.natsConn.IsConnected() && a.service.ServiceReady()
}

// close drains NATS and flushes telemetry.
func (a *app) close(ctx context.Context) {
	if a.natsConn != nil && !a.natsConn.IsClosed() {
		if err := a.natsConn.Drain(); err != nil {
			slog.ErrorContext(ctx, "error draining NATS connection", logging.ErrKey, err)
		}
	}
	if a.sdk != nil {
		if err := a.sdk.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "error shutting down OpenTelemetry", logging.ErrKey, err)
		}
	}
}
