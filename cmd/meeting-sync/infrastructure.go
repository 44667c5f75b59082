// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

const (
	natsConnectTimeout = 10 * time.Second
	natsDrainTimeout   = 30 * time.Second
	natsMaxReconnects  = -1
)

// repositories are the NATS KV backed stores of the daemon.
type repositories struct {
	Meetings       *store.NatsMeetingRepository
	Recordings     *store.NatsRecordingRepository
	TrackingFields *store.NatsTrackingFieldRepository
	Config         *store.NatsConfigStore
}

// setupNATS connects to the NATS server.
func setupNATS(ctx context.Context, natsURL string) (*nats.Conn, error) {
	slog.InfoContext(ctx, "connecting to NATS", "url", natsURL)

	conn, err := nats.Connect(
		natsURL,
		nats.Name("lfx-v2-meeting-sync"),
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(natsDrainTimeout),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				slog.With(logging.ErrKey, err, "subject", sub.Subject).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.With(logging.ErrKey, err).Warn("disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("reconnected to NATS", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
	}
	return conn, nil
}

// getKeyValueStores creates the KV buckets when missing and returns the repositories over them.
func getKeyValueStores(ctx context.Context, conn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	buckets := make(map[string]jetstream.KeyValue, 4)
	for _, bucket := range []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameRecordings,
		store.KVStoreNameTrackingFields,
		store.KVStoreNameConfig,
	} {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
		if err != nil {
			return nil, fmt.Errorf("failed to open key-value bucket %s: %w", bucket, err)
		}
		buckets[bucket] = kv
	}

	return &repositories{
		Meetings:       store.NewNatsMeetingRepository(buckets[store.KVStoreNameMeetings]),
		Recordings:     store.NewNatsRecordingRepository(buckets[store.KVStoreNameRecordings]),
		TrackingFields: store.NewNatsTrackingFieldRepository(buckets[store.KVStoreNameTrackingFields]),
		Config:         store.NewNatsConfigStore(buckets[store.KVStoreNameConfig]),
	}, nil
}
