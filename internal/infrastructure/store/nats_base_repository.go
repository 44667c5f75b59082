// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// NATS Key-Value store bucket names
const (
	KVStoreNameMeetings       = "meeting-sync-meetings"
	KVStoreNameRecordings     = "meeting-sync-recordings"
	KVStoreNameTrackingFields = "meeting-sync-tracking-fields"
	KVStoreNameConfig         = "meeting-sync-config"
)

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/store"

// INatsKeyValue is the subset of jetstream.KeyValue the repositories use.
type INatsKeyValue interface {
	ListKeys(context.Context, ...jetstream.WatchOpt) (jetstream.KeyLister, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(context.Context, string, []byte) (uint64, error)
	Update(context.Context, string, []byte, uint64) (uint64, error)
	Delete(context.Context, string, ...jetstream.KVDeleteOpt) error
}

// NatsBaseRepository provides common NATS KV operations that can be reused across all repositories
type NatsBaseRepository[T any] struct {
	kvStore    INatsKeyValue
	entityName string // Used in error messages (e.g., "meeting", "recording")
}

// NewNatsBaseRepository creates a new base repository for NATS KV operations
func NewNatsBaseRepository[T any](kvStore INatsKeyValue, entityName string) *NatsBaseRepository[T] {
	return &NatsBaseRepository[T]{
		kvStore:    kvStore,
		entityName: entityName,
	}
}

// IsReady checks if the repository is ready for use
func (r *NatsBaseRepository[T]) IsReady() bool {
	return r.kvStore != nil
}

func (r *NatsBaseRepository[T]) startSpan(ctx context.Context, operation, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "nats"),
		attribute.String("db.operation", operation),
		attribute.String("db.nats.entity", r.entityName),
	)
	if key != "" {
		attrs = append(attrs, attribute.String("db.nats.key", key))
	}
	return otel.Tracer(tracerName).Start(ctx, "nats.kv."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// fail records err on the span and returns it.
func fail(span trace.Span, err error, status string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}

func (r *NatsBaseRepository[T]) unavailable() error {
	return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
}

// mapWriteError converts a KV write error into a domain error.
func (r *NatsBaseRepository[T]) mapWriteError(ctx context.Context, span trace.Span, err error, operation, key string) error {
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return fail(span, domain.NewNotFoundError(fmt.Sprintf("%s not found", r.entityName), err), "not found")
	}
	if strings.Contains(err.Error(), "wrong last sequence") {
		return fail(span, domain.NewConflictError(fmt.Sprintf("%s has been modified", r.entityName), err), "conflict")
	}
	slog.ErrorContext(ctx, fmt.Sprintf("error during %s of %s in NATS KV", operation, r.entityName),
		logging.ErrKey, err, "key", key)
	err = domain.NewInternalError(fmt.Sprintf("failed to %s %s in store", operation, r.entityName), err)
	return fail(span, err, err.Error())
}

// GetRaw retrieves a raw entry from NATS KV store
func (r *NatsBaseRepository[T]) GetRaw(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	ctx, span := r.startSpan(ctx, "get", key)
	defer span.End()

	if !r.IsReady() {
		return nil, fail(span, r.unavailable(), "unavailable")
	}

	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fail(span, domain.NewNotFoundError(
				fmt.Sprintf("%s with key '%s' not found", r.entityName, key), err), "not found")
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error getting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		err = domain.NewInternalError(fmt.Sprintf("failed to retrieve %s from store", r.entityName), err)
		return nil, fail(span, err, err.Error())
	}

	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// Get retrieves and unmarshals an entity from NATS KV store
func (r *NatsBaseRepository[T]) Get(ctx context.Context, key string) (*T, error) {
	entity, _, err := r.GetWithRevision(ctx, key)
	return entity, err
}

// GetWithRevision retrieves an entity with its revision from NATS KV store
func (r *NatsBaseRepository[T]) GetWithRevision(ctx context.Context, key string) (*T, uint64, error) {
	entry, err := r.GetRaw(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	var entity T
	if err := json.Unmarshal(entry.Value(), &entity); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error unmarshaling %s", r.entityName), logging.ErrKey, err, "key", key)
		return nil, 0, domain.NewInternalError(fmt.Sprintf("failed to unmarshal %s data", r.entityName), err)
	}

	return &entity, entry.Revision(), nil
}

// Exists checks if an entity exists in the store
func (r *NatsBaseRepository[T]) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.GetRaw(ctx, key)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put writes an entity regardless of the current revision
func (r *NatsBaseRepository[T]) Put(ctx context.Context, key string, entity *T) error {
	ctx, span := r.startSpan(ctx, "put", key)
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "unavailable")
	}

	data, err := json.Marshal(entity)
	if err != nil {
		err = domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err)
		return fail(span, err, err.Error())
	}

	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		return r.mapWriteError(ctx, span, err, "put", key)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update updates an existing entity in the store with optimistic concurrency control
func (r *NatsBaseRepository[T]) Update(ctx context.Context, key string, entity *T, revision uint64) error {
	ctx, span := r.startSpan(ctx, "update", key, attribute.Int64("db.nats.revision", int64(revision)))
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "unavailable")
	}

	data, err := json.Marshal(entity)
	if err != nil {
		err = domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err)
		return fail(span, err, err.Error())
	}

	if _, err := r.kvStore.Update(ctx, key, data, revision); err != nil {
		return r.mapWriteError(ctx, span, err, "update", key)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a key without revision checking
func (r *NatsBaseRepository[T]) Delete(ctx context.Context, key string) error {
	ctx, span := r.startSpan(ctx, "delete", key)
	defer span.End()

	if !r.IsReady() {
		return fail(span, r.unavailable(), "unavailable")
	}

	if err := r.kvStore.Delete(ctx, key); err != nil {
		return r.mapWriteError(ctx, span, err, "delete", key)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListKeys lists all keys in the bucket. An empty bucket yields no keys.
func (r *NatsBaseRepository[T]) ListKeys(ctx context.Context) ([]string, error) {
	ctx, span := r.startSpan(ctx, "list_keys", "")
	defer span.End()

	if !r.IsReady() {
		return nil, fail(span, r.unavailable(), "unavailable")
	}

	lister, err := r.kvStore.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			span.SetStatus(codes.Ok, "")
			return nil, nil
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error listing %s keys from NATS KV", r.entityName), logging.ErrKey, err)
		err = domain.NewInternalError(fmt.Sprintf("failed to list %s keys from store", r.entityName), err)
		return nil, fail(span, err, err.Error())
	}

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	span.SetAttributes(attribute.Int("db.nats.keys_count", len(keys)))
	span.SetStatus(codes.Ok, "")
	return keys, nil
}

// ListEntities lists the entities whose key starts with prefix. Index keys are skipped.
func (r *NatsBaseRepository[T]) ListEntities(ctx context.Context, prefix string) ([]*T, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var entities []*T
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) || isIndexKey(key) {
			continue
		}
		entity, err := r.Get(ctx, key)
		if err != nil {
			// Keys can vanish between listing and reading.
			slog.WarnContext(ctx, fmt.Sprintf("failed to get %s, skipping", r.entityName),
				"key", key, logging.ErrKey, err)
			continue
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// ListEntitiesEncoded lists the entities of a bucket with encoded keys whose
// decoded key starts with prefix.
func (r *NatsBaseRepository[T]) ListEntitiesEncoded(ctx context.Context, prefix string, kb *KeyBuilder) ([]*T, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var entities []*T
	for _, encodedKey := range keys {
		decodedKey, err := kb.DecodeKey(encodedKey)
		if err != nil {
			slog.WarnContext(ctx, "failed to decode key, skipping",
				"encoded_key", encodedKey, logging.ErrKey, err)
			continue
		}
		if !strings.HasPrefix(decodedKey, prefix) {
			continue
		}

		entity, err := r.Get(ctx, encodedKey)
		if err != nil {
			slog.WarnContext(ctx, fmt.Sprintf("failed to get %s, skipping", r.entityName),
				"key", encodedKey, logging.ErrKey, err)
			continue
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// ListIndex returns the entity uids referenced by the index keys under indexPrefix.
func (r *NatsBaseRepository[T]) ListIndex(ctx context.Context, indexPrefix string) ([]string, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var uids []string
	for _, key := range keys {
		if uid, ok := strings.CutPrefix(key, indexPrefix); ok && uid != "" {
			uids = append(uids, uid)
		}
	}
	return uids, nil
}

// PutIndex creates an index entry in the store (stores empty value, key is used for indexing)
func (r *NatsBaseRepository[T]) PutIndex(ctx context.Context, indexKey string) error {
	if !r.IsReady() {
		return r.unavailable()
	}

	if _, err := r.kvStore.Put(ctx, indexKey, []byte{}); err != nil {
		slog.ErrorContext(ctx, "error creating index", logging.ErrKey, err, "index_key", indexKey)
		return domain.NewInternalError("failed to create index", err)
	}

	return nil
}

// DeleteIndex removes an index entry from the store. A missing index is not an error.
func (r *NatsBaseRepository[T]) DeleteIndex(ctx context.Context, indexKey string) error {
	if !r.IsReady() {
		return r.unavailable()
	}

	if err := r.kvStore.Delete(ctx, indexKey); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		slog.WarnContext(ctx, "error deleting index", logging.ErrKey, err, "index_key", indexKey)
		return domain.NewInternalError("failed to delete index", err)
	}

	return nil
}
