// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

// NatsConfigStore is a flat string key/value store backed by a NATS KV bucket.
type NatsConfigStore struct {
	base *NatsBaseRepository[string]
	keys *KeyBuilder
}

var (
	_ domain.ConfigStore = (*NatsConfigStore)(nil)
	_ api.CooldownStore  = (*NatsConfigStore)(nil)
)

// NewNatsConfigStore creates a config store over kvStore.
func NewNatsConfigStore(kvStore INatsKeyValue) *NatsConfigStore {
	return &NatsConfigStore{
		base: NewNatsBaseRepository[string](kvStore, "config"),
		keys: NewKeyBuilder(""),
	}
}

// IsReady reports whether the underlying bucket is available.
func (s *NatsConfigStore) IsReady() bool {
	return s.base.IsReady()
}

func (s *NatsConfigStore) key(name string) string {
	return s.keys.EntityKeyEncoded(KeyPrefixConfig, name)
}

// GetConfig returns the value of key, or "" when it is unset.
func (s *NatsConfigStore) GetConfig(ctx context.Context, key string) (string, error) {
	value, err := s.base.Get(ctx, s.key(key))
	if err != nil {
		if domain.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return *value, nil
}

// SetConfig stores value under key. An empty value removes the key.
func (s *NatsConfigStore) SetConfig(ctx context.Context, key, value string) error {
	if key == "" {
		return domain.NewValidationError("config key is required")
	}
	if value == "" {
		err := s.base.Delete(ctx, s.key(key))
		if err != nil && !domain.IsNotFound(err) {
			return err
		}
		return nil
	}
	return s.base.Put(ctx, s.key(key), &value)
}

// ListConfigKeys returns the names of all set keys in lexical order.
func (s *NatsConfigStore) ListConfigKeys(ctx context.Context) ([]string, error) {
	encoded, err := s.base.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	prefix := "/" + KeyPrefixConfig + "/"
	var names []string
	for _, k := range encoded {
		decoded, err := s.keys.DecodeKey(k)
		if err != nil {
			continue
		}
		if name, ok := strings.CutPrefix(decoded, prefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
