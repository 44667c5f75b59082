// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// Common key prefixes
const (
	// Entity prefixes
	KeyPrefixMeeting       = "meeting"
	KeyPrefixRecording     = "recording"
	KeyPrefixTrackingField = "tracking-field"
	KeyPrefixConfig        = "config"

	// Index prefixes
	KeyPrefixIndex        = "index"
	KeyPrefixIndexMeeting = "meeting"
)

// KeyBuilder provides utilities for building consistent NATS KV keys
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an optional prefix
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
	}
}

// EntityKey builds a key for an entity (e.g., "recording/uid-123")
func (kb *KeyBuilder) EntityKey(entityType, uid string) string {
	return kb.applyPrefix(fmt.Sprintf("%s/%s", entityType, uid), false)
}

// EntityKeyEncoded builds an encoded key for an entity
func (kb *KeyBuilder) EntityKeyEncoded(entityType string, parts ...string) string {
	return kb.applyPrefix(strings.Join(append([]string{entityType}, parts...), "/"), true)
}

// IndexKey builds a key for an index (e.g., "index/meeting/meeting-uid/recording-uid")
func (kb *KeyBuilder) IndexKey(indexType, indexValue, entityUID string) string {
	return kb.applyPrefix(fmt.Sprintf("%s/%s/%s/%s", KeyPrefixIndex, indexType, indexValue, entityUID), false)
}

// IndexPrefix is the common prefix of every IndexKey for indexValue.
func (kb *KeyBuilder) IndexPrefix(indexType, indexValue string) string {
	return kb.applyPrefix(fmt.Sprintf("%s/%s/%s/", KeyPrefixIndex, indexType, indexValue), false)
}

// EntityPrefix is the common prefix of every EntityKey of entityType.
func (kb *KeyBuilder) EntityPrefix(entityType string) string {
	return kb.applyPrefix(entityType+"/", false)
}

func isIndexKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefixIndex+"/") || strings.Contains(key, "/"+KeyPrefixIndex+"/")
}

// applyPrefix adds the builder's prefix if one is set
func (kb *KeyBuilder) applyPrefix(key string, encode bool) string {
	fullKey := key
	if kb.prefix != "" {
		fullKey = fmt.Sprintf("%s/%s", kb.prefix, key)
	}

	if encode {
		encodedKey, err := kb.EncodeKey(fullKey)
		if err != nil {
			slog.Error("error encoding key", logging.ErrKey, err, "key", fullKey)
			return fullKey
		}
		return encodedKey
	}
	return fullKey
}

// EncodeKey encodes each '/' separated part of a key so that arbitrary
// labels become valid NATS KV tokens. Parts are joined with '.'.
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func (kb *KeyBuilder) EncodeKey(key string) (string, error) {
	trimmed := strings.TrimPrefix(key, "/")
	if trimmed == "" {
		return "", nats.ErrInvalidKey
	}

	var res []string
	for _, part := range strings.Split(trimmed, "/") {
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}
		res = append(res, base64.RawURLEncoding.EncodeToString([]byte(part)))
	}

	return strings.Join(res, "."), nil
}

// DecodeKey reverses EncodeKey. The decoded key carries a leading '/'.
func (kb *KeyBuilder) DecodeKey(key string) (string, error) {
	if key == "" {
		return "", nats.ErrInvalidKey
	}

	var res []string
	for _, part := range strings.Split(key, ".") {
		k, err := base64.RawURLEncoding.DecodeString(part)
		if err != nil {
			return "", err
		}
		res = append(res, string(k))
	}

	return "/" + strings.Join(res, "/"), nil
}
