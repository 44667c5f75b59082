// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validNatsKey matches the characters NATS allows in a KV key.
var validNatsKey = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

func TestKeyBuilder_EntityKey(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		entityType string
		uid        string
		want       string
	}{
		{
			name:       "meeting key",
			entityType: KeyPrefixMeeting,
			uid:        "def-456",
			want:       "meeting/def-456",
		},
		{
			name:       "recording key",
			entityType: KeyPrefixRecording,
			uid:        "abc-123",
			want:       "recording/abc-123",
		},
		{
			name:       "prefixed key",
			prefix:     "tenant",
			entityType: KeyPrefixMeeting,
			uid:        "m1",
			want:       "tenant/meeting/m1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewKeyBuilder(tt.prefix).EntityKey(tt.entityType, tt.uid))
		})
	}
}

func TestKeyBuilder_IndexKey(t *testing.T) {
	kb := NewKeyBuilder("")

	key := kb.IndexKey(KeyPrefixIndexMeeting, "meeting-1", "recording-9")

	assert.Equal(t, "index/meeting/meeting-1/recording-9", key)
	assert.Equal(t, "index/meeting/meeting-1/", kb.IndexPrefix(KeyPrefixIndexMeeting, "meeting-1"))
	assert.True(t, isIndexKey(key))
	assert.False(t, isIndexKey(kb.EntityKey(KeyPrefixRecording, "recording-9")))
}

func TestKeyBuilder_EntityKeyEncoded(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name  string
		parts []string
	}{
		{name: "tracking field", parts: []string{"meeting-1", "cost_center"}},
		{name: "label with symbols", parts: []string{"meeting-1", "dépt & co?"}},
		{name: "config key", parts: []string{"tf_department_recommended_values"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := kb.EntityKeyEncoded(KeyPrefixTrackingField, tt.parts...)
			assert.Regexp(t, validNatsKey, encoded)

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			want := "/" + KeyPrefixTrackingField
			for _, p := range tt.parts {
				want += "/" + p
			}
			assert.Equal(t, want, decoded)
		})
	}
}

func TestKeyBuilder_EncodeKey(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "simple key", key: "test/key"},
		{name: "leading slash", key: "/test/key"},
		{name: "key with email", key: "config/user@example.com"},
		{name: "bytes that base64 into + and /", key: "config/\xfb\xff"},
		{name: "empty key", key: "", wantErr: true},
		{name: "only a slash", key: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := kb.EncodeKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Regexp(t, validNatsKey, encoded)

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			expected := tt.key
			if expected[0] != '/' {
				expected = "/" + expected
			}
			assert.Equal(t, expected, decoded)
		})
	}
}

func TestKeyBuilder_DecodeKey(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name     string
		key      string
		expected string
		wantErr  bool
	}{
		{
			name:     "decode encoded key",
			key:      "dGVzdA.a2V5",
			expected: "/test/key",
		},
		{
			name:    "invalid base64",
			key:     "not-valid-base64!@#",
			wantErr: true,
		},
		{
			name:    "empty",
			key:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := kb.DecodeKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decoded)
		})
	}
}
