// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	ctx := AppendCtx(context.TODO(), slog.String("key1", "value1"))

	attrs, ok := ctx.Value(slogFields).([]slog.Attr)
	require.True(t, ok, "expected slog attributes in context")
	require.Len(t, attrs, 1)
	assert.Equal(t, "key1", attrs[0].Key)
	assert.Equal(t, "value1", attrs[0].Value.String())
}

func TestAppendCtx_SiblingsAreIndependent(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("job", "meeting_sync"))
	parent = AppendCtx(parent, slog.String("run", "1"))

	a := AppendCtx(parent, slog.String("meeting_id", "a"))
	b := AppendCtx(parent, slog.String("meeting_id", "b"))

	attrsA := a.Value(slogFields).([]slog.Attr)
	attrsB := b.Value(slogFields).([]slog.Attr)
	require.Len(t, attrsA, 3)
	require.Len(t, attrsB, 3)
	assert.Equal(t, "a", attrsA[2].Value.String())
	assert.Equal(t, "b", attrsB[2].Value.String())
}

func TestNewHandler_IncludesContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := AppendCtx(context.Background(), slog.String("zoom_operation", "get_meeting"))
	logger.With("component", "test").InfoContext(ctx, "hello", "meeting_id", "123")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "get_meeting", record["zoom_operation"])
	assert.Equal(t, "123", record["meeting_id"])
	assert.Equal(t, "test", record["component"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelDebug},
		{"verbose", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitStructureLogConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_ADD_SOURCE", "1")

	handler := InitStructureLogConfig()
	require.NotNil(t, handler)
	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
}

func TestPriorityCritical(t *testing.T) {
	attr := PriorityCritical()
	assert.Equal(t, "priority", attr.Key)
	assert.Equal(t, "critical", attr.Value.String())
}
