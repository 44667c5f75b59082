// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	v := 30
	p := Ptr(v)
	v = 45

	assert.Equal(t, 30, *p)
	assert.NotSame(t, Ptr(true), Ptr(true))
}

func TestValue(t *testing.T) {
	var nilTime *time.Time
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "host@example.com", Value(Ptr("host@example.com")))
	assert.Equal(t, start, Value(&start))
	assert.True(t, Value(nilTime).IsZero())
	assert.False(t, Value[bool](nil))
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
	}{
		{name: "no values", values: nil, expected: ""},
		{name: "all empty", values: []string{"", ""}, expected: ""},
		{name: "first wins", values: []string{"https://zoom.us/j/1", "https://zoom.us/j/2"}, expected: "https://zoom.us/j/1"},
		{name: "skips empty", values: []string{"", "America/New_York"}, expected: "America/New_York"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Coalesce(tt.values...))
		})
	}

	assert.Equal(t, int64(85746065432), Coalesce(int64(0), 85746065432))
}
