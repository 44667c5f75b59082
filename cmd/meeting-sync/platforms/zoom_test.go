// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package platforms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

func TestZoomConfig_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		config   ZoomConfig
		expected string
	}{
		{name: "default region", config: ZoomConfig{}, expected: api.BaseURL},
		{name: "eu region", config: ZoomConfig{Region: "EU"}, expected: api.EUBaseURL},
		{name: "explicit url wins", config: ZoomConfig{Region: "eu", APIURL: "http://localhost:9000/v2"}, expected: "http://localhost:9000/v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.BaseURL())
			assert.Equal(t, tt.expected, tt.config.ToAPIConfig().BaseURL)
		})
	}
}

func TestZoomConfig_IsConfigured(t *testing.T) {
	assert.False(t, ZoomConfig{AccountID: "acc", ClientID: "id"}.IsConfigured())
	assert.True(t, ZoomConfig{AccountID: "acc", ClientID: "id", ClientSecret: "secret"}.IsConfigured())
}

func TestZoomConfig_ToGatewayConfig(t *testing.T) {
	config := ZoomConfig{
		DefaultAutoRecording: "cloud",
		TrackingFields:       "Department, Cost Center",
	}

	gw := config.ToGatewayConfig()

	assert.Equal(t, "cloud", gw.DefaultAutoRecording)
	assert.Equal(t, map[string]string{"department": "Department", "cost_center": "Cost Center"}, gw.TrackingFields)
}

func TestSetupZoom(t *testing.T) {
	gateway := SetupZoom(ZoomConfig{}, api.NewCooldown(nil), nil)
	assert.NotNil(t, gateway)
}
