// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package platforms builds the Zoom integration of the sync daemon.
package platforms

import (
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
)

// ZoomConfig holds Zoom-specific configuration
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Region selects the API host when APIURL is empty.
	Region string
	APIURL string

	DefaultAutoRecording string
	// TrackingFields is the comma separated list of tracking field labels to sync.
	TrackingFields string
	Licenses       zoom.LicenseConfig
}

// IsConfigured returns true if all required Zoom credentials are provided
func (z ZoomConfig) IsConfigured() bool {
	return z.AccountID != "" && z.ClientID != "" && z.ClientSecret != ""
}

// BaseURL returns the API base URL, honoring an explicit override.
func (z ZoomConfig) BaseURL() string {
	if z.APIURL != "" {
		return z.APIURL
	}
	return api.RegionBaseURL(z.Region)
}

// ToAPIConfig converts the ZoomConfig to an api.Config
func (z ZoomConfig) ToAPIConfig() api.Config {
	return api.Config{
		AccountID:    z.AccountID,
		ClientID:     z.ClientID,
		ClientSecret: z.ClientSecret,
		BaseURL:      z.BaseURL(),
	}
}

// ToGatewayConfig converts the ZoomConfig to the gateway defaults.
func (z ZoomConfig) ToGatewayConfig() zoom.GatewayConfig {
	return zoom.GatewayConfig{
		DefaultAutoRecording: z.DefaultAutoRecording,
		TrackingFields:       models.ParseTrackingFieldList(z.TrackingFields),
		Licenses:             z.Licenses,
	}
}

// SetupZoom builds the Zoom client and gateway. The client shares cooldown so a
// quota exhaustion seen by one process is observed by every job.
func SetupZoom(config ZoomConfig, cooldown *api.Cooldown, directory zoom.UserDirectory) *zoom.Gateway {
	if config.IsConfigured() {
		slog.Info("Zoom integration configured",
			"account_id", config.AccountID,
			"client_id", config.ClientID,
			"base_url", config.BaseURL())
	} else {
		// Calls fail with a credential error until the variables are set.
		slog.Warn("Zoom integration not configured - missing required environment variables",
			"has_account_id", config.AccountID != "",
			"has_client_id", config.ClientID != "",
			"has_client_secret", config.ClientSecret != "")
	}

	client := api.NewClient(config.ToAPIConfig(), api.WithCooldown(cooldown))

	var opts []zoom.GatewayOption
	if directory != nil {
		opts = append(opts, zoom.WithUserDirectory(directory))
	}
	return zoom.NewGateway(client, config.ToGatewayConfig(), opts...)
}
