// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// TrackingField is an account-level tracking field definition.
type TrackingField struct {
	ID                string   `json:"id"`
	Field             string   `json:"field"`
	Required          bool     `json:"required"`
	Visible           bool     `json:"visible"`
	RecommendedValues []string `json:"recommended_values"`
}

// ListTrackingFields returns the tracking fields configured on the account
func (c *Client) ListTrackingFields(ctx context.Context) ([]TrackingField, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_tracking_fields"))

	var resp struct {
		TotalRecords   int             `json:"total_records"`
		TrackingFields []TrackingField `json:"tracking_fields"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/tracking_fields", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.TrackingFields, nil
}
