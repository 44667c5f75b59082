// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// Recording file types and recording types reported by Zoom.
const (
	FileTypeMP4 = "MP4"
	FileTypeM4A = "M4A"

	RecordingTypeAudioOnly = "audio_only"
)

// RecordingFile is one file of a cloud recording.
type RecordingFile struct {
	ID             string `json:"id"`
	MeetingID      string `json:"meeting_id"`
	RecordingStart string `json:"recording_start"`
	RecordingEnd   string `json:"recording_end"`
	FileType       string `json:"file_type"`
	FileSize       int64  `json:"file_size"`
	PlayURL        string `json:"play_url"`
	DownloadURL    string `json:"download_url"`
	Status         string `json:"status"`
	RecordingType  string `json:"recording_type"`
}

// RecordingsResponse is the cloud recording listing of a meeting instance.
type RecordingsResponse struct {
	UUID           string          `json:"uuid"`
	ID             int64           `json:"id"`
	Topic          string          `json:"topic"`
	StartTime      string          `json:"start_time"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// RecordingSettings holds the shared settings of a meeting's recordings.
type RecordingSettings struct {
	ShareRecording string `json:"share_recording"`
	Password       string `json:"password"`
	ViewerDownload bool   `json:"viewer_download"`
}

// EncodeUUID double encodes meeting instance UUIDs that start with '/' or
// contain "//", as Zoom requires; other ids pass through unchanged.
func EncodeUUID(uuid string) string {
	if strings.HasPrefix(uuid, "/") || strings.Contains(uuid, "//") {
		return url.PathEscape(url.PathEscape(uuid))
	}
	return uuid
}

// ListRecordings returns the cloud recordings of a meeting id or instance UUID
func (c *Client) ListRecordings(ctx context.Context, meetingIDOrUUID string) (*RecordingsResponse, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_recordings"))

	var resp RecordingsResponse
	path := "/meetings/" + EncodeUUID(meetingIDOrUUID) + "/recordings"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecordingSettings returns the recording settings, including the shared passcode
func (c *Client) GetRecordingSettings(ctx context.Context, meetingIDOrUUID string) (*RecordingSettings, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_recording_settings"))

	var resp RecordingSettings
	path := "/meetings/" + EncodeUUID(meetingIDOrUUID) + "/recordings/settings"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
