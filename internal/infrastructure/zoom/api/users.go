// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// User type constants for Zoom API
const (
	UserTypeBasic    = 1
	UserTypeLicensed = 2
	UserTypeOnPrem   = 3
)

// User status constants for Zoom API
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// ZoomUser represents a user in the Zoom account
type ZoomUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Type          int    `json:"type"`
	Status        string `json:"status"`
	LastLoginTime string `json:"last_login_time,omitempty"`
}

// UserSettings holds the subset of user settings the sync core reads.
type UserSettings struct {
	Recording struct {
		AutoRecording string `json:"auto_recording"`
	} `json:"recording"`
	Feature struct {
		MeetingCapacity int  `json:"meeting_capacity"`
		Webinar         bool `json:"webinar"`
	} `json:"feature"`
}

// MeetingSecurity is the meeting_security option of the user settings.
type MeetingSecurity struct {
	EndToEndEncryptedMeetings  bool                `json:"end_to_end_encrypted_meetings"`
	EncryptionType             string              `json:"encryption_type,omitempty"`
	WaitingRoom                bool                `json:"waiting_room"`
	MeetingPasswordRequirement PasswordRequirement `json:"meeting_password_requirement"`
}

// PasswordRequirement describes the account's meeting passcode policy.
type PasswordRequirement struct {
	Length                      int  `json:"length"`
	HaveLetter                  bool `json:"have_letter"`
	HaveNumber                  bool `json:"have_number"`
	HaveSpecialCharacter        bool `json:"have_special_character"`
	OnlyAllowNumeric            bool `json:"only_allow_numeric"`
	HaveUpperAndLowerCharacters bool `json:"have_upper_and_lower_characters"`
	ConsecutiveCharactersLength int  `json:"consecutive_characters_length"`
	WeakEnhanceDetection        bool `json:"weak_enhance_detection"`
}

// DefaultPasswordRequirement applies when the account does not report one.
var DefaultPasswordRequirement = PasswordRequirement{
	Length:           6,
	HaveNumber:       true,
	OnlyAllowNumeric: true,
}

// Scheduler is a user allowed to schedule meetings on behalf of another.
type Scheduler struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ListUsers retrieves every user of the Zoom account
func (c *Client) ListUsers(ctx context.Context) ([]ZoomUser, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_users"))

	users, err := collect[ZoomUser](ctx, c, "/users", nil, "users")
	if err != nil {
		slog.ErrorContext(ctx, "failed to list Zoom users", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "successfully retrieved Zoom users", "user_count", len(users))
	return users, nil
}

// GetUser retrieves a user by Zoom id or email
func (c *Client) GetUser(ctx context.Context, identifier string) (*ZoomUser, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_user"))

	var user ZoomUser
	if err := c.doRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(identifier), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserSettings retrieves a user's settings
func (c *Client) GetUserSettings(ctx context.Context, userID string) (*UserSettings, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_user_settings"))

	var settings UserSettings
	path := fmt.Sprintf("/users/%s/settings", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetUserSecuritySettings retrieves the meeting security options of a user.
// Free accounts cannot read them; callers fall back to DefaultPasswordRequirement.
func (c *Client) GetUserSecuritySettings(ctx context.Context, userID string) (*MeetingSecurity, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_user_security_settings"))

	var resp struct {
		MeetingSecurity *MeetingSecurity `json:"meeting_security"`
	}
	path := fmt.Sprintf("/users/%s/settings", url.PathEscape(userID))
	query := url.Values{"option": []string{"meeting_security"}}
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	security := resp.MeetingSecurity
	if security == nil {
		security = &MeetingSecurity{}
	}
	if security.MeetingPasswordRequirement == (PasswordRequirement{}) {
		security.MeetingPasswordRequirement = DefaultPasswordRequirement
	}
	return security, nil
}

// ListSchedulers lists the users that can schedule meetings for userID
func (c *Client) ListSchedulers(ctx context.Context, userID string) ([]Scheduler, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_schedulers"))

	var resp struct {
		Schedulers []Scheduler `json:"schedulers"`
	}
	path := fmt.Sprintf("/users/%s/schedulers", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Schedulers, nil
}

// UpdateUserType changes the license tier of a user
func (c *Client) UpdateUserType(ctx context.Context, userID string, userType int) error {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "update_user_type"))

	body := struct {
		Type int `json:"type"`
	}{Type: userType}
	if err := c.doRequest(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID), nil, body, nil); err != nil {
		slog.ErrorContext(ctx, "failed to update Zoom user type",
			"zoom_user_id", userID,
			"user_type", userType,
			logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "updated Zoom user type", "zoom_user_id", userID, "user_type", userType)
	return nil
}
