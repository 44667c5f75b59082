// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// LicenseConfig controls paid license recycling.
type LicenseConfig struct {
	Recycle bool
	// MaxLicenses is the number of paid seats the account owns.
	MaxLicenses int
	// InstanceUsersOnly restricts counting and demotion to users the local system knows.
	InstanceUsersOnly bool
}

// UserDirectory answers whether a Zoom account email belongs to a local user.
type UserDirectory interface {
	HasUser(ctx context.Context, email string) (bool, error)
}

// ProvideLicense promotes a basic Zoom user to a paid seat when recycling is
// enabled, demoting the least recently active paid user first if every seat
// is taken. Concurrent calls may both demote; Zoom arbitrates the final state.
func (g *Gateway) ProvideLicense(ctx context.Context, zoomUserID string) error {
	if !g.config.Licenses.Recycle {
		return nil
	}
	ctx = logging.AppendCtx(ctx, slog.String("zoom_user_id", zoomUserID))

	user, err := g.client.GetUser(ctx, zoomUserID)
	if err != nil {
		return err
	}
	if user.Type != api.UserTypeBasic {
		return nil
	}

	paid, err := g.countedPaidUsers(ctx)
	if err != nil {
		return err
	}

	if len(paid) >= g.config.Licenses.MaxLicenses {
		if victim := leastRecentlyActive(paid); victim != "" {
			if err := g.client.UpdateUserType(ctx, victim, api.UserTypeBasic); err != nil {
				slog.ErrorContext(ctx, "failed to release paid license", logging.ErrKey, err, "released_user_id", victim)
				return err
			}
			slog.InfoContext(ctx, "released paid license", "released_user_id", victim, "paid_users", len(paid))
		}
	}

	if err := g.client.UpdateUserType(ctx, zoomUserID, api.UserTypeLicensed); err != nil {
		slog.ErrorContext(ctx, "failed to assign paid license", logging.ErrKey, err)
		return err
	}
	slog.InfoContext(ctx, "assigned paid license")
	return nil
}

// countedPaidUsers lists the paid users that count against the license limit.
func (g *Gateway) countedPaidUsers(ctx context.Context) ([]api.ZoomUser, error) {
	users, err := g.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var paid []api.ZoomUser
	for _, u := range users {
		if u.Type == api.UserTypeBasic {
			continue
		}
		if g.config.Licenses.InstanceUsersOnly && g.directory != nil {
			known, err := g.directory.HasUser(ctx, u.Email)
			if err != nil {
				return nil, err
			}
			if !known {
				continue
			}
		}
		paid = append(paid, u)
	}
	return paid, nil
}

// leastRecentlyActive returns the id of the user with the oldest last login.
// Users that never logged in are not candidates.
func leastRecentlyActive(users []api.ZoomUser) string {
	var (
		id     string
		oldest time.Time
	)
	for _, u := range users {
		if u.LastLoginTime == "" {
			continue
		}
		login, err := time.Parse(time.RFC3339, u.LastLoginTime)
		if err != nil {
			continue
		}
		if id == "" || login.Before(oldest) {
			id, oldest = u.ID, login
		}
	}
	return id
}
