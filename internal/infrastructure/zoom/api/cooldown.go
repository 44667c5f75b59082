// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// ConfigKeyRetryAfter is the config store key holding the quota cooldown as unix seconds.
const ConfigKeyRetryAfter = "retry-after"

// CooldownStore persists the cooldown so other processes observe it.
type CooldownStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Cooldown is the process-wide instant before which no Zoom call should be made
// because the account quota is exhausted.
type Cooldown struct {
	mu    sync.RWMutex
	until time.Time
	store CooldownStore
}

// NewCooldown returns a cooldown persisted in store. A nil store keeps it in memory only.
func NewCooldown(store CooldownStore) *Cooldown {
	return &Cooldown{store: store}
}

// Set records the cooldown instant and persists it.
func (c *Cooldown) Set(ctx context.Context, until time.Time) error {
	c.mu.Lock()
	c.until = until
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.SetConfig(ctx, ConfigKeyRetryAfter, strconv.FormatInt(until.Unix(), 10))
}

// Until returns the cooldown instant, zero when none was recorded.
func (c *Cooldown) Until() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.until
}

// Active reports whether calls must still be skipped at now.
func (c *Cooldown) Active(now time.Time) bool {
	until := c.Until()
	return !until.IsZero() && now.Before(until)
}

// Load refreshes the cooldown from the store, keeping the later of both instants.
func (c *Cooldown) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	raw, err := c.store.GetConfig(ctx, ConfigKeyRetryAfter)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}

	stored := time.Unix(seconds, 0)
	c.mu.Lock()
	defer c.mu.Unlock()
	if stored.After(c.until) {
		c.until = stored
	}
	return nil
}
