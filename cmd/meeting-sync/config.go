// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/pkg/constants"
)

const (
	defaultPort         = "8080"
	defaultNATSURL      = "nats://localhost:4222"
	defaultSyncInterval = time.Hour
	defaultSyncWorkers  = 4
)

// environment is the resolved configuration of the sync daemon.
type environment struct {
	Port    string
	NATSURL string

	Zoom zoomEnvironment

	SyncInterval time.Duration
	SyncWorkers  int

	RecycleLicenses           bool
	LicensesNumber            int
	LicensesInstanceUsersOnly bool
	RecycleOnJoin             bool

	DefaultAutoRecording  string
	DefaultTrackingFields string
	ViewRecordings        bool
	IdentifierField       string
	LeadTime              time.Duration
}

type zoomEnvironment struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	Region       string
	APIURL       string
}

// fileConfig is the optional TOML configuration file. Environment variables win over it.
type fileConfig struct {
	Port    string `toml:"port"`
	NATSURL string `toml:"nats_url"`

	Zoom struct {
		AccountID    string `toml:"account_id"`
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		Region       string `toml:"region"`
		APIURL       string `toml:"api_url"`
	} `toml:"zoom"`

	Sync struct {
		Interval string `toml:"interval"`
		Workers  int    `toml:"workers"`
	} `toml:"sync"`

	Licenses struct {
		Recycle           bool `toml:"recycle"`
		Number            int  `toml:"number"`
		InstanceUsersOnly bool `toml:"instance_users_only"`
		RecycleOnJoin     bool `toml:"recycle_on_join"`
	} `toml:"licenses"`

	DefaultAutoRecording  string `toml:"default_auto_recording"`
	DefaultTrackingFields string `toml:"default_tracking_fields"`
	ViewRecordings        bool   `toml:"view_recordings"`
	IdentifierField       string `toml:"api_identifier_field"`
	FirstAbleToJoin       int    `toml:"first_able_to_join_minutes"`
}

// loadEnvironment reads .env (when present), then the TOML file at configPath
// (when set), then the process environment.
func loadEnvironment(configPath string) (environment, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", logging.ErrKey, err)
	}

	env := environment{
		Port:         defaultPort,
		NATSURL:      defaultNATSURL,
		SyncInterval: defaultSyncInterval,
		SyncWorkers:  defaultSyncWorkers,
		LeadTime:     constants.DefaultEarlyJoinTimeMinutes * time.Minute,
	}

	if configPath == "" {
		configPath = os.Getenv("MEETING_SYNC_CONFIG")
	}
	if configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err != nil {
			return env, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := env.applyFile(fc); err != nil {
			return env, err
		}
	}

	if err := env.applyEnv(); err != nil {
		return env, err
	}
	if env.LeadTime > constants.MaxEarlyJoinTimeMinutes*time.Minute {
		return env, fmt.Errorf("FIRST_ABLE_TO_JOIN_MINUTES %d exceeds %d",
			int(env.LeadTime/time.Minute), constants.MaxEarlyJoinTimeMinutes)
	}
	if env.RecycleLicenses && env.LicensesNumber <= 0 {
		return env, fmt.Errorf("RECYCLE_LICENSES requires a positive LICENSES_NUMBER, got %d", env.LicensesNumber)
	}
	return env, nil
}

func (e *environment) applyFile(fc fileConfig) error {
	setString(&e.Port, fc.Port)
	setString(&e.NATSURL, fc.NATSURL)
	setString(&e.Zoom.AccountID, fc.Zoom.AccountID)
	setString(&e.Zoom.ClientID, fc.Zoom.ClientID)
	setString(&e.Zoom.ClientSecret, fc.Zoom.ClientSecret)
	setString(&e.Zoom.Region, fc.Zoom.Region)
	setString(&e.Zoom.APIURL, fc.Zoom.APIURL)

	if fc.Sync.Interval != "" {
		interval, err := time.ParseDuration(fc.Sync.Interval)
		if err != nil {
			return fmt.Errorf("invalid sync.interval %q: %w", fc.Sync.Interval, err)
		}
		e.SyncInterval = interval
	}
	if fc.Sync.Workers > 0 {
		e.SyncWorkers = fc.Sync.Workers
	}

	e.RecycleLicenses = fc.Licenses.Recycle
	e.LicensesNumber = fc.Licenses.Number
	e.LicensesInstanceUsersOnly = fc.Licenses.InstanceUsersOnly
	e.RecycleOnJoin = fc.Licenses.RecycleOnJoin

	setString(&e.DefaultAutoRecording, fc.DefaultAutoRecording)
	setString(&e.DefaultTrackingFields, fc.DefaultTrackingFields)
	e.ViewRecordings = fc.ViewRecordings
	setString(&e.IdentifierField, fc.IdentifierField)
	if fc.FirstAbleToJoin > 0 {
		e.LeadTime = time.Duration(fc.FirstAbleToJoin) * time.Minute
	}
	return nil
}

func (e *environment) applyEnv() error {
	setString(&e.Port, os.Getenv("PORT"))
	setString(&e.NATSURL, os.Getenv("NATS_URL"))
	setString(&e.Zoom.AccountID, os.Getenv("ZOOM_ACCOUNT_ID"))
	setString(&e.Zoom.ClientID, os.Getenv("ZOOM_CLIENT_ID"))
	setString(&e.Zoom.ClientSecret, os.Getenv("ZOOM_CLIENT_SECRET"))
	setString(&e.Zoom.Region, os.Getenv("ZOOM_API_REGION"))
	setString(&e.Zoom.APIURL, os.Getenv("ZOOM_API_URL"))
	setString(&e.DefaultAutoRecording, os.Getenv("DEFAULT_AUTO_RECORDING"))
	setString(&e.DefaultTrackingFields, os.Getenv("DEFAULT_TRACKING_FIELDS"))
	setString(&e.IdentifierField, os.Getenv("API_IDENTIFIER_FIELD"))

	var errs []error
	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid SYNC_INTERVAL %q: %w", raw, err))
		} else {
			e.SyncInterval = interval
		}
	}
	errs = append(errs,
		setInt(&e.SyncWorkers, "SYNC_WORKERS"),
		setInt(&e.LicensesNumber, "LICENSES_NUMBER"),
		setBool(&e.RecycleLicenses, "RECYCLE_LICENSES"),
		setBool(&e.LicensesInstanceUsersOnly, "LICENSES_INSTANCE_USERS_ONLY"),
		setBool(&e.RecycleOnJoin, "RECYCLE_ON_JOIN"),
		setBool(&e.ViewRecordings, "VIEW_RECORDINGS"),
	)

	var leadMinutes int
	if err := setInt(&leadMinutes, "FIRST_ABLE_TO_JOIN_MINUTES"); err != nil {
		errs = append(errs, err)
	} else if leadMinutes > 0 {
		e.LeadTime = time.Duration(leadMinutes) * time.Minute
	}

	return errors.Join(errs...)
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setInt(dst *int, name string) error {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	*dst = value
	return nil
}

func setBool(dst *bool, name string) error {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	*dst = value
	return nil
}
