// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/service/reconcile"
)

const (
	gracefulShutdownSeconds = 25
	allJobs                 = "all"
)

type rootOptions struct {
	debug      bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "meeting-sync",
		Short: "Keeps local Zoom meetings, recordings and tracking fields in step with Zoom",
		Long: `meeting-sync reconciles the local meeting store with Zoom.

It can run as:
  - A daemon running every reconciliation job on an interval (run)
  - A one-shot command running a single job (sync <job>)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Based on the debug flag, set the log level used by [logging.InitStructureLogConfig]
			if opts.debug {
				if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
					return fmt.Errorf("error setting log level: %w", err)
				}
			}
			logging.InitStructureLogConfig()
			return nil
		},
	}
	cmd.Version = version
	cmd.SetVersionTemplate(`{{printf "meeting-sync version %s\n" .Version}}`)

	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file (default $MEETING_SYNC_CONFIG)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every reconciliation job on the sync interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment(opts.configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}

			gracefulCloseWG := sync.WaitGroup{}
			addr := net.JoinHostPort(bind, env.Port)
			if bind == "*" {
				addr = ":" + env.Port
			}
			httpServer := setupHealthServer(addr, newHealthHandler(a.sdk.MetricsHandler(), a.ready), &gracefulCloseWG)

			// Blocks until SIGINT or SIGTERM is received.
			runErr := a.scheduler.Run(ctx)

			slog.Info("graceful shutdown started")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
			defer cancel()

			shutdownHealthServer(shutdownCtx, httpServer)
			a.close(shutdownCtx)
			gracefulCloseWG.Wait()
			slog.Info("graceful shutdown complete")
			return runErr
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "*", "interface to bind the health server on")
	return cmd
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	validJobs := append(slices.Clone(reconcile.JobNames), allJobs)

	return &cobra.Command{
		Use:       "sync <" + strings.Join(validJobs, "|") + ">",
		Short:     "Run a single reconciliation job once",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: validJobs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(opts.configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			if args[0] == allJobs {
				return a.scheduler.RunAll(ctx)
			}
			return a.scheduler.RunJob(ctx, args[0])
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("meeting-sync version %s\n", version)
		},
	}
}
