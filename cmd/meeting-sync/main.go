// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the meeting sync daemon: it keeps locally stored Zoom
// meetings, recordings and tracking fields in step with Zoom.
package main

import (
	"os"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
