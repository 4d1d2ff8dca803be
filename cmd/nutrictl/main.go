// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/nutrilife-sync/internal/cli"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.NewWithWriter("nutrictl", os.Stderr).WithLevel("warn")

	root := cli.NewRootCmd(cli.Options{
		BuildInfo: models.NewAppBuildInfo(buildVersion, buildDate, buildCommit),
		Logger:    log,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
