// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := c.opts.BuildInfo
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Build version: %s\n", valueOrNA(info.BuildVersion()))
			fmt.Fprintf(out, "Build date: %s\n", valueOrNA(info.BuildDate()))
			fmt.Fprintf(out, "Build commit: %s\n", valueOrNA(info.BuildCommit()))
			fmt.Fprintf(out, "Platform: %s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
			return nil
		},
	}
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
