// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/nutrilife-sync/internal/compaction"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// compactionStats summarize a dataset for the before/after preview.
type compactionStats struct {
	logs    int
	meals   int
	images  int
	payload int
}

func statsOf(d models.Dataset) compactionStats {
	s := compactionStats{logs: len(d.Logs), payload: compaction.PayloadSize(d)}
	for _, l := range d.Logs {
		s.meals += len(l.Meals)
		for _, m := range l.Meals {
			if m.ImageURL != "" {
				s.images++
			}
		}
	}
	return s
}

func (c *cli) newCompactCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compact <file>",
		Short: "Preview how compaction shrinks an export document",
		Long: `Apply the retention policy of the configuration to an export document
and print the payload size before and after. With --output the compacted
document is written to a new file; the input is never modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := models.DecodeExportDocument(data)
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			compactor := compaction.NewCompactor(compaction.Policy{
				RetentionDays:      cfg.Sync.RetentionDays,
				ImageRetentionDays: cfg.Sync.ImageRetentionDays,
				Location:           time.Local,
			}, c.opts.Clock)

			compacted := compactor.Compact(doc.Dataset)
			writeCompactionReport(cmd.OutOrStdout(), statsOf(doc.Dataset), statsOf(compacted))

			if output == "" {
				return nil
			}

			doc.Dataset = compacted
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export document: %w", err)
			}
			if err = os.WriteFile(output, out, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compacted document written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the compacted document to this file")

	return cmd
}

func writeCompactionReport(w io.Writer, before, after compactionStats) {
	fmt.Fprintf(w, "logs:    %d -> %d\n", before.logs, after.logs)
	fmt.Fprintf(w, "meals:   %d -> %d\n", before.meals, after.meals)
	fmt.Fprintf(w, "images:  %d -> %d\n", before.images, after.images)
	fmt.Fprintf(w, "payload: %s -> %s (%s)\n",
		humanize.Bytes(uint64(max(before.payload, 0))),
		humanize.Bytes(uint64(max(after.payload, 0))),
		percentChange(before.payload, after.payload),
	)
}

func percentChange(before, after int) string {
	if before <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", float64(after-before)*100/float64(before))
}
