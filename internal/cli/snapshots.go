// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/models"
)

// ── list ─────────────────────────────────────────────────────────────────────

func (c *cli) newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List stored snapshots",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			remote, err := c.connect()
			if err != nil {
				return err
			}

			infos, err := remote.ListSnapshots(cmd.Context())
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if infos == nil {
					infos = []models.SnapshotInfo{}
				}
				return enc.Encode(infos)
			}

			if len(infos) == 0 {
				fmt.Fprintln(out, "no snapshots stored")
				return nil
			}

			fmt.Fprintln(out, renderSnapshotTable(infos))
			fmt.Fprintf(out, "%d snapshots\n", len(infos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func renderSnapshotTable(infos []models.SnapshotInfo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("USER", "LAST SYNCED", "SIZE")

	for _, info := range infos {
		t.Row(info.UserID, formatStamp(info.LastSynced), humanize.Bytes(uint64(max(info.SizeBytes, 0))))
	}
	return t.Render()
}

func formatStamp(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// ── remove-account ───────────────────────────────────────────────────────────

func (c *cli) newRemoveAccountCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove-account <user>",
		Short: "Delete the remote snapshot of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			out := cmd.OutOrStdout()

			if !yes {
				ok, err := c.opts.Confirm(
					fmt.Sprintf("Remove account %s?", userID),
					"The remote snapshot is deleted. Devices keep their local copy until they remove it.",
				)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "aborted")
					return nil
				}
			}

			remote, err := c.connect()
			if err != nil {
				return err
			}

			accounts := service.NewClientAccountService(nil, remote, c.opts.Logger)
			if err = accounts.RemoveAccount(cmd.Context(), userID); err != nil {
				return err
			}

			fmt.Fprintf(out, "account %s removed\n", userID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// ── export ───────────────────────────────────────────────────────────────────

func (c *cli) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <user> <file>",
		Short: "Write the remote snapshot of a user as an export document",
		Long: `Write the remote snapshot of a user as an export document that the
client can import. Use "-" as file to write to standard output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, path := args[0], args[1]

			remote, err := c.connect()
			if err != nil {
				return err
			}

			snap, found, err := remote.GetSnapshot(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("get snapshot: %w", err)
			}
			if !found {
				return fmt.Errorf("%w: %s", errSnapshotNotFound, userID)
			}

			doc := models.ExportDocument{
				Dataset:   snap.Dataset,
				Timestamp: snap.LastSynced,
				User:      userID,
			}
			doc.Dataset.Normalize()

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export document: %w", err)
			}

			if path == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err = os.WriteFile(path, data, 0o600); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%s) to %s\n", userID, humanize.Bytes(uint64(len(data))), path)
			return nil
		},
	}
}
