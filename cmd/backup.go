// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Save the controller configuration to a file",
	Long: `Load the full configuration and write it to FILE.

Files ending in .cbor are written as CBOR; anything else is TOML. Both can be
read back with restore.

Exit codes:
  0 - Backup written
  1 - Load or write failed
  2 - Connection error`,
	Args: cobra.ExactArgs(1),
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	path := args[0]

	return runSession(cmd.Context(), pedal.Hooks{OnNotice: printNotice}, func(ctx context.Context, s *pedal.Session) error {
		if err := pull(ctx, s); err != nil {
			return err
		}

		cfg := s.Store().Snapshot()
		data, err := pedal.MarshalConfig(cfg, pedal.FormatForPath(path))
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}

		printSuccess("Saved %d bank(s), %d slot(s) and %d global(s) to %s",
			cfg.ActiveBanks, countSlots(cfg), len(cfg.Globals), path)
		return nil
	})
}
