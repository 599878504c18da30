// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var pullQuiet bool

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Load and print the controller configuration",
	Long: `Connect, greet the controller with HELLO and request the full configuration
with GETALL. The request is repeated every retry interval until the
controller sends END:CONFIG or the sync timeout expires.

Examples:
  # USB connection
  pedalsync pull --port /dev/ttyACM0

  # Bluetooth module
  pedalsync pull --port /dev/rfcomm0 --profile bt

  # WebSocket serial bridge
  pedalsync pull --url ws://bridge.local/serial

Exit codes:
  0 - Configuration loaded
  1 - Load failed (timeout)
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().BoolVarP(&pullQuiet, "quiet", "q", false, "Do not print notices")
}

func runPull(cmd *cobra.Command, args []string) error {
	hooks := pedal.Hooks{}
	if !pullQuiet {
		hooks.OnNotice = printNotice
	}

	return runSession(cmd.Context(), hooks, func(ctx context.Context, s *pedal.Session) error {
		if err := pull(ctx, s); err != nil {
			return err
		}

		cfg := s.Store().Snapshot()
		fmt.Println()
		fmt.Print(pedal.FormatConfig(cfg))

		fmt.Printf("\n--- Load summary ---\n")
		fmt.Printf("Banks: %d\n", cfg.ActiveBanks)
		fmt.Printf("Slots: %d\n", countSlots(cfg))
		fmt.Printf("Globals: %d\n", len(cfg.Globals))
		return nil
	})
}

func countSlots(cfg pedal.Config) int {
	n := 0
	for _, bank := range cfg.Banks {
		n += len(bank.Slots)
	}
	return n
}
