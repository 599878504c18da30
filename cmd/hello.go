// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var helloTimeout int

var helloCmd = &cobra.Command{
	Use:   "hello",
	Short: "Test the connection with a HELLO handshake",
	Long: `Send HELLO and wait for the controller's READY answer.

Exit codes:
  0 - READY received before timeout
  1 - Timeout reached without an answer
  2 - Connection error

Useful for checking the baud rate of a Bluetooth module or a WebSocket
serial bridge before running other commands.`,
	Args: cobra.NoArgs,
	RunE: runHello,
}

func init() {
	rootCmd.AddCommand(helloCmd)
	helloCmd.Flags().IntVar(&helloTimeout, "timeout", 5, "Timeout in seconds to wait for READY")
}

func runHello(cmd *cobra.Command, args []string) error {
	ready := make(chan *pedal.Message, 1)
	var unrecognized atomic.Int32

	hooks := pedal.Hooks{
		OnLine: func(line string, msg *pedal.Message) {
			if msg == nil {
				if line != "" {
					unrecognized.Add(1)
				}
				return
			}
			if msg.Kind == pedal.KindReady {
				select {
				case ready <- msg:
				default:
				}
			}
		},
	}

	return runSession(cmd.Context(), hooks, func(ctx context.Context, s *pedal.Session) error {
		fmt.Printf("Waiting for READY (timeout %d seconds)...\n\n", helloTimeout)
		start := time.Now()

		select {
		case msg := <-ready:
			printSuccess("SUCCESS: controller answered in %s", time.Since(start).Round(time.Millisecond))
			if msg.Subtype != "" {
				fmt.Printf("  Firmware: %s\n", msg.Subtype)
			}
			if n := unrecognized.Load(); n > 0 {
				fmt.Printf("  (skipped %d unrecognized lines)\n", n)
			}
			return nil

		case <-time.After(time.Duration(helloTimeout) * time.Second):
			return fmt.Errorf("TIMEOUT: no READY received within %d seconds", helloTimeout)

		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
