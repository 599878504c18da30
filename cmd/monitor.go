// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var (
	monitorShowAll       bool
	monitorLoad          bool
	monitorStatsInterval int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display every line the controller sends",
	Long: `Continuously decode and display controller lines as they arrive, with
timestamps, and keep line statistics.

Lines that are not part of the protocol (boot messages, debug output) are
hidden unless --show-all is given. With --load a full configuration is
requested once after connecting. A statistics summary is printed every
--stats-interval seconds and on exit.

Press Ctrl+C to exit.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorShowAll, "show-all", false, "Show unrecognized lines too")
	monitorCmd.Flags().BoolVar(&monitorLoad, "load", false, "Request the full configuration after connecting")
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 0, "Statistics interval in seconds (0 = only on exit)")
}

// lineMonitor prints received lines and counts them
type lineMonitor struct {
	mu      sync.Mutex
	out     io.Writer
	stats   *pedal.Statistics
	showAll bool
}

func newLineMonitor(out io.Writer, showAll bool) *lineMonitor {
	return &lineMonitor{out: out, stats: pedal.NewStatistics(), showAll: showAll}
}

// onLine is the session's OnLine hook
func (lm *lineMonitor) onLine(line string, msg *pedal.Message) {
	if line == "" {
		return
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.stats.Update(msg)

	if msg == nil {
		if lm.showAll {
			fmt.Fprintf(lm.out, "[%s] %-12s %q\n", time.Now().Format("15:04:05.000"), "?", line)
		}
		return
	}

	text := pedal.FormatMessage(msg)
	switch msg.Kind {
	case pedal.KindDeviceError:
		text = red("%s", text)
	case pedal.KindAck:
		text = green("%s", text)
	case pedal.KindSlot:
		if errs := pedal.ValidateSlot(msg.Slot); len(errs) > 0 {
			text = yellow("%s", text) + yellow("  >>> %s <<<\n", errs[0].Message)
		}
	}
	fmt.Fprint(lm.out, text)
}

func (lm *lineMonitor) summary() string {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.stats.String()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	lm := newLineMonitor(os.Stdout, monitorShowAll)

	hooks := pedal.Hooks{OnLine: lm.onLine}
	err := runSession(cmd.Context(), hooks, func(ctx context.Context, s *pedal.Session) error {
		fmt.Printf("pedalsync - Line Monitor\n")
		fmt.Printf("Press Ctrl+C to exit\n\n")

		if monitorLoad {
			s.Load()
		}

		var tick <-chan time.Time
		if monitorStatsInterval > 0 {
			ticker := time.NewTicker(time.Duration(monitorStatsInterval) * time.Second)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
				fmt.Print("\n" + lm.summary() + "\n")
			}
		}
	})

	fmt.Print("\n" + lm.summary())
	return err
}
