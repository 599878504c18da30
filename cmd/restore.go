// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var restorePrune bool

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Write a saved configuration back to the controller",
	Long: `Read a backup written by the backup command and push it to the controller.

The controller's configuration is loaded first. Banks are added until the
controller has as many as the backup; with --prune, surplus banks are
deleted from the end. Then every bank name, footswitch slot and global slot
is sent with SAVEBANK, SAVE and SAVEGLO, waiting for each acknowledgement.

Exit codes:
  0 - Configuration restored
  1 - Invalid backup, or the controller rejected a command
  2 - Connection error`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolVar(&restorePrune, "prune", false, "Delete controller banks beyond the backup's bank count")
}

func runRestore(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	cfg, err := pedal.UnmarshalConfig(data, pedal.FormatForPath(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return runSession(cmd.Context(), pedal.Hooks{}, func(ctx context.Context, s *pedal.Session) error {
		bar := newProgressBar(restoreStepCount(cfg), "restoring")
		err := restoreConfig(ctx, s, cfg, restorePrune, func(string) {
			bar.Add(1)
		})
		bar.Finish()
		fmt.Println()
		if err != nil {
			return err
		}

		printSuccess("Restored %d bank(s), %d slot(s) and %d global(s) from %s",
			cfg.ActiveBanks, countSlots(cfg), len(cfg.Globals), path)
		return nil
	})
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// restoreStepCount is the number of acknowledged writes restoreConfig makes
// after the bank count matches
func restoreStepCount(cfg pedal.Config) int {
	return len(cfg.Banks) + countSlots(cfg) + len(cfg.Globals)
}

// restoreConfig makes the controller hold cfg. step is called after each
// acknowledged bank name, slot and global write.
func restoreConfig(ctx context.Context, s *pedal.Session, cfg pedal.Config, prune bool, step func(desc string)) error {
	if err := pull(ctx, s); err != nil {
		return err
	}

	store := s.Store()
	for store.ActiveBanks() < cfg.ActiveBanks {
		if err := await(ctx, s, s.AddBank); err != nil {
			return fmt.Errorf("add bank: %w", err)
		}
		// OK:BANK_ADDED starts a reload; Pull joins it
		if err := pull(ctx, s); err != nil {
			return err
		}
	}
	for prune && store.ActiveBanks() > cfg.ActiveBanks {
		last := store.ActiveBanks() - 1
		if err := await(ctx, s, func() error { return s.DeleteBank(last) }); err != nil {
			return fmt.Errorf("delete bank %d: %w", last, err)
		}
		if err := pull(ctx, s); err != nil {
			return err
		}
	}

	for _, bank := range cfg.Banks {
		desc := fmt.Sprintf("bank %d name", bank.Index)
		if err := await(ctx, s, func() error { return s.RenameBank(bank.Index, bank.Name) }); err != nil {
			return fmt.Errorf("%s: %w", desc, err)
		}
		step(desc)

		for _, sc := range bank.Slots {
			desc := fmt.Sprintf("bank %d slot %d", bank.Index, sc.Position+1)
			if err := await(ctx, s, func() error { return s.SaveSlot(bank.Index, sc.Position, sc.Slot) }); err != nil {
				return fmt.Errorf("%s: %w", desc, err)
			}
			step(desc)
		}
	}

	for _, gc := range cfg.Globals {
		desc := fmt.Sprintf("global %d", gc.ID)
		if err := await(ctx, s, func() error { return s.SaveGlobal(gc.ID, gc.Slot) }); err != nil {
			return fmt.Errorf("%s: %w", desc, err)
		}
		step(desc)
	}

	return nil
}
