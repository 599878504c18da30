// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var (
	slotHold   string
	resetForce bool
)

var setSlotCmd = &cobra.Command{
	Use:   "set-slot BANK SWITCH NAME TYPE VALUE1 [VALUE2]",
	Short: "Change one footswitch slot",
	Long: `Change the action of footswitch SWITCH (1-3) in bank BANK (as listed by pull).

TYPE is P (program change: VALUE1 = program 0-127, VALUE2 = bank) or
D (effect: VALUE1 = dictionary index or label such as DLY or TAP).

A long-press action is set with --hold TYPE:VALUE1:VALUE2, where TYPE may
also be C (control change: VALUE1 = CC number, VALUE2 = CC value) or N (none).

Examples:
  pedalsync set-slot 0 1 LEAD P 12
  pedalsync set-slot 1 3 TAP D TAP --hold C:64:127`,
	Args: cobra.RangeArgs(5, 6),
	RunE: runSetSlot,
}

var renameBankCmd = &cobra.Command{
	Use:   "rename-bank BANK NAME",
	Short: "Rename a bank",
	Long: `Rename bank BANK. Names are upper-cased and cut to 8 characters, the
width of the controller's display.`,
	Args: cobra.ExactArgs(2),
	RunE: runRenameBank,
}

var setGlobalCmd = &cobra.Command{
	Use:   "set-global ID NAME TYPE VALUE1 [VALUE2]",
	Short: "Change a global footswitch slot",
	Long: `Change global slot ID (0 = side switch, 1 = center switch). TYPE and values
are as for set-slot; globals have no long-press action.`,
	Args: cobra.RangeArgs(4, 5),
	RunE: runSetGlobal,
}

var addBankCmd = &cobra.Command{
	Use:   "add-bank",
	Short: "Append a bank",
	Long:  fmt.Sprintf("Append a bank with default slots. The controller holds at most %d banks.", pedal.MaxBanks),
	Args:  cobra.NoArgs,
	RunE:  runAddBank,
}

var delBankCmd = &cobra.Command{
	Use:   "del-bank BANK",
	Short: "Delete a bank",
	Long: `Delete bank BANK. Later banks move down by one. The last remaining bank
cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelBank,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore factory defaults",
	Long: `Restore the controller's factory defaults: one bank with default slots and
default global slots. Every stored bank is lost.

Asks for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(setSlotCmd, renameBankCmd, setGlobalCmd, addBankCmd, delBankCmd, resetCmd)
	setSlotCmd.Flags().StringVar(&slotHold, "hold", "", "Long-press action TYPE:VALUE1:VALUE2")
	resetCmd.Flags().BoolVarP(&resetForce, "yes", "y", false, "Do not ask for confirmation")
}

func runSetSlot(cmd *cobra.Command, args []string) error {
	bank, err := parseIndex("bank", args[0])
	if err != nil {
		return err
	}
	position, err := parseIndex("switch", args[1])
	if err != nil {
		return err
	}
	if position < 1 || position > pedal.SlotsPerBank {
		return fmt.Errorf("switch %d out of range (1-%d)", position, pedal.SlotsPerBank)
	}

	t, v1, v2, err := parseAction(args[3], args[4:])
	if err != nil {
		return err
	}
	slot := pedal.Slot{Name: args[2], Type: t, Value1: v1, Value2: v2, LongPress: pedal.NoLongPress}
	if slotHold != "" {
		if slot.LongPress, err = parseLongPress(slotHold); err != nil {
			return err
		}
	}

	return runEdit(cmd, func(ctx context.Context, s *pedal.Session) error {
		return s.SaveSlot(bank, position-1, slot)
	})
}

func runRenameBank(cmd *cobra.Command, args []string) error {
	bank, err := parseIndex("bank", args[0])
	if err != nil {
		return err
	}
	return runEdit(cmd, func(ctx context.Context, s *pedal.Session) error {
		return s.RenameBank(bank, args[1])
	})
}

func runSetGlobal(cmd *cobra.Command, args []string) error {
	id, err := parseIndex("global id", args[0])
	if err != nil {
		return err
	}
	t, v1, v2, err := parseAction(args[2], args[3:])
	if err != nil {
		return err
	}
	g := pedal.GlobalSlot{Name: args[1], Type: t, Value1: v1, Value2: v2}

	return runEdit(cmd, func(ctx context.Context, s *pedal.Session) error {
		return s.SaveGlobal(id, g)
	})
}

func runAddBank(cmd *cobra.Command, args []string) error {
	return runEdit(cmd, func(ctx context.Context, s *pedal.Session) error {
		return s.AddBank()
	})
}

func runDelBank(cmd *cobra.Command, args []string) error {
	bank, err := parseIndex("bank", args[0])
	if err != nil {
		return err
	}
	return runEdit(cmd, func(ctx context.Context, s *pedal.Session) error {
		return s.DeleteBank(bank)
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		ok, err := confirm("Restore factory defaults? Every bank will be lost")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted")
			return nil
		}
	}
	return runEdit(cmd, func(ctx context.Context, s *pedal.Session) error {
		return s.FactoryReset()
	})
}

// runEdit loads the configuration, so bank indices can be checked, then
// sends one edit and waits for the controller's answer
func runEdit(cmd *cobra.Command, send sessionFunc) error {
	return runSession(cmd.Context(), pedal.Hooks{OnNotice: printNotice}, func(ctx context.Context, s *pedal.Session) error {
		if err := pull(ctx, s); err != nil {
			return err
		}
		return await(ctx, s, func() error { return send(ctx, s) })
	})
}

func confirm(label string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to reset without a terminal; pass --yes")
	}
	prompt := promptui.Select{
		Label:    label,
		HideHelp: true,
		Items:    []string{"No", "Yes"},
	}
	_, result, err := prompt.Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return result == "Yes", nil
}

func parseIndex(what, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

// parseActionType accepts the wire letter or a spelled-out type name
func parseActionType(s string) (pedal.ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none":
		return pedal.ActionNone, nil
	case "p", "preset", "pc":
		return pedal.ActionPreset, nil
	case "d", "effect", "fx":
		return pedal.ActionDictionary, nil
	case "c", "cc":
		return pedal.ActionDirect, nil
	}
	return 0, fmt.Errorf("unknown action type %q (want P, D, C or N)", s)
}

// parseAction reads TYPE and up to two values. Effect actions accept a
// dictionary label in place of the index.
func parseAction(typ string, values []string) (pedal.ActionType, int, int, error) {
	t, err := parseActionType(typ)
	if err != nil {
		return 0, 0, 0, err
	}

	var v [2]int
	for i, raw := range values {
		if i >= len(v) {
			return 0, 0, 0, fmt.Errorf("too many values for %s action", t.Label())
		}
		if i == 0 && t == pedal.ActionDictionary {
			if id, ok := lookupEffectLabel(raw); ok {
				v[0] = id
				continue
			}
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid value %q", raw)
		}
		v[i] = n
	}
	return t, v[0], v[1], nil
}

// parseLongPress reads TYPE:VALUE1:VALUE2
func parseLongPress(s string) (pedal.LongPress, error) {
	parts := strings.Split(s, ":")
	t, v1, v2, err := parseAction(parts[0], parts[1:])
	if err != nil {
		return pedal.LongPress{}, fmt.Errorf("--hold: %w", err)
	}
	return pedal.LongPress{Type: t, Value1: v1, Value2: v2}, nil
}

func lookupEffectLabel(label string) (int, bool) {
	for _, fx := range pedal.Effects {
		if strings.EqualFold(fx.Label, strings.TrimSpace(label)) {
			return fx.ID, true
		}
	}
	return 0, false
}
