// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"fmt"
	"strings"
)

// FormatMessage formats a decoded message into a human-readable line
func FormatMessage(m *Message) string {
	timestamp := m.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] %-12s %s\n", timestamp, FormatKind(m.Kind), FormatDetail(m))
}

// FormatKind returns the display name for a message kind
func FormatKind(k Kind) string {
	switch k {
	case KindBank:
		return "BANK"
	case KindBankCount:
		return "BANK_COUNT"
	case KindSlot:
		return "SLOT"
	case KindGlobal:
		return "GLOBAL"
	case KindBeginConfig:
		return "BEGIN_CONFIG"
	case KindEndConfig:
		return "END_CONFIG"
	case KindAck:
		return "OK"
	case KindDeviceError:
		return "ERROR"
	case KindReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// FormatDetail renders the fields that matter for the message kind
func FormatDetail(m *Message) string {
	switch m.Kind {
	case KindBank:
		return fmt.Sprintf("bank=%d name=%q", m.Index, m.Name)
	case KindBankCount:
		return fmt.Sprintf("count=%d", m.Index)
	case KindSlot:
		return fmt.Sprintf("bank=%d pos=%d %s", m.Index, m.Position, FormatSlot(m.Slot))
	case KindGlobal:
		return fmt.Sprintf("id=%d %s", m.Index, FormatGlobal(m.Global))
	case KindBeginConfig, KindEndConfig:
		return ""
	case KindAck:
		return fmt.Sprintf("%s (%s)", m.Subtype, DescribeAck(m.Subtype))
	case KindDeviceError:
		return fmt.Sprintf("%s (%s)", m.Subtype, DescribeDeviceError(m.Subtype))
	case KindReady:
		if m.Subtype == "" {
			return "(no id)"
		}
		return m.Subtype
	}
	return m.Raw
}

// FormatSlot renders a slot as name, primary action and long-press action
func FormatSlot(s Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %s", s.Name, DescribeAction(s.Type, s.Value1, s.Value2))
	if s.LongPress.Type != ActionNone && s.LongPress.Type != 0 {
		fmt.Fprintf(&b, " hold: %s", DescribeAction(s.LongPress.Type, s.LongPress.Value1, s.LongPress.Value2))
	}
	return b.String()
}

// FormatGlobal renders a global slot
func FormatGlobal(g GlobalSlot) string {
	return fmt.Sprintf("%-4s %s", g.Name, DescribeAction(g.Type, g.Value1, g.Value2))
}

// FormatConfig renders a whole cached configuration as an indented listing
func FormatConfig(cfg Config) string {
	var b strings.Builder
	if cfg.Device != "" {
		fmt.Fprintf(&b, "Device: %s\n", cfg.Device)
	}
	fmt.Fprintf(&b, "Banks: %d\n", cfg.ActiveBanks)
	for _, bank := range cfg.Banks {
		fmt.Fprintf(&b, "  [%d] %s\n", bank.Index, bank.Name)
		for _, sc := range bank.Slots {
			fmt.Fprintf(&b, "      %d: %s\n", sc.Position+1, FormatSlot(sc.Slot))
		}
	}
	if len(cfg.Globals) > 0 {
		b.WriteString("Globals:\n")
		for _, gc := range cfg.Globals {
			fmt.Fprintf(&b, "  [%d] %s\n", gc.ID, FormatGlobal(gc.Slot))
		}
	}
	return b.String()
}
