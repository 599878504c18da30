// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Thermoquad/pedalsync/internal/emulator"
	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

func editFixture() pedal.Config {
	return pedal.Config{
		Device:      emulator.FirmwareID,
		ActiveBanks: 2,
		Banks: []pedal.BankConfig{
			{Index: 0, Name: "CLEAN", Slots: []pedal.SlotConfig{
				{Position: 0, Slot: pedal.Slot{Name: "INTR", Type: pedal.ActionPreset, Value1: 10, LongPress: pedal.NoLongPress}},
				{Position: 1, Slot: pedal.Slot{Name: "DLY ", Type: pedal.ActionDictionary, Value1: 3, LongPress: pedal.NoLongPress}},
			}},
			{Index: 1, Name: "LIVE"},
		},
		Globals: []pedal.GlobalConfig{
			{ID: 0, Slot: pedal.GlobalSlot{Name: "LAT", Type: pedal.ActionPreset}},
		},
	}
}

// newTestEditModel builds a model over an emulated controller with no
// program attached; hooks are dropped
func newTestEditModel(t *testing.T) (editModel, *emulator.Controller) {
	t.Helper()
	cm := newConnectionManager(context.Background())
	c := emulator.New()
	cm.attach(c, "Emulator")
	cm.store.Load(editFixture())
	t.Cleanup(cm.close)
	return initialEditModel(cm), c
}

func pressKey(m editModel, key string) (editModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(editModel), cmd
}

func TestSlotItems(t *testing.T) {
	m, _ := newTestEditModel(t)

	items := slotItems(m.store)
	if len(items) != pedal.SlotsPerBank+pedal.GlobalSlotCount {
		t.Fatalf("len(items) = %d, want %d", len(items), pedal.SlotsPerBank+pedal.GlobalSlotCount)
	}

	tests := []struct {
		index int
		title string
	}{
		{0, "Switch 1: INTR"},
		{1, "Switch 2: DLY"},
		{2, "Switch 3: (not loaded)"},
		{3, "Global 0: LAT"},
		{4, "Global 1: (not loaded)"},
	}
	for _, tt := range tests {
		if got := items[tt.index].(slotItem).Title(); got != tt.title {
			t.Errorf("items[%d].Title() = %q, want %q", tt.index, got, tt.title)
		}
	}
}

func TestEditModel_BankNavigation(t *testing.T) {
	m, _ := newTestEditModel(t)

	if m.slotList.Title != "Bank 0: CLEAN" {
		t.Errorf("Title = %q", m.slotList.Title)
	}

	m, _ = pressKey(m, "right")
	if m.store.CurrentBank() != 1 || m.slotList.Title != "Bank 1: LIVE" {
		t.Errorf("after right: bank %d, title %q", m.store.CurrentBank(), m.slotList.Title)
	}

	m, _ = pressKey(m, "right")
	if m.store.CurrentBank() != 0 {
		t.Errorf("right should wrap to bank 0, got %d", m.store.CurrentBank())
	}

	m, _ = pressKey(m, "left")
	if m.store.CurrentBank() != 1 {
		t.Errorf("left should wrap to bank 1, got %d", m.store.CurrentBank())
	}
}

func TestEditModel_EditSlot(t *testing.T) {
	m, c := newTestEditModel(t)

	m, _ = pressKey(m, "enter")
	if m.mode != modeEditSlot {
		t.Fatalf("mode = %d, want edit", m.mode)
	}
	if got := m.form[fieldName].Value(); got != "INTR" {
		t.Errorf("name field = %q, want INTR", got)
	}

	m.form[fieldValue1].SetValue("99")
	m.form[fieldHoldType].SetValue("C")
	m.form[fieldHoldValue1].SetValue("64")
	m.form[fieldHoldValue2].SetValue("127")

	m, cmd := pressKey(m, "enter")
	if m.mode != modeBrowse {
		t.Errorf("mode after submit = %d, want browse", m.mode)
	}
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if done, ok := cmd().(commandDoneMsg); !ok || done.err != nil {
		t.Fatalf("command result = %+v", done)
	}

	slot, _ := m.store.Slot(0, 0)
	if slot.Value1 != 99 || slot.LongPress.Type != pedal.ActionDirect {
		t.Errorf("stored slot = %+v", slot)
	}
	received := c.Received()
	if len(received) == 0 || received[len(received)-1] != "SAVE:0:0:INTR:P:99:0:C:64:127" {
		t.Errorf("controller received %q", received)
	}
}

func TestEditModel_InvalidForm(t *testing.T) {
	m, c := newTestEditModel(t)

	m, _ = pressKey(m, "enter")
	m.form[fieldValue1].SetValue("300")
	m, cmd := pressKey(m, "enter")

	if cmd != nil {
		t.Error("invalid slot should not produce a command")
	}
	if len(m.eventLog) == 0 || !m.eventLog[len(m.eventLog)-1].isError {
		t.Error("invalid slot should log an error")
	}
	if len(c.Received()) != 0 {
		t.Errorf("controller received %q", c.Received())
	}
}

func TestEditModel_DeleteBank(t *testing.T) {
	m, c := newTestEditModel(t)

	m, _ = pressKey(m, "d")
	if m.mode != modeConfirmDelete {
		t.Fatalf("mode = %d, want confirm", m.mode)
	}
	if !strings.Contains(m.View(), "Delete bank 0") {
		t.Error("confirmation prompt not shown")
	}

	m, cmd := pressKey(m, "n")
	if m.mode != modeBrowse || cmd != nil {
		t.Error("any key other than y should cancel")
	}

	m, _ = pressKey(m, "d")
	_, cmd = pressKey(m, "y")
	if cmd == nil {
		t.Fatal("confirm returned no command")
	}
	cmd()
	if received := c.Received(); len(received) != 1 || received[0] != "DELBANK:0" {
		t.Errorf("controller received %q", received)
	}
}

func TestEditModel_ConnectionLost(t *testing.T) {
	m, c := newTestEditModel(t)

	next, _ := m.Update(connectionLostMsg{err: ErrConnectionClosed})
	m = next.(editModel)

	m, cmd := pressKey(m, "a")
	if cmd != nil {
		t.Error("commands should be blocked while the connection is lost")
	}
	if len(c.Received()) != 0 {
		t.Errorf("controller received %q", c.Received())
	}
	if !strings.Contains(m.View(), "RECONNECTING") {
		t.Error("view should show the reconnecting state")
	}

	next, _ = m.Update(reconnectedMsg{connInfo: "Emulator"})
	m = next.(editModel)
	if m.connectionLost {
		t.Error("reconnectedMsg should clear the lost state")
	}
}

func TestEditModel_EventLogLimit(t *testing.T) {
	m, _ := newTestEditModel(t)
	for i := 0; i < maxLogEntries+10; i++ {
		m.addLogEntry("entry", false)
	}
	if len(m.eventLog) != maxLogEntries {
		t.Errorf("len(eventLog) = %d, want %d", len(m.eventLog), maxLogEntries)
	}
}
