// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"reflect"
	"strings"
	"testing"
)

func sampleConfig() Config {
	return Config{
		Device:      "GP200_CONTROLLER_V3",
		ActiveBanks: 2,
		Banks: []BankConfig{
			{
				Index: 0,
				Name:  "DRIVE",
				Slots: []SlotConfig{
					{Position: 0, Slot: Slot{Name: "BOOS", Type: ActionDictionary, Value1: 0, LongPress: LongPress{Type: ActionPreset, Value1: 5}}},
					{Position: 2, Slot: Slot{Name: "SOLO", Type: ActionPreset, Value1: 12, LongPress: NoLongPress}},
				},
			},
			{Index: 1, Name: "LEAD"},
		},
		Globals: []GlobalConfig{
			{ID: 0, Slot: GlobalSlot{Name: "TAP ", Type: ActionDictionary, Value1: 13}},
		},
	}
}

func TestMarshalConfig_TOML(t *testing.T) {
	cfg := sampleConfig()
	data, err := MarshalConfig(cfg, FormatTOML)
	if err != nil {
		t.Fatalf("MarshalConfig: %v", err)
	}

	text := string(data)
	for _, want := range []string{"active_banks = 2", "DRIVE", "[[banks]]", "[[globals]]"} {
		if !strings.Contains(text, want) {
			t.Errorf("TOML backup missing %q:\n%s", want, text)
		}
	}

	got, err := UnmarshalConfig(data, FormatTOML)
	if err != nil {
		t.Fatalf("UnmarshalConfig: %v", err)
	}
	if got.ActiveBanks != 2 || got.Banks[0].Slots[0].Slot != cfg.Banks[0].Slots[0].Slot {
		t.Errorf("decoded = %+v", got)
	}
	if got.Globals[0].Slot != cfg.Globals[0].Slot {
		t.Errorf("global = %+v, want %+v", got.Globals[0].Slot, cfg.Globals[0].Slot)
	}
}

func TestMarshalConfig_CBOR(t *testing.T) {
	cfg := sampleConfig()
	data, err := MarshalConfig(cfg, FormatCBOR)
	if err != nil {
		t.Fatalf("MarshalConfig: %v", err)
	}
	got, err := UnmarshalConfig(data, FormatCBOR)
	if err != nil {
		t.Fatalf("UnmarshalConfig: %v", err)
	}
	if got.Device != cfg.Device || !reflect.DeepEqual(got.Banks[0], cfg.Banks[0]) {
		t.Errorf("decoded = %+v", got)
	}
}

func TestUnmarshalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{
			name: "no banks",
			toml: "active_banks = 0\n",
			want: "no banks",
		},
		{
			name: "too many banks",
			toml: "active_banks = 5\n",
			want: "max",
		},
		{
			name: "count mismatch",
			toml: "active_banks = 2\n[[banks]]\nindex = 0\nname = 'A'\n",
			want: "lists 1 banks",
		},
		{
			name: "gap in indexes",
			toml: "active_banks = 2\n[[banks]]\nindex = 0\nname = 'A'\n[[banks]]\nindex = 2\nname = 'B'\n",
			want: "contiguous",
		},
		{
			name: "bad slot position",
			toml: "active_banks = 1\n[[banks]]\nindex = 0\nname = 'A'\n[[banks.slots]]\nposition = 3\n[banks.slots.slot]\nname = 'X'\ntype = 'P'\n",
			want: "position 3",
		},
		{
			name: "bad program",
			toml: "active_banks = 1\n[[banks]]\nindex = 0\nname = 'A'\n[[banks.slots]]\nposition = 0\n[banks.slots.slot]\nname = 'X'\ntype = 'P'\nvalue1 = 200\n",
			want: "program 200",
		},
		{
			name: "malformed",
			toml: "active_banks = [",
			want: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalConfig([]byte(tt.toml), FormatTOML)
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"backup.toml", FormatTOML},
		{"backup", FormatTOML},
		{"backup.cbor", FormatCBOR},
		{"/tmp/B.CBOR", FormatCBOR},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestStoreSnapshotValidates(t *testing.T) {
	s := NewStore()
	applyLines(t, s, "BANK:0:DRIVE", "DATA:0:1:BOOS:D:0:0:N:0:0", "DATAGLO:0:TAP:D:13:0")
	if err := s.Snapshot().Validate(); err != nil {
		t.Errorf("snapshot of a loaded store is invalid: %v", err)
	}
}
