// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"strings"
	"testing"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"BANK:1:LEAD", []string{"BANK", "bank=1", `"LEAD"`}},
		{"BANK_COUNT:3", []string{"BANK_COUNT", "count=3"}},
		{"DATA:0:2:BOOS:D:0:0:P:5:0", []string{"SLOT", "pos=2", "BOOS", "DIST", "hold:", "02-B"}},
		{"DATAGLO:0:TAP :D:13:0", []string{"GLOBAL", "id=0", "TAP"}},
		{"OK:SAVED", []string{"OK", "slot saved"}},
		{"ERR:BUFF_OVF", []string{"ERROR", "too long"}},
		{"READY", []string{"READY", "(no id)"}},
		{"END:CONFIG", []string{"END_CONFIG"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := FormatMessage(mustDecode(t, tt.line))
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatMessage(%q) = %q, missing %q", tt.line, got, want)
				}
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("FormatMessage(%q) not newline-terminated", tt.line)
			}
		})
	}
}

func TestFormatSlot_NoHold(t *testing.T) {
	got := FormatSlot(Slot{Name: "SOLO", Type: ActionPreset, Value1: 12, LongPress: NoLongPress})
	if strings.Contains(got, "hold") {
		t.Errorf("FormatSlot = %q, want no hold action", got)
	}
}

func TestFormatConfig(t *testing.T) {
	got := FormatConfig(sampleConfig())
	for _, want := range []string{"Device: GP200_CONTROLLER_V3", "Banks: 2", "[0] DRIVE", "[1] LEAD", "Globals:"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatConfig missing %q:\n%s", want, got)
		}
	}
}

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()
	lines := []string{
		"BEGIN:CONFIG",
		"BANK:0:A",
		"DATA:0:0:X:P:200:0",
		"DATAGLO:0:TAP:D:13:0",
		"END:CONFIG",
		"OK:SAVED",
		"ERR:SAVE_FAIL",
	}
	for _, line := range lines {
		s.Update(mustDecode(t, line))
	}
	s.Update(nil)

	if s.TotalLines != 8 || s.Recognized != 7 || s.Unrecognized != 1 {
		t.Errorf("total=%d recognized=%d unrecognized=%d", s.TotalLines, s.Recognized, s.Unrecognized)
	}
	if s.ConfigLines != 5 || s.AnomalousSlots != 1 || s.CompleteSyncs != 1 {
		t.Errorf("config=%d anomalous=%d syncs=%d", s.ConfigLines, s.AnomalousSlots, s.CompleteSyncs)
	}
	if s.Acks != 1 || s.DeviceErrors != 1 {
		t.Errorf("acks=%d errors=%d", s.Acks, s.DeviceErrors)
	}
	if !strings.Contains(s.String(), "Total Lines:") {
		t.Errorf("summary = %q", s.String())
	}

	s.Reset()
	if s.TotalLines != 0 || s.Acks != 0 {
		t.Errorf("reset left counters: %+v", s)
	}
}
