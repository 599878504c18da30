// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

func disableColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

// feedMonitor decodes each line the way a session does and hands it to the
// monitor
func feedMonitor(lm *lineMonitor, lines ...string) {
	for _, line := range lines {
		msg, ok := pedal.DecodeLine(line)
		if !ok {
			msg = nil
		}
		lm.onLine(line, msg)
	}
}

func TestLineMonitor(t *testing.T) {
	disableColor(t)

	lines := []string{
		"BEGIN:CONFIG",
		"DATA:0:1:LEAD:P:12:0:N:0:0",
		"boot v3.1",
		"DATA:0:2:BAD:P:200:0:N:0:0",
		"OK:SAVED",
		"ERR:MAX_BANKS",
		"END:CONFIG",
	}

	tests := []struct {
		name        string
		showAll     bool
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "protocol lines only",
			showAll:     false,
			wantContain: []string{"SLOT", "LEAD", "OK", "SAVED", "ERROR", "MAX_BANKS", "END_CONFIG", ">>>"},
			wantAbsent:  []string{"boot v3.1"},
		},
		{
			name:        "show all",
			showAll:     true,
			wantContain: []string{"boot v3.1", "SLOT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			lm := newLineMonitor(&out, tt.showAll)
			feedMonitor(lm, lines...)
			lm.onLine("", nil)

			got := out.String()
			for _, want := range tt.wantContain {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("output should not contain %q:\n%s", absent, got)
				}
			}

			stats := lm.stats
			if stats.TotalLines != uint64(len(lines)) {
				t.Errorf("TotalLines = %d, want %d", stats.TotalLines, len(lines))
			}
			if stats.Unrecognized != 1 {
				t.Errorf("Unrecognized = %d, want 1", stats.Unrecognized)
			}
			if stats.AnomalousSlots != 1 {
				t.Errorf("AnomalousSlots = %d, want 1", stats.AnomalousSlots)
			}
			if stats.DeviceErrors != 1 || stats.Acks != 1 || stats.CompleteSyncs != 1 {
				t.Errorf("DeviceErrors = %d, Acks = %d, CompleteSyncs = %d", stats.DeviceErrors, stats.Acks, stats.CompleteSyncs)
			}
			if !strings.Contains(lm.summary(), "Device Errors:") {
				t.Errorf("summary missing device errors:\n%s", lm.summary())
			}
		})
	}
}

func TestFormatNotice(t *testing.T) {
	disableColor(t)

	at := time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC)
	tests := []struct {
		notice pedal.Notice
		want   string
	}{
		{pedal.Notice{Level: pedal.NoticeSuccess, Text: "slot saved", Time: at}, "14:05:09 ok slot saved"},
		{pedal.Notice{Level: pedal.NoticeError, Text: "bank limit reached", Time: at}, "14:05:09 error bank limit reached"},
		{pedal.Notice{Level: pedal.NoticeInfo, Text: "loading configuration", Time: at}, "14:05:09 info loading configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatNotice(tt.notice); got != tt.want {
				t.Errorf("formatNotice() = %q, want %q", got, tt.want)
			}
		})
	}
}
