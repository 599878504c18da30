// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"reflect"
	"strings"
	"testing"
)

func TestLineFramer_Chunks(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		want    []string
		pending string
	}{
		{
			name:   "single line",
			chunks: []string{"BANK:0:DRIVE\n"},
			want:   []string{"BANK:0:DRIVE"},
		},
		{
			name:    "split across chunks",
			chunks:  []string{"BANK:0:DR", "IVE\nBANK:1", ":LEAD\n"},
			want:    []string{"BANK:0:DRIVE", "BANK:1:LEAD"},
			pending: "",
		},
		{
			name:    "trailing fragment kept",
			chunks:  []string{"END:CONFIG\nBANK:"},
			want:    []string{"END:CONFIG"},
			pending: "BANK:",
		},
		{
			name:   "crlf terminators",
			chunks: []string{"OK:SAVED\r\nOK:BANK_RENAMED\r\n"},
			want:   []string{"OK:SAVED", "OK:BANK_RENAMED"},
		},
		{
			name:   "empty lines preserved",
			chunks: []string{"\n\nREADY\n"},
			want:   []string{"", "", "READY"},
		},
		{
			name:    "no terminator",
			chunks:  []string{"DATA:0:0:", "BOOS"},
			want:    nil,
			pending: "DATA:0:0:BOOS",
		},
		{
			name:   "terminator alone completes fragment",
			chunks: []string{"OK:SAVED", "\n"},
			want:   []string{"OK:SAVED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLineFramer()
			var got []string
			for _, c := range tt.chunks {
				got = append(got, f.Feed([]byte(c))...)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			if f.Pending() != tt.pending {
				t.Errorf("pending = %q, want %q", f.Pending(), tt.pending)
			}
		})
	}
}

func TestLineFramer_EmptyChunk(t *testing.T) {
	f := NewLineFramer()
	f.Feed([]byte("BANK"))
	if lines := f.Feed(nil); lines != nil {
		t.Errorf("empty chunk produced lines: %q", lines)
	}
	if f.Pending() != "BANK" {
		t.Errorf("pending = %q, want BANK", f.Pending())
	}
}

func TestLineFramer_Reset(t *testing.T) {
	f := NewLineFramer()
	f.Feed([]byte("DATA:0:1:LE"))
	f.Reset()
	lines := f.Feed([]byte("END:CONFIG\n"))
	if len(lines) != 1 || lines[0] != "END:CONFIG" {
		t.Errorf("after reset got %q, want [END:CONFIG]", lines)
	}
}

// TestFuzzLineFramer_RandomSplits checks that splitting a stream at random
// points never changes the lines it produces
func TestFuzzLineFramer_RandomSplits(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	stream := strings.Join([]string{
		"READY:GP200_CONTROLLER_V3",
		"BEGIN:CONFIG",
		"BANK_COUNT:2",
		"BANK:0:DRIVE",
		"BANK:1:LEAD",
		"DATAGLO:0:TAP :D:13:0",
		"DATA:0:0:BOOS:D:0:0:P:5:0",
		"DATA:1:2:SOLO:P:12:0:N:0:0",
		"END:CONFIG",
	}, "\n") + "\n"
	want := NewLineFramer().Feed([]byte(stream))

	for i := 0; i < rounds; i++ {
		f := NewLineFramer()
		var got []string
		rest := []byte(stream)
		for len(rest) > 0 {
			n := rng.Intn(len(rest)) + 1
			got = append(got, f.Feed(rest[:n])...)
			rest = rest[n:]
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: got %q, want %q", i, got, want)
		}
		if f.Pending() != "" {
			t.Fatalf("round %d: pending %q after complete stream", i, f.Pending())
		}
	}
}
