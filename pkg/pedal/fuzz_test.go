// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

var fuzzTags = []string{
	TagBank, TagBankCount, TagSlot, TagGlobal, TagBegin, TagEnd, TagOK, TagErr, TagReady, "JUNK", "",
}

// randomLine builds a line from a known tag and 0-11 random fields
// hugeNumbers are index values a corrupted line may carry
var hugeNumbers = []string{"500000000", "2147483648", "9223372036854775807", "-9223372036854775808"}

func randomLine(rng *rand.Rand) string {
	fields := []string{fuzzTags[rng.Intn(len(fuzzTags))]}
	for i := rng.Intn(12); i > 0; i-- {
		switch rng.Intn(5) {
		case 0:
			fields = append(fields, strconv.Itoa(rng.Intn(300)-50))
		case 4:
			fields = append(fields, hugeNumbers[rng.Intn(len(hugeNumbers))])
		case 1:
			fields = append(fields, string("NPDCX"[rng.Intn(5)]))
		case 2:
			fields = append(fields, markerConfig)
		default:
			b := make([]byte, rng.Intn(6))
			for j := range b {
				b[j] = byte(0x20 + rng.Intn(0x5F))
			}
			fields = append(fields, strings.ReplaceAll(string(b), ":", ""))
		}
	}
	return strings.Join(fields, FieldSeparator)
}

// TestFuzzDecoder_RandomBytes feeds random bytes through the framer and
// decoder and verifies nothing panics
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		f := NewLineFramer()
		data := make([]byte, rng.Intn(512)+1)
		rng.Read(data)
		for _, line := range f.Feed(data) {
			DecodeLine(line)
		}
	}
}

// TestFuzzStore_RandomLines applies random protocol-shaped lines to a store
// and checks its invariants after each one
func TestFuzzStore_RandomLines(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		s := NewStore()
		for j := 0; j < 20; j++ {
			line := randomLine(rng)
			msg, ok := DecodeLine(line)
			if !ok {
				continue
			}
			s.Apply(msg)

			// Applying the same message again must be a no-op
			if msg.Kind != KindEndConfig && msg.Kind != KindBankCount && s.Apply(msg) {
				t.Fatalf("round %d: second apply of %q reported a change", i, line)
			}

			active := s.ActiveBanks()
			current := s.CurrentBank()
			if active < 0 {
				t.Fatalf("round %d: negative bank count %d after %q", i, active, line)
			}
			if active == 0 && current != 0 {
				t.Fatalf("round %d: current %d with no banks", i, current)
			}
			if active > 0 && (current < 0 || current >= active) {
				t.Fatalf("round %d: current %d outside [0,%d)", i, current, active)
			}
			if active > indexLimit {
				t.Fatalf("round %d: bank count %d above %d after %q", i, active, indexLimit, line)
			}
			if len(s.Banks()) != active || len(s.Snapshot().Banks) > active {
				t.Fatalf("round %d: Banks/Snapshot disagree with count %d", i, active)
			}
			if rng.Intn(4) == 0 {
				s.Next()
			}
		}
	}
}

// TestFuzzSaveSlot_RoundTrip checks that any slot edit encodes to a SAVE
// line whose fields decode back to the canonical slot
func TestFuzzSaveSlot_RoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	types := []ActionType{ActionPreset, ActionDictionary}
	lpTypes := []ActionType{ActionNone, ActionPreset, ActionDictionary, ActionDirect}

	for i := 0; i < rounds; i++ {
		name := make([]byte, rng.Intn(10))
		for j := range name {
			name[j] = byte(0x20 + rng.Intn(0x60))
		}
		slot := Slot{
			Name:   string(name),
			Type:   types[rng.Intn(len(types))],
			Value1: rng.Intn(128),
			Value2: rng.Intn(128),
			LongPress: LongPress{
				Type:   lpTypes[rng.Intn(len(lpTypes))],
				Value1: rng.Intn(128),
				Value2: rng.Intn(128),
			},
		}
		bank, pos := rng.Intn(MaxBanks), rng.Intn(SlotsPerBank)

		wire := string(EncodeCommand(NewSaveSlot(bank, pos, slot)))
		if strings.Count(wire, "\n") != 1 || !strings.HasSuffix(wire, "\n") {
			t.Fatalf("round %d: bad terminator in %q", i, wire)
		}
		fields := strings.Split(strings.TrimSuffix(wire, "\n"), FieldSeparator)
		if len(fields) != 10 {
			t.Fatalf("round %d: %q has %d fields, want 10", i, wire, len(fields))
		}

		// The controller echoes saved slots as DATA lines with the same fields
		fields[0] = TagSlot
		msg, ok := DecodeLine(strings.Join(fields, FieldSeparator))
		if !ok {
			t.Fatalf("round %d: echo of %q not decoded", i, wire)
		}
		want := slot
		want.Name = CanonicalSlotName(slot.Name)
		if msg.Slot != want || msg.Index != bank || msg.Position != pos {
			t.Fatalf("round %d: echo decoded to %+v at %d/%d, want %+v at %d/%d",
				i, msg.Slot, msg.Index, msg.Position, want, bank, pos)
		}
	}
}
