// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import "strings"

// EncodeCommand returns the wire bytes of c, terminated by a single newline
func EncodeCommand(c Command) []byte {
	return []byte(c.String() + LineTerminator)
}

// CanonicalSlotName upper-cases name and pads or truncates it to exactly
// SlotNameWidth characters.
func CanonicalSlotName(name string) string {
	return fixedWidth(sanitize(name), SlotNameWidth, true)
}

// CanonicalBankName upper-cases name and truncates it to BankNameWidth
// characters. Bank names are not padded.
func CanonicalBankName(name string) string {
	return fixedWidth(sanitize(name), BankNameWidth, false)
}

// sanitize upper-cases s and replaces bytes the controller cannot store or
// that would break field splitting. Separators and control characters become
// spaces, anything outside printable ASCII becomes '?'.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		switch {
		case r == ':' || r < 0x20 || r == 0x7F:
			b.WriteByte(' ')
		case r > 0x7E:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fixedWidth(s string, width int, pad bool) string {
	if len(s) > width {
		return s[:width]
	}
	if pad && len(s) < width {
		return s + strings.Repeat(" ", width-len(s))
	}
	return s
}
