// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import "fmt"

// Effect is one entry of the controller's fixed effect dictionary
type Effect struct {
	ID          int
	Label       string
	Description string
	CC          int // control change number the controller sends
}

// Effects is the effect dictionary, in firmware order. Dictionary actions
// store the index into this table, never the CC number.
var Effects = []Effect{
	{0, "DIST", "Distortion", 49},
	{1, "AMP", "Amplifier", 50},
	{2, "MOD", "Modulation", 54},
	{3, "DLY", "Delay", 55},
	{4, "REV", "Reverb", 56},
	{5, "WAH", "Wah", 57},
	{6, "TUNER", "Tuner", 58},
	{7, "LOOP", "Looper On/Off", 59},
	{8, "L.REC", "Looper Rec", 60},
	{9, "L.PLY", "Looper Play", 62},
	{10, "CTRL1", "CTRL1", 69},
	{11, "CTRL2", "CTRL2", 70},
	{12, "CTRL3", "CTRL3", 71},
	{13, "TAP", "Tap Tempo", 75},
}

// LookupEffect returns the dictionary entry for id
func LookupEffect(id int) (Effect, bool) {
	if id < 0 || id >= len(Effects) {
		return Effect{}, false
	}
	return Effects[id], true
}

// EffectLabel returns the short label for id, or "???" when out of range
func EffectLabel(id int) string {
	if fx, ok := LookupEffect(id); ok {
		return fx.Label
	}
	return "???"
}

// PatchLabel converts a program change (0-127) into the amp's
// bank-patch notation, 01-A through 32-D.
func PatchLabel(program int) string {
	if program < 0 || program > 127 {
		return "invalid"
	}
	return fmt.Sprintf("%02d-%c", program/4+1, 'A'+rune(program%4))
}

// DescribeAction renders an action for display
func DescribeAction(t ActionType, v1, v2 int) string {
	switch t {
	case ActionPreset:
		return fmt.Sprintf("PC %d bank %d (%s)", v1, v2, PatchLabel(v1))
	case ActionDictionary:
		return fmt.Sprintf("FX %s", EffectLabel(v1))
	case ActionDirect:
		return fmt.Sprintf("CC %d=%d", v1, v2)
	case ActionNone, 0:
		return "-"
	default:
		return fmt.Sprintf("%s %d/%d", t, v1, v2)
	}
}
