// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import "testing"

func TestValidateSlot(t *testing.T) {
	tests := []struct {
		name   string
		slot   Slot
		errors []AnomalyType
	}{
		{
			name: "valid preset",
			slot: Slot{Name: "SOLO", Type: ActionPreset, Value1: 127, Value2: 0, LongPress: NoLongPress},
		},
		{
			name: "valid effect with cc hold",
			slot: Slot{Name: "BOOS", Type: ActionDictionary, Value1: 13, LongPress: LongPress{Type: ActionDirect, Value1: 64, Value2: 127}},
		},
		{
			name: "zero long press skipped",
			slot: Slot{Type: ActionPreset},
		},
		{
			name:   "cc not allowed as primary",
			slot:   Slot{Type: ActionDirect, Value1: 1},
			errors: []AnomalyType{AnomalyInvalidType},
		},
		{
			name:   "none not allowed as primary",
			slot:   Slot{Type: ActionNone},
			errors: []AnomalyType{AnomalyInvalidType},
		},
		{
			name:   "program out of range",
			slot:   Slot{Type: ActionPreset, Value1: 128, Value2: -1},
			errors: []AnomalyType{AnomalyProgramRange, AnomalyProgramRange},
		},
		{
			name:   "effect index out of range",
			slot:   Slot{Type: ActionDictionary, Value1: 14},
			errors: []AnomalyType{AnomalyEffectIndex},
		},
		{
			name:   "bad long press type",
			slot:   Slot{Type: ActionPreset, LongPress: LongPress{Type: 'X'}},
			errors: []AnomalyType{AnomalyInvalidType},
		},
		{
			name:   "long press cc out of range",
			slot:   Slot{Type: ActionPreset, LongPress: LongPress{Type: ActionDirect, Value1: 200}},
			errors: []AnomalyType{AnomalyCCRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSlot(tt.slot)
			if len(errs) != len(tt.errors) {
				t.Fatalf("got %d errors %v, want %d", len(errs), errs, len(tt.errors))
			}
			for i, want := range tt.errors {
				if errs[i].Type != want {
					t.Errorf("error %d type = %d, want %d (%s)", i, errs[i].Type, want, errs[i].Message)
				}
			}
		})
	}
}

func TestValidateSlot_FieldNames(t *testing.T) {
	errs := ValidateSlot(Slot{Type: ActionPreset, LongPress: LongPress{Type: ActionPreset, Value2: 300}})
	if len(errs) != 1 || errs[0].Field != "long_press.value2" {
		t.Errorf("errors = %+v", errs)
	}
}

func TestValidateGlobal(t *testing.T) {
	if errs := ValidateGlobal(GlobalSlot{Name: "TAP", Type: ActionDictionary, Value1: 13}); len(errs) != 0 {
		t.Errorf("valid global rejected: %v", errs)
	}
	if errs := ValidateGlobal(GlobalSlot{Type: ActionDirect}); len(errs) != 1 {
		t.Errorf("CC global accepted: %v", errs)
	}
}
