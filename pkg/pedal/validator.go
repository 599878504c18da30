// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import "fmt"

// MIDI data byte range
const (
	midiMin = 0
	midiMax = 127
)

// AnomalyType classifies a slot validation failure
type AnomalyType int

const (
	AnomalyInvalidType AnomalyType = iota
	AnomalyProgramRange
	AnomalyEffectIndex
	AnomalyCCRange
)

// ValidationError describes one problem with a slot edit
type ValidationError struct {
	Type    AnomalyType
	Field   string
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateSlot checks a slot's action fields before they are sent. The
// controller stores values in single bytes and accepts anything, so
// out-of-range values would be truncated on the device. Names are not checked
// here; the command builders canonicalize them.
// Returns a slice of validation errors (empty if the slot is valid)
func ValidateSlot(s Slot) []ValidationError {
	errors := []ValidationError{}

	if !s.Type.ValidPrimary() {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidType,
			Field:   "type",
			Message: fmt.Sprintf("invalid action type %q (want P or D)", s.Type.String()),
		})
	} else {
		errors = append(errors, validateAction("", s.Type, s.Value1, s.Value2)...)
	}

	lp := s.LongPress
	if lp.Type == 0 {
		return errors
	}
	if !lp.Type.ValidLongPress() {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidType,
			Field:   "long_press.type",
			Message: fmt.Sprintf("invalid long press type %q (want N, P, D or C)", lp.Type.String()),
		})
		return errors
	}
	errors = append(errors, validateAction("long_press.", lp.Type, lp.Value1, lp.Value2)...)

	return errors
}

// ValidateGlobal checks a global slot edit
func ValidateGlobal(g GlobalSlot) []ValidationError {
	return ValidateSlot(Slot{Name: g.Name, Type: g.Type, Value1: g.Value1, Value2: g.Value2})
}

func validateAction(prefix string, t ActionType, v1, v2 int) []ValidationError {
	var errors []ValidationError

	switch t {
	case ActionPreset:
		if v1 < midiMin || v1 > midiMax {
			errors = append(errors, ValidationError{
				Type:    AnomalyProgramRange,
				Field:   prefix + "value1",
				Message: fmt.Sprintf("program %d out of range (0-127)", v1),
			})
		}
		if v2 < midiMin || v2 > midiMax {
			errors = append(errors, ValidationError{
				Type:    AnomalyProgramRange,
				Field:   prefix + "value2",
				Message: fmt.Sprintf("bank %d out of range (0-127)", v2),
			})
		}

	case ActionDictionary:
		if _, ok := LookupEffect(v1); !ok {
			errors = append(errors, ValidationError{
				Type:    AnomalyEffectIndex,
				Field:   prefix + "value1",
				Message: fmt.Sprintf("effect index %d out of range (0-%d)", v1, len(Effects)-1),
			})
		}

	case ActionDirect:
		if v1 < midiMin || v1 > midiMax {
			errors = append(errors, ValidationError{
				Type:    AnomalyCCRange,
				Field:   prefix + "value1",
				Message: fmt.Sprintf("CC number %d out of range (0-127)", v1),
			})
		}
		if v2 < midiMin || v2 > midiMax {
			errors = append(errors, ValidationError{
				Type:    AnomalyCCRange,
				Field:   prefix + "value2",
				Message: fmt.Sprintf("CC value %d out of range (0-127)", v2),
			})
		}
	}

	return errors
}
