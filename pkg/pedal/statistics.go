// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"fmt"
	"time"
)

// Statistics tracks received line counts and rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalLines     uint64
	Recognized     uint64
	Unrecognized   uint64
	ConfigLines    uint64
	Acks           uint64
	DeviceErrors   uint64
	AnomalousSlots uint64
	CompleteSyncs  uint64

	// Rates (calculated)
	LineRate  float64 // lines/sec
	ErrorRate float64 // device errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update counts one received line. msg is nil for lines that were not
// recognized.
func (s *Statistics) Update(msg *Message) {
	s.TotalLines++
	s.LastUpdateTime = time.Now()

	if msg == nil {
		s.Unrecognized++
		return
	}
	s.Recognized++

	switch msg.Kind {
	case KindBank, KindBankCount, KindBeginConfig:
		s.ConfigLines++
	case KindSlot:
		s.ConfigLines++
		if len(ValidateSlot(msg.Slot)) > 0 {
			s.AnomalousSlots++
		}
	case KindGlobal:
		s.ConfigLines++
		if len(ValidateGlobal(msg.Global)) > 0 {
			s.AnomalousSlots++
		}
	case KindEndConfig:
		s.ConfigLines++
		s.CompleteSyncs++
	case KindAck:
		s.Acks++
	case KindDeviceError:
		s.DeviceErrors++
	}
}

// CalculateRates calculates line and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.LineRate = float64(s.TotalLines) / elapsed
		s.ErrorRate = float64(s.DeviceErrors) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var recognizedPercent, unrecognizedPercent float64
	if s.TotalLines > 0 {
		recognizedPercent = float64(s.Recognized) * 100.0 / float64(s.TotalLines)
		unrecognizedPercent = float64(s.Unrecognized) * 100.0 / float64(s.TotalLines)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Lines:     %8d\n", s.TotalLines)
	result += fmt.Sprintf("Recognized:      %8d (%.1f%%)\n", s.Recognized, recognizedPercent)
	if s.Unrecognized > 0 {
		result += fmt.Sprintf("Unrecognized:    %8d (%.1f%%)\n", s.Unrecognized, unrecognizedPercent)
	}
	result += fmt.Sprintf("Config Lines:    %8d\n", s.ConfigLines)
	if s.AnomalousSlots > 0 {
		result += fmt.Sprintf("  Out of Range:     %5d\n", s.AnomalousSlots)
	}
	result += fmt.Sprintf("Complete Loads:  %8d\n", s.CompleteSyncs)
	result += fmt.Sprintf("Acks:            %8d\n", s.Acks)
	if s.DeviceErrors > 0 {
		result += fmt.Sprintf("Device Errors:   %8d\n", s.DeviceErrors)
	}

	result += fmt.Sprintf("Line Rate:       %8.1f lines/sec\n", s.LineRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
