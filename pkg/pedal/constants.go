// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package pedal implements the client side of the footswitch controller's
// configuration protocol.
//
// The protocol is line oriented: every message is a single ASCII line of
// colon-separated fields terminated by '\n'. The client sends commands
// (GETALL, SAVE, SAVEBANK, ...) and the controller answers with data lines
// (BANK, DATA, DATAGLO), an END:CONFIG marker and OK:/ERR: acknowledgements.
// There is no correlation id and no checksum; ordering is the only guarantee.
package pedal

import "time"

// Line framing
const (
	FieldSeparator = ":"
	LineTerminator = "\n"
)

// Field widths enforced by the controller's display
const (
	SlotNameWidth = 4
	BankNameWidth = 8
)

// Device layout
const (
	SlotsPerBank    = 3
	GlobalSlotCount = 2
	MaxBanks        = 4 // storage limit of the current firmware
)

// Sync timing defaults
const (
	DefaultRetryInterval = 2 * time.Second
	DefaultSyncTimeout   = 5 * DefaultRetryInterval
)

// Transport profiles, distinguished only by bit rate
const (
	BaudUSB       = 31250 // standard MIDI serial rate
	BaudBluetooth = 9600  // HC-06 style Bluetooth-serial bridge
)

// Message tags (controller → client)
const (
	TagBank      = "BANK"
	TagBankCount = "BANK_COUNT"
	TagSlot      = "DATA"
	TagGlobal    = "DATAGLO"
	TagBegin     = "BEGIN"
	TagEnd       = "END"
	TagOK        = "OK"
	TagErr       = "ERR"
	TagReady     = "READY"

	markerConfig = "CONFIG"
)

// Command names (client → controller)
const (
	CmdHello      = "HELLO"
	CmdGetAll     = "GETALL"
	CmdSave       = "SAVE"
	CmdSaveBank   = "SAVEBANK"
	CmdSaveGlobal = "SAVEGLO"
	CmdAddBank    = "ADDBANK"
	CmdDeleteBank = "DELBANK"
	CmdReset      = "RESET"
)

// Acknowledgement subtypes (OK:<subtype>)
const (
	AckSaved       = "SAVED"
	AckSavedGlobal = "SAVED_GLO"
	AckBankRenamed = "BANK_RENAMED"
	AckBankAdded   = "BANK_ADDED"
	AckBankRemoved = "BANK_REMOVED"
	AckResetDone   = "RESET_DONE"
)

// Device error subtypes (ERR:<subtype>)
const (
	ErrMaxBanks       = "MAX_BANKS"
	ErrMinBanks       = "MIN_BANKS"
	ErrSaveFail       = "SAVE_FAIL"
	ErrSaveGlobalFail = "SAVE_GLO_FAIL"
	ErrBufferOverflow = "BUFF_OVF"
)

// ActionType selects how a footswitch action's two values are interpreted.
type ActionType byte

// Action types
const (
	ActionNone       ActionType = 'N' // long press only
	ActionPreset     ActionType = 'P' // value1 = program, value2 = bank
	ActionDictionary ActionType = 'D' // value1 = effect dictionary index
	ActionDirect     ActionType = 'C' // value1 = CC number, value2 = CC value (long press only)
)

// ParseActionType takes the first character of a wire field.
// An empty field is ActionNone.
func ParseActionType(s string) ActionType {
	if s == "" {
		return ActionNone
	}
	return ActionType(s[0])
}

// String returns the single-character wire form
func (a ActionType) String() string {
	if a == 0 {
		return string(ActionNone)
	}
	return string(rune(a))
}

// MarshalText writes the wire character so TOML backups stay readable
func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText reads the wire character
func (a *ActionType) UnmarshalText(text []byte) error {
	*a = ParseActionType(string(text))
	return nil
}

// Label returns a human-readable action type name
func (a ActionType) Label() string {
	switch a {
	case ActionNone, 0:
		return "None"
	case ActionPreset:
		return "Preset"
	case ActionDictionary:
		return "Effect"
	case ActionDirect:
		return "CC"
	default:
		return "Unknown"
	}
}

// ValidPrimary reports whether a can be a slot's primary action
func (a ActionType) ValidPrimary() bool {
	return a == ActionPreset || a == ActionDictionary
}

// ValidLongPress reports whether a can be a long-press action
func (a ActionType) ValidLongPress() bool {
	switch a {
	case ActionNone, ActionPreset, ActionDictionary, ActionDirect:
		return true
	}
	return false
}
