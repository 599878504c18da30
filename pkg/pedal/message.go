// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import "time"

// Kind identifies a decoded controller message
type Kind int

// Message kinds
const (
	KindBank Kind = iota + 1
	KindBankCount
	KindSlot
	KindGlobal
	KindBeginConfig
	KindEndConfig
	KindAck
	KindDeviceError
	KindReady
)

// LongPress is the secondary action of a held footswitch
type LongPress struct {
	Type   ActionType `toml:"type" cbor:"1,keyasint"`
	Value1 int        `toml:"value1" cbor:"2,keyasint"`
	Value2 int        `toml:"value2" cbor:"3,keyasint"`
}

// NoLongPress is the long-press action reported when the controller omits it
var NoLongPress = LongPress{Type: ActionNone}

// Slot is one footswitch's configured action within a bank
type Slot struct {
	Name      string     `toml:"name" cbor:"1,keyasint"`
	Type      ActionType `toml:"type" cbor:"2,keyasint"`
	Value1    int        `toml:"value1" cbor:"3,keyasint"`
	Value2    int        `toml:"value2" cbor:"4,keyasint"`
	LongPress LongPress  `toml:"long_press" cbor:"5,keyasint"`
}

// GlobalSlot is a device-wide action that does not belong to a bank
type GlobalSlot struct {
	Name   string     `toml:"name" cbor:"1,keyasint"`
	Type   ActionType `toml:"type" cbor:"2,keyasint"`
	Value1 int        `toml:"value1" cbor:"3,keyasint"`
	Value2 int        `toml:"value2" cbor:"4,keyasint"`
}

// Message is one decoded controller line. Only the fields relevant to Kind
// are set.
type Message struct {
	Kind      Kind
	Raw       string
	Timestamp time.Time

	Index    int // bank id (BANK, DATA), global id (DATAGLO), count (BANK_COUNT)
	Position int // DATA only
	Name     string

	Slot   Slot       // DATA
	Global GlobalSlot // DATAGLO

	Subtype string // OK:/ERR: subtype, READY firmware id
}

// IsAck reports whether m is the acknowledgement OK:<subtype>
func (m *Message) IsAck(subtype string) bool {
	return m != nil && m.Kind == KindAck && m.Subtype == subtype
}

// IsDeviceError reports whether m is ERR:<subtype>
func (m *Message) IsDeviceError(subtype string) bool {
	return m != nil && m.Kind == KindDeviceError && m.Subtype == subtype
}
