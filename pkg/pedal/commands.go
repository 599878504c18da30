// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"strconv"
	"strings"
)

// Command is one client → controller request. Builders below produce
// commands with canonical field values; String renders the wire form without
// the line terminator.
type Command struct {
	Name string
	Args []string
}

// String returns the colon-delimited wire form
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + FieldSeparator + strings.Join(c.Args, FieldSeparator)
}

// NewHello creates the HELLO handshake. The controller answers READY.
func NewHello() Command {
	return Command{Name: CmdHello}
}

// NewGetAll creates the bulk request. The controller streams BANK, DATAGLO
// and DATA lines followed by END:CONFIG.
func NewGetAll() Command {
	return Command{Name: CmdGetAll}
}

// NewSaveSlot creates SAVE:b:p:NAME:T:v1:v2:lpT:lpV1:lpV2.
// The name is canonicalized to the 4-character display width.
func NewSaveSlot(bank, position int, s Slot) Command {
	lp := s.LongPress
	if lp.Type == 0 {
		lp = NoLongPress
	}
	return Command{
		Name: CmdSave,
		Args: []string{
			itoa(bank),
			itoa(position),
			CanonicalSlotName(s.Name),
			s.Type.String(),
			itoa(s.Value1),
			itoa(s.Value2),
			lp.Type.String(),
			itoa(lp.Value1),
			itoa(lp.Value2),
		},
	}
}

// NewSaveBank creates SAVEBANK:b:NAME
func NewSaveBank(bank int, name string) Command {
	return Command{Name: CmdSaveBank, Args: []string{itoa(bank), CanonicalBankName(name)}}
}

// NewSaveGlobal creates SAVEGLO:id:NAME:T:v1:v2
func NewSaveGlobal(id int, g GlobalSlot) Command {
	return Command{
		Name: CmdSaveGlobal,
		Args: []string{
			itoa(id),
			CanonicalSlotName(g.Name),
			g.Type.String(),
			itoa(g.Value1),
			itoa(g.Value2),
		},
	}
}

// NewAddBank creates ADDBANK. The controller appends a bank and answers
// OK:BANK_ADDED or ERR:MAX_BANKS.
func NewAddBank() Command {
	return Command{Name: CmdAddBank}
}

// NewDeleteBank creates DELBANK:b. The index is always explicit; the
// controller's argument-less form deletes the last bank, which is never what
// an editor wants.
func NewDeleteBank(bank int) Command {
	return Command{Name: CmdDeleteBank, Args: []string{itoa(bank)}}
}

// NewReset creates RESET, restoring factory defaults on the controller
func NewReset() Command {
	return Command{Name: CmdReset}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
