// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package emulator is an in-memory footswitch controller. It answers the
// text protocol the way the firmware does, including the firmware's habit of
// listing every bank slot in storage and trimming with BANK_COUNT.
package emulator

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

// Firmware identity reported in READY
const FirmwareID = "GP200_CONTROLLER_V3"

// inputBufferSize matches the controller's receive buffer; longer lines are
// answered with ERR:BUFF_OVF
const inputBufferSize = 40

// ErrClosed is returned by Read and Write after Close
var ErrClosed = errors.New("emulator closed")

type button struct {
	name   string
	typ    byte
	v1, v2 int
	lpType byte
	lp1    int
	lp2    int
}

// Controller is an emulated controller. It implements io.ReadWriteCloser:
// Write feeds command bytes, Read returns the replies.
type Controller struct {
	mu sync.Mutex

	active  int
	names   [pedal.MaxBanks]string
	buttons [pedal.MaxBanks][pedal.SlotsPerBank]button
	globals [pedal.GlobalSlotCount]button

	input    []byte
	received []string

	mute bool

	out     chan []byte
	pending []byte
	done    chan struct{}
	closed  bool
}

// New creates a controller holding factory defaults
func New() *Controller {
	c := &Controller{
		out:  make(chan []byte, 256),
		done: make(chan struct{}),
	}
	c.resetToDefaults()
	return c
}

// Read returns reply bytes, blocking until there are some
func (c *Controller) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		select {
		case chunk := <-c.out:
			c.pending = chunk
		case <-c.done:
			return 0, io.EOF
		}
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write consumes command bytes. Complete lines are executed immediately.
func (c *Controller) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}

	for _, b := range p {
		if b == '\n' || b == '\r' {
			if len(c.input) > 0 {
				line := string(c.input)
				c.input = c.input[:0]
				c.received = append(c.received, line)
				c.process(line)
			}
			continue
		}
		if len(c.input) < inputBufferSize-1 {
			c.input = append(c.input, b)
			continue
		}
		c.input = c.input[:0]
		c.reply("ERR:" + pedal.ErrBufferOverflow)
	}
	return len(p), nil
}

// Close ends the connection; pending Reads return io.EOF
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

// SetMute drops every reply while on, simulating a controller that is not
// listening
func (c *Controller) SetMute(on bool) {
	c.mu.Lock()
	c.mute = on
	c.mu.Unlock()
}

// Received returns every command line the controller executed
func (c *Controller) Received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.received...)
}

// ActiveBanks returns the controller's bank count
func (c *Controller) ActiveBanks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// BankName returns the stored name of bank b
func (c *Controller) BankName(b int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b < 0 || b >= pedal.MaxBanks {
		return ""
	}
	return c.names[b]
}

// SlotLine returns the DATA line the controller would send for (b, p)
func (c *Controller) SlotLine(b, p int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataLine(b, p)
}

// GlobalLine returns the DATAGLO line for global id
func (c *Controller) GlobalLine(id int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.globalLine(id)
}

func (c *Controller) reply(line string) {
	if c.mute || c.closed {
		return
	}
	select {
	case c.out <- []byte(line + pedal.LineTerminator):
	default:
		// Reader stalled; drop like a full UART buffer would
	}
}

// process executes one command line. Caller holds the lock.
func (c *Controller) process(line string) {
	fields := strings.Split(line, pedal.FieldSeparator)
	args := fields[1:]

	switch fields[0] {
	case pedal.CmdHello:
		c.reply(pedal.TagReady + ":" + FirmwareID)

	case pedal.CmdGetAll:
		c.sendAll()

	case pedal.CmdAddBank:
		if c.active >= pedal.MaxBanks {
			c.reply("ERR:" + pedal.ErrMaxBanks)
			return
		}
		c.initBank(c.active)
		c.active++
		c.reply("OK:" + pedal.AckBankAdded)

	case pedal.CmdDeleteBank:
		var ok bool
		if len(args) > 0 {
			ok = c.removeBank(atoi(args[0]))
		} else {
			ok = c.removeBank(c.active - 1)
		}
		if !ok {
			c.reply("ERR:" + pedal.ErrMinBanks)
			return
		}
		c.reply("OK:" + pedal.AckBankRemoved)

	case pedal.CmdSave:
		if len(args) < 6 {
			c.reply("ERR:" + pedal.ErrSaveFail)
			return
		}
		b, p := atoi(args[0]), atoi(args[1])
		if b < 0 || b >= pedal.MaxBanks || p < 0 || p >= pedal.SlotsPerBank {
			c.reply("ERR:" + pedal.ErrSaveFail)
			return
		}
		btn := button{
			name:   truncate(args[2], pedal.SlotNameWidth),
			typ:    firstByte(args[3]),
			v1:     atoi(args[4]),
			v2:     atoi(args[5]),
			lpType: 'N',
		}
		if len(args) >= 9 {
			btn.lpType = firstByte(args[6])
			btn.lp1 = atoi(args[7])
			btn.lp2 = atoi(args[8])
		}
		c.buttons[b][p] = btn
		c.reply("OK:" + pedal.AckSaved)

	case pedal.CmdSaveGlobal:
		if len(args) < 5 {
			c.reply("ERR:" + pedal.ErrSaveGlobalFail)
			return
		}
		id := atoi(args[0])
		if id < 0 || id >= pedal.GlobalSlotCount {
			c.reply("ERR:" + pedal.ErrSaveGlobalFail)
			return
		}
		g := &c.globals[id]
		g.name = truncate(args[1], pedal.SlotNameWidth)
		g.typ = firstByte(args[2])
		g.v1 = atoi(args[3])
		g.v2 = atoi(args[4])
		c.reply("OK:" + pedal.AckSavedGlobal)

	case pedal.CmdSaveBank:
		if len(args) < 2 {
			return
		}
		b := atoi(args[0])
		if b >= 0 && b < pedal.MaxBanks {
			c.names[b] = truncate(args[1], pedal.BankNameWidth)
		}
		c.reply("OK:" + pedal.AckBankRenamed)

	case pedal.CmdReset:
		c.resetToDefaults()
		c.reply("OK:" + pedal.AckResetDone)
	}
}

// sendAll streams the configuration. Every stored bank name is listed; only
// the active banks' buttons are.
func (c *Controller) sendAll() {
	c.reply("BEGIN:CONFIG")
	c.reply(fmt.Sprintf("%s:%d", pedal.TagBankCount, c.active))
	for b := 0; b < pedal.MaxBanks; b++ {
		c.reply(fmt.Sprintf("%s:%d:%s", pedal.TagBank, b, c.names[b]))
	}
	for id := range c.globals {
		c.reply(c.globalLine(id))
	}
	for b := 0; b < c.active; b++ {
		for p := 0; p < pedal.SlotsPerBank; p++ {
			c.reply(c.dataLine(b, p))
		}
	}
	c.reply("END:CONFIG")
}

func (c *Controller) dataLine(b, p int) string {
	if b < 0 || b >= pedal.MaxBanks || p < 0 || p >= pedal.SlotsPerBank {
		return ""
	}
	btn := c.buttons[b][p]
	return fmt.Sprintf("%s:%d:%d:%s:%c:%d:%d:%c:%d:%d",
		pedal.TagSlot, b, p, btn.name, btn.typ, btn.v1, btn.v2, btn.lpType, btn.lp1, btn.lp2)
}

func (c *Controller) globalLine(id int) string {
	if id < 0 || id >= pedal.GlobalSlotCount {
		return ""
	}
	g := c.globals[id]
	return fmt.Sprintf("%s:%d:%s:%c:%d:%d", pedal.TagGlobal, id, g.name, g.typ, g.v1, g.v2)
}

func (c *Controller) resetToDefaults() {
	c.active = 1
	for b := 0; b < pedal.MaxBanks; b++ {
		c.initBank(b)
	}
	c.globals[0] = button{name: "LAT", typ: 'P', lpType: 'N'}
	c.globals[1] = button{name: "CEN", typ: 'P', lpType: 'N'}
}

func (c *Controller) initBank(b int) {
	c.names[b] = fmt.Sprintf("BANK %d", b)
	for p := 0; p < pedal.SlotsPerBank; p++ {
		c.buttons[b][p] = button{
			name:   fmt.Sprintf("P%d-%d", b, p),
			typ:    'P',
			v1:     b*pedal.SlotsPerBank + p,
			lpType: 'N',
		}
	}
}

// removeBank deletes bank index and shifts the following banks down. The
// last bank can never be removed.
func (c *Controller) removeBank(index int) bool {
	if c.active <= 1 || index < 0 || index >= c.active {
		return false
	}
	for b := index; b < c.active-1; b++ {
		c.buttons[b] = c.buttons[b+1]
		c.names[b] = c.names[b+1]
	}
	c.active--
	c.initBank(c.active)
	c.names[c.active] = "EMPTY"
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func firstByte(s string) byte {
	if s == "" {
		return 'N'
	}
	return s[0]
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
