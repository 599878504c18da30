// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// NoticeLevel classifies a user-facing notification
type NoticeLevel int

// Notice levels
const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

// Notice is a user-facing notification raised by the session
type Notice struct {
	Level NoticeLevel
	Text  string
	Time  time.Time
}

// Hooks are the callbacks a UI registers on a Session. All of them may be
// called from the read loop goroutine or from a timer goroutine; none of them
// may block on the session.
type Hooks struct {
	// OnChange fires after every store mutation and after every load ends
	OnChange func()

	// OnNotice receives success, error and info notifications
	OnNotice func(Notice)

	// OnSync fires once per load with its result
	OnSync func(SyncResult)

	// OnLine receives every received line; msg is nil for lines that were
	// not recognized
	OnLine func(line string, msg *Message)
}

// SessionConfig configures a Session. Zero values select defaults.
type SessionConfig struct {
	RetryInterval time.Duration
	SyncTimeout   time.Duration
	Clock         Clock
	Logger        *slog.Logger
	Hooks         Hooks

	// NoAutoReload disables the reload that follows OK:BANK_ADDED and
	// OK:BANK_REMOVED
	NoAutoReload bool
}

// Session binds a connection to a Store: it runs the consume loop
// (bytes → lines → messages → store), sends commands, and owns the
// SyncController for the connection. One Session per connection; build a new
// one after reconnecting.
type Session struct {
	conn   io.ReadWriter
	framer *LineFramer
	store  *Store
	sync   *SyncController
	hooks  Hooks
	log    *slog.Logger

	autoReload bool

	writeMu sync.Mutex

	waitMu      sync.Mutex
	ackWaiters  []chan *Message
	syncWaiters []chan SyncResult
}

// NewSession creates a session over conn. The store is shared with the UI
// and survives reconnects; pass nil to get a fresh one.
func NewSession(conn io.ReadWriter, store *Store, cfg SessionConfig) *Session {
	if store == nil {
		store = NewStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		conn:       conn,
		framer:     NewLineFramer(),
		store:      store,
		hooks:      cfg.Hooks,
		log:        logger,
		autoReload: !cfg.NoAutoReload,
	}
	s.sync = NewSyncController(store, s.Send, SyncOptions{
		RetryInterval: cfg.RetryInterval,
		Timeout:       cfg.SyncTimeout,
		Clock:         cfg.Clock,
		OnDone:        s.syncDone,
		OnSendError: func(err error) {
			s.log.Warn("load request failed", "err", err)
		},
	})
	return s
}

// Store returns the session's configuration cache
func (s *Session) Store() *Store {
	return s.store
}

// Loading reports whether a full load is in flight
func (s *Session) Loading() bool {
	return s.sync.Loading()
}

// Run consumes the connection until a read fails or ctx is cancelled. Each
// chunk is framed, decoded and applied before the next read, so messages are
// handled strictly in arrival order. A load in flight is cancelled when Run
// returns.
//
// Reads that return no data without an error (serial read timeouts) are used
// to notice cancellation.
func (s *Session) Run(ctx context.Context) error {
	defer s.sync.Cancel()

	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.conn.Read(buf)
		if n > 0 {
			s.Feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

// Feed processes one chunk of received bytes
func (s *Session) Feed(chunk []byte) {
	for _, line := range s.framer.Feed(chunk) {
		s.HandleLine(line)
	}
}

// HandleLine decodes and applies one complete line
func (s *Session) HandleLine(line string) {
	msg, ok := DecodeLine(line)
	if s.hooks.OnLine != nil {
		s.hooks.OnLine(line, msg)
	}
	if !ok {
		if line != "" {
			s.log.Debug("rx ignored", "line", line)
		}
		return
	}
	s.log.Debug("rx", "line", line)

	changed := s.store.Apply(msg)

	switch msg.Kind {
	case KindEndConfig:
		s.sync.Observe(msg)

	case KindAck:
		s.notify(NoticeSuccess, DescribeAck(msg.Subtype))
		s.deliverAck(msg)
		if s.autoReload && (msg.Subtype == AckBankAdded || msg.Subtype == AckBankRemoved) {
			s.Load()
		}

	case KindDeviceError:
		s.notify(NoticeError, DescribeDeviceError(msg.Subtype))
		s.deliverAck(msg)

	case KindReady:
		text := "controller ready"
		if msg.Subtype != "" {
			text = fmt.Sprintf("controller ready (%s)", msg.Subtype)
		}
		s.notify(NoticeInfo, text)
	}

	if changed {
		s.changed()
	}
}

// Send writes one command. Writes are serialized; a failed write is reported
// and returned but never retried.
func (s *Session) Send(cmd Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.log.Debug("tx", "line", cmd.String())
	if _, err := s.conn.Write(EncodeCommand(cmd)); err != nil {
		s.notify(NoticeError, fmt.Sprintf("write failed: %v", err))
		return fmt.Errorf("failed to send %s: %w", cmd.Name, err)
	}
	return nil
}

// Hello sends the handshake; the controller answers READY
func (s *Session) Hello() error {
	return s.Send(NewHello())
}

// Load starts a full configuration load. It returns false if one is already
// in flight.
func (s *Session) Load() bool {
	if !s.sync.Start() {
		return false
	}
	s.notify(NoticeInfo, "loading configuration")
	s.changed()
	return true
}

// Pull loads the full configuration and waits for the result. If a load is
// already in flight Pull waits for that one.
func (s *Session) Pull(ctx context.Context) error {
	ch := make(chan SyncResult, 1)
	s.waitMu.Lock()
	s.syncWaiters = append(s.syncWaiters, ch)
	s.waitMu.Unlock()

	s.Load()

	select {
	case result := <-ch:
		if result != SyncSucceeded {
			return ErrSyncTimeout
		}
		return nil
	case <-ctx.Done():
		s.removeSyncWaiter(ch)
		return ctx.Err()
	}
}

// SaveSlot stores a slot edit locally and sends SAVE for it
func (s *Session) SaveSlot(bank, position int, slot Slot) error {
	if err := s.checkBank(bank); err != nil {
		return err
	}
	if position < 0 || position >= SlotsPerBank {
		return fmt.Errorf("slot position %d out of range (0-%d)", position, SlotsPerBank-1)
	}
	if errs := ValidateSlot(slot); len(errs) > 0 {
		return &errs[0]
	}

	s.store.PutSlot(bank, position, slot)
	s.changed()
	return s.Send(NewSaveSlot(bank, position, slot))
}

// RenameBank stores a bank rename locally and sends SAVEBANK for it
func (s *Session) RenameBank(bank int, name string) error {
	if err := s.checkBank(bank); err != nil {
		return err
	}
	s.store.RenameBank(bank, name)
	s.changed()
	return s.Send(NewSaveBank(bank, name))
}

// SaveGlobal stores a global slot edit locally and sends SAVEGLO for it
func (s *Session) SaveGlobal(id int, g GlobalSlot) error {
	if id < 0 || id >= GlobalSlotCount {
		return fmt.Errorf("global id %d out of range (0-%d)", id, GlobalSlotCount-1)
	}
	if errs := ValidateGlobal(g); len(errs) > 0 {
		return &errs[0]
	}

	s.store.PutGlobal(id, g)
	s.changed()
	return s.Send(NewSaveGlobal(id, g))
}

// AddBank asks the controller to append a bank. The cache is reloaded once
// the controller acknowledges.
func (s *Session) AddBank() error {
	return s.Send(NewAddBank())
}

// DeleteCurrentBank asks the controller to delete the selected bank. The
// cache is not touched; it is reloaded once the controller acknowledges.
func (s *Session) DeleteCurrentBank() error {
	return s.DeleteBank(s.store.CurrentBank())
}

// DeleteBank asks the controller to delete bank
func (s *Session) DeleteBank(bank int) error {
	if err := s.checkBank(bank); err != nil {
		return err
	}
	return s.Send(NewDeleteBank(bank))
}

// FactoryReset asks the controller to restore its defaults
func (s *Session) FactoryReset() error {
	return s.Send(NewReset())
}

// Await runs send and waits for the next OK: or ERR: line. The protocol has
// no correlation ids, so the first acknowledgement after the command is
// taken as its reply. An ERR: reply is returned as a *DeviceError.
func (s *Session) Await(ctx context.Context, send func() error) (*Message, error) {
	ch := make(chan *Message, 1)
	s.waitMu.Lock()
	s.ackWaiters = append(s.ackWaiters, ch)
	s.waitMu.Unlock()

	if err := send(); err != nil {
		s.removeAckWaiter(ch)
		return nil, err
	}

	select {
	case msg := <-ch:
		if msg.Kind == KindDeviceError {
			return msg, &DeviceError{Code: msg.Subtype}
		}
		return msg, nil
	case <-ctx.Done():
		s.removeAckWaiter(ch)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrAckTimeout
		}
		return nil, ctx.Err()
	}
}

// Close cancels a load in flight and drops any partial line. The connection
// itself belongs to the caller.
func (s *Session) Close() {
	s.sync.Cancel()
	s.framer.Reset()
}

func (s *Session) checkBank(bank int) error {
	active := s.store.ActiveBanks()
	if active == 0 {
		return ErrNoBanks
	}
	if bank < 0 || bank >= active {
		return fmt.Errorf("bank %d out of range (0-%d)", bank, active-1)
	}
	return nil
}

func (s *Session) syncDone(result SyncResult) {
	switch result {
	case SyncSucceeded:
		s.notify(NoticeSuccess, "configuration synchronized")
	default:
		s.notify(NoticeError, "timed out waiting for configuration; check the connection")
	}

	if s.hooks.OnSync != nil {
		s.hooks.OnSync(result)
	}

	s.waitMu.Lock()
	waiters := s.syncWaiters
	s.syncWaiters = nil
	s.waitMu.Unlock()
	for _, ch := range waiters {
		ch <- result
	}

	s.changed()
}

func (s *Session) deliverAck(msg *Message) {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	if len(s.ackWaiters) == 0 {
		return
	}
	ch := s.ackWaiters[0]
	s.ackWaiters = s.ackWaiters[1:]
	ch <- msg
}

func (s *Session) removeAckWaiter(ch chan *Message) {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	for i, w := range s.ackWaiters {
		if w == ch {
			s.ackWaiters = append(s.ackWaiters[:i], s.ackWaiters[i+1:]...)
			return
		}
	}
}

func (s *Session) removeSyncWaiter(ch chan SyncResult) {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	for i, w := range s.syncWaiters {
		if w == ch {
			s.syncWaiters = append(s.syncWaiters[:i], s.syncWaiters[i+1:]...)
			return
		}
	}
}

func (s *Session) notify(level NoticeLevel, text string) {
	if s.hooks.OnNotice != nil {
		s.hooks.OnNotice(Notice{Level: level, Text: text, Time: time.Now()})
	}
}

func (s *Session) changed() {
	if s.hooks.OnChange != nil {
		s.hooks.OnChange()
	}
}
