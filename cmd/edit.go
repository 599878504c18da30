// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Interactive TUI for editing the controller configuration",
	Long: `Edit the controller configuration in an interactive terminal UI.

The configuration is loaded on start. Edits are shown immediately and sent to
the controller, which answers each one; answers and errors appear in the
event log.

Keys:
  left/right  previous/next bank      up/down  select slot
  enter       edit selected slot      n        rename bank
  a           add bank                d        delete bank
  r           reload                  q        quit

The connection is re-established automatically when it drops; the loaded
configuration stays on screen meanwhile.`,
	Args: cobra.NoArgs,
	RunE: runEditor,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

// connectionManager handles connection lifecycle and reconnection. Every
// connection gets its own session; the store is shared so the UI keeps its
// data across reconnects.
type connectionManager struct {
	conn     Connection
	connInfo string
	session  *pedal.Session
	store    *pedal.Store
	mu       sync.RWMutex

	statsMu sync.Mutex
	stats   *pedal.Statistics

	p      *tea.Program
	ctx    context.Context
	cancel context.CancelFunc
}

func newConnectionManager(ctx context.Context) *connectionManager {
	ctx, cancel := context.WithCancel(ctx)
	return &connectionManager{
		store:  pedal.NewStore(),
		stats:  pedal.NewStatistics(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (cm *connectionManager) getSession() *pedal.Session {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.session
}

func (cm *connectionManager) getConnInfo() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connInfo
}

// attach builds a session over conn and makes it current
func (cm *connectionManager) attach(conn Connection, connInfo string) *pedal.Session {
	s := pedal.NewSession(conn, cm.store, sessionConfig(pedal.Hooks{
		OnChange: func() { cm.send(storeChangedMsg{}) },
		OnNotice: func(n pedal.Notice) { cm.send(noticeMsg(n)) },
		OnSync:   func(r pedal.SyncResult) { cm.send(syncDoneMsg(r)) },
		OnLine:   cm.countLine,
	}))

	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
	cm.session = s
	return s
}

// send forwards a message to the program. Hooks fire on the read loop and
// on timer goroutines, never on the program's own goroutine.
func (cm *connectionManager) send(msg tea.Msg) {
	if cm.p != nil {
		cm.p.Send(msg)
	}
}

func (cm *connectionManager) countLine(line string, msg *pedal.Message) {
	if line == "" {
		return
	}
	cm.statsMu.Lock()
	cm.stats.Update(msg)
	cm.statsMu.Unlock()
}

// statistics returns a copy of the line counters with rates updated
func (cm *connectionManager) statistics() pedal.Statistics {
	cm.statsMu.Lock()
	defer cm.statsMu.Unlock()
	cm.stats.CalculateRates()
	return *cm.stats
}

func (cm *connectionManager) close() {
	cm.cancel()
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.session != nil {
		cm.session.Close()
	}
	if cm.conn != nil {
		cm.conn.Close()
	}
}

func runEditor(cmd *cobra.Command, args []string) error {
	cm := newConnectionManager(cmd.Context())
	defer cm.close()

	conn, connInfo, err := OpenConnectionWithRetry(cm.ctx)
	if err != nil {
		return &connectError{err: err}
	}
	cm.attach(conn, connInfo)

	m := initialEditModel(cm)
	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	go cm.readerLoop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// readerLoop runs the current session with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		s := cm.getSession()
		err := s.Run(cm.ctx)
		if cm.ctx.Err() != nil {
			return
		}

		cm.send(connectionLostMsg{err: err})

		if !cm.reconnect() {
			return
		}
	}
}

// reconnect re-opens the connection with exponential backoff until it works
// or the program exits. Returns false on exit.
func (cm *connectionManager) reconnect() bool {
	cm.mu.Lock()
	if cm.session != nil {
		cm.session.Close()
	}
	if cm.conn != nil {
		cm.conn.Close()
	}
	cm.mu.Unlock()

	for {
		var (
			conn     Connection
			connInfo string
		)
		err := retry.Do(
			func() error {
				var err error
				conn, connInfo, err = OpenConnection()
				return err
			},
			retry.Context(cm.ctx),
			retry.Attempts(settings.ConnectAttempts),
			retry.Delay(time.Second),
			retry.MaxDelay(30*time.Second),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
		)
		if cm.ctx.Err() != nil {
			if conn != nil {
				conn.Close()
			}
			return false
		}
		if err != nil {
			cm.send(noticeMsg(pedal.Notice{
				Level: pedal.NoticeError,
				Text:  fmt.Sprintf("reconnect failed: %v", err),
				Time:  time.Now(),
			}))
			continue
		}

		s := cm.attach(conn, connInfo)
		cm.send(reconnectedMsg{connInfo: connInfo})

		// The controller may have been edited elsewhere meanwhile
		if err := s.Hello(); err == nil {
			s.Load()
		}
		return true
	}
}
