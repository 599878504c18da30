// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitConnection = 2
)

// connectError marks a failure of the link itself, as opposed to a
// controller that answered badly
type connectError struct {
	err error
}

func (e *connectError) Error() string {
	return fmt.Sprintf("connection error: %v", e.err)
}

func (e *connectError) Unwrap() error {
	return e.err
}

// ExitCode maps a command error to the process exit code: 2 for connection
// errors, 1 for everything else
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *connectError
	if errors.As(err, &ce) {
		return exitConnection
	}
	return exitFailure
}

// sessionFunc is the work of a one-shot command, run while the session
// consumes the connection
type sessionFunc func(ctx context.Context, s *pedal.Session) error

// runSession connects, starts the consume loop, sends HELLO and runs fn.
// The connection is closed when fn returns. A lost connection cancels fn.
func runSession(ctx context.Context, hooks pedal.Hooks, fn sessionFunc) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, connInfo, err := OpenConnectionWithRetry(ctx)
	if err != nil {
		return &connectError{err: err}
	}
	defer conn.Close()

	fmt.Fprintf(os.Stderr, "Connection: %s\n", connInfo)

	s := pedal.NewSession(conn, nil, sessionConfig(hooks))
	defer s.Close()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		err := s.Run(runCtx)
		if runCtx.Err() != nil {
			return nil
		}
		return &connectError{err: err}
	})

	g.Go(func() error {
		// Unblock a reader waiting on a silent WebSocket
		defer conn.Close()
		defer stop()

		if err := s.Hello(); err != nil {
			return &connectError{err: err}
		}
		return fn(gctx, s)
	})

	return g.Wait()
}

// pull loads the configuration, mapping a lost link to a connection error
func pull(ctx context.Context, s *pedal.Session) error {
	if err := s.Pull(ctx); err != nil {
		if errors.Is(err, pedal.ErrSyncTimeout) {
			return err
		}
		return fmt.Errorf("load interrupted: %w", err)
	}
	return nil
}

// await runs send and waits for the controller's acknowledgement, bounded by
// the configured sync timeout
func await(ctx context.Context, s *pedal.Session, send func() error) error {
	ctx, cancel := context.WithTimeout(ctx, settings.SyncTimeout)
	defer cancel()
	_, err := s.Await(ctx, send)
	return err
}
