// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"sync"
	"time"
)

// SyncResult is how a full configuration load ended
type SyncResult int

// Sync results
const (
	SyncSucceeded SyncResult = iota + 1
	SyncTimedOut
)

// String returns a human-readable result name
func (r SyncResult) String() string {
	switch r {
	case SyncSucceeded:
		return "succeeded"
	case SyncTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// SyncOptions configures a SyncController. Zero values select the defaults.
type SyncOptions struct {
	RetryInterval time.Duration
	Timeout       time.Duration
	Clock         Clock

	// OnDone is called once per load, after the controller is back to idle
	OnDone func(SyncResult)

	// OnSendError is called when a GETALL write fails. The load keeps going;
	// the next retry or the timeout ends it.
	OnSendError func(error)
}

// syncSession is the state of one in-flight load
type syncSession struct {
	retry    Timer
	timeout  Timer
	attempts int
}

// SyncController drives a full configuration load.
//
// Idle → Loading on Start: the store is cleared and GETALL is sent at once,
// then again every RetryInterval, because the controller may miss the first
// request while the link settles and never announces that it is about to
// stream. Loading → Idle when END:CONFIG is observed (SyncSucceeded) or when
// Timeout elapses since Start (SyncTimedOut). Both timers are always
// cancelled together.
type SyncController struct {
	mu      sync.Mutex
	store   *Store
	send    func(Command) error
	opts    SyncOptions
	session *syncSession
}

// NewSyncController creates an idle controller that loads into store and
// writes requests through send.
func NewSyncController(store *Store, send func(Command) error, opts SyncOptions) *SyncController {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * opts.RetryInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	return &SyncController{store: store, send: send, opts: opts}
}

// Start begins a load. It returns false without doing anything if a load is
// already in flight.
func (c *SyncController) Start() bool {
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return false
	}

	s := &syncSession{attempts: 1}
	c.session = s
	c.store.Reset()
	s.timeout = c.opts.Clock.AfterFunc(c.opts.Timeout, func() { c.expire(s) })
	s.retry = c.opts.Clock.AfterFunc(c.opts.RetryInterval, func() { c.retry(s) })
	c.mu.Unlock()

	c.request()
	return true
}

// Observe feeds a decoded message to the controller. It returns true if the
// message completed the load in flight.
func (c *SyncController) Observe(m *Message) bool {
	if m == nil || m.Kind != KindEndConfig {
		return false
	}

	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return false
	}
	c.stop(s)
	c.mu.Unlock()

	c.finish(SyncSucceeded)
	return true
}

// Cancel abandons a load in flight without reporting a result. Used when the
// connection is torn down.
func (c *SyncController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.stop(c.session)
	}
}

// Loading reports whether a load is in flight
func (c *SyncController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Attempts returns how many GETALL requests the load in flight has sent
func (c *SyncController) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0
	}
	return c.session.attempts
}

// retry re-sends GETALL and re-arms itself. Callbacks from a finished session
// are ignored.
func (c *SyncController) retry(s *syncSession) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	s.attempts++
	s.retry = c.opts.Clock.AfterFunc(c.opts.RetryInterval, func() { c.retry(s) })
	c.mu.Unlock()

	c.request()
}

func (c *SyncController) expire(s *syncSession) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.stop(s)
	c.mu.Unlock()

	c.finish(SyncTimedOut)
}

// stop cancels both timers and returns to idle. Caller holds the lock.
func (c *SyncController) stop(s *syncSession) {
	if s.retry != nil {
		s.retry.Stop()
	}
	if s.timeout != nil {
		s.timeout.Stop()
	}
	c.session = nil
}

func (c *SyncController) request() {
	if err := c.send(NewGetAll()); err != nil && c.opts.OnSendError != nil {
		c.opts.OnSendError(err)
	}
}

func (c *SyncController) finish(result SyncResult) {
	if c.opts.OnDone != nil {
		c.opts.OnDone(result)
	}
}
