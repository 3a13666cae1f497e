// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of Trigger calls into a single trailing
// invocation: the callback runs only after the wait window elapses with
// no further triggers, and each new trigger discards the previously
// pending callback in favor of the latest one.
type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given wait window.
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules fn to run after the wait window. A pending callback
// from an earlier trigger is dropped, not queued.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, fn)
}

// Cancel clears any pending scheduled callback. Safe to call when
// nothing is pending. Owners must call this on teardown so no timer
// outlives its component.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
