// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import "time"

// Runtime is one isolated script interpreter instance. A runtime is
// created on its worker's goroutine, touched only by that goroutine for
// its entire life, and closed after the worker's loop has exited.
type Runtime interface {
	// HasAction reports whether the script defined an action with the
	// given name.
	HasAction(action ActionId) bool

	// CallAction invokes preaction (if defined), the action function and
	// postaction (if defined). Script errors are returned, never thrown;
	// the returned disposition distinguishes a hook veto from a normal
	// run.
	CallAction(action ActionId, args []any) (value any, disposition Disposition, err error)

	// TriggerEvent invokes the named handler from the events table, if
	// present. A missing handler is not an error.
	TriggerEvent(name string) error

	// ApplySettings overwrites keys in the script's settings table.
	ApplySettings(settings map[string]string) error

	// Close releases the interpreter. Called exactly once, on the worker
	// goroutine, after the last job has been replied.
	Close() error
}

// RuntimeFactory creates the runtime for one remote. It runs on the
// worker's goroutine; a returned error is a startup-fatal failure for
// that remote only.
type RuntimeFactory func(desc *Descriptor, host Host) (Runtime, error)

// Host is the capability sink a worker exposes to its runtime. Publish
// and the timer operations are safe to call from capability bindings
// executing on the worker goroutine.
type Host interface {
	// Publish fans an update out to current subscribers without blocking;
	// with no subscribers the notification is dropped.
	Publish(update UpdateNotification)

	// StartTimer schedules a callback to be re-injected into the worker's
	// inbox after the delay. With repeat true the timer re-arms with the
	// same period after each fire.
	StartTimer(delay time.Duration, repeat bool, fire func()) uint64

	// CancelTimer cancels a pending timer. A cancelled timer never
	// produces an observable callback execution, even when cancellation
	// races the deadline.
	CancelTimer(id uint64) bool
}
