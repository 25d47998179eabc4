// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import "errors"

var (
	// ErrBusy is returned by Submit once the bounded retry budget against a
	// full inbox is exhausted. The condition is transient; callers may try
	// again later.
	ErrBusy = errors.New("worker inbox is full")

	// ErrShuttingDown is returned for submissions after worker shutdown has
	// been initiated, and is also the failure recorded on jobs drained
	// without execution.
	ErrShuttingDown = errors.New("worker is shutting down")

	// ErrRemoteNotFound is returned by the registry for identifiers that
	// were never loaded.
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrRemoteUnavailable is returned by the registry for remotes whose
	// runtime failed to start. The failure is permanent for the process
	// lifetime.
	ErrRemoteUnavailable = errors.New("remote unavailable")
)
