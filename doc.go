// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package deckhand implements the per-remote execution engine of the
// deckhand device-control server.
//
// Each loaded remote is driven by exactly one Worker: a dedicated
// goroutine that owns an isolated script runtime and drains a bounded
// inbox of jobs. All action calls, lifecycle events and timer callbacks
// for a remote execute sequentially on that goroutine, so script code
// never observes concurrent calls and the runtime needs no locking.
// The Registry maps remote identifiers to cloneable worker handles and
// is built once at startup.
package deckhand
