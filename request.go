// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

// ActionRequest is one inbound call produced by the transport layer.
// It is consumed exactly once by the worker that dequeues it.
type ActionRequest struct {
	Id     string   `json:"id,omitempty"`   // Request id assigned by the transport layer
	Action ActionId `json:"action"`         // Script-defined action function name
	Args   []any    `json:"args,omitempty"` // Positional, loosely-typed arguments
}

// Disposition describes how a request was resolved by the worker.
type Disposition uint8

const (
	// DispositionExecuted means the action function ran to completion.
	DispositionExecuted Disposition = iota
	// DispositionCancelled means a preaction hook vetoed the call; neither
	// the action nor the postaction hook ran.
	DispositionCancelled
	// DispositionHandled means a preaction hook reported the call as
	// already handled; the action was skipped but postaction still ran.
	DispositionHandled
	// DispositionNotFound means no action with the requested name exists.
	DispositionNotFound
	// DispositionFailed means script code or a capability call raised an
	// error during execution.
	DispositionFailed
)

// String returns the string representation of a Disposition.
func (d Disposition) String() string {
	switch d {
	case DispositionExecuted:
		return "executed"
	case DispositionCancelled:
		return "cancelled"
	case DispositionHandled:
		return "handled"
	case DispositionNotFound:
		return "not_found"
	case DispositionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so dispositions serialize
// as their names in JSON responses.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ActionResult is produced exactly once per accepted ActionRequest and
// delivered to the original caller through the job's one-shot reply
// channel. It is never broadcast.
type ActionResult struct {
	OK          bool        `json:"ok"`
	Disposition Disposition `json:"disposition"`
	Value       any         `json:"value,omitempty"`
	Err         string      `json:"error,omitempty"`
}

func executedResult(value any) *ActionResult {
	return &ActionResult{OK: true, Disposition: DispositionExecuted, Value: value}
}

func failedResult(d Disposition, msg string) *ActionResult {
	return &ActionResult{OK: false, Disposition: d, Err: msg}
}

// UpdateNotification is an outbound widget update published by script code
// through the server capability. It is fanned out to current subscribers
// and never persisted; with no subscribers it is dropped.
type UpdateNotification struct {
	Remote     RemoteId       `json:"remote"`
	Widget     string         `json:"widget"`
	Properties map[string]any `json:"properties"`
}

// Descriptor is the immutable per-remote description produced by the
// loader and consumed exactly once when a worker is constructed.
type Descriptor struct {
	Id         RemoteId
	ScriptPath string // Absolute script source path; empty means an empty runtime
	ScriptDir  string // Remote directory; confines include()/require()
	Settings   map[string]string
}
