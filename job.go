// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

// jobKind discriminates the units of work a worker dequeues.
type jobKind int

const (
	jobAction   jobKind = iota // an ActionRequest from the transport layer
	jobThunk                   // a re-injected callback (timer fire, lifecycle event)
	jobSettings                // a settings update applied through the runtime
)

// String returns the string representation of a jobKind.
func (k jobKind) String() string {
	switch k {
	case jobAction:
		return "action"
	case jobThunk:
		return "thunk"
	case jobSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// job is the unit the worker dequeues. It is owned exclusively by the
// inbox until dequeued, then by the worker until replied.
type job struct {
	kind     jobKind
	request  *ActionRequest    // set for jobAction
	fire     func()            // set for jobThunk; runs on the worker goroutine
	settings map[string]string // set for jobSettings
	reply    chan *ActionResult
}

func newActionJob(request *ActionRequest) *job {
	return &job{
		kind:    jobAction,
		request: request,
		// Buffered so the worker never blocks on a caller that gave up.
		reply: make(chan *ActionResult, 1),
	}
}

func newThunkJob(fire func()) *job {
	return &job{kind: jobThunk, fire: fire}
}

func newSettingsJob(settings map[string]string) *job {
	return &job{
		kind:     jobSettings,
		settings: settings,
		reply:    make(chan *ActionResult, 1),
	}
}

// respond delivers the result on the one-shot reply channel, if any.
func (j *job) respond(res *ActionResult) {
	if j.reply != nil {
		j.reply <- res
	}
}
