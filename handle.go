// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"context"
	"sync"
)

// Handle is the caller-facing side of one worker: a cloneable submission
// handle plus a subscription factory. It is shared across all transport
// call sites for one remote and never owns the runtime.
type Handle struct {
	w *Worker
}

// Remote returns the identifier of the remote this handle drives.
func (h *Handle) Remote() RemoteId { return h.w.id }

// Submit queues an action request and waits for its result. Submission
// blocks at most submitRetries * retryBackoff against a full inbox before
// failing with ErrBusy; waiting for the result is bounded by ctx.
func (h *Handle) Submit(ctx context.Context, request *ActionRequest) (*ActionResult, error) {
	j := newActionJob(request)
	if err := h.w.enqueue(j); err != nil {
		return nil, err
	}

	select {
	case res := <-j.reply:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.w.doneCh:
		// The worker exited between enqueue and execution. The drain pass
		// replies to everything it saw; check once more before giving up.
		select {
		case res := <-j.reply:
			return res, nil
		default:
			return nil, ErrShuttingDown
		}
	}
}

// ApplySettings queues a settings update so it mutates the runtime's
// settings table on the worker goroutine, never from the caller's.
func (h *Handle) ApplySettings(ctx context.Context, settings map[string]string) error {
	j := newSettingsJob(settings)
	if err := h.w.enqueue(j); err != nil {
		return err
	}

	select {
	case res := <-j.reply:
		if !res.OK {
			return &SettingsError{Message: res.Err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.w.doneCh:
		return ErrShuttingDown
	}
}

// SettingsError reports a script-side failure while applying settings.
type SettingsError struct {
	Message string
}

func (e *SettingsError) Error() string { return e.Message }

// Subscribe attaches a new independent update subscriber. Notifications
// published while the subscriber's buffer is full are dropped.
func (h *Handle) Subscribe() *Subscription {
	id, ch := h.w.subscribe()
	return &Subscription{w: h.w, id: id, ch: ch}
}

// Subscription is one attached consumer of a remote's update stream.
type Subscription struct {
	w         *Worker
	id        uint64
	ch        chan UpdateNotification
	closeOnce sync.Once
}

// Updates returns the notification channel. It is closed by Close.
func (s *Subscription) Updates() <-chan UpdateNotification { return s.ch }

// Close detaches the subscriber. Safe to call multiple times.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.w.unsubscribe(s.id)
	})
}
