// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Worker states. Transitions: Starting -> Running -> Draining ->
// Terminated, or Starting -> Terminated when runtime construction fails.
const (
	stateStarting int32 = iota
	stateRunning
	stateDraining
	stateTerminated
)

// Worker owns one remote: a dedicated goroutine, one runtime instance and
// one bounded inbox. It is the single writer of interpreter state.
type Worker struct {
	id     RemoteId
	opts   *engineOptions
	logger *slog.Logger

	inbox    chan *job
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
	initCh   chan error
	state    atomic.Int32

	rt     Runtime // written once on the worker goroutine before Running
	timers *timerSet

	subMu   sync.Mutex
	subs    map[uint64]chan UpdateNotification
	nextSub uint64
}

// newWorker spawns the worker goroutine and returns immediately. The
// caller must receive from initCh before handing the worker out;
// a non-nil value is a startup-fatal failure for this remote.
func newWorker(desc *Descriptor, factory RuntimeFactory, opts *engineOptions) *Worker {
	w := &Worker{
		id:     desc.Id,
		opts:   opts,
		logger: opts.logger,
		inbox:  make(chan *job, opts.queueSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		initCh: make(chan error, 1),
		subs:   make(map[uint64]chan UpdateNotification),
	}
	w.timers = newTimerSet(w)

	go w.run(desc, factory)

	return w
}

// run is the worker loop. The goroutine is locked to an OS thread so the
// interpreter lives on one thread for its entire life.
func (w *Worker) run(desc *Descriptor, factory RuntimeFactory) {
	runtime.LockOSThread()
	defer close(w.doneCh)

	rt, err := factory(desc, w)
	if err != nil {
		w.state.Store(stateTerminated)
		w.initCh <- fmt.Errorf("failed to create runtime: %w", err)
		close(w.initCh)
		return
	}
	w.rt = rt
	w.timers.start()
	w.state.Store(stateRunning)
	w.initCh <- nil
	close(w.initCh)

	if err := rt.TriggerEvent("create"); err != nil {
		w.logger.Error("create event handler failed", "remote", w.id, "error", err)
	}

	for {
		select {
		case j := <-w.inbox:
			w.executeJob(j)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

// executeJob runs one job against the runtime. A script error or panic is
// converted into a failed result at this boundary; the worker never dies.
func (w *Worker) executeJob(j *job) {
	responded := false
	respond := func(res *ActionResult) {
		responded = true
		j.respond(res)
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("panic during job execution",
				"remote", w.id,
				"kind", j.kind.String(),
				"panic", r)
			if !responded {
				j.respond(failedResult(DispositionFailed, fmt.Sprintf("panic: %v", r)))
			}
		}
	}()

	switch j.kind {
	case jobThunk:
		j.fire()

	case jobSettings:
		if err := w.rt.ApplySettings(j.settings); err != nil {
			w.logger.Error("failed to apply settings", "remote", w.id, "error", err)
			respond(failedResult(DispositionFailed, err.Error()))
			return
		}
		respond(executedResult(nil))

	case jobAction:
		req := j.request
		if !w.rt.HasAction(req.Action) {
			respond(failedResult(DispositionNotFound,
				fmt.Sprintf("no action %q", req.Action)))
			return
		}

		value, disposition, err := w.rt.CallAction(req.Action, req.Args)
		if err != nil {
			w.logger.Error("action failed",
				"remote", w.id,
				"action", req.Action,
				"error", err)
			respond(failedResult(DispositionFailed, err.Error()))
			return
		}

		switch disposition {
		case DispositionCancelled:
			respond(&ActionResult{OK: false, Disposition: DispositionCancelled})
		case DispositionHandled:
			respond(&ActionResult{OK: true, Disposition: DispositionHandled, Value: value})
		default:
			respond(executedResult(value))
		}
	}
}

// drain replies to every queued job without executing it, fires the
// destroy handler and closes the runtime. Runs on the worker goroutine.
func (w *Worker) drain() {
	w.timers.stop()

	for {
		select {
		case j := <-w.inbox:
			j.respond(failedResult(DispositionFailed, ErrShuttingDown.Error()))
		default:
			if err := w.rt.TriggerEvent("destroy"); err != nil {
				w.logger.Error("destroy event handler failed", "remote", w.id, "error", err)
			}
			if err := w.rt.Close(); err != nil {
				w.logger.Error("failed to close runtime", "remote", w.id, "error", err)
			}
			w.state.Store(stateTerminated)
			return
		}
	}
}

// enqueue places a job on the inbox with bounded fixed-backoff retries.
// The worker never waits for queue space; only producers do, and their
// total wait is capped at submitRetries * retryBackoff.
func (w *Worker) enqueue(j *job) error {
	for attempt := 0; ; attempt++ {
		if w.state.Load() != stateRunning {
			return ErrShuttingDown
		}
		select {
		case w.inbox <- j:
			return nil
		default:
		}
		if attempt+1 >= w.opts.submitRetries {
			return ErrBusy
		}
		time.Sleep(w.opts.retryBackoff)
	}
}

// injectEvent queues a lifecycle event handler as a thunk job so it runs
// under the same sequential guarantee as actions.
func (w *Worker) injectEvent(name string) {
	err := w.enqueue(newThunkJob(func() {
		if err := w.rt.TriggerEvent(name); err != nil {
			w.logger.Warn("event handler failed", "remote", w.id, "event", name, "error", err)
		}
	}))
	if err != nil {
		w.logger.Warn("failed to queue event", "remote", w.id, "event", name, "error", err)
	}
}

// stop requests shutdown and blocks until the worker goroutine has fully
// exited. Safe to call multiple times and after a failed start.
func (w *Worker) stop() {
	w.stopOnce.Do(func() {
		w.state.CompareAndSwap(stateRunning, stateDraining)
		close(w.stopCh)
	})
	<-w.doneCh
}

// Publish implements Host. Delivery to subscribers is non-blocking; a
// subscriber with a full buffer loses the notification.
func (w *Worker) Publish(update UpdateNotification) {
	update.Remote = w.id
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- update:
		default:
			w.logger.Debug("dropping update for slow subscriber", "remote", w.id, "widget", update.Widget)
		}
	}
}

// StartTimer implements Host.
func (w *Worker) StartTimer(delay time.Duration, repeat bool, fire func()) uint64 {
	return w.timers.schedule(delay, repeat, fire)
}

// CancelTimer implements Host.
func (w *Worker) CancelTimer(id uint64) bool {
	return w.timers.cancel(id)
}

// subscribe registers a new update channel. The first subscriber triggers
// the focus event on the worker goroutine.
func (w *Worker) subscribe() (uint64, chan UpdateNotification) {
	w.subMu.Lock()
	w.nextSub++
	id := w.nextSub
	ch := make(chan UpdateNotification, w.opts.subscriberBuffer)
	w.subs[id] = ch
	first := len(w.subs) == 1
	w.subMu.Unlock()

	if first {
		w.injectEvent("focus")
	}
	return id, ch
}

// unsubscribe removes an update channel. The last subscriber leaving
// triggers the blur event.
func (w *Worker) unsubscribe(id uint64) {
	w.subMu.Lock()
	ch, ok := w.subs[id]
	if ok {
		delete(w.subs, id)
		close(ch)
	}
	last := ok && len(w.subs) == 0
	w.subMu.Unlock()

	if last {
		w.injectEvent("blur")
	}
}
