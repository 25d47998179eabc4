// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// timerModule builds the timer capability namespace. Callbacks are
// never invoked here: the host schedules them back onto the owning
// worker's queue, so they run on the same goroutine as every other
// script entry point.
func (r *Runtime) timerModule() *goja.Object {
	m := r.vm.NewObject()
	m.Set("timeout", func(call goja.FunctionCall) goja.Value {
		fn, delay := r.timerArgs(call, "timer.timeout")
		return r.vm.ToValue(r.host.StartTimer(delay, false, r.timerThunk(fn)))
	})
	m.Set("interval", func(call goja.FunctionCall) goja.Value {
		fn, delay := r.timerArgs(call, "timer.interval")
		if delay <= 0 {
			r.throwType("timer.interval: period must be positive")
		}
		return r.vm.ToValue(r.host.StartTimer(delay, true, r.timerThunk(fn)))
	})
	m.Set("schedule", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			r.throwType("timer.schedule: first argument must be a function")
		}
		when, err := time.Parse(time.RFC3339, call.Argument(1).String())
		if err != nil {
			r.throwType("timer.schedule: second argument must be an RFC 3339 timestamp")
		}
		delay := time.Until(when)
		if delay < 0 {
			r.throw(fmt.Errorf("timer.schedule: %s is in the past", call.Argument(1).String()))
		}
		return r.vm.ToValue(r.host.StartTimer(delay, false, r.timerThunk(fn)))
	})
	m.Set("cancel", func(id uint64) bool {
		return r.host.CancelTimer(id)
	})
	return m
}

func (r *Runtime) timerArgs(call goja.FunctionCall, name string) (goja.Callable, time.Duration) {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		r.throwType("%s: first argument must be a function", name)
	}
	ms := call.Argument(1).ToInteger()
	if ms < 0 {
		ms = 0
	}
	return fn, time.Duration(ms) * time.Millisecond
}

// timerThunk wraps a script callback for deferred execution. A failing
// callback is logged, not propagated; there is no caller to report to.
func (r *Runtime) timerThunk(fn goja.Callable) func() {
	return func() {
		if _, err := fn(goja.Undefined()); err != nil {
			r.logger.Error("timer callback failed", "error", err)
		}
	}
}
