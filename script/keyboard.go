// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"github.com/dop251/goja"

	"github.com/deckhand-dev/deckhand/input"
)

// keyboardModule builds the keyboard capability namespace. Every
// function validates its keys against the shared key map and raises a
// catchable exception on unknown keys or backend failure.
func (r *Runtime) keyboardModule() *goja.Object {
	m := r.vm.NewObject()
	m.Set("press", r.keyCombo)
	m.Set("stroke", r.keyCombo)
	m.Set("down", func(key string) {
		if err := r.backend.KeyPress(key); err != nil {
			r.throw(err)
		}
	})
	m.Set("up", func(key string) {
		if err := r.backend.KeyRelease(key); err != nil {
			r.throw(err)
		}
	})
	m.Set("text", func(text string) {
		if err := r.backend.TypeText(text); err != nil {
			r.throw(err)
		}
	})
	m.Set("iskey", func(key string) bool {
		return r.backend.IsKey(key)
	})
	m.Set("ismodifier", func(key string) bool {
		return input.IsModifier(key)
	})
	return m
}

// keyCombo taps a single key, or holds a chord: multiple keys go down
// in argument order and come back up in reverse, so modifiers wrap the
// keys they qualify.
func (r *Runtime) keyCombo(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		r.throwType("keyboard.press requires at least one key")
	}
	keys := make([]string, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		keys = append(keys, arg.String())
	}

	if len(keys) == 1 {
		if err := r.backend.KeyClick(keys[0]); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	}

	for i, key := range keys {
		if err := r.backend.KeyPress(key); err != nil {
			// Roll back anything already held before reporting.
			for j := i - 1; j >= 0; j-- {
				r.backend.KeyRelease(keys[j])
			}
			r.throw(err)
		}
	}
	for i := len(keys) - 1; i >= 0; i-- {
		if err := r.backend.KeyRelease(keys[i]); err != nil {
			r.throw(err)
		}
	}
	return goja.Undefined()
}
