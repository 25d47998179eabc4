// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"github.com/dop251/goja"

	"github.com/deckhand-dev/deckhand/input"
)

// mouseModule builds the mouse capability namespace. Movement is
// relative only; moveto raises an exception because the virtual device
// carries no absolute axes, and position always reports the origin.
func (r *Runtime) mouseModule() *goja.Object {
	button := func(call goja.FunctionCall) input.Button {
		name := ""
		if len(call.Arguments) > 0 && !goja.IsUndefined(call.Argument(0)) {
			name = call.Argument(0).String()
		}
		b, err := input.ParseButton(name)
		if err != nil {
			r.throw(err)
		}
		return b
	}

	m := r.vm.NewObject()
	m.Set("click", func(call goja.FunctionCall) goja.Value {
		if err := r.backend.ButtonClick(button(call)); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	m.Set("double", func(call goja.FunctionCall) goja.Value {
		b := button(call)
		if err := r.backend.ButtonClick(b); err != nil {
			r.throw(err)
		}
		if err := r.backend.ButtonClick(b); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	m.Set("down", func(call goja.FunctionCall) goja.Value {
		if err := r.backend.ButtonPress(button(call)); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	m.Set("up", func(call goja.FunctionCall) goja.Value {
		if err := r.backend.ButtonRelease(button(call)); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	m.Set("moveby", func(dx, dy int) {
		if err := r.backend.MouseMove(dx, dy); err != nil {
			r.throw(err)
		}
	})
	m.Set("moveraw", func(dx, dy int) {
		if err := r.backend.MouseMove(dx, dy); err != nil {
			r.throw(err)
		}
	})
	m.Set("moveto", func(x, y int) {
		r.throwType("mouse.moveto: absolute positioning is not supported")
	})
	m.Set("position", func() map[string]int {
		// No position feedback from a write-only virtual device.
		return map[string]int{"x": 0, "y": 0}
	})
	m.Set("vscroll", func(amount int) {
		if err := r.backend.Scroll(amount, false); err != nil {
			r.throw(err)
		}
	})
	m.Set("hscroll", func(amount int) {
		if err := r.backend.Scroll(amount, true); err != nil {
			r.throw(err)
		}
	})
	return m
}
