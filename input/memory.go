// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"fmt"
	"sync"
)

// Event is one host-level input event as a backend would emit it.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Group is the contiguous event sequence produced by one logical call.
type Group struct {
	Call   string
	Events []Event
}

// Memory is a recording backend. Each logical call appends exactly one
// group under the internal lock, so the recorded stream can be checked
// for non-interleaving under concurrent callers. It is the default
// backend in tests and when no device backend is available.
type Memory struct {
	mu     sync.Mutex
	groups []Group
}

// NewMemory creates an empty recording backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Groups returns a snapshot of everything recorded so far.
func (m *Memory) Groups() []Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Group, len(m.groups))
	copy(out, m.groups)
	return out
}

// Reset discards all recorded groups.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.groups = nil
	m.mu.Unlock()
}

func (m *Memory) record(call string, events ...Event) {
	m.mu.Lock()
	m.groups = append(m.groups, Group{Call: call, Events: events})
	m.mu.Unlock()
}

// IsKey implements Backend.
func (m *Memory) IsKey(key string) bool { return Known(key) }

// KeyPress implements Backend.
func (m *Memory) KeyPress(key string) error {
	code, err := Lookup(key)
	if err != nil {
		return err
	}
	m.record(fmt.Sprintf("press %s", key),
		Event{evKey, uint16(code), 1}, Event{evSyn, 0, 0})
	return nil
}

// KeyRelease implements Backend.
func (m *Memory) KeyRelease(key string) error {
	code, err := Lookup(key)
	if err != nil {
		return err
	}
	m.record(fmt.Sprintf("release %s", key),
		Event{evKey, uint16(code), 0}, Event{evSyn, 0, 0})
	return nil
}

// KeyClick implements Backend.
func (m *Memory) KeyClick(key string) error {
	code, err := Lookup(key)
	if err != nil {
		return err
	}
	m.record(fmt.Sprintf("click %s", key),
		Event{evKey, uint16(code), 1}, Event{evSyn, 0, 0},
		Event{evKey, uint16(code), 0}, Event{evSyn, 0, 0})
	return nil
}

// TypeText implements Backend.
func (m *Memory) TypeText(text string) error {
	var events []Event
	for _, r := range text {
		code, shift, err := charKey(r)
		if err != nil {
			return err
		}
		if shift {
			events = append(events, Event{evKey, uint16(keyLeftShift), 1})
		}
		events = append(events,
			Event{evKey, uint16(code), 1},
			Event{evKey, uint16(code), 0})
		if shift {
			events = append(events, Event{evKey, uint16(keyLeftShift), 0})
		}
		events = append(events, Event{evSyn, 0, 0})
	}
	m.record(fmt.Sprintf("text %q", text), events...)
	return nil
}

// MouseMove implements Backend.
func (m *Memory) MouseMove(dx, dy int) error {
	m.record(fmt.Sprintf("move %d,%d", dx, dy),
		Event{evRel, relX, int32(dx)},
		Event{evRel, relY, int32(dy)},
		Event{evSyn, 0, 0})
	return nil
}

func buttonCode(b Button) Code {
	switch b {
	case ButtonRight:
		return btnRightCode
	case ButtonMiddle:
		return btnMiddleCode
	default:
		return btnLeftCode
	}
}

// ButtonPress implements Backend.
func (m *Memory) ButtonPress(b Button) error {
	m.record(fmt.Sprintf("button down %s", b),
		Event{evKey, uint16(buttonCode(b)), 1}, Event{evSyn, 0, 0})
	return nil
}

// ButtonRelease implements Backend.
func (m *Memory) ButtonRelease(b Button) error {
	m.record(fmt.Sprintf("button up %s", b),
		Event{evKey, uint16(buttonCode(b)), 0}, Event{evSyn, 0, 0})
	return nil
}

// ButtonClick implements Backend.
func (m *Memory) ButtonClick(b Button) error {
	code := uint16(buttonCode(b))
	m.record(fmt.Sprintf("button click %s", b),
		Event{evKey, code, 1}, Event{evSyn, 0, 0},
		Event{evKey, code, 0}, Event{evSyn, 0, 0})
	return nil
}

// Scroll implements Backend.
func (m *Memory) Scroll(amount int, horizontal bool) error {
	axis := relWheel
	if horizontal {
		axis = relHWheel
	}
	m.record(fmt.Sprintf("scroll %d horizontal=%v", amount, horizontal),
		Event{evRel, axis, int32(amount)}, Event{evSyn, 0, 0})
	return nil
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }
