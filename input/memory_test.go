// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"sync"
	"testing"
)

func TestMemoryKeyClick(t *testing.T) {
	m := NewMemory()
	if err := m.KeyClick("a"); err != nil {
		t.Fatalf("KeyClick(a) error = %v", err)
	}

	groups := m.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	events := groups[0].Events
	want := []Event{
		{evKey, 30, 1}, {evSyn, 0, 0},
		{evKey, 30, 0}, {evSyn, 0, 0},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestMemoryRejectsUnknownKey(t *testing.T) {
	m := NewMemory()
	if err := m.KeyClick("warp"); err == nil {
		t.Fatal("KeyClick(warp) succeeded")
	}
	if len(m.Groups()) != 0 {
		t.Error("failed call still recorded events")
	}
}

func TestMemoryTypeTextShift(t *testing.T) {
	m := NewMemory()
	if err := m.TypeText("Hi"); err != nil {
		t.Fatalf("TypeText error = %v", err)
	}

	groups := m.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	events := groups[0].Events
	// 'H' needs the shift wrap, 'i' does not.
	want := []Event{
		{evKey, uint16(keyLeftShift), 1},
		{evKey, 35, 1}, {evKey, 35, 0},
		{evKey, uint16(keyLeftShift), 0},
		{evSyn, 0, 0},
		{evKey, 23, 1}, {evKey, 23, 0},
		{evSyn, 0, 0},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

// TestMemoryNoInterleaving drives the backend from many goroutines and
// checks that every recorded group is the complete event sequence of
// exactly one call.
func TestMemoryNoInterleaving(t *testing.T) {
	m := NewMemory()

	const workers, perWorker = 16, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := m.KeyClick("x"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	groups := m.Groups()
	if len(groups) != workers*perWorker {
		t.Fatalf("got %d groups, want %d", len(groups), workers*perWorker)
	}
	for i, g := range groups {
		if g.Call != "click x" || len(g.Events) != 4 {
			t.Fatalf("group %d corrupted: %+v", i, g)
		}
		if g.Events[0].Value != 1 || g.Events[2].Value != 0 {
			t.Fatalf("group %d out of order: %+v", i, g)
		}
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory()
	if err := m.MouseMove(1, 2); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	if len(m.Groups()) != 0 {
		t.Error("groups survived Reset")
	}
}
