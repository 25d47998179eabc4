// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func newTestRegistry(t *testing.T, runtimes map[RemoteId]*mockRuntime) *Registry {
	t.Helper()
	descriptors := make([]*Descriptor, 0, len(runtimes))
	for id := range runtimes {
		descriptors = append(descriptors, &Descriptor{Id: id})
	}
	factory := func(desc *Descriptor, _ Host) (Runtime, error) {
		rt, ok := runtimes[desc.Id]
		if !ok || rt == nil {
			return nil, fmt.Errorf("no runtime for %q", desc.Id)
		}
		return rt, nil
	}
	r := NewRegistry(descriptors, factory, WithLogger(testLogger()))
	t.Cleanup(r.Close)
	return r
}

func TestRegistryGet(t *testing.T) {
	r := newTestRegistry(t, map[RemoteId]*mockRuntime{
		"media.kodi": newMockRuntime(),
		"broken":     nil, // factory fails for this one
	})

	if _, err := r.Get("media.kodi"); err != nil {
		t.Errorf("Get(media.kodi) error = %v", err)
	}
	if _, err := r.Get("broken"); !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Get(broken) error = %v, want ErrRemoteUnavailable", err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrRemoteNotFound", err)
	}
}

func TestRegistryRemotesSorted(t *testing.T) {
	r := newTestRegistry(t, map[RemoteId]*mockRuntime{
		"zebra": newMockRuntime(),
		"apple": newMockRuntime(),
		"mango": newMockRuntime(),
	})

	got := r.Remotes()
	want := []RemoteId{"apple", "mango", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("Remotes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Remotes() = %v, want %v", got, want)
		}
	}
}

func TestRegistrySubmitRouting(t *testing.T) {
	rt := newMockRuntime()
	rt.actions["ping"] = func([]any) (any, Disposition, error) {
		return "pong", DispositionExecuted, nil
	}
	r := newTestRegistry(t, map[RemoteId]*mockRuntime{"echo": rt})

	res, err := r.Submit(context.Background(), "echo", &ActionRequest{Action: "ping"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Value != "pong" {
		t.Errorf("got value %v, want pong", res.Value)
	}

	if _, err := r.Submit(context.Background(), "nope", &ActionRequest{Action: "ping"}); !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("Submit(nope) error = %v, want ErrRemoteNotFound", err)
	}
}

func TestRegistryFailedRemoteDoesNotBlockOthers(t *testing.T) {
	rt := newMockRuntime()
	rt.actions["ok"] = func([]any) (any, Disposition, error) {
		return true, DispositionExecuted, nil
	}
	r := newTestRegistry(t, map[RemoteId]*mockRuntime{
		"good": rt,
		"bad":  nil,
	})

	if _, err := r.Submit(context.Background(), "good", &ActionRequest{Action: "ok"}); err != nil {
		t.Errorf("Submit(good) error = %v", err)
	}
	if _, err := r.Submit(context.Background(), "bad", &ActionRequest{Action: "ok"}); !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Submit(bad) error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestRegistryClose(t *testing.T) {
	rt := newMockRuntime()
	r := newTestRegistry(t, map[RemoteId]*mockRuntime{"one": rt})
	r.Close()

	if _, err := r.Submit(context.Background(), "one", &ActionRequest{Action: "x"}); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Submit() after Close error = %v, want ErrShuttingDown", err)
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if !rt.closed {
		t.Error("runtime not closed")
	}
}
