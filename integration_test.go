// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deckhand-dev/deckhand"
	"github.com/deckhand-dev/deckhand/input"
	"github.com/deckhand-dev/deckhand/script"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startRemote loads one remote from source and returns the registry it
// lives in plus the recording backend behind it.
func startRemote(t *testing.T, source string, settings map[string]string) (*deckhand.Registry, *input.Memory) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "remote.js")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	mem := input.NewMemory()
	registry := deckhand.NewRegistry(
		[]*deckhand.Descriptor{{
			Id:         "itest",
			ScriptPath: path,
			ScriptDir:  dir,
			Settings:   settings,
		}},
		script.NewFactory(mem, script.WithLogger(quietLogger())),
		deckhand.WithLogger(quietLogger()),
	)
	t.Cleanup(registry.Close)

	_, err := registry.Get("itest")
	require.NoError(t, err, "remote failed to start")
	return registry, mem
}

func submit(t *testing.T, registry *deckhand.Registry, action string, args ...any) *deckhand.ActionResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := registry.Submit(ctx, "itest", &deckhand.ActionRequest{
		Id:     "req-" + action,
		Action: deckhand.ActionId(action),
		Args:   args,
	})
	require.NoError(t, err)
	return res
}

func TestIntegrationKeyAction(t *testing.T) {
	registry, mem := startRemote(t, `
		actions.toggle_mute = function () {
			libs.keyboard.press("volumemute");
			return "muted";
		};
	`, nil)

	res := submit(t, registry, "toggle_mute")
	require.True(t, res.OK)
	require.Equal(t, deckhand.DispositionExecuted, res.Disposition)
	require.Equal(t, "muted", res.Value)

	groups := mem.Groups()
	require.Len(t, groups, 1)
	require.Equal(t, "click volumemute", groups[0].Call)
	require.Len(t, groups[0].Events, 4, "press, syn, release, syn")
}

func TestIntegrationUnknownAction(t *testing.T) {
	registry, _ := startRemote(t, `actions.known = function () {};`, nil)

	res := submit(t, registry, "does_not_exist")
	require.False(t, res.OK)
	require.Equal(t, deckhand.DispositionNotFound, res.Disposition)
}

func TestIntegrationTimerPublishesUpdate(t *testing.T) {
	registry, _ := startRemote(t, `
		actions.start = function () {
			libs.timer.timeout(function () {
				libs.server.update({ id: "status", text: "done" });
			}, 20);
		};
	`, nil)

	sub, err := registry.Subscribe("itest")
	require.NoError(t, err)
	defer sub.Close()

	res := submit(t, registry, "start")
	require.True(t, res.OK)

	select {
	case update := <-sub.Updates():
		require.Equal(t, deckhand.RemoteId("itest"), update.Remote)
		require.Equal(t, "status", update.Widget)
		require.Equal(t, "done", update.Properties["text"])
	case <-time.After(2 * time.Second):
		t.Fatal("no update received from timer callback")
	}
}

func TestIntegrationTimerCancel(t *testing.T) {
	registry, _ := startRemote(t, `
		var pending = 0;
		actions.arm = function () {
			pending = libs.timer.timeout(function () {
				libs.server.update({ id: "status", text: "fired" });
			}, 40);
		};
		actions.disarm = function () {
			return libs.timer.cancel(pending);
		};
	`, nil)

	sub, err := registry.Subscribe("itest")
	require.NoError(t, err)
	defer sub.Close()

	submit(t, registry, "arm")
	res := submit(t, registry, "disarm")
	require.Equal(t, true, res.Value, "cancel should find the pending timer")

	select {
	case update := <-sub.Updates():
		t.Fatalf("cancelled timer still fired: %+v", update)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestIntegrationPreactionVeto(t *testing.T) {
	registry, mem := startRemote(t, `
		preaction = function (name) {
			return name !== "blocked";
		};
		actions.blocked = function () {
			libs.keyboard.press("a");
		};
		actions.allowed = function () {
			return 7;
		};
	`, nil)

	res := submit(t, registry, "blocked")
	require.False(t, res.OK)
	require.Equal(t, deckhand.DispositionCancelled, res.Disposition)
	require.Empty(t, mem.Groups(), "vetoed action must not touch the backend")

	res = submit(t, registry, "allowed")
	require.True(t, res.OK)
	require.Equal(t, deckhand.DispositionExecuted, res.Disposition)
	require.Equal(t, int64(7), res.Value)
}

func TestIntegrationPreactionHandled(t *testing.T) {
	registry, mem := startRemote(t, `
		preaction = function (name) {
			if (name === "quiet") return "handled";
			return true;
		};
		postaction = function (name) {
			libs.server.update({ id: "post", text: name });
		};
		actions.quiet = function () {
			libs.keyboard.press("a");
		};
	`, nil)

	sub, err := registry.Subscribe("itest")
	require.NoError(t, err)
	defer sub.Close()

	res := submit(t, registry, "quiet")
	require.True(t, res.OK)
	require.Equal(t, deckhand.DispositionHandled, res.Disposition)
	require.Empty(t, mem.Groups(), "handled action must be skipped")

	// Postaction still runs for handled calls.
	select {
	case update := <-sub.Updates():
		require.Equal(t, "post", update.Widget)
		require.Equal(t, "quiet", update.Properties["text"])
	case <-time.After(2 * time.Second):
		t.Fatal("postaction did not run")
	}
}

func TestIntegrationSettings(t *testing.T) {
	registry, _ := startRemote(t, `
		actions.get_host = function () {
			return settings.host;
		};
	`, map[string]string{"host": "10.0.0.5"})

	res := submit(t, registry, "get_host")
	require.Equal(t, "10.0.0.5", res.Value)

	h, err := registry.Get("itest")
	require.NoError(t, err)
	require.NoError(t, h.ApplySettings(context.Background(), map[string]string{"host": "10.0.0.9"}))

	res = submit(t, registry, "get_host")
	require.Equal(t, "10.0.0.9", res.Value)
}

func TestIntegrationCapabilityErrorsAreCatchable(t *testing.T) {
	registry, _ := startRemote(t, `
		actions.careful = function () {
			try {
				libs.keyboard.press("nosuchkey");
				return "sent";
			} catch (e) {
				return "caught";
			}
		};
		actions.careless = function () {
			libs.keyboard.press("nosuchkey");
		};
	`, nil)

	res := submit(t, registry, "careful")
	require.True(t, res.OK)
	require.Equal(t, "caught", res.Value)

	res = submit(t, registry, "careless")
	require.False(t, res.OK)
	require.Equal(t, deckhand.DispositionFailed, res.Disposition)
	require.Contains(t, res.Err, "unsupported key")
}

func TestIntegrationBadScriptUnavailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.js")
	require.NoError(t, os.WriteFile(path, []byte(`actions.broken = function ( {`), 0o644))

	registry := deckhand.NewRegistry(
		[]*deckhand.Descriptor{{Id: "broken", ScriptPath: path, ScriptDir: dir}},
		script.NewFactory(input.NewMemory(), script.WithLogger(quietLogger())),
		deckhand.WithLogger(quietLogger()),
	)
	t.Cleanup(registry.Close)

	_, err := registry.Get("broken")
	require.True(t, errors.Is(err, deckhand.ErrRemoteUnavailable), "got %v", err)
}

func TestIntegrationSerializedExecution(t *testing.T) {
	registry, mem := startRemote(t, `
		actions.pair = function () {
			libs.keyboard.press("a");
			libs.keyboard.press("b");
		};
	`, nil)

	const callers, perCaller = 8, 5
	errCh := make(chan error, callers*perCaller)
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perCaller; i++ {
				_, err := registry.Submit(context.Background(), "itest",
					&deckhand.ActionRequest{Action: "pair"})
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	groups := mem.Groups()
	require.Len(t, groups, callers*perCaller*2)
	for i, g := range groups {
		want := "click a"
		if i%2 == 1 {
			want = "click b"
		}
		require.Equalf(t, want, g.Call, "interleaved execution at group %d: %v", i, groups)
	}
}

func TestIntegrationArgumentsReachScript(t *testing.T) {
	registry, _ := startRemote(t, `
		actions.sum = function (a, b) {
			return a + b;
		};
	`, nil)

	res := submit(t, registry, "sum", 2, 3)
	require.True(t, res.OK)
	require.Equal(t, int64(5), res.Value, fmt.Sprintf("got %T", res.Value))
}
