// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package script implements the deckhand.Runtime interface on the Goja
// JavaScript engine. Each runtime is one isolated interpreter with the
// global tables settings, events and actions, and a fixed, closed
// capability set injected at construction: keyboard, mouse, timer,
// server and (when enabled) script. Nothing else is reachable from
// script code; file loading via include() and require() is confined to
// the remote's own directory.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/deckhand-dev/deckhand"
	"github.com/deckhand-dev/deckhand/input"
)

// config holds per-factory runtime configuration.
type config struct {
	shellEnabled bool
	shellPath    string
	logger       *slog.Logger
}

// Option configures the runtimes a factory creates.
type Option func(*config)

// WithShell enables the script capability (restricted OS process
// invocation). Disabled by default; without it the namespace does not
// exist at all.
func WithShell() Option {
	return func(c *config) { c.shellEnabled = true }
}

// WithShellPath sets the shell used for single-command invocations.
func WithShellPath(path string) Option {
	return func(c *config) {
		if path != "" {
			c.shellPath = path
		}
	}
}

// WithLogger configures the logger used for script-side diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewFactory returns a deckhand.RuntimeFactory producing Goja runtimes
// that drive the given input backend. The backend is shared by reference
// across every runtime the factory creates.
func NewFactory(backend input.Backend, opts ...Option) deckhand.RuntimeFactory {
	cfg := &config{
		shellPath: "/bin/sh",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(desc *deckhand.Descriptor, host deckhand.Host) (deckhand.Runtime, error) {
		return newRuntime(desc, host, backend, cfg)
	}
}

// Runtime is one isolated Goja interpreter bound to a single worker.
type Runtime struct {
	vm      *goja.Runtime
	host    deckhand.Host
	backend input.Backend
	desc    *deckhand.Descriptor
	cfg     *config
	logger  *slog.Logger

	// scriptDir is the symlink-resolved remote directory; include() and
	// require() refuse anything that escapes it.
	scriptDir string
}

func newRuntime(desc *deckhand.Descriptor, host deckhand.Host, backend input.Backend, cfg *config) (*Runtime, error) {
	r := &Runtime{
		vm:      goja.New(),
		host:    host,
		backend: backend,
		desc:    desc,
		cfg:     cfg,
		logger:  cfg.logger.With("remote", desc.Id),
	}

	if desc.ScriptDir != "" {
		resolved, err := filepath.EvalSymlinks(desc.ScriptDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve remote directory: %w", err)
		}
		r.scriptDir = resolved
	}

	r.vm.Set("settings", r.vm.NewObject())
	r.vm.Set("events", r.vm.NewObject())
	r.vm.Set("actions", r.vm.NewObject())

	registry := require.NewRegistry(require.WithLoader(r.loadSource))
	registry.Enable(r.vm)
	console.Enable(r.vm)

	libs := r.vm.NewObject()
	libs.Set("keyboard", r.keyboardModule())
	libs.Set("mouse", r.mouseModule())
	libs.Set("timer", r.timerModule())
	libs.Set("server", r.serverModule())
	if cfg.shellEnabled {
		libs.Set("script", r.scriptModule())
		osObj := r.vm.NewObject()
		osObj.Set("script", r.shell)
		r.vm.Set("os", osObj)
	}
	r.vm.Set("libs", libs)
	r.vm.Set("include", r.include)

	if desc.ScriptPath != "" {
		src, err := os.ReadFile(desc.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
		if _, err := r.vm.RunScript(filepath.Base(desc.ScriptPath), string(src)); err != nil {
			return nil, fmt.Errorf("failed to load script: %w", err)
		}
	}

	if len(desc.Settings) > 0 {
		if err := r.ApplySettings(desc.Settings); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// globalObject returns the named global as an object, or nil if the
// script replaced it with something unusable.
func (r *Runtime) globalObject(name string) *goja.Object {
	v := r.vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.ToObject(r.vm)
}

func (r *Runtime) namedFunction(table, name string) (goja.Callable, bool) {
	obj := r.globalObject(table)
	if obj == nil {
		return nil, false
	}
	return goja.AssertFunction(obj.Get(name))
}

// HasAction implements deckhand.Runtime.
func (r *Runtime) HasAction(action deckhand.ActionId) bool {
	_, ok := r.namedFunction("actions", string(action))
	return ok
}

// CallAction implements deckhand.Runtime. It invokes preaction, the
// action and postaction with the three-outcome hook contract: preaction
// returning false cancels the call entirely, returning "handled" skips
// the action but counts as success.
func (r *Runtime) CallAction(action deckhand.ActionId, args []any) (any, deckhand.Disposition, error) {
	fn, ok := r.namedFunction("actions", string(action))
	if !ok {
		return nil, deckhand.DispositionNotFound, fmt.Errorf("no action %q", action)
	}

	jsArgs := make([]goja.Value, 0, len(args))
	for _, a := range args {
		jsArgs = append(jsArgs, r.vm.ToValue(a))
	}

	preaction, hasPre := goja.AssertFunction(r.vm.Get("preaction"))
	postaction, hasPost := goja.AssertFunction(r.vm.Get("postaction"))

	callPost := func(result goja.Value) error {
		if !hasPost {
			return nil
		}
		postArgs := make([]goja.Value, 0, len(jsArgs)+2)
		postArgs = append(postArgs, r.vm.ToValue(string(action)))
		postArgs = append(postArgs, jsArgs...)
		postArgs = append(postArgs, result)
		if _, err := postaction(goja.Undefined(), postArgs...); err != nil {
			return fmt.Errorf("postaction failed: %w", err)
		}
		return nil
	}

	if hasPre {
		preArgs := make([]goja.Value, 0, len(jsArgs)+1)
		preArgs = append(preArgs, r.vm.ToValue(string(action)))
		preArgs = append(preArgs, jsArgs...)
		outcome, err := preaction(goja.Undefined(), preArgs...)
		if err != nil {
			return nil, deckhand.DispositionFailed, fmt.Errorf("preaction failed: %w", err)
		}
		switch v := outcome.Export().(type) {
		case bool:
			if !v {
				return nil, deckhand.DispositionCancelled, nil
			}
		case string:
			if v == "handled" {
				if err := callPost(goja.Undefined()); err != nil {
					return nil, deckhand.DispositionFailed, err
				}
				return nil, deckhand.DispositionHandled, nil
			}
		}
	}

	ret, err := fn(goja.Undefined(), jsArgs...)
	if err != nil {
		return nil, deckhand.DispositionFailed, fmt.Errorf("action %q failed: %w", action, err)
	}

	if err := callPost(ret); err != nil {
		return nil, deckhand.DispositionFailed, err
	}

	return ret.Export(), deckhand.DispositionExecuted, nil
}

// TriggerEvent implements deckhand.Runtime. A missing handler is a no-op.
func (r *Runtime) TriggerEvent(name string) error {
	fn, ok := r.namedFunction("events", name)
	if !ok {
		return nil
	}
	if _, err := fn(goja.Undefined()); err != nil {
		return fmt.Errorf("event %q failed: %w", name, err)
	}
	return nil
}

// ApplySettings implements deckhand.Runtime.
func (r *Runtime) ApplySettings(settings map[string]string) error {
	obj := r.globalObject("settings")
	if obj == nil {
		return fmt.Errorf("settings global is not a table")
	}
	for key, value := range settings {
		if err := obj.Set(key, value); err != nil {
			return fmt.Errorf("failed to set setting %q: %w", key, err)
		}
	}
	return nil
}

// Close implements deckhand.Runtime. Goja interpreters hold no external
// resources; dropping the reference is enough.
func (r *Runtime) Close() error {
	return nil
}

// throw raises err as a catchable exception in the calling script.
func (r *Runtime) throw(err error) {
	panic(r.vm.NewGoError(err))
}

func (r *Runtime) throwType(format string, args ...any) {
	panic(r.vm.NewTypeError(fmt.Sprintf(format, args...)))
}
