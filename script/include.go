// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
)

// resolve maps a script-supplied name to a path inside the remote's
// directory. Symlinks are resolved first so a link pointing outside the
// directory is rejected the same way a literal ../ is.
func (r *Runtime) resolve(name string) (string, error) {
	if r.scriptDir == "" {
		return "", fmt.Errorf("remote has no source directory")
	}
	resolved, err := filepath.EvalSymlinks(filepath.Join(r.scriptDir, name))
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q: %w", name, err)
	}
	rel, err := filepath.Rel(r.scriptDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside the remote directory", name)
	}
	return resolved, nil
}

// include loads and runs another script file from the remote's
// directory in the shared global scope.
func (r *Runtime) include(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	path, err := r.resolve(name)
	if err != nil {
		r.throw(err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		r.throw(fmt.Errorf("include %q: %w", name, err))
	}
	v, err := r.vm.RunScript(filepath.Base(path), string(src))
	if err != nil {
		r.throw(fmt.Errorf("include %q: %w", name, err))
	}
	return v
}

// loadSource backs require() with the same directory confinement as
// include().
func (r *Runtime) loadSource(path string) ([]byte, error) {
	resolved, err := r.resolve(path)
	if err != nil {
		return nil, require.ModuleFileDoesNotExistError
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, require.ModuleFileDoesNotExistError
	}
	return data, nil
}
