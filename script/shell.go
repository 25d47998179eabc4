// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dop251/goja"
)

// scriptModule builds the script capability namespace. It only exists
// when the factory was created with WithShell; otherwise scripts cannot
// name it at all.
func (r *Runtime) scriptModule() *goja.Object {
	m := r.vm.NewObject()
	m.Set("shell", r.shell)
	return m
}

// shell runs one command through the configured shell and returns an
// object with stdout, stderr and code. A single-line command goes
// through `sh -c`; a multi-line body is written to a temporary script
// so here-documents and control flow work as written.
func (r *Runtime) shell(call goja.FunctionCall) goja.Value {
	command := call.Argument(0).String()
	if command == "" || goja.IsUndefined(call.Argument(0)) {
		r.throwType("script.shell: command must not be empty")
	}

	var cmd *exec.Cmd
	if strings.ContainsRune(command, '\n') {
		tmp, err := os.CreateTemp("", "deckhand-*.sh")
		if err != nil {
			r.throw(fmt.Errorf("script.shell: %w", err))
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.WriteString(command); err != nil {
			tmp.Close()
			r.throw(fmt.Errorf("script.shell: %w", err))
		}
		if err := tmp.Close(); err != nil {
			r.throw(fmt.Errorf("script.shell: %w", err))
		}
		cmd = exec.Command(r.cfg.shellPath, tmp.Name())
	} else {
		cmd = exec.Command(r.cfg.shellPath, "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.throw(fmt.Errorf("script.shell: %w", err))
		}
		code = exitErr.ExitCode()
	}

	result := r.vm.NewObject()
	result.Set("stdout", stdout.String())
	result.Set("stderr", stderr.String())
	result.Set("code", code)
	return result
}
