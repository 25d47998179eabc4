// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package input

import "fmt"

// NewUInput is only available on Linux.
func NewUInput() (Backend, error) {
	return nil, fmt.Errorf("%w: uinput requires linux", ErrInit)
}
