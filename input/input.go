// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package input abstracts host input injection. One backend instance is
// shared by reference across all workers; implementations serialize their
// own device writes so callers never take a lock.
package input

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedKey is returned for logical key names with no host
	// mapping. Recoverable: the calling script sees it as an error value.
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrInit is returned when a backend cannot open its device.
	ErrInit = errors.New("failed to initialize input backend")

	// ErrSend is returned when a device write fails.
	ErrSend = errors.New("failed to send input event")
)

// Button is a logical mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// String returns the lowercase button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// ParseButton maps a button name to a Button. An empty name defaults to
// the left button.
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	default:
		return ButtonLeft, fmt.Errorf("unknown mouse button: %q", s)
	}
}

// Backend is the capability-typed interface over host input injection.
// All methods must be safe for concurrent use from multiple worker
// goroutines; the sub-writes of one logical call never interleave with
// another call's.
type Backend interface {
	// IsKey reports whether the logical key name has a host mapping.
	IsKey(key string) bool

	KeyPress(key string) error
	KeyRelease(key string) error
	KeyClick(key string) error

	// TypeText emits key events for each rune, applying shift where the
	// character requires it. Unmappable characters fail the whole call.
	TypeText(text string) error

	MouseMove(dx, dy int) error
	ButtonPress(b Button) error
	ButtonRelease(b Button) error
	ButtonClick(b Button) error

	// Scroll emits wheel movement; positive amounts scroll up (vertical)
	// or right (horizontal).
	Scroll(amount int, horizontal bool) error

	Close() error
}
