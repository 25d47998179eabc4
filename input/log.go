// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package input

import "log/slog"

// Log is a backend that writes events to the log instead of a device.
// It is the fallback when no hardware backend can be opened, keeping
// remotes usable for development on any platform.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging backend. A nil logger uses slog.Default.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// IsKey implements Backend.
func (l *Log) IsKey(key string) bool { return Known(key) }

// KeyPress implements Backend.
func (l *Log) KeyPress(key string) error {
	if _, err := Lookup(key); err != nil {
		return err
	}
	l.logger.Info("key down", "key", key)
	return nil
}

// KeyRelease implements Backend.
func (l *Log) KeyRelease(key string) error {
	if _, err := Lookup(key); err != nil {
		return err
	}
	l.logger.Info("key up", "key", key)
	return nil
}

// KeyClick implements Backend.
func (l *Log) KeyClick(key string) error {
	if _, err := Lookup(key); err != nil {
		return err
	}
	l.logger.Info("key click", "key", key)
	return nil
}

// TypeText implements Backend.
func (l *Log) TypeText(text string) error {
	for _, r := range text {
		if _, _, err := charKey(r); err != nil {
			return err
		}
	}
	l.logger.Info("typing text", "text", text)
	return nil
}

// MouseMove implements Backend.
func (l *Log) MouseMove(dx, dy int) error {
	l.logger.Info("mouse move", "dx", dx, "dy", dy)
	return nil
}

// ButtonPress implements Backend.
func (l *Log) ButtonPress(b Button) error {
	l.logger.Info("mouse button down", "button", b.String())
	return nil
}

// ButtonRelease implements Backend.
func (l *Log) ButtonRelease(b Button) error {
	l.logger.Info("mouse button up", "button", b.String())
	return nil
}

// ButtonClick implements Backend.
func (l *Log) ButtonClick(b Button) error {
	l.logger.Info("mouse button click", "button", b.String())
	return nil
}

// Scroll implements Backend.
func (l *Log) Scroll(amount int, horizontal bool) error {
	l.logger.Info("scroll", "amount", amount, "horizontal", horizontal)
	return nil
}

// Close implements Backend.
func (l *Log) Close() error { return nil }
