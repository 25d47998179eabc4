// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		key  string
		want Code
	}{
		{"a", 30},
		{"A", 30}, // case-insensitive
		{"z", 44},
		{"1", 2},
		{"0", 11},
		{"f1", 59},
		{"f10", 68},
		{"f11", 87},
		{"f12", 88},
		{"enter", 28},
		{"return", 28},
		{"volumemute", 113},
		{"ctrl", 29},
	}
	for _, tt := range tests {
		got, err := Lookup(tt.key)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("hyperspace"); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("Lookup(hyperspace) error = %v, want ErrUnsupportedKey", err)
	}
	if Known("hyperspace") {
		t.Error("Known(hyperspace) = true")
	}
	if !Known("Space") {
		t.Error("Known(Space) = false")
	}
}

func TestIsModifier(t *testing.T) {
	for _, key := range []string{"shift", "Ctrl", "control", "alt", "super", "meta"} {
		if !IsModifier(key) {
			t.Errorf("IsModifier(%q) = false", key)
		}
	}
	for _, key := range []string{"a", "enter", "f1", ""} {
		if IsModifier(key) {
			t.Errorf("IsModifier(%q) = true", key)
		}
	}
}

func TestCharKey(t *testing.T) {
	tests := []struct {
		r     rune
		want  Code
		shift bool
	}{
		{'a', 30, false},
		{'A', 30, true},
		{'7', 8, false},
		{' ', 57, false},
		{'\n', 28, false},
		{'\t', 15, false},
	}
	for _, tt := range tests {
		code, shift, err := charKey(tt.r)
		if err != nil {
			t.Errorf("charKey(%q) error = %v", tt.r, err)
			continue
		}
		if code != tt.want || shift != tt.shift {
			t.Errorf("charKey(%q) = (%d, %v), want (%d, %v)", tt.r, code, shift, tt.want, tt.shift)
		}
	}

	if _, _, err := charKey('€'); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("charKey(€) error = %v, want ErrUnsupportedKey", err)
	}
}

func TestParseButton(t *testing.T) {
	tests := []struct {
		name string
		want Button
	}{
		{"", ButtonLeft},
		{"left", ButtonLeft},
		{"Right", ButtonRight},
		{"middle", ButtonMiddle},
	}
	for _, tt := range tests {
		got, err := ParseButton(tt.name)
		if err != nil {
			t.Errorf("ParseButton(%q) error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseButton(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, err := ParseButton("fourth"); err == nil {
		t.Error("ParseButton(fourth) succeeded")
	}
}
