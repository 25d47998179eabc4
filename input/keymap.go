// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"fmt"
	"strings"
)

// Code is a Linux input event key code. The same logical names are used
// by every backend so scripts stay portable.
type Code uint16

// Linux input event types and codes used by the backends.
const (
	evSyn uint16 = 0x00
	evKey uint16 = 0x01
	evRel uint16 = 0x02

	relX      uint16 = 0x00
	relY      uint16 = 0x01
	relHWheel uint16 = 0x06
	relWheel  uint16 = 0x08

	btnLeftCode   Code = 0x110
	btnRightCode  Code = 0x111
	btnMiddleCode Code = 0x112

	keyLeftShift Code = 42
)

// keyCodes is the static, exhaustive mapping from logical key names to
// host key codes. Lookups are case-insensitive.
var keyCodes = buildKeyMap()

func buildKeyMap() map[string]Code {
	m := map[string]Code{
		"space":     57,
		"enter":     28,
		"return":    28,
		"backspace": 14,
		"tab":       15,
		"escape":    1,
		"esc":       1,
		"delete":    111,
		"home":      102,
		"end":       107,
		"pageup":    104,
		"pagedown":  109,

		"up":    103,
		"down":  108,
		"left":  105,
		"right": 106,

		"shift":   42,
		"ctrl":    29,
		"control": 29,
		"alt":     56,
		"super":   125,
		"meta":    125,

		"volumeup":      115,
		"volumedown":    114,
		"volumemute":    113,
		"mediaplaypause": 164,
		"mediastop":      166,
		"medianext":      163,
		"mediaprevious":  165,

		"scrollup":   177,
		"scrolldown": 178,
	}

	// Letters: KEY_A..KEY_Z are not contiguous on Linux.
	letters := map[string]Code{
		"a": 30, "b": 48, "c": 46, "d": 32, "e": 18, "f": 33, "g": 34,
		"h": 35, "i": 23, "j": 36, "k": 37, "l": 38, "m": 50, "n": 49,
		"o": 24, "p": 25, "q": 16, "r": 19, "s": 31, "t": 20, "u": 22,
		"v": 47, "w": 17, "x": 45, "y": 21, "z": 44,
	}
	for name, code := range letters {
		m[name] = code
	}

	// Digits: KEY_1..KEY_9 then KEY_0.
	for n := 1; n <= 9; n++ {
		m[fmt.Sprintf("%d", n)] = Code(1 + n)
	}
	m["0"] = 11

	// Function keys: F1..F10 contiguous, F11/F12 elsewhere.
	for n := 1; n <= 10; n++ {
		m[fmt.Sprintf("f%d", n)] = Code(58 + n)
	}
	m["f11"] = 87
	m["f12"] = 88

	return m
}

// Lookup resolves a logical key name to its host code. Unmapped names
// fail with ErrUnsupportedKey.
func Lookup(key string) (Code, error) {
	code, ok := keyCodes[strings.ToLower(key)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKey, key)
	}
	return code, nil
}

// Known reports whether the logical key name has a host mapping.
func Known(key string) bool {
	_, ok := keyCodes[strings.ToLower(key)]
	return ok
}

// IsModifier reports whether the logical key name is a modifier key.
func IsModifier(key string) bool {
	switch strings.ToLower(key) {
	case "shift", "ctrl", "control", "alt", "super", "meta":
		return true
	}
	return false
}

// charKey maps a typeable character to its key code and shift state.
func charKey(r rune) (Code, bool, error) {
	switch {
	case r >= 'a' && r <= 'z':
		code, _ := Lookup(string(r))
		return code, false, nil
	case r >= 'A' && r <= 'Z':
		code, _ := Lookup(strings.ToLower(string(r)))
		return code, true, nil
	case r >= '0' && r <= '9':
		code, _ := Lookup(string(r))
		return code, false, nil
	case r == ' ':
		return keyCodes["space"], false, nil
	case r == '\n':
		return keyCodes["enter"], false, nil
	case r == '\t':
		return keyCodes["tab"], false, nil
	default:
		return 0, false, fmt.Errorf("%w: character %q", ErrUnsupportedKey, r)
	}
}
