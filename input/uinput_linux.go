// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package input

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// uinput ioctl requests (linux/uinput.h).
const (
	uiSetEvBit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeyBit  = 0x40045565 // _IOW('U', 101, int)
	uiSetRelBit  = 0x40045566 // _IOW('U', 102, int)
	uiDevCreate  = 0x00005501 // _IO('U', 1)
	uiDevDestroy = 0x00005502 // _IO('U', 2)

	busVirtual = 0x06

	// sizeof(struct uinput_user_dev): 80-byte name, input_id, ff_effects_max,
	// four 64-entry abs arrays.
	userDevSize = 80 + 8 + 4 + 4*64*4

	// sizeof(struct input_event) on 64-bit: struct timeval + type + code + value.
	eventSize = 16 + 2 + 2 + 4
)

// uidevice is one virtual device node. The mutex is the single
// serialization point for writes; the underlying handle is not safely
// concurrent.
type uidevice struct {
	mu sync.Mutex
	f  *os.File
}

func (d *uidevice) emit(events []Event) error {
	buf := make([]byte, 0, len(events)*eventSize)
	for _, ev := range events {
		var rec [eventSize]byte
		// Zero timestamp; the kernel stamps injected events itself.
		binary.LittleEndian.PutUint16(rec[16:], ev.Type)
		binary.LittleEndian.PutUint16(rec[18:], ev.Code)
		binary.LittleEndian.PutUint32(rec[20:], uint32(ev.Value))
		buf = append(buf, rec[:]...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.f.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

func (d *uidevice) destroy() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	unix.IoctlSetInt(int(d.f.Fd()), uiDevDestroy, 0)
	return d.f.Close()
}

func createDevice(name string, keys []Code, relAxes []uint16) (*uidevice, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	fd := int(f.Fd())

	fail := func(err error) (*uidevice, error) {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}

	if len(keys) > 0 {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, int(evKey)); err != nil {
			return fail(err)
		}
		for _, code := range keys {
			if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(code)); err != nil {
				return fail(err)
			}
		}
	}
	if len(relAxes) > 0 {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, int(evRel)); err != nil {
			return fail(err)
		}
		for _, axis := range relAxes {
			if err := unix.IoctlSetInt(fd, uiSetRelBit, int(axis)); err != nil {
				return fail(err)
			}
		}
	}

	// Legacy uinput_user_dev setup: write the description, then create.
	var dev [userDevSize]byte
	copy(dev[:79], name)
	binary.LittleEndian.PutUint16(dev[80:], busVirtual) // bustype
	binary.LittleEndian.PutUint16(dev[82:], 0x1)        // vendor
	binary.LittleEndian.PutUint16(dev[84:], 0x1)        // product
	binary.LittleEndian.PutUint16(dev[86:], 0x1)        // version
	if _, err := f.Write(dev[:]); err != nil {
		return fail(err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fail(err)
	}

	return &uidevice{f: f}, nil
}

// UInput injects events through Linux uinput virtual devices: one
// keyboard and one mouse. It is safe for concurrent use from multiple
// worker goroutines; each device serializes its own writes.
type UInput struct {
	keyboard *uidevice
	mouse    *uidevice
}

// NewUInput opens /dev/uinput and registers the virtual devices.
func NewUInput() (Backend, error) {
	keys := make([]Code, 0, len(keyCodes))
	seen := make(map[Code]bool)
	for _, code := range keyCodes {
		if !seen[code] {
			seen[code] = true
			keys = append(keys, code)
		}
	}

	keyboard, err := createDevice("Deckhand Virtual Keyboard", keys, nil)
	if err != nil {
		return nil, err
	}

	mouse, err := createDevice("Deckhand Virtual Mouse",
		[]Code{btnLeftCode, btnRightCode, btnMiddleCode},
		[]uint16{relX, relY, relWheel, relHWheel})
	if err != nil {
		keyboard.destroy()
		return nil, err
	}

	return &UInput{keyboard: keyboard, mouse: mouse}, nil
}

// IsKey implements Backend.
func (u *UInput) IsKey(key string) bool { return Known(key) }

// KeyPress implements Backend.
func (u *UInput) KeyPress(key string) error {
	code, err := Lookup(key)
	if err != nil {
		return err
	}
	return u.keyboard.emit([]Event{
		{evKey, uint16(code), 1}, {evSyn, 0, 0},
	})
}

// KeyRelease implements Backend.
func (u *UInput) KeyRelease(key string) error {
	code, err := Lookup(key)
	if err != nil {
		return err
	}
	return u.keyboard.emit([]Event{
		{evKey, uint16(code), 0}, {evSyn, 0, 0},
	})
}

// KeyClick implements Backend. Press and release go out in one write so
// the pair can never interleave with another caller's events.
func (u *UInput) KeyClick(key string) error {
	code, err := Lookup(key)
	if err != nil {
		return err
	}
	return u.keyboard.emit([]Event{
		{evKey, uint16(code), 1}, {evSyn, 0, 0},
		{evKey, uint16(code), 0}, {evSyn, 0, 0},
	})
}

// TypeText implements Backend.
func (u *UInput) TypeText(text string) error {
	var events []Event
	for _, r := range text {
		code, shift, err := charKey(r)
		if err != nil {
			return err
		}
		if shift {
			events = append(events, Event{evKey, uint16(keyLeftShift), 1})
		}
		events = append(events,
			Event{evKey, uint16(code), 1},
			Event{evKey, uint16(code), 0})
		if shift {
			events = append(events, Event{evKey, uint16(keyLeftShift), 0})
		}
		events = append(events, Event{evSyn, 0, 0})
	}
	return u.keyboard.emit(events)
}

// MouseMove implements Backend.
func (u *UInput) MouseMove(dx, dy int) error {
	return u.mouse.emit([]Event{
		{evRel, relX, int32(dx)},
		{evRel, relY, int32(dy)},
		{evSyn, 0, 0},
	})
}

// ButtonPress implements Backend.
func (u *UInput) ButtonPress(b Button) error {
	return u.mouse.emit([]Event{
		{evKey, uint16(buttonCode(b)), 1}, {evSyn, 0, 0},
	})
}

// ButtonRelease implements Backend.
func (u *UInput) ButtonRelease(b Button) error {
	return u.mouse.emit([]Event{
		{evKey, uint16(buttonCode(b)), 0}, {evSyn, 0, 0},
	})
}

// ButtonClick implements Backend.
func (u *UInput) ButtonClick(b Button) error {
	code := uint16(buttonCode(b))
	return u.mouse.emit([]Event{
		{evKey, code, 1}, {evSyn, 0, 0},
		{evKey, code, 0}, {evSyn, 0, 0},
	})
}

// Scroll implements Backend.
func (u *UInput) Scroll(amount int, horizontal bool) error {
	axis := relWheel
	if horizontal {
		axis = relHWheel
	}
	return u.mouse.emit([]Event{
		{evRel, axis, int32(amount)}, {evSyn, 0, 0},
	})
}

// Close implements Backend.
func (u *UInput) Close() error {
	err := u.keyboard.destroy()
	if merr := u.mouse.destroy(); err == nil {
		err = merr
	}
	return err
}
