// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndSettings(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("kodi", map[string]string{"host": "10.0.0.2", "port": "8080"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Settings("kodi")
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if got["host"] != "10.0.0.2" || got["port"] != "8080" {
		t.Errorf("settings = %v", got)
	}
}

func TestPutUpserts(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("kodi", map[string]string{"host": "old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("kodi", map[string]string{"host": "new"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Settings("kodi")
	if err != nil {
		t.Fatal(err)
	}
	if got["host"] != "new" {
		t.Errorf("host = %q, want new", got["host"])
	}
	if len(got) != 1 {
		t.Errorf("settings = %v, want a single key", got)
	}
}

func TestSettingsIsolatedPerRemote(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put("a", map[string]string{"k": "for-a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("b", map[string]string{"k": "for-b"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Settings("a")
	if err != nil {
		t.Fatal(err)
	}
	if got["k"] != "for-a" {
		t.Errorf("settings for a = %v", got)
	}
}

func TestSettingsUnknownRemoteEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Settings("ghost")
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("settings = %v, want empty", got)
	}
}

func TestPutEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("kodi", nil); err != nil {
		t.Errorf("Put(nil) error = %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("kodi", map[string]string{"host": "kept"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Settings("kodi")
	if err != nil {
		t.Fatal(err)
	}
	if got["host"] != "kept" {
		t.Errorf("host = %q after reopen, want kept", got["host"])
	}
}
