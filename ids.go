// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package deckhand

import (
	"errors"
	"path/filepath"
	"strings"
)

// RemoteId uniquely identifies one loaded remote for the lifetime of the
// process. It is derived from the remote's directory path relative to the
// remotes root, with path separators replaced by dots.
type RemoteId string

// ErrInvalidRemoteId is returned for empty or unrepresentable paths.
var ErrInvalidRemoteId = errors.New("invalid remote id")

// RemoteIdFromPath derives a RemoteId from a slash- or OS-separated
// relative path, e.g. "media/kodi" -> "media.kodi".
func RemoteIdFromPath(rel string) (RemoteId, error) {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "" || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidRemoteId
	}
	return RemoteId(strings.ReplaceAll(rel, "/", ".")), nil
}

func (id RemoteId) String() string { return string(id) }

// ActionId names a script-defined action function. It is unique within one
// remote's actions table but not across remotes.
type ActionId string

func (id ActionId) String() string { return string(id) }
