// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package loader discovers remote definitions on disk. A remote is a
// directory holding a control script plus optional metadata
// (meta.prop), default settings (settings.prop), a layout (layout.xml)
// and an icon. Directory nesting maps to dotted remote ids.
package loader

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/magiconair/properties"

	"github.com/deckhand-dev/deckhand"
)

// Meta mirrors the keys of a remote's meta.prop file.
type Meta struct {
	Label       string `properties:"label,default="`
	Author      string `properties:"author,default="`
	Description string `properties:"description,default="`
	Version     string `properties:"version,default="`
	Hidden      bool   `properties:"hidden,default=false"`
	// Platforms is a comma-separated allow list (linux, win, osx).
	// Empty means the remote runs anywhere.
	Platforms string `properties:"platforms,default="`
}

// Remote is one discovered remote definition, ready to be turned into
// a worker descriptor.
type Remote struct {
	Id         deckhand.RemoteId
	Dir        string
	ScriptPath string
	IconPath   string
	Meta       Meta
	Layout     *Layout
	// Settings holds the defaults from settings.prop; the store layer
	// overlays persisted values on top.
	Settings map[string]string
}

// Descriptor builds the worker descriptor for this remote. The settings
// map is copied so callers can overlay persisted values freely.
func (rem *Remote) Descriptor() *deckhand.Descriptor {
	settings := make(map[string]string, len(rem.Settings))
	for k, v := range rem.Settings {
		settings[k] = v
	}
	return &deckhand.Descriptor{
		Id:         rem.Id,
		ScriptPath: rem.ScriptPath,
		ScriptDir:  rem.Dir,
		Settings:   settings,
	}
}

// Label returns the display label, falling back to the directory name.
func (rem *Remote) Label() string {
	if rem.Meta.Label != "" {
		return rem.Meta.Label
	}
	return filepath.Base(rem.Dir)
}

// platformTag is the platform name used in script suffixes and the
// meta.prop platforms list.
func platformTag() string {
	switch runtime.GOOS {
	case "windows":
		return "win"
	case "darwin":
		return "osx"
	default:
		return "linux"
	}
}

// compatible reports whether the remote's platform allow list admits
// this host.
func (m *Meta) compatible() bool {
	if m.Platforms == "" {
		return true
	}
	tag := platformTag()
	for _, p := range strings.Split(m.Platforms, ",") {
		if strings.TrimSpace(p) == tag {
			return true
		}
	}
	return false
}

// Load walks root and returns every visible, platform-compatible
// remote. A malformed remote is logged and skipped rather than failing
// the whole scan; only I/O errors on the walk itself abort.
func Load(root string, logger *slog.Logger) ([]*Remote, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var remotes []*Remote
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}

		rem, err := loadDir(root, path)
		if err != nil {
			logger.Warn("skipping malformed remote", "dir", path, "error", err)
			return fs.SkipDir
		}
		if rem == nil {
			return nil
		}

		// A remote directory's subdirectories are its resources, not
		// further remotes.
		switch {
		case rem.Meta.Hidden:
			logger.Debug("skipping hidden remote", "remote", rem.Id)
		case !rem.Meta.compatible():
			logger.Debug("skipping incompatible remote",
				"remote", rem.Id, "platforms", rem.Meta.Platforms)
		default:
			remotes = append(remotes, rem)
		}
		return fs.SkipDir
	})
	if err != nil {
		return nil, err
	}
	return remotes, nil
}

// loadDir reads one directory as a remote. It returns (nil, nil) when
// the directory carries no remote script at all.
func loadDir(root, dir string) (*Remote, error) {
	script := findScript(dir)
	if script == "" {
		return nil, nil
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, err
	}
	id, err := deckhand.RemoteIdFromPath(rel)
	if err != nil {
		return nil, err
	}

	rem := &Remote{
		Id:         id,
		Dir:        dir,
		ScriptPath: script,
	}

	if p, err := loadProperties(platformFile(dir, "meta", ".prop")); err != nil {
		return nil, err
	} else if p != nil {
		if err := p.Decode(&rem.Meta); err != nil {
			return nil, err
		}
	}

	if p, err := loadProperties(platformFile(dir, "settings", ".prop")); err != nil {
		return nil, err
	} else if p != nil {
		rem.Settings = p.Map()
	}

	if layoutPath := platformFile(dir, "layout", ".xml"); layoutPath != "" {
		data, err := os.ReadFile(layoutPath)
		if err != nil {
			return nil, err
		}
		layout, err := ParseLayout(data)
		if err != nil {
			return nil, err
		}
		rem.Layout = layout
	}

	rem.IconPath = platformFile(dir, "icon", ".png")

	return rem, nil
}

// findScript picks the control script for this host: the
// platform-specific variant wins over the generic one.
func findScript(dir string) string {
	return platformFile(dir, "remote", ".js")
}

// platformFile resolves base+ext in dir with platform fallback, e.g.
// layout_linux.xml before layout.xml. Returns "" when neither exists.
func platformFile(dir, base, ext string) string {
	candidates := []string{
		base + "_" + platformTag() + ext,
		base + ext,
	}
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// loadProperties reads a .prop file, returning nil without error when
// the file does not exist.
func loadProperties(path string) (*properties.Properties, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return properties.Load(data, properties.UTF8)
}
