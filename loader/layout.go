// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// widgetKinds is the closed set of layout elements. Anything else in a
// layout.xml is a typo worth surfacing, not something to render blank.
var widgetKinds = map[string]bool{
	"layout": true,
	"row":    true,
	"grid":   true,
	"button": true,
	"label":  true,
	"text":   true,
	"toggle": true,
	"slider": true,
	"space":  true,
	"image":  true,
}

// Widget is one layout element. Attributes are kept generically so the
// renderer decides which ones matter per kind.
type Widget struct {
	Kind     string
	Attrs    map[string]string
	Text     string
	Children []Widget
}

// Attr returns the named attribute or "".
func (w *Widget) Attr(name string) string {
	return w.Attrs[name]
}

// UnmarshalXML implements xml.Unmarshaler, preserving child order
// across heterogeneous elements.
func (w *Widget) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	w.Kind = start.Name.Local
	if !widgetKinds[w.Kind] {
		return fmt.Errorf("unknown widget element <%s>", w.Kind)
	}
	w.Attrs = make(map[string]string, len(start.Attr))
	for _, attr := range start.Attr {
		w.Attrs[attr.Name.Local] = attr.Value
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child Widget
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			w.Children = append(w.Children, child)
		case xml.CharData:
			if s := strings.TrimSpace(string(t)); s != "" {
				w.Text += s
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Layout is a parsed layout.xml.
type Layout struct {
	Root Widget
}

// Title returns the layout's title attribute, if any.
func (l *Layout) Title() string {
	return l.Root.Attr("title")
}

// ParseLayout parses a layout.xml document. The document element must
// be <layout>.
func ParseLayout(data []byte) (*Layout, error) {
	var root Widget
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if root.Kind != "layout" {
		return nil, fmt.Errorf("invalid layout: document element is <%s>, want <layout>", root.Kind)
	}
	return &Layout{Root: root}, nil
}
