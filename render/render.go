// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns remote layouts into the HTML pages the server
// hands to clients. Widgets carry their action bindings as data-*
// attributes; the client script wires those to the action endpoint and
// applies pushed widget updates.
package render

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/deckhand-dev/deckhand/loader"
)

// Buffer accumulates HTML. Text and Attr escape; Raw does not.
type Buffer struct {
	sb strings.Builder
}

// Raw appends s verbatim.
func (b *Buffer) Raw(s string) *Buffer {
	b.sb.WriteString(s)
	return b
}

// Text appends s HTML-escaped.
func (b *Buffer) Text(s string) *Buffer {
	b.sb.WriteString(html.EscapeString(s))
	return b
}

// Attr appends a name="value" pair, escaped, with a leading space.
// Empty values are dropped entirely.
func (b *Buffer) Attr(name, value string) *Buffer {
	if value == "" {
		return b
	}
	b.sb.WriteString(" ")
	b.sb.WriteString(name)
	b.sb.WriteString(`="`)
	b.sb.WriteString(html.EscapeString(value))
	b.sb.WriteString(`"`)
	return b
}

// String returns the accumulated HTML.
func (b *Buffer) String() string {
	return b.sb.String()
}

func (b *Buffer) header(title string) {
	b.Raw("<!doctype html>\n<html>\n<head>\n")
	b.Raw(`<meta charset="utf-8">` + "\n")
	b.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	b.Raw("<title>").Text(title).Raw("</title>\n")
	b.Raw(`<link rel="stylesheet" href="/style.css">` + "\n")
	b.Raw("</head>\n<body>\n")
}

func (b *Buffer) footer() {
	b.Raw(`<script src="/app.js"></script>` + "\n")
	b.Raw("</body>\n</html>\n")
}

// Index renders the remote list page.
func Index(remotes []*loader.Remote) string {
	var b Buffer
	b.header("Deckhand")
	b.Raw("<h1>Remotes</h1>\n<ul class=\"dh-index\">\n")
	for _, rem := range remotes {
		href := "/r/" + url.PathEscape(string(rem.Id))
		b.Raw("<li><a")
		b.Attr("href", href)
		b.Raw(">").Text(rem.Label()).Raw("</a>")
		if rem.Meta.Description != "" {
			b.Raw(` <span class="dh-desc">`).Text(rem.Meta.Description).Raw("</span>")
		}
		b.Raw("</li>\n")
	}
	b.Raw("</ul>\n")
	b.footer()
	return b.String()
}

// RemotePage renders one remote's control surface. Remotes without a
// layout get a bare page; their actions are still reachable over the
// API and WebSocket.
func RemotePage(rem *loader.Remote) string {
	var b Buffer
	b.header(rem.Label())
	b.Raw("<main")
	b.Attr("class", "dh-remote")
	b.Attr("data-remote", string(rem.Id))
	b.Raw(">\n")
	b.Raw("<h1>").Text(rem.Label()).Raw("</h1>\n")
	if rem.Layout != nil {
		for _, child := range rem.Layout.Root.Children {
			widget(&b, rem, &child)
		}
	} else {
		b.Raw(`<p class="dh-empty">This remote has no layout.</p>` + "\n")
	}
	b.Raw("</main>\n")
	b.footer()
	return b.String()
}

// widget renders one layout element and its children.
func widget(b *Buffer, rem *loader.Remote, w *loader.Widget) {
	label := w.Attr("text")
	if label == "" {
		label = w.Text
	}

	switch w.Kind {
	case "row":
		b.Raw(`<div class="dh-row">` + "\n")
		for _, child := range w.Children {
			widget(b, rem, &child)
		}
		b.Raw("</div>\n")
	case "grid":
		b.Raw("<div")
		b.Attr("class", "dh-grid")
		b.Attr("style", gridStyle(w))
		b.Raw(">\n")
		for _, child := range w.Children {
			widget(b, rem, &child)
		}
		b.Raw("</div>\n")
	case "button":
		b.Raw("<button")
		b.Attr("class", "dh-button")
		b.Attr("data-widget", w.Attr("id"))
		b.Attr("data-ontap", w.Attr("ontap"))
		b.Attr("data-ondown", w.Attr("ondown"))
		b.Attr("data-onup", w.Attr("onup"))
		b.Raw(">").Text(label).Raw("</button>\n")
	case "toggle":
		b.Raw("<button")
		b.Attr("class", "dh-toggle")
		b.Attr("data-widget", w.Attr("id"))
		b.Attr("data-ontap", w.Attr("ontap"))
		b.Attr("data-checked", w.Attr("checked"))
		b.Raw(">").Text(label).Raw("</button>\n")
	case "label":
		b.Raw("<div")
		b.Attr("class", "dh-label")
		b.Attr("data-widget", w.Attr("id"))
		b.Raw(">").Text(label).Raw("</div>\n")
	case "text":
		b.Raw("<input")
		b.Attr("class", "dh-text")
		b.Attr("type", "text")
		b.Attr("data-widget", w.Attr("id"))
		b.Attr("data-onchange", w.Attr("onchange"))
		b.Attr("placeholder", w.Attr("hint"))
		b.Attr("value", w.Attr("value"))
		b.Raw(">\n")
	case "slider":
		b.Raw("<input")
		b.Attr("class", "dh-slider")
		b.Attr("type", "range")
		b.Attr("data-widget", w.Attr("id"))
		b.Attr("data-onchange", w.Attr("onchange"))
		b.Attr("min", attrOr(w, "min", "0"))
		b.Attr("max", attrOr(w, "max", "100"))
		b.Attr("value", w.Attr("value"))
		b.Raw(">\n")
	case "space":
		b.Raw(`<div class="dh-space"></div>` + "\n")
	case "image":
		b.Raw("<img")
		b.Attr("class", "dh-image")
		b.Attr("data-widget", w.Attr("id"))
		b.Attr("src", imageSource(rem, w))
		b.Attr("alt", label)
		b.Raw(">\n")
	}
}

func attrOr(w *loader.Widget, name, fallback string) string {
	if v := w.Attr(name); v != "" {
		return v
	}
	return fallback
}

func gridStyle(w *loader.Widget) string {
	if cols := w.Attr("cols"); cols != "" {
		return fmt.Sprintf("grid-template-columns: repeat(%s, 1fr)",
			html.EscapeString(cols))
	}
	return ""
}

// imageSource resolves an image widget's src. Only the remote's own
// icon is served; anything else must be an absolute URL the client can
// fetch itself.
func imageSource(rem *loader.Remote, w *loader.Widget) string {
	src := w.Attr("src")
	if src == "" || src == "icon" || src == "icon.png" {
		return "/r/" + url.PathEscape(string(rem.Id)) + "/icon"
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return ""
}
