// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"

	"github.com/deckhand-dev/deckhand/loader"
)

func layoutRemote(t *testing.T, layoutXML string) *loader.Remote {
	t.Helper()
	layout, err := loader.ParseLayout([]byte(layoutXML))
	if err != nil {
		t.Fatalf("ParseLayout() error = %v", err)
	}
	return &loader.Remote{
		Id:     "media.kodi",
		Dir:    "/tmp/kodi",
		Meta:   loader.Meta{Label: "Kodi", Description: "Media center"},
		Layout: layout,
	}
}

func TestIndexListsRemotes(t *testing.T) {
	html := Index([]*loader.Remote{
		{Id: "kodi", Meta: loader.Meta{Label: "Kodi"}},
		{Id: "media.spotify", Dir: "/tmp/spotify"},
	})

	if !strings.Contains(html, `href="/r/kodi"`) {
		t.Error("missing kodi link")
	}
	if !strings.Contains(html, `href="/r/media.spotify"`) {
		t.Error("missing dotted-id link")
	}
	if !strings.Contains(html, ">Kodi</a>") {
		t.Error("missing label")
	}
	if !strings.Contains(html, "spotify") {
		t.Error("missing fallback label")
	}
}

func TestRemotePageWidgets(t *testing.T) {
	rem := layoutRemote(t, `<layout title="Player">
		<row>
			<button id="play" text="Play" ontap="play_pause"/>
		</row>
		<slider id="vol" onchange="set_volume"/>
		<label id="status">Stopped</label>
	</layout>`)

	html := RemotePage(rem)

	for _, want := range []string{
		`data-remote="media.kodi"`,
		`data-ontap="play_pause"`,
		`data-widget="play"`,
		`data-onchange="set_volume"`,
		`type="range"`,
		`min="0"`,
		`max="100"`,
		`data-widget="status"`,
		">Stopped</div>",
		`<script src="/app.js">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
}

func TestRemotePageEscaping(t *testing.T) {
	rem := layoutRemote(t, `<layout>
		<button id="x" text="&lt;script&gt;alert(1)&lt;/script&gt;" ontap="go"/>
	</layout>`)

	html := RemotePage(rem)
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("widget text not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped text missing")
	}
}

func TestRemotePageWithoutLayout(t *testing.T) {
	html := RemotePage(&loader.Remote{Id: "bare", Dir: "/tmp/bare"})
	if !strings.Contains(html, "dh-empty") {
		t.Error("missing empty-layout placeholder")
	}
}

func TestImageSource(t *testing.T) {
	rem := layoutRemote(t, `<layout>
		<image id="a"/>
		<image id="b" src="https://example.com/x.png"/>
		<image id="c" src="../../etc/passwd"/>
	</layout>`)

	html := RemotePage(rem)
	if !strings.Contains(html, `src="/r/media.kodi/icon"`) {
		t.Error("default image src should be the remote icon")
	}
	if !strings.Contains(html, `src="https://example.com/x.png"`) {
		t.Error("absolute URL dropped")
	}
	if strings.Contains(html, "passwd") {
		t.Error("relative path leaked into src")
	}
}

func TestBufferAttrEscapes(t *testing.T) {
	var b Buffer
	b.Raw("<a").Attr("href", `"><script>`).Raw(">")
	got := b.String()
	if strings.Contains(got, "<script>") {
		t.Errorf("attribute not escaped: %s", got)
	}
	if !strings.Contains(got, "&#34;&gt;&lt;script&gt;") {
		t.Errorf("unexpected escaping: %s", got)
	}
}
