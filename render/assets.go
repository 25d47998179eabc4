// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package render

// AppJS is the client runtime served at /app.js. It binds the data-*
// handlers rendered into the page, posts actions to the remote's action
// endpoint and applies widget updates pushed over the WebSocket.
const AppJS = `"use strict";
(function () {
  var main = document.querySelector("main[data-remote]");
  if (!main) return;
  var remote = main.getAttribute("data-remote");
  var base = "/r/" + encodeURIComponent(remote);

  function send(action, args) {
    if (!action) return;
    fetch(base + "/action", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ action: action, args: args || [] })
    }).catch(function (err) { console.error("action failed", err); });
  }

  main.addEventListener("click", function (ev) {
    var el = ev.target.closest("[data-ontap]");
    if (el) send(el.getAttribute("data-ontap"));
  });
  main.addEventListener("pointerdown", function (ev) {
    var el = ev.target.closest("[data-ondown]");
    if (el) send(el.getAttribute("data-ondown"));
  });
  main.addEventListener("pointerup", function (ev) {
    var el = ev.target.closest("[data-onup]");
    if (el) send(el.getAttribute("data-onup"));
  });
  main.addEventListener("change", function (ev) {
    var el = ev.target.closest("[data-onchange]");
    if (el) send(el.getAttribute("data-onchange"), [el.value]);
  });

  function apply(update) {
    var el = main.querySelector('[data-widget="' + update.widget + '"]');
    if (!el) return;
    var props = update.properties || {};
    for (var key in props) {
      switch (key) {
      case "text":
        if (el.tagName === "INPUT") el.value = props[key];
        else el.textContent = props[key];
        break;
      case "value":
        el.value = props[key];
        break;
      case "checked":
        el.setAttribute("data-checked", props[key]);
        break;
      default:
        el.setAttribute("data-" + key, props[key]);
      }
    }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(proto + "//" + location.host + base + "/ws");
    ws.onmessage = function (ev) { apply(JSON.parse(ev.data)); };
    ws.onclose = function () { setTimeout(connect, 2000); };
  }
  connect();
})();
`

// StyleCSS is the stylesheet served at /style.css.
const StyleCSS = `:root { color-scheme: light dark; }
body { font-family: system-ui, sans-serif; margin: 0 auto; max-width: 40rem; padding: 1rem; }
h1 { font-size: 1.25rem; }
.dh-index { list-style: none; padding: 0; }
.dh-index li { margin: 0.5rem 0; }
.dh-desc { opacity: 0.7; font-size: 0.9em; margin-left: 0.5rem; }
.dh-row { display: flex; gap: 0.5rem; margin: 0.5rem 0; }
.dh-row > * { flex: 1; }
.dh-grid { display: grid; gap: 0.5rem; margin: 0.5rem 0; }
.dh-button, .dh-toggle { padding: 0.75rem; font-size: 1rem; border-radius: 0.5rem; }
.dh-toggle[data-checked="true"] { outline: 2px solid currentColor; }
.dh-label { padding: 0.5rem 0; }
.dh-text, .dh-slider { width: 100%; box-sizing: border-box; }
.dh-space { min-height: 1rem; }
.dh-image { max-width: 100%; }
.dh-empty { opacity: 0.7; }
`
