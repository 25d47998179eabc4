// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpd exposes loaded remotes over HTTP: rendered control
// pages, a JSON action endpoint, live update streams over WebSocket
// and SSE, and settings updates. Access requires the server's login
// token, carried in a cookie after visiting the login URL once.
package httpd

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/deckhand-dev/deckhand"
	"github.com/deckhand-dev/deckhand/loader"
	"github.com/deckhand-dev/deckhand/render"
	"github.com/deckhand-dev/deckhand/store"
)

const authCookie = "deckhand_auth"

// Server serves the HTTP surface for one registry of remotes.
type Server struct {
	registry *deckhand.Registry
	remotes  map[deckhand.RemoteId]*loader.Remote
	ordered  []*loader.Remote
	store    *store.Store // nil disables settings persistence
	token    string
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New builds a server over the given registry and remote definitions.
func New(registry *deckhand.Registry, remotes []*loader.Remote, st *store.Store, token string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	byId := make(map[deckhand.RemoteId]*loader.Remote, len(remotes))
	for _, rem := range remotes {
		byId[rem.Id] = rem
	}
	return &Server{
		registry: registry,
		remotes:  byId,
		ordered:  remotes,
		store:    st,
		token:    token,
		logger:   logger,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{"bearer." + token},
			// Same-origin policy has no value on a LAN-local server
			// reached by IP; the token is the access control.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/{token}", s.handleLogin)
	mux.HandleFunc("GET /app.js", asset("text/javascript; charset=utf-8", render.AppJS))
	mux.HandleFunc("GET /style.css", asset("text/css; charset=utf-8", render.StyleCSS))
	mux.HandleFunc("GET /{$}", s.auth(s.handleIndex))
	mux.HandleFunc("GET /r/{id}", s.auth(s.handleRemote))
	mux.HandleFunc("GET /r/{id}/icon", s.auth(s.handleIcon))
	mux.HandleFunc("POST /r/{id}/action", s.auth(s.handleAction))
	mux.HandleFunc("GET /r/{id}/ws", s.auth(s.handleWebSocket))
	mux.HandleFunc("GET /r/{id}/events", s.auth(s.handleEvents))
	mux.HandleFunc("PUT /r/{id}/settings", s.auth(s.handleSettings))
	return mux
}

func asset(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}
}

// authorized checks the auth cookie, or for WebSocket requests the
// bearer subprotocol, against the login token.
func (s *Server) authorized(r *http.Request) bool {
	if c, err := r.Cookie(authCookie); err == nil {
		if subtle.ConstantTimeCompare([]byte(c.Value), []byte(s.token)) == 1 {
			return true
		}
	}
	for _, proto := range websocket.Subprotocols(r) {
		if subtle.ConstantTimeCompare([]byte(proto), []byte("bearer."+s.token)) == 1 {
			return true
		}
	}
	return false
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// handleLogin exchanges the token from the login URL (typically scanned
// as a QR code) for the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// API clients get the remote list as JSON; everything else gets the
	// rendered page.
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		list := make([]map[string]string, 0, len(s.ordered))
		for _, rem := range s.ordered {
			list = append(list, map[string]string{
				"id":          string(rem.Id),
				"label":       rem.Label(),
				"description": rem.Meta.Description,
				"version":     rem.Meta.Version,
				"url":         "/r/" + url.PathEscape(string(rem.Id)),
			})
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"remotes": list})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(render.Index(s.ordered)))
}

// remote resolves the path id, writing the error response itself when
// the remote does not exist.
func (s *Server) remote(w http.ResponseWriter, r *http.Request) (*loader.Remote, bool) {
	id := deckhand.RemoteId(r.PathValue("id"))
	rem, ok := s.remotes[id]
	if !ok {
		http.Error(w, "remote not found", http.StatusNotFound)
		return nil, false
	}
	return rem, true
}

func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request) {
	rem, ok := s.remote(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(render.RemotePage(rem)))
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	rem, ok := s.remote(w, r)
	if !ok {
		return
	}
	if rem.IconPath == "" {
		http.Error(w, "no icon", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, rem.IconPath)
}

// actionBody is the JSON payload of POST /r/{id}/action and of inbound
// WebSocket messages.
type actionBody struct {
	Action string `json:"action"`
	Args   []any  `json:"args"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := deckhand.RemoteId(r.PathValue("id"))

	var body actionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Action == "" {
		http.Error(w, "missing action", http.StatusBadRequest)
		return
	}

	request := &deckhand.ActionRequest{
		Id:     uuid.NewString(),
		Action: deckhand.ActionId(body.Action),
		Args:   body.Args,
	}
	result, err := s.registry.Submit(r.Context(), id, request)
	if err != nil {
		s.writeSubmitError(w, id, request, err)
		return
	}

	status := http.StatusOK
	if result.Disposition == deckhand.DispositionNotFound {
		status = http.StatusNotFound
	} else if result.Disposition == deckhand.DispositionFailed {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, map[string]any{
		"request":     request.Id,
		"ok":          result.OK,
		"disposition": result.Disposition,
		"value":       result.Value,
		"error":       result.Err,
	})
}

func (s *Server) writeSubmitError(w http.ResponseWriter, id deckhand.RemoteId, request *deckhand.ActionRequest, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, deckhand.ErrRemoteNotFound), errors.Is(err, deckhand.ErrRemoteUnavailable):
		status = http.StatusNotFound
	case errors.Is(err, deckhand.ErrBusy):
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "1")
	case errors.Is(err, deckhand.ErrShuttingDown):
		status = http.StatusServiceUnavailable
	}
	s.logger.Warn("action rejected",
		"remote", id,
		"request", request.Id,
		"action", request.Action,
		"error", err)
	s.writeJSON(w, status, map[string]any{
		"request": request.Id,
		"error":   err.Error(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("response write failed", "error", err)
	}
}

// handleSettings persists and applies a settings update. The body is a
// flat string map; keys not present are left unchanged.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	id := deckhand.RemoteId(r.PathValue("id"))

	var settings map[string]string
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h, err := s.registry.Get(id)
	if err != nil {
		http.Error(w, "remote not found", http.StatusNotFound)
		return
	}

	if s.store != nil {
		if err := s.store.Put(id, settings); err != nil {
			s.logger.Error("failed to persist settings", "remote", id, "error", err)
			http.Error(w, "failed to persist settings", http.StatusInternalServerError)
			return
		}
	}

	if err := h.ApplySettings(r.Context(), settings); err != nil {
		var serr *deckhand.SettingsError
		if errors.As(err, &serr) {
			http.Error(w, serr.Message, http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "failed to apply settings", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
