// Copyright 2026 The Deckhand Authors
// SPDX-License-Identifier: Apache-2.0

package httpd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/deckhand-dev/deckhand"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// submitWait bounds how long a WebSocket action may wait for its
	// result; the connection must not stall behind one slow script.
	submitWait = 30 * time.Second
)

// handleWebSocket serves the bidirectional stream for one remote:
// widget updates flow out, action requests flow in.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := deckhand.RemoteId(r.PathValue("id"))
	sub, err := s.registry.Subscribe(id)
	if err != nil {
		http.Error(w, "remote not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		s.logger.Debug("websocket upgrade failed", "remote", id, "error", err)
		return
	}

	logger := s.logger.With("remote", id, "peer", conn.RemoteAddr().String())
	logger.Debug("websocket connected")

	results := make(chan any, 4)
	done := make(chan struct{})

	// Reader: inbound action requests.
	go func() {
		defer close(done)
		conn.SetReadLimit(64 << 10)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var body actionBody
			if err := conn.ReadJSON(&body); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("websocket read failed", "error", err)
				}
				return
			}
			s.submitFromSocket(r.Context(), id, body, results)
		}
	}()

	// Writer: updates, results, pings. Sole writer on the connection.
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
		logger.Debug("websocket closed")
	}()

	for {
		var payload any
		select {
		case update, ok := <-sub.Updates():
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			payload = update
		case result := <-results:
			payload = result
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case <-done:
			return
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(payload); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

// submitFromSocket runs one socket-submitted action and queues its
// result for the writer. Submission errors become result payloads; a
// transport client gets the same shape either way.
func (s *Server) submitFromSocket(ctx context.Context, id deckhand.RemoteId, body actionBody, results chan<- any) {
	request := &deckhand.ActionRequest{
		Id:     uuid.NewString(),
		Action: deckhand.ActionId(body.Action),
		Args:   body.Args,
	}

	ctx, cancel := context.WithTimeout(ctx, submitWait)
	defer cancel()

	var payload map[string]any
	result, err := s.registry.Submit(ctx, id, request)
	if err != nil {
		payload = map[string]any{"request": request.Id, "error": err.Error()}
	} else {
		payload = map[string]any{
			"request":     request.Id,
			"ok":          result.OK,
			"disposition": result.Disposition,
			"value":       result.Value,
			"error":       result.Err,
		}
	}

	select {
	case results <- payload:
	case <-ctx.Done():
	}
}

// handleEvents serves the update stream as server-sent events for
// clients that cannot hold a WebSocket.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := deckhand.RemoteId(r.PathValue("id"))

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.registry.Subscribe(id)
	if err != nil {
		http.Error(w, "remote not found", http.StatusNotFound)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case update, ok := <-sub.Updates():
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				s.logger.Debug("event encode failed", "remote", id, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
