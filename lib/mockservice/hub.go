// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package mockservice

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/triagekit/triage/lib/schema/triage"
)

// hub tracks the WebSocket connections of each user and fans
// notification events out to them. A user may hold several
// connections (one per open client); a failed write drops that
// connection only.
type hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[int][]*streamConn
}

// streamConn pairs a connection with its write lock. Gorilla permits
// one concurrent writer per connection, and sends run on whichever
// request goroutine performed the mutation, so two simultaneous
// mutations notifying the same user would otherwise write
// concurrently.
type streamConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (stream *streamConn) writeEvent(event triage.Event) error {
	stream.writeMu.Lock()
	defer stream.writeMu.Unlock()
	return stream.conn.WriteJSON(event)
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:      logger,
		connections: map[int][]*streamConn{},
	}
}

// serve upgrades the request and parks it: the stream is
// server-to-client only, so the read loop exists just to notice the
// peer going away.
func (h *hub) serve(writer http.ResponseWriter, request *http.Request, userID int) {
	connection, err := h.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	stream := &streamConn{conn: connection}

	h.mu.Lock()
	h.connections[userID] = append(h.connections[userID], stream)
	h.mu.Unlock()
	h.logger.Debug("notification stream opened", "user_id", userID)

	for {
		if _, _, err := connection.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	remaining := h.connections[userID][:0]
	for _, candidate := range h.connections[userID] {
		if candidate != stream {
			remaining = append(remaining, candidate)
		}
	}
	h.connections[userID] = remaining
	h.mu.Unlock()
	connection.Close()
	h.logger.Debug("notification stream closed", "user_id", userID)
}

// send delivers an event to every connection the user holds.
func (h *hub) send(userID int, event triage.Event) {
	h.mu.Lock()
	connections := append([]*streamConn{}, h.connections[userID]...)
	h.mu.Unlock()

	for _, stream := range connections {
		if err := stream.writeEvent(event); err != nil {
			h.logger.Warn("notification write failed", "user_id", userID, "error", err)
			stream.conn.Close()
		}
	}
}
