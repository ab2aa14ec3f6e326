// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify maintains the per-user WebSocket notification stream.
// The listener outlives any single view: it reconnects with capped
// exponential backoff and keeps delivering events for as long as its
// context lives, so the UI's cached data merely goes stale during an
// outage instead of the stream dying with a component.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/triagekit/triage/lib/schema/triage"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second

	// eventBuffer absorbs bursts while the UI is mid-refetch. Events
	// are invalidation hints, so dropping under sustained pressure
	// loses nothing a refetch will not recover.
	eventBuffer = 16
)

// EndpointURL builds the per-user stream URL from the service's
// WebSocket base (scheme and host).
func EndpointURL(wsBase string, userID int) string {
	return fmt.Sprintf("%s/ws/%d", strings.TrimRight(wsBase, "/"), userID)
}

// Listener owns one notification stream. Create with NewListener,
// drive with Run, consume Events until it closes.
type Listener struct {
	endpoint string
	logger   *slog.Logger
	dialer   *websocket.Dialer
	events   chan triage.Event
}

// NewListener returns a listener for the given user's stream on the
// service at wsBase (for example "ws://localhost:8000").
func NewListener(wsBase string, userID int, logger *slog.Logger) *Listener {
	return &Listener{
		endpoint: EndpointURL(wsBase, userID),
		logger:   logger,
		dialer:   websocket.DefaultDialer,
		events:   make(chan triage.Event, eventBuffer),
	}
}

// Events returns the stream of decoded notification frames. The
// channel closes when Run returns.
func (listener *Listener) Events() <-chan triage.Event {
	return listener.events
}

// Run connects and reconnects until the context is canceled, then
// closes the event channel. Backoff starts at one second, doubles per
// failed attempt, caps at thirty seconds, and resets once a
// connection is established.
func (listener *Listener) Run(ctx context.Context) {
	defer close(listener.events)

	backoff := initialBackoff
	for {
		connected, err := listener.runConnection(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = initialBackoff
		}
		listener.logger.Warn("notification stream lost",
			"endpoint", listener.endpoint, "retry_in", backoff, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// runConnection dials the stream and pumps frames until the
// connection drops or the context ends. The connected result reports
// whether the dial itself succeeded.
func (listener *Listener) runConnection(ctx context.Context) (bool, error) {
	connection, _, err := listener.dialer.DialContext(ctx, listener.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("dialing %s: %w", listener.endpoint, err)
	}

	// ReadJSON has no context parameter; closing the connection is
	// how cancellation reaches the read loop.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			connection.Close()
		case <-watchDone:
		}
	}()
	defer connection.Close()

	listener.logger.Info("notification stream connected", "endpoint", listener.endpoint)
	for {
		var event triage.Event
		if err := connection.ReadJSON(&event); err != nil {
			return true, fmt.Errorf("reading notification frame: %w", err)
		}
		select {
		case listener.events <- event:
		default:
			listener.logger.Warn("dropping notification, consumer is behind",
				"type", event.Type, "ticket_id", event.TicketID)
		}
	}
}
