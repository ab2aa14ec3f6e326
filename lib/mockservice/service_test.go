// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package mockservice

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/triagekit/triage/lib/apiclient"
	"github.com/triagekit/triage/lib/schema/triage"
	"github.com/triagekit/triage/lib/testutil"
)

// Seeded directory: customer1=1, business1=3, vendor1=5.
const (
	customerID = 1
	businessID = 3
	vendorID   = 5
)

func newTestService(t *testing.T) (*apiclient.Client, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	server := httptest.NewServer(New(logger).Handler())
	t.Cleanup(server.Close)
	return apiclient.New(server.URL, logger), server
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// subscribe opens the user's notification stream and funnels decoded
// events into a channel until the connection or test ends.
func subscribe(t *testing.T, server *httptest.Server, userID int) <-chan triage.Event {
	t.Helper()
	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(
		endpoint+"/ws/"+strconv.Itoa(userID), nil)
	if err != nil {
		t.Fatalf("dialing notification stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	events := make(chan triage.Event, 16)
	go func() {
		defer close(events)
		for {
			var event triage.Event
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			events <- event
		}
	}()
	return events
}

// TestTicketLifecycle walks one ticket through the full workflow and
// checks the notification each party receives at every step.
func TestTicketLifecycle(t *testing.T) {
	client, server := newTestService(t)
	ctx := context.Background()

	customerEvents := subscribe(t, server, customerID)
	businessEvents := subscribe(t, server, businessID)
	vendorEvents := subscribe(t, server, vendorID)

	if err := client.CreateTicket(ctx, customerID, "Printer jam", "Paper stuck in tray 2."); err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	created := testutil.RequireReceive(t, businessEvents, time.Second, "new_ticket for business")
	if created.Type != triage.EventNewTicket || created.Status != triage.StatusOpen {
		t.Fatalf("unexpected creation event: %+v", created)
	}
	ticketID := created.TicketID

	if err := client.AssignTicket(ctx, ticketID, businessID); err != nil {
		t.Fatalf("assigning ticket: %v", err)
	}
	assigned := testutil.RequireReceive(t, customerEvents, time.Second, "ticket_assigned for customer")
	if assigned.Type != triage.EventTicketAssigned || assigned.Status != triage.StatusBusinessAssigned {
		t.Fatalf("unexpected assignment event: %+v", assigned)
	}

	if err := client.ContactVendor(ctx, ticketID, vendorID, "Can you service the printer?"); err != nil {
		t.Fatalf("contacting vendor: %v", err)
	}
	contacted := testutil.RequireReceive(t, vendorEvents, time.Second, "vendor_contacted for vendor")
	if contacted.Type != triage.EventVendorContacted || contacted.Status != triage.StatusVendorContacted {
		t.Fatalf("unexpected contact event: %+v", contacted)
	}

	// The vendor's first message flips the ticket to vendor_responded
	// and the business side hears about it with the new status.
	if err := client.SendMessage(ctx, ticketID, vendorID, "On site tomorrow morning."); err != nil {
		t.Fatalf("vendor replying: %v", err)
	}
	responded := testutil.RequireReceive(t, businessEvents, time.Second, "vendor_response for business")
	if responded.Type != triage.EventVendorResponse || responded.Status != triage.StatusVendorResponded {
		t.Fatalf("unexpected response event: %+v", responded)
	}

	// Further chat is plain new_message traffic to the counterpart.
	if err := client.SendMessage(ctx, ticketID, businessID, "Thanks, badge at reception."); err != nil {
		t.Fatalf("business replying: %v", err)
	}
	chat := testutil.RequireReceive(t, vendorEvents, time.Second, "new_message for vendor")
	if chat.Type != triage.EventNewMessage || chat.Status != triage.StatusVendorResponded {
		t.Fatalf("unexpected chat event: %+v", chat)
	}

	if err := client.ResolveTicket(ctx, ticketID, businessID, "Roller replaced, tested ten pages."); err != nil {
		t.Fatalf("resolving ticket: %v", err)
	}
	for name, events := range map[string]<-chan triage.Event{
		"customer": customerEvents,
		"vendor":   vendorEvents,
	} {
		resolved := testutil.RequireReceive(t, events, time.Second, "ticket_resolved for %s", name)
		if resolved.Type != triage.EventTicketResolved || resolved.Status != triage.StatusResolved {
			t.Fatalf("unexpected resolution event for %s: %+v", name, resolved)
		}
	}

	tickets := client.ListTickets(ctx, customerID)
	if len(tickets) != 1 || tickets[0].Status != triage.StatusResolved {
		t.Fatalf("customer listing after resolution: %+v", tickets)
	}
}

// TestGuardRejections exercises the server-side workflow guards that
// mirror the client's: each out-of-order operation is refused.
func TestGuardRejections(t *testing.T) {
	client, _ := newTestService(t)
	ctx := context.Background()

	if err := client.CreateTicket(ctx, customerID, "   ", "blank title"); err == nil {
		t.Fatal("blank title accepted")
	}
	if err := client.CreateTicket(ctx, businessID, "Not allowed", "business cannot open tickets"); err == nil {
		t.Fatal("non-customer creation accepted")
	}

	if err := client.CreateTicket(ctx, customerID, "Slow network", "Office uplink crawls after 3pm."); err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	tickets := client.ListTickets(ctx, customerID)
	if len(tickets) != 1 {
		t.Fatalf("expected one ticket, got %d", len(tickets))
	}
	ticketID := tickets[0].ID

	// Everything past assignment is premature on an open ticket.
	if err := client.ContactVendor(ctx, ticketID, vendorID, "hello"); err == nil {
		t.Fatal("vendor contact accepted before assignment")
	}
	if err := client.SendMessage(ctx, ticketID, businessID, "hello"); err == nil {
		t.Fatal("chat accepted before a vendor was contacted")
	}
	if err := client.ResolveTicket(ctx, ticketID, businessID, "done"); err == nil {
		t.Fatal("resolution accepted before the vendor responded")
	}

	if err := client.AssignTicket(ctx, ticketID, businessID); err != nil {
		t.Fatalf("assigning ticket: %v", err)
	}
	if err := client.AssignTicket(ctx, ticketID, businessID); err == nil {
		t.Fatal("second assignment accepted")
	}
	if err := client.ContactVendor(ctx, ticketID, customerID, "wrong role"); err == nil {
		t.Fatal("non-vendor contact target accepted")
	}
	if err := client.ContactVendor(ctx, ticketID, vendorID, "   "); err == nil {
		t.Fatal("blank vendor message accepted")
	}

	if err := client.ContactVendor(ctx, ticketID, vendorID, "Looking into the uplink."); err != nil {
		t.Fatalf("contacting vendor: %v", err)
	}
	if err := client.SendMessage(ctx, ticketID, customerID, "me too"); err == nil {
		t.Fatal("customer chat accepted")
	}
	if err := client.SendMessage(ctx, ticketID, vendorID, "Found a duplex mismatch."); err != nil {
		t.Fatalf("vendor replying: %v", err)
	}
	if err := client.ResolveTicket(ctx, ticketID, vendorID, "done"); err == nil {
		t.Fatal("resolution by non-assigned user accepted")
	}
	if err := client.ResolveTicket(ctx, ticketID, businessID, "Switch port forced to full duplex."); err != nil {
		t.Fatalf("resolving ticket: %v", err)
	}
	if err := client.SendMessage(ctx, ticketID, vendorID, "anything else?"); err == nil {
		t.Fatal("chat accepted on a resolved ticket")
	}
}

// TestVisibilityScoping checks per-role listing and the customer's
// resolution-only view of the thread.
func TestVisibilityScoping(t *testing.T) {
	client, _ := newTestService(t)
	ctx := context.Background()

	if err := client.CreateTicket(ctx, customerID, "Badge reader down", "Lobby reader rejects every card."); err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	ticketID := client.ListTickets(ctx, customerID)[0].ID

	// Vendors see nothing until contacted; the other customer sees
	// nothing ever.
	if got := client.ListTickets(ctx, vendorID); len(got) != 0 {
		t.Fatalf("vendor sees unassigned ticket: %+v", got)
	}
	if got := client.ListTickets(ctx, 2); len(got) != 0 {
		t.Fatalf("other customer sees foreign ticket: %+v", got)
	}
	if got := client.ListTickets(ctx, businessID); len(got) != 1 {
		t.Fatalf("business listing: %+v", got)
	}

	if err := client.AssignTicket(ctx, ticketID, businessID); err != nil {
		t.Fatalf("assigning: %v", err)
	}
	if err := client.ContactVendor(ctx, ticketID, vendorID, "Reader firmware looks wedged."); err != nil {
		t.Fatalf("contacting vendor: %v", err)
	}
	if got := client.ListTickets(ctx, vendorID); len(got) != 1 {
		t.Fatalf("vendor listing after contact: %+v", got)
	}
	if err := client.SendMessage(ctx, ticketID, vendorID, "Reflashing now."); err != nil {
		t.Fatalf("vendor replying: %v", err)
	}

	// Mid-flight the customer's thread is empty while the business
	// sees the vendor exchange.
	if got := client.ListMessages(ctx, ticketID, customerID); len(got) != 0 {
		t.Fatalf("customer sees vendor traffic: %+v", got)
	}
	if got := client.ListMessages(ctx, ticketID, businessID); len(got) != 2 {
		t.Fatalf("business thread: %+v", got)
	}

	if err := client.ResolveTicket(ctx, ticketID, businessID, "Firmware reflashed, reader accepting cards."); err != nil {
		t.Fatalf("resolving: %v", err)
	}
	visible := client.ListMessages(ctx, ticketID, customerID)
	if len(visible) != 1 || visible[0].MessageType != triage.MessageResolution {
		t.Fatalf("customer resolution view: %+v", visible)
	}
}
