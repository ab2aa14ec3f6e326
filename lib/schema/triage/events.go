// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triage

// Notification event types pushed over the per-user WebSocket. Every
// event the service emits carries the ticket's post-transition status
// so a client can decide whether a refetch is worthwhile without one.
const (
	EventNewTicket       = "new_ticket"
	EventTicketAssigned  = "ticket_assigned"
	EventVendorContacted = "vendor_contacted"
	EventVendorResponse  = "vendor_response"
	EventNewMessage      = "new_message"
	EventTicketResolved  = "ticket_resolved"
)

// Event is a push notification frame. Only Type is always present;
// the remaining fields depend on the event type. Types outside the
// known set decode fine and simply route nowhere.
type Event struct {
	Type       string `json:"type"`
	TicketID   int    `json:"ticket_id,omitempty"`
	Status     Status `json:"status,omitempty"`
	Title      string `json:"title,omitempty"`
	Customer   string `json:"customer,omitempty"`
	Business   string `json:"business,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
	Sender     string `json:"sender,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// RefreshScope says which cached collections an event invalidates for
// a given viewer.
type RefreshScope struct {
	Tickets bool // refetch the ticket list
	Thread  bool // refetch the active message thread, if one is open
}

// Empty reports whether the event routed nowhere for this viewer.
func (scope RefreshScope) Empty() bool {
	return !scope.Tickets && !scope.Thread
}

// RouteEvent maps a notification type to the collections a viewer of
// the given role should refresh. Events are invalidation hints only:
// the client refetches rather than applying the payload, so an
// unrecognized type is safely ignored.
func RouteEvent(role Role, eventType string) RefreshScope {
	switch role {
	case RoleCustomer:
		switch eventType {
		case EventTicketAssigned, EventTicketResolved:
			return RefreshScope{Tickets: true}
		}
	case RoleBusiness:
		switch eventType {
		case EventNewTicket, EventVendorResponse:
			return RefreshScope{Tickets: true, Thread: true}
		case EventNewMessage:
			return RefreshScope{Thread: true}
		}
	case RoleVendor:
		switch eventType {
		case EventVendorContacted:
			return RefreshScope{Tickets: true}
		case EventNewMessage:
			return RefreshScope{Thread: true}
		}
	}
	return RefreshScope{}
}
