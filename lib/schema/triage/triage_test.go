// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triage

import (
	"testing"
	"time"
)

// TestStatusOrdering verifies the forward-only lifecycle positions and
// that unknown statuses sort after every known one.
func TestStatusOrdering(t *testing.T) {
	ordered := []Status{
		StatusOpen,
		StatusBusinessAssigned,
		StatusVendorContacted,
		StatusVendorResponded,
		StatusResolved,
	}
	for position, status := range ordered {
		if StatusIndex(status) != position {
			t.Errorf("StatusIndex(%q) = %d, want %d", status, StatusIndex(status), position)
		}
		if !ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = false", status)
		}
	}
	if StatusIndex(Status("escalated")) != -1 {
		t.Errorf("unknown status should index -1, got %d", StatusIndex(Status("escalated")))
	}
	if StatusOpen.IsTerminal() {
		t.Error("open must not be terminal")
	}
	if !StatusResolved.IsTerminal() {
		t.Error("resolved must be terminal")
	}
}

// TestStatusLabelUnknown verifies that an unknown status renders
// verbatim instead of being hidden or replaced.
func TestStatusLabelUnknown(t *testing.T) {
	if got := Status("escalated").Label(); got != "escalated" {
		t.Errorf("Label() = %q, want %q", got, "escalated")
	}
}

func ticketWith(status Status, business, vendor *UserRef) Ticket {
	return Ticket{
		ID:       7,
		Title:    "printer on fire",
		Status:   status,
		Customer: UserRef{ID: 1, Username: "customer1"},
		Business: business,
		Vendor:   vendor,
	}
}

// TestNextActionBusiness walks the lifecycle from the business user's
// perspective: assign while open, contact vendor once assigned to
// them, resolve once the vendor has responded, nothing otherwise.
func TestNextActionBusiness(t *testing.T) {
	business := User{ID: 2, Username: "business1", Role: RoleBusiness}
	self := &UserRef{ID: 2, Username: "business1"}
	other := &UserRef{ID: 9, Username: "business2"}
	vendor := &UserRef{ID: 3, Username: "vendor1"}

	cases := []struct {
		name   string
		ticket Ticket
		want   Action
	}{
		{"open", ticketWith(StatusOpen, nil, nil), ActionAssign},
		{"assigned to self", ticketWith(StatusBusinessAssigned, self, nil), ActionContactVendor},
		{"assigned to other", ticketWith(StatusBusinessAssigned, other, nil), ActionNone},
		{"vendor contacted", ticketWith(StatusVendorContacted, self, vendor), ActionNone},
		{"vendor responded, self", ticketWith(StatusVendorResponded, self, vendor), ActionResolve},
		{"vendor responded, other", ticketWith(StatusVendorResponded, other, vendor), ActionNone},
		{"resolved", ticketWith(StatusResolved, self, vendor), ActionNone},
	}
	for _, testCase := range cases {
		if got := NextAction(testCase.ticket, business); got != testCase.want {
			t.Errorf("%s: NextAction = %q, want %q", testCase.name, got, testCase.want)
		}
	}
}

// TestNextActionNonBusiness verifies that customers and vendors never
// get a lifecycle action, even on tickets they participate in.
func TestNextActionNonBusiness(t *testing.T) {
	open := ticketWith(StatusOpen, nil, nil)
	customer := User{ID: 1, Username: "customer1", Role: RoleCustomer}
	vendor := User{ID: 3, Username: "vendor1", Role: RoleVendor}
	if got := NextAction(open, customer); got != ActionNone {
		t.Errorf("customer NextAction = %q, want none", got)
	}
	if got := NextAction(open, vendor); got != ActionNone {
		t.Errorf("vendor NextAction = %q, want none", got)
	}
}

// TestCanChat verifies the chat gate: a vendor must be attached and
// the ticket must not be resolved.
func TestCanChat(t *testing.T) {
	vendor := &UserRef{ID: 3, Username: "vendor1"}
	business := &UserRef{ID: 2, Username: "business1"}
	if CanChat(ticketWith(StatusBusinessAssigned, business, nil)) {
		t.Error("chat must require a vendor")
	}
	if !CanChat(ticketWith(StatusVendorContacted, business, vendor)) {
		t.Error("chat should be allowed once a vendor is contacted")
	}
	if !CanChat(ticketWith(StatusVendorResponded, business, vendor)) {
		t.Error("chat should be allowed after the vendor responds")
	}
	if CanChat(ticketWith(StatusResolved, business, vendor)) {
		t.Error("chat must stop on resolved tickets")
	}
}

// TestMessageVisibility verifies the customer filter: resolution
// messages only, while business and vendor see the whole thread.
func TestMessageVisibility(t *testing.T) {
	chat := Message{MessageType: MessageBusinessToVendor, Content: "any update?"}
	resolution := Message{MessageType: MessageResolution, Content: "replaced the fuser"}
	if chat.VisibleTo(RoleCustomer) {
		t.Error("customers must not see vendor chat")
	}
	if !resolution.VisibleTo(RoleCustomer) {
		t.Error("customers must see the resolution")
	}
	if !chat.VisibleTo(RoleBusiness) || !chat.VisibleTo(RoleVendor) {
		t.Error("business and vendor see the whole thread")
	}
}

// TestValidTicketInput verifies the whitespace-trimmed non-empty rule
// on both create-ticket fields.
func TestValidTicketInput(t *testing.T) {
	if !ValidTicketInput("printer on fire", "smoke everywhere") {
		t.Error("valid input rejected")
	}
	if ValidTicketInput("   ", "smoke everywhere") {
		t.Error("blank title accepted")
	}
	if ValidTicketInput("printer on fire", "\t\n") {
		t.Error("blank description accepted")
	}
}

// TestParseTime covers the timestamp shapes the service emits,
// including zone-less ISO-8601.
func TestParseTime(t *testing.T) {
	for _, value := range []string{
		"2026-08-28T09:30:00Z",
		"2026-08-28T09:30:00.123456",
		"2026-08-28T09:30:00",
	} {
		if _, ok := ParseTime(value); !ok {
			t.Errorf("ParseTime(%q) failed", value)
		}
	}
	if _, ok := ParseTime("yesterday"); ok {
		t.Error("nonsense timestamp should not parse")
	}
}

// TestTicketUrgency verifies the age thresholds: under two hours
// normal, under six high, urgent beyond, and urgent when the creation
// time is unparseable.
func TestTicketUrgency(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		age  time.Duration
		want Urgency
	}{
		{30 * time.Minute, UrgencyNormal},
		{119 * time.Minute, UrgencyNormal},
		{2 * time.Hour, UrgencyHigh},
		{5 * time.Hour, UrgencyHigh},
		{6 * time.Hour, UrgencyUrgent},
		{48 * time.Hour, UrgencyUrgent},
	}
	for _, testCase := range cases {
		ticket := Ticket{CreatedAt: now.Add(-testCase.age).Format(time.RFC3339)}
		if got := TicketUrgency(ticket, now); got != testCase.want {
			t.Errorf("age %v: urgency %v, want %v", testCase.age, got, testCase.want)
		}
	}
	broken := Ticket{CreatedAt: "not a time"}
	if got := TicketUrgency(broken, now); got != UrgencyUrgent {
		t.Errorf("unparseable created_at: urgency %v, want urgent", got)
	}
}

// TestRouteEvent verifies the per-role invalidation table, including
// that unknown event types route nowhere for every role.
func TestRouteEvent(t *testing.T) {
	cases := []struct {
		role  Role
		event string
		want  RefreshScope
	}{
		{RoleCustomer, EventTicketAssigned, RefreshScope{Tickets: true}},
		{RoleCustomer, EventTicketResolved, RefreshScope{Tickets: true}},
		{RoleCustomer, EventNewTicket, RefreshScope{}},
		{RoleCustomer, EventNewMessage, RefreshScope{}},
		{RoleBusiness, EventNewTicket, RefreshScope{Tickets: true, Thread: true}},
		{RoleBusiness, EventVendorResponse, RefreshScope{Tickets: true, Thread: true}},
		{RoleBusiness, EventNewMessage, RefreshScope{Thread: true}},
		{RoleBusiness, EventTicketAssigned, RefreshScope{}},
		{RoleVendor, EventVendorContacted, RefreshScope{Tickets: true}},
		{RoleVendor, EventNewMessage, RefreshScope{Thread: true}},
		{RoleVendor, EventTicketResolved, RefreshScope{}},
	}
	for _, testCase := range cases {
		if got := RouteEvent(testCase.role, testCase.event); got != testCase.want {
			t.Errorf("RouteEvent(%s, %s) = %+v, want %+v", testCase.role, testCase.event, got, testCase.want)
		}
	}
	for _, role := range []Role{RoleCustomer, RoleBusiness, RoleVendor} {
		if got := RouteEvent(role, "maintenance_window"); !got.Empty() {
			t.Errorf("unknown event must route nowhere for %s, got %+v", role, got)
		}
	}
}
