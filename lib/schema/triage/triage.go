// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package triage defines the domain vocabulary of the support-ticket
// triage workflow: roles, the forward-only ticket status ordering,
// ticket/message/user wire types, action guards, and urgency
// classification. The service owns all state transitions; this package
// only describes and validates what the service returns.
package triage

import (
	"strings"
	"time"
)

// Role identifies which of the three workflow parties a user acts as.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleVendor   Role = "vendor"
)

// ValidRole reports whether the role is one of the three known parties.
func ValidRole(role Role) bool {
	switch role {
	case RoleCustomer, RoleBusiness, RoleVendor:
		return true
	}
	return false
}

// Status is a ticket lifecycle stage. The lifecycle is forward-only:
// a ticket never returns to an earlier stage, and StatusResolved is
// terminal.
type Status string

const (
	StatusOpen             Status = "open"
	StatusBusinessAssigned Status = "business_assigned"
	StatusVendorContacted  Status = "vendor_contacted"
	StatusVendorResponded  Status = "vendor_responded"
	StatusResolved         Status = "resolved"
)

// statusOrder maps each known status to its position in the lifecycle.
var statusOrder = map[Status]int{
	StatusOpen:             0,
	StatusBusinessAssigned: 1,
	StatusVendorContacted:  2,
	StatusVendorResponded:  3,
	StatusResolved:         4,
}

// StatusIndex returns the lifecycle position of the status, or -1 for
// statuses this client version does not know. Unknown statuses sort
// after all known ones.
func StatusIndex(status Status) int {
	index, ok := statusOrder[status]
	if !ok {
		return -1
	}
	return index
}

// ValidStatus reports whether the status is a known lifecycle stage.
func ValidStatus(status Status) bool {
	_, ok := statusOrder[status]
	return ok
}

// IsTerminal reports whether the status ends the lifecycle.
func (status Status) IsTerminal() bool {
	return status == StatusResolved
}

// Label returns the human form of the status for display. Unknown
// statuses render verbatim so a newer service vocabulary stays legible.
func (status Status) Label() string {
	switch status {
	case StatusOpen:
		return "Open"
	case StatusBusinessAssigned:
		return "Assigned"
	case StatusVendorContacted:
		return "Vendor Contacted"
	case StatusVendorResponded:
		return "Vendor Responded"
	case StatusResolved:
		return "Resolved"
	}
	return string(status)
}

// UserRef is the participant reference embedded in tickets: enough to
// display and to compare identity, nothing more.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// User is a directory entry from the service's user listing.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Ticket is the wire form of a support ticket. Business and Vendor are
// nil until the corresponding workflow step sets them; the service
// never clears a participant once set. CreatedAt is the service's
// ISO-8601 string, parsed on demand via ParseTime.
type Ticket struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	Customer    UserRef  `json:"customer"`
	Business    *UserRef `json:"business,omitempty"`
	Vendor      *UserRef `json:"vendor,omitempty"`
}

// Message types carried on a ticket thread. Types this client does not
// recognize are displayed as general chat.
const (
	MessageGeneral          = "general"
	MessageVendorRequest    = "vendor_request"
	MessageBusinessToVendor = "business_to_vendor"
	MessageVendorToBusiness = "vendor_to_business"
	MessageResolution       = "resolution"
)

// Message is one entry in a ticket's thread. The sender carries its
// role so threads can render each party distinctly without a
// directory lookup.
type Message struct {
	ID          int    `json:"id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	CreatedAt   string `json:"created_at"`
	Sender      User   `json:"sender"`
	Recipient   *User  `json:"recipient,omitempty"`
}

// VisibleTo reports whether the message may be shown to the given
// role. Customers see only the resolution; business and vendor see the
// whole thread. The service applies the same filter; this exists for
// the mock service and for defense on the render path.
func (message Message) VisibleTo(role Role) bool {
	if role == RoleCustomer {
		return message.MessageType == MessageResolution
	}
	return true
}

// Action is the single next workflow step a user may take on a ticket,
// as gated client-side. The service re-validates every action.
type Action string

const (
	ActionNone          Action = ""
	ActionAssign        Action = "assign"
	ActionContactVendor Action = "contact_vendor"
	ActionResolve       Action = "resolve"
)

// NextAction returns the workflow action the actor may take on the
// ticket right now, or ActionNone. Only business users advance the
// lifecycle; assignment is open to any business user, while the later
// steps require being the assigned business.
func NextAction(ticket Ticket, actor User) Action {
	if actor.Role != RoleBusiness {
		return ActionNone
	}
	switch ticket.Status {
	case StatusOpen:
		return ActionAssign
	case StatusBusinessAssigned:
		if ticket.Business != nil && ticket.Business.ID == actor.ID {
			return ActionContactVendor
		}
	case StatusVendorResponded:
		if ticket.Business != nil && ticket.Business.ID == actor.ID {
			return ActionResolve
		}
	}
	return ActionNone
}

// CanChat reports whether chat messages may be sent on the ticket: a
// vendor must be attached and the ticket must not be resolved. Both
// the business side and the vendor side use the same gate.
func CanChat(ticket Ticket) bool {
	return ticket.Vendor != nil && ticket.Status != StatusResolved
}

// ValidTicketInput checks the create-ticket form fields the way the
// service does: both title and description must be non-empty after
// trimming whitespace.
func ValidTicketInput(title, description string) bool {
	return strings.TrimSpace(title) != "" && strings.TrimSpace(description) != ""
}

// timeLayouts covers the timestamp shapes the service emits: full
// RFC 3339, and zone-less ISO-8601 with or without fractional seconds
// (treated as UTC).
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses a service timestamp string. Returns the zero time
// and false when no known layout matches.
func ParseTime(value string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Urgency classifies a waiting vendor ticket by age.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyHigh
	UrgencyUrgent
)

const (
	urgencyHighAge   = 2 * time.Hour
	urgencyUrgentAge = 6 * time.Hour
)

// Label returns the display form of the urgency.
func (urgency Urgency) Label() string {
	switch urgency {
	case UrgencyHigh:
		return "High"
	case UrgencyUrgent:
		return "Urgent"
	}
	return "Normal"
}

// TicketUrgency classifies a ticket by its age at the given instant:
// under two hours Normal, under six hours High, Urgent beyond that.
// Unparseable creation times classify as Urgent so a broken timestamp
// surfaces at the top of the vendor's queue rather than hiding.
func TicketUrgency(ticket Ticket, now time.Time) Urgency {
	created, ok := ParseTime(ticket.CreatedAt)
	if !ok {
		return UrgencyUrgent
	}
	age := now.Sub(created)
	switch {
	case age < urgencyHighAge:
		return UrgencyNormal
	case age < urgencyUrgentAge:
		return UrgencyHigh
	}
	return UrgencyUrgent
}
