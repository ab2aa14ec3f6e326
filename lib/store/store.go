// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package store holds the client-side view state: the viewer's ticket
// list, the user directory, and the thread of the selected ticket.
// The service is the only authority on state transitions, so the
// store never edits its caches in place. Mutations post to the
// service and refetch on success; notification events trigger the
// same refetches. Every fetch carries a per-collection sequence
// number taken when it starts, and its response installs only if no
// newer fetch for that collection has begun, so a slow response can
// never overwrite a fresher one.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/triagekit/triage/lib/apiclient"
	"github.com/triagekit/triage/lib/schema/triage"
)

// ErrNotAllowed is returned when a mutation's client-side guard
// rejects it: wrong role, wrong status, wrong assignee, or empty
// required input. The service enforces the same rules.
var ErrNotAllowed = errors.New("action not allowed")

// Change tells a subscriber which cached collections were replaced.
type Change struct {
	Tickets bool
	Users   bool
	Thread  bool
}

// subscriberBuffer bounds each subscriber channel. Dispatch is
// non-blocking; a full subscriber misses a change notification, not
// data, and the next change catches it up.
const subscriberBuffer = 8

// Store caches service state for one viewer. Safe for concurrent use;
// refreshes may run from the UI and the notification loop at once.
type Store struct {
	client *apiclient.Client
	viewer triage.User
	logger *slog.Logger

	mu             sync.RWMutex
	tickets        []triage.Ticket
	users          []triage.User
	thread         []triage.Message
	threadTicketID int // 0 while no ticket is selected
	ticketSeq      uint64
	userSeq        uint64
	threadSeq      uint64
	subscribers    []chan Change
}

// New returns an empty store for the given viewer. Call the Refresh
// methods (or Prime) to populate it.
func New(client *apiclient.Client, viewer triage.User, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		viewer: viewer,
		logger: logger,
	}
}

// Viewer returns the identity the store fetches on behalf of.
func (store *Store) Viewer() triage.User {
	return store.viewer
}

// Subscribe returns a channel that receives a Change after each cache
// replacement. The channel is never closed; stop reading when done.
func (store *Store) Subscribe() <-chan Change {
	channel := make(chan Change, subscriberBuffer)
	store.mu.Lock()
	store.subscribers = append(store.subscribers, channel)
	store.mu.Unlock()
	return channel
}

// notify dispatches a change to all subscribers without blocking.
func (store *Store) notify(change Change) {
	store.mu.RLock()
	subscribers := make([]chan Change, len(store.subscribers))
	copy(subscribers, store.subscribers)
	store.mu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- change:
		default:
			store.logger.Debug("subscriber behind, change notification dropped")
		}
	}
}

// Tickets returns a copy of the cached ticket list.
func (store *Store) Tickets() []triage.Ticket {
	store.mu.RLock()
	defer store.mu.RUnlock()
	tickets := make([]triage.Ticket, len(store.tickets))
	copy(tickets, store.tickets)
	return tickets
}

// TicketByID returns the cached ticket with the given ID.
func (store *Store) TicketByID(ticketID int) (triage.Ticket, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, ticket := range store.tickets {
		if ticket.ID == ticketID {
			return ticket, true
		}
	}
	return triage.Ticket{}, false
}

// ActiveTicketCount returns how many cached tickets are not yet
// resolved. Shown in the UI header.
func (store *Store) ActiveTicketCount() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	count := 0
	for _, ticket := range store.tickets {
		if !ticket.Status.IsTerminal() {
			count++
		}
	}
	return count
}

// Users returns a copy of the cached user directory.
func (store *Store) Users() []triage.User {
	store.mu.RLock()
	defer store.mu.RUnlock()
	users := make([]triage.User, len(store.users))
	copy(users, store.users)
	return users
}

// Vendors returns the vendor entries of the cached directory, for the
// contact-vendor picker.
func (store *Store) Vendors() []triage.User {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var vendors []triage.User
	for _, user := range store.users {
		if user.Role == triage.RoleVendor {
			vendors = append(vendors, user)
		}
	}
	return vendors
}

// Thread returns the selected ticket ID (0 when none) and a copy of
// its cached messages.
func (store *Store) Thread() (int, []triage.Message) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	messages := make([]triage.Message, len(store.thread))
	copy(messages, store.thread)
	return store.threadTicketID, messages
}

// SelectTicket makes ticketID the active thread and fetches it. The
// previous thread is cleared immediately so a stale thread never
// renders under the new ticket's header.
func (store *Store) SelectTicket(ctx context.Context, ticketID int) {
	store.mu.Lock()
	store.threadTicketID = ticketID
	store.thread = nil
	store.threadSeq++
	store.mu.Unlock()
	store.notify(Change{Thread: true})
	store.RefreshThread(ctx)
}

// ClearSelection drops the active thread.
func (store *Store) ClearSelection() {
	store.mu.Lock()
	store.threadTicketID = 0
	store.thread = nil
	store.threadSeq++
	store.mu.Unlock()
	store.notify(Change{Thread: true})
}

// RefreshTickets refetches the viewer's ticket list. The response is
// discarded if a newer ticket fetch started in the meantime.
func (store *Store) RefreshTickets(ctx context.Context) {
	store.mu.Lock()
	store.ticketSeq++
	sequence := store.ticketSeq
	store.mu.Unlock()

	tickets := store.client.ListTickets(ctx, store.viewer.ID)

	store.mu.Lock()
	if sequence != store.ticketSeq {
		store.mu.Unlock()
		store.logger.Debug("stale ticket fetch discarded", "sequence", sequence)
		return
	}
	store.tickets = tickets
	store.mu.Unlock()
	store.notify(Change{Tickets: true})
}

// RefreshUsers refetches the user directory.
func (store *Store) RefreshUsers(ctx context.Context) {
	store.mu.Lock()
	store.userSeq++
	sequence := store.userSeq
	store.mu.Unlock()

	users := store.client.ListUsers(ctx)

	store.mu.Lock()
	if sequence != store.userSeq {
		store.mu.Unlock()
		return
	}
	store.users = users
	store.mu.Unlock()
	store.notify(Change{Users: true})
}

// RefreshThread refetches the active thread. The response installs
// only if the same ticket is still selected and no newer thread fetch
// has started.
func (store *Store) RefreshThread(ctx context.Context) {
	store.mu.Lock()
	ticketID := store.threadTicketID
	sequence := store.threadSeq
	store.mu.Unlock()
	if ticketID == 0 {
		return
	}

	messages := store.client.ListMessages(ctx, ticketID, store.viewer.ID)

	store.mu.Lock()
	if sequence != store.threadSeq || ticketID != store.threadTicketID {
		store.mu.Unlock()
		store.logger.Debug("stale thread fetch discarded", "ticket_id", ticketID)
		return
	}
	store.thread = messages
	store.mu.Unlock()
	store.notify(Change{Thread: true})
}

// Prime loads the ticket list and user directory. Called once at
// startup before the UI renders.
func (store *Store) Prime(ctx context.Context) {
	store.RefreshUsers(ctx)
	store.RefreshTickets(ctx)
}

// HandleEvent applies a notification to the caches: it routes the
// event type through the viewer's role and refetches whatever the
// event invalidates. Unknown types route nowhere.
func (store *Store) HandleEvent(ctx context.Context, event triage.Event) {
	scope := triage.RouteEvent(store.viewer.Role, event.Type)
	if scope.Empty() {
		return
	}
	store.logger.Debug("notification received", "type", event.Type, "ticket_id", event.TicketID)
	if scope.Tickets {
		store.RefreshTickets(ctx)
	}
	if scope.Thread {
		store.mu.RLock()
		selected := store.threadTicketID != 0
		store.mu.RUnlock()
		if selected {
			store.RefreshThread(ctx)
		}
	}
}

// CreateTicket opens a ticket for the viewer, who must be a customer,
// with non-blank title and description. Refetches the list on
// success.
func (store *Store) CreateTicket(ctx context.Context, title, description string) error {
	if store.viewer.Role != triage.RoleCustomer {
		return fmt.Errorf("%w: only customers create tickets", ErrNotAllowed)
	}
	if !triage.ValidTicketInput(title, description) {
		return fmt.Errorf("%w: title and description are required", ErrNotAllowed)
	}
	if err := store.client.CreateTicket(ctx, store.viewer.ID, strings.TrimSpace(title), strings.TrimSpace(description)); err != nil {
		return err
	}
	store.RefreshTickets(ctx)
	return nil
}

// AssignTicket claims an open ticket for the viewer, who must be a
// business user.
func (store *Store) AssignTicket(ctx context.Context, ticketID int) error {
	ticket, ok := store.TicketByID(ticketID)
	if !ok {
		return fmt.Errorf("%w: unknown ticket %d", ErrNotAllowed, ticketID)
	}
	if triage.NextAction(ticket, store.viewer) != triage.ActionAssign {
		return fmt.Errorf("%w: ticket %d is not open for assignment", ErrNotAllowed, ticketID)
	}
	if err := store.client.AssignTicket(ctx, ticketID, store.viewer.ID); err != nil {
		return err
	}
	store.RefreshTickets(ctx)
	return nil
}

// ContactVendor attaches a vendor with an initial request. The viewer
// must be the assigned business and the ticket must be awaiting
// vendor contact.
func (store *Store) ContactVendor(ctx context.Context, ticketID, vendorID int, message string) error {
	ticket, ok := store.TicketByID(ticketID)
	if !ok {
		return fmt.Errorf("%w: unknown ticket %d", ErrNotAllowed, ticketID)
	}
	if triage.NextAction(ticket, store.viewer) != triage.ActionContactVendor {
		return fmt.Errorf("%w: ticket %d is not awaiting vendor contact by you", ErrNotAllowed, ticketID)
	}
	if vendorID == 0 || strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: a vendor and a message are required", ErrNotAllowed)
	}
	if err := store.client.ContactVendor(ctx, ticketID, vendorID, strings.TrimSpace(message)); err != nil {
		return err
	}
	store.RefreshTickets(ctx)
	store.RefreshThread(ctx)
	return nil
}

// SendMessage appends a chat message to the ticket's thread. Allowed
// while a vendor is attached and the ticket is unresolved. Refetches
// the list too: a vendor's first reply advances the status
// server-side.
func (store *Store) SendMessage(ctx context.Context, ticketID int, content string) error {
	ticket, ok := store.TicketByID(ticketID)
	if !ok {
		return fmt.Errorf("%w: unknown ticket %d", ErrNotAllowed, ticketID)
	}
	if !triage.CanChat(ticket) {
		return fmt.Errorf("%w: ticket %d is not open for chat", ErrNotAllowed, ticketID)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: message is empty", ErrNotAllowed)
	}
	if err := store.client.SendMessage(ctx, ticketID, store.viewer.ID, strings.TrimSpace(content)); err != nil {
		return err
	}
	store.RefreshThread(ctx)
	store.RefreshTickets(ctx)
	return nil
}

// ResolveTicket records the resolution and closes the ticket. The
// viewer must be the assigned business and the vendor must have
// responded.
func (store *Store) ResolveTicket(ctx context.Context, ticketID int, resolution string) error {
	ticket, ok := store.TicketByID(ticketID)
	if !ok {
		return fmt.Errorf("%w: unknown ticket %d", ErrNotAllowed, ticketID)
	}
	if triage.NextAction(ticket, store.viewer) != triage.ActionResolve {
		return fmt.Errorf("%w: ticket %d is not ready to resolve", ErrNotAllowed, ticketID)
	}
	if strings.TrimSpace(resolution) == "" {
		return fmt.Errorf("%w: resolution text is required", ErrNotAllowed)
	}
	if err := store.client.ResolveTicket(ctx, ticketID, store.viewer.ID, strings.TrimSpace(resolution)); err != nil {
		return err
	}
	store.RefreshTickets(ctx)
	store.RefreshThread(ctx)
	return nil
}
