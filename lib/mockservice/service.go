// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package mockservice is an in-memory reference implementation of the
// triage service contract: the REST routes the client consumes, the
// per-user WebSocket notification streams, and the same validation
// rules the client applies before sending. It backs the end-to-end
// tests and runs standalone as a demo backend.
package mockservice

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/triagekit/triage/lib/schema/triage"
)

// Service holds the workflow state. All mutations happen under one
// lock; notification fan-out runs outside it.
type Service struct {
	logger *slog.Logger
	hub    *hub

	// Injectable clock so tests control ticket age.
	clock func() time.Time

	mu            sync.Mutex
	users         []triage.User
	tickets       []*triage.Ticket
	messages      map[int][]triage.Message
	nextTicketID  int
	nextMessageID int
}

// New returns a service seeded with a demo directory: two users per
// role, no tickets.
func New(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
		hub:    newHub(logger),
		clock:  time.Now,
		users: []triage.User{
			{ID: 1, Username: "customer1", Role: triage.RoleCustomer},
			{ID: 2, Username: "customer2", Role: triage.RoleCustomer},
			{ID: 3, Username: "business1", Role: triage.RoleBusiness},
			{ID: 4, Username: "business2", Role: triage.RoleBusiness},
			{ID: 5, Username: "vendor1", Role: triage.RoleVendor},
			{ID: 6, Username: "vendor2", Role: triage.RoleVendor},
		},
		messages:      map[int][]triage.Message{},
		nextTicketID:  1,
		nextMessageID: 1,
	}
}

// Handler returns the service's HTTP surface.
func (service *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", service.handleListUsers)
	mux.HandleFunc("GET /tickets/{userID}", service.handleListTickets)
	mux.HandleFunc("GET /tickets/{ticketID}/messages", service.handleListMessages)
	mux.HandleFunc("POST /tickets", service.handleCreateTicket)
	mux.HandleFunc("POST /tickets/{ticketID}/assign", service.handleAssign)
	mux.HandleFunc("POST /tickets/{ticketID}/contact-vendor", service.handleContactVendor)
	mux.HandleFunc("POST /tickets/{ticketID}/send-message", service.handleSendMessage)
	mux.HandleFunc("POST /tickets/{ticketID}/resolve", service.handleResolve)
	mux.HandleFunc("GET /ws/{userID}", service.handleStream)
	return mux
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}

func (service *Service) timestamp() string {
	return service.clock().UTC().Format(time.RFC3339)
}

// userByID looks a user up. Callers hold the lock.
func (service *Service) userByID(userID int) (triage.User, bool) {
	for _, user := range service.users {
		if user.ID == userID {
			return user, true
		}
	}
	return triage.User{}, false
}

func (service *Service) ticketByID(ticketID int) *triage.Ticket {
	for _, ticket := range service.tickets {
		if ticket.ID == ticketID {
			return ticket
		}
	}
	return nil
}

func pathID(request *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(request.PathValue(name))
	return value, err == nil
}

func (service *Service) handleListUsers(writer http.ResponseWriter, _ *http.Request) {
	service.mu.Lock()
	users := append([]triage.User{}, service.users...)
	service.mu.Unlock()
	writeJSON(writer, users)
}

// handleListTickets scopes the listing by the requesting user's role:
// customers see their own tickets, business users see everything,
// vendors see tickets assigned to them.
func (service *Service) handleListTickets(writer http.ResponseWriter, request *http.Request) {
	userID, ok := pathID(request, "userID")
	if !ok {
		http.Error(writer, "bad user id", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	user, found := service.userByID(userID)
	if !found {
		http.Error(writer, "unknown user", http.StatusNotFound)
		return
	}

	visible := []triage.Ticket{}
	for _, ticket := range service.tickets {
		switch user.Role {
		case triage.RoleCustomer:
			if ticket.Customer.ID == user.ID {
				visible = append(visible, *ticket)
			}
		case triage.RoleBusiness:
			visible = append(visible, *ticket)
		case triage.RoleVendor:
			if ticket.Vendor != nil && ticket.Vendor.ID == user.ID {
				visible = append(visible, *ticket)
			}
		}
	}
	writeJSON(writer, visible)
}

// handleListMessages returns a ticket's thread filtered for the
// requesting user: customers get resolution messages only.
func (service *Service) handleListMessages(writer http.ResponseWriter, request *http.Request) {
	ticketID, ok := pathID(request, "ticketID")
	if !ok {
		http.Error(writer, "bad ticket id", http.StatusBadRequest)
		return
	}
	userID, err := strconv.Atoi(request.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(writer, "user_id is required", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	defer service.mu.Unlock()
	user, found := service.userByID(userID)
	if !found {
		http.Error(writer, "unknown user", http.StatusNotFound)
		return
	}
	if service.ticketByID(ticketID) == nil {
		http.Error(writer, "unknown ticket", http.StatusNotFound)
		return
	}

	visible := []triage.Message{}
	for _, message := range service.messages[ticketID] {
		if message.VisibleTo(user.Role) {
			visible = append(visible, message)
		}
	}
	writeJSON(writer, visible)
}

func (service *Service) handleCreateTicket(writer http.ResponseWriter, request *http.Request) {
	title := strings.TrimSpace(request.FormValue("title"))
	description := strings.TrimSpace(request.FormValue("description"))
	customerID, err := strconv.Atoi(request.FormValue("customer_id"))
	if err != nil || !triage.ValidTicketInput(title, description) {
		http.Error(writer, "title, description and customer_id are required", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	customer, found := service.userByID(customerID)
	if !found || customer.Role != triage.RoleCustomer {
		service.mu.Unlock()
		http.Error(writer, "customer_id must name a customer", http.StatusBadRequest)
		return
	}
	ticket := &triage.Ticket{
		ID:          service.nextTicketID,
		Title:       title,
		Description: description,
		Status:      triage.StatusOpen,
		CreatedAt:   service.timestamp(),
		Customer:    triage.UserRef{ID: customer.ID, Username: customer.Username},
	}
	service.nextTicketID++
	service.tickets = append(service.tickets, ticket)
	businessIDs := service.usersWithRole(triage.RoleBusiness)
	created := *ticket
	service.mu.Unlock()

	service.logger.Info("ticket created", "ticket_id", created.ID, "customer", customer.Username)
	for _, businessID := range businessIDs {
		service.hub.send(businessID, triage.Event{
			Type:     triage.EventNewTicket,
			TicketID: created.ID,
			Status:   created.Status,
			Title:    created.Title,
			Customer: created.Customer.Username,
		})
	}
	writeJSON(writer, created)
}

func (service *Service) usersWithRole(role triage.Role) []int {
	var ids []int
	for _, user := range service.users {
		if user.Role == role {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

func (service *Service) handleAssign(writer http.ResponseWriter, request *http.Request) {
	ticketID, ok := pathID(request, "ticketID")
	businessID, err := strconv.Atoi(request.FormValue("business_id"))
	if !ok || err != nil {
		http.Error(writer, "business_id is required", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	ticket := service.ticketByID(ticketID)
	if ticket == nil {
		service.mu.Unlock()
		http.Error(writer, "unknown ticket", http.StatusNotFound)
		return
	}
	business, found := service.userByID(businessID)
	if !found || business.Role != triage.RoleBusiness {
		service.mu.Unlock()
		http.Error(writer, "business_id must name a business user", http.StatusBadRequest)
		return
	}
	if ticket.Status != triage.StatusOpen {
		service.mu.Unlock()
		http.Error(writer, "ticket is not open", http.StatusConflict)
		return
	}
	ticket.Business = &triage.UserRef{ID: business.ID, Username: business.Username}
	ticket.Status = triage.StatusBusinessAssigned
	customerID := ticket.Customer.ID
	updated := *ticket
	service.mu.Unlock()

	service.logger.Info("ticket assigned", "ticket_id", ticketID, "business", business.Username)
	service.hub.send(customerID, triage.Event{
		Type:     triage.EventTicketAssigned,
		TicketID: ticketID,
		Status:   updated.Status,
		Business: business.Username,
	})
	writeJSON(writer, updated)
}

func (service *Service) handleContactVendor(writer http.ResponseWriter, request *http.Request) {
	ticketID, ok := pathID(request, "ticketID")
	vendorID, vendorErr := strconv.Atoi(request.FormValue("vendor_id"))
	messageText := strings.TrimSpace(request.FormValue("message"))
	if !ok || vendorErr != nil || messageText == "" {
		http.Error(writer, "vendor_id and message are required", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	ticket := service.ticketByID(ticketID)
	if ticket == nil {
		service.mu.Unlock()
		http.Error(writer, "unknown ticket", http.StatusNotFound)
		return
	}
	vendor, found := service.userByID(vendorID)
	if !found || vendor.Role != triage.RoleVendor {
		service.mu.Unlock()
		http.Error(writer, "vendor_id must name a vendor", http.StatusBadRequest)
		return
	}
	if ticket.Status != triage.StatusBusinessAssigned || ticket.Business == nil {
		service.mu.Unlock()
		http.Error(writer, "ticket is not awaiting vendor contact", http.StatusConflict)
		return
	}
	business := *ticket.Business
	ticket.Vendor = &triage.UserRef{ID: vendor.ID, Username: vendor.Username}
	ticket.Status = triage.StatusVendorContacted
	sender, _ := service.userByID(business.ID)
	service.appendMessage(ticketID, sender, &vendor, triage.MessageVendorRequest, messageText)
	updated := *ticket
	service.mu.Unlock()

	service.logger.Info("vendor contacted", "ticket_id", ticketID, "vendor", vendor.Username)
	service.hub.send(vendor.ID, triage.Event{
		Type:     triage.EventVendorContacted,
		TicketID: ticketID,
		Status:   updated.Status,
		Vendor:   vendor.Username,
	})
	writeJSON(writer, updated)
}

// appendMessage adds a thread entry. Callers hold the lock.
func (service *Service) appendMessage(ticketID int, sender triage.User, recipient *triage.User, messageType, content string) triage.Message {
	message := triage.Message{
		ID:          service.nextMessageID,
		Content:     content,
		MessageType: messageType,
		CreatedAt:   service.timestamp(),
		Sender:      sender,
		Recipient:   recipient,
	}
	service.nextMessageID++
	service.messages[ticketID] = append(service.messages[ticketID], message)
	return message
}

// handleSendMessage appends a chat message. A vendor's message on a
// ticket still waiting for them advances the status to
// vendor_responded and notifies the business side with the new
// status; any other chat message produces a plain new_message event
// for the counterpart.
func (service *Service) handleSendMessage(writer http.ResponseWriter, request *http.Request) {
	ticketID, ok := pathID(request, "ticketID")
	senderID, err := strconv.Atoi(request.FormValue("sender_id"))
	content := strings.TrimSpace(request.FormValue("content"))
	if !ok || err != nil || content == "" {
		http.Error(writer, "sender_id and content are required", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	ticket := service.ticketByID(ticketID)
	if ticket == nil {
		service.mu.Unlock()
		http.Error(writer, "unknown ticket", http.StatusNotFound)
		return
	}
	if !triage.CanChat(*ticket) {
		service.mu.Unlock()
		http.Error(writer, "ticket is not open for chat", http.StatusConflict)
		return
	}
	sender, found := service.userByID(senderID)
	if !found {
		service.mu.Unlock()
		http.Error(writer, "unknown sender", http.StatusNotFound)
		return
	}

	var messageType string
	var counterpartID int
	switch {
	case ticket.Business != nil && sender.ID == ticket.Business.ID:
		messageType = triage.MessageBusinessToVendor
		counterpartID = ticket.Vendor.ID
	case sender.ID == ticket.Vendor.ID:
		messageType = triage.MessageVendorToBusiness
		if ticket.Business != nil {
			counterpartID = ticket.Business.ID
		}
	default:
		service.mu.Unlock()
		http.Error(writer, "sender is not a party to this ticket", http.StatusBadRequest)
		return
	}

	var recipient *triage.User
	if counterpart, found := service.userByID(counterpartID); found {
		recipient = &counterpart
	}
	message := service.appendMessage(ticketID, sender, recipient, messageType, content)

	vendorResponded := sender.Role == triage.RoleVendor && ticket.Status == triage.StatusVendorContacted
	if vendorResponded {
		ticket.Status = triage.StatusVendorResponded
	}
	status := ticket.Status
	service.mu.Unlock()

	if vendorResponded {
		service.logger.Info("vendor responded", "ticket_id", ticketID, "vendor", sender.Username)
		service.hub.send(counterpartID, triage.Event{
			Type:     triage.EventVendorResponse,
			TicketID: ticketID,
			Status:   status,
			Sender:   sender.Username,
		})
	} else if counterpartID != 0 {
		service.hub.send(counterpartID, triage.Event{
			Type:     triage.EventNewMessage,
			TicketID: ticketID,
			Status:   status,
			Sender:   sender.Username,
		})
	}
	writeJSON(writer, message)
}

func (service *Service) handleResolve(writer http.ResponseWriter, request *http.Request) {
	ticketID, ok := pathID(request, "ticketID")
	businessID, err := strconv.Atoi(request.FormValue("business_id"))
	resolution := strings.TrimSpace(request.FormValue("resolution"))
	if !ok || err != nil || resolution == "" {
		http.Error(writer, "business_id and resolution are required", http.StatusBadRequest)
		return
	}

	service.mu.Lock()
	ticket := service.ticketByID(ticketID)
	if ticket == nil {
		service.mu.Unlock()
		http.Error(writer, "unknown ticket", http.StatusNotFound)
		return
	}
	if ticket.Status != triage.StatusVendorResponded {
		service.mu.Unlock()
		http.Error(writer, "ticket is not ready to resolve", http.StatusConflict)
		return
	}
	if ticket.Business == nil || ticket.Business.ID != businessID {
		service.mu.Unlock()
		http.Error(writer, "only the assigned business may resolve", http.StatusConflict)
		return
	}
	sender, _ := service.userByID(businessID)
	customer, _ := service.userByID(ticket.Customer.ID)
	service.appendMessage(ticketID, sender, &customer, triage.MessageResolution, resolution)
	ticket.Status = triage.StatusResolved
	customerID := ticket.Customer.ID
	var vendorID int
	if ticket.Vendor != nil {
		vendorID = ticket.Vendor.ID
	}
	updated := *ticket
	service.mu.Unlock()

	service.logger.Info("ticket resolved", "ticket_id", ticketID, "business", sender.Username)
	event := triage.Event{
		Type:       triage.EventTicketResolved,
		TicketID:   ticketID,
		Status:     updated.Status,
		Resolution: resolution,
	}
	service.hub.send(customerID, event)
	if vendorID != 0 {
		service.hub.send(vendorID, event)
	}
	writeJSON(writer, updated)
}

func (service *Service) handleStream(writer http.ResponseWriter, request *http.Request) {
	userID, ok := pathID(request, "userID")
	if !ok {
		http.Error(writer, "bad user id", http.StatusBadRequest)
		return
	}
	service.mu.Lock()
	_, found := service.userByID(userID)
	service.mu.Unlock()
	if !found {
		http.Error(writer, "unknown user", http.StatusNotFound)
		return
	}
	service.hub.serve(writer, request, userID)
}
