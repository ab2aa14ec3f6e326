// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package apiclient is the REST client for the triage service. Reads
// degrade to empty results on any failure so views always have
// something to render; mutations surface errors to the caller, who
// refetches on success rather than applying changes locally.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/triagekit/triage/lib/schema/triage"
)

const defaultRequestTimeout = 10 * time.Second

// Client talks to one triage service instance. Safe for concurrent
// use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option adjusts a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly so tests
// can inject transports or tighter timeouts.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// New returns a client for the service at baseURL (scheme and host,
// no trailing slash required).
func New(baseURL string, logger *slog.Logger, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// BaseURL returns the service endpoint the client was built with.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// getList fetches a JSON array and decodes it into result. Any
// failure is logged and reported as false; callers substitute an
// empty collection.
func (client *Client) getList(ctx context.Context, path string, result any) bool {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		client.logger.Warn("building list request", "path", path, "error", err)
		return false
	}
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Warn("list request failed", "path", path, "error", err)
		return false
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		client.logger.Warn("list request rejected", "path", path, "status", response.StatusCode)
		return false
	}
	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		client.logger.Warn("decoding list response", "path", path, "error", err)
		return false
	}
	return true
}

// postForm submits a form-encoded mutation. A non-2xx response
// becomes an error carrying the status and the response body.
func (client *Client) postForm(ctx context.Context, path string, form url.Values) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		client.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("posting %s: %w", path, err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return fmt.Errorf("service rejected %s: %s: %s",
			path, response.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// ListUsers returns the service's user directory, or an empty slice
// on any failure.
func (client *Client) ListUsers(ctx context.Context) []triage.User {
	var users []triage.User
	if !client.getList(ctx, "/users", &users) || users == nil {
		return []triage.User{}
	}
	return users
}

// ListTickets returns the tickets visible to the given user (the
// service scopes by role), or an empty slice on any failure.
func (client *Client) ListTickets(ctx context.Context, userID int) []triage.Ticket {
	var tickets []triage.Ticket
	path := "/tickets/" + strconv.Itoa(userID)
	if !client.getList(ctx, path, &tickets) || tickets == nil {
		return []triage.Ticket{}
	}
	return tickets
}

// ListMessages returns the ticket's thread as visible to the given
// user (customers get resolution messages only), or an empty slice on
// any failure.
func (client *Client) ListMessages(ctx context.Context, ticketID, userID int) []triage.Message {
	var messages []triage.Message
	path := fmt.Sprintf("/tickets/%d/messages?user_id=%d", ticketID, userID)
	if !client.getList(ctx, path, &messages) || messages == nil {
		return []triage.Message{}
	}
	return messages
}

// CreateTicket opens a new ticket on behalf of a customer.
func (client *Client) CreateTicket(ctx context.Context, customerID int, title, description string) error {
	return client.postForm(ctx, "/tickets", url.Values{
		"title":       {title},
		"description": {description},
		"customer_id": {strconv.Itoa(customerID)},
	})
}

// AssignTicket claims an open ticket for a business user.
func (client *Client) AssignTicket(ctx context.Context, ticketID, businessID int) error {
	return client.postForm(ctx, fmt.Sprintf("/tickets/%d/assign", ticketID), url.Values{
		"business_id": {strconv.Itoa(businessID)},
	})
}

// ContactVendor attaches a vendor to an assigned ticket with an
// initial request message.
func (client *Client) ContactVendor(ctx context.Context, ticketID, vendorID int, message string) error {
	return client.postForm(ctx, fmt.Sprintf("/tickets/%d/contact-vendor", ticketID), url.Values{
		"vendor_id": {strconv.Itoa(vendorID)},
		"message":   {message},
	})
}

// SendMessage appends a chat message to a ticket's thread. When the
// sender is the ticket's vendor and the ticket is waiting on them, the
// service advances the status as a side effect.
func (client *Client) SendMessage(ctx context.Context, ticketID, senderID int, content string) error {
	return client.postForm(ctx, fmt.Sprintf("/tickets/%d/send-message", ticketID), url.Values{
		"sender_id": {strconv.Itoa(senderID)},
		"content":   {content},
	})
}

// ResolveTicket closes the loop: records the resolution text and moves
// the ticket to its terminal status.
func (client *Client) ResolveTicket(ctx context.Context, ticketID, businessID int, resolution string) error {
	return client.postForm(ctx, fmt.Sprintf("/tickets/%d/resolve", ticketID), url.Values{
		"business_id": {strconv.Itoa(businessID)},
		"resolution":  {resolution},
	})
}
