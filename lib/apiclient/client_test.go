// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/triagekit/triage/lib/schema/triage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestListTickets verifies the happy path: the client hits the
// per-user ticket route and decodes the array.
func TestListTickets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/tickets/2" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		io.WriteString(writer, `[{"id":1,"title":"printer on fire","status":"open",
			"customer":{"id":1,"username":"customer1"}}]`)
	}))
	defer server.Close()

	client := New(server.URL, testLogger())
	tickets := client.ListTickets(context.Background(), 2)
	if len(tickets) != 1 {
		t.Fatalf("got %d tickets, want 1", len(tickets))
	}
	if tickets[0].Status != triage.StatusOpen {
		t.Errorf("status %q, want open", tickets[0].Status)
	}
	if tickets[0].Business != nil {
		t.Error("business should be absent on an open ticket")
	}
}

// TestListFailuresReturnEmpty verifies the degraded-read contract:
// server errors, malformed JSON, and unreachable hosts all produce an
// empty, non-nil slice rather than an error or a nil.
func TestListFailuresReturnEmpty(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()
	malformed := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		io.WriteString(writer, `{"not":"an array"`)
	}))
	defer malformed.Close()

	ctx := context.Background()
	for name, client := range map[string]*Client{
		"server error":   New(failing.URL, testLogger()),
		"malformed body": New(malformed.URL, testLogger()),
		"unreachable":    New("http://127.0.0.1:1", testLogger()),
	} {
		if tickets := client.ListTickets(ctx, 1); tickets == nil || len(tickets) != 0 {
			t.Errorf("%s: ListTickets = %v, want empty slice", name, tickets)
		}
		if users := client.ListUsers(ctx); users == nil || len(users) != 0 {
			t.Errorf("%s: ListUsers = %v, want empty slice", name, users)
		}
		if messages := client.ListMessages(ctx, 1, 1); messages == nil || len(messages) != 0 {
			t.Errorf("%s: ListMessages = %v, want empty slice", name, messages)
		}
	}
}

// TestListMessagesPassesViewer verifies that the viewer's identity
// rides along as the user_id query parameter, since the service
// filters the thread by role.
func TestListMessagesPassesViewer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.URL.Query().Get("user_id"); got != "5" {
			t.Errorf("user_id = %q, want 5", got)
		}
		io.WriteString(writer, `[]`)
	}))
	defer server.Close()

	New(server.URL, testLogger()).ListMessages(context.Background(), 9, 5)
}

// TestMutationsEncodeForms verifies that each mutation posts the
// documented form fields to the documented route.
func TestMutationsEncodeForms(t *testing.T) {
	type received struct {
		path string
		form map[string]string
	}
	var last received
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("method %s, want POST", request.Method)
		}
		if contentType := request.Header.Get("Content-Type"); contentType != "application/x-www-form-urlencoded" {
			t.Errorf("content type %q", contentType)
		}
		request.ParseForm()
		form := map[string]string{}
		for key := range request.PostForm {
			form[key] = request.PostForm.Get(key)
		}
		last = received{path: request.URL.Path, form: form}
	}))
	defer server.Close()

	client := New(server.URL, testLogger())
	ctx := context.Background()

	steps := []struct {
		name     string
		call     func() error
		wantPath string
		wantForm map[string]string
	}{
		{
			"create", func() error { return client.CreateTicket(ctx, 1, "printer on fire", "smoke") },
			"/tickets", map[string]string{"title": "printer on fire", "description": "smoke", "customer_id": "1"},
		},
		{
			"assign", func() error { return client.AssignTicket(ctx, 7, 2) },
			"/tickets/7/assign", map[string]string{"business_id": "2"},
		},
		{
			"contact vendor", func() error { return client.ContactVendor(ctx, 7, 3, "please look") },
			"/tickets/7/contact-vendor", map[string]string{"vendor_id": "3", "message": "please look"},
		},
		{
			"send message", func() error { return client.SendMessage(ctx, 7, 3, "on it") },
			"/tickets/7/send-message", map[string]string{"sender_id": "3", "content": "on it"},
		},
		{
			"resolve", func() error { return client.ResolveTicket(ctx, 7, 2, "fuser replaced") },
			"/tickets/7/resolve", map[string]string{"business_id": "2", "resolution": "fuser replaced"},
		},
	}
	for _, step := range steps {
		if err := step.call(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if last.path != step.wantPath {
			t.Errorf("%s: path %q, want %q", step.name, last.path, step.wantPath)
		}
		for key, want := range step.wantForm {
			if last.form[key] != want {
				t.Errorf("%s: form[%s] = %q, want %q", step.name, key, last.form[key], want)
			}
		}
	}
}

// TestMutationErrorCarriesBody verifies that a rejected mutation
// surfaces the service's status and response body in the error.
func TestMutationErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "ticket is not open", http.StatusConflict)
	}))
	defer server.Close()

	err := New(server.URL, testLogger()).AssignTicket(context.Background(), 7, 2)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, fragment := range []string{"409", "ticket is not open"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q missing %q", err, fragment)
		}
	}
}
