// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/triagekit/triage/lib/schema/triage"
	"github.com/triagekit/triage/lib/store"
	"github.com/triagekit/triage/lib/tui"
)

// FocusRegion identifies which part of the layout receives key input.
type FocusRegion int

const (
	FocusList FocusRegion = iota
	FocusThread
	FocusChat
)

// storeChangeMsg arrives when the store replaced a cached collection.
type storeChangeMsg struct {
	change store.Change
}

// mutationDoneMsg reports the outcome of a workflow mutation fired
// from the UI.
type mutationDoneMsg struct {
	action string
	err    error
}

// clockTickMsg re-renders periodically so the vendor view's urgency
// labels track ticket age without any data changing.
type clockTickMsg time.Time

const urgencyTickInterval = 30 * time.Second

// Model is the bubbletea model serving all three role views. The
// viewer's role decides which actions are offered; the layout is
// shared: ticket list on the left, detail and thread on the right,
// modal forms spliced over the top.
type Model struct {
	ctx    context.Context
	store  *store.Store
	viewer triage.User
	theme  tui.Theme
	keys   KeyMap

	width  int
	height int
	ready  bool

	changes <-chan store.Change

	tickets        []triage.Ticket
	thread         []triage.Message
	threadTicketID int

	cursor     int
	listOffset int
	focus      FocusRegion
	threadView viewport.Model

	chatField FormField
	form      *Form

	notice      string
	noticeLevel slog.Level

	// Injectable clock so urgency rendering is testable.
	now func() time.Time
}

// New builds a model over the given store. The context bounds every
// service call the UI makes.
func New(ctx context.Context, dataStore *store.Store) Model {
	return Model{
		ctx:        ctx,
		store:      dataStore,
		viewer:     dataStore.Viewer(),
		theme:      tui.DefaultTheme,
		keys:       DefaultKeyMap(),
		changes:    dataStore.Subscribe(),
		tickets:    dataStore.Tickets(),
		threadView: viewport.New(0, 0),
		chatField:  newLineField(""),
		now:        time.Now,
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(listenForChange(model.changes), urgencyTick())
}

// listenForChange waits for the next store change. Re-issued after
// every delivery, the teacher pattern for channel-fed models.
func listenForChange(channel <-chan store.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-channel
		if !ok {
			return nil
		}
		return storeChangeMsg{change: change}
	}
}

func urgencyTick() tea.Cmd {
	return tea.Tick(urgencyTickInterval, func(at time.Time) tea.Msg {
		return clockTickMsg(at)
	})
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.layoutThreadView()

	case storeChangeMsg:
		if message.change.Tickets {
			model.tickets = model.store.Tickets()
			model.clampCursor()
		}
		if message.change.Thread {
			model.threadTicketID, model.thread = model.store.Thread()
			model.refreshThreadContent()
		}
		return model, listenForChange(model.changes)

	case mutationDoneMsg:
		if message.err != nil {
			model.noticeLevel = slog.LevelWarn
			if !errors.Is(message.err, store.ErrNotAllowed) {
				model.noticeLevel = slog.LevelError
			}
			model.notice = message.action + " failed: " + message.err.Error()
		} else {
			model.noticeLevel = slog.LevelInfo
			model.notice = message.action + " done"
		}
		return model, nil

	case noticeMsg:
		model.notice = message.text
		model.noticeLevel = message.level
		return model, nil

	case clockTickMsg:
		return model, urgencyTick()

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works everywhere except inside an open form, where ctrl+c
	// still applies but plain q types a letter.
	if message.String() == "ctrl+c" {
		return model, tea.Quit
	}
	if model.form != nil {
		return model.handleFormKey(message)
	}
	if model.focus == FocusChat {
		return model.handleChatKey(message)
	}
	return model.handleBrowseKey(message)
}

func (model Model) handleFormKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.form.HandleKey(message) {
	case FormCancel:
		model.form = nil
	case FormSubmit:
		submitted := model.form
		model.form = nil
		return model, model.submitForm(submitted)
	}
	return model, nil
}

// submitForm turns a completed form into the matching store mutation,
// run off the Update loop. The store refetches on success; the UI
// hears about it through the change subscription.
func (model Model) submitForm(form *Form) tea.Cmd {
	ctx, dataStore := model.ctx, model.store
	switch form.Kind {
	case FormCreateTicket:
		title := form.Fields[0].Value()
		description := form.Fields[1].Value()
		return func() tea.Msg {
			return mutationDoneMsg{action: "create ticket", err: dataStore.CreateTicket(ctx, title, description)}
		}
	case FormContactVendor:
		vendorID := form.Fields[0].SelectedUserID()
		requestText := form.Fields[1].Value()
		ticketID := form.TicketID
		return func() tea.Msg {
			return mutationDoneMsg{action: "contact vendor", err: dataStore.ContactVendor(ctx, ticketID, vendorID, requestText)}
		}
	case FormResolve:
		resolution := form.Fields[0].Value()
		ticketID := form.TicketID
		return func() tea.Msg {
			return mutationDoneMsg{action: "resolve", err: dataStore.ResolveTicket(ctx, ticketID, resolution)}
		}
	}
	return nil
}

func (model Model) handleChatKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.String() {
	case "esc":
		model.focus = FocusList
		return model, nil
	case "enter":
		content := model.chatField.Value()
		model.chatField.reset()
		ticketID := model.threadTicketID
		if ticketID == 0 {
			return model, nil
		}
		ctx, dataStore := model.ctx, model.store
		return model, func() tea.Msg {
			return mutationDoneMsg{action: "send message", err: dataStore.SendMessage(ctx, ticketID, content)}
		}
	}
	model.chatField.handleLineKey(message)
	return model, nil
}

func (model Model) handleBrowseKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := model.keys
	switch {
	case key.Matches(message, keys.Quit):
		return model, tea.Quit

	case key.Matches(message, keys.Refresh):
		ctx, dataStore := model.ctx, model.store
		return model, func() tea.Msg {
			dataStore.RefreshUsers(ctx)
			dataStore.RefreshTickets(ctx)
			dataStore.RefreshThread(ctx)
			return nil
		}

	case key.Matches(message, keys.FocusToggle):
		model.cycleFocus()
		return model, nil
	}

	if model.focus == FocusThread {
		var command tea.Cmd
		model.threadView, command = model.threadView.Update(message)
		return model, command
	}

	switch {
	case key.Matches(message, keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, keys.Down):
		model.moveCursor(1)
	case key.Matches(message, keys.PageUp):
		model.moveCursor(-model.listHeight())
	case key.Matches(message, keys.PageDown):
		model.moveCursor(model.listHeight())
	case key.Matches(message, keys.Home):
		model.cursor = 0
		model.clampCursor()
	case key.Matches(message, keys.End):
		model.cursor = len(model.tickets) - 1
		model.clampCursor()

	case key.Matches(message, keys.Select):
		if ticket, ok := model.cursorTicket(); ok {
			ctx, dataStore := model.ctx, model.store
			return model, func() tea.Msg {
				dataStore.SelectTicket(ctx, ticket.ID)
				return nil
			}
		}

	case key.Matches(message, keys.NewTicket):
		if model.viewer.Role == triage.RoleCustomer {
			model.form = NewCreateTicketForm()
		}

	case key.Matches(message, keys.Assign):
		if ticket, ok := model.cursorTicket(); ok &&
			triage.NextAction(ticket, model.viewer) == triage.ActionAssign {
			ctx, dataStore := model.ctx, model.store
			return model, func() tea.Msg {
				return mutationDoneMsg{action: "assign", err: dataStore.AssignTicket(ctx, ticket.ID)}
			}
		}

	case key.Matches(message, keys.ContactVendor):
		if ticket, ok := model.cursorTicket(); ok &&
			triage.NextAction(ticket, model.viewer) == triage.ActionContactVendor {
			model.form = NewContactVendorForm(ticket.ID, model.store.Vendors())
		}

	case key.Matches(message, keys.Resolve):
		if ticket, ok := model.cursorTicket(); ok &&
			triage.NextAction(ticket, model.viewer) == triage.ActionResolve {
			model.form = NewResolveForm(ticket.ID)
		}

	case key.Matches(message, keys.Chat):
		if model.chatAvailable() {
			model.focus = FocusChat
		}
	}
	return model, nil
}

// chatAvailable reports whether the chat input may take focus: a
// ticket with a vendor, not yet resolved, an open thread, and a
// viewer who participates in chat (customers never do).
func (model Model) chatAvailable() bool {
	if model.viewer.Role == triage.RoleCustomer || model.threadTicketID == 0 {
		return false
	}
	ticket, ok := model.ticketByID(model.threadTicketID)
	return ok && triage.CanChat(ticket)
}

func (model *Model) cycleFocus() {
	switch model.focus {
	case FocusList:
		if model.threadTicketID != 0 {
			model.focus = FocusThread
		}
	case FocusThread:
		if model.chatAvailable() {
			model.focus = FocusChat
		} else {
			model.focus = FocusList
		}
	case FocusChat:
		model.focus = FocusList
	}
}

func (model Model) cursorTicket() (triage.Ticket, bool) {
	if model.cursor < 0 || model.cursor >= len(model.tickets) {
		return triage.Ticket{}, false
	}
	return model.tickets[model.cursor], true
}

func (model Model) ticketByID(ticketID int) (triage.Ticket, bool) {
	for _, ticket := range model.tickets {
		if ticket.ID == ticketID {
			return ticket, true
		}
	}
	return triage.Ticket{}, false
}

func (model *Model) moveCursor(delta int) {
	model.cursor += delta
	model.clampCursor()
}

func (model *Model) clampCursor() {
	if len(model.tickets) == 0 {
		model.cursor = 0
		model.listOffset = 0
		return
	}
	model.cursor = clamp(model.cursor, 0, len(model.tickets)-1)

	visible := model.listHeight()
	if visible <= 0 {
		return
	}
	if model.cursor < model.listOffset {
		model.listOffset = model.cursor
	}
	if model.cursor >= model.listOffset+visible {
		model.listOffset = model.cursor - visible + 1
	}
}
