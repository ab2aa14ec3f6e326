// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/triagekit/triage/lib/schema/triage"
	"github.com/triagekit/triage/lib/tui"
)

// renderThreadContent draws the right pane's scrollable content: the
// selected ticket's header, its description as markdown, and the
// message thread.
func (model Model) renderThreadContent() string {
	theme := model.theme
	width := model.threadWidth()
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	if model.threadTicketID == 0 {
		return faint.Render(" select a ticket with enter")
	}

	var lines []string
	ticket, known := model.ticketByID(model.threadTicketID)
	if known {
		title := lipgloss.NewStyle().Bold(true).Foreground(theme.NormalText).
			Render(fmt.Sprintf(" #%d %s", ticket.ID, ticket.Title))
		badge := lipgloss.NewStyle().Foreground(theme.StatusColor(ticket.Status)).
			Render("[" + ticket.Status.Label() + "]")
		lines = append(lines, ansi.Truncate(title+" "+badge, width, "…"))

		lines = append(lines, " "+model.renderParties(ticket))
		if created := formatTimestamp(ticket.CreatedAt); created != "" {
			opened := "opened " + created
			if model.viewer.Role == triage.RoleVendor {
				urgency := triage.TicketUrgency(ticket, model.now())
				opened += " · " + lipgloss.NewStyle().
					Foreground(theme.UrgencyColor(urgency)).
					Render(urgency.Label())
			}
			lines = append(lines, " "+faint.Render(opened))
		}
		lines = append(lines, "")

		if description := tui.RenderMarkdown(ticket.Description, theme, width-2); description != "" {
			for _, descriptionLine := range strings.Split(description, "\n") {
				lines = append(lines, " "+descriptionLine)
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, faint.Render(" ─── thread ───"))
	if len(model.thread) == 0 {
		hint := " no messages yet"
		if model.viewer.Role == triage.RoleCustomer {
			hint = " the resolution will appear here"
		}
		lines = append(lines, faint.Render(hint))
	}
	for _, message := range model.thread {
		if !message.VisibleTo(model.viewer.Role) {
			continue
		}
		lines = append(lines, model.renderMessage(message, width)...)
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderParties(ticket triage.Ticket) string {
	theme := model.theme
	parts := []string{
		lipgloss.NewStyle().Foreground(theme.RoleCustomer).Render(ticket.Customer.Username),
	}
	if ticket.Business != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.RoleBusiness).Render(ticket.Business.Username))
	}
	if ticket.Vendor != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.RoleVendor).Render(ticket.Vendor.Username))
	}
	separator := lipgloss.NewStyle().Foreground(theme.FaintText).Render(" → ")
	return strings.Join(parts, separator)
}

// renderMessage formats one thread entry: a header line with time,
// sender, and kind, then the content wrapped underneath.
func (model Model) renderMessage(message triage.Message, width int) []string {
	theme := model.theme
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)

	header := " " + faint.Render(formatTimestamp(message.CreatedAt)) + " " +
		lipgloss.NewStyle().Foreground(theme.RoleColor(message.Sender.Role)).
			Render(message.Sender.Username)
	if message.MessageType == triage.MessageResolution {
		header += " " + lipgloss.NewStyle().
			Foreground(theme.StatusResolved).Bold(true).
			Render("✓ resolution")
	}

	lines := []string{header}
	wrapped := ansi.Wrap(lipgloss.NewStyle().Foreground(theme.NormalText).
		Render(message.Content), max(width-4, 10), " ,.;-")
	for _, contentLine := range strings.Split(wrapped, "\n") {
		lines = append(lines, "   "+contentLine)
	}
	return lines
}

// formatTimestamp renders a service timestamp compactly, or returns
// the raw value when it does not parse.
func formatTimestamp(value string) string {
	if value == "" {
		return ""
	}
	parsed, ok := triage.ParseTime(value)
	if !ok {
		return value
	}
	return parsed.Format("Jan 2 15:04")
}
