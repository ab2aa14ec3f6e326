// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/triagekit/triage/lib/schema/triage"
)

// renderList draws the left pane: one row per ticket in service
// order, the cursor row highlighted. Business and customer rows show
// the customer; vendor rows show the urgency label instead, since a
// vendor's queue is worked oldest-first.
func (model Model) renderList() string {
	theme := model.theme
	width := model.listWidth()
	height := model.listHeight()

	if len(model.tickets) == 0 {
		empty := " no tickets"
		if model.viewer.Role == triage.RoleCustomer {
			empty = " no tickets · press n to open one"
		}
		return lipgloss.NewStyle().Foreground(theme.FaintText).Render(empty)
	}

	now := model.now()
	var rows []string
	end := min(model.listOffset+height, len(model.tickets))
	for index := model.listOffset; index < end; index++ {
		ticket := model.tickets[index]

		badge := "[" + ticket.Status.Label() + "]"
		var trailer string
		if model.viewer.Role == triage.RoleVendor {
			trailer = triage.TicketUrgency(ticket, now).Label()
		} else {
			trailer = ticket.Customer.Username
		}

		identifier := fmt.Sprintf("#%d", ticket.ID)
		available := width - ansi.StringWidth(badge) - ansi.StringWidth(identifier) -
			ansi.StringWidth(trailer) - 6
		title := ticket.Title
		if ansi.StringWidth(title) > available {
			title = ansi.Truncate(title, max(available, 1), "…")
		}
		padding := max(available-ansi.StringWidth(title), 0)

		if index == model.cursor {
			row := fmt.Sprintf(" ▸ %s %s %s%s %s ",
				badge, identifier, title, strings.Repeat(" ", padding), trailer)
			rows = append(rows, lipgloss.NewStyle().
				Background(theme.SelectedBackground).
				Foreground(theme.SelectedForeground).
				Render(ansi.Truncate(row, width, "")))
			continue
		}

		styledBadge := lipgloss.NewStyle().
			Foreground(theme.StatusColor(ticket.Status)).
			Render(badge)
		styledTrailer := lipgloss.NewStyle().Foreground(theme.FaintText).Render(trailer)
		if model.viewer.Role == triage.RoleVendor {
			styledTrailer = lipgloss.NewStyle().
				Foreground(theme.UrgencyColor(triage.TicketUrgency(ticket, now))).
				Render(trailer)
		}
		row := fmt.Sprintf("   %s %s %s%s %s ",
			styledBadge,
			lipgloss.NewStyle().Foreground(theme.FaintText).Render(identifier),
			lipgloss.NewStyle().Foreground(theme.NormalText).Render(title),
			strings.Repeat(" ", padding),
			styledTrailer)
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}
