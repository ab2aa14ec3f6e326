// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/triagekit/triage/lib/schema/triage"
	"github.com/triagekit/triage/lib/tui"
)

const (
	headerHeight    = 1
	statusBarHeight = 1
	chatLineHeight  = 1

	minListWidth = 32
	maxListWidth = 60
)

func (model Model) listWidth() int {
	return clamp(model.width*2/5, minListWidth, max(model.width-20, minListWidth))
}

func (model Model) listHeight() int {
	return max(model.height-headerHeight-statusBarHeight, 1)
}

func (model Model) threadWidth() int {
	// One column for the pane divider.
	return max(model.width-model.listWidth()-1, 20)
}

func (model *Model) layoutThreadView() {
	model.threadView.Width = model.threadWidth()
	model.threadView.Height = max(model.height-headerHeight-statusBarHeight-chatLineHeight, 1)
	model.refreshThreadContent()
	model.clampCursor()
}

// refreshThreadContent re-renders the detail pane into the viewport
// and keeps it pinned to the bottom, where new messages land.
func (model *Model) refreshThreadContent() {
	atBottom := model.threadView.AtBottom()
	model.threadView.SetContent(model.renderThreadContent())
	if atBottom {
		model.threadView.GotoBottom()
	}
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "starting…"
	}

	body := model.renderBody()
	view := model.renderHeader() + "\n" + body + "\n" + model.renderStatusBar()

	if model.form != nil {
		formWidth := clamp(model.width-8, 30, 72)
		overlay := model.form.Render(model.theme, formWidth)
		anchorX, anchorY := tui.CenterAnchor(model.width, model.height, formWidth, len(overlay))
		view = tui.SpliceOverlay(view, overlay, anchorX, anchorY)
	}
	return view
}

func (model Model) renderHeader() string {
	theme := model.theme
	product := lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Bold(true).
		Render("TRIAGE")
	identity := lipgloss.NewStyle().
		Foreground(theme.RoleColor(model.viewer.Role)).
		Render(fmt.Sprintf("%s · %s", model.viewer.Username, model.viewer.Role))
	counts := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Render(fmt.Sprintf("%d active / %d tickets", model.store.ActiveTicketCount(), len(model.tickets)))

	line := " " + product + "  " + identity + "  " + counts
	if width := ansi.StringWidth(line); width < model.width {
		line += strings.Repeat(" ", model.width-width)
	}
	return ansi.Truncate(line, model.width, "")
}

func (model Model) renderBody() string {
	divider := lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render("│")
	height := model.listHeight()

	listLines := strings.Split(model.renderList(), "\n")
	rightLines := strings.Split(model.renderRightPane(), "\n")

	var body strings.Builder
	for row := 0; row < height; row++ {
		var left, right string
		if row < len(listLines) {
			left = listLines[row]
		}
		if row < len(rightLines) {
			right = rightLines[row]
		}
		if width := ansi.StringWidth(left); width < model.listWidth() {
			left += strings.Repeat(" ", model.listWidth()-width)
		}
		body.WriteString(left)
		body.WriteString(divider)
		body.WriteString(right)
		if row < height-1 {
			body.WriteString("\n")
		}
	}
	return body.String()
}

// renderRightPane stacks the thread viewport over the chat line.
func (model Model) renderRightPane() string {
	pane := model.threadView.View()
	return pane + "\n" + model.renderChatLine()
}

func (model Model) renderChatLine() string {
	theme := model.theme
	width := model.threadWidth()

	if !model.chatAvailable() {
		return ""
	}
	if model.focus != FocusChat {
		hint := lipgloss.NewStyle().Foreground(theme.HelpText).Render(" press m to message")
		return ansi.Truncate(hint, width, "")
	}
	runes := model.chatField.lines[0]
	before := string(runes[:model.chatField.cursorX])
	after := string(runes[model.chatField.cursorX:])
	prompt := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Render(" › ")
	line := prompt + lipgloss.NewStyle().Foreground(theme.NormalText).Render(before+"▏"+after)
	return ansi.Truncate(line, width, "…")
}

func (model Model) renderStatusBar() string {
	theme := model.theme
	help := model.helpText()
	line := lipgloss.NewStyle().Foreground(theme.HelpText).Render(" " + help)

	if model.notice != "" {
		noticeColor := theme.FaintText
		switch {
		case model.noticeLevel >= slog.LevelError:
			noticeColor = theme.ErrorText
		case model.noticeLevel >= slog.LevelWarn:
			noticeColor = theme.WarningText
		}
		notice := lipgloss.NewStyle().Foreground(noticeColor).Render(model.notice)
		line += "  " + notice
	}
	return ansi.Truncate(line, model.width, "…")
}

func (model Model) helpText() string {
	if model.form != nil {
		return "ctrl+d submit · tab field · esc cancel"
	}
	if model.focus == FocusChat {
		return "enter send · esc back"
	}
	var parts []string
	switch model.viewer.Role {
	case triage.RoleCustomer:
		parts = append(parts, model.keys.NewTicket.Help().Key+" "+model.keys.NewTicket.Help().Desc)
	case triage.RoleBusiness:
		parts = append(parts,
			model.keys.Assign.Help().Key+" "+model.keys.Assign.Help().Desc,
			model.keys.ContactVendor.Help().Key+" "+model.keys.ContactVendor.Help().Desc,
			model.keys.Resolve.Help().Key+" "+model.keys.Resolve.Help().Desc,
			model.keys.Chat.Help().Key+" "+model.keys.Chat.Help().Desc)
	case triage.RoleVendor:
		parts = append(parts, model.keys.Chat.Help().Key+" "+model.keys.Chat.Help().Desc)
	}
	parts = append(parts,
		model.keys.Select.Help().Key+" "+model.keys.Select.Help().Desc,
		model.keys.FocusToggle.Help().Key+" "+model.keys.FocusToggle.Help().Desc,
		model.keys.Refresh.Help().Key+" "+model.keys.Refresh.Help().Desc,
		model.keys.Quit.Help().Key+" "+model.keys.Quit.Help().Desc)
	return strings.Join(parts, " · ")
}
