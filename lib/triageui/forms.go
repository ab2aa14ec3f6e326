// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/triagekit/triage/lib/schema/triage"
	"github.com/triagekit/triage/lib/tui"
)

// FormKind identifies which workflow mutation a form submits.
type FormKind int

const (
	FormCreateTicket FormKind = iota
	FormContactVendor
	FormResolve
)

// FieldKind is the input widget type of one form field.
type FieldKind int

const (
	FieldLine   FieldKind = iota // single line of text
	FieldText                    // multi-line text
	FieldPicker                  // dropdown selection
)

// FormField is one labeled input in a modal form. Text editing works
// on a rune grid so cursor movement and splicing stay unicode-safe.
type FormField struct {
	Label string
	Kind  FieldKind

	lines   [][]rune
	cursorX int
	cursorY int

	picker tui.Dropdown
}

func newLineField(label string) FormField {
	return FormField{Label: label, Kind: FieldLine, lines: [][]rune{{}}}
}

func newTextField(label string) FormField {
	return FormField{Label: label, Kind: FieldText, lines: [][]rune{{}}}
}

func newPickerField(label string, options []tui.DropdownOption) FormField {
	return FormField{Label: label, Kind: FieldPicker, picker: tui.Dropdown{Options: options}}
}

// Value returns the field's text content. Picker fields return the
// selected label.
func (field *FormField) Value() string {
	if field.Kind == FieldPicker {
		if option, ok := field.picker.Selected(); ok {
			return option.Label
		}
		return ""
	}
	parts := make([]string, len(field.lines))
	for index, line := range field.lines {
		parts[index] = string(line)
	}
	return strings.Join(parts, "\n")
}

// SelectedUserID returns the picker's selected user ID, or 0.
func (field *FormField) SelectedUserID() int {
	if option, ok := field.picker.Selected(); ok {
		return option.UserID
	}
	return 0
}

func (field *FormField) insertRune(r rune) {
	line := field.lines[field.cursorY]
	line = append(line[:field.cursorX], append([]rune{r}, line[field.cursorX:]...)...)
	field.lines[field.cursorY] = line
	field.cursorX++
}

func (field *FormField) backspace() {
	if field.cursorX > 0 {
		line := field.lines[field.cursorY]
		field.lines[field.cursorY] = append(line[:field.cursorX-1], line[field.cursorX:]...)
		field.cursorX--
		return
	}
	if field.cursorY == 0 {
		return
	}
	// Join with the previous line.
	previous := field.lines[field.cursorY-1]
	field.cursorX = len(previous)
	field.lines[field.cursorY-1] = append(previous, field.lines[field.cursorY]...)
	field.lines = append(field.lines[:field.cursorY], field.lines[field.cursorY+1:]...)
	field.cursorY--
}

func (field *FormField) newline() {
	line := field.lines[field.cursorY]
	remainder := append([]rune{}, line[field.cursorX:]...)
	field.lines[field.cursorY] = line[:field.cursorX]
	field.lines = append(field.lines[:field.cursorY+1],
		append([][]rune{remainder}, field.lines[field.cursorY+1:]...)...)
	field.cursorY++
	field.cursorX = 0
}

func (field *FormField) moveCursor(deltaX, deltaY int) {
	field.cursorY = clamp(field.cursorY+deltaY, 0, len(field.lines)-1)
	field.cursorX = clamp(field.cursorX+deltaX, 0, len(field.lines[field.cursorY]))
}

// handleLineKey applies one key to a single-line field. Shared with
// the chat input, which is a bare FieldLine outside any form.
func (field *FormField) handleLineKey(message tea.KeyMsg) {
	switch message.String() {
	case "backspace":
		field.backspace()
	case "left":
		field.moveCursor(-1, 0)
	case "right":
		field.moveCursor(1, 0)
	case "home":
		field.cursorX = 0
	case "end":
		field.cursorX = len(field.lines[field.cursorY])
	default:
		if message.Type == tea.KeyRunes || message.Type == tea.KeySpace {
			for _, character := range message.Runes {
				field.insertRune(character)
			}
		}
	}
}

// reset clears a field's content.
func (field *FormField) reset() {
	field.lines = [][]rune{{}}
	field.cursorX = 0
	field.cursorY = 0
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// Form is a modal input overlay. The model owns at most one at a time
// and routes all key input to it while it is open.
type Form struct {
	Kind     FormKind
	Title    string
	TicketID int
	Fields   []FormField
	Active   int
}

// NewCreateTicketForm builds the customer's new-ticket form.
func NewCreateTicketForm() *Form {
	return &Form{
		Kind:  FormCreateTicket,
		Title: "New Ticket",
		Fields: []FormField{
			newLineField("Title"),
			newTextField("Description"),
		},
	}
}

// NewContactVendorForm builds the business user's contact-vendor form
// with a picker over the directory's vendors.
func NewContactVendorForm(ticketID int, vendors []triage.User) *Form {
	options := make([]tui.DropdownOption, 0, len(vendors))
	for _, vendor := range vendors {
		options = append(options, tui.DropdownOption{Label: vendor.Username, UserID: vendor.ID})
	}
	return &Form{
		Kind:     FormContactVendor,
		Title:    "Contact Vendor",
		TicketID: ticketID,
		Fields: []FormField{
			newPickerField("Vendor", options),
			newTextField("Message"),
		},
	}
}

// NewResolveForm builds the business user's resolution form.
func NewResolveForm(ticketID int) *Form {
	return &Form{
		Kind:     FormResolve,
		Title:    "Resolve Ticket",
		TicketID: ticketID,
		Fields: []FormField{
			newTextField("Resolution"),
		},
	}
}

// FormResult is the outcome of routing one key into the form.
type FormResult int

const (
	FormContinue FormResult = iota
	FormSubmit
	FormCancel
)

// Complete reports whether the form's required inputs are filled:
// submission stays unavailable until they are, matching the service's
// validation.
func (form *Form) Complete() bool {
	switch form.Kind {
	case FormCreateTicket:
		return triage.ValidTicketInput(form.Fields[0].Value(), form.Fields[1].Value())
	case FormContactVendor:
		return form.Fields[0].SelectedUserID() != 0 &&
			strings.TrimSpace(form.Fields[1].Value()) != ""
	case FormResolve:
		return strings.TrimSpace(form.Fields[0].Value()) != ""
	}
	return false
}

// HandleKey routes one key press. Escape cancels, ctrl+d submits once
// Complete, tab cycles fields, everything else edits the active
// field.
func (form *Form) HandleKey(message tea.KeyMsg) FormResult {
	switch message.String() {
	case "esc":
		return FormCancel
	case "ctrl+d":
		if form.Complete() {
			return FormSubmit
		}
		return FormContinue
	case "tab":
		form.Active = (form.Active + 1) % len(form.Fields)
		return FormContinue
	case "shift+tab":
		form.Active = (form.Active + len(form.Fields) - 1) % len(form.Fields)
		return FormContinue
	}

	field := &form.Fields[form.Active]
	switch field.Kind {
	case FieldPicker:
		switch message.String() {
		case "up", "k":
			field.picker.MoveUp()
		case "down", "j":
			field.picker.MoveDown()
		}
	case FieldLine:
		if message.String() == "enter" {
			form.Active = (form.Active + 1) % len(form.Fields)
		} else {
			field.handleLineKey(message)
		}
	case FieldText:
		switch message.String() {
		case "enter":
			field.newline()
		case "backspace":
			field.backspace()
		case "left":
			field.moveCursor(-1, 0)
		case "right":
			field.moveCursor(1, 0)
		case "up":
			field.moveCursor(0, -1)
		case "down":
			field.moveCursor(0, 1)
		case "home":
			field.cursorX = 0
		case "end":
			field.cursorX = len(field.lines[field.cursorY])
		default:
			if message.Type == tea.KeyRunes || message.Type == tea.KeySpace {
				for _, character := range message.Runes {
					field.insertRune(character)
				}
			}
		}
	}
	return FormContinue
}

// Render produces the form's overlay lines at the given total width.
func (form *Form) Render(theme tui.Theme, width int) []string {
	background := lipgloss.NewStyle().Background(theme.ModalBackground)
	titleStyle := lipgloss.NewStyle().
		Background(theme.ModalBackground).
		Foreground(theme.HeaderForeground).
		Bold(true)
	labelStyle := lipgloss.NewStyle().
		Background(theme.ModalBackground).
		Foreground(theme.FaintText)
	activeLabelStyle := lipgloss.NewStyle().
		Background(theme.ModalBackground).
		Foreground(theme.HeaderForeground)
	valueStyle := lipgloss.NewStyle().
		Background(theme.ModalBackground).
		Foreground(theme.NormalText)
	footerStyle := labelStyle

	inner := width - 2
	pad := func(styled string) string {
		padding := width - ansi.StringWidth(styled)
		if padding > 0 {
			styled += background.Render(strings.Repeat(" ", padding))
		}
		return styled
	}
	textLine := func(style lipgloss.Style, content string) string {
		if ansi.StringWidth(content) > inner {
			content = ansi.Truncate(content, inner, "…")
		}
		return pad(background.Render(" ") + style.Render(content))
	}

	lines := []string{
		textLine(titleStyle, form.Title),
		pad(background.Render("")),
	}

	for index := range form.Fields {
		field := &form.Fields[index]
		label := field.Label
		style := labelStyle
		if index == form.Active {
			label = "▸ " + label
			style = activeLabelStyle
		} else {
			label = "  " + label
		}
		lines = append(lines, textLine(style, label))

		if field.Kind == FieldPicker {
			for optionIndex, option := range field.picker.Options {
				marker := "   "
				optionStyle := valueStyle
				if optionIndex == field.picker.Cursor {
					marker = "  >"
					if index == form.Active {
						optionStyle = lipgloss.NewStyle().
							Background(theme.SelectedBackground).
							Foreground(theme.SelectedForeground)
					}
				}
				lines = append(lines, textLine(optionStyle, marker+" "+option.Label))
			}
			if len(field.picker.Options) == 0 {
				lines = append(lines, textLine(labelStyle, "    (no vendors in directory)"))
			}
		} else {
			for lineIndex, runes := range field.lines {
				rendered := string(runes)
				if index == form.Active && lineIndex == field.cursorY {
					// Show the cursor position.
					before := string(runes[:field.cursorX])
					after := string(runes[field.cursorX:])
					rendered = before + "▏" + after
				}
				lines = append(lines, textLine(valueStyle, "    "+rendered))
			}
		}
		lines = append(lines, pad(background.Render("")))
	}

	footer := "ctrl+d submit · tab field · esc cancel"
	if !form.Complete() {
		footer = "fill required fields · tab field · esc cancel"
	}
	lines = append(lines, textLine(footerStyle, footer))
	return lines
}
