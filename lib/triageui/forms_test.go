// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/triagekit/triage/lib/schema/triage"
)

func typeText(form *Form, text string) {
	for _, character := range text {
		form.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}})
	}
}

func pressKey(form *Form, name string) FormResult {
	switch name {
	case "tab":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyTab})
	case "enter":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyEscape})
	case "ctrl+d":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	case "backspace":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	case "down":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	case "left":
		return form.HandleKey(tea.KeyMsg{Type: tea.KeyLeft})
	}
	return FormContinue
}

// TestCreateFormGatesSubmission verifies that ctrl+d does nothing
// until both fields hold non-blank text, then submits.
func TestCreateFormGatesSubmission(t *testing.T) {
	form := NewCreateTicketForm()
	if pressKey(form, "ctrl+d") != FormContinue {
		t.Fatal("empty form must not submit")
	}
	typeText(form, "printer on fire")
	if pressKey(form, "ctrl+d") != FormContinue {
		t.Fatal("form without a description must not submit")
	}
	pressKey(form, "tab")
	typeText(form, "smoke everywhere")
	if pressKey(form, "ctrl+d") != FormSubmit {
		t.Fatal("complete form should submit")
	}
	if form.Fields[0].Value() != "printer on fire" {
		t.Errorf("title = %q", form.Fields[0].Value())
	}
	if form.Fields[1].Value() != "smoke everywhere" {
		t.Errorf("description = %q", form.Fields[1].Value())
	}
}

// TestWhitespaceOnlyInputRejected verifies the trimmed-non-empty rule
// inside the form gate.
func TestWhitespaceOnlyInputRejected(t *testing.T) {
	form := NewResolveForm(7)
	typeText(form, "   ")
	if form.Complete() {
		t.Error("whitespace-only resolution must not complete the form")
	}
	typeText(form, "replaced the fuser")
	if !form.Complete() {
		t.Error("non-blank resolution should complete the form")
	}
}

// TestContactVendorFormPicker verifies vendor selection and the
// two-part completion rule.
func TestContactVendorFormPicker(t *testing.T) {
	vendors := []triage.User{
		{ID: 3, Username: "vendor1", Role: triage.RoleVendor},
		{ID: 4, Username: "vendor2", Role: triage.RoleVendor},
	}
	form := NewContactVendorForm(7, vendors)
	if form.Complete() {
		t.Fatal("form with no message must not be complete")
	}
	pressKey(form, "down") // vendor2
	pressKey(form, "tab")
	typeText(form, "please take a look")
	if !form.Complete() {
		t.Fatal("form should be complete")
	}
	if got := form.Fields[0].SelectedUserID(); got != 4 {
		t.Errorf("selected vendor %d, want 4", got)
	}
}

// TestContactVendorFormWithoutVendors verifies that an empty
// directory can never complete the form.
func TestContactVendorFormWithoutVendors(t *testing.T) {
	form := NewContactVendorForm(7, nil)
	pressKey(form, "tab")
	typeText(form, "anyone there")
	if form.Complete() {
		t.Error("form with no vendor options must not complete")
	}
}

// TestTextFieldEditing exercises multi-line editing: newlines,
// backspace joining, and cursor movement.
func TestTextFieldEditing(t *testing.T) {
	form := NewResolveForm(7)
	typeText(form, "ab")
	pressKey(form, "enter")
	typeText(form, "cd")
	if got := form.Fields[0].Value(); got != "ab\ncd" {
		t.Fatalf("value = %q, want %q", got, "ab\ncd")
	}
	pressKey(form, "left")
	pressKey(form, "left")
	pressKey(form, "backspace") // joins the lines
	if got := form.Fields[0].Value(); got != "abcd" {
		t.Errorf("value after join = %q, want %q", got, "abcd")
	}
	if pressKey(form, "esc") != FormCancel {
		t.Error("esc should cancel")
	}
}
