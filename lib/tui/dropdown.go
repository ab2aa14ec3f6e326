// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package tui

// DropdownOption is one selectable entry in a dropdown: a display
// label and the user ID it stands for.
type DropdownOption struct {
	Label  string
	UserID int
}

// Dropdown is a small vertical picker. The owning form routes key
// input to it while it has focus (up/down to move) and draws the
// option rows itself; the selection is read via Selected.
type Dropdown struct {
	Options []DropdownOption
	Cursor  int
}

// MoveUp moves the cursor up one entry, wrapping to the bottom.
func (dropdown *Dropdown) MoveUp() {
	dropdown.Cursor--
	if dropdown.Cursor < 0 {
		dropdown.Cursor = len(dropdown.Options) - 1
	}
}

// MoveDown moves the cursor down one entry, wrapping to the top.
func (dropdown *Dropdown) MoveDown() {
	dropdown.Cursor++
	if dropdown.Cursor >= len(dropdown.Options) {
		dropdown.Cursor = 0
	}
}

// Selected returns the highlighted option and true, or false when the
// dropdown is empty.
func (dropdown *Dropdown) Selected() (DropdownOption, bool) {
	if len(dropdown.Options) == 0 {
		return DropdownOption{}, false
	}
	return dropdown.Options[dropdown.Cursor], true
}
