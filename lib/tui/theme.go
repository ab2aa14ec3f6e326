// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/triagekit/triage/lib/schema/triage"
)

// Theme defines the color palette for the triage terminal UI. All
// colors are lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Ticket status badges, one per lifecycle stage plus a neutral
	// fallback for statuses this client version does not know.
	StatusOpen            lipgloss.Color
	StatusAssigned        lipgloss.Color
	StatusVendorContacted lipgloss.Color
	StatusVendorResponded lipgloss.Color
	StatusResolved        lipgloss.Color
	StatusUnknown         lipgloss.Color

	// Vendor queue urgency labels.
	UrgencyNormal lipgloss.Color
	UrgencyHigh   lipgloss.Color
	UrgencyUrgent lipgloss.Color

	// Party name colors in thread rendering.
	RoleCustomer lipgloss.Color
	RoleBusiness lipgloss.Color
	RoleVendor   lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color
	WarningText      lipgloss.Color

	// Modal overlays (forms, dropdowns).
	ModalBackground lipgloss.Color
}

// StatusColor returns the badge color for a ticket status. Unknown
// statuses get the neutral fallback so a newer service vocabulary
// still renders legibly.
func (theme Theme) StatusColor(status triage.Status) lipgloss.Color {
	switch status {
	case triage.StatusOpen:
		return theme.StatusOpen
	case triage.StatusBusinessAssigned:
		return theme.StatusAssigned
	case triage.StatusVendorContacted:
		return theme.StatusVendorContacted
	case triage.StatusVendorResponded:
		return theme.StatusVendorResponded
	case triage.StatusResolved:
		return theme.StatusResolved
	default:
		return theme.StatusUnknown
	}
}

// UrgencyColor returns the color for a vendor urgency class.
func (theme Theme) UrgencyColor(urgency triage.Urgency) lipgloss.Color {
	switch urgency {
	case triage.UrgencyHigh:
		return theme.UrgencyHigh
	case triage.UrgencyUrgent:
		return theme.UrgencyUrgent
	}
	return theme.UrgencyNormal
}

// RoleColor returns the color a party's name renders in.
func (theme Theme) RoleColor(role triage.Role) lipgloss.Color {
	switch role {
	case triage.RoleCustomer:
		return theme.RoleCustomer
	case triage.RoleBusiness:
		return theme.RoleBusiness
	case triage.RoleVendor:
		return theme.RoleVendor
	}
	return theme.NormalText
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusOpen:            lipgloss.Color("203"), // salmon: needs attention
	StatusAssigned:        lipgloss.Color("214"), // amber: in business hands
	StatusVendorContacted: lipgloss.Color("75"),  // blue: waiting on vendor
	StatusVendorResponded: lipgloss.Color("141"), // purple: ready to resolve
	StatusResolved:        lipgloss.Color("114"), // green
	StatusUnknown:         lipgloss.Color("245"), // gray

	UrgencyNormal: lipgloss.Color("114"), // green
	UrgencyHigh:   lipgloss.Color("214"), // amber
	UrgencyUrgent: lipgloss.Color("196"), // bright red

	RoleCustomer: lipgloss.Color("117"),
	RoleBusiness: lipgloss.Color("183"),
	RoleVendor:   lipgloss.Color("216"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("196"),
	WarningText:      lipgloss.Color("214"),

	ModalBackground: lipgloss.Color("237"), // slightly lighter than terminal background
}
