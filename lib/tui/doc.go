// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the shared presentation layer for the triage
// terminal UI: the color theme, ANSI-aware overlay splicing for modal
// forms and dropdowns, and markdown rendering for ticket
// descriptions.
//
// The role views in triageui import this package so every view shares
// the same look and overlay mechanics while owning its own layout and
// domain rendering.
package tui
