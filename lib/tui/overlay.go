// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay content, line by line, starting at (anchorX, anchorY) in
// screen coordinates. Truncation is ANSI-aware so escape sequences in
// the underlying view survive on both sides of the overlay.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for offset, overlayLine := range overlayLines {
		row := anchorY + offset
		if row < 0 || row >= len(viewLines) {
			continue
		}
		underneath := viewLines[row]

		var spliced strings.Builder
		if anchorX > 0 {
			spliced.WriteString(ansi.Truncate(underneath, anchorX, ""))
		}
		// Reset on both sides so the overlay neither inherits nor
		// leaks styling.
		spliced.WriteString("\x1b[0m")
		spliced.WriteString(overlayLine)
		spliced.WriteString("\x1b[0m")

		resumeAt := anchorX + overlayWidth
		if resumeAt < ansi.StringWidth(underneath) {
			spliced.WriteString(ansi.TruncateLeft(underneath, resumeAt, ""))
		}
		viewLines[row] = spliced.String()
	}

	return strings.Join(viewLines, "\n")
}

// CenterAnchor computes the top-left anchor that centers a box of the
// given size on a screen of the given size, clamped to non-negative.
func CenterAnchor(screenWidth, screenHeight, boxWidth, boxHeight int) (int, int) {
	anchorX := (screenWidth - boxWidth) / 2
	anchorY := (screenHeight - boxHeight) / 2
	return max(anchorX, 0), max(anchorY, 0)
}
