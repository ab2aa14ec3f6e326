// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

package triageui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// noticeMsg carries a log record into the UI as a status-bar notice.
type noticeMsg struct {
	level slog.Level
	text  string
}

// UIHandler is a slog.Handler that forwards records into a running
// bubbletea program as status-bar notices. Records logged before the
// program is attached (startup, config errors) go to the fallback
// writer instead, so nothing is lost while the terminal is still in
// normal mode.
type UIHandler struct {
	// Shared across WithAttrs children so a late Attach reaches all
	// of them.
	program  *atomic.Pointer[tea.Program]
	fallback io.Writer
	minLevel slog.Level
	attrs    []slog.Attr
}

// NewUIHandler returns a handler that drops records below minLevel.
func NewUIHandler(fallback io.Writer, minLevel slog.Level) *UIHandler {
	return &UIHandler{
		program:  new(atomic.Pointer[tea.Program]),
		fallback: fallback,
		minLevel: minLevel,
	}
}

// Attach routes subsequent records into the program's Update loop.
func (handler *UIHandler) Attach(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled implements slog.Handler.
func (handler *UIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.minLevel
}

// Handle implements slog.Handler: the record is flattened into a
// single status-bar line.
func (handler *UIHandler) Handle(_ context.Context, record slog.Record) error {
	var line strings.Builder
	line.WriteString(record.Message)
	appendAttr := func(attr slog.Attr) {
		fmt.Fprintf(&line, " %s=%v", attr.Key, attr.Value.Any())
	}
	for _, attr := range handler.attrs {
		appendAttr(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(attr)
		return true
	})

	if program := handler.program.Load(); program != nil {
		program.Send(noticeMsg{level: record.Level, text: line.String()})
		return nil
	}
	_, err := fmt.Fprintf(handler.fallback, "%s %s\n", record.Level, line.String())
	return err
}

// WithAttrs implements slog.Handler.
func (handler *UIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return handler
	}
	combined := make([]slog.Attr, 0, len(handler.attrs)+len(attrs))
	combined = append(combined, handler.attrs...)
	combined = append(combined, attrs...)
	return &UIHandler{
		program:  handler.program,
		fallback: handler.fallback,
		minLevel: handler.minLevel,
		attrs:    combined,
	}
}

// WithGroup implements slog.Handler. Group nesting is not rendered in
// a one-line notice; attribute keys pass through ungrouped.
func (handler *UIHandler) WithGroup(string) slog.Handler {
	return handler
}
