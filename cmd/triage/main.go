// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Triage is the interactive terminal client for the support-ticket
// workflow service. It connects as one user from the service
// directory, renders that user's view of the ticket queue, and keeps
// the view live through the service's per-user notification stream.
//
// The identity comes from --user, TRIAGE_USER, or the config file;
// with none of those set the client lists the directory and asks.
// Everything else is fire-and-refetch: the client posts an operation,
// then fetches fresh state, and never computes a workflow transition
// locally.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/triagekit/triage/lib/apiclient"
	"github.com/triagekit/triage/lib/config"
	"github.com/triagekit/triage/lib/notify"
	"github.com/triagekit/triage/lib/schema/triage"
	"github.com/triagekit/triage/lib/store"
	"github.com/triagekit/triage/lib/triageui"
	"github.com/triagekit/triage/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var apiURL string
	var wsURL string
	var username string
	var logOutput string

	flagSet := pflag.NewFlagSet("triage", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to triage.yaml (default: $TRIAGE_CONFIG or ~/.config/triage/triage.yaml)")
	flagSet.StringVar(&apiURL, "api-url", "", "base URL of the triage service (default: http://localhost:8000)")
	flagSet.StringVar(&wsURL, "ws-url", "", "base URL of the notification stream (default: derived from --api-url)")
	flagSet.StringVarP(&username, "user", "u", "", "username to connect as (skips the interactive picker)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other triage
	// binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("triage")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Flags win over file and environment.
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if wsURL != "" {
		cfg.WSURL = wsURL
	}
	if username != "" {
		cfg.User = username
	}
	if logOutput != "" {
		cfg.LogFile = logOutput
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; triage is an interactive client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Before the UI starts, logs go to stderr so connection problems
	// during identity selection are visible. Once the program is
	// attached, warnings and errors surface in the status bar and the
	// optional log file keeps the full record.
	uiHandler := triageui.NewUIHandler(os.Stderr, slog.LevelWarn)

	var logWriter io.Writer
	if cfg.LogFile != "" {
		file, fileErr := os.Create(cfg.LogFile)
		if fileErr != nil {
			return fmt.Errorf("cannot open log file %s: %w", cfg.LogFile, fileErr)
		}
		defer file.Close()
		logWriter = file
	}

	var logger *slog.Logger
	if logWriter != nil {
		fileHandler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger = slog.New(fanoutHandler{uiHandler, fileHandler})
	} else {
		logger = slog.New(uiHandler)
	}

	client := apiclient.New(cfg.APIURL, logger)

	viewer, err := resolveViewer(ctx, client, cfg.User)
	if err != nil {
		return err
	}

	dataStore := store.New(client, viewer, logger)
	dataStore.Prime(ctx)

	listener := notify.NewListener(cfg.WebSocketURL(), viewer.ID, logger)
	go listener.Run(ctx)

	model := triageui.New(ctx, dataStore)
	program := tea.NewProgram(model, tea.WithAltScreen())
	uiHandler.Attach(program)

	// Events feed the store directly; the store's change notifications
	// reach the model through its own subscription.
	go func() {
		for event := range listener.Events() {
			dataStore.HandleEvent(ctx, event)
		}
	}()

	_, err = program.Run()
	return err
}

// resolveViewer maps the configured username to a directory entry, or
// prompts when no username was configured.
func resolveViewer(ctx context.Context, client *apiclient.Client, username string) (triage.User, error) {
	users := client.ListUsers(ctx)
	if len(users) == 0 {
		return triage.User{}, fmt.Errorf("cannot reach the triage service at %s, or its directory is empty", client.BaseURL())
	}

	if username != "" {
		for _, user := range users {
			if user.Username == username {
				return user, nil
			}
		}
		return triage.User{}, fmt.Errorf("unknown user %q; run without --user to pick from the directory", username)
	}

	fmt.Fprintf(os.Stderr, "Who are you?\n")
	for index, user := range users {
		fmt.Fprintf(os.Stderr, "  %d. %s (%s)\n", index+1, user.Username, user.Role)
	}
	fmt.Fprintf(os.Stderr, "\nSelect user [1-%d]: ", len(users))

	var line string
	if _, err := fmt.Scan(&line); err != nil {
		return triage.User{}, fmt.Errorf("failed to read selection: %w", err)
	}
	selection, err := strconv.Atoi(line)
	if err != nil || selection < 1 || selection > len(users) {
		return triage.User{}, fmt.Errorf("invalid selection %q: must be between 1 and %d", line, len(users))
	}
	return users[selection-1], nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Triage — interactive terminal client for the support-ticket workflow.

Connects to the triage service, shows your role's view of the ticket
queue, and stays live via the service's notification stream. Customers
open tickets; business users assign, contact vendors, and resolve;
vendors chat on tickets routed to them.

Usage:
  triage [flags]

Examples:
  # Pick an identity interactively against a local service
  triage

  # Connect as a specific user
  triage --user business1

  # Point at a remote deployment
  triage --api-url https://triage.example.com --user vendor1

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// fanoutHandler sends each record to every underlying handler. A
// record is enabled if any sub-handler is enabled for its level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
