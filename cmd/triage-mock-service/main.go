// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Triage-mock-service is an in-memory stand-in for the triage backend.
// It serves the full REST and WebSocket contract the triage client
// consumes, seeded with a small demo directory (two customers, two
// business users, two vendors) and no tickets. State lives in memory
// and resets on restart.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/triagekit/triage/lib/mockservice"
	"github.com/triagekit/triage/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var listenAddr string
	flagSet := pflag.NewFlagSet("triage-mock-service", pflag.ContinueOnError)
	flagSet.StringVar(&listenAddr, "listen", ":8000", "address to serve on")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("triage-mock-service")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    listenAddr,
		Handler: mockservice.New(logger).Handler(),
	}

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.ListenAndServe()
	}()

	logger.Info("mock triage service running", "addr", listenAddr)

	select {
	case err := <-serveDone:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveDone; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
