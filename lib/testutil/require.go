// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds channel assertion helpers shared by tests
// across the repository. Every helper takes an explicit timeout so a
// broken notification path fails the test instead of hanging it.
package testutil

import (
	"fmt"
	"time"
)

// failer is the slice of testing.T the helpers need. Taking the
// interface keeps them usable from both tests and benchmarks.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from channel within timeout, or
// fails the test.
//
//	change := testutil.RequireReceive(t, store.Changes(), time.Second, "store change")
func RequireReceive[T any](t failer, channel <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	select {
	case value, ok := <-channel:
		if !ok {
			t.Fatalf("channel closed before delivering a value: %s", describe(msgAndArgs))
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("nothing received within %v: %s", timeout, describe(msgAndArgs))
	}
	panic("unreachable")
}

// RequireNoReceive asserts that channel stays quiet for the full
// window. Used to prove that an event routed nowhere.
func RequireNoReceive[T any](t failer, channel <-chan T, window time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case value := <-channel:
		t.Fatalf("unexpected value %v: %s", value, describe(msgAndArgs))
	case <-time.After(window):
	}
}

// RequireClosed waits for channel to close (or deliver) within
// timeout, or fails the test. For done/ready channels that signal by
// closing.
func RequireClosed(t failer, channel <-chan struct{}, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case <-channel:
	case <-time.After(timeout):
		t.Fatalf("channel still open after %v: %s", timeout, describe(msgAndArgs))
	}
}

// describe renders the trailing message arguments: a bare string, a
// format string with arguments, or a placeholder when absent.
func describe(msgAndArgs []any) string {
	switch len(msgAndArgs) {
	case 0:
		return "(no context)"
	case 1:
		if message, ok := msgAndArgs[0].(string); ok {
			return message
		}
		return fmt.Sprintf("%v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}
