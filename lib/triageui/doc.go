// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package triageui implements the terminal user interface for the
// triage workflow. Built on bubbletea (Elm architecture), it provides
// a split-pane view — ticket list on the left, detail and message
// thread on the right — with modal forms for the workflow actions.
//
// One [Model] serves all three parties; the viewer's role decides
// which actions are offered. Customers open tickets and read
// resolutions, business users advance the lifecycle (assign, contact
// vendor, resolve) and chat, vendors chat on their assigned tickets.
// Action keys outside their precondition are ignored, mirroring the
// server's validation.
//
// Data flow:
//
//	[triage service]
//	      | (apiclient + notify)
//	  [store.Store]
//	      | (change subscription)
//	   [Model] <- bubbletea event loop
//	      |
//	[terminal output]
//
// The model never computes a state transition: every mutation posts
// to the service and the store refetches, so the UI always renders
// service truth.
package triageui
