// Copyright 2026 The Triage Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the triage
// client commands.
//
// Configuration is resolved in four layers, later layers winning:
//
//	defaults -> config file -> environment variables -> command flags
//
// The file is looked up from TRIAGE_CONFIG (via [Load]) or named
// explicitly (via [LoadFile]); when TRIAGE_CONFIG is unset the
// default location is ~/.config/triage/triage.yaml. A missing file at
// the default location is not an error -- the client runs fine on
// defaults plus environment. An explicitly named file must exist.
//
// Environment overrides: TRIAGE_API_URL, TRIAGE_WS_URL, TRIAGE_USER,
// TRIAGE_LOG_FILE. Command flags are applied by the command itself,
// not by this package.
//
// Key exports:
//
//   - [Config] -- api_url, ws_url, user, log_file
//   - [Config.WebSocketURL] -- derives the stream endpoint from
//     api_url when ws_url is not set
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other triage packages.
package config
