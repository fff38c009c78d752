// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the docbud command tree.
//
// The root command starts the interactive terminal UI. Subcommands cover
// scripted and line-oriented use of the same conversation store and
// backend.
//
// # Commands Overview
//
//   - (none): full-screen TUI
//   - chat [pdf]: line-oriented REPL with input history
//   - ask <pdf> <question...>: upload a PDF and ask one question
//   - list: list stored conversations
//   - show <id>: print a conversation
//   - delete <id>: delete a conversation
//   - clear <id>: remove every exchange of a conversation
//   - config: print, locate or initialize the configuration
//
// # Global Flags
//
//	--config PATH     Configuration file (default ~/.docbud/config.toml)
//	--backend URL     Backend base URL
//	--store NAME      Storage backend: file, sqlite, redis, memory
//	--store-path P    Storage directory or database file
//	-v, --verbose     Debug logging to stderr
package cli
