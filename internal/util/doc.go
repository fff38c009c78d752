// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across docbud packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, PadRight: display-width aware layout helpers
//   - SingleLine: collapse multi-line text for list rows
//
// File Operations:
//   - AtomicWriteFile, AtomicWritePrivate: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TruncateWidth(conv.Title, 24)
//	err := util.AtomicWritePrivate(path, blob)
package util
