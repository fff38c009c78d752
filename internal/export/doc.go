// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes stored conversations to files.
//
// # Supported Formats
//
//   - Markdown: YAML frontmatter, one section per question
//   - HTML: standalone page with embedded CSS, light or dark
//   - JSON: the stored record, re-importable
//
// Answers are laid out with the same formatter the terminal uses, so
// headers, numbered steps and bullets survive the export.
//
// # Usage
//
//	exporter, err := export.ForFormat("md", export.DefaultOptions())
//	path, err := export.ExportToFile(conv, exporter, opts)
package export
