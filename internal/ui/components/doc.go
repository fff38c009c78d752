// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for docbud.
//
// Components are stateless render functions over a *styles.Theme: the
// header bar, the conversation sidebar, formatted answers, the question
// history and the shortcut/status line. The chat model owns all state.
package components
