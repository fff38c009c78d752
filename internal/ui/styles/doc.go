// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for docbud.
// Colors are Lip Gloss AdaptiveColors so they follow the terminal
// background; the blue-to-purple pair is the DocBudAI brand.
package styles
