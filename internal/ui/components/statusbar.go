// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docbud-tui/internal/ui/styles"
)

// RenderShortcuts renders "key desc · key desc" for the enabled bindings,
// dropping bindings from the end until the line fits in width.
func RenderShortcuts(theme *styles.Theme, bindings []key.Binding, width int) string {
	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, theme.ShortcutKey.Render(h.Key)+" "+theme.ShortcutDesc.Render(h.Desc))
	}

	sep := theme.ShortcutDesc.Render(" · ")
	for len(parts) > 0 {
		line := strings.Join(parts, sep)
		if width <= 0 || lipgloss.Width(line) <= width-2 {
			return theme.StatusBar.Render(line)
		}
		parts = parts[:len(parts)-1]
	}
	return ""
}

// RenderStatus renders an error in the error style, or info muted.
func RenderStatus(theme *styles.Theme, errMsg, info string) string {
	switch {
	case errMsg != "":
		return theme.Error.Render(styles.StatusIndicators.Error + " " + errMsg)
	case info != "":
		return theme.Muted.Render(info)
	default:
		return ""
	}
}
