// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/docbud-tui/internal/ui/styles"
	"github.com/jeranaias/docbud-tui/internal/util"
)

// ProductName is shown in the header.
const ProductName = "DocBudAI"

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header renders the title bar: brand on the left, the active document on
// the right.
type Header struct {
	Document string
	Status   string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Width: 80, theme: theme}
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}
	inner := width - 2 // padding

	brand := h.theme.Brand.Render(ProductName)
	brandWidth := runewidth.StringWidth(ProductName)

	var right string
	if h.Document != "" || h.Status != "" {
		parts := []string{}
		if h.Document != "" {
			parts = append(parts, h.Document)
		}
		if h.Status != "" {
			parts = append(parts, h.Status)
		}
		avail := inner - brandWidth - 2
		right = util.TruncateWidth(strings.Join(parts, " · "), avail)
	}

	gap := inner - brandWidth - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	line := brand + strings.Repeat(" ", gap) + h.theme.HeaderMeta.Render(right)
	return h.theme.Header.Width(width).Render(lipgloss.NewStyle().MaxWidth(inner).Render(line))
}
