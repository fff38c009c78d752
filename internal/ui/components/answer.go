// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docbud-tui/internal/format"
	"github.com/jeranaias/docbud-tui/internal/ui/styles"
)

// =============================================================================
// ANSWER RENDERING
// =============================================================================

// RenderAnswer formats text and renders it in width cells: section headers
// in bold, numbered items with an ordinal badge, bullets with a marker and
// paragraphs wrapped plainly. Empty text renders as "".
func RenderAnswer(theme *styles.Theme, text string, width int) string {
	return RenderLayout(theme, format.Format(text), width)
}

// RenderLayout renders an already formatted layout.
func RenderLayout(theme *styles.Theme, layout format.Layout, width int) string {
	if width < 10 {
		width = 10
	}

	blocks := make([]string, 0, len(layout.Sections))
	for _, sec := range layout.Sections {
		var lines []string
		if sec.Header != "" {
			lines = append(lines, theme.SectionHeader.Width(width).Render(sec.Header))
		}
		for _, item := range sec.Items {
			lines = append(lines, renderItem(theme, item, width))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func renderItem(theme *styles.Theme, item format.Item, width int) string {
	switch item.Kind {
	case format.Ordered:
		badge := theme.Ordinal.Render(item.Number)
		return hangingIndent(badge, theme.Paragraph, item.Text, width)
	case format.Bullet:
		marker := theme.BulletMarker.Render("•")
		return hangingIndent(marker, theme.Paragraph, item.Text, width)
	default:
		return theme.Paragraph.Width(width).Render(item.Text)
	}
}

// hangingIndent places prefix left of text wrapped to the remaining width.
func hangingIndent(prefix string, style lipgloss.Style, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix) + 1
	textWidth := width - prefixWidth
	if textWidth < 4 {
		textWidth = 4
	}
	body := style.Width(textWidth).Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top, prefix, " ", body)
}
