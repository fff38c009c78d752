// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header     lipgloss.Style
	Brand      lipgloss.Style
	HeaderMeta lipgloss.Style

	// Upload screen
	DropZone     lipgloss.Style
	DropZoneHint lipgloss.Style
	FileInfo     lipgloss.Style

	// Chat history
	Question      lipgloss.Style
	QuestionLabel lipgloss.Style
	Answer        lipgloss.Style
	AnswerLabel   lipgloss.Style
	Timestamp     lipgloss.Style
	SectionHeader lipgloss.Style
	Ordinal       lipgloss.Style
	BulletMarker  lipgloss.Style
	Paragraph     lipgloss.Style
	Thinking      lipgloss.Style

	// Sidebar
	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarItemCurrent  lipgloss.Style
	SidebarMeta         lipgloss.Style

	// Input and status
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Error          lipgloss.Style
	Success        lipgloss.Style
	Muted          lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto" (detect from
// the terminal background).
func NewTheme(mode string) *Theme {
	var isDark bool
	switch strings.ToLower(mode) {
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.Brand = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.HeaderMeta = lipgloss.NewStyle().Foreground(TextSecondary)

	t.DropZone = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(1, 4).
		Align(lipgloss.Center)
	t.DropZoneHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.FileInfo = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)

	t.Question = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Blue).
		PaddingLeft(1)
	t.QuestionLabel = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.Answer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Purple).
		PaddingLeft(1)
	t.AnswerLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.SectionHeader = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.Ordinal = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)
	t.BulletMarker = lipgloss.NewStyle().Foreground(Purple)
	t.Paragraph = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Thinking = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarItemSelected = lipgloss.NewStyle().Foreground(TextPrimary).Background(SelectionBg).Bold(true)
	t.SidebarItemCurrent = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.SidebarMeta = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}
