// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/docbud-tui/internal/storage"
	"github.com/jeranaias/docbud-tui/internal/ui/styles"
	"github.com/jeranaias/docbud-tui/internal/util"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar lists stored conversations, most recent first.
type Sidebar struct {
	Conversations []storage.Conversation
	CurrentID     string
	Cursor        int
	Focused       bool
	Width         int
	Height        int
	theme         *styles.Theme
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{Width: 28, Height: 20, theme: theme}
}

// SetConversations replaces the list and keeps the cursor in range.
func (s *Sidebar) SetConversations(convs []storage.Conversation) {
	s.Conversations = convs
	s.clamp()
}

// MoveCursor moves the selection by delta rows.
func (s *Sidebar) MoveCursor(delta int) {
	s.Cursor += delta
	s.clamp()
}

// Selected returns the conversation under the cursor.
func (s *Sidebar) Selected() (storage.Conversation, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Conversations) {
		return storage.Conversation{}, false
	}
	return s.Conversations[s.Cursor], true
}

func (s *Sidebar) clamp() {
	if s.Cursor >= len(s.Conversations) {
		s.Cursor = len(s.Conversations) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// rowsPerItem is title plus meta line.
const rowsPerItem = 2

// View renders the sidebar.
func (s *Sidebar) View() string {
	inner := s.Width - 2 // border + padding
	if inner < 8 {
		inner = 8
	}

	lines := []string{s.theme.SidebarTitle.Render("History"), ""}

	if len(s.Conversations) == 0 {
		lines = append(lines, s.theme.SidebarMeta.Render(util.TruncateWidth("No conversations yet", inner)))
	} else {
		visible := (s.Height - len(lines)) / rowsPerItem
		if visible < 1 {
			visible = 1
		}
		start := 0
		if s.Cursor >= visible {
			start = s.Cursor - visible + 1
		}
		end := start + visible
		if end > len(s.Conversations) {
			end = len(s.Conversations)
		}

		for i := start; i < end; i++ {
			conv := s.Conversations[i]
			marker := "  "
			if conv.ID == s.CurrentID {
				marker = "> "
			}
			title := util.PadRight(marker+util.SingleLine(conv.Title), inner)

			style := s.theme.SidebarItem
			switch {
			case s.Focused && i == s.Cursor:
				style = s.theme.SidebarItemSelected
			case conv.ID == s.CurrentID:
				style = s.theme.SidebarItemCurrent
			}
			lines = append(lines, style.Render(title))
			lines = append(lines, s.theme.SidebarMeta.Render(util.TruncateWidth("  "+ConversationMeta(conv), inner)))
		}
	}

	for len(lines) < s.Height {
		lines = append(lines, "")
	}
	if len(lines) > s.Height && s.Height > 0 {
		lines = lines[:s.Height]
	}
	return s.theme.Sidebar.Width(s.Width - 1).Render(strings.Join(lines, "\n"))
}

// ConversationMeta returns "Jan 2, 15:04 · 3 questions".
func ConversationMeta(conv storage.Conversation) string {
	n := len(conv.Messages)
	unit := "questions"
	if n == 1 {
		unit = "question"
	}
	return fmt.Sprintf("%s · %d %s", formatDate(conv.Timestamp), n, unit)
}

func formatDate(ms int64) string {
	if ms == 0 {
		return "unknown date"
	}
	return time.UnixMilli(ms).Format("Jan 2, 15:04")
}
