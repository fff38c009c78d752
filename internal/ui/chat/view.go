// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docbud-tui/internal/session"
	"github.com/jeranaias/docbud-tui/internal/ui/components"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	footerHeight = 2 // status line + shortcuts
	inputHeight  = 2 // top border + input line
	errorHeight  = 1
)

// layout sizes every widget from the terminal dimensions.
func (m *Model) layout() {
	m.header.Width = m.width
	body := m.bodyHeight()

	main := m.mainWidth()
	m.sidebar.Width = sidebarWidth
	m.sidebar.Height = body

	m.viewport.Width = main
	vh := body - inputHeight - errorHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Height = vh

	m.input.Width = main - lipgloss.Width(m.input.Prompt) - 1
	m.pathInput.Width = main - lipgloss.Width(m.pathInput.Prompt) - 8
}

func (m Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.header.View()) - footerHeight
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) mainWidth() int {
	w := m.width
	if m.SidebarVisible() {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// updateViewport re-renders the history and keeps the newest exchange in
// view.
func (m *Model) updateViewport() {
	content := components.RenderHistory(m.theme, m.ctrl.History(), m.pending(), m.viewport.Width-1)
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// pending describes the last exchange while its answer is in flight or
// being revealed.
func (m Model) pending() *components.PendingAnswer {
	if text, ts, ok := m.ctrl.Revealing(); ok {
		return &components.PendingAnswer{Timestamp: ts, Revealed: text}
	}
	if m.ctrl.QAState() != session.Asking {
		return nil
	}
	history := m.ctrl.History()
	if len(history) == 0 {
		return nil
	}
	return &components.PendingAnswer{
		Timestamp: history[len(history)-1].Timestamp,
		Thinking:  m.spinner.View() + " Thinking...",
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	var main string
	if m.Screen() == ScreenUpload {
		main = m.renderUpload()
	} else {
		main = m.renderChat()
	}
	main = lipgloss.NewStyle().Width(m.mainWidth()).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(main)

	body := main
	if m.SidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderUpload() string {
	width := m.mainWidth()
	var lines []string

	lines = append(lines, m.theme.FileInfo.Render("Upload a PDF to start chatting"))
	lines = append(lines, m.theme.DropZoneHint.Render("Type or paste the path to a PDF file and press Enter"))
	lines = append(lines, "")
	lines = append(lines, m.pathInput.View())

	switch m.ctrl.UploadState() {
	case session.FileSelected:
		if doc := m.ctrl.Document(); doc != nil {
			lines = append(lines, "", m.theme.FileInfo.Render(doc.Describe()))
			lines = append(lines, m.theme.DropZoneHint.Render("Press Enter to upload"))
		}
	case session.Uploading:
		lines = append(lines, "", m.theme.Thinking.Render(m.spinner.View()+" Uploading "+m.ctrl.DocumentName()+"..."))
	}

	if msg := m.ctrl.UploadError(); msg != "" {
		lines = append(lines, "", components.RenderStatus(m.theme, msg, ""))
	}

	boxWidth := width - 4
	if boxWidth > 72 {
		boxWidth = 72
	}
	box := m.theme.DropZone.Width(boxWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderChat() string {
	errMsg := m.ctrl.QuestionError()
	if errMsg == "" {
		errMsg = m.ctrl.PersistError()
	}
	status := components.RenderStatus(m.theme, errMsg, "")

	input := m.theme.InputContainer.Width(m.mainWidth()).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), status, input)
}

func (m Model) renderFooter() string {
	info := m.statusMsg
	if info == "" && m.ctrl.PersistError() != "" && m.Screen() == ScreenUpload {
		info = m.ctrl.PersistError()
	}
	status := components.RenderStatus(m.theme, "", info)

	bindings := m.keys.ShortHelp()
	if m.focus == FocusSidebar {
		bindings = m.keys.SidebarHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, components.RenderShortcuts(m.theme, bindings, m.width))
}
