// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jeranaias/docbud-tui/internal/format"
	"github.com/jeranaias/docbud-tui/internal/storage"
	"github.com/jeranaias/docbud-tui/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Purple)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.Blue)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// DefaultTerminalWidth is the fallback width when detection fails.
const DefaultTerminalWidth = 80

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or DefaultTerminalWidth.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return width
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// renderMarkdown renders markdown for terminal display with glamour.
// Returns the original content if the renderer cannot be built.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// writeAnswer prints an answer laid out by the formatter: glamour on a
// terminal, plain text when piped.
func writeAnswer(w io.Writer, answer string) {
	layout := format.Format(answer)
	if isTerminal(w) {
		fmt.Fprint(w, renderMarkdown(layout.Markdown(), terminalWidth(w)))
		return
	}
	fmt.Fprint(w, layout.PlainText())
}

// conversationMarkdown renders a whole conversation as Markdown.
func conversationMarkdown(conv storage.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conv.Title)
	if conv.DocumentName != "" {
		fmt.Fprintf(&b, "_%s · %s_\n\n", conv.DocumentName, conv.Time().Format("Jan 2, 2006 15:04"))
	}
	if len(conv.Messages) == 0 {
		b.WriteString("_No questions yet._\n")
	}
	for _, ex := range conv.Messages {
		fmt.Fprintf(&b, "## %s\n\n", ex.Question)
		if md := format.Format(ex.Answer).Markdown(); md != "" {
			b.WriteString(md)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// writeConversation prints a conversation.
func writeConversation(w io.Writer, conv storage.Conversation) {
	if isTerminal(w) {
		fmt.Fprint(w, renderMarkdown(conversationMarkdown(conv), terminalWidth(w)))
		return
	}

	fmt.Fprintf(w, "%s\n", conv.Title)
	if conv.DocumentName != "" {
		fmt.Fprintf(w, "%s · %s\n", conv.DocumentName, conv.Time().Format("Jan 2, 2006 15:04"))
	}
	for _, ex := range conv.Messages {
		fmt.Fprintf(w, "\nQ: %s\n", ex.Question)
		fmt.Fprintf(w, "A: %s\n", strings.TrimRight(format.Format(ex.Answer).PlainText(), "\n"))
	}
}
