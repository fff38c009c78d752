// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/jeranaias/docbud-tui/internal/storage"
	"github.com/jeranaias/docbud-tui/internal/ui/styles"
)

// =============================================================================
// QUESTION HISTORY
// =============================================================================

// PendingAnswer describes how to render the last exchange while its answer
// is not committed yet.
type PendingAnswer struct {
	// Timestamp identifies the exchange the pending state applies to.
	Timestamp int64
	// Revealed is the partial answer of an active reveal.
	Revealed string
	// Thinking is shown while the question is in flight (spinner frame
	// included by the caller).
	Thinking string
}

// RenderHistory renders every exchange: the question, then its answer.
// An exchange matching pending shows the revealed prefix or the thinking
// line instead of its (still empty) answer.
func RenderHistory(theme *styles.Theme, history []storage.Exchange, pending *PendingAnswer, width int) string {
	if len(history) == 0 {
		return theme.Muted.Render("Ask a question about your document to get started.")
	}

	inner := width - 2 // left border + padding
	blocks := make([]string, 0, len(history))
	for _, ex := range history {
		var b strings.Builder

		b.WriteString(theme.QuestionLabel.Render("You") + "  " + theme.Timestamp.Render(formatClock(ex.Timestamp)) + "\n")
		b.WriteString(theme.Question.Width(width).Render(ex.Question))
		b.WriteString("\n\n")

		b.WriteString(theme.AnswerLabel.Render(ProductName) + "\n")
		switch {
		case pending != nil && pending.Timestamp == ex.Timestamp && pending.Revealed != "":
			b.WriteString(theme.Answer.Render(RenderAnswer(theme, pending.Revealed, inner)))
		case pending != nil && pending.Timestamp == ex.Timestamp && pending.Thinking != "":
			b.WriteString(theme.Answer.Render(theme.Thinking.Render(pending.Thinking)))
		case ex.Answer == "":
			b.WriteString(theme.Answer.Render(theme.Muted.Render("...")))
		default:
			b.WriteString(theme.Answer.Render(RenderAnswer(theme, ex.Answer, inner)))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func formatClock(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("15:04")
}
