// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docbud-tui/internal/export"
	"github.com/jeranaias/docbud-tui/internal/session"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// UploadResultMsg reports the end of an upload started by the model.
type UploadResultMsg struct {
	Request session.UploadRequest
	Err     error
}

// AnswerResultMsg reports the backend's answer to a question.
type AnswerResultMsg struct {
	Request session.QuestionRequest
	Answer  string
	Err     error
}

// =============================================================================
// REVEAL AND STORE MESSAGES
// =============================================================================

// RevealTickMsg advances the reveal with the given generation by one word.
type RevealTickMsg struct {
	Gen uint64
}

// StoreChangedMsg signals that another process rewrote the conversation
// store.
type StoreChangedMsg struct{}

// CopiedMsg reports the result of copying an answer to the clipboard.
type CopiedMsg struct {
	Chars int
	Err   error
}

// ExportedMsg reports the result of exporting the current conversation.
type ExportedMsg struct {
	Path string
	Err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

func uploadCmd(ctx context.Context, client session.Backend, req session.UploadRequest) tea.Cmd {
	return func() tea.Msg {
		err := func() error {
			r, err := req.Document.Reader()
			if err != nil {
				return err
			}
			defer r.Close()
			return client.UploadPDF(ctx, req.Document.Name, r)
		}()
		return UploadResultMsg{Request: req, Err: err}
	}
}

func askCmd(ctx context.Context, client session.Backend, req session.QuestionRequest) tea.Cmd {
	return func() tea.Msg {
		answer, err := client.AskQuestion(ctx, req.Question)
		return AnswerResultMsg{Request: req, Answer: answer, Err: err}
	}
}

func revealTickCmd(gen uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return RevealTickMsg{Gen: gen}
	})
}

// waitForChange blocks until the store reports a change. A closed channel
// ends the subscription.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Chars: len([]rune(text)), Err: copyToClipboard(text)}
	}
}

func exportCmd(conv storage.Conversation, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportToFile(conv, export.NewMarkdownExporter(opts), opts)
		return ExportedMsg{Path: path, Err: err}
	}
}
