// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docbud-tui/internal/config"
	"github.com/jeranaias/docbud-tui/internal/session"
	"github.com/jeranaias/docbud-tui/internal/ui/components"
)

// =============================================================================
// CHAT COMMAND
// =============================================================================

func newChatCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [pdf]",
		Short: "Start a line-oriented chat session",
		Long: `Start an interactive session without the full-screen interface.
Enter the path to a PDF to upload it, then type questions. Lines starting
with / are commands; type /help to list them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := rt.openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			in := newLinerReader()
			defer in.Close()

			r := &repl{
				ctx:    ctx,
				ctrl:   app.Ctrl,
				in:     in,
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
			}
			pdf := ""
			if len(args) == 1 {
				pdf = args[0]
			}
			return r.run(pdf)
		},
	}
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is the input side of the REPL.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// linerReader provides input history and line editing.
type linerReader struct {
	*liner.State
	historyFile string
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &linerReader{State: line, historyFile: filepath.Join(configDir, "chat_history")}

	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

// Close saves history with owner-only permissions and restores the
// terminal.
func (r *linerReader) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.State.WriteHistory(f)
			f.Close()
		}
	}
	return r.State.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	ctx    context.Context
	ctrl   *session.Controller
	in     lineReader
	out    io.Writer
	errOut io.Writer
}

const replHelp = `Commands:
  /help          show this help
  /list          list stored conversations
  /open <id>     continue a stored conversation
  /delete <id>   delete a stored conversation
  /new           start over with another PDF
  /clear         clear the current conversation
  /quit          exit (also Ctrl+D)`

func (r *repl) run(pdf string) error {
	fmt.Fprintln(r.out, titleStyle.Render(components.ProductName)+" "+labelStyle.Render("type /help for commands"))
	if pdf != "" {
		r.open(pdf)
	}

	for {
		prompt := "pdf> "
		if r.ctrl.UploadState() == session.Ready {
			prompt = "ask> "
		}

		input, err := r.in.Prompt(prompt)
		if err != nil {
			// Ctrl+C, Ctrl+D or end of piped input
			fmt.Fprintln(r.out)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}

		if r.ctrl.UploadState() != session.Ready {
			r.open(input)
			continue
		}
		r.ask(input)
	}
}

// command runs a slash command and reports whether the session should end.
func (r *repl) command(input string) bool {
	fields := strings.Fields(input)
	name, arg := fields[0], ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h":
		fmt.Fprintln(r.out, replHelp)
	case "/new":
		r.ctrl.NewChat(r.ctx)
		fmt.Fprintln(r.out, labelStyle.Render("Started a new chat. Enter the path to a PDF."))
	case "/clear":
		if err := r.ctrl.ClearChat(r.ctx); err != nil {
			r.fail(session.MsgSaveFailed)
			return false
		}
		fmt.Fprintln(r.out, labelStyle.Render("Conversation cleared."))
	case "/list":
		convs := r.ctrl.Conversations()
		if len(convs) == 0 {
			fmt.Fprintln(r.out, labelStyle.Render("No conversations yet."))
		}
		for _, conv := range convs {
			marker := " "
			if conv.ID == r.ctrl.CurrentID() {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %s  %s  %s\n", marker, conv.ID, conv.Title, labelStyle.Render(components.ConversationMeta(conv)))
		}
	case "/open":
		if arg == "" {
			r.fail("usage: /open <id>")
			return false
		}
		if err := r.ctrl.LoadConversation(r.ctx, arg); err != nil {
			r.fail("cannot open " + arg + ": " + err.Error())
			return false
		}
		history := r.ctrl.History()
		fmt.Fprintf(r.out, "%s %s (%d questions)\n", labelStyle.Render("Opened"), r.ctrl.DocumentName(), len(history))
		for _, ex := range history {
			fmt.Fprintln(r.out, promptStyle.Render("Q: ")+ex.Question)
			writeAnswer(r.out, ex.Answer)
		}
	case "/delete":
		if arg == "" {
			r.fail("usage: /delete <id>")
			return false
		}
		if err := r.ctrl.DeleteConversation(r.ctx, arg); err != nil {
			r.fail("cannot delete " + arg + ": " + err.Error())
			return false
		}
		fmt.Fprintln(r.out, successStyle.Render("Deleted conversation "+arg))
	default:
		r.fail("unknown command " + name + " (try /help)")
	}
	return false
}

func (r *repl) open(path string) {
	if err := r.ctrl.SelectFile(path); err != nil {
		r.fail(r.ctrl.UploadError())
		return
	}
	fmt.Fprintln(r.out, labelStyle.Render("Uploading ")+r.ctrl.Document().Describe())
	if err := r.ctrl.Upload(r.ctx); err != nil {
		r.fail(r.ctrl.UploadError())
		return
	}
	if msg := r.ctrl.PersistError(); msg != "" {
		r.fail(msg)
	}
	fmt.Fprintln(r.out, successStyle.Render("Ready.")+" Ask a question about "+r.ctrl.DocumentName()+".")
}

func (r *repl) ask(question string) {
	answer, err := r.ctrl.Ask(r.ctx, question)
	if err != nil {
		msg := r.ctrl.QuestionError()
		if msg == "" {
			msg = err.Error()
		}
		r.fail(msg)
		return
	}
	writeAnswer(r.out, answer)
	if msg := r.ctrl.PersistError(); msg != "" {
		r.fail(msg)
	}
}

func (r *repl) fail(msg string) {
	fmt.Fprintln(r.errOut, errorStyle.Render(msg))
}
