// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

func newAskCommand(rt *runtime) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "ask <pdf> <question...>",
		Short: "Upload a PDF and ask a single question",
		Example: `  docbud ask manual.pdf "How do I reset the device?"
  docbud ask report.pdf what are the key findings`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := rt.openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl := app.Ctrl
			if err := ctrl.SelectFile(args[0]); err != nil {
				return &CommandError{Command: "ask", Reason: ctrl.UploadError(), Err: err}
			}

			errOut := cmd.ErrOrStderr()
			if !quiet {
				fmt.Fprintf(errOut, "%s %s\n", labelStyle.Render("Uploading"), ctrl.Document().Describe())
			}
			if err := ctrl.Upload(ctx); err != nil {
				return &CommandError{Command: "ask", Reason: ctrl.UploadError(), Err: err}
			}

			question := strings.Join(args[1:], " ")
			answer, err := ctrl.Ask(ctx, question)
			if err != nil {
				reason := ctrl.QuestionError()
				if reason == "" {
					reason = "no question asked"
				}
				return &CommandError{Command: "ask", Reason: reason, Err: err}
			}

			writeAnswer(cmd.OutOrStdout(), answer)
			if msg := ctrl.PersistError(); msg != "" {
				fmt.Fprintln(errOut, errorStyle.Render(msg))
			} else if !quiet {
				fmt.Fprintf(errOut, "%s %s\n", labelStyle.Render("Saved as conversation"), ctrl.CurrentID())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the answer")
	return cmd
}
