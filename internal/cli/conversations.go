// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docbud-tui/internal/storage"
	"github.com/jeranaias/docbud-tui/internal/ui/components"
	"github.com/jeranaias/docbud-tui/internal/util"
)

// =============================================================================
// LIST
// =============================================================================

func newListCommand(rt *runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			convs := app.Store.List()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(convs)
			}

			if len(convs) == 0 {
				fmt.Fprintln(out, labelStyle.Render("No conversations yet."))
				return nil
			}
			for _, conv := range convs {
				fmt.Fprintf(out, "%s  %s  %s\n",
					util.PadRight(conv.ID, 14),
					util.PadRight(util.SingleLine(conv.Title), 32),
					labelStyle.Render(components.ConversationMeta(conv)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored records as JSON")
	return cmd
}

// =============================================================================
// SHOW
// =============================================================================

func newShowCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			conv, ok := app.Store.Get(args[0])
			if !ok {
				return &CommandError{Command: "show", Reason: "unknown conversation " + args[0], Err: storage.ErrConversationNotFound}
			}
			writeConversation(cmd.OutOrStdout(), conv)
			return nil
		},
	}
}

// =============================================================================
// DELETE / CLEAR
// =============================================================================

func newDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Ctrl.DeleteConversation(cmd.Context(), args[0]); err != nil {
				return &CommandError{Command: "delete", Reason: "cannot delete " + args[0], Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted conversation "+args[0]))
			return nil
		},
	}
}

func newClearCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Remove every question and answer from a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Store.ClearExchanges(cmd.Context(), args[0]); err != nil {
				return &CommandError{Command: "clear", Reason: "cannot clear " + args[0], Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Cleared conversation "+args[0]))
			return nil
		},
	}
}
