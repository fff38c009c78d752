// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docbud-tui/internal/export"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// EXPORT
// =============================================================================

func newExportCommand(rt *runtime) *cobra.Command {
	var (
		formatName string
		outDir     string
		open       bool
		theme      string
		noMeta     bool
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a conversation to a Markdown, HTML or JSON file",
		Example: `  docbud export 1741939200000
  docbud export 1741939200000 --format html --theme light --out ~/Documents`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			opts.OutputDir = outDir
			opts.OpenAfterExport = open
			opts.Theme = theme
			opts.IncludeMetadata = !noMeta

			exporter, err := export.ForFormat(formatName, opts)
			if err != nil {
				return &CommandError{Command: "export", Reason: "use md, html or json", Err: err}
			}

			app, err := rt.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			conv, ok := app.Store.Get(args[0])
			if !ok {
				return &CommandError{Command: "export", Reason: "unknown conversation " + args[0], Err: storage.ErrConversationNotFound}
			}

			path, err := export.ExportToFile(conv, exporter, opts)
			if err != nil {
				return &CommandError{Command: "export", Reason: "cannot write export", Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "md", "output format: md, html, json")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&open, "open", false, "open the file after writing it")
	cmd.Flags().StringVar(&theme, "theme", "dark", "HTML theme: dark or light")
	cmd.Flags().BoolVar(&noMeta, "no-metadata", false, "omit document name, dates and counts")
	return cmd
}
