// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docbud-tui/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func newConfigCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), rt.cfg.String())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration, storage and log locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfgPath, err := configFilePath(rt)
			if err != nil {
				return &ConfigError{Err: err}
			}
			storePath, err := rt.cfg.StoragePath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			logPath, err := rt.cfg.LogPath()
			if err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintf(out, "config:  %s\n", cfgPath)
			fmt.Fprintf(out, "storage: %s (%s)\n", storePath, rt.cfg.Storage.Backend)
			fmt.Fprintf(out, "log:     %s\n", logPath)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(rt)
			if err != nil {
				return &ConfigError{Err: err}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &CommandError{Command: "config init", Reason: path + " already exists (use --force to overwrite)"}
			}
			if err := config.SaveTOML(rt.cfg, path); err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote "+path))
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

// configFilePath is --config when given, else the default TOML location.
func configFilePath(rt *runtime) (string, error) {
	if rt.opts.configPath != "" {
		return rt.opts.configPath, nil
	}
	return config.ConfigPathTOML()
}
