// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docbud-tui/internal/config"
	"github.com/jeranaias/docbud-tui/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

type rootOptions struct {
	configPath string
	backendURL string
	store      string
	storePath  string
	verbose    bool
}

// runtime holds state shared by every command of one invocation.
type runtime struct {
	opts      rootOptions
	cfg       *config.Config
	logCloser io.Closer
}

// setup loads configuration, applies flag overrides and installs logging.
// The TUI owns the terminal, so console logging is only enabled for
// subcommands.
func (rt *runtime) setup(cmd *cobra.Command) error {
	var cfg *config.Config
	var err error
	if rt.opts.configPath != "" {
		cfg, err = config.LoadFromPath(rt.opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return &ConfigError{Err: err}
	}

	if rt.opts.backendURL != "" {
		cfg.Backend.BaseURL = rt.opts.backendURL
	}
	if rt.opts.store != "" {
		cfg.Storage.Backend = rt.opts.store
	}
	if rt.opts.storePath != "" {
		cfg.Storage.Path = rt.opts.storePath
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: err}
	}

	level := cfg.Log.Level
	if rt.opts.verbose {
		level = "debug"
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		logPath = ""
	}
	closer, err := logging.Setup(logging.Options{
		Level:   level,
		Path:    logPath,
		Console: rt.opts.verbose && cmd.Parent() != nil,
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: log file unavailable: %v\n", err)
	}
	rt.logCloser = closer
	rt.cfg = cfg

	log.Debug().Str("command", cmd.Name()).Str("backend", cfg.Backend.BaseURL).
		Str("store", cfg.Storage.Backend).Msg("starting")
	return nil
}

func (rt *runtime) teardown() {
	if rt.logCloser != nil {
		_ = rt.logCloser.Close()
		rt.logCloser = nil
	}
}

// openApp opens the application for a command.
func (rt *runtime) openApp(ctx context.Context) (*App, error) {
	return OpenApp(ctx, rt.cfg)
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the docbud command tree.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "docbud",
		Short: "Chat with your PDF documents from the terminal",
		Long: `docbud uploads a PDF to a question-answering backend and lets you ask
questions about it. Conversations are kept locally and can be reopened
later. Run without a subcommand for the full-screen interface.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.opts.configPath, "config", "", "configuration file (default ~/.docbud/config.toml)")
	flags.StringVar(&rt.opts.backendURL, "backend", "", "backend base URL")
	flags.StringVar(&rt.opts.store, "store", "", "storage backend: file, sqlite, redis, memory")
	flags.StringVar(&rt.opts.storePath, "store-path", "", "storage directory (file) or database file (sqlite)")
	flags.BoolVarP(&rt.opts.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newChatCommand(rt),
		newAskCommand(rt),
		newListCommand(rt),
		newShowCommand(rt),
		newDeleteCommand(rt),
		newClearCommand(rt),
		newExportCommand(rt),
		newConfigCommand(rt),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
