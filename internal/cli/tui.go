// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docbud-tui/internal/ui/chat"
	"github.com/jeranaias/docbud-tui/internal/ui/styles"
)

// runTUI starts the full-screen interface.
func runTUI(ctx context.Context, rt *runtime) error {
	app, err := rt.openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := rt.cfg
	var changes <-chan struct{}
	if cfg.Storage.Watch {
		changes = app.Watch(ctx)
	}

	m := chat.New(app.Ctrl, styles.NewTheme(cfg.UI.Theme), chat.Options{
		RevealInterval: cfg.RevealInterval(),
		ShowSidebar:    cfg.UI.ShowSidebar,
		Changes:        changes,
		Context:        ctx,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
