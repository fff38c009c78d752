// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme_Modes(t *testing.T) {
	tests := []struct {
		mode     string
		wantDark bool
	}{
		{"dark", true},
		{"DARK", true},
		{"light", false},
	}
	for _, tt := range tests {
		theme := NewTheme(tt.mode)
		if theme.IsDark != tt.wantDark {
			t.Errorf("NewTheme(%q).IsDark = %v, want %v", tt.mode, theme.IsDark, tt.wantDark)
		}
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")
	for name, out := range map[string]string{
		"ordinal": theme.Ordinal.Render("1"),
		"header":  theme.SectionHeader.Render("Step 1:"),
		"error":   theme.Error.Render("boom"),
	} {
		if out == "" {
			t.Errorf("%s style rendered nothing", name)
		}
	}
}

func TestRenderStatusMessages(t *testing.T) {
	if got := RenderSuccess("uploaded"); !strings.Contains(got, StatusIndicators.Success) || !strings.Contains(got, "uploaded") {
		t.Errorf("RenderSuccess = %q", got)
	}
	if got := RenderError("failed"); !strings.Contains(got, StatusIndicators.Error) || !strings.Contains(got, "failed") {
		t.Errorf("RenderError = %q", got)
	}
}
