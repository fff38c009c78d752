// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/docbud-tui/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testOptions() *Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func sampleConversation() storage.Conversation {
	created := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	return storage.Conversation{
		ID:           "1741939200000",
		Title:        "manual",
		Timestamp:    created.UnixMilli(),
		DocumentName: "manual.pdf",
		Messages: []storage.Exchange{
			{
				Question:  "How do I reset it?",
				Answer:    "Steps:\n1. Open the lid\n2. Press reset",
				Timestamp: created.Add(time.Minute).UnixMilli(),
			},
			{
				Question:  "Is it <safe>?",
				Answer:    "Yes & no.",
				Timestamp: created.Add(2 * time.Minute).UnixMilli(),
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"md", ".md"},
		{"Markdown", ".md"},
		{" html ", ".html"},
		{"htm", ".html"},
		{"json", ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := ForFormat(tt.name, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, exp.FileExtension())
		})
	}

	_, err := ForFormat("pdf", nil)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"manual", "manual"},
		{"a/b\\c:d", "a-b-c-d"},
		{"two words", "two_words"},
		{"", "conversation"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions()).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	require.True(t, strings.HasPrefix(md, "---\n"))
	end := strings.Index(md[4:], "---\n")
	require.Greater(t, end, 0)

	var fm frontmatter
	require.NoError(t, yaml.Unmarshal([]byte(md[4:4+end]), &fm))
	assert.Equal(t, "manual", fm.Title)
	assert.Equal(t, "manual.pdf", fm.Document)
	assert.Equal(t, 2, fm.Questions)
	assert.Equal(t, "docbud", fm.Generator)
	assert.Equal(t, fixedNow.Format(time.RFC3339), fm.Exported)

	assert.Contains(t, md, "# manual\n")
	assert.Contains(t, md, "- **Document**: manual.pdf\n")
	assert.Contains(t, md, "## How do I reset it? <sub>")
	assert.Contains(t, md, "**Steps:**\n\n1. Open the lid\n2. Press reset\n")
	assert.Contains(t, md, "\n---\n\n## Is it <safe>?")
}

func TestMarkdownExportTitleCannotBreakFrontmatter(t *testing.T) {
	conv := sampleConversation()
	conv.Title = "bad\ninjected: true"

	out, err := NewMarkdownExporter(testOptions()).Export(conv)
	require.NoError(t, err)

	md := string(out)
	end := strings.Index(md[4:], "---\n")
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(md[4:4+end]), &raw))
	assert.NotContains(t, raw, "injected")
	assert.Equal(t, "bad\ninjected: true", raw["title"])
}

func TestMarkdownExportEmpty(t *testing.T) {
	conv := sampleConversation()
	conv.Messages = nil
	opts := testOptions()
	opts.IncludeMetadata = false

	out, err := NewMarkdownExporter(opts).Export(conv)
	require.NoError(t, err)
	assert.Equal(t, "# manual\n\n_No questions yet._\n", string(out))
}

func TestExportRequiresID(t *testing.T) {
	conv := sampleConversation()
	conv.ID = ""
	for _, exp := range []Exporter{
		NewMarkdownExporter(nil),
		NewHTMLExporter(nil),
		NewJSONExporter(nil),
	} {
		_, err := exp.Export(conv)
		assert.Error(t, err)
	}
}

func TestHTMLExportEscapes(t *testing.T) {
	conv := sampleConversation()
	conv.Title = "<script>alert('x')</script>"

	out, err := NewHTMLExporter(testOptions()).Export(conv)
	require.NoError(t, err)
	page := string(out)

	assert.NotContains(t, page, "<script>alert")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.Contains(t, page, "Is it &lt;safe&gt;?")
	assert.Contains(t, page, "Yes &amp; no.")
	assert.Contains(t, page, `class="dark-theme"`)
}

func TestHTMLExportLists(t *testing.T) {
	conv := sampleConversation()
	conv.Messages = []storage.Exchange{{
		Question: "q",
		Answer:   "Parts:\n3. Lid\n4. Hinge\n• Spare screws\nSee page 2.",
	}}
	opts := testOptions()
	opts.Theme = "light"

	out, err := NewHTMLExporter(opts).Export(conv)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `class="light-theme"`)
	assert.Contains(t, page, "<h3>Parts:</h3>")
	assert.Contains(t, page, `<ol start="3">`)
	assert.Equal(t, 1, strings.Count(page, "<ol "))
	assert.Contains(t, page, "<li>Hinge</li>")
	assert.Contains(t, page, "<ul>")
	assert.Contains(t, page, "<li>Spare screws</li>")
	assert.Contains(t, page, "<p>See page 2.</p>")
}

func TestJSONExportDecodes(t *testing.T) {
	conv := sampleConversation()
	out, err := NewJSONExporter(nil).Export(conv)
	require.NoError(t, err)

	convs, err := storage.Decode(out)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, conv, convs[0])
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	opts := testOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(sampleConversation(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_manual_20250314_092653.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# manual")
}

func TestExportToFileExportError(t *testing.T) {
	conv := sampleConversation()
	conv.ID = ""
	opts := testOptions()
	opts.OutputDir = t.TempDir()

	_, err := ExportToFile(conv, NewJSONExporter(opts), opts)
	assert.Error(t, err)

	entries, err := os.ReadDir(opts.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
