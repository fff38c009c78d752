// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/docbud-tui/internal/format"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

type frontmatter struct {
	Title     string `yaml:"title"`
	Document  string `yaml:"document,omitempty"`
	Date      string `yaml:"date"`
	Questions int    `yaml:"questions"`
	Exported  string `yaml:"exported"`
	Generator string `yaml:"generator"`
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv storage.Conversation) ([]byte, error) {
	if conv.ID == "" {
		return nil, fmt.Errorf("conversation has no id")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontmatter{
			Title:     conv.Title,
			Document:  conv.DocumentName,
			Date:      conv.Time().Format(time.RFC3339),
			Questions: len(conv.Messages),
			Exported:  e.options.now().Format(time.RFC3339),
			Generator: "docbud",
		})
		if err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.Title)))

	if e.options.IncludeMetadata {
		if conv.DocumentName != "" {
			sb.WriteString(fmt.Sprintf("- **Document**: %s\n", escapeMarkdown(conv.DocumentName)))
		}
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(conv.Time())))
		sb.WriteString(fmt.Sprintf("- **Questions**: %d\n\n", len(conv.Messages)))
	}

	if len(conv.Messages) == 0 {
		sb.WriteString("_No questions yet._\n")
	}

	for i, ex := range conv.Messages {
		if e.options.IncludeTimestamps && ex.Timestamp > 0 {
			sb.WriteString(fmt.Sprintf("## %s <sub>%s</sub>\n\n", escapeMarkdown(ex.Question), formatShortTimestamp(ex.Time())))
		} else {
			sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdown(ex.Question)))
		}

		if md := format.Format(ex.Answer).Markdown(); md != "" {
			sb.WriteString(md)
		} else {
			sb.WriteString("_No answer._\n")
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would break formatting in headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
