// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/docbud-tui/internal/format"
	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv storage.Conversation) ([]byte, error) {
	if conv.ID == "" {
		return nil, fmt.Errorf("conversation has no id")
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"docbud\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.Time().Format(time.RFC3339)))
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString(e.renderHeader(conv))

	sb.WriteString("        <main class=\"conversation\">\n")
	if len(conv.Messages) == 0 {
		sb.WriteString("            <p class=\"empty\">No questions yet.</p>\n")
	}
	for _, ex := range conv.Messages {
		sb.WriteString(e.renderExchange(ex))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            Exported by docbud on %s\n", formatTimestamp(e.options.now())))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(conv storage.Conversation) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.Title)))
	if e.options.IncludeMetadata {
		sb.WriteString("            <div class=\"metadata\">\n")
		if conv.DocumentName != "" {
			sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Document:</strong> %s</span>\n", html.EscapeString(conv.DocumentName)))
		}
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.Time())))
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Questions:</strong> %d</span>\n", len(conv.Messages)))
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderExchange(ex storage.Exchange) string {
	var sb strings.Builder
	sb.WriteString("            <section class=\"exchange\">\n")

	sb.WriteString("                <div class=\"question\">\n")
	sb.WriteString("                    <span class=\"role-label\">You</span>\n")
	if e.options.IncludeTimestamps && ex.Timestamp > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(ex.Time())))
	}
	sb.WriteString(fmt.Sprintf("                    <p>%s</p>\n", html.EscapeString(ex.Question)))
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"answer\">\n")
	sb.WriteString("                    <span class=\"role-label\">DocBudAI</span>\n")
	sb.WriteString(renderLayoutHTML(format.Format(ex.Answer)))
	sb.WriteString("                </div>\n")

	sb.WriteString("            </section>\n")
	return sb.String()
}

// renderLayoutHTML renders formatter sections. Consecutive ordered items
// share one <ol> that starts at the first item's number.
func renderLayoutHTML(layout format.Layout) string {
	if layout.Empty() {
		return "                    <p class=\"empty\">No answer.</p>\n"
	}

	const indent = "                    "
	var sb strings.Builder
	for _, sec := range layout.Sections {
		sb.WriteString(indent + "<div class=\"section\">\n")
		if sec.Header != "" {
			sb.WriteString(fmt.Sprintf("%s<h3>%s</h3>\n", indent, html.EscapeString(sec.Header)))
		}

		open := ""
		closeList := func() {
			if open != "" {
				sb.WriteString(fmt.Sprintf("%s</%s>\n", indent, open))
				open = ""
			}
		}
		for _, it := range sec.Items {
			switch it.Kind {
			case format.Ordered:
				if open != "ol" {
					closeList()
					sb.WriteString(fmt.Sprintf("%s<ol start=\"%s\">\n", indent, html.EscapeString(it.Number)))
					open = "ol"
				}
				sb.WriteString(fmt.Sprintf("%s  <li>%s</li>\n", indent, html.EscapeString(it.Text)))
			case format.Bullet:
				if open != "ul" {
					closeList()
					sb.WriteString(indent + "<ul>\n")
					open = "ul"
				}
				sb.WriteString(fmt.Sprintf("%s  <li>%s</li>\n", indent, html.EscapeString(it.Text)))
			default:
				closeList()
				sb.WriteString(fmt.Sprintf("%s<p>%s</p>\n", indent, html.EscapeString(it.Text)))
			}
		}
		closeList()
		sb.WriteString(indent + "</div>\n")
	}
	return sb.String()
}

const htmlCSS = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        .dark-theme {
            --bg-primary: #1e1e2e;
            --bg-secondary: #262637;
            --text-primary: #cdd6f4;
            --text-muted: #6c7086;
            --border-color: #45475a;
            --accent-blue: #60a5fa;
            --accent-purple: #a78bfa;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --accent-blue: #2563eb;
            --accent-purple: #7c3aed;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            font-size: 16px;
            line-height: 1.6;
            background: var(--bg-primary);
            color: var(--text-primary);
        }

        .container { max-width: 880px; margin: 0 auto; padding: 2rem 1rem; }
        .header { border-bottom: 1px solid var(--border-color); padding-bottom: 1rem; margin-bottom: 2rem; }
        .header h1 { color: var(--accent-purple); font-size: 1.8rem; }
        .metadata { color: var(--text-muted); font-size: 0.9rem; display: flex; gap: 1.5rem; flex-wrap: wrap; }
        .exchange { margin-bottom: 2rem; }
        .question, .answer { padding: 0.75rem 1rem; border-left: 3px solid; margin-bottom: 0.75rem; background: var(--bg-secondary); }
        .question { border-color: var(--accent-blue); }
        .answer { border-color: var(--accent-purple); }
        .role-label { font-weight: 600; margin-right: 0.5rem; }
        .question .role-label { color: var(--accent-blue); }
        .answer .role-label { color: var(--accent-purple); }
        .timestamp { color: var(--text-muted); font-size: 0.85rem; }
        .section { margin-top: 0.5rem; }
        .section h3 { font-size: 1rem; margin-bottom: 0.25rem; }
        ol, ul { padding-left: 1.5rem; }
        .empty { color: var(--text-muted); font-style: italic; }
        .footer { color: var(--text-muted); font-size: 0.85rem; text-align: center; margin-top: 3rem; }
    </style>
`
