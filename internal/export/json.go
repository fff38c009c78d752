// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"

	"github.com/jeranaias/docbud-tui/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports a conversation in the store's versioned envelope, so
// the file can be loaded back as a conversation list of one.
// Options are accepted for consistency but never filter the output.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to JSON.
func (e *JSONExporter) Export(conv storage.Conversation) ([]byte, error) {
	if conv.ID == "" {
		return nil, fmt.Errorf("conversation has no id")
	}
	return storage.Encode([]storage.Conversation{conv})
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
