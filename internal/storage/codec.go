// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the blob version written by Encode.
const SchemaVersion = 1

// ErrUnsupportedVersion is the cause of a DeserializationError for blobs
// written by a newer docbud.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

// DeserializationError reports a persisted blob that could not be decoded.
// Version is the schema version found in the blob, or -1 when it could not
// be determined.
type DeserializationError struct {
	Version int
	Cause   error
}

func (e *DeserializationError) Error() string {
	if e.Version < 0 {
		return fmt.Sprintf("decode conversations: %v", e.Cause)
	}
	return fmt.Sprintf("decode conversations (schema v%d): %v", e.Version, e.Cause)
}

func (e *DeserializationError) Unwrap() error {
	return e.Cause
}

type envelope struct {
	Version       int            `json:"version"`
	Conversations []Conversation `json:"conversations"`
}

// Encode serializes conversations as a version 1 envelope.
func Encode(convs []Conversation) ([]byte, error) {
	env := envelope{Version: SchemaVersion, Conversations: normalize(convs)}
	return json.Marshal(env)
}

// Decode parses a blob of any known version. Empty input and JSON null
// decode to an empty list.
func Decode(data []byte) ([]Conversation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Conversation{}, nil
	}

	switch data[0] {
	case '[':
		var convs []Conversation
		if err := json.Unmarshal(data, &convs); err != nil {
			return nil, &DeserializationError{Version: 0, Cause: err}
		}
		return normalize(convs), nil

	case '{':
		var probe struct {
			Version *int `json:"version"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, &DeserializationError{Version: -1, Cause: err}
		}
		if probe.Version == nil {
			return nil, &DeserializationError{Version: -1, Cause: errors.New("missing version field")}
		}
		if *probe.Version > SchemaVersion || *probe.Version < 1 {
			return nil, &DeserializationError{Version: *probe.Version, Cause: ErrUnsupportedVersion}
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, &DeserializationError{Version: *probe.Version, Cause: err}
		}
		return normalize(env.Conversations), nil

	default:
		return nil, &DeserializationError{Version: -1, Cause: fmt.Errorf("unexpected leading byte %q", data[0])}
	}
}

// normalize replaces nil slices so the blob never contains "messages":null.
func normalize(convs []Conversation) []Conversation {
	if convs == nil {
		return []Conversation{}
	}
	for i := range convs {
		if convs[i].Messages == nil {
			convs[i].Messages = []Exchange{}
		}
	}
	return convs
}
