// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

// AskResponse is the body returned by the question endpoint. Other fields
// the service may add are ignored.
type AskResponse struct {
	Answer string `json:"answer"`
}
