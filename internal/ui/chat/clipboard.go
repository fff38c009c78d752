// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/atotto/clipboard"

// copyToClipboard copies the given text to the system clipboard.
// Returns an error if the clipboard is not available. Tests replace it.
var copyToClipboard = clipboard.WriteAll
