// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client state machines that sit between the user
// and the question-answering backend, independent of any terminal UI.
//
// # Upload Flow
//
//	NoFile -> FileSelected -> Uploading -> Ready
//	                 ^             |
//	                 +---- error --+
//
// # Question Flow
//
//	Idle -> Asking -> Idle
//
// At most one question is in flight. A successful answer is revealed word by
// word through a Reveal; only when the reveal finishes is the full answer
// committed and the conversation persisted.
//
// # Usage
//
// Drive the Controller from a single goroutine (the Bubble Tea update loop).
// Network calls happen elsewhere and report back:
//
//	req, ok := ctrl.BeginQuestion(ctx, input)
//	if ok {
//	    answer, err := client.AskQuestion(ctx, req.Question)
//	    ctrl.CompleteQuestion(req, answer, err)
//	}
//	for ctrl.TickReveal(ctx, ctrl.RevealGeneration()) { ... }
package session
