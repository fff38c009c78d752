// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the PDF question-answering
// service.
//
// The service exposes two endpoints, both taking multipart form bodies:
//
//   - POST /upload_pdf/   field "file" with the PDF bytes
//   - POST /ask_question/ field "question", response {"answer": "..."}
//
// Calls are never retried. Failures are returned as *ClientError so callers
// can tell transport problems from server rejections.
//
// # Usage
//
//	client := backend.NewClient(backend.ClientConfig{BaseURL: cfg.Backend.BaseURL})
//	if err := client.UploadPDF(ctx, doc.Name, r); err != nil { ... }
//	answer, err := client.AskQuestion(ctx, "What is the conclusion?")
package backend
