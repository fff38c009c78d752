// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for docbud.
//
// All conversations live in a single blob under one well-known key of a
// kv.Storage backend. The blob is read once at startup and rewritten in full
// on every mutation.
//
// # Key Types
//
//   - Store: in-memory mirror of the persisted conversations
//   - Conversation: one uploaded document's chat session
//   - Exchange: one question and its answer
//   - ExchangeAppend: optimistic append with an explicit inverse
//   - DeserializationError: the persisted blob could not be decoded
//
// # Usage
//
//	store := storage.NewStore(backend, cfg.Storage.Key)
//	convs, err := store.Load(ctx)
//	conv, err := store.CreateConversation(ctx, "report.pdf")
//	err = store.AppendExchange(ctx, conv.ID, ex)
//
// # Blob Format
//
// Version 1 wraps the list in an envelope:
//
//	{"version":1,"conversations":[{"id":"...","title":"...","timestamp":0,"messages":[]}]}
//
// A bare JSON array is read as version 0 and rewritten as version 1 on the
// next save.
package storage
