// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "strings"

// Reveal progressively shows an answer that has already arrived in full.
// Words are split on single spaces so line breaks survive inside tokens and
// every partial text is a prefix of the answer.
type Reveal struct {
	gen       uint64
	words     []string
	shown     int
	full      string
	timestamp int64  // identity of the exchange being answered
	convID    string // owning conversation, "" if it was never persisted
}

func newReveal(gen uint64, answer string, timestamp int64, convID string) *Reveal {
	return &Reveal{
		gen:       gen,
		words:     strings.Split(answer, " "),
		full:      answer,
		timestamp: timestamp,
		convID:    convID,
	}
}

// Generation identifies this reveal; ticks carrying another value are stale.
func (r *Reveal) Generation() uint64 { return r.gen }

// Advance shows one more word. It returns false once every word is already
// visible, which is the signal to commit.
func (r *Reveal) Advance() bool {
	if r.shown >= len(r.words) {
		return false
	}
	r.shown++
	return true
}

// Text returns the visible prefix.
func (r *Reveal) Text() string {
	return strings.Join(r.words[:r.shown], " ")
}

// Full returns the complete answer.
func (r *Reveal) Full() string { return r.full }

// Progress returns words shown and total.
func (r *Reveal) Progress() (shown, total int) {
	return r.shown, len(r.words)
}
