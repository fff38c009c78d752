// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "testing"

func TestExchangeAppend_ApplyRevert(t *testing.T) {
	history := []Exchange{{Question: "a", Timestamp: 1}, {Question: "b", Timestamp: 2}}
	op := ExchangeAppend{Exchange: Exchange{Question: "c", Timestamp: 3}}

	applied := op.Apply(history)
	if len(applied) != 3 || applied[2].Question != "c" {
		t.Fatalf("Apply = %+v", applied)
	}
	if len(history) != 2 {
		t.Error("Apply modified its input")
	}

	reverted := op.Revert(applied)
	if len(reverted) != 2 || reverted[1].Question != "b" {
		t.Errorf("Revert = %+v, want original history", reverted)
	}
	if len(applied) != 3 {
		t.Error("Revert modified its input")
	}
}

func TestExchangeAppend_RevertByIdentity(t *testing.T) {
	op := ExchangeAppend{Exchange: Exchange{Question: "c", Timestamp: 3}}
	// another exchange was appended after the optimistic one
	history := []Exchange{{Timestamp: 1}, {Question: "c", Timestamp: 3}, {Question: "d", Timestamp: 4}}

	got := op.Revert(history)
	if len(got) != 2 || got[0].Timestamp != 1 || got[1].Timestamp != 4 {
		t.Errorf("Revert = %+v, want exchanges 1 and 4", got)
	}

	// absent exchange: unchanged
	if got := op.Revert([]Exchange{{Timestamp: 9}}); len(got) != 1 {
		t.Errorf("Revert of absent = %+v", got)
	}
}

func TestNextExchangeTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		history []Exchange
		now     int64
		want    int64
	}{
		{"empty", nil, 100, 100},
		{"older", []Exchange{{Timestamp: 50}}, 100, 100},
		{"same ms", []Exchange{{Timestamp: 100}}, 100, 101},
		{"clock behind", []Exchange{{Timestamp: 200}, {Timestamp: 150}}, 100, 201},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextExchangeTimestamp(tt.history, tt.now); got != tt.want {
				t.Errorf("NextExchangeTimestamp = %d, want %d", got, tt.want)
			}
		})
	}
}
