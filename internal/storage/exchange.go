// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// ExchangeAppend is an optimistic append to an in-memory history together
// with its inverse. Revert finds the exchange by timestamp identity, so it
// stays correct if other exchanges were added or removed in between.
type ExchangeAppend struct {
	Exchange Exchange
}

// Apply returns history with the exchange appended. history is not modified.
func (a ExchangeAppend) Apply(history []Exchange) []Exchange {
	out := make([]Exchange, 0, len(history)+1)
	out = append(out, history...)
	return append(out, a.Exchange)
}

// Revert returns history without the most recent exchange whose timestamp
// matches. Reverting an append that is not present returns a copy of
// history unchanged.
func (a ExchangeAppend) Revert(history []Exchange) []Exchange {
	out := append([]Exchange{}, history...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Timestamp == a.Exchange.Timestamp {
			return append(out[:i], out[i+1:]...)
		}
	}
	return out
}

// NextExchangeTimestamp returns a timestamp for a new exchange that is at
// least now and strictly greater than every timestamp already in history.
func NextExchangeTimestamp(history []Exchange, now int64) int64 {
	ts := now
	for _, ex := range history {
		if ex.Timestamp >= ts {
			ts = ex.Timestamp + 1
		}
	}
	return ts
}
