package types

import (
	"sort"
)

// SortTrades sorts the trades by timestamp in place. Trades of the same timestamp keep their order.
func SortTrades(trades []Trade) []Trade {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})
	return trades
}
