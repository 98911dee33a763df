package api

import (
	"sync"

	"github.com/huandu/skiplist"

	"github.com/castleswap/tranche-dex/api/types"
)

// TradeWindow keeps the most recent settled swaps per pool, ordered by
// sequence number. Old entries fall off the front once capacity is hit.
type TradeWindow struct {
	capacity int
	nextSeq  uint64
	lists    map[string]*skiplist.SkipList // pool id -> sequence-keyed trades
	mu       sync.RWMutex
}

// NewTradeWindow creates a trade window holding up to capacity trades per pool
func NewTradeWindow(capacity int) *TradeWindow {
	if capacity <= 0 {
		capacity = 1000
	}
	return &TradeWindow{
		capacity: capacity,
		nextSeq:  1,
		lists:    make(map[string]*skiplist.SkipList),
	}
}

// Record appends a trade and assigns its sequence number
func (w *TradeWindow) Record(trade *types.TradeRecord) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	list, ok := w.lists[trade.PoolID]
	if !ok {
		list = skiplist.New(skiplist.Uint64)
		w.lists[trade.PoolID] = list
	}

	seq := w.nextSeq
	w.nextSeq++
	trade.Sequence = seq
	list.Set(seq, trade)

	for list.Len() > w.capacity {
		front := list.Front()
		if front == nil {
			break
		}
		list.Remove(front.Key())
	}

	return seq
}

// Recent returns up to limit trades for a pool, newest first
func (w *TradeWindow) Recent(poolID string, limit int) []*types.TradeRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()

	list, ok := w.lists[poolID]
	if !ok {
		return nil
	}

	if limit <= 0 || limit > list.Len() {
		limit = list.Len()
	}

	trades := make([]*types.TradeRecord, 0, limit)
	for elem := list.Back(); elem != nil && len(trades) < limit; elem = elem.Prev() {
		trades = append(trades, elem.Value.(*types.TradeRecord))
	}
	return trades
}

// Len returns the number of buffered trades for a pool
func (w *TradeWindow) Len(poolID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if list, ok := w.lists[poolID]; ok {
		return list.Len()
	}
	return 0
}
