// Package mempool maintains the transactions that are accepted but not yet
// committed into a block.
package mempool

import (
	"sync"

	"github.com/jazcoin/node/foundation/blockchain/database"
)

// Mempool represents an ordered cache of pending transactions. Transactions
// are kept in the order they were submitted.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the pool and returns the new pool size.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Drain removes and returns every transaction in the pool, leaving it empty.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	if trans == nil {
		return []database.Tx{}
	}

	return trans
}

// Copy returns a copy of the pending transactions.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}
