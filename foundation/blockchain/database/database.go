// Package database maintains the in memory ledger: the ordered, genesis
// anchored sequence of blocks, the canonical block hash and the chain
// validation rules.
package database

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrChainMismatch is returned when a block doesn't extend the latest block.
var ErrChainMismatch = errors.New("block does not extend the latest block")

// =============================================================================

// Database manages the blocks of the chain. The ledger lives only in memory
// and is lost when the process exits.
type Database struct {
	mu        sync.RWMutex
	blocks    []Block
	evHandler func(v string, args ...any)
}

// New constructs a database seeded with the genesis block.
func New(evHandler func(v string, args ...any)) *Database {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	genesis := Genesis(time.Now())
	ev("database: New: genesis: hash[%s]", genesis.Hash())

	return &Database{
		blocks:    []Block{genesis},
		evHandler: ev,
	}
}

// LatestBlock returns the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1].Clone()
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// Copy returns a deep copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return cloneBlocks(db.blocks)
}

// Append adds the block to the end of the chain. The block must carry the
// next index and the hash of the latest block.
func (db *Database) Append(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	latest := db.blocks[len(db.blocks)-1]

	if block.Index != latest.Index+1 {
		return fmt.Errorf("%w: got index %d, exp %d", ErrChainMismatch, block.Index, latest.Index+1)
	}

	if hash := latest.Hash(); block.PreviousHash != hash {
		return fmt.Errorf("%w: got previous hash %s, exp %s", ErrChainMismatch, block.PreviousHash, hash)
	}

	db.blocks = append(db.blocks, block.Clone())
	db.evHandler("database: Append: blk[%d]: hash[%s]", block.Index, block.Hash())

	return nil
}

// Replace swaps the chain wholesale. The caller is responsible for having
// validated the chain.
func (db *Database) Replace(blocks []Block) error {
	if len(blocks) == 0 {
		return errors.New("replacement chain is empty")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.evHandler("database: Replace: length[%d] -> length[%d]", len(db.blocks), len(blocks))
	db.blocks = cloneBlocks(blocks)

	return nil
}

// =============================================================================

func cloneBlocks(blocks []Block) []Block {
	cpy := make([]Block, len(blocks))
	for i, block := range blocks {
		cpy[i] = block.Clone()
	}
	return cpy
}
