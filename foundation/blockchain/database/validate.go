package database

import (
	"errors"
	"fmt"

	"github.com/jazcoin/node/foundation/blockchain/pow"
)

// ValidateChain walks the chain from genesis and returns an error describing
// the first rule that is broken. Every block, the tip included, must hash.
// The chain is never modified.
func ValidateChain(chain []Block) error {
	if len(chain) == 0 {
		return errors.New("chain is empty")
	}

	// The genesis block is accepted by convention, its proof is not checked.
	genesis := chain[0]
	if genesis.Index != 1 {
		return fmt.Errorf("genesis index is %d, exp 1", genesis.Index)
	}

	if genesis.PreviousHash != GenesisPreviousHash {
		return fmt.Errorf("genesis previous hash is %q, exp %q", genesis.PreviousHash, GenesisPreviousHash)
	}

	prevBlock := genesis
	prevHash, err := Hash(genesis)
	if err != nil {
		return fmt.Errorf("blk[%d]: unable to hash: %w", genesis.Index, err)
	}

	for _, block := range chain[1:] {
		if block.Index != prevBlock.Index+1 {
			return fmt.Errorf("blk[%d]: this block is not the next index, exp %d", block.Index, prevBlock.Index+1)
		}

		if block.PreviousHash != prevHash {
			return fmt.Errorf("blk[%d]: previous hash doesn't match the previous block, got %s, exp %s", block.Index, block.PreviousHash, prevHash)
		}

		if !pow.IsSolved(prevBlock.Proof, block.Proof) {
			return fmt.Errorf("blk[%d]: proof %d doesn't solve the puzzle for previous proof %d", block.Index, block.Proof, prevBlock.Proof)
		}

		hash, err := Hash(block)
		if err != nil {
			return fmt.Errorf("blk[%d]: unable to hash: %w", block.Index, err)
		}

		prevBlock = block
		prevHash = hash
	}

	return nil
}

// IsValid reports whether the chain passes every validation rule.
func IsValid(chain []Block) bool {
	return ValidateChain(chain) == nil
}
