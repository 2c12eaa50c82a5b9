package state

import (
	"context"
	"errors"
	"time"

	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/metrics"
	"github.com/jazcoin/node/foundation/blockchain/pow"
)

// errTipMoved is returned when the chain changed while a proof was searched.
var errTipMoved = errors.New("latest block changed during mining")

// =============================================================================

// MineNewBlock solves the proof of work against the latest block and commits
// a new block holding every pooled transaction plus the reward transaction.
// The search runs without holding the ledger lock. If another block or a
// replacement chain lands before the commit, the search starts over on the
// new latest block.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	for {
		prevBlock := s.db.LatestBlock()

		s.evHandler("state: MineNewBlock: MINING: perform POW: prevBlk[%d]: prevProof[%d]", prevBlock.Index, prevBlock.Proof)

		proof, err := pow.Solve(ctx, prevBlock.Proof, s.maxTrials)
		if err != nil {
			s.evHandler("state: MineNewBlock: MINING: ERROR: %s", err)
			return database.Block{}, err
		}

		s.evHandler("state: MineNewBlock: MINING: SOLVED: proof[%d]", proof)

		block, err := s.commitBlock(prevBlock, proof)
		if err != nil {
			if errors.Is(err, errTipMoved) {
				s.evHandler("state: MineNewBlock: MINING: latest block changed, restarting")
				continue
			}
			return database.Block{}, err
		}

		// Candidates start at 1, so the proof is the number of trials.
		metrics.AddBlockMined(proof)

		return block, nil
	}
}

// commitBlock reads the tip, drains the pool and appends the new block as a
// single critical section.
func (s *State) commitBlock(prevBlock database.Block, proof int64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.db.LatestBlock()
	if latest.Index != prevBlock.Index || latest.Hash() != prevBlock.Hash() {
		return database.Block{}, errTipMoved
	}

	// The block takes ownership of every pooled transaction.
	reward := database.NewTx(s.nodeID, s.payee, s.reward)
	pooled := s.mempool.Drain()
	trans := append(pooled, reward)

	block := database.NewBlock(prevBlock, proof, trans, time.Now())
	if err := s.db.Append(block); err != nil {
		for _, tx := range pooled {
			s.mempool.Add(tx)
		}
		return database.Block{}, err
	}

	metrics.SetChainLength(s.db.Length())

	for _, tx := range block.Transactions {
		s.evHandler("state: commitBlock: blk[%d]: tx[%s]", block.Index, tx)
	}

	return block, nil
}
