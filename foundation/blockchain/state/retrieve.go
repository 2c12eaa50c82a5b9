package state

import (
	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/peer"
)

// RetrieveChain returns a snapshot of the full chain and its length.
func (s *State) RetrieveChain() database.ChainData {
	return database.NewChainData(s.db.Copy())
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy()
}

// IsChainValid validates the current chain.
func (s *State) IsChainValid() bool {
	if err := database.ValidateChain(s.db.Copy()); err != nil {
		s.evHandler("state: IsChainValid: WARNING: %s", err)
		return false
	}

	return true
}
