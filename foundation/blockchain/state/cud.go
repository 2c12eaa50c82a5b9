package state

import (
	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/peer"
)

// AddTransaction pools a new transaction and returns the index of the block
// it will be committed into.
func (s *State) AddTransaction(sender string, receiver string, amount float64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := database.NewTx(sender, receiver, amount)
	n := s.mempool.Add(tx)

	s.evHandler("state: AddTransaction: tx[%s]: pool[%d]", tx, n)

	return uint64(s.db.Length()) + 1
}

// AddKnownPeers parses every address and registers its network location.
// Nothing is registered unless every address can be parsed. The full set of
// known hosts is returned.
func (s *State) AddKnownPeers(addresses []string) ([]string, error) {
	peers := make([]peer.Peer, len(addresses))
	for i, address := range addresses {
		pr, err := peer.Parse(address)
		if err != nil {
			return nil, err
		}
		peers[i] = pr
	}

	for _, pr := range peers {
		if s.knownPeers.Add(pr) {
			s.evHandler("state: AddKnownPeers: adding peer-node %s", pr)
		}
	}

	return s.knownPeers.Hosts(), nil
}
