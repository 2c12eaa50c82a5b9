package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/metrics"
	"github.com/jazcoin/node/foundation/blockchain/peer"
)

// peerChain is the outcome of fetching the chain from a single peer.
type peerChain struct {
	peer peer.Peer
	data database.ChainData
	err  error
}

// ResolveConsensus applies the longest valid chain rule. The chain of every
// known peer is fetched and the longest one that is strictly longer than the
// local chain and passes validation replaces the local chain wholesale. Peers
// that fail to answer or answer with a malformed or invalid chain are
// skipped. It reports whether the local chain was replaced.
func (s *State) ResolveConsensus(ctx context.Context) (bool, error) {
	s.evHandler("state: ResolveConsensus: started")
	defer s.evHandler("state: ResolveConsensus: completed")

	results := s.fetchPeerChains(ctx, s.RetrieveKnownPeers())

	// Ties favor the incumbent, starting with the local chain.
	maxLength := s.db.Length()
	var longest []database.Block

	for _, res := range results {
		if res.err != nil {
			s.evHandler("state: ResolveConsensus: peer[%s]: ERROR: %s", res.peer, res.err)
			metrics.AddPeerFailure()
			continue
		}

		if res.data.Length != len(res.data.Chain) {
			s.evHandler("state: ResolveConsensus: peer[%s]: malformed: length[%d] blocks[%d]", res.peer, res.data.Length, len(res.data.Chain))
			metrics.AddPeerFailure()
			continue
		}

		if res.data.Length <= maxLength {
			s.evHandler("state: ResolveConsensus: peer[%s]: length[%d] not longer than [%d]", res.peer, res.data.Length, maxLength)
			continue
		}

		if err := database.ValidateChain(res.data.Chain); err != nil {
			s.evHandler("state: ResolveConsensus: peer[%s]: invalid chain: %s", res.peer, err)
			continue
		}

		s.evHandler("state: ResolveConsensus: peer[%s]: candidate length[%d]", res.peer, res.data.Length)
		maxLength = res.data.Length
		longest = res.data.Chain
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if longest == nil {
		metrics.AddConsensusRun(false)
		return false, nil
	}

	replaced, err := s.replaceChain(longest)
	if err != nil {
		return false, err
	}

	metrics.AddConsensusRun(replaced)

	return replaced, nil
}

// replaceChain swaps the local chain as long as the candidate is still
// longer once the ledger lock is held.
func (s *State) replaceChain(chain []database.Block) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(chain) <= s.db.Length() {
		s.evHandler("state: replaceChain: local chain grew to [%d], keeping it", s.db.Length())
		return false, nil
	}

	if err := s.db.Replace(chain); err != nil {
		return false, fmt.Errorf("replacing chain: %w", err)
	}
	metrics.SetChainLength(len(chain))

	return true, nil
}

// fetchPeerChains asks every peer for its chain in parallel. Each fetch is
// bounded by the peer timeout. The results are returned in the order of the
// peers provided.
func (s *State) fetchPeerChains(ctx context.Context, peers []peer.Peer) []peerChain {
	results := make([]peerChain, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func(i int, pr peer.Peer) {
			defer wg.Done()

			ctx := ctx
			if s.peerTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.peerTimeout)
				defer cancel()
			}

			data, err := s.fetcher.FetchChain(ctx, pr)
			results[i] = peerChain{peer: pr, data: data, err: err}
		}(i, pr)
	}

	wg.Wait()

	return results
}
