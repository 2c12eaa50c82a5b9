// Package state is the core API for the ledger and implements all the
// business rules and processing: mining, the transaction pool, peers and
// consensus.
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/mempool"
	"github.com/jazcoin/node/foundation/blockchain/metrics"
	"github.com/jazcoin/node/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing background support such as periodic consensus.
type Worker interface {
	Shutdown()
}

// Fetcher represents the behavior required to retrieve the chain a peer
// is currently holding.
type Fetcher interface {
	FetchChain(ctx context.Context, pr peer.Peer) (database.ChainData, error)
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	NodeID      string        // Sender of the reward transaction, an opaque identity.
	Payee       string        // Receiver of the reward transaction.
	Reward      float64       // Amount of the reward transaction.
	MaxTrials   uint64        // Proof of work candidates before giving up, 0 is unbounded.
	PeerTimeout time.Duration // Time allowed for a single peer fetch, 0 is unbounded.
	KnownPeers  *peer.PeerSet
	Fetcher     Fetcher
	EvHandler   EventHandler
}

// State manages the ledger. The chain and the pool are one shared resource
// and every write to either happens while holding mu.
type State struct {
	nodeID      string
	payee       string
	reward      float64
	maxTrials   uint64
	peerTimeout time.Duration
	evHandler   EventHandler
	mu          sync.Mutex

	knownPeers *peer.PeerSet
	fetcher    Fetcher
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new ledger seeded with the genesis block.
func New(cfg Config) (*State, error) {
	if cfg.NodeID == "" {
		return nil, errors.New("node id is required")
	}

	if cfg.Fetcher == nil {
		return nil, errors.New("peer fetcher is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	db := database.New(ev)
	metrics.SetChainLength(db.Length())

	state := State{
		nodeID:      cfg.NodeID,
		payee:       cfg.Payee,
		reward:      cfg.Reward,
		maxTrials:   cfg.MaxTrials,
		peerTimeout: cfg.PeerTimeout,
		evHandler:   ev,

		knownPeers: knownPeers,
		fetcher:    cfg.Fetcher,
		mempool:    mempool.New(),
		db:         db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
