// Package peer maintains the set of known peer nodes.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidAddress is returned when an address has no network location.
var ErrInvalidAddress = errors.New("address has no host")

// Peer represents information about a Node in the network.
type Peer struct {
	Host string `json:"host"`
}

// New contructs a new peer for the host:port value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Parse extracts the network location, host:port, from an address or URL.
// An address without a scheme such as "127.0.0.1:5001" is read as if it
// was "http://127.0.0.1:5001".
func Parse(address string) (Peer, error) {
	address = strings.TrimSpace(address)
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return Peer{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if u.Hostname() == "" {
		return Peer{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return New(u.Host), nil
}

// String implements the Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set. It returns false when the peer is
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Count returns the number of known peers.
func (ps *PeerSet) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns the known peers sorted by host. Membership has no order,
// sorting only keeps the output stable.
func (ps *PeerSet) Copy() []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		peers = append(peers, peer)
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}

// Hosts returns the network locations of the known peers.
func (ps *PeerSet) Hosts() []string {
	peers := ps.Copy()

	hosts := make([]string, len(peers))
	for i, peer := range peers {
		hosts[i] = peer.Host
	}

	return hosts
}
