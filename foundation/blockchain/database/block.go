package database

import (
	"fmt"
	"time"

	"github.com/jazcoin/node/foundation/blockchain/digest"
)

// GenesisPreviousHash is the sentinel previous hash carried by the genesis block.
const GenesisPreviousHash = "0"

// GenesisProof is the proof hard coded into the genesis block.
const GenesisProof = 1

// =============================================================================

// Tx represents a transfer between two parties. A transaction has no identity
// beyond its position inside a block.
type Tx struct {
	Sender   string  `json:"sender"`
	Receiver string  `json:"receiver"`
	Amount   float64 `json:"amount"`
}

// NewTx constructs a transaction.
func NewTx(sender string, receiver string, amount float64) Tx {
	return Tx{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}
}

// String implements the Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Receiver, tx.Amount)
}

// =============================================================================

// Block represents a group of transactions sealed by a proof of work.
type Block struct {
	Index        uint64    `json:"index"`         // Position in the chain, genesis is 1.
	Timestamp    time.Time `json:"timestamp"`     // Time the block was created.
	Proof        int64     `json:"proof"`         // Solution to the puzzle against the previous proof.
	PreviousHash string    `json:"previous_hash"` // Hash of the previous block, "0" for genesis.
	Transactions []Tx      `json:"transactions"`  // Snapshot of the pool when the block was created.
}

// Genesis constructs the block that anchors every chain.
func Genesis(now time.Time) Block {
	return Block{
		Index:        1,
		Timestamp:    now.UTC(),
		Proof:        GenesisProof,
		PreviousHash: GenesisPreviousHash,
		Transactions: []Tx{},
	}
}

// NewBlock constructs the block that follows the previous block. The
// transactions are copied so the caller can't mutate the block afterwards.
func NewBlock(prevBlock Block, proof int64, trans []Tx, now time.Time) Block {
	return Block{
		Index:        prevBlock.Index + 1,
		Timestamp:    now.UTC(),
		Proof:        proof,
		PreviousHash: prevBlock.Hash(),
		Transactions: copyTrans(trans),
	}
}

// Hash returns the canonical hash for the block. The block is serialized
// with its fields sorted by name so only field values matter. It must only
// be called on blocks built locally or accepted by ValidateChain.
func (b Block) Hash() string {
	hash, err := Hash(b)
	if err != nil {
		panic(fmt.Sprintf("hashing block %d: %s", b.Index, err))
	}
	return hash
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	b.Transactions = copyTrans(b.Transactions)
	return b
}

// Hash returns the canonical hash for the specified block. Blocks decoded
// from a peer can hold values that don't marshal back, such as a timestamp
// with an out of range zone offset, so an error is returned.
func Hash(b Block) (string, error) {
	if b.Transactions == nil {
		b.Transactions = []Tx{}
	}

	return digest.Canonical(b)
}

// =============================================================================

// ChainData represents a full snapshot of a chain as it is exchanged
// between nodes.
type ChainData struct {
	Chain  []Block `json:"chain"`
	Length int     `json:"length"`
}

// NewChainData constructs the snapshot for the specified blocks.
func NewChainData(blocks []Block) ChainData {
	return ChainData{
		Chain:  blocks,
		Length: len(blocks),
	}
}

// =============================================================================

func copyTrans(trans []Tx) []Tx {
	cpy := make([]Tx, len(trans))
	copy(cpy, trans)
	return cpy
}
