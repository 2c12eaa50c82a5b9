package ledgergrp

import (
	"time"

	"github.com/jazcoin/node/business/sys/validate"
	"github.com/jazcoin/node/foundation/blockchain/database"
)

type newTx struct {
	Sender   string   `json:"sender" validate:"required"`
	Receiver string   `json:"receiver" validate:"required"`
	Amount   *float64 `json:"amount" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (tx newTx) Validate() error {
	return validate.Check(tx)
}

type txAdded struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

type connectNodes struct {
	Nodes []string `json:"nodes" validate:"required,min=1,dive,required"`
}

// Validate checks the data in the model is considered clean.
func (cn connectNodes) Validate() error {
	return validate.Check(cn)
}

type nodesConnected struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

type minedBlock struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Timestamp    time.Time     `json:"timestamp"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []database.Tx `json:"transactions"`
}

func toMinedBlock(block database.Block) minedBlock {
	return minedBlock{
		Message:      "Congratulations, you just mined a block",
		Index:        block.Index,
		Timestamp:    block.Timestamp,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
		Transactions: block.Transactions,
	}
}

type chainValid struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type consensus struct {
	Replaced bool             `json:"replaced"`
	Message  string           `json:"message"`
	Chain    []database.Block `json:"chain"`
}
