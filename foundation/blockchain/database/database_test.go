package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jazcoin/node/foundation/blockchain/database"
	"github.com/jazcoin/node/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// mineChain appends the specified number of mined blocks to the database.
func mineChain(t *testing.T, db *database.Database, blocks int) {
	t.Helper()

	for i := 0; i < blocks; i++ {
		prev := db.LatestBlock()

		proof, err := pow.Solve(context.Background(), prev.Proof, 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to solve the puzzle: %v", failed, err)
		}

		trans := []database.Tx{database.NewTx("node", "payee", 1)}
		if err := db.Append(database.NewBlock(prev, proof, trans, time.Now())); err != nil {
			t.Fatalf("\t%s\tShould be able to append block %d: %v", failed, prev.Index+1, err)
		}
	}
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a ledger from genesis.")
	{
		db := database.New(nil)

		if db.Length() != 1 {
			t.Fatalf("\t%s\tShould have a single block, got %d.", failed, db.Length())
		}
		t.Logf("\t%s\tShould have a single block.", success)

		genesis := db.LatestBlock()
		if genesis.Index != 1 || genesis.Proof != 1 || genesis.PreviousHash != "0" || len(genesis.Transactions) != 0 {
			t.Fatalf("\t%s\tShould have the genesis values: %+v", failed, genesis)
		}
		t.Logf("\t%s\tShould have the genesis values.", success)

		if !database.IsValid(db.Copy()) {
			t.Fatalf("\t%s\tShould have a valid genesis only chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid genesis only chain.", success)
	}
}

func Test_Append(t *testing.T) {
	t.Log("Given the need to append blocks to the ledger.")
	{
		db := database.New(nil)
		mineChain(t, db, 2)

		chain := db.Copy()
		if len(chain) != 3 {
			t.Fatalf("\t%s\tShould have three blocks, got %d.", failed, len(chain))
		}
		t.Logf("\t%s\tShould have three blocks.", success)

		for i := 1; i < len(chain); i++ {
			if chain[i].Index != uint64(i+1) {
				t.Fatalf("\t%s\tShould have index %d, got %d.", failed, i+1, chain[i].Index)
			}
			if chain[i].PreviousHash != chain[i-1].Hash() {
				t.Fatalf("\t%s\tShould link block %d to its predecessor.", failed, chain[i].Index)
			}
		}
		t.Logf("\t%s\tShould link every block to its predecessor.", success)

		if !database.IsValid(chain) {
			t.Fatalf("\t%s\tShould have a valid mined chain: %v", failed, database.ValidateChain(chain))
		}
		t.Logf("\t%s\tShould have a valid mined chain.", success)

		stale := database.NewBlock(chain[0], 1, nil, time.Now())
		if err := db.Append(stale); !errors.Is(err, database.ErrChainMismatch) {
			t.Fatalf("\t%s\tShould reject a block that doesn't extend the tip: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block that doesn't extend the tip.", success)

		chain[1].Transactions[0].Amount = 1000
		if db.Copy()[1].Transactions[0].Amount != 1 {
			t.Fatalf("\t%s\tShould not let a copy alias the stored blocks.", failed)
		}
		t.Logf("\t%s\tShould not let a copy alias the stored blocks.", success)
	}
}

func Test_Tamper(t *testing.T) {
	type table struct {
		name   string
		mutate func(chain []database.Block)
	}

	tt := []table{
		{name: "amount", mutate: func(chain []database.Block) { chain[1].Transactions[0].Amount = 99 }},
		{name: "receiver", mutate: func(chain []database.Block) { chain[2].Transactions[0].Receiver = "thief" }},
		{name: "proof", mutate: func(chain []database.Block) { chain[1].Proof++ }},
		{name: "tip-proof", mutate: func(chain []database.Block) { chain[3].Proof = chain[3].Proof + 1 }},
		{name: "index-gap", mutate: func(chain []database.Block) { chain[3].Index = 9 }},
		{name: "genesis-hash", mutate: func(chain []database.Block) { chain[0].PreviousHash = "1" }},
		{name: "genesis-zone", mutate: func(chain []database.Block) { chain[0].Timestamp = chain[0].Timestamp.In(time.FixedZone("", 24*60*60)) }},
		{name: "tip-zone", mutate: func(chain []database.Block) { chain[3].Timestamp = chain[3].Timestamp.In(time.FixedZone("", 24*60*60)) }},
	}

	db := database.New(nil)
	mineChain(t, db, 3)

	t.Log("Given the need to detect a tampered chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				chain := db.Copy()
				tst.mutate(chain)

				if database.IsValid(chain) {
					t.Fatalf("\t%s\tTest %d:\tShould detect the tampered %s.", failed, testID, tst.name)
				}
				t.Logf("\t%s\tTest %d:\tShould detect the tampered %s: %v", success, testID, tst.name, database.ValidateChain(chain))

				if !database.IsValid(db.Copy()) {
					t.Fatalf("\t%s\tTest %d:\tShould leave the stored chain valid.", failed, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Replace(t *testing.T) {
	t.Log("Given the need to replace the ledger wholesale.")
	{
		db := database.New(nil)

		other := database.New(nil)
		mineChain(t, other, 2)

		if err := db.Replace(other.Copy()); err != nil {
			t.Fatalf("\t%s\tShould be able to replace the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to replace the chain.", success)

		if db.Length() != 3 || db.LatestBlock().Hash() != other.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould hold the replacement chain.", failed)
		}
		t.Logf("\t%s\tShould hold the replacement chain.", success)

		if err := db.Replace(nil); err == nil {
			t.Fatalf("\t%s\tShould reject an empty replacement.", failed)
		}
		t.Logf("\t%s\tShould reject an empty replacement.", success)
	}
}

func Test_HashCanonical(t *testing.T) {
	t.Log("Given the need to hash blocks by value only.")
	{
		now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

		var b1 database.Block
		b1.Transactions = []database.Tx{{Amount: 5, Receiver: "B", Sender: "A"}}
		b1.PreviousHash = "abc"
		b1.Proof = 533
		b1.Timestamp = now
		b1.Index = 2

		b2 := database.Block{
			Index:        2,
			Timestamp:    now,
			Proof:        533,
			PreviousHash: "abc",
			Transactions: []database.Tx{database.NewTx("A", "B", 5)},
		}

		if b1.Hash() != b2.Hash() {
			t.Fatalf("\t%s\tShould get the same hash regardless of construction order.", failed)
		}
		t.Logf("\t%s\tShould get the same hash regardless of construction order.", success)

		if len(b1.Hash()) != 64 {
			t.Fatalf("\t%s\tShould get a 64 character hex digest, got %q.", failed, b1.Hash())
		}
		t.Logf("\t%s\tShould get a 64 character hex digest.", success)

		data, err := json.Marshal(b1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the block: %v", failed, err)
		}

		var decoded database.Block
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the block: %v", failed, err)
		}

		if decoded.Hash() != b1.Hash() {
			t.Fatalf("\t%s\tShould keep the same hash after crossing the wire.", failed)
		}
		t.Logf("\t%s\tShould keep the same hash after crossing the wire.", success)

		b2.Transactions[0].Amount = 6
		if b1.Hash() == b2.Hash() {
			t.Fatalf("\t%s\tShould get a different hash when a value changes.", failed)
		}
		t.Logf("\t%s\tShould get a different hash when a value changes.", success)
	}
}
