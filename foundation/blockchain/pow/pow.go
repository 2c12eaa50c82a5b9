// Package pow implements the proof of work puzzle that rate limits block
// production on the ledger.
package pow

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/jazcoin/node/foundation/blockchain/digest"
)

// Difficulty is the number of leading hex zeros a solution digest must have.
const Difficulty = 4

// ErrNotFound is returned when a capped search runs out of trials.
var ErrNotFound = errors.New("proof of work not found")

// prefix is the required start of a solution digest.
var prefix = strings.Repeat("0", Difficulty)

// checkEvery is how many candidates are tried between context checks.
const checkEvery = 1 << 12

// =============================================================================

// Solve searches for the smallest proof, starting at 1, that solves the
// puzzle against the previous proof. The search is deterministic. When
// maxTrials is greater than zero the search gives up after that many
// candidates and returns ErrNotFound.
func Solve(ctx context.Context, previousProof int64, maxTrials uint64) (int64, error) {
	prevSquare := square(big.NewInt(previousProof))

	candidate := big.NewInt(1)
	one := big.NewInt(1)
	diff := new(big.Int)

	var trials uint64
	for {
		if trials%checkEvery == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}

		trials++

		diff.Mul(candidate, candidate)
		diff.Sub(diff, prevSquare)
		if solved(diff) {
			return candidate.Int64(), nil
		}

		if maxTrials > 0 && trials >= maxTrials {
			return 0, ErrNotFound
		}

		candidate.Add(candidate, one)
	}
}

// IsSolved reports whether the proof solves the puzzle for the previous
// proof. Arbitrary precision is used so proofs reported by peers can never
// overflow the squared difference.
func IsSolved(previousProof int64, proof int64) bool {
	diff := square(big.NewInt(proof))
	diff.Sub(diff, square(big.NewInt(previousProof)))

	return solved(diff)
}

// Digest returns the digest the puzzle is checked against. The difference
// keeps its sign, so a negative value is digested with its leading minus.
func Digest(previousProof int64, proof int64) string {
	diff := square(big.NewInt(proof))
	diff.Sub(diff, square(big.NewInt(previousProof)))

	return digest.String(diff.String())
}

// =============================================================================

func square(v *big.Int) *big.Int {
	return new(big.Int).Mul(v, v)
}

func solved(diff *big.Int) bool {
	return strings.HasPrefix(digest.String(diff.String()), prefix)
}
