package govote

import (
	"github.com/opencore/govote/internal/ballot"
	"github.com/opencore/govote/internal/ledger"
	"github.com/opencore/govote/internal/merkle"
	"github.com/opencore/govote/internal/paillier"
	"github.com/opencore/govote/internal/sealedkey"
	"github.com/opencore/govote/internal/sss"
)

// PublicKey is the election's Paillier public modulus.
type PublicKey = paillier.PublicKey

// SealedPrivateKey is the AEAD-sealed private key blob produced by keygen,
// opaque to every party that does not hold a reconstructing set of shares.
type SealedPrivateKey = sealedkey.Sealed

// Share is one trustee's Shamir share of the symmetric key that seals the
// private key.
type Share = sss.Share

// Ballot is a single cast vote: a ciphertext plus its admission proof.
type Ballot = ballot.Ballot

// LedgerEntry is one admitted, hash-chained position on the bulletin
// board.
type LedgerEntry = ledger.Entry

// Proof is a Merkle inclusion proof against the bulletin board's current
// root.
type Proof = merkle.InclusionProof

// PollState is the caller-owned logical state of the poll. The core never
// reads process-global state to decide this; the caller threads it through
// every Publish call instead.
type PollState int

const (
	// Open accepts new ballots.
	Open PollState = iota
	// Closed rejects every Publish call with ErrClosed, regardless of
	// proof validity.
	Closed
)

// TallyResult is the outcome of a completed tally.
type TallyResult struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Total int `json:"total"`
}
