// Package ballot defines the encrypted ballot format and the factory that
// produces one: encrypt the voter's choice under the election public key,
// prove it encrypts 0 or 1 without revealing which, and discard the
// randomness used.
package ballot

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/opencore/govote/internal/paillier"
	"github.com/opencore/govote/internal/zkp"
)

// ErrInvalidVote is returned when CreateBallot is asked to encrypt
// anything other than 0 or 1.
var ErrInvalidVote = errors.New("ballot: vote must be 0 or 1")

// Ballot is a single cast vote: a Paillier ciphertext of 0 or 1, bound to a
// kiosk and a timestamp, accompanied by a proof that the ciphertext is
// well-formed. Timestamp is seconds since the epoch.
type Ballot struct {
	BallotID   string
	KioskID    string
	Timestamp  float64
	Ciphertext *paillier.Ciphertext
	Proof      *zkp.Proof
}

// ballotWire is the serialized form, with keys in sorted order so a plain
// json.Marshal of it is the canonical encoding every hash downstream is
// computed over. The ciphertext is a decimal string and its exponent is
// lifted to a sibling field.
type ballotWire struct {
	BallotID   string     `json:"ballot_id"`
	Ciphertext string     `json:"ciphertext"`
	Exponent   int        `json:"exponent"`
	KioskID    string     `json:"kiosk_id"`
	Proof      *zkp.Proof `json:"proof"`
	Timestamp  float64    `json:"timestamp"`
}

func (b *Ballot) MarshalJSON() ([]byte, error) {
	if b.Ciphertext == nil || b.Ciphertext.C == nil {
		return nil, errors.New("ballot: missing ciphertext")
	}
	return json.Marshal(ballotWire{
		BallotID:   b.BallotID,
		Ciphertext: b.Ciphertext.C.String(),
		Exponent:   b.Ciphertext.Exponent,
		KioskID:    b.KioskID,
		Proof:      b.Proof,
		Timestamp:  b.Timestamp,
	})
}

func (b *Ballot) UnmarshalJSON(data []byte) error {
	var w ballotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c, ok := new(big.Int).SetString(w.Ciphertext, 10)
	if !ok {
		return fmt.Errorf("ballot: malformed ciphertext %q", w.Ciphertext)
	}
	b.BallotID = w.BallotID
	b.KioskID = w.KioskID
	b.Timestamp = w.Timestamp
	b.Ciphertext = &paillier.Ciphertext{C: c, Exponent: w.Exponent}
	b.Proof = w.Proof
	return nil
}

// CanonicalBytes returns the canonical serialization of the ballot, the
// form both the Merkle leaves and the hash chain are computed over.
func (b *Ballot) CanonicalBytes() ([]byte, error) {
	return json.Marshal(b)
}

// LeafHash returns the SHA-256 of the ballot's canonical serialization,
// the value the bulletin board indexes into its Merkle tree.
func (b *Ballot) LeafHash() ([32]byte, error) {
	buf, err := b.CanonicalBytes()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(buf), nil
}

// CreateBallot encrypts vote (0 or 1) under pk, attaches a UUID v4 ballot
// ID and the current time, and produces the accompanying OR-proof. The
// encryption randomness is held only long enough to build the proof and is
// not retained on the returned Ballot.
func CreateBallot(pk *paillier.PublicKey, kioskID string, vote int) (*Ballot, error) {
	if vote != 0 && vote != 1 {
		return nil, ErrInvalidVote
	}

	ct, r, err := pk.Encrypt(vote)
	if err != nil {
		return nil, err
	}
	defer zeroBigInt(r)

	proof, err := zkp.Prove(pk, vote, r, ct)
	if err != nil {
		return nil, err
	}

	return &Ballot{
		BallotID:   uuid.NewString(),
		KioskID:    kioskID,
		Timestamp:  float64(time.Now().UnixNano()) / 1e9,
		Ciphertext: ct,
		Proof:      proof,
	}, nil
}

// Verify checks that a ballot's proof is consistent with its ciphertext
// under the given public key, without learning the vote.
func (b *Ballot) Verify(pk *paillier.PublicKey) error {
	return zkp.Verify(pk, b.Ciphertext, b.Proof)
}

func zeroBigInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
}
