package govote

import (
	"errors"

	"github.com/opencore/govote/internal/ballot"
	"github.com/opencore/govote/internal/ledger"
	"github.com/opencore/govote/internal/merkle"
	"github.com/opencore/govote/internal/paillier"
	"github.com/opencore/govote/internal/tally"
)

// Election is the cryptographic core for one referendum: an election
// public key plus the bulletin board that accumulates ballots cast
// against it. It is the sole surface collaborators call through, per the
// out-of-scope boundary (voter auth, HTTP delivery, transport security all
// live outside this package).
type Election struct {
	pk    *PublicKey
	board *ledger.Ledger
}

// Keygen generates a fresh Paillier keypair of the given bit length,
// immediately seals the private key under a Shamir-split symmetric key
// (threshold-of-n), and zeroizes the plaintext private key before
// returning. Only the public key, the sealed blob, and the n shares leave
// this call.
func Keygen(bits, threshold, n int) (*PublicKey, *SealedPrivateKey, []Share, error) {
	pk, sk, err := paillier.Generate(bits)
	if err != nil {
		return nil, nil, nil, err
	}
	defer sk.Zeroize()

	sealed, shares, err := tally.SealPrivateKey(sk, threshold, n)
	if err != nil {
		return nil, nil, nil, err
	}
	return pk, sealed, shares, nil
}

// NewElection opens a bulletin board for ballots cast under pk. Use this
// after Keygen, or after loading a public key previously revealed by
// RevealPublicKey.
func NewElection(pk *PublicKey) *Election {
	return &Election{pk: pk, board: ledger.New(pk)}
}

// LoadElection rebuilds an Election by replaying a previously persisted
// ledger file, re-verifying every ballot's proof and the full hash chain.
func LoadElection(path string) (*Election, error) {
	board, err := ledger.LoadAndReplay(path)
	if err != nil {
		return nil, err
	}
	return &Election{pk: board.PublicKey(), board: board}, nil
}

// RevealPublicKey returns the election's public key.
func (e *Election) RevealPublicKey() *PublicKey {
	return e.pk
}

// CreateBallot encrypts vote (0 or 1) under the election public key,
// attaches a kiosk ID and a zero-knowledge proof that the ciphertext
// encrypts 0 or 1, and returns the assembled ballot. The randomness used
// to encrypt is zeroized before this call returns.
func (e *Election) CreateBallot(vote int, kioskID string) (*Ballot, error) {
	b, err := ballot.CreateBallot(e.pk, kioskID, vote)
	if errors.Is(err, ballot.ErrInvalidVote) {
		return nil, ErrInvalidVote
	}
	return b, err
}

// Publish verifies b's proof and, if it holds, b has not been seen before,
// and state is Open, admits it to the bulletin board. It returns the index
// b was admitted at. The core never reads process-global state to decide
// this; state is threaded through explicitly by the caller on every call.
func (e *Election) Publish(b *Ballot, state PollState) (int, error) {
	if state == Closed {
		return 0, ErrClosed
	}
	entry, err := e.board.Publish(b)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidProof):
			return 0, ErrInvalidProof
		case errors.Is(err, ledger.ErrInvalidCiphertext):
			return 0, ErrInvalidCiphertext
		case errors.Is(err, ledger.ErrDuplicateBallotID):
			return 0, ErrDuplicateBallot
		default:
			return 0, err
		}
	}
	return entry.Index, nil
}

// GetAllEntries returns every admitted ledger entry, in admission order.
func (e *Election) GetAllEntries() []LedgerEntry {
	return e.board.Entries()
}

// GetMerkleProof builds an inclusion proof for the entry at index against
// the bulletin board's current Merkle root.
func (e *Election) GetMerkleProof(index int) (*Proof, error) {
	return e.board.MerkleProof(index)
}

// VerifyMerkleProof checks that leafHash is included under root, given an
// inclusion proof path. It does not require an open Election or any
// network access: it is a pure function over the proof's contents.
func VerifyMerkleProof(leafHash [32]byte, proof *Proof, root [32]byte) bool {
	return merkle.VerifyProof(leafHash, proof, root)
}

// MerkleRoot returns the bulletin board's current Merkle root.
func (e *Election) MerkleRoot() ([32]byte, bool) {
	return e.board.MerkleRoot()
}

// SaveLedger persists the bulletin board to path, for later reloading via
// LoadElection.
func (e *Election) SaveLedger(path string) error {
	return e.board.SaveToFile(path)
}

// Tally reconstructs the private key from the given trustee shares,
// homomorphically sums every admitted ballot's ciphertext, decrypts the
// sum, and reports the result. The reconstructed private key is zeroized
// before Tally returns.
func (e *Election) Tally(sealed *SealedPrivateKey, shares []Share, threshold int) (*TallyResult, error) {
	entries := e.board.Entries()
	result, err := tally.Run(e.pk, sealed, shares, threshold, entries)
	if err != nil {
		switch {
		case errors.Is(err, tally.ErrInsufficientShares):
			return nil, ErrInsufficientShares
		case errors.Is(err, tally.ErrSealedKeyTampered):
			return nil, ErrSealedKeyTampered
		case errors.Is(err, tally.ErrCorruptTally):
			return nil, ErrCorruptTally
		default:
			return nil, err
		}
	}
	return &TallyResult{Yes: result.Yes, No: result.No, Total: result.Total}, nil
}
