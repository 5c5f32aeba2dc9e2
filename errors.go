package govote

import "errors"

// Sentinel errors surfaced by the Core API, named after the failure modes
// in the external-interfaces contract rather than the internal package
// that detects them.
var (
	// ErrInvalidProof is returned by Publish when a ballot's zero-knowledge
	// proof does not verify against the election public key.
	ErrInvalidProof = errors.New("govote: invalid proof")
	// ErrInvalidCiphertext is returned by Publish when a ballot's
	// ciphertext falls outside the valid group for the election modulus.
	ErrInvalidCiphertext = errors.New("govote: invalid ciphertext")
	// ErrInvalidVote is returned by CreateBallot for any vote other than
	// 0 or 1.
	ErrInvalidVote = errors.New("govote: vote must be 0 or 1")
	// ErrDuplicateBallot is returned by Publish when a ballot with the
	// same ID has already been admitted to the bulletin board.
	ErrDuplicateBallot = errors.New("govote: duplicate ballot")
	// ErrInsufficientShares is returned by Tally when fewer than the
	// threshold number of trustee shares are supplied.
	ErrInsufficientShares = errors.New("govote: insufficient trustee shares")
	// ErrSealedKeyTampered is returned by Tally when the sealed private
	// key blob fails AEAD authentication.
	ErrSealedKeyTampered = errors.New("govote: sealed private key tampered")
	// ErrCorruptTally is returned by Tally when the decrypted sum falls
	// outside the possible vote range, signaling an invalid ballot slipped
	// past admission-time verification.
	ErrCorruptTally = errors.New("govote: corrupt tally result")
	// ErrClosed is returned by Publish when the caller passes a Closed
	// poll state. The core does not own this flag; it only refuses to
	// admit ballots once the caller reports the poll closed.
	ErrClosed = errors.New("govote: poll is closed")
)
