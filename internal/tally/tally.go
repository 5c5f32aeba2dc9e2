// Package tally implements trustee key ceremony sealing and the final
// decryption pass over a closed ballot box: reconstruct the Paillier
// private key from a threshold of trustee shares, homomorphically sum
// every admitted ballot's ciphertext, decrypt the sum, and zeroize the
// reconstructed key before returning.
package tally

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/opencore/govote/internal/ledger"
	"github.com/opencore/govote/internal/paillier"
	"github.com/opencore/govote/internal/sealedkey"
	"github.com/opencore/govote/internal/sss"
)

var (
	// ErrInsufficientShares is returned when fewer than the threshold
	// number of valid trustee shares are supplied.
	ErrInsufficientShares = errors.New("tally: insufficient trustee shares to reconstruct private key")
	// ErrSealedKeyTampered is returned when the sealed private key blob
	// fails AEAD authentication.
	ErrSealedKeyTampered = errors.New("tally: sealed private key failed authentication")
	// ErrCorruptTally is returned when decryption of the homomorphic sum
	// fails or yields a result outside the possible vote range.
	ErrCorruptTally = errors.New("tally: decrypted result is not a valid vote count")
)

// Result is the outcome of a completed tally.
type Result struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Total int `json:"total"`
}

// privateKeyBlob is the JSON form of a Paillier private key, sealed at
// rest under a Shamir-split symmetric key.
type privateKeyBlob struct {
	P *big.Int `json:"p"`
	Q *big.Int `json:"q"`
}

// SealPrivateKey serializes sk and seals it per the hybrid scheme in
// internal/sealedkey, returning the sealed blob and the n Shamir shares of
// the key that sealed it. Call this once, at the end of the key ceremony,
// then zeroize sk and distribute the shares to the n trustees.
func SealPrivateKey(sk *paillier.PrivateKey, threshold, n int) (*sealedkey.Sealed, []sss.Share, error) {
	blob, err := json.Marshal(privateKeyBlob{P: sk.P, Q: sk.Q})
	if err != nil {
		return nil, nil, err
	}
	defer zeroBytes(blob)
	return sealedkey.Seal(blob, threshold, n)
}

// Run reconstructs the Paillier private key from at least threshold
// trustee shares, sums the ciphertexts of every entry, decrypts the sum,
// and reports the result. The reconstructed private key is zeroized
// before Run returns, regardless of outcome.
func Run(pk *paillier.PublicKey, sealed *sealedkey.Sealed, shares []sss.Share, threshold int, entries []ledger.Entry) (*Result, error) {
	blob, err := sealedkey.Reconstruct(sealed, shares, threshold)
	if err != nil {
		if errors.Is(err, sss.ErrNotEnoughShares) {
			return nil, ErrInsufficientShares
		}
		if errors.Is(err, sealedkey.ErrTampered) {
			return nil, ErrSealedKeyTampered
		}
		return nil, err
	}
	defer zeroBytes(blob)

	var pkb privateKeyBlob
	if err := json.Unmarshal(blob, &pkb); err != nil {
		return nil, ErrSealedKeyTampered
	}
	sk := &paillier.PrivateKey{P: pkb.P, Q: pkb.Q}
	defer sk.Zeroize()

	cts := make([]*paillier.Ciphertext, len(entries))
	for i, e := range entries {
		cts[i] = e.Ballot.Ciphertext
	}
	sum := paillier.Sum(pk, cts...)

	total, err := paillier.Decrypt(pk, sk, sum)
	if err != nil {
		return nil, ErrCorruptTally
	}
	if !total.IsInt64() {
		return nil, ErrCorruptTally
	}
	yes := int(total.Int64())
	if yes < 0 || yes > len(entries) {
		return nil, ErrCorruptTally
	}

	return &Result{Yes: yes, No: len(entries) - yes, Total: len(entries)}, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
