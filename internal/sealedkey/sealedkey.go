// Package sealedkey implements the hybrid sealing scheme used to store the
// Paillier private key at rest: the key material is AEAD-encrypted under a
// fresh symmetric key, and that symmetric key is itself split into Shamir
// shares for the trustees so no single trustee (nor the ledger operator)
// can decrypt it alone.
package sealedkey

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/opencore/govote/internal/sss"
)

// ErrTampered is returned when the AEAD tag fails to verify, meaning the
// sealed blob or the reconstructed key does not match what was sealed.
var ErrTampered = errors.New("sealedkey: ciphertext failed authentication")

// Sealed is a symmetrically-encrypted payload plus the nonce used to
// produce it. The symmetric key itself is not stored here; it exists only
// as a set of Shamir shares handed out to the trustees.
type Sealed struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal encrypts plaintext under a freshly generated ChaCha20-Poly1305 key,
// splits that key into n Shamir shares (any threshold of which
// reconstruct it), zeroizes the key material, and returns the sealed blob
// alongside the shares.
func Seal(plaintext []byte, threshold, n int) (*Sealed, []sss.Share, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, err
	}
	defer zeroBytes(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	keyInt := new(big.Int).SetBytes(key)
	if keyInt.Cmp(sss.P) >= 0 {
		return nil, nil, errors.New("sealedkey: key integer exceeds field modulus")
	}
	shares, err := sss.Split(keyInt, threshold, n)
	if err != nil {
		return nil, nil, err
	}

	return &Sealed{Nonce: nonce, Ciphertext: ciphertext}, shares, nil
}

// Reconstruct recovers the symmetric key from at least threshold shares
// and opens the sealed blob. The recovered key integer is left-padded
// with zero bytes to chacha20poly1305.KeySize before use: Recover returns
// the key as an integer, whose minimal big-endian encoding is shorter than
// 32 bytes whenever the original key happened to start with a zero byte,
// and AEAD key material must be reconstructed to its exact declared width.
func Reconstruct(sealed *Sealed, shares []sss.Share, threshold int) ([]byte, error) {
	keyInt, err := sss.Recover(shares, threshold)
	if err != nil {
		return nil, err
	}
	key := make([]byte, chacha20poly1305.KeySize)
	keyInt.FillBytes(key)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(sealed.Nonce) != aead.NonceSize() {
		return nil, errors.New("sealedkey: unexpected nonce length")
	}
	plaintext, err := aead.Open(nil, sealed.Nonce, sealed.Ciphertext, nil)
	if err != nil {
		return nil, ErrTampered
	}
	return plaintext, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
