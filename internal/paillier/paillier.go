// Package paillier implements the additively-homomorphic cryptosystem used
// to encrypt a single ballot bit. The construction follows the simplified
// g = n+1 variant: E(m, r) = (1 + m*n) * r^n mod n^2. Keys follow a
// generate, use, zeroize lifecycle: once a private key's last use is done,
// its primes are overwritten in place rather than left for the garbage
// collector to reclaim on its own schedule.
package paillier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/opencore/govote/internal/bigmath"
)

var (
	// ErrOverflow signals a plaintext sum that would exceed the modulus.
	ErrOverflow = errors.New("paillier: plaintext sum overflows modulus")
	// ErrInvalidCiphertext signals a ciphertext outside Z*_{n^2}.
	ErrInvalidCiphertext = errors.New("paillier: ciphertext outside valid range")

	one = big.NewInt(1)
)

// PublicKey is the Paillier public modulus. g is always n+1 and is not
// stored; it is derived on demand by G().
type PublicKey struct {
	N *big.Int
}

// publicKeyWire carries n as a decimal string so the published key file is
// readable by JSON parsers without arbitrary-precision number support.
type publicKeyWire struct {
	N string `json:"n"`
}

func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	if pk.N == nil {
		return nil, errors.New("paillier: public key has no modulus")
	}
	return json.Marshal(publicKeyWire{N: pk.N.String()})
}

func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var w publicKeyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(w.N, 10)
	if !ok || n.Sign() <= 0 {
		return fmt.Errorf("paillier: malformed modulus %q", w.N)
	}
	pk.N = n
	return nil
}

// G returns the fixed generator n+1.
func (pk *PublicKey) G() *big.Int {
	return new(big.Int).Add(pk.N, one)
}

// NSquare returns n^2, used throughout as the ciphertext group modulus.
func (pk *PublicKey) NSquare() *big.Int {
	return new(big.Int).Mul(pk.N, pk.N)
}

// PrivateKey holds the two prime factors of n. It exists only transiently,
// during keygen and during tally reconstruction; callers must call Zeroize
// once they are done with it.
type PrivateKey struct {
	P, Q *big.Int
}

// Zeroize overwrites the prime factors in place. Call this as soon as the
// private key is no longer needed; math/big ints are not guaranteed to be
// unreachable otherwise.
func (sk *PrivateKey) Zeroize() {
	if sk == nil {
		return
	}
	zero(sk.P)
	zero(sk.Q)
}

func zero(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
}

// Ciphertext is an element of Z*_{n^2}. Exponent is reserved for a future
// fixed-point encoding and is always 0 in this protocol.
type Ciphertext struct {
	C        *big.Int
	Exponent int
}

// Generate produces a fresh Paillier keypair with an n of the given bit
// length (k). p and q are distinct random k/2-bit primes.
func Generate(bits int) (*PublicKey, *PrivateKey, error) {
	if bits < 8 || bits%2 != 0 {
		return nil, nil, fmt.Errorf("paillier: bit length must be even and >= 8, got %d", bits)
	}
	half := bits / 2
	for {
		p, err := bigmath.RandomPrime(half)
		if err != nil {
			return nil, nil, err
		}
		q, err := bigmath.RandomPrime(half)
		if err != nil {
			return nil, nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if n.BitLen() < bits-1 {
			continue
		}
		return &PublicKey{N: n}, &PrivateKey{P: p, Q: q}, nil
	}
}

// EncryptWithR encrypts m in {0,1} using the explicit randomness r, which
// the caller supplies and so can reuse when building the accompanying
// zero-knowledge proof.
//
// Precondition: m is 0 or 1; r is in [1, n) and coprime to n.
func (pk *PublicKey) EncryptWithR(m int, r *big.Int) (*Ciphertext, error) {
	if m != 0 && m != 1 {
		return nil, fmt.Errorf("paillier: plaintext %d out of {0,1}", m)
	}
	if r.Sign() <= 0 || r.Cmp(pk.N) >= 0 || !bigmath.IsCoprime(r, pk.N) {
		return nil, errors.New("paillier: randomness not coprime to n")
	}
	nSquare := pk.NSquare()
	// g^m = (1+n)^m = 1 + m*n mod n^2, the standard g=n+1 shortcut.
	gm := new(big.Int).Add(one, new(big.Int).Mul(big.NewInt(int64(m)), pk.N))
	gm.Mod(gm, nSquare)
	rn := bigmath.ModExp(r, pk.N, nSquare)
	c := new(big.Int).Mod(new(big.Int).Mul(gm, rn), nSquare)
	return &Ciphertext{C: c, Exponent: 0}, nil
}

// Encrypt samples a fresh random coprime r and encrypts m under it,
// returning both the ciphertext and the randomness used.
func (pk *PublicKey) Encrypt(m int) (*Ciphertext, *big.Int, error) {
	r, err := bigmath.RandomCoprime(pk.N)
	if err != nil {
		return nil, nil, err
	}
	ct, err := pk.EncryptWithR(m, r)
	if err != nil {
		return nil, nil, err
	}
	return ct, r, nil
}

// Decrypt recovers the plaintext m = L(c^lambda mod n^2) * mu mod n, using
// the standard Paillier decryption with lambda = (p-1)(q-1) (valid for the
// g = n+1 construction since mu = lambda^-1 mod n).
func Decrypt(pk *PublicKey, sk *PrivateKey, ct *Ciphertext) (*big.Int, error) {
	if ct.Exponent != 0 {
		return nil, errors.New("paillier: non-zero exponent not supported")
	}
	nSquare := pk.NSquare()
	if ct.C.Sign() <= 0 || ct.C.Cmp(nSquare) >= 0 || !bigmath.IsCoprime(ct.C, nSquare) {
		return nil, ErrInvalidCiphertext
	}
	pMinus1 := new(big.Int).Sub(sk.P, one)
	qMinus1 := new(big.Int).Sub(sk.Q, one)
	lambda := new(big.Int).Mul(pMinus1, qMinus1)

	u := bigmath.ModExp(ct.C, lambda, nSquare)
	l := lFunction(u, pk.N)

	mu := bigmath.ModInverse(lambda, pk.N)
	if mu == nil {
		return nil, errors.New("paillier: lambda not invertible mod n")
	}
	m := new(big.Int).Mod(new(big.Int).Mul(l, mu), pk.N)
	return m, nil
}

// lFunction computes L(x) = (x-1)/n, the Paillier L-function.
func lFunction(x, n *big.Int) *big.Int {
	num := new(big.Int).Sub(x, one)
	return num.Div(num, n)
}

// HomomorphicAdd returns the ciphertext encrypting the sum of the two
// ciphertexts' plaintexts: E(m1)*E(m2) mod n^2 decrypts to m1+m2 mod n.
func HomomorphicAdd(pk *PublicKey, a, b *Ciphertext) *Ciphertext {
	nSquare := pk.NSquare()
	c := new(big.Int).Mod(new(big.Int).Mul(a.C, b.C), nSquare)
	return &Ciphertext{C: c, Exponent: 0}
}

// Sum homomorphically adds an arbitrary number of ciphertexts, starting
// from the identity element 1.
func Sum(pk *PublicKey, cts ...*Ciphertext) *Ciphertext {
	acc := &Ciphertext{C: big.NewInt(1), Exponent: 0}
	for _, ct := range cts {
		acc = HomomorphicAdd(pk, acc, ct)
	}
	return acc
}
