// Package bigmath collects the multi-precision integer helpers shared by the
// Paillier and zero-knowledge-proof layers: modular exponentiation, modular
// inverse, and secure random sampling in a bounded range. It wraps math/big,
// since this protocol's modulus n is generated fresh per election and has no
// fixed elliptic-curve field representation the way a SNARK circuit's
// constants would.
package bigmath

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var (
	// ErrNoRandomSource is returned when the CSPRNG fails to produce bytes.
	ErrNoRandomSource = errors.New("bigmath: random source unavailable")
	one               = big.NewInt(1)
)

// RandomInRange returns a uniform random integer in [lo, hi).
func RandomInRange(lo, hi *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() <= 0 {
		return nil, errors.New("bigmath: empty range")
	}
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, ErrNoRandomSource
	}
	return n.Add(n, lo), nil
}

// RandomCoprime samples a uniform random integer r in [1, n) with
// gcd(r, n) = 1. Since n is the product of two large primes, a uniform
// sample is coprime to n with overwhelming probability, so the rejection
// loop is expected to run once.
func RandomCoprime(n *big.Int) (*big.Int, error) {
	for {
		r, err := RandomInRange(one, n)
		if err != nil {
			return nil, err
		}
		if new(big.Int).GCD(nil, nil, r, n).Cmp(one) == 0 {
			return r, nil
		}
	}
}

// ModExp returns base^exp mod m. A thin, documented wrapper kept so call
// sites read as domain operations rather than raw math/big calls.
func ModExp(base, exp, m *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, m)
}

// ModInverse returns the modular inverse of a mod m via the extended
// Euclidean algorithm, or nil if a has no inverse (gcd(a, m) != 1).
func ModInverse(a, m *big.Int) *big.Int {
	return new(big.Int).ModInverse(a, m)
}

// IsCoprime reports whether gcd(a, n) == 1.
func IsCoprime(a, n *big.Int) bool {
	return new(big.Int).GCD(nil, nil, a, n).Cmp(one) == 0
}

// RandomPrime returns a random prime with the given bit length, using
// crypto/rand as its entropy source.
func RandomPrime(bits int) (*big.Int, error) {
	p, err := rand.Prime(rand.Reader, bits)
	if err != nil {
		return nil, ErrNoRandomSource
	}
	return p, nil
}
