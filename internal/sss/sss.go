// Package sss implements Shamir Secret Sharing over the fixed prime field
// GF(P), P = 2^2203 - 1 (a Mersenne prime), used to split the symmetric key
// that seals the Paillier private key among the trustees. It is a plain
// math/big construction: the modulus is a fixed, non-curve prime with no
// elliptic-curve field type able to represent it.
//
// Coefficients are sampled by rejection, not by reducing a fixed-width
// random value mod P, because P is not a power of two: floor(2^b / P) is
// not exactly 1 for any byte-aligned b, so "random bytes mod P" is
// measurably biased toward the low end of the field, so this package samples
// within the field's own bit length instead and rejects out-of-range draws.
package sss

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// P is the field modulus, the Mersenne prime 2^2203 - 1.
var P = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 2203)
	p.Sub(p, big.NewInt(1))
	return p
}()

var (
	// ErrThreshold is returned when threshold or share count is out of range.
	ErrThreshold = errors.New("sss: threshold must be >= 1 and <= shares")
	// ErrSecretTooLarge is returned when the secret does not fit in GF(P).
	ErrSecretTooLarge = errors.New("sss: secret out of range for field")
	// ErrDuplicateX is returned when Recover is given two shares with the
	// same x coordinate.
	ErrDuplicateX = errors.New("sss: duplicate share index")
	// ErrNotEnoughShares is returned when Recover is given fewer shares
	// than the polynomial degree requires to disambiguate.
	ErrNotEnoughShares = errors.New("sss: not enough shares to interpolate")

	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// Share is one point (x, y) on the sharing polynomial, y = f(x) mod P.
type Share struct {
	X int      `json:"x"`
	Y *big.Int `json:"y"`
}

// randomFieldElement samples a uniform element of [0, P) by rejection
// sampling over P's bit length, avoiding the modulo bias of "random bytes
// mod P".
func randomFieldElement() (*big.Int, error) {
	bitLen := P.BitLen()
	byteLen := (bitLen + 7) / 8
	buf := make([]byte, byteLen)
	for {
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		// Clear any high bits beyond P's own bit length so the rejection
		// loop converges quickly instead of almost always failing.
		excess := byteLen*8 - bitLen
		if excess > 0 {
			buf[0] &= 0xff >> uint(excess)
		}
		candidate := new(big.Int).SetBytes(buf)
		if candidate.Cmp(P) < 0 {
			return candidate, nil
		}
	}
}

// Split divides secret into n shares such that any t of them reconstruct
// it via Lagrange interpolation, and fewer than t reveal nothing.
func Split(secret *big.Int, threshold, n int) ([]Share, error) {
	if threshold < 1 || n < threshold {
		return nil, ErrThreshold
	}
	if secret.Sign() < 0 || secret.Cmp(P) >= 0 {
		return nil, ErrSecretTooLarge
	}

	// coeffs[0] = secret; coeffs[1..threshold-1] are random, defining a
	// degree (threshold-1) polynomial f with f(0) = secret.
	coeffs := make([]*big.Int, threshold)
	coeffs[0] = new(big.Int).Set(secret)
	for i := 1; i < threshold; i++ {
		c, err := randomFieldElement()
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}

	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		x := i + 1 // x=0 is reserved for the secret itself
		y := evalPoly(coeffs, x)
		shares[i] = Share{X: x, Y: y}
	}
	return shares, nil
}

// evalPoly evaluates the polynomial with the given coefficients (lowest
// degree first) at x, mod P, via Horner's method.
func evalPoly(coeffs []*big.Int, x int) *big.Int {
	bx := big.NewInt(int64(x))
	acc := new(big.Int).Set(coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc.Mul(acc, bx)
		acc.Mod(acc, P)
		acc.Add(acc, coeffs[i])
		acc.Mod(acc, P)
	}
	return acc
}

// Recover reconstructs the secret from at least threshold shares via
// Lagrange interpolation at x = 0. Any subset of size >= threshold yields
// the same result; only the first threshold shares are used and the rest
// are ignored. A repeated x among those first threshold shares is rejected
// with ErrDuplicateX.
func Recover(shares []Share, threshold int) (*big.Int, error) {
	if len(shares) < threshold {
		return nil, ErrNotEnoughShares
	}
	seen := make(map[int]bool, threshold)
	used := make([]Share, 0, threshold)
	for _, s := range shares {
		if seen[s.X] {
			return nil, ErrDuplicateX
		}
		seen[s.X] = true
		used = append(used, s)
		if len(used) == threshold {
			break
		}
	}
	if len(used) < threshold {
		return nil, ErrNotEnoughShares
	}

	secret := big.NewInt(0)
	for i, si := range used {
		xi := big.NewInt(int64(si.X))
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j, sj := range used {
			if i == j {
				continue
			}
			xj := big.NewInt(int64(sj.X))
			// term contributes (0 - xj) / (xi - xj)
			num.Mul(num, new(big.Int).Neg(xj))
			num.Mod(num, P)
			diff := new(big.Int).Sub(xi, xj)
			diff.Mod(diff, P)
			den.Mul(den, diff)
			den.Mod(den, P)
		}
		denInv := new(big.Int).ModInverse(den, P)
		if denInv == nil {
			return nil, errors.New("sss: duplicate or invalid share index encountered during interpolation")
		}
		lagrange := new(big.Int).Mul(num, denInv)
		lagrange.Mod(lagrange, P)

		term := new(big.Int).Mul(si.Y, lagrange)
		term.Mod(term, P)
		secret.Add(secret, term)
		secret.Mod(secret, P)
	}
	return secret, nil
}
