// Package zkp implements the non-interactive disjunctive Sigma-protocol
// (Fiat-Shamir OR-proof) that a Paillier ciphertext encrypts 0 or 1, without
// revealing which. It is a classical big.Int construction rather than an
// arithmetic circuit: gnark-style circuits are compiled against a single
// fixed elliptic-curve scalar field, and this protocol's modulus n is
// freshly generated per election with no relation to any curve order.
package zkp

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/opencore/govote/internal/bigmath"
	"github.com/opencore/govote/internal/paillier"
)

var (
	// ErrInvalidProof is returned by Verify when any equation in the proof
	// fails to hold. It never distinguishes which check failed.
	ErrInvalidProof = errors.New("zkp: proof does not verify")
	// ErrOutOfRange is returned when a proof component is outside its
	// declared range ([0, n) for z, [0, n^2) for a).
	ErrOutOfRange = errors.New("zkp: proof component out of range")

	one = big.NewInt(1)
)

// Proof is the OR-proof triple (a, e, z), each a pair indexed by branch
// (0 for "encrypts 0", 1 for "encrypts 1").
type Proof struct {
	A [2]*big.Int
	E [2]*big.Int
	Z [2]*big.Int
}

// proofWire is the serialized form: every component a decimal string, so
// the encoding survives JSON parsers that cannot hold arbitrary-precision
// numbers.
type proofWire struct {
	A [2]string `json:"a"`
	E [2]string `json:"e"`
	Z [2]string `json:"z"`
}

func (p *Proof) MarshalJSON() ([]byte, error) {
	var w proofWire
	for i := 0; i < 2; i++ {
		if p.A[i] == nil || p.E[i] == nil || p.Z[i] == nil {
			return nil, errors.New("zkp: incomplete proof")
		}
		w.A[i] = p.A[i].String()
		w.E[i] = p.E[i].String()
		w.Z[i] = p.Z[i].String()
	}
	return json.Marshal(w)
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var w proofWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parse := func(s string) (*big.Int, error) {
		x, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("zkp: malformed decimal integer %q", s)
		}
		return x, nil
	}
	for i := 0; i < 2; i++ {
		var err error
		if p.A[i], err = parse(w.A[i]); err != nil {
			return err
		}
		if p.E[i], err = parse(w.E[i]); err != nil {
			return err
		}
		if p.Z[i], err = parse(w.Z[i]); err != nil {
			return err
		}
	}
	return nil
}

// challenge computes the domain-separated Fiat-Shamir hash E = H(n, g, c,
// a0, a1), interpreted as a big integer with no modular reduction.
// Soundness depends on binding both branches' first messages and the public
// key's g, so every one of these five integers must enter the hash.
func challenge(n, g, c, a0, a1 *big.Int) *big.Int {
	h := sha256.New()
	h.Write([]byte("govote-zkp-or-v1|"))
	for _, x := range []*big.Int{n, g, c, a0, a1} {
		h.Write([]byte(x.String()))
		h.Write([]byte{'|'})
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Prove constructs a non-interactive OR-proof that ciphertext c = pk.EncryptWithR(vote, r)
// encrypts 0 or 1, without revealing which, via the Chaum-Pedersen-style
// disjunctive protocol: commit honestly on the true branch, simulate the
// other, and split the Fiat-Shamir challenge between them.
func Prove(pk *paillier.PublicKey, vote int, r *big.Int, ct *paillier.Ciphertext) (*Proof, error) {
	if vote != 0 && vote != 1 {
		return nil, errors.New("zkp: vote out of {0,1}")
	}
	n := pk.N
	g := pk.G()
	nSquare := pk.NSquare()
	c := ct.C

	fake := 1 - vote

	// Step 1-2: sample w for the true branch, and (e_fake, z_fake) for the
	// simulated branch, all uniformly in [1, n).
	w, err := bigmath.RandomInRange(one, n)
	if err != nil {
		return nil, err
	}
	eFake, err := bigmath.RandomInRange(one, n)
	if err != nil {
		return nil, err
	}
	zFake, err := bigmath.RandomInRange(one, n)
	if err != nil {
		return nil, err
	}

	var a [2]*big.Int
	a[vote] = bigmath.ModExp(w, n, nSquare)

	// Step 3: reconstruct a_fake backward so the fake branch's verification
	// equation holds for the chosen (e_fake, z_fake).
	switch fake {
	case 0:
		// a0 = z0^n * c^(-e0) mod n^2
		cInv := bigmath.ModInverse(c, nSquare)
		if cInv == nil {
			return nil, errors.New("zkp: ciphertext not invertible mod n^2")
		}
		zn := bigmath.ModExp(zFake, n, nSquare)
		cNegE := bigmath.ModExp(cInv, eFake, nSquare)
		a[0] = new(big.Int).Mod(new(big.Int).Mul(zn, cNegE), nSquare)
	case 1:
		// a1 = z1^n * (c * g^-1)^(-e1) mod n^2
		gInv := bigmath.ModInverse(g, nSquare)
		if gInv == nil {
			return nil, errors.New("zkp: g not invertible mod n^2")
		}
		cg := new(big.Int).Mod(new(big.Int).Mul(c, gInv), nSquare)
		cgInv := bigmath.ModInverse(cg, nSquare)
		if cgInv == nil {
			return nil, errors.New("zkp: c*g^-1 not invertible mod n^2")
		}
		zn := bigmath.ModExp(zFake, n, nSquare)
		cgNegE := bigmath.ModExp(cgInv, eFake, nSquare)
		a[1] = new(big.Int).Mod(new(big.Int).Mul(zn, cgNegE), nSquare)
	}

	// Step 4: total challenge, bound to both commitments and the public key.
	e := challenge(n, g, c, a[0], a[1])

	// Step 5: e_true = E - e_fake, integer subtraction (not modular). E is
	// a 256-bit digest while e_fake is uniform below n, so e_true is
	// usually negative; r^{e_true} below then takes the inverse path,
	// which is fine since r is coprime to n.
	eTrue := new(big.Int).Sub(e, eFake)

	// Step 6: z_true = w * r^{e_true} mod n.
	rExp := bigmath.ModExp(r, eTrue, n)
	zTrue := new(big.Int).Mod(new(big.Int).Mul(w, rExp), n)

	var eArr, zArr [2]*big.Int
	eArr[fake], zArr[fake] = eFake, zFake
	eArr[vote], zArr[vote] = eTrue, zTrue

	return &Proof{A: a, E: eArr, Z: zArr}, nil
}

// Verify checks an OR-proof against ciphertext c under public key pk:
// recompute the total challenge and require e0+e1 to match it as integers,
// then check both branch equations. It returns ErrInvalidProof on any
// equation mismatch and ErrOutOfRange if a component is outside its
// declared domain.
func Verify(pk *paillier.PublicKey, ct *paillier.Ciphertext, p *Proof) error {
	if ct == nil || ct.C == nil || p == nil {
		return ErrInvalidProof
	}
	n := pk.N
	g := pk.G()
	nSquare := pk.NSquare()
	c := ct.C

	if ct.Exponent != 0 {
		return paillier.ErrInvalidCiphertext
	}
	if c.Sign() <= 0 || c.Cmp(nSquare) >= 0 || !bigmath.IsCoprime(c, n) {
		return paillier.ErrInvalidCiphertext
	}
	for i := 0; i < 2; i++ {
		if p.A[i] == nil || p.E[i] == nil || p.Z[i] == nil {
			return ErrOutOfRange
		}
		if p.A[i].Sign() < 0 || p.A[i].Cmp(nSquare) >= 0 {
			return ErrOutOfRange
		}
		// The challenge split is plain integer subtraction, so one of the
		// e values is routinely negative; no range bound applies to e
		// beyond the sum check below.
		if p.Z[i].Sign() < 0 || p.Z[i].Cmp(n) >= 0 {
			return ErrOutOfRange
		}
	}

	// Step 1: recompute and compare the total challenge.
	e := challenge(n, g, c, p.A[0], p.A[1])
	sum := new(big.Int).Add(p.E[0], p.E[1])
	if sum.Cmp(e) != 0 {
		return ErrInvalidProof
	}

	// Step 2: z0^n == a0 * c^e0 (mod n^2).
	lhs0 := bigmath.ModExp(p.Z[0], n, nSquare)
	rhs0 := new(big.Int).Mod(new(big.Int).Mul(p.A[0], bigmath.ModExp(c, p.E[0], nSquare)), nSquare)
	if lhs0.Cmp(rhs0) != 0 {
		return ErrInvalidProof
	}

	// Step 3: z1^n == a1 * (c * g^-1)^e1 (mod n^2).
	gInv := bigmath.ModInverse(g, nSquare)
	if gInv == nil {
		return ErrInvalidProof
	}
	cg := new(big.Int).Mod(new(big.Int).Mul(c, gInv), nSquare)
	lhs1 := bigmath.ModExp(p.Z[1], n, nSquare)
	rhs1 := new(big.Int).Mod(new(big.Int).Mul(p.A[1], bigmath.ModExp(cg, p.E[1], nSquare)), nSquare)
	if lhs1.Cmp(rhs1) != 0 {
		return ErrInvalidProof
	}

	return nil
}
