package paillier

import (
	"math/big"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	pk, sk, err := Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	for _, v := range []int{0, 1} {
		ct, _, err := pk.Encrypt(v)
		if err != nil {
			t.Fatalf("Encrypt(%d) failed: %v", v, err)
		}
		m, err := Decrypt(pk, sk, ct)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if m.Cmp(big.NewInt(int64(v))) != 0 {
			t.Errorf("decrypt(encrypt(%d)) = %v, want %d", v, m, v)
		}
	}
}

func TestEncryptRejectsInvalidPlaintext(t *testing.T) {
	pk, sk, err := Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	if _, _, err := pk.Encrypt(2); err == nil {
		t.Error("expected error encrypting plaintext outside {0,1}")
	}
}

func TestHomomorphicSum(t *testing.T) {
	pk, sk, err := Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	votes := []int{1, 1, 0, 1, 0}
	var cts []*Ciphertext
	for _, v := range votes {
		ct, _, err := pk.Encrypt(v)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		cts = append(cts, ct)
	}

	sum := Sum(pk, cts...)
	m, err := Decrypt(pk, sk, sum)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}

	want := 0
	for _, v := range votes {
		want += v
	}
	if m.Cmp(big.NewInt(int64(want))) != 0 {
		t.Errorf("homomorphic sum = %v, want %d", m, want)
	}
}

func TestDecryptRejectsOutOfRangeCiphertext(t *testing.T) {
	pk, sk, err := Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	bad := &Ciphertext{C: new(big.Int).Set(pk.NSquare()), Exponent: 0}
	if _, err := Decrypt(pk, sk, bad); err != ErrInvalidCiphertext {
		t.Errorf("expected ErrInvalidCiphertext, got %v", err)
	}
}
