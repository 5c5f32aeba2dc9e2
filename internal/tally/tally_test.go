package tally

import (
	"testing"

	"github.com/opencore/govote/internal/ballot"
	"github.com/opencore/govote/internal/ledger"
	"github.com/opencore/govote/internal/paillier"
)

func buildClosedLedger(t *testing.T, pk *paillier.PublicKey, votes []int) []ledger.Entry {
	t.Helper()
	l := ledger.New(pk)
	for i, v := range votes {
		b, err := ballot.CreateBallot(pk, "kiosk", v)
		if err != nil {
			t.Fatalf("CreateBallot failed: %v", err)
		}
		if _, err := l.Publish(b); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}
	return l.Entries()
}

func TestRunTalliesCorrectly(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	sealed, shares, err := SealPrivateKey(sk, 3, 5)
	if err != nil {
		t.Fatalf("SealPrivateKey failed: %v", err)
	}
	sk.Zeroize()

	votes := []int{1, 0, 1, 1, 0, 1, 0}
	entries := buildClosedLedger(t, pk, votes)

	result, err := Run(pk, sealed, shares[:3], 3, entries)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantYes := 0
	for _, v := range votes {
		wantYes += v
	}
	if result.Yes != wantYes {
		t.Errorf("Yes = %d, want %d", result.Yes, wantYes)
	}
	if result.No != len(votes)-wantYes {
		t.Errorf("No = %d, want %d", result.No, len(votes)-wantYes)
	}
	if result.Total != len(votes) {
		t.Errorf("Total = %d, want %d", result.Total, len(votes))
	}
}

func TestRunRejectsInsufficientShares(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	sealed, shares, err := SealPrivateKey(sk, 3, 5)
	if err != nil {
		t.Fatalf("SealPrivateKey failed: %v", err)
	}
	sk.Zeroize()

	entries := buildClosedLedger(t, pk, []int{1, 0})
	if _, err := Run(pk, sealed, shares[:2], 3, entries); err != ErrInsufficientShares {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestRunRejectsTamperedSealedKey(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	sealed, shares, err := SealPrivateKey(sk, 2, 3)
	if err != nil {
		t.Fatalf("SealPrivateKey failed: %v", err)
	}
	sk.Zeroize()
	sealed.Ciphertext[0] ^= 0xff

	entries := buildClosedLedger(t, pk, []int{1, 1, 0})
	if _, err := Run(pk, sealed, shares[:2], 2, entries); err != ErrSealedKeyTampered {
		t.Errorf("expected ErrSealedKeyTampered, got %v", err)
	}
}

func TestRunOnEmptyBallotBoxReportsZero(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	sealed, shares, err := SealPrivateKey(sk, 2, 3)
	if err != nil {
		t.Fatalf("SealPrivateKey failed: %v", err)
	}
	sk.Zeroize()

	result, err := Run(pk, sealed, shares[:2], 2, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Yes != 0 || result.No != 0 || result.Total != 0 {
		t.Errorf("expected all-zero result, got %+v", result)
	}
}
