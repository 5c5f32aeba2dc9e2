package ballot

import (
	"testing"

	"github.com/opencore/govote/internal/paillier"
)

func TestCreateBallotProducesVerifiableProof(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	for _, vote := range []int{0, 1} {
		b, err := CreateBallot(pk, "kiosk-7", vote)
		if err != nil {
			t.Fatalf("CreateBallot(%d) failed: %v", vote, err)
		}
		if b.BallotID == "" {
			t.Error("expected non-empty ballot ID")
		}
		if b.Ciphertext.Exponent != 0 {
			t.Errorf("expected exponent 0, got %d", b.Ciphertext.Exponent)
		}
		if err := b.Verify(pk); err != nil {
			t.Errorf("Verify failed for vote %d: %v", vote, err)
		}
	}
}

func TestCreateBallotRejectsInvalidVote(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	if _, err := CreateBallot(pk, "kiosk-1", 7); err != ErrInvalidVote {
		t.Errorf("expected ErrInvalidVote, got %v", err)
	}
}

func TestBallotIDsAreUnique(t *testing.T) {
	pk, sk, err := paillier.Generate(256)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer sk.Zeroize()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		b, err := CreateBallot(pk, "kiosk-1", i%2)
		if err != nil {
			t.Fatalf("CreateBallot failed: %v", err)
		}
		if seen[b.BallotID] {
			t.Fatalf("duplicate ballot ID %s", b.BallotID)
		}
		seen[b.BallotID] = true
	}
}
