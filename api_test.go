package govote

import (
	"path/filepath"
	"testing"
)

func TestEndToEndElectionFlow(t *testing.T) {
	pk, sealed, shares, err := Keygen(256, 3, 5)
	if err != nil {
		t.Fatalf("Keygen failed: %v", err)
	}

	election := NewElection(pk)
	votes := []int{1, 0, 1, 1, 0}
	for i, v := range votes {
		b, err := election.CreateBallot(v, "kiosk-1")
		if err != nil {
			t.Fatalf("CreateBallot %d failed: %v", i, err)
		}
		if _, err := election.Publish(b, Open); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}

	entries := election.GetAllEntries()
	if len(entries) != len(votes) {
		t.Fatalf("GetAllEntries returned %d entries, want %d", len(entries), len(votes))
	}

	root, ok := election.MerkleRoot()
	if !ok {
		t.Fatal("expected a Merkle root after publishing")
	}
	for i, entry := range entries {
		proof, err := election.GetMerkleProof(i)
		if err != nil {
			t.Fatalf("GetMerkleProof(%d) failed: %v", i, err)
		}
		leaf, err := entry.Ballot.LeafHash()
		if err != nil {
			t.Fatalf("LeafHash(%d) failed: %v", i, err)
		}
		if !VerifyMerkleProof(leaf, proof, root) {
			t.Errorf("VerifyMerkleProof failed for entry %d", i)
		}
	}

	result, err := election.Tally(sealed, shares[:3], 3)
	if err != nil {
		t.Fatalf("Tally failed: %v", err)
	}
	wantYes := 0
	for _, v := range votes {
		wantYes += v
	}
	if result.Yes != wantYes || result.Total != len(votes) {
		t.Errorf("Tally = %+v, want Yes=%d Total=%d", result, wantYes, len(votes))
	}
}

func TestPublishRejectsReplayedBallot(t *testing.T) {
	pk, _, _, err := Keygen(256, 2, 3)
	if err != nil {
		t.Fatalf("Keygen failed: %v", err)
	}
	election := NewElection(pk)

	b, err := election.CreateBallot(1, "kiosk-2")
	if err != nil {
		t.Fatalf("CreateBallot failed: %v", err)
	}
	if _, err := election.Publish(b, Open); err != nil {
		t.Fatalf("first Publish failed: %v", err)
	}
	if _, err := election.Publish(b, Open); err != ErrDuplicateBallot {
		t.Errorf("expected ErrDuplicateBallot, got %v", err)
	}
}

func TestPublishRejectsClosedPoll(t *testing.T) {
	pk, _, _, err := Keygen(256, 2, 3)
	if err != nil {
		t.Fatalf("Keygen failed: %v", err)
	}
	election := NewElection(pk)

	b, err := election.CreateBallot(1, "kiosk-5")
	if err != nil {
		t.Fatalf("CreateBallot failed: %v", err)
	}
	if _, err := election.Publish(b, Closed); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if election.GetAllEntries() != nil && len(election.GetAllEntries()) != 0 {
		t.Errorf("expected no entries admitted while closed, got %d", len(election.GetAllEntries()))
	}
}

func TestSaveAndLoadElectionPreservesTally(t *testing.T) {
	pk, sealed, shares, err := Keygen(256, 2, 3)
	if err != nil {
		t.Fatalf("Keygen failed: %v", err)
	}
	election := NewElection(pk)

	for _, v := range []int{1, 1, 0} {
		b, err := election.CreateBallot(v, "kiosk-3")
		if err != nil {
			t.Fatalf("CreateBallot failed: %v", err)
		}
		if _, err := election.Publish(b, Open); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "election.json")
	if err := election.SaveLedger(path); err != nil {
		t.Fatalf("SaveLedger failed: %v", err)
	}

	reloaded, err := LoadElection(path)
	if err != nil {
		t.Fatalf("LoadElection failed: %v", err)
	}

	result, err := reloaded.Tally(sealed, shares[:2], 2)
	if err != nil {
		t.Fatalf("Tally on reloaded election failed: %v", err)
	}
	if result.Yes != 2 || result.Total != 3 {
		t.Errorf("Tally = %+v, want Yes=2 Total=3", result)
	}
}

func TestTallyRejectsInsufficientShares(t *testing.T) {
	pk, sealed, shares, err := Keygen(256, 3, 5)
	if err != nil {
		t.Fatalf("Keygen failed: %v", err)
	}
	election := NewElection(pk)
	b, err := election.CreateBallot(1, "kiosk-4")
	if err != nil {
		t.Fatalf("CreateBallot failed: %v", err)
	}
	if _, err := election.Publish(b, Open); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if _, err := election.Tally(sealed, shares[:2], 3); err != ErrInsufficientShares {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestCreateBallotRejectsInvalidVote(t *testing.T) {
	pk, _, _, err := Keygen(256, 2, 3)
	if err != nil {
		t.Fatalf("Keygen failed: %v", err)
	}
	election := NewElection(pk)
	if _, err := election.CreateBallot(2, "kiosk-9"); err != ErrInvalidVote {
		t.Errorf("expected ErrInvalidVote, got %v", err)
	}
}
