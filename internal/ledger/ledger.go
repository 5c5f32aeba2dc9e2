// Package ledger implements the append-only, hash-chained bulletin board
// that every published ballot is admitted to. Admission gates on
// zero-knowledge proof verification: a ballot whose proof does not verify
// is never appended. Every accepted entry records the SHA-256 of the full
// previous entry's canonical JSON encoding, and every ballot's canonical
// encoding is indexed into a Merkle tree for inclusion proofs.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/opencore/govote/internal/ballot"
	"github.com/opencore/govote/internal/merkle"
	"github.com/opencore/govote/internal/paillier"
)

var (
	// ErrInvalidProof is returned by Publish when the ballot's proof does
	// not verify; the ballot is not admitted to the ledger.
	ErrInvalidProof = errors.New("ledger: ballot proof does not verify")
	// ErrInvalidCiphertext is returned by Publish when the ballot's
	// ciphertext is outside Z*_{n^2} before its proof is even considered.
	ErrInvalidCiphertext = errors.New("ledger: ballot ciphertext out of range")
	// ErrDuplicateBallotID is returned by Publish when a ballot with the
	// same ID has already been admitted.
	ErrDuplicateBallotID = errors.New("ledger: ballot ID already published")
	// ErrChainBroken is returned by LoadAndReplay when a loaded entry's
	// stored fields do not match the values recomputed from replaying its
	// ballot in order.
	ErrChainBroken = errors.New("ledger: hash chain verification failed")
)

// genesisPrevHash is the prev_hash of the first entry: 64 zero hex digits.
var genesisPrevHash = strings.Repeat("0", 64)

// Entry is one admitted position in the bulletin board. PrevHash is the
// hex SHA-256 of the previous entry's canonical encoding (all zeros for
// the first entry) and MerkleRoot is the tree root after this entry's
// ballot was indexed. Field declaration order is alphabetical by key, so
// json.Marshal of an Entry is already the sorted-keys canonical encoding
// the next entry's PrevHash is computed over.
type Entry struct {
	Ballot     *ballot.Ballot `json:"ballot"`
	Index      int            `json:"index"`
	MerkleRoot string         `json:"merkle_root"`
	PrevHash   string         `json:"prev_hash"`
}

// CanonicalHash returns the hex SHA-256 over the entry's canonical JSON
// encoding, the value the next entry stores as its PrevHash.
func (e *Entry) CanonicalHash() (string, error) {
	buf, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// Ledger is the thread-safe bulletin board for one election.
type Ledger struct {
	mu      sync.Mutex
	pk      *paillier.PublicKey
	entries []Entry
	ids     map[string]bool
	tree    *merkle.Tree
}

// New returns an empty ledger that verifies every published ballot against
// pk before admitting it.
func New(pk *paillier.PublicKey) *Ledger {
	return &Ledger{
		pk:   pk,
		ids:  make(map[string]bool),
		tree: merkle.NewTree(),
	}
}

// Publish verifies b's zero-knowledge proof and, if it holds and b's ID has
// not been seen before, appends a new chained entry and indexes b's
// canonical encoding in the Merkle tree. Everything that can fail happens
// before the first state mutation, so a rejected ballot leaves both the
// entry list and the tree untouched.
func (l *Ledger) Publish(b *ballot.Ballot) (*Entry, error) {
	if err := b.Verify(l.pk); err != nil {
		if errors.Is(err, paillier.ErrInvalidCiphertext) {
			return nil, ErrInvalidCiphertext
		}
		return nil, ErrInvalidProof
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ids[b.BallotID] {
		return nil, ErrDuplicateBallotID
	}

	leaf, err := b.LeafHash()
	if err != nil {
		return nil, err
	}

	index := len(l.entries)
	prevHash := genesisPrevHash
	if index > 0 {
		prevHash, err = l.entries[index-1].CanonicalHash()
		if err != nil {
			return nil, err
		}
	}

	l.tree.Add(leaf)
	root, _ := l.tree.Root()

	entry := Entry{
		Ballot:     b,
		Index:      index,
		MerkleRoot: hex.EncodeToString(root[:]),
		PrevHash:   prevHash,
	}
	l.entries = append(l.entries, entry)
	l.ids[b.BallotID] = true

	return &entry, nil
}

// PublicKey returns the public key every published ballot is verified
// against.
func (l *Ledger) PublicKey() *paillier.PublicKey {
	return l.pk
}

// Entries returns a copy of every admitted entry, in admission order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of admitted entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// MerkleRoot returns the bulletin board's current Merkle root.
func (l *Ledger) MerkleRoot() ([32]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Root()
}

// MerkleProof builds an inclusion proof for the ballot at the given entry
// index.
func (l *Ledger) MerkleProof(index int) (*merkle.InclusionProof, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Proof(index)
}

// ledgerFile is the on-disk representation: entries plus the public key
// they were verified against, so LoadAndReplay can re-verify every proof.
type ledgerFile struct {
	PublicKey *paillier.PublicKey `json:"public_key"`
	Entries   []Entry             `json:"entries"`
}

// SaveToFile writes the ledger's entries and public key to a single JSON
// file, overwriting it if it exists.
func (l *Ledger) SaveToFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(ledgerFile{PublicKey: l.pk, Entries: l.entries})
}

// LoadAndReplay reads a ledger file and rebuilds a Ledger from it,
// re-verifying every ballot's proof in order. It deliberately does not
// trust the stored chain fields at face value: each entry's index,
// PrevHash, and MerkleRoot are recomputed by replaying Publish over the
// stored ballots and compared against what the file claims.
func LoadAndReplay(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lf ledgerFile
	if err := json.NewDecoder(f).Decode(&lf); err != nil {
		return nil, err
	}

	if lf.PublicKey == nil || lf.PublicKey.N == nil {
		return nil, errors.New("ledger: file has no public key")
	}

	l := New(lf.PublicKey)
	for _, stored := range lf.Entries {
		if stored.Ballot == nil {
			return nil, ErrChainBroken
		}
		entry, err := l.Publish(stored.Ballot)
		if err != nil {
			return nil, err
		}
		if entry.Index != stored.Index || entry.PrevHash != stored.PrevHash || entry.MerkleRoot != stored.MerkleRoot {
			return nil, ErrChainBroken
		}
	}
	return l, nil
}
