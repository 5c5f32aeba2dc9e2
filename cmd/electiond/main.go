// main.go - Election daemon entry point and CLI subcommands
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	govote "github.com/opencore/govote"
	"github.com/opencore/govote/internal/govlog"
	"github.com/opencore/govote/internal/sss"
)

const usage = `electiond - verifiable referendum daemon

Usage:
  electiond ceremony [-config path]
  electiond vote -kiosk ID -vote 0|1 [-config path]
  electiond vote -demo N [-config path]
  electiond close [-config path]
  electiond tally [-config path]
  electiond verify -index N [-config path]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", "electiond.json", "path to config file")
	kioskID := fs.String("kiosk", "", "kiosk ID casting the ballot")
	vote := fs.Int("vote", -1, "vote value, 0 or 1")
	demoN := fs.Int("demo", 0, "cast N concurrently-created demo ballots instead of one real one")
	index := fs.Int("index", -1, "ledger entry index to verify")
	fs.Parse(os.Args[2:])

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	initLogger(cfg)
	log := govlog.With("electiond")

	health := NewHealthChecker(cfg, "0.1.0")
	metrics := NewMetricsCollector()

	kioskLimiter := NewKioskRateLimiter(cfg.RateLimitTokens, cfg.RateLimitTokens, time.Duration(cfg.RateLimitPeriod)*time.Second)

	var runErr error
	switch cmd {
	case "ceremony":
		runErr = runCeremony(cfg, &log, metrics)
	case "vote":
		if *demoN > 0 {
			runErr = runDemoVotes(cfg, &log, metrics, *demoN)
		} else {
			runErr = runVote(cfg, &log, metrics, kioskLimiter, *kioskID, *vote)
		}
	case "close":
		runErr = runClose(cfg, &log)
	case "tally":
		runErr = runTally(cfg, &log, metrics)
	case "verify":
		runErr = runVerify(cfg, &log, *index)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if runErr != nil {
		metrics.RecordError(cmd)
		log.Error().Err(runErr).Msg("command failed")
		log.Debug().Msg(metrics.Summary())
		os.Exit(1)
	}

	if sys := health.CheckHealth(); sys.OverallStatus != Healthy {
		for _, c := range sys.Components {
			if c.Status != Healthy {
				log.Warn().Str("artifact", c.Name).Str("status", string(c.Status)).Msg(c.Message)
			}
		}
	}
	log.Debug().Msg(metrics.Summary())
}

// runCeremony generates a fresh election keypair, seals the private key
// under a threshold Shamir split, and writes the public key, sealed blob,
// and one share file per trustee to disk. This corresponds to the
// key-ceremony phase of the referendum: after it runs, the plaintext
// private key exists nowhere.
func runCeremony(cfg *Config, log *zerolog.Logger, metrics *MetricsCollector) error {
	start := time.Now()
	pk, sealed, shares, err := govote.Keygen(cfg.KeyBits, cfg.Threshold, cfg.TrusteeCount)
	if err != nil {
		return fmt.Errorf("keygen: %w", err)
	}
	metrics.RecordKeygen(time.Since(start))

	pkBytes, err := json.MarshalIndent(pk, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(cfg.SealedKeyPath), "public_key.json"), pkBytes, 0644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	sealedBytes, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.SealedKeyPath, sealedBytes, 0600); err != nil {
		return fmt.Errorf("write sealed private key: %w", err)
	}

	if err := os.MkdirAll(cfg.SharesDir, 0700); err != nil {
		return fmt.Errorf("create shares dir: %w", err)
	}
	for _, share := range shares {
		name := filepath.Join(cfg.SharesDir, "trustee-"+strconv.Itoa(share.X)+".json")
		buf, err := json.MarshalIndent(share, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(name, buf, 0600); err != nil {
			return fmt.Errorf("write share %d: %w", share.X, err)
		}
	}

	fmt.Printf("ceremony complete: n=%s bits=%d threshold=%d trustees=%d (%s)\n",
		pk.N.String(), cfg.KeyBits, cfg.Threshold, cfg.TrusteeCount, time.Since(start))
	return nil
}

func loadPublicKey(cfg *Config) (*govote.PublicKey, error) {
	buf, err := os.ReadFile(filepath.Join(filepath.Dir(cfg.SealedKeyPath), "public_key.json"))
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	var pk govote.PublicKey
	if err := json.Unmarshal(buf, &pk); err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &pk, nil
}

func openElection(cfg *Config) (*govote.Election, error) {
	if _, err := os.Stat(cfg.LedgerPath); err == nil {
		return govote.LoadElection(cfg.LedgerPath)
	}
	pk, err := loadPublicKey(cfg)
	if err != nil {
		return nil, err
	}
	return govote.NewElection(pk), nil
}

// closedMarkerPath is the admin-signal file: its presence means an operator
// ran the "close" subcommand. The core itself never reads process-global
// state to decide whether to admit a ballot; this daemon reads the marker
// once per command invocation and threads the resulting PollState through
// every Publish call explicitly.
func closedMarkerPath(cfg *Config) string {
	return cfg.LedgerPath + ".closed"
}

func pollState(cfg *Config) govote.PollState {
	if _, err := os.Stat(closedMarkerPath(cfg)); err == nil {
		return govote.Closed
	}
	return govote.Open
}

// runVote casts a single real ballot from a kiosk.
func runVote(cfg *Config, log *zerolog.Logger, metrics *MetricsCollector, limiter *KioskRateLimiter, kioskID string, vote int) error {
	if kioskID == "" || (vote != 0 && vote != 1) {
		return fmt.Errorf("vote requires -kiosk and -vote {0,1}")
	}
	if !limiter.Allow(kioskID) {
		return fmt.Errorf("kiosk %s: rate limit exceeded", kioskID)
	}

	election, err := openElection(cfg)
	if err != nil {
		return err
	}

	b, err := election.CreateBallot(vote, kioskID)
	if err != nil {
		return fmt.Errorf("create ballot: %w", err)
	}
	publishStart := time.Now()
	index, err := election.Publish(b, pollState(cfg))
	if err != nil {
		return fmt.Errorf("publish ballot: %w", err)
	}
	metrics.RecordPublish(time.Since(publishStart))
	metrics.RecordBallotCast(kioskID)

	if err := election.SaveLedger(cfg.LedgerPath); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	fmt.Printf("ballot %s admitted at index %d\n", b.BallotID, index)
	return nil
}

// runDemoVotes exercises the concurrency model described for the bulletin
// board: independent ballot creations run on a worker pool, but every
// publish is funneled back through the single admission queue the ledger
// itself serializes internally.
func runDemoVotes(cfg *Config, log *zerolog.Logger, metrics *MetricsCollector, n int) error {
	election, err := openElection(cfg)
	if err != nil {
		return err
	}

	ballots := make([]*govote.Ballot, n)
	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			kiosk := cfg.KioskIDs[i%len(cfg.KioskIDs)]
			var coin [1]byte
			if _, err := rand.Read(coin[:]); err != nil {
				return fmt.Errorf("sample demo vote %d: %w", i, err)
			}
			vote := int(coin[0] & 1)
			b, err := election.CreateBallot(vote, kiosk)
			if err != nil {
				return fmt.Errorf("create ballot %d: %w", i, err)
			}
			ballots[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	state := pollState(cfg)
	admitted := 0
	for _, b := range ballots {
		publishStart := time.Now()
		if _, err := election.Publish(b, state); err != nil {
			return fmt.Errorf("publish ballot %s: %w", b.BallotID, err)
		}
		metrics.RecordPublish(time.Since(publishStart))
		metrics.RecordBallotCast(b.KioskID)
		admitted++
	}

	if err := election.SaveLedger(cfg.LedgerPath); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	fmt.Printf("demo: %d ballots created concurrently, admitted in order\n", admitted)
	return nil
}

// runClose writes the admin-signal marker that transitions the poll from
// OPEN to CLOSED, then reports the bulletin board's final state: total
// ballots and Merkle root. The core itself does not own this flag; every
// subsequent vote/demo invocation reads the marker and passes
// govote.Closed into Publish, which the core then refuses unconditionally.
func runClose(cfg *Config, log *zerolog.Logger) error {
	election, err := openElection(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(closedMarkerPath(cfg), []byte("closed\n"), 0644); err != nil {
		return fmt.Errorf("write closed marker: %w", err)
	}
	root, ok := election.MerkleRoot()
	entries := election.GetAllEntries()
	if !ok {
		fmt.Println("poll closed with zero ballots cast")
		return nil
	}
	fmt.Printf("poll closed: %d ballots, merkle root %s\n", len(entries), hex.EncodeToString(root[:]))
	return nil
}

// runTally reconstructs the private key from the trustee share files
// present in SharesDir and decrypts the homomorphic sum of every admitted
// ballot.
func runTally(cfg *Config, log *zerolog.Logger, metrics *MetricsCollector) error {
	start := time.Now()

	election, err := openElection(cfg)
	if err != nil {
		return err
	}

	sealedBuf, err := os.ReadFile(cfg.SealedKeyPath)
	if err != nil {
		return fmt.Errorf("read sealed private key: %w", err)
	}
	var sealed govote.SealedPrivateKey
	if err := json.Unmarshal(sealedBuf, &sealed); err != nil {
		return fmt.Errorf("parse sealed private key: %w", err)
	}

	shares, err := loadShares(cfg.SharesDir, cfg.Threshold)
	if err != nil {
		return err
	}

	result, err := election.Tally(&sealed, shares, cfg.Threshold)
	if err != nil {
		return fmt.Errorf("tally: %w", err)
	}
	metrics.RecordTally(time.Since(start))

	fmt.Printf("tally: yes=%d no=%d total=%d\n", result.Yes, result.No, result.Total)
	return nil
}

func loadShares(dir string, threshold int) ([]govote.Share, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read shares dir: %w", err)
	}
	var shares []sss.Share
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read share %s: %w", e.Name(), err)
		}
		var s sss.Share
		if err := json.Unmarshal(buf, &s); err != nil {
			return nil, fmt.Errorf("parse share %s: %w", e.Name(), err)
		}
		shares = append(shares, s)
		if len(shares) == threshold {
			break
		}
	}
	return shares, nil
}

// runVerify builds and checks an inclusion proof for a single ledger
// entry, demonstrating that verify_merkle_proof needs nothing but the
// proof itself and the published root.
func runVerify(cfg *Config, log *zerolog.Logger, index int) error {
	if index < 0 {
		return fmt.Errorf("verify requires -index >= 0")
	}

	election, err := openElection(cfg)
	if err != nil {
		return err
	}
	entries := election.GetAllEntries()
	if index >= len(entries) {
		return fmt.Errorf("index %d out of range [0, %d)", index, len(entries))
	}
	root, ok := election.MerkleRoot()
	if !ok {
		return fmt.Errorf("ledger has no root")
	}

	proof, err := election.GetMerkleProof(index)
	if err != nil {
		return fmt.Errorf("build proof: %w", err)
	}

	leaf, err := entries[index].Ballot.LeafHash()
	if err != nil {
		return fmt.Errorf("hash ballot: %w", err)
	}
	ok = govote.VerifyMerkleProof(leaf, proof, root)
	fmt.Printf("entry %d (ballot %s): inclusion proof valid = %v (leaf %s)\n",
		index, entries[index].Ballot.BallotID, ok, hex.EncodeToString(leaf[:]))
	if !ok {
		return fmt.Errorf("inclusion proof failed verification")
	}
	return nil
}

