// health.go - Election artifact health checks
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	govote "github.com/opencore/govote"
)

// HealthStatus classifies the condition of one election artifact.
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
)

// probe inspects one election artifact. Degraded means the artifact is
// legitimately absent for the current phase (the ceremony has not run, no
// ballots cast yet); Unhealthy means it exists but is unusable.
type probe func() (HealthStatus, string)

// ComponentHealth is the outcome of one probe run.
type ComponentHealth struct {
	Name    string        `json:"name"`
	Status  HealthStatus  `json:"status"`
	Message string        `json:"message"`
	Latency time.Duration `json:"latency"`
}

// SystemHealth aggregates every probe into an overall verdict.
type SystemHealth struct {
	OverallStatus HealthStatus      `json:"overall_status"`
	Timestamp     time.Time         `json:"timestamp"`
	Components    []ComponentHealth `json:"components"`
	Uptime        time.Duration     `json:"uptime"`
	Version       string            `json:"version"`
}

// HealthChecker runs the daemon's artifact probes: the published public
// key, the sealed private key blob, the trustee share files, and the
// ledger's hash chain. Probes run in a fixed order so repeated reports
// are comparable.
type HealthChecker struct {
	mu        sync.Mutex
	names     []string
	probes    map[string]probe
	startTime time.Time
	version   string
}

// NewHealthChecker wires the standard election artifact probes for cfg.
func NewHealthChecker(cfg *Config, version string) *HealthChecker {
	hc := &HealthChecker{
		probes:    make(map[string]probe),
		startTime: time.Now(),
		version:   version,
	}
	hc.register("public_key", publicKeyProbe(cfg))
	hc.register("sealed_key", sealedKeyProbe(cfg))
	hc.register("trustee_shares", sharesProbe(cfg))
	hc.register("ledger", ledgerProbe(cfg))
	return hc
}

func (hc *HealthChecker) register(name string, p probe) {
	hc.names = append(hc.names, name)
	hc.probes[name] = p
}

// CheckHealth runs every probe and aggregates the results. A single
// Unhealthy artifact makes the whole system Unhealthy; a Degraded one
// only degrades it.
func (hc *HealthChecker) CheckHealth() *SystemHealth {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	overall := Healthy
	components := make([]ComponentHealth, 0, len(hc.names))
	for _, name := range hc.names {
		start := time.Now()
		status, message := hc.probes[name]()
		components = append(components, ComponentHealth{
			Name:    name,
			Status:  status,
			Message: message,
			Latency: time.Since(start),
		})
		if status == Unhealthy {
			overall = Unhealthy
		} else if status == Degraded && overall == Healthy {
			overall = Degraded
		}
	}

	return &SystemHealth{
		OverallStatus: overall,
		Timestamp:     time.Now(),
		Components:    components,
		Uptime:        time.Since(hc.startTime),
		Version:       hc.version,
	}
}

func publicKeyProbe(cfg *Config) probe {
	return func() (HealthStatus, string) {
		pk, err := loadPublicKey(cfg)
		if errors.Is(err, os.ErrNotExist) {
			return Degraded, "key ceremony has not run yet"
		}
		if err != nil {
			return Unhealthy, err.Error()
		}
		return Healthy, fmt.Sprintf("modulus of %d bits", pk.N.BitLen())
	}
}

func sealedKeyProbe(cfg *Config) probe {
	return func() (HealthStatus, string) {
		buf, err := os.ReadFile(cfg.SealedKeyPath)
		if errors.Is(err, os.ErrNotExist) {
			return Degraded, "no sealed private key on disk"
		}
		if err != nil {
			return Unhealthy, err.Error()
		}
		var sealed govote.SealedPrivateKey
		if err := json.Unmarshal(buf, &sealed); err != nil || len(sealed.Ciphertext) == 0 {
			return Unhealthy, "sealed private key file is malformed"
		}
		return Healthy, fmt.Sprintf("sealed blob of %d bytes", len(sealed.Ciphertext))
	}
}

func sharesProbe(cfg *Config) probe {
	return func() (HealthStatus, string) {
		entries, err := os.ReadDir(cfg.SharesDir)
		if errors.Is(err, os.ErrNotExist) {
			return Degraded, "no trustee shares distributed yet"
		}
		if err != nil {
			return Unhealthy, err.Error()
		}
		count := 0
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				count++
			}
		}
		if count < cfg.Threshold {
			return Degraded, fmt.Sprintf("%d of %d share files present, below threshold %d",
				count, cfg.TrusteeCount, cfg.Threshold)
		}
		return Healthy, fmt.Sprintf("%d share files in %s", count, filepath.Clean(cfg.SharesDir))
	}
}

func ledgerProbe(cfg *Config) probe {
	return func() (HealthStatus, string) {
		if _, err := os.Stat(cfg.LedgerPath); errors.Is(err, os.ErrNotExist) {
			return Degraded, "no ballots published yet"
		}
		// LoadElection replays the file, re-verifying every proof and the
		// whole hash chain; an error here means a tampered or truncated
		// ledger, not an empty one.
		election, err := govote.LoadElection(cfg.LedgerPath)
		if err != nil {
			return Unhealthy, fmt.Sprintf("ledger replay failed: %v", err)
		}
		return Healthy, fmt.Sprintf("%d entries, chain verified", len(election.GetAllEntries()))
	}
}
