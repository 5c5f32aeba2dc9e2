// metrics.go - Metrics for the election daemon
package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricsCollector tracks the handful of measurements this daemon cares
// about: ballots admitted per kiosk, failures per subcommand, and the
// durations of the expensive phases (key generation, ballot publication,
// tally). It is a process-local collector; each subcommand invocation
// starts fresh and reports through the log on exit.
type MetricsCollector struct {
	mu        sync.Mutex
	ballots   map[string]int
	errors    map[string]int
	durations map[string][]time.Duration
	started   time.Time
}

// NewMetricsCollector returns an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		ballots:   make(map[string]int),
		errors:    make(map[string]int),
		durations: make(map[string][]time.Duration),
		started:   time.Now(),
	}
}

// RecordBallotCast counts one admitted ballot against the kiosk that
// submitted it.
func (mc *MetricsCollector) RecordBallotCast(kioskID string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.ballots[kioskID]++
}

// RecordError counts one failed run of the named subcommand.
func (mc *MetricsCollector) RecordError(command string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errors[command]++
}

// RecordKeygen records the wall-clock duration of one key ceremony.
func (mc *MetricsCollector) RecordKeygen(d time.Duration) {
	mc.recordDuration("keygen", d)
}

// RecordPublish records the duration of one Publish call, which is
// dominated by proof verification.
func (mc *MetricsCollector) RecordPublish(d time.Duration) {
	mc.recordDuration("publish", d)
}

// RecordTally records the duration of one full tally: share
// reconstruction, homomorphic sum, and decryption.
func (mc *MetricsCollector) RecordTally(d time.Duration) {
	mc.recordDuration("tally", d)
}

func (mc *MetricsCollector) recordDuration(name string, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.durations[name] = append(mc.durations[name], d)
}

// BallotsCast returns the total number of admitted ballots recorded.
func (mc *MetricsCollector) BallotsCast() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	total := 0
	for _, n := range mc.ballots {
		total += n
	}
	return total
}

// Summary renders everything recorded so far as one line per metric,
// with map keys sorted so repeated runs are comparable.
func (mc *MetricsCollector) Summary() string {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "uptime=%s", time.Since(mc.started).Round(time.Millisecond))

	for _, kiosk := range sortedKeys(mc.ballots) {
		fmt.Fprintf(&b, " ballots{kiosk=%s}=%d", kiosk, mc.ballots[kiosk])
	}
	for _, cmd := range sortedKeys(mc.errors) {
		fmt.Fprintf(&b, " errors{command=%s}=%d", cmd, mc.errors[cmd])
	}

	names := make([]string, 0, len(mc.durations))
	for name := range mc.durations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		samples := mc.durations[name]
		min, max, sum := samples[0], samples[0], time.Duration(0)
		for _, d := range samples {
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
			sum += d
		}
		avg := sum / time.Duration(len(samples))
		fmt.Fprintf(&b, " %s{n=%d,min=%s,avg=%s,max=%s}", name,
			len(samples), min.Round(time.Microsecond),
			avg.Round(time.Microsecond), max.Round(time.Microsecond))
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
