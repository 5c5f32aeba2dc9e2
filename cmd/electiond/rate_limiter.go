// rate_limiter.go - Rate limiting for the election daemon
package main

import (
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter
type RateLimiter struct {
	mu           sync.Mutex
	tokens       int
	maxTokens    int
	refillRate   int
	lastRefill   time.Time
	refillPeriod time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:       maxTokens,
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		lastRefill:   time.Now(),
		refillPeriod: refillPeriod,
	}
}

// Allow checks if a request is allowed and consumes a token if so
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	timeElapsed := now.Sub(rl.lastRefill)
	refillCount := int(timeElapsed / rl.refillPeriod)

	if refillCount > 0 {
		rl.tokens += refillCount * rl.refillRate
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = now
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// GetTokens returns the current number of available tokens
func (rl *RateLimiter) GetTokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens
}

// Reset resets the rate limiter to its initial state
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = rl.maxTokens
	rl.lastRefill = time.Now()
}

// KioskRateLimiter manages rate limiting per polling-station kiosk, so a
// single misbehaving or compromised kiosk cannot flood the bulletin board
// with ballot submissions.
type KioskRateLimiter struct {
	limiters     map[string]*RateLimiter
	mu           sync.RWMutex
	maxTokens    int
	refillRate   int
	refillPeriod time.Duration
}

// NewKioskRateLimiter creates a new per-kiosk rate limiter.
func NewKioskRateLimiter(maxTokens int, refillRate int, refillPeriod time.Duration) *KioskRateLimiter {
	return &KioskRateLimiter{
		limiters:     make(map[string]*RateLimiter),
		maxTokens:    maxTokens,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
	}
}

// Allow checks if a ballot submission from kioskID is allowed.
func (krl *KioskRateLimiter) Allow(kioskID string) bool {
	krl.mu.Lock()
	limiter, exists := krl.limiters[kioskID]
	if !exists {
		limiter = NewRateLimiter(krl.maxTokens, krl.refillRate, krl.refillPeriod)
		krl.limiters[kioskID] = limiter
	}
	krl.mu.Unlock()

	return limiter.Allow()
}

// GetTokens returns the current number of available tokens for a kiosk.
func (krl *KioskRateLimiter) GetTokens(kioskID string) int {
	krl.mu.RLock()
	limiter, exists := krl.limiters[kioskID]
	krl.mu.RUnlock()

	if !exists {
		return krl.maxTokens
	}

	return limiter.GetTokens()
}

// Reset resets the rate limiter for a specific kiosk.
func (krl *KioskRateLimiter) Reset(kioskID string) {
	krl.mu.Lock()
	if limiter, exists := krl.limiters[kioskID]; exists {
		limiter.Reset()
	}
	krl.mu.Unlock()
}

// ResetAll resets every kiosk's rate limiter.
func (krl *KioskRateLimiter) ResetAll() {
	krl.mu.Lock()
	for _, limiter := range krl.limiters {
		limiter.Reset()
	}
	krl.mu.Unlock()
}
