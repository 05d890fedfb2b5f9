package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

const (
	DefaultCooldown  = time.Hour
	DefaultRetention = 24 * time.Hour

	keyPrefix    = "order_attempts:"
	maxUserAgent = 50
)

// Limiter blocks a fingerprint that already submitted within the cooldown.
type Limiter struct {
	store     Store
	cooldown  time.Duration
	retention time.Duration
	now       func() time.Time

	// serializes Record's read-modify-write within this process
	mu sync.Mutex
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a Limiter over store. Zero durations take the defaults.
func New(store Store, cooldown, retention time.Duration, opts ...Option) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	l := &Limiter{store: store, cooldown: cooldown, retention: retention, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Cooldown returns how long a fingerprint stays blocked after a submission.
func (l *Limiter) Cooldown() time.Duration { return l.cooldown }

// Allow reports whether fingerprint may submit now.
func (l *Limiter) Allow(ctx context.Context, fingerprint string) (bool, error) {
	recs, err := l.load(ctx, fingerprint)
	if err != nil {
		return true, err
	}
	now := l.now().UnixMilli()
	for _, r := range recs {
		if r.Fingerprint == fingerprint && now-r.Timestamp < l.cooldown.Milliseconds() {
			return false, nil
		}
	}
	return true, nil
}

// Record remembers a submission and prunes records older than the retention window.
func (l *Limiter) Record(ctx context.Context, fingerprint, userAgent string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs, err := l.load(ctx, fingerprint)
	if err != nil {
		return err
	}
	now := l.now()
	userAgent = truncateRunes(userAgent, maxUserAgent)
	recs = append(recs, model.RateLimitRecord{Fingerprint: fingerprint, Timestamp: now.UnixMilli(), UserAgent: userAgent})
	cutoff := now.Add(-l.retention).UnixMilli()
	kept := recs[:0]
	for _, r := range recs {
		if r.Timestamp > cutoff {
			kept = append(kept, r)
		}
	}
	b, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("marshal rate limit records: %w", err)
	}
	if err := l.store.Put(ctx, keyPrefix+fingerprint, b, l.retention); err != nil {
		return fmt.Errorf("store rate limit records: %w", err)
	}
	return nil
}

// Records returns the stored records of fingerprint.
func (l *Limiter) Records(ctx context.Context, fingerprint string) ([]model.RateLimitRecord, error) {
	return l.load(ctx, fingerprint)
}

func (l *Limiter) load(ctx context.Context, fingerprint string) ([]model.RateLimitRecord, error) {
	b, ok, err := l.store.Get(ctx, keyPrefix+fingerprint)
	if err != nil {
		return nil, fmt.Errorf("load rate limit records: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var recs []model.RateLimitRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("decode rate limit records: %w", err)
	}
	return recs, nil
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
