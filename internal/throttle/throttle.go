// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package throttle bounds the aggregate rate of outbound API requests shared
// by all workers of a batch.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/semantic-bib/pkg/types"
)

// Limiter hands out permission for one request. Wait blocks until a token
// is available or ctx is done. *Bucket and *rate.Limiter implement it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// New returns the limiter selected by cfg.Mode.
func New(cfg types.RateConfig) (Limiter, error) {
	switch cfg.Mode {
	case types.RateBucket, "":
		return NewBucket(cfg.Interval, cfg.Capacity), nil
	case types.RateSmooth:
		return NewSmooth(cfg.Interval, cfg.Capacity), nil
	default:
		return nil, fmt.Errorf("unknown rate mode %q (want %q or %q)", cfg.Mode, types.RateBucket, types.RateSmooth)
	}
}

// NewSmooth returns a limiter that allows one request per interval with
// bursts of up to burst requests. Unlike Bucket it starts full and needs no
// producer goroutine.
func NewSmooth(interval time.Duration, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// Bucket is a token bucket backed by a buffered channel. A single producer
// goroutine adds one token when started and one more every interval;
// tokens that do not fit in the buffer are dropped, so bursts never exceed
// the capacity. The producer runs between Start and Stop.
type Bucket struct {
	interval time.Duration
	tokens   chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBucket returns a stopped bucket with an empty buffer.
func NewBucket(interval time.Duration, capacity int) *Bucket {
	if interval <= 0 {
		interval = types.DefaultRateInterval
	}
	if capacity <= 0 {
		capacity = types.DefaultRateCapacity
	}
	return &Bucket{
		interval: interval,
		tokens:   make(chan struct{}, capacity),
	}
}

// Start launches the producer. It is a no-op if the producer is already
// running. The producer also stops when ctx is cancelled.
func (b *Bucket) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return
	}
	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	go b.produce(ctx, b.done)
}

// Stop signals the producer and waits for it to exit. Tokens already in
// the buffer stay there. Stop is safe to call more than once.
func (b *Bucket) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
	b.cancel = nil
	b.done = nil
}

// Wait takes one token, blocking until one is produced or ctx is done.
func (b *Bucket) Wait(ctx context.Context) error {
	select {
	case <-b.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of buffered tokens.
func (b *Bucket) Len() int {
	return len(b.tokens)
}

// Cap returns the buffer capacity.
func (b *Bucket) Cap() int {
	return cap(b.tokens)
}

func (b *Bucket) produce(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	b.put()
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.put()
		}
	}
}

// put adds a token unless the buffer is full.
func (b *Bucket) put() {
	select {
	case b.tokens <- struct{}{}:
	default:
	}
}
