package ratelimiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultSourceKey = "X-RateLimit-Key"

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per source key.
type RateLimiter struct {
	limit           rate.Limit
	maxBurst        int
	idleTTL         time.Duration
	sourceHeaderKey string

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	SourceHeaderKey  string
	// IdleTTL is how long an unused bucket is kept before Run drops it.
	IdleTTL time.Duration
}

func New(options Options) *RateLimiter {
	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond
	}

	if options.SourceHeaderKey == "" {
		options.SourceHeaderKey = defaultSourceKey
	}

	if options.IdleTTL <= 0 {
		options.IdleTTL = 5 * time.Minute
	}

	return &RateLimiter{
		limit:           rate.Limit(options.MaxRatePerSecond),
		maxBurst:        options.MaxBurst,
		idleTTL:         options.IdleTTL,
		sourceHeaderKey: options.SourceHeaderKey,
		buckets:         make(map[string]*bucket),
		now:             time.Now,
	}
}

func (rl *RateLimiter) get(sourceKey string) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[sourceKey]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.maxBurst)}
		rl.buckets[sourceKey] = b
	}
	b.lastSeen = rl.now()

	return b
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	return rl.get(sourceKey).limiter.AllowN(rl.now(), 1)
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	tokens := rl.get(sourceKey).limiter.TokensAt(rl.now())
	if tokens < 0 {
		return 0
	}
	return int(tokens)
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if key := r.Header.Get(rl.sourceHeaderKey); key != "" {
		return key
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Run drops idle buckets until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.removeIdle()
		case <-ctx.Done():
			return nil
		}
	}
}

func (rl *RateLimiter) removeIdle() {
	cutoff := rl.now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}
