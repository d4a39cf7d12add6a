// Package scorecache memoizes similarity scores. Entries are keyed by the
// scorer params and the digests of both normalized buffers, so a cached score
// is only reused for byte-identical normalized inputs.
package scorecache

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tensorplex-labs/simrank/internal/scoring"
)

const (
	defaultTTL     = 24 * time.Hour
	defaultTimeout = 2 * time.Second
)

// Store persists cached scores. Get returns "" and no error on a miss.
// internal/utils/redis.Redis and Memory both satisfy it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Inner is the scorer being memoized.
type Inner interface {
	Normalize(img image.Image) (*scoring.Normalized, error)
	Compare(ctx context.Context, a, b *scoring.Normalized) (float64, error)
}

// Scorer wraps an Inner scorer with a score cache. Store failures never fail
// a comparison; the score is computed instead.
type Scorer struct {
	inner   Inner
	store   Store
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type Option func(*Scorer)

func WithTTL(ttl time.Duration) Option {
	return func(s *Scorer) {
		s.ttl = ttl
	}
}

// WithTimeout bounds every store round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scorer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New memoizes inner in store. params must be the params inner scores with.
func New(inner Inner, store Store, params scoring.Params, opts ...Option) *Scorer {
	s := &Scorer{
		inner:   inner,
		store:   store,
		prefix:  "ssim:" + params.Fingerprint(),
		ttl:     defaultTTL,
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) Normalize(img image.Image) (*scoring.Normalized, error) {
	return s.inner.Normalize(img)
}

func (s *Scorer) Compare(ctx context.Context, a, b *scoring.Normalized) (float64, error) {
	if a == nil || b == nil {
		return s.inner.Compare(ctx, a, b)
	}

	key := s.key(a, b)
	if score, ok := s.lookup(ctx, key); ok {
		s.hits.Add(1)
		return score, nil
	}

	score, err := s.inner.Compare(ctx, a, b)
	if err != nil {
		return 0, err
	}
	s.misses.Add(1)

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Set(storeCtx, key, strconv.FormatFloat(score, 'g', -1, 64), s.ttl); err != nil {
		s.logger.Warn("failed to cache score", zap.String("key", key), zap.Error(err))
	}
	return score, nil
}

func (s *Scorer) lookup(ctx context.Context, key string) (float64, bool) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.store.Get(lookupCtx, key)
	if err != nil {
		s.logger.Warn("score cache lookup failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if raw == "" {
		return 0, false
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.logger.Warn("discarding malformed cached score", zap.String("key", key), zap.String("value", raw))
		return 0, false
	}
	return score, true
}

// key orders the digests so that (a, b) and (b, a) share an entry; SSIM is
// symmetric.
func (s *Scorer) key(a, b *scoring.Normalized) string {
	lo, hi := a.Digest, b.Digest
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("%s:%016x:%016x", s.prefix, lo, hi)
}

// Stats reports cache hits and misses since construction.
func (s *Scorer) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}
