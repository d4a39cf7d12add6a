// Package ranking orders candidate images by their structural similarity to a
// reference image.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tensorplex-labs/simrank/internal/scoring"
)

// Scorer is the subset of scoring.Scorer the engine relies on.
type Scorer interface {
	Normalize(img image.Image) (*scoring.Normalized, error)
	Compare(ctx context.Context, a, b *scoring.Normalized) (float64, error)
}

// Engine ranks candidates against a reference. It holds no per-call state and
// may be shared between goroutines.
type Engine struct {
	scorer  Scorer
	workers int
	logger  *zap.Logger
}

type EngineOption func(*Engine)

// WithWorkers bounds the number of candidates scored concurrently. Values
// below one fall back to GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an engine backed by scorer, or by a default SSIM scorer
// when scorer is nil.
func NewEngine(scorer Scorer, opts ...EngineOption) *Engine {
	if scorer == nil {
		scorer = &scoring.Scorer{Params: scoring.DefaultParams()}
	}

	e := &Engine{
		scorer: scorer,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Rank scores every candidate against reference and returns them ordered from
// most to least similar. Candidates with equal scores keep their input order.
// The result always holds exactly one entry per candidate; if any candidate
// cannot be scored the whole call fails with a *CandidateError.
func (e *Engine) Rank(ctx context.Context, reference image.Image, candidates []Candidate) (RankedResult, error) {
	if len(candidates) == 0 {
		return RankedResult{}, nil
	}

	startTime := time.Now()
	ref, err := e.scorer.Normalize(reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}

	result := make(RankedResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			score, err := e.score(gctx, ref, c)
			if err != nil {
				return &CandidateError{Index: i, ID: c.ID, Err: err}
			}
			log.Trace().Msgf("candidate %s scored %f", c.ID, score)
			result[i] = Match{ID: c.ID, Score: score}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Debug("ranking failed", zap.Int("candidates", len(candidates)), zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(result, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	e.logger.Debug("ranked candidates",
		zap.Int("candidates", len(result)),
		zap.Int("workers", e.workers),
		zap.String("top_id", result[0].ID),
		zap.Float64("top_score", result[0].Score),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	return result, nil
}

func (e *Engine) score(ctx context.Context, ref *scoring.Normalized, c Candidate) (float64, error) {
	n, err := e.scorer.Normalize(c.Image)
	if err != nil {
		return 0, err
	}
	return e.scorer.Compare(ctx, ref, n)
}

// TopMatch returns the identifier of the candidate most similar to reference.
func (e *Engine) TopMatch(ctx context.Context, reference image.Image, candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", ErrEmptyCandidates
	}

	result, err := e.Rank(ctx, reference, candidates)
	if err != nil {
		return "", err
	}
	return result[0].ID, nil
}

// Rank ranks candidates with a default engine.
func Rank(ctx context.Context, reference image.Image, candidates []Candidate) (RankedResult, error) {
	return NewEngine(nil).Rank(ctx, reference, candidates)
}

// TopMatch picks the most similar candidate with a default engine.
func TopMatch(ctx context.Context, reference image.Image, candidates []Candidate) (string, error) {
	return NewEngine(nil).TopMatch(ctx, reference, candidates)
}
