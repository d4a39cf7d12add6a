package scoring

import (
	"fmt"
	"math"
)

// Scorer normalizes images and compares them with SSIM. A Scorer is immutable
// after construction and safe for concurrent use.
type Scorer struct {
	Params Params
}

type ScorerOption func(*Scorer)

func WithResolution(size int) ScorerOption {
	return func(s *Scorer) {
		s.Params.Resolution = size
	}
}

func WithWindowSize(size int) ScorerOption {
	return func(s *Scorer) {
		s.Params.WindowSize = size
	}
}

func WithStabilizers(k1, k2 float64) ScorerOption {
	return func(s *Scorer) {
		s.Params.K1 = k1
		s.Params.K2 = k2
	}
}

func WithDataRange(dataRange float64) ScorerOption {
	return func(s *Scorer) {
		s.Params.DataRange = dataRange
	}
}

func WithLumaWeights(w LumaWeights) ScorerOption {
	return func(s *Scorer) {
		s.Params.Luma = w
	}
}

func WithInterpolation(name string) ScorerOption {
	return func(s *Scorer) {
		s.Params.Interpolation = name
	}
}

func WithParams(p Params) ScorerOption {
	return func(s *Scorer) {
		s.Params = p
	}
}

// NewScorer builds a scorer from DefaultParams and the given options.
func NewScorer(opts ...ScorerOption) (*Scorer, error) {
	s := &Scorer{
		Params: DefaultParams(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.Params.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the params describe a computable SSIM.
func (p Params) Validate() error {
	switch {
	case p.Resolution <= 0:
		return fmt.Errorf("%w: resolution must be positive, got %d", ErrInvalidParams, p.Resolution)
	case p.WindowSize < 3 || p.WindowSize%2 == 0:
		return fmt.Errorf("%w: window size must be odd and >= 3, got %d", ErrInvalidParams, p.WindowSize)
	case p.WindowSize > p.Resolution:
		return fmt.Errorf("%w: window size %d exceeds resolution %d", ErrInvalidParams, p.WindowSize, p.Resolution)
	case !finite(p.K1, p.K2) || p.K1 <= 0 || p.K2 <= 0:
		return fmt.Errorf("%w: stabilizers must be positive and finite, got K1=%g K2=%g", ErrInvalidParams, p.K1, p.K2)
	case !finite(p.DataRange) || p.DataRange <= 0:
		return fmt.Errorf("%w: data range must be positive and finite, got %g", ErrInvalidParams, p.DataRange)
	case !finite(p.Luma.R, p.Luma.G, p.Luma.B) || p.Luma.R < 0 || p.Luma.G < 0 || p.Luma.B < 0 || p.Luma.R+p.Luma.G+p.Luma.B == 0:
		return fmt.Errorf("%w: luma weights must be finite, non-negative and not all zero, got %+v", ErrInvalidParams, p.Luma)
	}
	if _, ok := Interpolations[p.Interpolation]; !ok {
		return fmt.Errorf("%w: unknown interpolation %q", ErrInvalidParams, p.Interpolation)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
