// Package scoring contains the structural similarity (SSIM) scorer: images are
// converted to grayscale, resized to a canonical square and compared window by
// window.
package scoring

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
)

// Normalize converts img to grayscale and resizes it to the canonical resolution.
func (s *Scorer) Normalize(img image.Image) (*Normalized, error) {
	gray, err := Grayscale(img, s.Params.Luma)
	if err != nil {
		return nil, err
	}

	scaled, err := Resize(gray, s.Params.Resolution, s.Params.Interpolation)
	if err != nil {
		return nil, err
	}

	n := toNormalized(scaled)
	log.Trace().Msgf("normalized %dx%d image to %dx%d (digest %016x)",
		gray.Bounds().Dx(), gray.Bounds().Dy(), s.Params.Resolution, s.Params.Resolution, n.Digest)
	return n, nil
}

// Compare scores two buffers produced by Normalize with the same params.
// The context is only checked before the comparison starts.
func (s *Scorer) Compare(ctx context.Context, a, b *Normalized) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if a == nil || b == nil {
		return 0, fmt.Errorf("%w: nil normalized buffer", ErrInvalidInput)
	}
	return SSIM(a.Pixels, b.Pixels, s.Params)
}

// Score normalizes both images and returns their SSIM in [-1, 1].
func (s *Scorer) Score(a, b image.Image) (float64, error) {
	na, err := s.Normalize(a)
	if err != nil {
		return 0, fmt.Errorf("first image: %w", err)
	}
	nb, err := s.Normalize(b)
	if err != nil {
		return 0, fmt.Errorf("second image: %w", err)
	}
	return s.Compare(context.Background(), na, nb)
}

// Score is a convenience wrapper around a default Scorer.
func Score(a, b image.Image) (float64, error) {
	s, err := NewScorer()
	if err != nil {
		return 0, err
	}
	return s.Score(a, b)
}
