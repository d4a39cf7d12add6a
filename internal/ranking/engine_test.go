package ranking

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tensorplex-labs/simrank/internal/scoring"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func noise(w, h int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, 42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 0xff
			continue
		}
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

func newSmallEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	s, err := scoring.NewScorer(scoring.WithResolution(32))
	require.NoError(t, err)
	return NewEngine(s, opts...)
}

// stubScorer scores a candidate by looking up the width of its image.
type stubScorer struct {
	scores map[int]float64
	calls  atomic.Int64
}

func (s *stubScorer) Normalize(img image.Image) (*scoring.Normalized, error) {
	if img == nil {
		return nil, scoring.ErrInvalidInput
	}
	return &scoring.Normalized{Digest: uint64(img.Bounds().Dx())}, nil
}

func (s *stubScorer) Compare(_ context.Context, _, b *scoring.Normalized) (float64, error) {
	s.calls.Add(1)
	return s.scores[int(b.Digest)], nil
}

func widthImage(w int) image.Image {
	return image.NewGray(image.Rect(0, 0, w, 1))
}

func TestRankEmptyCandidates(t *testing.T) {
	e := newSmallEngine(t)

	result, err := e.Rank(context.Background(), solid(10, 10, color.Black), nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)

	_, err = e.TopMatch(context.Background(), solid(10, 10, color.Black), []Candidate{})
	require.ErrorIs(t, err, ErrEmptyCandidates)
}

func TestRankBlackWhiteScenario(t *testing.T) {
	ref := solid(10, 10, color.Black)
	candidates := []Candidate{
		{ID: "B", Image: solid(10, 10, color.White)},
		{ID: "A", Image: solid(10, 10, color.Black)},
	}

	result, err := Rank(context.Background(), ref, candidates)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, []string{"A", "B"}, result.IDs())
	assert.InDelta(t, 1.0, result[0].Score, 1e-6)
	assert.Less(t, result[1].Score, 0.01)

	top, err := TopMatch(context.Background(), ref, candidates)
	require.NoError(t, err)
	assert.Equal(t, "A", top)
}

func TestRankDuplicateContentKeepsInputOrder(t *testing.T) {
	ref := noise(20, 20, 1)
	imgX := noise(20, 20, 2)

	result, err := newSmallEngine(t, WithWorkers(4)).Rank(context.Background(), ref, []Candidate{
		{ID: "x", Image: imgX},
		{ID: "y", Image: imgX},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, result.IDs())
	assert.Equal(t, result[0].Score, result[1].Score)
}

func TestRankCompletenessAndOrder(t *testing.T) {
	e := newSmallEngine(t, WithWorkers(3))
	ref := noise(24, 18, 100)

	for n := range 9 {
		t.Run(fmt.Sprintf("%d candidates", n), func(t *testing.T) {
			candidates := make([]Candidate, n)
			for i := range candidates {
				candidates[i] = Candidate{ID: fmt.Sprintf("img-%d", i), Image: noise(10+i, 14, uint64(i))}
			}
			if n > 2 {
				candidates[1].Image = ref
			}

			result, err := e.Rank(context.Background(), ref, candidates)
			require.NoError(t, err)
			require.Len(t, result, n)

			for i := 1; i < len(result); i++ {
				assert.GreaterOrEqual(t, result[i-1].Score, result[i].Score)
			}

			var want []string
			for _, c := range candidates {
				want = append(want, c.ID)
			}
			assert.ElementsMatch(t, want, result.IDs())

			if n > 2 {
				top, ok := result.Top()
				require.True(t, ok)
				assert.Equal(t, "img-1", top.ID)
				assert.InDelta(t, 1.0, top.Score, 1e-6)
			}
		})
	}
}

func TestRankStableUnderConcurrency(t *testing.T) {
	stub := &stubScorer{scores: map[int]float64{1: 0.5, 2: 0.9, 3: 0.5, 4: -0.2, 5: 0.9, 6: 0.5}}
	candidates := []Candidate{
		{ID: "a", Image: widthImage(1)},
		{ID: "b", Image: widthImage(2)},
		{ID: "c", Image: widthImage(3)},
		{ID: "d", Image: widthImage(4)},
		{ID: "e", Image: widthImage(5)},
		{ID: "f", Image: widthImage(6)},
	}

	for _, workers := range []int{1, 2, 6, 16} {
		e := NewEngine(stub, WithWorkers(workers))
		result, err := e.Rank(context.Background(), widthImage(99), candidates)
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "e", "a", "c", "f", "d"}, result.IDs(), "workers %d", workers)
		assert.Equal(t, []float64{0.9, 0.9, 0.5, 0.5, 0.5, -0.2}, result.Scores())
	}
	assert.Equal(t, int64(4*len(candidates)), stub.calls.Load())
}

func TestRankWorkerCountDoesNotChangeScores(t *testing.T) {
	ref := noise(30, 30, 7)
	candidates := make([]Candidate, 10)
	for i := range candidates {
		candidates[i] = Candidate{ID: fmt.Sprint(i), Image: noise(30, 20+i, uint64(i))}
	}

	serial, err := newSmallEngine(t, WithWorkers(1)).Rank(context.Background(), ref, candidates)
	require.NoError(t, err)
	parallel, err := newSmallEngine(t, WithWorkers(8), WithLogger(zap.NewExample())).Rank(context.Background(), ref, candidates)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestRankInvalidCandidateFailsWholeCall(t *testing.T) {
	candidates := []Candidate{
		{ID: "ok-1", Image: noise(10, 10, 1)},
		{ID: "ok-2", Image: noise(10, 10, 2)},
		{ID: "broken", Image: nil},
		{ID: "ok-3", Image: noise(10, 10, 3)},
	}

	result, err := newSmallEngine(t, WithWorkers(1)).Rank(context.Background(), noise(10, 10, 9), candidates)
	require.Error(t, err)
	assert.Nil(t, result)

	var candErr *CandidateError
	require.ErrorAs(t, err, &candErr)
	assert.Equal(t, "broken", candErr.ID)
	assert.Equal(t, 2, candErr.Index)
	assert.ErrorIs(t, err, scoring.ErrInvalidInput)
	assert.Contains(t, err.Error(), "broken")
}

func TestRankInvalidReference(t *testing.T) {
	_, err := newSmallEngine(t).Rank(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), []Candidate{
		{ID: "a", Image: noise(10, 10, 1)},
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	assert.ErrorIs(t, err, scoring.ErrInvalidInput)

	_, err = newSmallEngine(t).TopMatch(context.Background(), nil, []Candidate{
		{ID: "a", Image: noise(10, 10, 1)},
	})
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestRankCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSmallEngine(t).Rank(ctx, noise(10, 10, 1), []Candidate{
		{ID: "a", Image: noise(10, 10, 2)},
		{ID: "b", Image: noise(10, 10, 3)},
	})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRankLeavesCandidatesUntouched(t *testing.T) {
	candidates := []Candidate{
		{ID: "white", Image: solid(8, 8, color.White)},
		{ID: "black", Image: solid(8, 8, color.Black)},
	}
	before := make([]Candidate, len(candidates))
	copy(before, candidates)

	_, err := newSmallEngine(t).Rank(context.Background(), solid(8, 8, color.Black), candidates)
	require.NoError(t, err)
	assert.Equal(t, before, candidates)
}

func BenchmarkRank(b *testing.B) {
	ref := noise(640, 480, 1)
	candidates := make([]Candidate, 16)
	for i := range candidates {
		candidates[i] = Candidate{ID: fmt.Sprint(i), Image: noise(640, 480, uint64(i+2))}
	}
	e := NewEngine(nil)
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		_, _ = e.Rank(ctx, ref, candidates)
	}
}
