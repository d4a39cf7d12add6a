package main

import (
	"context"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/simrank/internal/ranking"
	"github.com/tensorplex-labs/simrank/internal/scoring"
	"github.com/tensorplex-labs/simrank/internal/utils/logger"
)

func main() {
	logger.Init()

	testBlackWhite()
	testDuplicateContent()
	testDegradedCopies()
}

func noise(w, h int, seed uint64) *image.NRGBA {
	rng := rand.New(rand.NewPCG(seed, seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
		if i%4 == 3 {
			img.Pix[i] = 0xff
		}
	}
	return img
}

func logRanking(result ranking.RankedResult) {
	for i, m := range result {
		log.Info().Int("rank", i+1).Str("id", m.ID).Float64("score", m.Score).Msgf("%s scored %f", m.ID, m.Score)
	}
}

func testBlackWhite() {
	log.Info().Msg("--- Testing black vs white ---")
	black := imaging.New(64, 64, color.Black)
	white := imaging.New(64, 64, color.White)

	score, err := scoring.Score(black, white)
	if err != nil {
		log.Error().Err(err).Msg("score failed")
		return
	}
	log.Info().Float64("score", score).Msgf("black vs white scored %f", score)

	result, err := ranking.Rank(context.Background(), black, []ranking.Candidate{
		{ID: "B", Image: white},
		{ID: "A", Image: black},
	})
	if err != nil {
		log.Error().Err(err).Msg("rank failed")
		return
	}
	logRanking(result)
}

func testDuplicateContent() {
	log.Info().Msg("--- Testing duplicate candidates ---")
	ref := noise(120, 80, 1)
	x := noise(120, 80, 2)

	result, err := ranking.Rank(context.Background(), ref, []ranking.Candidate{
		{ID: "x", Image: x},
		{ID: "y", Image: x},
	})
	if err != nil {
		log.Error().Err(err).Msg("rank failed")
		return
	}
	logRanking(result)
}

func testDegradedCopies() {
	log.Info().Msg("--- Testing degraded copies ---")
	ref := noise(200, 150, 3)

	result, err := ranking.Rank(context.Background(), ref, []ranking.Candidate{
		{ID: "inverted", Image: imaging.Invert(ref)},
		{ID: "blur-3", Image: imaging.Blur(ref, 3)},
		{ID: "half-size", Image: imaging.Resize(ref, 100, 75, imaging.Lanczos)},
		{ID: "blur-1", Image: imaging.Blur(ref, 1)},
		{ID: "unrelated", Image: noise(200, 150, 4)},
	})
	if err != nil {
		log.Error().Err(err).Msg("rank failed")
		return
	}
	logRanking(result)
}
