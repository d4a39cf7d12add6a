package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LumaWeights are the per-channel coefficients of the color-to-grayscale transform.
type LumaWeights struct {
	R float64
	G float64
	B float64
}

// Params holds every tunable of the scorer. Two scores are only comparable when
// they were produced with equal Params.
type Params struct {
	Resolution    int         // width and height of the canonical normalized buffer
	WindowSize    int         // side of the square uniform SSIM window, odd
	K1            float64     // luminance stabilizer
	K2            float64     // contrast stabilizer
	DataRange     float64     // dynamic range of the grayscale pixels
	Luma          LumaWeights // grayscale weighting
	Interpolation string      // resize kernel, see Interpolations
}

// Fingerprint is a compact, stable rendering of the params, used to namespace
// cached scores.
func (p Params) Fingerprint() string {
	return fmt.Sprintf("r%d:w%d:k%g,%g:l%g:y%g,%g,%g:%s",
		p.Resolution, p.WindowSize, p.K1, p.K2, p.DataRange,
		p.Luma.R, p.Luma.G, p.Luma.B, p.Interpolation)
}

// Normalized is a grayscale image resized to the canonical resolution.
type Normalized struct {
	Pixels *mat.Dense // rows x cols, values in [0, DataRange]
	Digest uint64     // xxhash of the 8-bit grayscale pixels
}

// Dims returns rows and columns of the normalized buffer.
func (n *Normalized) Dims() (rows, cols int) {
	return n.Pixels.Dims()
}
