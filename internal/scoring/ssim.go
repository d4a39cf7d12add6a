package scoring

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// windowSums holds summed-area tables of x, y, x², y² and xy. Every table
// has one extra leading row and column of zeros.
type windowSums struct {
	x, y, xx, yy, xy *mat.Dense
}

func summedAreas(a, b *mat.Dense) windowSums {
	rows, cols := a.Dims()
	s := windowSums{
		x:  mat.NewDense(rows+1, cols+1, nil),
		y:  mat.NewDense(rows+1, cols+1, nil),
		xx: mat.NewDense(rows+1, cols+1, nil),
		yy: mat.NewDense(rows+1, cols+1, nil),
		xy: mat.NewDense(rows+1, cols+1, nil),
	}
	for i := range rows {
		for j := range cols {
			va, vb := a.At(i, j), b.At(i, j)
			accumulate(s.x, i, j, va)
			accumulate(s.y, i, j, vb)
			accumulate(s.xx, i, j, va*va)
			accumulate(s.yy, i, j, vb*vb)
			accumulate(s.xy, i, j, va*vb)
		}
	}
	return s
}

func accumulate(t *mat.Dense, i, j int, v float64) {
	t.Set(i+1, j+1, v+t.At(i, j+1)+t.At(i+1, j)-t.At(i, j))
}

// boxSum sums the rectangle [r0, r1) x [c0, c1) of the source matrix.
func boxSum(t *mat.Dense, r0, c0, r1, c1 int) float64 {
	return t.At(r1, c1) - t.At(r0, c1) - t.At(r1, c0) + t.At(r0, c0)
}

// SSIM computes the mean structural similarity of two equally sized grayscale
// matrices with a uniform square window and sample covariance. Windows that
// would cross the border are not evaluated, matching the crop applied by
// skimage.metrics.structural_similarity.
func SSIM(a, b *mat.Dense, p Params) (float64, error) {
	rows, cols := a.Dims()
	if br, bc := b.Dims(); br != rows || bc != cols {
		return 0, fmt.Errorf("%w: dimensions differ (%dx%d vs %dx%d)", ErrInvalidInput, rows, cols, br, bc)
	}
	win := p.WindowSize
	if rows < win || cols < win {
		return 0, fmt.Errorf("%w: %dx%d is smaller than the %d px window", ErrInvalidInput, rows, cols, win)
	}

	pad := (win - 1) / 2
	np := float64(win * win)
	covNorm := np / (np - 1)
	c1 := (p.K1 * p.DataRange) * (p.K1 * p.DataRange)
	c2 := (p.K2 * p.DataRange) * (p.K2 * p.DataRange)

	sums := summedAreas(a, b)
	local := make([]float64, 0, (rows-2*pad)*(cols-2*pad))
	for i := pad; i < rows-pad; i++ {
		for j := pad; j < cols-pad; j++ {
			r0, c0, r1, cEnd := i-pad, j-pad, i+pad+1, j+pad+1

			ux := boxSum(sums.x, r0, c0, r1, cEnd) / np
			uy := boxSum(sums.y, r0, c0, r1, cEnd) / np
			uxx := boxSum(sums.xx, r0, c0, r1, cEnd) / np
			uyy := boxSum(sums.yy, r0, c0, r1, cEnd) / np
			uxy := boxSum(sums.xy, r0, c0, r1, cEnd) / np

			vx := covNorm * (uxx - ux*ux)
			vy := covNorm * (uyy - uy*uy)
			vxy := covNorm * (uxy - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			local = append(local, num/den)
		}
	}

	return clampScore(floats.Sum(local) / float64(len(local))), nil
}

// clampScore keeps rounding noise from pushing a score outside [-1, 1].
func clampScore(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
