package scoring

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/mat"
)

// Interpolations maps the configurable kernel names onto resize functions.
// When downsampling, nfnt/resize widens every kernel by the scale factor, so
// "bilinear" averages over the whole source footprint like an antialiasing
// filter. OpenCV's INTER_LINEAR samples only the nearest 2x2 pixels, so scores
// of large inputs differ from OpenCV based pipelines by more than rounding.
var Interpolations = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"mitchell": resize.MitchellNetravali,
	"lanczos2": resize.Lanczos2,
	"lanczos3": resize.Lanczos3,
}

// Grayscale converts img into a single channel image of the same size using
// the weighted sum of its straight RGB channels. Alpha is ignored.
func Grayscale(img image.Image, w LumaWeights) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	if buf, ok := img.(*Buffer); ok {
		if err := buf.Validate(); err != nil {
			return nil, err
		}
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidInput, bounds.Dx(), bounds.Dy())
	}

	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := range bounds.Dy() {
		row := gray.Pix[y*gray.Stride:]
		for x := range bounds.Dx() {
			r, g, b := straightRGB(img, bounds.Min.X+x, bounds.Min.Y+y)
			row[x] = luma(r, g, b, w)
		}
	}
	return gray, nil
}

func straightRGB(img image.Image, x, y int) (r, g, b uint8) {
	switch src := img.(type) {
	case *Buffer:
		return src.rgbAt(x, y)
	case *image.NRGBA:
		c := src.NRGBAAt(x, y)
		return c.R, c.G, c.B
	case *image.Gray:
		v := src.GrayAt(x, y).Y
		return v, v, v
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c.R, c.G, c.B
}

func luma(r, g, b uint8, w LumaWeights) uint8 {
	v := math.Round(w.R*float64(r) + w.G*float64(g) + w.B*float64(b))
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint8:
		return math.MaxUint8
	}
	return uint8(v)
}

// Resize scales gray to a size x size square, ignoring the aspect ratio.
func Resize(gray *image.Gray, size int, interpolation string) (*image.Gray, error) {
	fn, ok := Interpolations[interpolation]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interpolation %q", ErrInvalidParams, interpolation)
	}
	scaled := resize.Resize(uint(size), uint(size), gray, fn)
	out, ok := scaled.(*image.Gray)
	if !ok {
		// resize keeps *image.Gray as is; anything else is converted here.
		out = image.NewGray(scaled.Bounds())
		for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
			for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
				out.Set(x, y, scaled.At(x, y))
			}
		}
	}
	return out, nil
}

// toNormalized copies the gray pixels into a dense matrix and digests them.
func toNormalized(gray *image.Gray) *Normalized {
	bounds := gray.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	data := make([]float64, rows*cols)
	digest := xxhash.New()

	for y := range rows {
		start := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		row := gray.Pix[start : start+cols]
		_, _ = digest.Write(row)
		for x, v := range row {
			data[y*cols+x] = float64(v)
		}
	}

	return &Normalized{
		Pixels: mat.NewDense(rows, cols, data),
		Digest: digest.Sum64(),
	}
}
