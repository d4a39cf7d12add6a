package scoring

const (
	DefaultResolution    = 300
	DefaultWindowSize    = 7
	DefaultK1            = 0.01
	DefaultK2            = 0.03
	DefaultDataRange     = 255.0
	DefaultInterpolation = "bilinear"
)

// Rec. 601 luma, the weighting OpenCV uses for COLOR_BGR2GRAY.
var DefaultLumaWeights = LumaWeights{R: 0.299, G: 0.587, B: 0.114}

// DefaultParams mirrors skimage.metrics.structural_similarity on 8-bit input.
func DefaultParams() Params {
	return Params{
		Resolution:    DefaultResolution,
		WindowSize:    DefaultWindowSize,
		K1:            DefaultK1,
		K2:            DefaultK2,
		DataRange:     DefaultDataRange,
		Luma:          DefaultLumaWeights,
		Interpolation: DefaultInterpolation,
	}
}
