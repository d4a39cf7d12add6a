package scoring

import (
	"fmt"
	"image"
	"image/color"
)

// Buffer is a raw, interleaved 8-bit pixel grid. Channels is 1 (gray),
// 3 (RGB) or 4 (RGBA, straight alpha). Pix is row-major without padding.
//
// Buffer implements image.Image, so it can be scored directly.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height, channels int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Validate reports why the buffer cannot be converted to grayscale, if it can't.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: empty buffer %dx%d", ErrInvalidInput, b.Width, b.Height)
	}
	switch b.Channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidInput, b.Channels)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: buffer holds %d bytes, %dx%dx%d needs %d",
			ErrInvalidInput, len(b.Pix), b.Width, b.Height, b.Channels, want)
	}
	return nil
}

func (b *Buffer) ColorModel() color.Model {
	switch b.Channels {
	case 1:
		return color.GrayModel
	case 4:
		return color.NRGBAModel
	}
	return color.RGBAModel
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

func (b *Buffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.NRGBA{}
	}
	i := (y*b.Width + x) * b.Channels
	switch b.Channels {
	case 1:
		return color.Gray{Y: b.Pix[i]}
	case 3:
		return color.RGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xff}
	default:
		return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
	}
}

// rgbAt returns the straight (non premultiplied) 8-bit color of a pixel.
func (b *Buffer) rgbAt(x, y int) (r, g, bl uint8) {
	i := (y*b.Width + x) * b.Channels
	if b.Channels == 1 {
		return b.Pix[i], b.Pix[i], b.Pix[i]
	}
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}
