package main

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gocie/ciecolor"
	"github.com/gocie/ciecolor/internal/colorspace"
)

// RenderSwatchGrid evaluates cs/state over a grid x grid sweep of the first
// two ABC channels (holding the third fixed at 0.5) and returns the result
// as an NRGBA image, scaled up by factor with a nearest-neighbor resampler
// so a small swatch grid is visible at normal viewing size.
func RenderSwatchGrid(state *ciecolor.ImagerState, cs *colorspace.ABC, grid, factor int) *image.NRGBA {
	base := image.NewNRGBA(image.Rect(0, 0, grid, grid))

	buf := make([]byte, 4)
	out := make([]float64, 4)
	for y := 0; y < grid; y++ {
		v := float64(y) / float64(grid-1)
		for x := 0; x < grid; x++ {
			u := float64(x) / float64(grid-1)
			n, err := ciecolor.ConcretizeCIEABC(cs, state, [3]float64{u, v, 0.5}, out)
			if err != nil {
				continue
			}
			packPixel(buf, out, n)
			off := base.PixOffset(x, y)
			copy(base.Pix[off:off+4], buf)
		}
	}

	if factor <= 1 {
		return base
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, grid*factor, grid*factor))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), base, base.Bounds(), xdraw.Over, nil)
	return scaled
}

// packPixel writes the n channels of out (3 => RGB, opaque; 4 => RGBA) into
// buf as NRGBA bytes.
func packPixel(buf []byte, out []float64, n int) {
	for i := 0; i < 3 && i < n; i++ {
		buf[i] = byteClamp(out[i])
	}
	if n >= 4 {
		buf[3] = byteClamp(out[3])
	} else {
		buf[3] = 255
	}
}

func byteClamp(f float64) byte {
	v := f * 255
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v + 0.5)
	}
}
