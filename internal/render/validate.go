package render

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrBaseTilesNotRendered = errors.New("Export failed: base map tiles were not rendered before capture.")
	ErrTracksNotRendered    = errors.New("Export failed: tracks were not rendered before capture.")
)

// AssertBaseTilesRendered fails with ErrBaseTilesNotRendered when every pixel
// of img equals background.
func AssertBaseTilesRendered(img image.Image, background color.Color) error {
	br, bg, bb, ba := background.RGBA()

	if rgba, ok := img.(*image.RGBA); ok {
		want := [4]uint8{uint8(br >> 8), uint8(bg >> 8), uint8(bb >> 8), uint8(ba >> 8)}
		b := rgba.Rect
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				if row[i] != want[0] || row[i+1] != want[1] || row[i+2] != want[2] || row[i+3] != want[3] {
					return nil
				}
			}
		}
		return ErrBaseTilesNotRendered
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r != br || g != bg || bl != bb || a != ba {
				return nil
			}
		}
	}
	return ErrBaseTilesNotRendered
}

// AssertLinesRendered fails with ErrTracksNotRendered when no pixel of img has
// a non-zero alpha.
func AssertLinesRendered(img image.Image) error {
	if rgba, ok := img.(*image.RGBA); ok {
		b := rgba.Rect
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 3; i < len(row); i += 4 {
				if row[i] != 0 {
					return nil
				}
			}
		}
		return ErrTracksNotRendered
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return nil
			}
		}
	}
	return ErrTracksNotRendered
}
