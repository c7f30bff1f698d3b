package render

import (
	"context"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Compositor assembles base surfaces by drawing tile images directly into an
// RGBA buffer. It needs no display and is the headless variant.
type Compositor struct {
	opts Options
}

func NewCompositor(opts Options) *Compositor {
	return &Compositor{opts: opts.withDefaults()}
}

func (c *Compositor) Name() string { return BackendCompositor }

// Background returns the colour untouched pixels keep.
func (c *Compositor) Background() color.Color { return c.opts.Background }

// RenderBase implements Renderer.
func (c *Compositor) RenderBase(ctx context.Context, req BaseRequest) (*image.RGBA, error) {
	layer, err := resolveLayer(c.opts.Layers, req)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, req.Size.X, req.Size.Y))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.opts.Background), image.Point{}, draw.Src)

	err = fetchTiles(ctx, c.opts, layer, req, func(pt placedTile, tile image.Image) {
		drawTile(dst, pt.dst, tile)
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// RenderTracks implements Renderer.
func (c *Compositor) RenderTracks(dst *image.RGBA, lines []Polyline) error {
	DrawPolylines(dst, lines)
	return nil
}

// drawTile copies tile into r, rescaling when the image size differs from
// the layer's nominal tile size.
func drawTile(dst *image.RGBA, r image.Rectangle, tile image.Image) {
	sb := tile.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(dst, r, tile, sb.Min, draw.Over)
		return
	}
	draw.ApproxBiLinear.Scale(dst, r, tile, sb, draw.Over, nil)
}
