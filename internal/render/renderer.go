package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"github.com/paulmach/orb/maptile"
	"github.com/piwi3910/StrataLines/internal/model"
)

// Renderer backend names.
const (
	BackendAuto       = "auto"
	BackendScene      = "scene"
	BackendCompositor = "compositor"
)

var (
	ErrUnknownLayer   = errors.New("unknown tile layer")
	ErrZoomOutOfRange = errors.New("zoom not supported by tile layer")
	ErrUnknownBackend = errors.New("unknown render backend")
	ErrInvalidSurface = errors.New("invalid surface size")
)

// BaseRequest describes one base surface. Origin is the world-pixel position
// of the surface's top-left corner at Zoom.
type BaseRequest struct {
	Bounds   model.GeoBounds
	Zoom     int
	LayerKey string
	Origin   image.Point
	Size     image.Point
}

// Renderer produces base map surfaces and composites track lines onto them.
type Renderer interface {
	Name() string
	RenderBase(ctx context.Context, req BaseRequest) (*image.RGBA, error)
	RenderTracks(dst *image.RGBA, lines []Polyline) error

	// Background is the colour of pixels no tile covered.
	Background() color.Color
}

// Options configures either renderer variant.
type Options struct {
	Tiles      TileSource
	Layers     model.TileLayers
	Background color.Color
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Background == nil {
		o.Background = DefaultBackground
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Layers == nil {
		o.Layers = model.DefaultTileLayers
	}
	return o
}

// Detect resolves backend to a concrete variant. "auto" picks the scene
// renderer when a display server is reachable and the compositor otherwise.
func Detect(backend string, getenv func(string) string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendAuto:
		if getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != "" {
			return BackendScene, nil
		}
		return BackendCompositor, nil
	case BackendScene:
		return BackendScene, nil
	case BackendCompositor:
		return BackendCompositor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// New builds the renderer for a backend returned by Detect.
func New(backend string, opts Options) (Renderer, error) {
	switch backend {
	case BackendScene:
		return NewScene(opts), nil
	case BackendCompositor:
		return NewCompositor(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// resolveLayer looks up the request's layer and checks it serves the zoom.
func resolveLayer(layers model.TileLayers, req BaseRequest) (model.TileLayer, error) {
	layer, ok := layers.Get(req.LayerKey)
	if !ok {
		return model.TileLayer{}, fmt.Errorf("%w: %q", ErrUnknownLayer, req.LayerKey)
	}
	if req.Zoom < 0 || (layer.MaxZoom > 0 && req.Zoom > layer.MaxZoom) {
		return model.TileLayer{}, fmt.Errorf("%w: layer %q serves up to zoom %d, requested %d", ErrZoomOutOfRange, layer.Key, layer.MaxZoom, req.Zoom)
	}
	if req.Size.X <= 0 || req.Size.Y <= 0 {
		return model.TileLayer{}, fmt.Errorf("%w: %dx%d", ErrInvalidSurface, req.Size.X, req.Size.Y)
	}
	return layer, nil
}

// placedTile is a tile address and where it lands on the surface.
type placedTile struct {
	tile maptile.Tile
	dst  image.Rectangle
}

// coveringTiles lists the tiles intersecting the request's pixel window.
// Columns wrap around the antimeridian; rows outside the world are skipped.
func coveringTiles(req BaseRequest, tileSize int) []placedTile {
	n := 1 << uint(req.Zoom)
	x0 := floorDiv(req.Origin.X, tileSize)
	x1 := floorDiv(req.Origin.X+req.Size.X-1, tileSize)
	y0 := floorDiv(req.Origin.Y, tileSize)
	y1 := floorDiv(req.Origin.Y+req.Size.Y-1, tileSize)

	var tiles []placedTile
	for ty := y0; ty <= y1; ty++ {
		if ty < 0 || ty >= n {
			continue
		}
		for tx := x0; tx <= x1; tx++ {
			wx := ((tx % n) + n) % n
			at := image.Pt(tx*tileSize-req.Origin.X, ty*tileSize-req.Origin.Y)
			tiles = append(tiles, placedTile{
				tile: maptile.New(uint32(wx), uint32(ty), maptile.Zoom(req.Zoom)),
				dst:  image.Rectangle{Min: at, Max: at.Add(image.Pt(tileSize, tileSize))},
			})
		}
	}
	return tiles
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// fetchTiles loads every covering tile and hands it to draw. Missing tiles are
// skipped; any other failure aborts.
func fetchTiles(ctx context.Context, opts Options, layer model.TileLayer, req BaseRequest, draw func(placedTile, image.Image)) error {
	if opts.Tiles == nil {
		return errors.New("no tile source configured")
	}
	for _, pt := range coveringTiles(req, layer.Size()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := opts.Tiles.Tile(ctx, layer, pt.tile)
		if errors.Is(err, ErrTileNotFound) {
			opts.Logger.Debug("tile missing, keeping background", "layer", layer.Key, "z", pt.tile.Z, "x", pt.tile.X, "y", pt.tile.Y)
			continue
		}
		if err != nil {
			return fmt.Errorf("tile %d/%d/%d: %w", pt.tile.Z, pt.tile.X, pt.tile.Y, err)
		}
		draw(pt, img)
	}
	return nil
}
