package export

import (
	"image"
	"math"

	"github.com/piwi3910/StrataLines/internal/engine"
	"github.com/piwi3910/StrataLines/internal/model"
)

// Plan is the subdivision grid for one export.
type Plan struct {
	Zoom         int
	Origin       image.Point // World-pixel position of the composite's top-left corner
	Width        int
	Height       int
	Rows         int
	Cols         int
	Subdivisions []model.Subdivision

	// Projection maps coordinates to composite pixels.
	Projection engine.WebMercator
}

// Bounds returns the composite's pixel rectangle.
func (p Plan) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// LocalProjection maps coordinates to the pixels of subdivision s.
func (p Plan) LocalProjection(s model.Subdivision) engine.WebMercator {
	return p.Projection.Offset(float64(s.X), float64(s.Y))
}

// MaxSubdivisions caps the grid size regardless of the pixel limit.
const MaxSubdivisions = 1 << 16

// Subdivide splits the export into a row-major grid in which no subdivision
// is wider or taller than cfg.MaxDimension pixels. Pixel boundaries are
// integers shared by neighbours, and geographic edges are derived from them,
// so the grid tiles both the composite and the export bounds exactly.
//
// A composite larger than maxPixels (when positive) or a grid of more than
// MaxSubdivisions cells is rejected before anything is allocated.
func Subdivide(cfg model.ExportConfig, tileSize, maxPixels int) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, invalidConfig("%v", err)
	}

	zoom := cfg.ExportZoom()
	proj := engine.NewWebMercator(zoom, tileSize)
	nw := proj.Project(cfg.Bounds.NW())
	se := proj.Project(cfg.Bounds.SE())

	x0 := int(math.Floor(nw.X))
	y0 := int(math.Floor(nw.Y))
	width := max(1, int(math.Ceil(se.X))-x0)
	height := max(1, int(math.Ceil(se.Y))-y0)

	cols := (width + cfg.MaxDimension - 1) / cfg.MaxDimension
	rows := (height + cfg.MaxDimension - 1) / cfg.MaxDimension

	if maxPixels > 0 && width*height > maxPixels {
		return Plan{}, invalidConfig("composite of %dx%d px exceeds the %d px limit", width, height, maxPixels)
	}
	if cols*rows > MaxSubdivisions {
		return Plan{}, invalidConfig("%dx%d subdivisions exceed the limit of %d; raise the max dimension", cols, rows, MaxSubdivisions)
	}

	xs := splitPoints(width, cols)
	ys := splitPoints(height, rows)
	world := proj.WithOrigin(float64(x0), float64(y0))

	lons := make([]float64, cols+1)
	for i, x := range xs {
		switch i {
		case 0:
			lons[i] = cfg.Bounds.West
		case cols:
			lons[i] = cfg.Bounds.East
		default:
			lons[i] = world.Unproject(engine.Point{X: float64(x)}).Lon
		}
	}
	lats := make([]float64, rows+1)
	for i, y := range ys {
		switch i {
		case 0:
			lats[i] = cfg.Bounds.North
		case rows:
			lats[i] = cfg.Bounds.South
		default:
			lats[i] = world.Unproject(engine.Point{Y: float64(y)}).Lat
		}
	}

	plan := Plan{
		Zoom:       zoom,
		Origin:     image.Pt(x0, y0),
		Width:      width,
		Height:     height,
		Rows:       rows,
		Cols:       cols,
		Projection: world,
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			plan.Subdivisions = append(plan.Subdivisions, model.Subdivision{
				Index: len(plan.Subdivisions),
				Row:   r,
				Col:   c,
				Bounds: model.GeoBounds{
					North: lats[r],
					South: lats[r+1],
					West:  lons[c],
					East:  lons[c+1],
				},
				X:      xs[c],
				Y:      ys[r],
				Width:  xs[c+1] - xs[c],
				Height: ys[r+1] - ys[r],
				Status: model.SubdivisionPending,
			})
		}
	}
	return plan, nil
}

// splitPoints returns n+1 integer boundaries dividing [0, total] as evenly as
// possible.
func splitPoints(total, n int) []int {
	pts := make([]int, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = i * total / n
	}
	return pts
}
