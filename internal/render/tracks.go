package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/piwi3910/StrataLines/internal/engine"
	"github.com/piwi3910/StrataLines/internal/model"
)

// DefaultTrackColor is used when a track's colour cannot be parsed.
var DefaultTrackColor = color.NRGBA{R: 0xe4, G: 0x57, B: 0x2e, A: 0xff}

// Polyline is a projected track ready to be stroked.
type Polyline struct {
	Points []engine.Point
	Color  color.Color
	Width  float64
}

// Bounds returns the pixel box covered by the line's vertices.
func (p Polyline) Bounds() engine.Rect {
	if len(p.Points) == 0 {
		return engine.Rect{}
	}
	r := engine.Rect{Left: p.Points[0].X, Top: p.Points[0].Y, Right: p.Points[0].X, Bottom: p.Points[0].Y}
	for _, pt := range p.Points[1:] {
		r.Left = math.Min(r.Left, pt.X)
		r.Top = math.Min(r.Top, pt.Y)
		r.Right = math.Max(r.Right, pt.X)
		r.Bottom = math.Max(r.Bottom, pt.Y)
	}
	return r
}

// ProjectTrack projects every point of t. The track itself is not modified.
func ProjectTrack(t model.Track, proj engine.Projector, width float64) Polyline {
	pts := make([]engine.Point, len(t.Points))
	for i, p := range t.Points {
		pts[i] = proj.Project(p)
	}
	return Polyline{Points: pts, Color: colorOr(t.Color, DefaultTrackColor), Width: width}
}

// TracksInView projects the visible tracks of tracks and keeps those whose
// stroke reaches view. Every segment is clipped against view grown by half
// the stroke width, so a bent track is kept only where the line itself, not
// its bounding box, crosses the view.
func TracksInView(tracks []model.Track, proj engine.Projector, view engine.Rect, width float64) []Polyline {
	reach := view.Expand(math.Max(width, 1)/2 - 0.5)
	bound := orb.Bound{
		Min: orb.Point{reach.Left, reach.Top},
		Max: orb.Point{reach.Right, reach.Bottom},
	}

	var out []Polyline
	for _, t := range tracks {
		if !t.Visible || len(t.Points) == 0 {
			continue
		}
		line := ProjectTrack(t, proj, width)
		if crossesBound(line, bound) {
			out = append(out, line)
		}
	}
	return out
}

func crossesBound(line Polyline, b orb.Bound) bool {
	ls := make(orb.LineString, len(line.Points))
	for i, p := range line.Points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	if len(ls) == 1 {
		return b.Contains(ls[0])
	}
	for _, part := range clip.LineString(b, ls) {
		if len(part) > 0 {
			return true
		}
	}
	return false
}

// DrawPolylines strokes lines onto dst.
func DrawPolylines(dst *image.RGBA, lines []Polyline) {
	if len(lines) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(dst)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	for _, line := range lines {
		if len(line.Points) == 0 {
			continue
		}
		w := math.Max(line.Width, 1)
		dc.SetColor(line.Color)

		if len(line.Points) == 1 {
			p := line.Points[0]
			dc.DrawCircle(p.X, p.Y, w/2)
			dc.Fill()
			continue
		}

		dc.SetLineWidth(w)
		dc.MoveTo(line.Points[0].X, line.Points[0].Y)
		for _, p := range line.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()
	}
}
