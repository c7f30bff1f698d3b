package engine

import (
	"math"

	"github.com/piwi3910/StrataLines/internal/model"
)

// Point is a position in pixel space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned pixel rectangle. Left <= Right and Top <= Bottom
// for well-formed rectangles; y grows downwards.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectXYWH builds a rectangle from its top-left corner and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Expand grows the rectangle by d on every side. Negative d shrinks it.
func (r Rect) Expand(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Right: r.Right + d, Bottom: r.Bottom + d}
}

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Distance returns the edge-to-edge distance between two rectangles, 0 when
// they overlap or touch.
func Distance(a, b Rect) float64 {
	dx := math.Max(0, math.Max(a.Left-b.Right, b.Left-a.Right))
	dy := math.Max(0, math.Max(a.Top-b.Bottom, b.Top-a.Bottom))
	switch {
	case dx == 0:
		return dy
	case dy == 0:
		return dx
	default:
		return math.Hypot(dx, dy)
	}
}

// Overlaps reports whether a and b intersect once a is grown by buffer on
// every side. A positive buffer makes near misses count.
func Overlaps(a, b Rect, buffer float64) bool {
	return OverlapArea(a.Expand(buffer), b) > 0
}

// Contains reports whether inner lies fully within outer.
func Contains(inner, outer Rect) bool {
	return inner.Left >= outer.Left &&
		inner.Top >= outer.Top &&
		inner.Right <= outer.Right &&
		inner.Bottom <= outer.Bottom
}

// OverlapArea returns the area shared by a and b.
func OverlapArea(a, b Rect) float64 {
	w := math.Min(a.Right, b.Right) - math.Max(a.Left, b.Left)
	h := math.Min(a.Bottom, b.Bottom) - math.Max(a.Top, b.Top)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Projector maps a geographic coordinate to pixel space.
type Projector interface {
	Project(p model.LatLng) Point
}

// ProjectGeoBounds projects the north-west and south-east corners of b and
// returns the pixel rectangle spanning them.
func ProjectGeoBounds(b model.GeoBounds, p Projector) Rect {
	nw := p.Project(b.NW())
	se := p.Project(b.SE())
	return Rect{
		Left:   math.Min(nw.X, se.X),
		Top:    math.Min(nw.Y, se.Y),
		Right:  math.Max(nw.X, se.X),
		Bottom: math.Max(nw.Y, se.Y),
	}
}
