package engine

import (
	"math"

	"github.com/paulmach/orb/maptile"
	"github.com/piwi3910/StrataLines/internal/model"
)

// DefaultTileSize is the edge length of a standard slippy-map tile.
const DefaultTileSize = 256

// maptile.Fraction pins latitudes beyond this to the outermost tile row.
const fractionLatLimit = 85.0511

// WebMercator projects coordinates into world pixels at a zoom level, with an
// optional origin subtracted so results are local to a surface.
type WebMercator struct {
	Zoom     int
	TileSize int
	OriginX  float64
	OriginY  float64
}

// NewWebMercator returns a projector for the given zoom with the origin at the
// top-left corner of the world.
func NewWebMercator(zoom, tileSize int) WebMercator {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return WebMercator{Zoom: zoom, TileSize: tileSize}
}

// WithOrigin returns a copy whose pixel coordinates are relative to (x, y) in
// world pixels.
func (m WebMercator) WithOrigin(x, y float64) WebMercator {
	m.OriginX = x
	m.OriginY = y
	return m
}

// Offset shifts the origin by (dx, dy).
func (m WebMercator) Offset(dx, dy float64) WebMercator {
	return m.WithOrigin(m.OriginX+dx, m.OriginY+dy)
}

func (m WebMercator) size() float64 {
	if m.TileSize <= 0 {
		return DefaultTileSize
	}
	return float64(m.TileSize)
}

// WorldSize returns the edge length of the whole world in pixels.
func (m WebMercator) WorldSize() float64 {
	return m.size() * math.Exp2(float64(m.Zoom))
}

// Project implements Projector.
func (m WebMercator) Project(p model.LatLng) Point {
	lat := math.Max(-fractionLatLimit, math.Min(fractionLatLimit, p.Lat))
	f := maptile.Fraction(model.LatLng{Lat: lat, Lon: p.Lon}.Point(), maptile.Zoom(m.Zoom))
	return Point{
		X: f[0]*m.size() - m.OriginX,
		Y: f[1]*m.size() - m.OriginY,
	}
}

// Unproject is the inverse of Project.
func (m WebMercator) Unproject(pt Point) model.LatLng {
	world := m.WorldSize()
	x := (pt.X + m.OriginX) / world
	y := (pt.Y + m.OriginY) / world
	lon := x*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180 / math.Pi
	return model.LatLng{Lat: lat, Lon: lon}
}
