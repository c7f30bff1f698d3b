package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// IconStyle is the closed set of marker shapes a place can be drawn with.
type IconStyle string

const (
	IconPin    IconStyle = "pin"
	IconDot    IconStyle = "dot"
	IconCircle IconStyle = "circle"
	IconMarker IconStyle = "marker"
	IconFlag   IconStyle = "flag"
	IconStar   IconStyle = "star"
)

// IconStyles lists every supported icon style in display order.
var IconStyles = []IconStyle{IconPin, IconDot, IconCircle, IconMarker, IconFlag, IconStar}

// ParseIconStyle converts a free-form string to an IconStyle.
// It returns IconPin and false for unknown values.
func ParseIconStyle(s string) (IconStyle, bool) {
	normalized := IconStyle(strings.ToLower(strings.TrimSpace(s)))
	for _, style := range IconStyles {
		if style == normalized {
			return style, true
		}
	}
	return IconPin, false
}

// LatLng is a WGS 84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the coordinate as an orb point (lon, lat order).
func (p LatLng) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Track is an ordered polyline of coordinates. Renderers treat Points as read-only.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Points  []LatLng `json:"points"`
	Color   string   `json:"color"` // Hex colour, e.g. "#e4572e"
	Visible bool     `json:"visible"`
	Length  float64  `json:"length,omitempty"` // km, 0 when not precomputed
}

func NewTrack(name string, points []LatLng) Track {
	return Track{
		ID:      uuid.New().String()[:8],
		Name:    name,
		Points:  points,
		Color:   "#e4572e",
		Visible: true,
	}
}

// Bound returns the geographic bounding box of the track.
func (t Track) Bound() orb.Bound {
	if len(t.Points) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: t.Points[0].Point(), Max: t.Points[0].Point()}
	for _, p := range t.Points[1:] {
		b = b.Extend(p.Point())
	}
	return b
}

// TextStyle describes how a place title is typeset.
type TextStyle struct {
	FontSize    float64 `json:"font_size"`
	FontFamily  string  `json:"font_family"` // "sans" or "mono"
	FontWeight  string  `json:"font_weight"` // "normal" or "bold"
	Color       string  `json:"color"`
	StrokeColor string  `json:"stroke_color,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	GlowColor   string  `json:"glow_color,omitempty"`
	GlowBlur    float64 `json:"glow_blur,omitempty"`
}

func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontSize:    14,
		FontFamily:  "sans",
		FontWeight:  "bold",
		Color:       "#1b1b1b",
		StrokeColor: "#ffffff",
		StrokeWidth: 2,
	}
}

// Place is a titled point of interest.
type Place struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Position  LatLng    `json:"position"`
	Visible   bool      `json:"visible"`
	Icon      IconStyle `json:"icon"`
	IconSize  float64   `json:"icon_size"` // px
	IconColor string    `json:"icon_color"`
	Text      TextStyle `json:"text"`
	ShowIcon  bool      `json:"show_icon"`
}

func NewPlace(title string, pos LatLng) Place {
	return Place{
		ID:        uuid.New().String()[:8],
		Title:     title,
		Position:  pos,
		Visible:   true,
		Icon:      IconPin,
		IconSize:  24,
		IconColor: "#d7263d",
		Text:      DefaultTextStyle(),
		ShowIcon:  true,
	}
}

// GeoBounds is an axis-aligned geographic rectangle in degrees.
type GeoBounds struct {
	North float64 `json:"north" mapstructure:"north"`
	South float64 `json:"south" mapstructure:"south"`
	East  float64 `json:"east" mapstructure:"east"`
	West  float64 `json:"west" mapstructure:"west"`
}

// NW returns the north-west corner.
func (b GeoBounds) NW() LatLng { return LatLng{Lat: b.North, Lon: b.West} }

// SE returns the south-east corner.
func (b GeoBounds) SE() LatLng { return LatLng{Lat: b.South, Lon: b.East} }

// Center returns the midpoint of the bounds in degree space.
func (b GeoBounds) Center() LatLng {
	return LatLng{Lat: (b.North + b.South) / 2, Lon: (b.East + b.West) / 2}
}

// Bound converts the bounds to an orb.Bound.
func (b GeoBounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// IsDegenerate reports whether the bounds enclose zero (or negative) area.
func (b GeoBounds) IsDegenerate() bool {
	return !(b.North > b.South) || !(b.East > b.West)
}

// Contains reports whether p lies inside the bounds, edges included.
func (b GeoBounds) Contains(p LatLng) bool {
	return p.Lat <= b.North && p.Lat >= b.South && p.Lon >= b.West && p.Lon <= b.East
}

// BoundsFromOrb converts an orb.Bound to GeoBounds.
func BoundsFromOrb(b orb.Bound) GeoBounds {
	return GeoBounds{North: b.Max[1], South: b.Min[1], East: b.Max[0], West: b.Min[0]}
}

// Snapshot is a read-only copy of the tracks and places handed to an export.
type Snapshot struct {
	Tracks []Track `json:"tracks"`
	Places []Place `json:"places"`
}

// FitBounds returns bounds enclosing every visible track point and place,
// padded by pad (a fraction of each span). ok is false when nothing is visible.
func (s Snapshot) FitBounds(pad float64) (GeoBounds, bool) {
	var b orb.Bound
	found := false
	extend := func(p LatLng) {
		if !found {
			b = orb.Bound{Min: p.Point(), Max: p.Point()}
			found = true
			return
		}
		b = b.Extend(p.Point())
	}
	for _, t := range s.Tracks {
		if !t.Visible {
			continue
		}
		for _, p := range t.Points {
			extend(p)
		}
	}
	for _, p := range s.Places {
		if p.Visible {
			extend(p.Position)
		}
	}
	if !found {
		return GeoBounds{}, false
	}

	gb := BoundsFromOrb(b)
	dLat := math.Max((gb.North-gb.South)*pad, 0.001)
	dLon := math.Max((gb.East-gb.West)*pad, 0.001)
	gb.North = math.Min(gb.North+dLat, MaxMercatorLat)
	gb.South = math.Max(gb.South-dLat, -MaxMercatorLat)
	gb.East = math.Min(gb.East+dLon, 180)
	gb.West = math.Max(gb.West-dLon, -180)
	return gb, true
}
