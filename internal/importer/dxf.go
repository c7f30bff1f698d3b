package importer

import (
	"fmt"
	"math"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"github.com/yofu/dxf/table"
)

// DXFTracksLayer is the layer ExportDXF writes tracks to.
const DXFTracksLayer = "TRACKS"

// dxfTolerance is the maximum endpoint gap, in degrees, for two LINEs to chain.
const dxfTolerance = 1e-7

// segment is a line between two coordinates, used for chaining loose LINE
// entities into polylines.
type segment struct {
	start model.LatLng
	end   model.LatLng
}

type layered interface {
	Layer() *table.Layer
}

// ImportDXFTracks reads tracks from a DXF drawing in geographic coordinates
// (x = longitude, y = latitude). Every LWPOLYLINE becomes a track, and
// connected LINE and ARC entities are chained into tracks.
//
// When layer is non-empty only entities on that layer are read. If nothing
// lives on it the whole drawing is read and a warning is added.
func ImportDXFTracks(path, layer string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	if layer != "" {
		onLayer := entities[:0:0]
		for _, ent := range entities {
			if onDXFLayer(ent, layer) {
				onLayer = append(onLayer, ent)
			}
		}
		if len(onLayer) == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("No entities on layer %s, reading the whole drawing", layer))
		} else {
			entities = onLayer
		}
	}

	var lines [][]model.LatLng
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := lwPolylineToPoints(e)
			if len(pts) >= 2 {
				lines = append(lines, pts)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 2 vertices")
			}

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: model.LatLng{Lon: e.Start[0], Lat: e.Start[1]},
				end:   model.LatLng{Lon: e.End[0], Lat: e.End[1]},
			})

		default:
			// Points, text and other entity types carry no track geometry
		}
	}

	lines = append(lines, chainSegments(segments, dxfTolerance)...)

	for _, pts := range lines {
		if !inWorld(pts) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped polyline outside geographic range (%d vertices)", len(pts)))
			continue
		}
		name := fmt.Sprintf("DXF Track %d", len(result.Tracks)+1)
		result.Tracks = append(result.Tracks, model.NewTrack(name, pts))
	}

	if len(result.Tracks) == 0 {
		result.Errors = append(result.Errors, "No polylines found in DXF file")
	}
	return result
}

func onDXFLayer(ent entity.Entity, name string) bool {
	l, ok := ent.(layered)
	if !ok || l.Layer() == nil {
		return false
	}
	return l.Layer().Name() == name
}

func inWorld(pts []model.LatLng) bool {
	for _, p := range pts {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return false
		}
	}
	return true
}

// lwPolylineToPoints converts a DXF LWPOLYLINE entity to a vertex list.
// Bulge values on vertices produce interpolated arc segments. Closed
// polylines repeat their first vertex at the end.
func lwPolylineToPoints(lw *entity.LwPolyline) []model.LatLng {
	var pts []model.LatLng
	n := len(lw.Vertices)

	for i := 0; i < n; i++ {
		v := lw.Vertices[i]
		current := model.LatLng{Lon: v[0], Lat: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		last := i == n-1
		if math.Abs(bulge) > 1e-12 && (!last || lw.Closed) {
			next := lw.Vertices[(i+1)%n]
			arc := bulgeArcPoints(current, model.LatLng{Lon: next[0], Lat: next[1]}, bulge, 16)
			// The next vertex is added by the following iteration
			pts = append(pts, arc[:len(arc)-1]...)
		} else {
			pts = append(pts, current)
		}
	}

	if lw.Closed && n > 0 {
		pts = append(pts, pts[0])
	}
	return pts
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 model.LatLng, bulge float64, numSegments int) []model.LatLng {
	mx := (p1.Lon + p2.Lon) / 2
	my := (p1.Lat + p2.Lat) / 2
	dx := p2.Lon - p1.Lon
	dy := p2.Lat - p1.Lat
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-12 {
		return []model.LatLng{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Lat-cy, p1.Lon-cx)
	endAngle := math.Atan2(p2.Lat-cy, p2.Lon-cx)
	if bulge < 0 {
		// Clockwise
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make([]model.LatLng, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, model.LatLng{
			Lon: cx + radius*math.Cos(angle),
			Lat: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// arcToPoints converts a DXF ARC entity to a series of points.
func arcToPoints(a *entity.Arc, numSegments int) []model.LatLng {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.LatLng, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.LatLng{
			Lon: cx + r*math.Cos(angle),
			Lat: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.LatLng) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into polylines, growing each
// chain at both ends. Segments are consumed in file order so the output is
// deterministic.
func chainSegments(segs []segment, tolerance float64) [][]model.LatLng {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var chains [][]model.LatLng

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		chain := []model.LatLng{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			head, tail := chain[0], chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				case pointsClose(head, seg.end, tolerance):
					chain = append([]model.LatLng{seg.start}, chain...)
				case pointsClose(head, seg.start, tolerance):
					chain = append([]model.LatLng{seg.end}, chain...)
				default:
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		chains = append(chains, chain)
	}

	return chains
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.LatLng, tolerance float64) bool {
	return math.Hypot(a.Lon-b.Lon, a.Lat-b.Lat) <= tolerance
}
