package export

import (
	"fmt"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF layer names written by ExportDXF.
const (
	LayerFrame  = "FRAME"
	LayerTracks = "TRACKS"
	LayerPlaces = "PLACES"
)

// ExportDXF writes the export frame, the visible tracks and the visible places
// to a DXF drawing in geographic coordinates (x = longitude, y = latitude),
// so CAD tools can overlay it on other georeferenced data.
func ExportDXF(path string, bounds model.GeoBounds, snap model.Snapshot) error {
	d := dxf.NewDrawing()

	if _, err := d.AddLayer(LayerFrame, color.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("adding DXF layer: %w", err)
	}
	corners := [][2]float64{
		{bounds.West, bounds.North},
		{bounds.East, bounds.North},
		{bounds.East, bounds.South},
		{bounds.West, bounds.South},
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}
	}

	if _, err := d.AddLayer(LayerTracks, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("adding DXF layer: %w", err)
	}
	for _, t := range snap.Tracks {
		if !t.Visible {
			continue
		}
		for i := 1; i < len(t.Points); i++ {
			p, q := t.Points[i-1], t.Points[i]
			if _, err := d.Line(p.Lon, p.Lat, 0, q.Lon, q.Lat, 0); err != nil {
				return fmt.Errorf("drawing track %q: %w", t.Name, err)
			}
		}
	}

	if _, err := d.AddLayer(LayerPlaces, color.Blue, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("adding DXF layer: %w", err)
	}
	textHeight := (bounds.North - bounds.South) / 80
	for _, p := range snap.Places {
		if !p.Visible {
			continue
		}
		if _, err := d.Point(p.Position.Lon, p.Position.Lat, 0); err != nil {
			return fmt.Errorf("drawing place %q: %w", p.Title, err)
		}
		if p.Title == "" {
			continue
		}
		if _, err := d.Text(p.Title, p.Position.Lon, p.Position.Lat, 0, textHeight); err != nil {
			return fmt.Errorf("labelling place %q: %w", p.Title, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving DXF: %w", err)
	}
	return nil
}
