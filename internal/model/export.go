package model

import (
	"fmt"
	"image"
	"strings"
)

// MaxMercatorLat is the latitude limit of the Web Mercator tile pyramid.
const MaxMercatorLat = 85.05112878

// MaxZoomLevel is the deepest zoom any built-in tile layer serves.
const MaxZoomLevel = 20

// OutputFormat selects the encoder used for a finished composite.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"
	FormatJPEG OutputFormat = "jpeg"
	FormatPDF  OutputFormat = "pdf"
)

// ParseOutputFormat maps a format name or file extension to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, true
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "pdf":
		return FormatPDF, true
	default:
		return FormatPNG, false
	}
}

// ExportConfig is immutable for the duration of one export.
type ExportConfig struct {
	Bounds            GeoBounds `json:"export_bounds" mapstructure:"export_bounds"`
	DerivedExportZoom int       `json:"derived_export_zoom" mapstructure:"derived_export_zoom"`
	PreviewZoom       int       `json:"preview_zoom" mapstructure:"preview_zoom"`
	Zoom              *int      `json:"zoom,omitempty" mapstructure:"zoom"`         // Explicit export zoom; nil = derive
	MaxDimension      int       `json:"max_dimension" mapstructure:"max_dimension"` // px per subdivision side
	LabelDensity      float64   `json:"label_density" mapstructure:"label_density"` // 0 (sparse) .. 1 (dense)
	TileLayerKey      string    `json:"tile_layer_key" mapstructure:"tile_layer_key"`
	LineThickness     float64   `json:"line_thickness" mapstructure:"line_thickness"` // px
	ExportQuality     int       `json:"export_quality" mapstructure:"export_quality"` // zoom levels above preview
}

func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		PreviewZoom:   12,
		MaxDimension:  4096,
		LabelDensity:  0.5,
		TileLayerKey:  "osm",
		LineThickness: 4,
		ExportQuality: 2,
	}
}

// DeriveExportZoom returns previewZoom raised by quality levels, clamped to
// the supported zoom range.
func DeriveExportZoom(previewZoom, quality int) int {
	z := previewZoom + quality
	if z < 0 {
		return 0
	}
	if z > MaxZoomLevel {
		return MaxZoomLevel
	}
	return z
}

// ExplicitZoom returns a Zoom value that pins the export to z.
func ExplicitZoom(z int) *int {
	return &z
}

// ExportZoom resolves the zoom the export renders at. An explicit Zoom wins,
// zoom 0 included, then DerivedExportZoom, then PreviewZoom + ExportQuality.
func (c ExportConfig) ExportZoom() int {
	if c.Zoom != nil {
		return *c.Zoom
	}
	if c.DerivedExportZoom > 0 {
		return c.DerivedExportZoom
	}
	return DeriveExportZoom(c.PreviewZoom, c.ExportQuality)
}

// Validate rejects configurations that cannot be subdivided.
func (c ExportConfig) Validate() error {
	var errs []string

	b := c.Bounds
	if b.IsDegenerate() {
		errs = append(errs, fmt.Sprintf("export bounds have zero area (N %.6f S %.6f E %.6f W %.6f)", b.North, b.South, b.East, b.West))
	}
	if b.North > MaxMercatorLat || b.South < -MaxMercatorLat {
		errs = append(errs, fmt.Sprintf("export bounds must lie within ±%.4f latitude", MaxMercatorLat))
	}
	if b.West < -180 || b.East > 180 {
		errs = append(errs, "export bounds must lie within ±180 longitude")
	}
	if c.MaxDimension <= 0 {
		errs = append(errs, fmt.Sprintf("max dimension must be positive, got %d", c.MaxDimension))
	}
	if z := c.ExportZoom(); z < 0 || z > MaxZoomLevel {
		errs = append(errs, fmt.Sprintf("export zoom must be 0-%d, got %d", MaxZoomLevel, z))
	}
	if c.LabelDensity < 0 || c.LabelDensity > 1 {
		errs = append(errs, fmt.Sprintf("label density must be within 0..1, got %.2f", c.LabelDensity))
	}
	if c.LineThickness < 0 {
		errs = append(errs, "line thickness must not be negative")
	}
	if c.TileLayerKey == "" {
		errs = append(errs, "tile layer key is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// SubdivisionStatus is the lifecycle state of one subdivision.
type SubdivisionStatus int

const (
	SubdivisionPending SubdivisionStatus = iota
	SubdivisionRendering
	SubdivisionRendered
	SubdivisionStitched
	SubdivisionFailed
)

func (s SubdivisionStatus) String() string {
	switch s {
	case SubdivisionRendering:
		return "rendering"
	case SubdivisionRendered:
		return "rendered"
	case SubdivisionStitched:
		return "stitched"
	case SubdivisionFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Subdivision is one independently rendered piece of an export.
type Subdivision struct {
	Index  int               `json:"index"`
	Row    int               `json:"row"`
	Col    int               `json:"col"`
	Bounds GeoBounds         `json:"bounds"`
	X      int               `json:"x"` // Pixel offset within the composite
	Y      int               `json:"y"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Status SubdivisionStatus `json:"status"`
}

// PixelRect returns the subdivision's rectangle in composite pixel space.
func (s Subdivision) PixelRect() image.Rectangle {
	return image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height)
}
