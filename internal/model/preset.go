package model

import (
	"time"

	"github.com/google/uuid"
)

// ExportPreset is a reusable, named set of export parameters. It captures
// rendering choices but never export bounds.
type ExportPreset struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	IsBuiltIn     bool         `json:"is_built_in"`
	CreatedAt     string       `json:"created_at,omitempty"`
	TileLayerKey  string       `json:"tile_layer_key"`
	MaxDimension  int          `json:"max_dimension"`
	LabelDensity  float64      `json:"label_density"`
	LineThickness float64      `json:"line_thickness"`
	ExportQuality int          `json:"export_quality"`
	Format        OutputFormat `json:"format"`
}

// NewExportPreset captures the rendering parameters of cfg under name.
func NewExportPreset(name, description string, cfg ExportConfig, format OutputFormat) ExportPreset {
	return ExportPreset{
		ID:            uuid.New().String()[:8],
		Name:          name,
		Description:   description,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		TileLayerKey:  cfg.TileLayerKey,
		MaxDimension:  cfg.MaxDimension,
		LabelDensity:  cfg.LabelDensity,
		LineThickness: cfg.LineThickness,
		ExportQuality: cfg.ExportQuality,
		Format:        format,
	}
}

// ApplyTo copies the preset's parameters into cfg, leaving bounds and zooms alone.
// Zero-valued preset fields keep the value already in cfg.
func (p ExportPreset) ApplyTo(cfg *ExportConfig) {
	if p.TileLayerKey != "" {
		cfg.TileLayerKey = p.TileLayerKey
	}
	if p.MaxDimension > 0 {
		cfg.MaxDimension = p.MaxDimension
	}
	if p.LabelDensity > 0 {
		cfg.LabelDensity = p.LabelDensity
	}
	if p.LineThickness > 0 {
		cfg.LineThickness = p.LineThickness
	}
	if p.ExportQuality > 0 {
		cfg.ExportQuality = p.ExportQuality
	}
}

// Built-in export presets
var ExportPresets = []ExportPreset{
	{
		Name:          "Draft",
		Description:   "Fast preview at screen resolution",
		IsBuiltIn:     true,
		TileLayerKey:  "osm",
		MaxDimension:  2048,
		LabelDensity:  0.5,
		LineThickness: 3,
		ExportQuality: 0,
		Format:        FormatJPEG,
	},
	{
		Name:          "Print",
		Description:   "Two zoom levels above preview, suitable for A4/A3 prints",
		IsBuiltIn:     true,
		TileLayerKey:  "osm",
		MaxDimension:  4096,
		LabelDensity:  0.5,
		LineThickness: 5,
		ExportQuality: 2,
		Format:        FormatPNG,
	},
	{
		Name:          "Poster",
		Description:   "Maximum detail on topographic tiles with sparse labels",
		IsBuiltIn:     true,
		TileLayerKey:  "topo",
		MaxDimension:  4096,
		LabelDensity:  0.3,
		LineThickness: 8,
		ExportQuality: 3,
		Format:        FormatPDF,
	},
}

// GetPreset returns a built-in preset by name, or the "Print" preset if not found.
func GetPreset(name string) ExportPreset {
	for _, p := range ExportPresets {
		if p.Name == name {
			return p
		}
	}
	return ExportPresets[1]
}

// GetPresetNames returns the names of all built-in presets.
func GetPresetNames() []string {
	var names []string
	for _, p := range ExportPresets {
		names = append(names, p.Name)
	}
	return names
}
