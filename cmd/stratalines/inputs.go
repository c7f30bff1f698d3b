package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/StrataLines/internal/importer"
	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/piwi3910/StrataLines/internal/project"
)

// fitPadding pads bounds derived from the data by this fraction per side.
const fitPadding = 0.05

// loadInputs imports every input file by extension into one snapshot.
// Row-level problems are logged; a file that yields nothing is an error.
func loadInputs(paths []string, logger *slog.Logger) (model.Snapshot, error) {
	var snap model.Snapshot
	for _, path := range paths {
		var result importer.ImportResult
		switch strings.ToLower(filepath.Ext(path)) {
		case ".gpx":
			result = importer.ImportGPX(path)
		case ".csv", ".txt":
			result = importer.ImportPlacesCSV(path)
		case ".xlsx", ".xlsm":
			result = importer.ImportPlacesExcel(path)
		case ".dxf":
			result = importer.ImportDXFTracks(path, importer.DXFTracksLayer)
		default:
			return snap, fmt.Errorf("%s: unsupported input type", path)
		}

		for _, w := range result.Warnings {
			logger.Warn("import warning", "file", path, "detail", w)
		}
		for _, e := range result.Errors {
			logger.Error("import error", "file", path, "detail", e)
		}
		if len(result.Tracks) == 0 && len(result.Places) == 0 {
			return snap, fmt.Errorf("%s: nothing imported (%d errors)", path, len(result.Errors))
		}

		logger.Info("imported", "file", path, "tracks", len(result.Tracks), "places", len(result.Places))
		snap.Tracks = append(snap.Tracks, result.Tracks...)
		snap.Places = append(snap.Places, result.Places...)
	}
	return snap, nil
}

// parseBounds parses "north,south,east,west" in degrees.
func parseBounds(s string) (model.GeoBounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.GeoBounds{}, fmt.Errorf("bounds %q: want north,south,east,west", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.GeoBounds{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		v[i] = f
	}
	return model.GeoBounds{North: v[0], South: v[1], East: v[2], West: v[3]}, nil
}

// buildExportConfig layers the config defaults, the preset and the flags, in
// that order, and resolves the output format.
func buildExportConfig(o options, appCfg model.AppConfig, snap model.Snapshot, logger *slog.Logger) (model.ExportConfig, model.OutputFormat, error) {
	cfg := model.DefaultExportConfig()
	appCfg.ApplyToExportConfig(&cfg)
	format := appCfg.DefaultFormat

	if o.Preset != "" {
		custom, err := project.LoadCustomPresets(project.DefaultPresetsPath())
		if err != nil {
			logger.Warn("could not load custom presets", "error", err)
		}
		preset, ok := project.FindPreset(o.Preset, custom)
		if !ok {
			return cfg, format, fmt.Errorf("unknown preset %q (built-in: %s)", o.Preset, strings.Join(model.GetPresetNames(), ", "))
		}
		preset.ApplyTo(&cfg)
		if preset.Format != "" {
			format = preset.Format
		}
	}

	if o.Layer != "" {
		cfg.TileLayerKey = o.Layer
	}
	if o.Zoom >= 0 {
		cfg.Zoom = model.ExplicitZoom(o.Zoom)
	}
	if o.PreviewZoom > 0 {
		cfg.PreviewZoom = o.PreviewZoom
	}
	if o.Quality >= 0 {
		cfg.ExportQuality = o.Quality
	}
	if o.MaxDim > 0 {
		cfg.MaxDimension = o.MaxDim
	}
	if o.Density >= 0 {
		cfg.LabelDensity = o.Density
	}
	if o.Thickness > 0 {
		cfg.LineThickness = o.Thickness
	}
	cfg.DerivedExportZoom = model.DeriveExportZoom(cfg.PreviewZoom, cfg.ExportQuality)

	if o.Bounds != "" {
		b, err := parseBounds(o.Bounds)
		if err != nil {
			return cfg, format, err
		}
		cfg.Bounds = b
	} else {
		b, ok := snap.FitBounds(fitPadding)
		if !ok {
			return cfg, format, fmt.Errorf("no visible tracks or places to fit the export to; pass -bounds")
		}
		cfg.Bounds = b
	}

	// An explicit output extension wins over config and preset
	if f, ok := model.ParseOutputFormat(filepath.Ext(o.Output)); ok {
		format = f
	}
	return cfg, format, nil
}
