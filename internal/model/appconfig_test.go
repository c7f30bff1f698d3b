package model

import "testing"

func TestDefaultAppConfigMatchesDefaultExportConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultExportConfig()

	if cfg.DefaultMaxDimension != defaults.MaxDimension {
		t.Errorf("MaxDimension mismatch: config=%d export=%d", cfg.DefaultMaxDimension, defaults.MaxDimension)
	}
	if cfg.DefaultTileLayer != defaults.TileLayerKey {
		t.Errorf("TileLayer mismatch: config=%s export=%s", cfg.DefaultTileLayer, defaults.TileLayerKey)
	}
	if cfg.DefaultLineThickness != defaults.LineThickness {
		t.Errorf("LineThickness mismatch: config=%f export=%f", cfg.DefaultLineThickness, defaults.LineThickness)
	}
	if cfg.RenderBackend != "auto" {
		t.Errorf("expected default backend=auto, got %s", cfg.RenderBackend)
	}
	if cfg.RecentExports == nil {
		t.Error("RecentExports should not be nil")
	}
}

func TestApplyToExportConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultMaxDimension = 2000
	cfg.DefaultTileLayer = "topo"
	cfg.DefaultLabelDensity = 0.8

	e := DefaultExportConfig()
	cfg.ApplyToExportConfig(&e)

	if e.MaxDimension != 2000 {
		t.Errorf("expected MaxDimension=2000, got %d", e.MaxDimension)
	}
	if e.TileLayerKey != "topo" {
		t.Errorf("expected TileLayerKey=topo, got %s", e.TileLayerKey)
	}
	if e.LabelDensity != 0.8 {
		t.Errorf("expected LabelDensity=0.8, got %f", e.LabelDensity)
	}
}
