package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/StrataLines/internal/model"
)

const customLayersYAML = `layers:
  - key: hike
    name: Hiking
    urls:
      - "https://{s}.tiles.example.com/{z}/{x}/{y}.png"
    subdomains: [a, b]
    attribution: Example
  - key: osm
    name: Local OSM mirror
    urls:
      - "http://localhost:8080/{z}/{x}/{y}.png"
    max_zoom: 18
`

func TestLoadTileLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layers.yaml")
	if err := os.WriteFile(path, []byte(customLayersYAML), 0644); err != nil {
		t.Fatal(err)
	}

	layers, err := LoadTileLayers(path)
	if err != nil {
		t.Fatalf("LoadTileLayers: %v", err)
	}
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}
	if layers[0].Key != "hike" || len(layers[0].Subdomains) != 2 {
		t.Errorf("unexpected first layer %+v", layers[0])
	}
	if layers[0].MaxZoom != model.MaxZoomLevel {
		t.Errorf("expected default max zoom %d, got %d", model.MaxZoomLevel, layers[0].MaxZoom)
	}
	if layers[1].MaxZoom != 18 {
		t.Errorf("expected max zoom 18, got %d", layers[1].MaxZoom)
	}
}

func TestLoadRegistryMergesBuiltIns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layers.yaml")
	if err := os.WriteFile(path, []byte(customLayersYAML), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(registry) != len(model.DefaultTileLayers)+1 {
		t.Errorf("expected %d layers, got %d", len(model.DefaultTileLayers)+1, len(registry))
	}
	osm, ok := registry.Get("osm")
	if !ok || osm.Name != "Local OSM mirror" {
		t.Errorf("custom osm should replace the built-in, got %+v", osm)
	}

	builtIns, err := LoadRegistry("")
	if err != nil || len(builtIns) != len(model.DefaultTileLayers) {
		t.Errorf("empty path should give the built-ins, got %d (%v)", len(builtIns), err)
	}
}

func TestLoadTileLayersMissingFile(t *testing.T) {
	layers, err := LoadTileLayers(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(layers) != 0 {
		t.Errorf("expected no layers, got %d", len(layers))
	}
}

func TestLoadTileLayersRejectsBadTemplates(t *testing.T) {
	cases := map[string]string{
		"no key":       "layers:\n  - urls: [\"https://x/{z}/{x}/{y}.png\"]\n",
		"no urls":      "layers:\n  - key: a\n",
		"missing {y}":  "layers:\n  - key: a\n    urls: [\"https://x/{z}/{x}.png\"]\n",
		"no shards":    "layers:\n  - key: a\n    urls: [\"https://{s}.x/{z}/{x}/{y}.png\"]\n",
		"invalid yaml": "layers: [\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "layers.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTileLayers(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSaveTileLayersSkipsBuiltIns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "layers.yaml")
	layers := model.DefaultTileLayers.Merge(model.TileLayers{{
		Key:          "hike",
		URLTemplates: []string{"https://tiles.example.com/{z}/{x}/{y}.png"},
	}})

	if err := SaveTileLayers(path, layers); err != nil {
		t.Fatalf("SaveTileLayers: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "openstreetmap") {
		t.Error("built-in layers should not be saved")
	}

	loaded, err := LoadTileLayers(path)
	if err != nil || len(loaded) != 1 || loaded[0].Key != "hike" {
		t.Errorf("expected the hike layer back, got %+v (%v)", loaded, err)
	}
}
