package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/StrataLines/internal/model"
	"gopkg.in/yaml.v3"
)

// tileLayerFile is the on-disk shape of a custom tile layer registry.
type tileLayerFile struct {
	Layers []model.TileLayer `yaml:"layers"`
}

// LoadTileLayers reads custom tile layers from a YAML file.
// Returns an empty registry if the file does not exist.
func LoadTileLayers(path string) (model.TileLayers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.TileLayers{}, nil
		}
		return nil, err
	}

	var file tileLayerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing tile layers %s: %w", path, err)
	}

	layers := make(model.TileLayers, 0, len(file.Layers))
	for i, l := range file.Layers {
		if err := validateTileLayer(l); err != nil {
			return nil, fmt.Errorf("tile layer %d: %w", i+1, err)
		}
		if l.MaxZoom == 0 {
			l.MaxZoom = model.MaxZoomLevel
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// SaveTileLayers writes custom tile layers to a YAML file. Built-in layers are skipped.
func SaveTileLayers(path string, layers model.TileLayers) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var file tileLayerFile
	for _, l := range layers {
		if !l.IsBuiltIn {
			file.Layers = append(file.Layers, l)
		}
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRegistry returns the built-in layers merged with those in path.
// An empty path yields the built-ins.
func LoadRegistry(path string) (model.TileLayers, error) {
	if path == "" {
		return model.DefaultTileLayers, nil
	}
	extra, err := LoadTileLayers(path)
	if err != nil {
		return nil, err
	}
	return model.DefaultTileLayers.Merge(extra), nil
}

func validateTileLayer(l model.TileLayer) error {
	if strings.TrimSpace(l.Key) == "" {
		return errors.New("key is required")
	}
	if len(l.URLTemplates) == 0 {
		return fmt.Errorf("%s: at least one URL template is required", l.Key)
	}
	for _, u := range l.URLTemplates {
		for _, p := range []string{"{z}", "{x}", "{y}"} {
			if !strings.Contains(u, p) {
				return fmt.Errorf("%s: URL template %q lacks %s", l.Key, u, p)
			}
		}
		if strings.Contains(u, "{s}") && len(l.Subdomains) == 0 {
			return fmt.Errorf("%s: URL template %q uses {s} but no subdomains are listed", l.Key, u)
		}
	}
	if l.MaxZoom < 0 || l.MaxZoom > model.MaxZoomLevel {
		return fmt.Errorf("%s: max_zoom must be 0-%d", l.Key, model.MaxZoomLevel)
	}
	return nil
}
