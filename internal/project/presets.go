package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/StrataLines/internal/model"
)

// DefaultPresetsPath returns the default file path for custom export presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SaveCustomPresets saves custom presets to a JSON file.
func SaveCustomPresets(path string, presets []model.ExportPreset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomPresets loads custom presets from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomPresets(path string) ([]model.ExportPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.ExportPreset{}, nil
		}
		return nil, err
	}

	var presets []model.ExportPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, err
	}

	// Loaded presets are never built-in
	for i := range presets {
		presets[i].IsBuiltIn = false
	}
	return presets, nil
}

// ExportPreset exports a single preset to a JSON file (for sharing).
func ExportPreset(path string, preset model.ExportPreset) error {
	preset.IsBuiltIn = false
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportPreset imports a single preset from a JSON file.
func ImportPreset(path string) (model.ExportPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ExportPreset{}, err
	}

	var preset model.ExportPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		return model.ExportPreset{}, err
	}

	preset.IsBuiltIn = false
	if preset.Name == "" {
		return model.ExportPreset{}, errors.New("imported preset has no name")
	}
	return preset, nil
}

// FindPreset looks name up among the custom presets first, then the built-ins.
func FindPreset(name string, custom []model.ExportPreset) (model.ExportPreset, bool) {
	for _, p := range custom {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range model.ExportPresets {
		if p.Name == name {
			return p, true
		}
	}
	return model.ExportPreset{}, false
}
