package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/StrataLines/internal/model"
)

func TestSaveAndLoadCustomPresets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.json")

	cfg := model.DefaultExportConfig()
	cfg.TileLayerKey = "light"
	cfg.LabelDensity = 0.9
	presets := []model.ExportPreset{
		model.NewExportPreset("Dense", "Crowded city maps", cfg, model.FormatPNG),
		{Name: "Marked", IsBuiltIn: true, MaxDimension: 1024},
	}

	if err := SaveCustomPresets(path, presets); err != nil {
		t.Fatalf("SaveCustomPresets: %v", err)
	}

	loaded, err := LoadCustomPresets(path)
	if err != nil {
		t.Fatalf("LoadCustomPresets: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(loaded))
	}
	if loaded[0].Name != "Dense" || loaded[0].TileLayerKey != "light" || loaded[0].LabelDensity != 0.9 {
		t.Errorf("unexpected first preset %+v", loaded[0])
	}
	if loaded[1].IsBuiltIn {
		t.Error("loaded preset should not be marked as built-in")
	}
}

func TestLoadCustomPresetsNonExistent(t *testing.T) {
	presets, err := LoadCustomPresets(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got: %v", err)
	}
	if len(presets) != 0 {
		t.Fatalf("expected 0 presets, got %d", len(presets))
	}
}

func TestLoadCustomPresetsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCustomPresets(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestExportAndImportPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported.json")

	original := model.GetPreset("Poster")
	if err := ExportPreset(path, original); err != nil {
		t.Fatalf("ExportPreset: %v", err)
	}

	imported, err := ImportPreset(path)
	if err != nil {
		t.Fatalf("ImportPreset: %v", err)
	}
	if imported.Name != "Poster" {
		t.Errorf("expected name Poster, got %s", imported.Name)
	}
	if imported.IsBuiltIn {
		t.Error("imported preset should not be marked as built-in")
	}
	if imported.Format != model.FormatPDF {
		t.Errorf("expected pdf format, got %s", imported.Format)
	}
}

func TestImportPresetNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"description": "no name"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportPreset(path); err == nil {
		t.Fatal("expected error for preset without name")
	}
}

func TestFindPreset(t *testing.T) {
	custom := []model.ExportPreset{{Name: "Draft", MaxDimension: 512}}

	p, ok := FindPreset("Draft", custom)
	if !ok || p.MaxDimension != 512 {
		t.Errorf("custom preset should shadow the built-in, got %+v", p)
	}
	p, ok = FindPreset("Poster", custom)
	if !ok || !p.IsBuiltIn {
		t.Errorf("expected built-in Poster, got %+v", p)
	}
	if _, ok := FindPreset("Nope", custom); ok {
		t.Error("unknown preset should not be found")
	}
}
