package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: STRATALINES_LOG_LEVEL sets log_level.
const EnvPrefix = "STRATALINES"

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.stratalines/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".stratalines")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// DefaultTileCacheDir returns the default on-disk tile cache location.
func DefaultTileCacheDir() string {
	return filepath.Join(DefaultConfigDir(), "tiles")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path, then applies
// STRATALINES_* environment overrides. A missing file yields the defaults.
// The file may be JSON, YAML or TOML, chosen by extension.
func LoadAppConfig(path string) (model.AppConfig, error) {
	v := viper.New()
	setDefaults(v, model.DefaultAppConfig())

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
				v.SetConfigType("json")
			}
			if err := v.ReadInConfig(); err != nil {
				return model.AppConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return model.AppConfig{}, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config model.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return model.AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if config.RecentExports == nil {
		config.RecentExports = []string{}
	}
	return config, nil
}

func setDefaults(v *viper.Viper, d model.AppConfig) {
	v.SetDefault("default_tile_layer", d.DefaultTileLayer)
	v.SetDefault("default_max_dimension", d.DefaultMaxDimension)
	v.SetDefault("default_line_thickness", d.DefaultLineThickness)
	v.SetDefault("default_label_density", d.DefaultLabelDensity)
	v.SetDefault("default_quality", d.DefaultQuality)
	v.SetDefault("default_format", string(d.DefaultFormat))
	v.SetDefault("jpeg_quality", d.JPEGQuality)
	v.SetDefault("render_backend", d.RenderBackend)
	v.SetDefault("tile_cache_dir", d.TileCacheDir)
	v.SetDefault("tile_layer_file", d.TileLayerFile)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("recent_exports", d.RecentExports)
}

// ValidateAppConfig checks that the loaded preferences are usable.
func ValidateAppConfig(c model.AppConfig) error {
	var errs []string

	switch c.RenderBackend {
	case "auto", "scene", "compositor":
	default:
		errs = append(errs, fmt.Sprintf("render_backend must be auto, scene or compositor, got %q", c.RenderBackend))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("jpeg_quality must be 1-100, got %d", c.JPEGQuality))
	}
	if _, ok := model.ParseOutputFormat(string(c.DefaultFormat)); !ok {
		errs = append(errs, fmt.Sprintf("default_format must be png, jpeg or pdf, got %q", c.DefaultFormat))
	}
	if c.DefaultMaxDimension <= 0 {
		errs = append(errs, fmt.Sprintf("default_max_dimension must be positive, got %d", c.DefaultMaxDimension))
	}
	if c.DefaultLabelDensity < 0 || c.DefaultLabelDensity > 1 {
		errs = append(errs, fmt.Sprintf("default_label_density must be within 0..1, got %.2f", c.DefaultLabelDensity))
	}
	if c.DefaultTileLayer == "" {
		errs = append(errs, "default_tile_layer is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log_format must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// AddRecentExport records path as the most recent export, keeping at most
// limit unique entries.
func AddRecentExport(c *model.AppConfig, path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentExports {
		if p != path && len(recent) < limit {
			recent = append(recent, p)
		}
	}
	c.RecentExports = recent
}
