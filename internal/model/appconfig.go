package model

// AppConfig holds application-wide preferences and export defaults.
type AppConfig struct {
	// Export defaults applied to new exports
	DefaultTileLayer     string       `json:"default_tile_layer" mapstructure:"default_tile_layer"`
	DefaultMaxDimension  int          `json:"default_max_dimension" mapstructure:"default_max_dimension"`
	DefaultLineThickness float64      `json:"default_line_thickness" mapstructure:"default_line_thickness"`
	DefaultLabelDensity  float64      `json:"default_label_density" mapstructure:"default_label_density"`
	DefaultQuality       int          `json:"default_quality" mapstructure:"default_quality"`
	DefaultFormat        OutputFormat `json:"default_format" mapstructure:"default_format"`
	JPEGQuality          int          `json:"jpeg_quality" mapstructure:"jpeg_quality"`

	// Rendering
	RenderBackend string `json:"render_backend" mapstructure:"render_backend"` // "auto", "scene", "compositor"
	TileCacheDir  string `json:"tile_cache_dir" mapstructure:"tile_cache_dir"`
	TileLayerFile string `json:"tile_layer_file" mapstructure:"tile_layer_file"`
	UserAgent     string `json:"user_agent" mapstructure:"user_agent"`

	// Application preferences
	LogLevel      string   `json:"log_level" mapstructure:"log_level"`
	LogFormat     string   `json:"log_format" mapstructure:"log_format"`
	RecentExports []string `json:"recent_exports" mapstructure:"recent_exports"`
}

// DefaultAppConfig returns an AppConfig populated with defaults matching
// DefaultExportConfig().
func DefaultAppConfig() AppConfig {
	defaults := DefaultExportConfig()
	return AppConfig{
		DefaultTileLayer:     defaults.TileLayerKey,
		DefaultMaxDimension:  defaults.MaxDimension,
		DefaultLineThickness: defaults.LineThickness,
		DefaultLabelDensity:  defaults.LabelDensity,
		DefaultQuality:       defaults.ExportQuality,
		DefaultFormat:        FormatPNG,
		JPEGQuality:          90,
		RenderBackend:        "auto",
		TileCacheDir:         "",
		UserAgent:            "StrataLines/1.0",
		LogLevel:             "info",
		LogFormat:            "text",
		RecentExports:        []string{},
	}
}

// ApplyToExportConfig copies the export defaults into cfg.
// This is used when starting a new export so it inherits the user's saved defaults.
func (c AppConfig) ApplyToExportConfig(cfg *ExportConfig) {
	cfg.TileLayerKey = c.DefaultTileLayer
	cfg.MaxDimension = c.DefaultMaxDimension
	cfg.LineThickness = c.DefaultLineThickness
	cfg.LabelDensity = c.DefaultLabelDensity
	cfg.ExportQuality = c.DefaultQuality
}
