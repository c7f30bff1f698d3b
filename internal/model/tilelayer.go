package model

// TileLayer is a named raster tile source. URL templates use {z}, {x}, {y}
// and optionally {s} for a subdomain shard.
type TileLayer struct {
	Key          string   `json:"key" yaml:"key"`
	Name         string   `json:"name" yaml:"name"`
	URLTemplates []string `json:"urls" yaml:"urls"`
	Subdomains   []string `json:"subdomains,omitempty" yaml:"subdomains,omitempty"`
	Attribution  string   `json:"attribution" yaml:"attribution"`
	MaxZoom      int      `json:"max_zoom" yaml:"max_zoom"`
	TileSize     int      `json:"tile_size" yaml:"tile_size"`
	IsBuiltIn    bool     `json:"-" yaml:"-"`
}

// Size returns the tile edge length in pixels, defaulting to 256.
func (l TileLayer) Size() int {
	if l.TileSize <= 0 {
		return 256
	}
	return l.TileSize
}

// TileLayers is an ordered registry of tile layers.
type TileLayers []TileLayer

// Get returns the layer registered under key.
func (ls TileLayers) Get(key string) (TileLayer, bool) {
	for _, l := range ls {
		if l.Key == key {
			return l, true
		}
	}
	return TileLayer{}, false
}

// Keys returns all registered keys in order.
func (ls TileLayers) Keys() []string {
	keys := make([]string, 0, len(ls))
	for _, l := range ls {
		keys = append(keys, l.Key)
	}
	return keys
}

// Merge returns a registry where layers in extra replace built-ins with the same key
// and new keys are appended.
func (ls TileLayers) Merge(extra TileLayers) TileLayers {
	merged := make(TileLayers, 0, len(ls)+len(extra))
	merged = append(merged, ls...)
	for _, e := range extra {
		replaced := false
		for i := range merged {
			if merged[i].Key == e.Key {
				merged[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, e)
		}
	}
	return merged
}

// Built-in tile layers
var DefaultTileLayers = TileLayers{
	{
		Key:          "osm",
		Name:         "OpenStreetMap",
		URLTemplates: []string{"https://tile.openstreetmap.org/{z}/{x}/{y}.png"},
		Attribution:  "© OpenStreetMap contributors",
		MaxZoom:      19,
		TileSize:     256,
		IsBuiltIn:    true,
	},
	{
		Key:          "satellite",
		Name:         "Esri World Imagery",
		URLTemplates: []string{"https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"},
		Attribution:  "Tiles © Esri, source: Esri, Maxar, Earthstar Geographics, and the GIS User Community",
		MaxZoom:      19,
		TileSize:     256,
		IsBuiltIn:    true,
	},
	{
		Key:          "topo",
		Name:         "OpenTopoMap",
		URLTemplates: []string{"https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png"},
		Subdomains:   []string{"a", "b", "c"},
		Attribution:  "Map data © OpenStreetMap contributors, SRTM | Map style © OpenTopoMap (CC-BY-SA)",
		MaxZoom:      17,
		TileSize:     256,
		IsBuiltIn:    true,
	},
	{
		Key:  "light",
		Name: "CARTO Positron",
		URLTemplates: []string{
			"https://a.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
			"https://b.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
			"https://c.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		},
		Attribution: "© OpenStreetMap contributors © CARTO",
		MaxZoom:     20,
		TileSize:    256,
		IsBuiltIn:   true,
	},
}
