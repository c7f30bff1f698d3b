package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/piwi3910/StrataLines/internal/pkg/metrics"
)

// ErrTileNotFound is returned when a layer has no tile at the requested
// address. Renderers leave the background in place for missing tiles.
var ErrTileNotFound = errors.New("tile not found")

// TileSource fetches decoded tile images.
type TileSource interface {
	Tile(ctx context.Context, layer model.TileLayer, t maptile.Tile) (image.Image, error)
}

// ExpandTemplate fills the {z}, {x}, {y} and {s} placeholders of tmpl.
func ExpandTemplate(tmpl string, t maptile.Tile, subdomain string) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{s}", subdomain,
	)
	return r.Replace(tmpl)
}

// TileURL picks a template and subdomain for t, spreading adjacent tiles
// across the available shards.
func TileURL(layer model.TileLayer, t maptile.Tile) (string, error) {
	if len(layer.URLTemplates) == 0 {
		return "", fmt.Errorf("tile layer %q has no URL templates", layer.Key)
	}
	shard := int(t.X+t.Y) % len(layer.URLTemplates)
	sub := ""
	if len(layer.Subdomains) > 0 {
		sub = layer.Subdomains[int(t.X+t.Y)%len(layer.Subdomains)]
	}
	return ExpandTemplate(layer.URLTemplates[shard], t, sub), nil
}

// MemoryTileCache is a bounded in-memory tile cache with FIFO eviction.
type MemoryTileCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]image.Image
}

func NewMemoryTileCache(capacity int) *MemoryTileCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryTileCache{capacity: capacity, entries: make(map[string]image.Image)}
}

func (c *MemoryTileCache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.entries[key]
	return img, ok
}

func (c *MemoryTileCache) Put(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = img
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = img
}

func (c *MemoryTileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// HTTPTileSource downloads tiles over HTTP with a memory cache and an
// optional on-disk cache.
type HTTPTileSource struct {
	Client    *http.Client
	UserAgent string
	CacheDir  string // Empty disables the disk cache
	Memory    *MemoryTileCache
	Logger    *slog.Logger
}

// NewHTTPTileSource returns a source with sensible client defaults.
func NewHTTPTileSource(userAgent, cacheDir string) *HTTPTileSource {
	return &HTTPTileSource{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: userAgent,
		CacheDir:  cacheDir,
		Memory:    NewMemoryTileCache(512),
		Logger:    slog.Default(),
	}
}

func tileKey(layer model.TileLayer, t maptile.Tile) string {
	return fmt.Sprintf("%s/%d/%d/%d", layer.Key, t.Z, t.X, t.Y)
}

func (s *HTTPTileSource) cachePath(layer model.TileLayer, t maptile.Tile) string {
	return filepath.Join(s.CacheDir, layer.Key, strconv.Itoa(int(t.Z)), strconv.FormatUint(uint64(t.X), 10), strconv.FormatUint(uint64(t.Y), 10)+".tile")
}

// Tile implements TileSource.
func (s *HTTPTileSource) Tile(ctx context.Context, layer model.TileLayer, t maptile.Tile) (image.Image, error) {
	key := tileKey(layer, t)
	if s.Memory != nil {
		if img, ok := s.Memory.Get(key); ok {
			metrics.TileFetches.WithLabelValues(layer.Key, "hit").Inc()
			return img, nil
		}
	}

	if s.CacheDir != "" {
		if data, err := os.ReadFile(s.cachePath(layer, t)); err == nil {
			if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
				metrics.TileFetches.WithLabelValues(layer.Key, "hit").Inc()
				s.remember(key, img)
				return img, nil
			}
		}
	}

	data, err := s.download(ctx, layer, t)
	if err != nil {
		if errors.Is(err, ErrTileNotFound) {
			metrics.TileFetches.WithLabelValues(layer.Key, "not_found").Inc()
		} else {
			metrics.TileFetches.WithLabelValues(layer.Key, "error").Inc()
		}
		return nil, err
	}
	metrics.TileFetches.WithLabelValues(layer.Key, "miss").Inc()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", key, err)
	}

	if s.CacheDir != "" {
		path := s.cachePath(layer, t)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			if err := os.WriteFile(path, data, 0644); err != nil {
				s.logger().Warn("failed to cache tile", "tile", key, "error", err)
			}
		}
	}
	s.remember(key, img)
	return img, nil
}

func (s *HTTPTileSource) remember(key string, img image.Image) {
	if s.Memory != nil {
		s.Memory.Put(key, img)
	}
}

func (s *HTTPTileSource) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *HTTPTileSource) download(ctx context.Context, layer model.TileLayer, t maptile.Tile) ([]byte, error) {
	url, err := TileURL(layer, t)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building tile request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tile %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrTileNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching tile %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tile %s: %w", url, err)
	}
	s.logger().Debug("tile downloaded", "tile", tileKey(layer, t), "bytes", len(data))
	return data, nil
}
