// StrataLines renders GPS tracks and titled places over web-map tiles into
// a single high-resolution image, PDF sheet or DXF drawing.
//
// Build:
//   go build -o stratalines ./cmd/stratalines
//
// Example:
//   stratalines -o ridge.pdf -preset Poster -title "Ridge walk" ride.gpx huts.csv

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/piwi3910/StrataLines/internal/export"
	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/piwi3910/StrataLines/internal/pkg/logging"
	"github.com/piwi3910/StrataLines/internal/pkg/metrics"
	"github.com/piwi3910/StrataLines/internal/project"
	"github.com/piwi3910/StrataLines/internal/render"
)

type options struct {
	ConfigPath  string
	Output      string
	Bounds      string
	Preset      string
	Layer       string
	LayerFile   string
	Backend     string
	Title       string
	DXFPath     string
	GPXDir      string
	MetricsAddr string
	LogLevel    string
	Zoom        int
	PreviewZoom int
	Quality     int
	MaxDim      int
	Density     float64
	Thickness   float64
	Inputs      []string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("stratalines", flag.ContinueOnError)
	fs.StringVar(&o.ConfigPath, "config", project.DefaultConfigPath(), "Path to the config file (JSON, YAML or TOML).")
	fs.StringVar(&o.Output, "o", "export.png", "Output file; the extension picks png, jpg or pdf.")
	fs.StringVar(&o.Bounds, "bounds", "", "Export bounds as north,south,east,west. Defaults to the data extent.")
	fs.StringVar(&o.Preset, "preset", "", "Export preset name (Draft, Print, Poster or a custom preset).")
	fs.StringVar(&o.Layer, "layer", "", "Tile layer key.")
	fs.StringVar(&o.LayerFile, "layers", "", "YAML file with extra tile layers.")
	fs.StringVar(&o.Backend, "backend", "", "Render backend: auto, scene or compositor.")
	fs.StringVar(&o.Title, "title", "", "Sheet title for PDF output.")
	fs.StringVar(&o.DXFPath, "dxf", "", "Also write the frame, tracks and places to this DXF file.")
	fs.StringVar(&o.GPXDir, "gpx-dir", "", "Also write every visible track as GPX into this directory.")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while exporting.")
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level: debug, info, warn or error.")
	fs.IntVar(&o.Zoom, "zoom", -1, "Explicit export zoom; unset derives it from -preview-zoom and -quality.")
	fs.IntVar(&o.PreviewZoom, "preview-zoom", 0, "Zoom the export quality is relative to.")
	fs.IntVar(&o.Quality, "quality", -1, "Zoom levels above the preview zoom.")
	fs.IntVar(&o.MaxDim, "max-dim", 0, "Maximum subdivision side in pixels.")
	fs.Float64Var(&o.Density, "density", -1, "Label density from 0 (sparse) to 1 (dense).")
	fs.Float64Var(&o.Thickness, "thickness", 0, "Track line thickness in pixels.")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: stratalines [flags] input.gpx|input.csv|input.xlsx|input.dxf ...\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.Inputs = fs.Args()
	if len(o.Inputs) == 0 {
		fs.Usage()
		return o, errors.New("no input files")
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		slog.Error("export failed", "error", err, "kind", export.KindOf(err).String())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	appCfg, err := project.LoadAppConfig(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		appCfg.LogLevel = o.LogLevel
	}
	if o.Backend != "" {
		appCfg.RenderBackend = o.Backend
	}
	if err := project.ValidateAppConfig(appCfg); err != nil {
		return err
	}
	logger := logging.Setup(appCfg.LogLevel, appCfg.LogFormat)

	layerFile := appCfg.TileLayerFile
	if o.LayerFile != "" {
		layerFile = o.LayerFile
	}
	layers, err := project.LoadRegistry(layerFile)
	if err != nil {
		return err
	}

	snap, err := loadInputs(o.Inputs, logger)
	if err != nil {
		return err
	}

	cfg, format, err := buildExportConfig(o, appCfg, snap, logger)
	if err != nil {
		return err
	}

	if o.MetricsAddr != "" {
		srv := serveMetrics(o.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	backend, err := render.Detect(appCfg.RenderBackend, os.Getenv)
	if err != nil {
		return err
	}
	cacheDir := appCfg.TileCacheDir
	if cacheDir == "" {
		cacheDir = project.DefaultTileCacheDir()
	}
	tiles := render.NewHTTPTileSource(appCfg.UserAgent, cacheDir)
	tiles.Logger = logger
	renderer, err := render.New(backend, render.Options{Tiles: tiles, Layers: layers, Logger: logger})
	if err != nil {
		return err
	}
	fonts, err := render.NewFontBook()
	if err != nil {
		return err
	}
	places := render.NewPlaceRenderer(fonts, render.NewIconCache())
	exporter := export.NewExporter(renderer, places, layers, logger)

	logger.Info("starting export",
		"renderer", renderer.Name(),
		"layer", cfg.TileLayerKey,
		"zoom", cfg.ExportZoom(),
		"tracks", len(snap.Tracks),
		"places", len(snap.Places),
	)

	var bar *progressbar.ProgressBar
	composite, err := exporter.Export(ctx, cfg, snap, export.Callbacks{
		OnSubdivisionsCalculated: func(subs []model.Subdivision) {
			bar = progressbar.Default(int64(len(subs)), "Rendering")
		},
		OnSubdivisionStitched: func(int) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
		OnStageProgress: func(stage export.Stage, fraction float64) {
			logger.Debug("stage progress", "stage", stage, "fraction", fraction)
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	if err := writeOutputs(o, appCfg, cfg, format, layers, snap, composite); err != nil {
		return err
	}

	project.AddRecentExport(&appCfg, o.Output, 10)
	if err := project.SaveAppConfig(o.ConfigPath, appCfg); err != nil {
		logger.Warn("could not save recent exports", "error", err)
	}
	logger.Info("export written", "path", o.Output, "width", composite.Bounds().Dx(), "height", composite.Bounds().Dy())
	return nil
}

func writeOutputs(o options, appCfg model.AppConfig, cfg model.ExportConfig, format model.OutputFormat,
	layers model.TileLayers, snap model.Snapshot, composite *image.RGBA) error {
	attribution := ""
	if l, ok := layers.Get(cfg.TileLayerKey); ok {
		attribution = l.Attribution
	}
	if err := export.SaveImage(o.Output, composite, export.EncodeOptions{
		Format:      format,
		JPEGQuality: appCfg.JPEGQuality,
		Title:       o.Title,
		Attribution: attribution,
		Bounds:      cfg.Bounds,
		Zoom:        cfg.ExportZoom(),
	}); err != nil {
		return err
	}

	if o.DXFPath != "" {
		if err := export.ExportDXF(o.DXFPath, cfg.Bounds, snap); err != nil {
			return err
		}
	}

	if o.GPXDir != "" {
		if err := os.MkdirAll(o.GPXDir, 0755); err != nil {
			return err
		}
		for _, t := range snap.Tracks {
			if !t.Visible {
				continue
			}
			if err := export.ExportGPX(filepath.Join(o.GPXDir, export.GPXFileName(t)), t); err != nil {
				return err
			}
		}
	}
	return nil
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
