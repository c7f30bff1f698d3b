// Package export turns a snapshot of tracks and places into one composite
// raster by rendering bounded-size subdivisions in sequence and stitching
// them together.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/StrataLines/internal/engine"
	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/piwi3910/StrataLines/internal/pkg/metrics"
	"github.com/piwi3910/StrataLines/internal/render"
	"golang.org/x/image/draw"
)

const (
	// DefaultLabelMargin widens each subdivision when picking the places to
	// draw, so a label that crosses a seam is drawn on both sides of it.
	DefaultLabelMargin = 160.0

	// DefaultMaxCompositePixels caps the composite at 1 GiB of RGBA.
	DefaultMaxCompositePixels = 1 << 28
)

// State is the lifecycle of an export job.
type State int

const (
	StateIdle State = iota
	StateSubdivisionsCalculated
	StateRendering
	StateStitching
	StateComplete
	StateFailed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateSubdivisionsCalculated:
		return "subdivisions-calculated"
	case StateRendering:
		return "rendering"
	case StateStitching:
		return "stitching"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "idle"
	}
}

// Stage names a step within one subdivision.
type Stage string

const (
	StagePlan   Stage = "plan"
	StageBase   Stage = "base"
	StageTracks Stage = "tracks"
	StagePlaces Stage = "places"
	StageStitch Stage = "stitch"
)

// Callbacks receive progress synchronously from the export loop. Every field
// is optional.
type Callbacks struct {
	OnSubdivisionsCalculated func(subs []model.Subdivision)
	OnSubdivisionProgress    func(index int, status model.SubdivisionStatus)
	OnSubdivisionStitched    func(index int)
	OnStageProgress          func(stage Stage, fraction float64)
	OnComplete               func(composite *image.RGBA)
	OnError                  func(err error)
}

// Exporter holds the collaborators shared by every export job.
type Exporter struct {
	Renderer           render.Renderer
	Places             *render.PlaceRenderer
	Layers             model.TileLayers
	LabelMargin        float64
	MaxCompositePixels int
	Logger             *slog.Logger
}

// NewExporter wires an exporter with default limits.
func NewExporter(r render.Renderer, places *render.PlaceRenderer, layers model.TileLayers, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if layers == nil {
		layers = model.DefaultTileLayers
	}
	return &Exporter{
		Renderer:           r,
		Places:             places,
		Layers:             layers,
		LabelMargin:        DefaultLabelMargin,
		MaxCompositePixels: DefaultMaxCompositePixels,
		Logger:             logger,
	}
}

// NewJob prepares an export. The job does nothing until Run is called.
func (e *Exporter) NewJob(cfg model.ExportConfig, snap model.Snapshot, cb Callbacks) *Job {
	id := uuid.New().String()
	return &Job{
		ID:       id,
		exporter: e,
		cfg:      cfg,
		snap:     snap,
		cb:       cb,
		logger:   e.Logger.With("export_id", id[:8]),
	}
}

// Export runs a single job to completion.
func (e *Exporter) Export(ctx context.Context, cfg model.ExportConfig, snap model.Snapshot, cb Callbacks) (*image.RGBA, error) {
	return e.NewJob(cfg, snap, cb).Run(ctx)
}

// Job is one export. Subdivisions are processed strictly one at a time.
type Job struct {
	ID string

	exporter *Exporter
	cfg      model.ExportConfig
	snap     model.Snapshot
	cb       Callbacks
	logger   *slog.Logger

	state   State
	plan    Plan
	current int
}

// State returns the job's current state.
func (j *Job) State() State { return j.state }

// Plan returns the subdivision grid once it has been calculated.
func (j *Job) Plan() Plan { return j.plan }

// Run drives the export. On success OnComplete receives the composite and it
// is also returned. Any failure invokes OnError exactly once, discards the
// composite and stops further work.
func (j *Job) Run(ctx context.Context) (*image.RGBA, error) {
	if j.state != StateIdle {
		return nil, ErrJobAlreadyRun
	}
	start := time.Now()
	j.current = -1

	layer, err := j.checkConfig()
	if err != nil {
		return nil, j.fail(err)
	}

	plan, err := Subdivide(j.cfg, layer.Size(), j.exporter.MaxCompositePixels)
	if err != nil {
		return nil, j.fail(err)
	}
	j.plan = plan
	j.state = StateSubdivisionsCalculated
	j.logger.Info("subdivisions calculated",
		"zoom", plan.Zoom, "width", plan.Width, "height", plan.Height,
		"rows", plan.Rows, "cols", plan.Cols)
	if j.cb.OnSubdivisionsCalculated != nil {
		subs := make([]model.Subdivision, len(plan.Subdivisions))
		copy(subs, plan.Subdivisions)
		j.cb.OnSubdivisionsCalculated(subs)
	}

	composite := image.NewRGBA(plan.Bounds())
	n := len(plan.Subdivisions)

	for i := range plan.Subdivisions {
		if err := ctx.Err(); err != nil {
			return nil, j.abort(err)
		}
		j.current = i

		tile, err := j.renderSubdivision(ctx, i)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, j.abort(err)
			}
			return nil, j.fail(err)
		}

		j.state = StateStitching
		sub := &j.plan.Subdivisions[i]
		draw.Draw(composite, sub.PixelRect(), tile, image.Point{}, draw.Src)
		j.setStatus(i, model.SubdivisionStitched)
		if j.cb.OnSubdivisionStitched != nil {
			j.cb.OnSubdivisionStitched(i)
		}
		j.progress(StageStitch, float64(i+1)/float64(n))
	}

	j.state = StateComplete
	metrics.ExportsTotal.WithLabelValues("complete").Inc()
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	j.logger.Info("export complete", "subdivisions", n, "duration", time.Since(start).Round(time.Millisecond))
	if j.cb.OnComplete != nil {
		j.cb.OnComplete(composite)
	}
	return composite, nil
}

// checkConfig rejects configurations before anything is subdivided.
func (j *Job) checkConfig() (model.TileLayer, error) {
	if j.exporter.Renderer == nil {
		return model.TileLayer{}, invalidConfig("no renderer configured")
	}
	if err := j.cfg.Validate(); err != nil {
		return model.TileLayer{}, invalidConfig("%v", err)
	}
	layer, ok := j.exporter.Layers.Get(j.cfg.TileLayerKey)
	if !ok {
		return model.TileLayer{}, invalidConfig("unknown tile layer %q", j.cfg.TileLayerKey)
	}
	if z := j.cfg.ExportZoom(); layer.MaxZoom > 0 && z > layer.MaxZoom {
		return model.TileLayer{}, invalidConfig("tile layer %q serves up to zoom %d, export needs %d", layer.Key, layer.MaxZoom, z)
	}
	return layer, nil
}

// renderSubdivision produces the finished pixels of subdivision i: base
// imagery, then a transparent overlay with tracks and places composed on top.
func (j *Job) renderSubdivision(ctx context.Context, i int) (*image.RGBA, error) {
	start := time.Now()
	r := j.exporter.Renderer
	sub := j.plan.Subdivisions[i]
	n := float64(len(j.plan.Subdivisions))

	j.state = StateRendering
	j.setStatus(i, model.SubdivisionRendering)
	j.logger.Debug("rendering subdivision", "index", i, "row", sub.Row, "col", sub.Col, "width", sub.Width, "height", sub.Height)

	base, err := r.RenderBase(ctx, render.BaseRequest{
		Bounds:   sub.Bounds,
		Zoom:     j.plan.Zoom,
		LayerKey: j.cfg.TileLayerKey,
		Origin:   j.plan.Origin.Add(image.Pt(sub.X, sub.Y)),
		Size:     image.Pt(sub.Width, sub.Height),
	})
	if err != nil {
		return nil, &SubdivisionError{Index: i, Stage: StageBase, Err: err}
	}
	if err := render.AssertBaseTilesRendered(base, r.Background()); err != nil {
		return nil, &SubdivisionError{Index: i, Stage: StageBase, Err: err}
	}
	j.progress(StageBase, (float64(i)+0.4)/n)

	proj := j.plan.LocalProjection(sub)
	view := engine.RectXYWH(0, 0, float64(sub.Width), float64(sub.Height))
	overlay := image.NewRGBA(base.Bounds())

	lines := render.TracksInView(j.snap.Tracks, proj, view, j.cfg.LineThickness)
	if err := r.RenderTracks(overlay, lines); err != nil {
		return nil, &SubdivisionError{Index: i, Stage: StageTracks, Err: err}
	}
	if len(lines) > 0 {
		if err := render.AssertLinesRendered(overlay); err != nil {
			return nil, &SubdivisionError{Index: i, Stage: StageTracks, Err: err}
		}
	}
	j.progress(StageTracks, (float64(i)+0.7)/n)

	if j.exporter.Places != nil {
		near := placesNear(j.snap.Places, proj, view.Expand(j.labelMargin()))
		labels := j.exporter.Places.Layout(near, proj, j.cfg.LabelDensity)
		j.exporter.Places.Draw(overlay, labels)
		j.logger.Debug("places drawn", "index", i, "count", len(labels))
	}
	j.progress(StagePlaces, (float64(i)+0.9)/n)

	draw.Draw(base, base.Bounds(), overlay, image.Point{}, draw.Over)

	j.setStatus(i, model.SubdivisionRendered)
	metrics.SubdivisionsTotal.WithLabelValues("rendered").Inc()
	metrics.SubdivisionRenderDuration.WithLabelValues(r.Name()).Observe(time.Since(start).Seconds())
	return base, nil
}

func (j *Job) labelMargin() float64 {
	if j.exporter.LabelMargin < 0 {
		return 0
	}
	return j.exporter.LabelMargin
}

// placesNear keeps the visible places whose anchor projects inside area.
func placesNear(places []model.Place, proj engine.Projector, area engine.Rect) []model.Place {
	var out []model.Place
	for _, p := range places {
		if !p.Visible {
			continue
		}
		pt := proj.Project(p.Position)
		if pt.X >= area.Left && pt.X <= area.Right && pt.Y >= area.Top && pt.Y <= area.Bottom {
			out = append(out, p)
		}
	}
	return out
}

func (j *Job) setStatus(i int, status model.SubdivisionStatus) {
	j.plan.Subdivisions[i].Status = status
	if j.cb.OnSubdivisionProgress != nil {
		j.cb.OnSubdivisionProgress(i, status)
	}
}

func (j *Job) progress(stage Stage, fraction float64) {
	if j.cb.OnStageProgress != nil {
		j.cb.OnStageProgress(stage, fraction)
	}
}

func (j *Job) fail(err error) error {
	j.state = StateFailed
	if j.current >= 0 && j.current < len(j.plan.Subdivisions) {
		j.setStatus(j.current, model.SubdivisionFailed)
		metrics.SubdivisionsTotal.WithLabelValues("failed").Inc()
	}
	metrics.ExportsTotal.WithLabelValues(KindOf(err).String()).Inc()
	j.logger.Error("export failed", "kind", KindOf(err).String(), "error", err)
	if j.cb.OnError != nil {
		j.cb.OnError(err)
	}
	return err
}

func (j *Job) abort(cause error) error {
	err := fmt.Errorf("%w: %v", ErrExportAborted, cause)
	j.state = StateAborted
	metrics.ExportsTotal.WithLabelValues("aborted").Inc()
	j.logger.Warn("export aborted", "completed", j.stitched(), "total", len(j.plan.Subdivisions))
	if j.cb.OnError != nil {
		j.cb.OnError(err)
	}
	return err
}

func (j *Job) stitched() int {
	n := 0
	for _, s := range j.plan.Subdivisions {
		if s.Status == model.SubdivisionStitched {
			n++
		}
	}
	return n
}
