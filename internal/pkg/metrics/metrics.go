package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Export metrics
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratalines",
		Subsystem: "export",
		Name:      "exports_total",
		Help:      "Total exports by result",
	}, []string{"result"})

	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stratalines",
		Subsystem: "export",
		Name:      "duration_seconds",
		Help:      "Wall time of a whole export",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	SubdivisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratalines",
		Subsystem: "export",
		Name:      "subdivisions_total",
		Help:      "Total subdivisions processed by result",
	}, []string{"result"})

	SubdivisionRenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stratalines",
		Subsystem: "export",
		Name:      "subdivision_render_duration_seconds",
		Help:      "Duration of rendering one subdivision",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"renderer"})

	// Tile metrics
	TileFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratalines",
		Subsystem: "tiles",
		Name:      "fetches_total",
		Help:      "Tile lookups by layer and outcome (hit, miss, not_found, error)",
	}, []string{"layer", "result"})
)

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
