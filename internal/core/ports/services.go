package ports

import (
	"context"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// RasterEvaluator executes raster expressions against the remote analytics
// service. Building an expression is pure; each method here is a single
// network round trip. There are no retries: a remote failure is a one-shot
// FetchError for that sub-computation.
type RasterEvaluator interface {
	// TileURL renders the expression through the remote tile service and
	// returns a {z}/{x}/{y} URL template styled by the visualization spec.
	TileURL(ctx context.Context, img domain.Image, viz domain.VisualizationSpec) (string, error)
	// ReduceRegionMean reduces the expression to a single mean scalar over
	// the boundary at the given pixel scale. A nil value (with nil error)
	// means the region had no valid pixels: "no data", not zero.
	ReduceRegionMean(ctx context.Context, img domain.Image, b *domain.Boundary, scaleMeters float64) (*float64, error)
}

// CacheService provides read-through caching for reference data (country
// names, resolved boundaries). Raster entities are never cached: they are
// constructed fresh per request and discarded.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// MapRenderedEvent is published after a map composition completes.
type MapRenderedEvent struct {
	Country    string `json:"country"`
	Years      []int  `json:"years"`
	Layers     int    `json:"layers"`
	DurationMS int64  `json:"duration_ms"`
}

// ChartGeneratedEvent is published after a time-series chart is written.
type ChartGeneratedEvent struct {
	Metric  string `json:"metric"`
	Country string `json:"country"`
	Year    int    `json:"year"`
	Path    string `json:"path"`
}

// EventPublisher publishes render activity to a message broker. Publishing is
// best-effort; a nil publisher is valid and means events are dropped.
type EventPublisher interface {
	PublishMapRendered(ctx context.Context, ev *MapRenderedEvent) error
	PublishChartGenerated(ctx context.Context, ev *ChartGeneratedEvent) error
}

// ChartRenderer draws a time series into a PNG image.
type ChartRenderer interface {
	Render(ts *domain.TimeSeries) ([]byte, error)
}
