package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/metrics"
)

// TimeSeriesService computes per-bucket mean scalars over a geometry and
// renders them to line-chart images. Buckets are fetched sequentially, one
// remote round trip each; a bucket with no valid pixels records a null point.
type TimeSeriesService struct {
	rasters   *RasterService
	renderer  ports.ChartRenderer
	events    ports.EventPublisher
	dir       string
	urlPrefix string
}

// NewTimeSeriesService creates a new TimeSeriesService writing charts under
// dir and returning paths below urlPrefix.
func NewTimeSeriesService(rasters *RasterService, renderer ports.ChartRenderer, events ports.EventPublisher, dir, urlPrefix string) *TimeSeriesService {
	return &TimeSeriesService{
		rasters:   rasters,
		renderer:  renderer,
		events:    events,
		dir:       dir,
		urlPrefix: urlPrefix,
	}
}

// Series computes the time series for one year. For the bloom metric each
// bucket's value is the regional mean of (bucket composite - immediately
// preceding equal-length composite); for the raw metric it is the regional
// mean of the bucket composite. Values are converted to display scale.
func (s *TimeSeriesService) Series(ctx context.Context, b *domain.Boundary, src domain.Source, year int, gran domain.Granularity, metric domain.Metric) (*domain.TimeSeries, error) {
	ts := &domain.TimeSeries{
		Country:     b.Name,
		Year:        year,
		Metric:      metric,
		Granularity: gran,
	}

	for _, bucket := range domain.Buckets(gran, src, year) {
		bucket.Boundary = b

		value, err := s.bucketValue(ctx, bucket, metric)
		if err != nil {
			return nil, err
		}
		if value == nil {
			metrics.TimeSeriesBucketNulls.Inc()
		} else {
			display := src.DisplayValue(*value)
			value = &display
		}
		ts.Points = append(ts.Points, domain.TimeSeriesPoint{Date: bucket.Start, Value: value})
	}
	return ts, nil
}

func (s *TimeSeriesService) bucketValue(ctx context.Context, bucket domain.RasterQuery, metric domain.Metric) (*float64, error) {
	if metric != domain.MetricBloom {
		return s.rasters.RegionMean(ctx, bucket)
	}

	cur, err := s.rasters.Composite(bucket)
	if err != nil {
		return nil, err
	}
	prev, err := s.rasters.Composite(domain.PrecedingBucket(bucket))
	if err != nil {
		return nil, err
	}
	return s.rasters.eval.ReduceRegionMean(ctx, cur.Subtract(prev), bucket.Boundary, bucket.Source.ReduceScale)
}

// Generate computes the series and persists its chart image under the charts
// directory, returning the chart's URL path. Identical inputs overwrite the
// same file, which is an accepted idempotent overwrite. Failures mean "no
// chart available": the caller renders the page without the chart rather
// than surfacing an error.
func (s *TimeSeriesService) Generate(ctx context.Context, b *domain.Boundary, src domain.Source, year int, gran domain.Granularity, metric domain.Metric) (string, error) {
	ts, err := s.Series(ctx, b, src, year, gran, metric)
	if err != nil {
		return "", err
	}

	png, err := s.renderer.Render(ts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("charts dir: %w", err)
	}
	name := domain.ChartFilename(metric, gran, b.Name, year)
	if err := os.WriteFile(filepath.Join(s.dir, name), png, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}

	metrics.ChartsRendered.WithLabelValues(string(metric)).Inc()
	path := s.urlPrefix + "/" + name

	if s.events != nil {
		ev := &ports.ChartGeneratedEvent{
			Metric:  string(metric),
			Country: b.Name,
			Year:    year,
			Path:    path,
		}
		if err := s.events.PublishChartGenerated(ctx, ev); err != nil {
			slog.Warn("publish chart generated", "error", err)
		}
	}
	return path, nil
}
