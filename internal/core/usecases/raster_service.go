package usecases

import (
	"context"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
)

// RasterService fetches mean-composited rasters from the remote analytics
// service. Composite only builds the expression; TileURL and RegionMean are
// the terminal operations that actually reach the network.
type RasterService struct {
	eval ports.RasterEvaluator
}

// NewRasterService creates a new RasterService.
func NewRasterService(eval ports.RasterEvaluator) *RasterService {
	return &RasterService{eval: eval}
}

// Composite builds the temporal mean-composite expression for a query:
// filter the collection by geometry and date range, mean-composite, derive
// the index band where needed, and clip to the geometry. Clipping is skipped
// for the World sentinel so the global display is not needlessly constrained.
// An empty result set is not an error: the remote service yields an
// all-no-data composite.
func (s *RasterService) Composite(q domain.RasterQuery) (domain.Image, error) {
	if err := q.Validate(); err != nil {
		return domain.Image{}, err
	}

	img := domain.Composite(q)
	if q.Source.Derived() {
		img = img.NormalizedDifference(q.Source.NIRBand, q.Source.RedBand)
	}
	if !q.Boundary.IsWorld() {
		img = img.Clip(q.Boundary)
	}
	return img, nil
}

// TileURL renders the composite for q as a styled tile layer template.
func (s *RasterService) TileURL(ctx context.Context, q domain.RasterQuery, viz domain.VisualizationSpec) (string, error) {
	img, err := s.Composite(q)
	if err != nil {
		return "", err
	}
	return s.eval.TileURL(ctx, img, viz)
}

// RegionMean reduces the composite for q to a single mean scalar over its
// boundary at the source's nominal scale. A nil value means the region had no
// valid pixels for the period.
func (s *RasterService) RegionMean(ctx context.Context, q domain.RasterQuery) (*float64, error) {
	img, err := s.Composite(q)
	if err != nil {
		return nil, err
	}
	return s.eval.ReduceRegionMean(ctx, img, q.Boundary, q.Source.ReduceScale)
}
