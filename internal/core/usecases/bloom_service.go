package usecases

import (
	"context"
	"fmt"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
)

// Bloom reprojection policy for coarsened layers: averaged into coarser
// cells, then resampled onto plain geographic coordinates at a fixed scale.
// One policy for every source; the threshold alone is source-specific.
const (
	bloomCRS         = "EPSG:4326"
	bloomCoarseScale = 2000 // meters
)

// BloomService computes year-over-year (or bucket-over-bucket) greenness
// difference layers. A pixel counts as bloom only when the index increased by
// strictly more than the source's threshold; everything else is no data,
// which downstream rendering must keep fully transparent.
type BloomService struct {
	rasters *RasterService
	eval    ports.RasterEvaluator
}

// NewBloomService creates a new BloomService.
func NewBloomService(rasters *RasterService, eval ports.RasterEvaluator) *BloomService {
	return &BloomService{rasters: rasters, eval: eval}
}

// Difference builds the masked bloom expression for two same-source,
// same-boundary composites: current - previous, masked to pixels whose
// difference strictly exceeds the source threshold. Thresholds are bound to
// their source's unit system; mixing sources between cur and prev is an
// error, not a silent miscomputation.
func (s *BloomService) Difference(cur, prev domain.RasterQuery, coarsen bool) (domain.Image, error) {
	if cur.Source.Collection != prev.Source.Collection {
		return domain.Image{}, fmt.Errorf(
			"bloom: mixed sources %s and %s", cur.Source.Collection, prev.Source.Collection)
	}
	if cur.Boundary == nil || prev.Boundary == nil || cur.Boundary.Name != prev.Boundary.Name {
		return domain.Image{}, fmt.Errorf("bloom: current and previous boundaries differ")
	}

	curImg, err := s.rasters.Composite(cur)
	if err != nil {
		return domain.Image{}, err
	}
	prevImg, err := s.rasters.Composite(prev)
	if err != nil {
		return domain.Image{}, err
	}

	diff := curImg.Subtract(prevImg)
	if coarsen {
		diff = diff.ReduceResolution().Reproject(bloomCRS, bloomCoarseScale)
	}
	return diff.UpdateMask(diff.Gt(cur.Source.BloomThreshold)), nil
}

// YearOverYear builds the bloom expression for a year against the prior year.
func (s *BloomService) YearOverYear(src domain.Source, b *domain.Boundary, year int, coarsen bool) (domain.Image, error) {
	cur := domain.YearQuery(src, b, year)
	prev := domain.YearQuery(src, b, year-1)
	return s.Difference(cur, prev, coarsen)
}

// Overlap masks one source's bloom layer by another's: the logical AND of two
// independently thresholded masks. Each operand keeps its own unit system.
func (s *BloomService) Overlap(a, b domain.Image) domain.Image {
	return a.UpdateMask(b)
}

// TileURL renders a bloom expression as a styled tile layer template.
func (s *BloomService) TileURL(ctx context.Context, img domain.Image, src domain.Source) (string, error) {
	return s.eval.TileURL(ctx, img, domain.BloomViz(src))
}
