package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/metrics"
)

// Default global viewport when no specific country is selected.
var globalCenter = domain.GeoPoint{Lat: 20, Lon: 0}

const (
	globalZoom  = 2
	baseTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
)

// MapRequest describes one map composition.
type MapRequest struct {
	Country     string
	Years       []int
	ShowNDVI    bool
	ShowBloom   bool
	Coarsen     bool
	ShowOverlap bool
}

// MapService assembles the layered map: a base layer, one tile layer per
// enabled raster, a border outline for the selected country, and an optional
// cross-sensor overlap layer. Layers are owned by the single composition that
// created them and are never shared across requests.
type MapService struct {
	boundaries *BoundaryService
	rasters    *RasterService
	bloom      *BloomService
	events     ports.EventPublisher
}

// NewMapService creates a new MapService.
func NewMapService(boundaries *BoundaryService, rasters *RasterService, bloom *BloomService, events ports.EventPublisher) *MapService {
	return &MapService{boundaries: boundaries, rasters: rasters, bloom: bloom, events: events}
}

// Compose builds the full map view for a request. Any failure is returned to
// the caller; converting it to inline markup happens only at the response
// boundary.
func (s *MapService) Compose(ctx context.Context, req MapRequest) (*domain.MapView, error) {
	start := time.Now()

	view, err := s.compose(ctx, req)
	if err != nil {
		metrics.MapsComposed.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.MapsComposed.WithLabelValues("ok").Inc()

	if s.events != nil {
		ev := &ports.MapRenderedEvent{
			Country:    req.Country,
			Years:      req.Years,
			Layers:     len(view.Layers),
			DurationMS: time.Since(start).Milliseconds(),
		}
		if err := s.events.PublishMapRendered(ctx, ev); err != nil {
			slog.Warn("publish map rendered", "error", err)
		}
	}
	return view, nil
}

func (s *MapService) compose(ctx context.Context, req MapRequest) (*domain.MapView, error) {
	b, err := s.boundaries.Resolve(ctx, req.Country)
	if err != nil {
		return nil, err
	}

	view := &domain.MapView{
		Center: globalCenter,
		Zoom:   globalZoom,
		Layers: []domain.MapLayer{{
			Kind:    domain.LayerTile,
			Name:    "OpenStreetMap",
			TileURL: baseTileURL,
			Overlay: false,
			Enabled: true,
		}},
	}
	if !b.IsWorld() {
		// Frame the viewport to the country, not the global default.
		bbox := b.BBox
		view.FitBounds = &bbox
		view.Center = bbox.Center()
	}

	years := append([]int(nil), req.Years...)
	sort.Ints(years)

	for _, year := range years {
		if req.ShowNDVI {
			layer, err := s.ndviLayer(ctx, b, year)
			if err != nil {
				return nil, &domain.RenderError{Stage: fmt.Sprintf("ndvi layer %d", year), Err: err}
			}
			view.Layers = append(view.Layers, layer)
		}

		if req.ShowBloom {
			modisBloom, err := s.bloom.YearOverYear(domain.SourceMODIS, b, year, req.Coarsen)
			if err != nil {
				return nil, &domain.RenderError{Stage: fmt.Sprintf("bloom layer %d", year), Err: err}
			}
			url, err := s.bloom.TileURL(ctx, modisBloom, domain.SourceMODIS)
			if err != nil {
				return nil, &domain.RenderError{Stage: fmt.Sprintf("bloom layer %d", year), Err: err}
			}
			view.Layers = append(view.Layers, domain.MapLayer{
				Kind:    domain.LayerTile,
				Name:    fmt.Sprintf("Bloom %d", year),
				TileURL: url,
				Overlay: true,
				Enabled: true,
			})

			if req.ShowOverlap {
				layer, err := s.overlapLayer(ctx, modisBloom, b, year, req.Coarsen)
				if err != nil {
					return nil, &domain.RenderError{Stage: fmt.Sprintf("overlap layer %d", year), Err: err}
				}
				view.Layers = append(view.Layers, layer)
			}
		}
	}

	if !b.IsWorld() {
		border, err := borderLayer(b)
		if err != nil {
			return nil, &domain.RenderError{Stage: "border layer", Err: err}
		}
		view.Layers = append(view.Layers, border)
	}

	return view, nil
}

func (s *MapService) ndviLayer(ctx context.Context, b *domain.Boundary, year int) (domain.MapLayer, error) {
	q := domain.YearQuery(domain.SourceMODIS, b, year)
	url, err := s.rasters.TileURL(ctx, q, domain.NDVIViz(domain.SourceMODIS))
	if err != nil {
		return domain.MapLayer{}, err
	}
	return domain.MapLayer{
		Kind:    domain.LayerTile,
		Name:    fmt.Sprintf("NDVI %d", year),
		TileURL: url,
		Overlay: true,
		Enabled: true,
	}, nil
}

// overlapLayer masks the MODIS bloom further by the Sentinel-2 bloom mask: a
// pixel survives only when both sensors independently crossed their own
// thresholds. Toggle-only, since it is stricter than either input.
func (s *MapService) overlapLayer(ctx context.Context, modisBloom domain.Image, b *domain.Boundary, year int, coarsen bool) (domain.MapLayer, error) {
	s2Bloom, err := s.bloom.YearOverYear(domain.SourceSentinel2, b, year, coarsen)
	if err != nil {
		return domain.MapLayer{}, err
	}
	overlap := s.bloom.Overlap(modisBloom, s2Bloom)
	url, err := s.bloom.TileURL(ctx, overlap, domain.SourceMODIS)
	if err != nil {
		return domain.MapLayer{}, err
	}
	return domain.MapLayer{
		Kind:    domain.LayerTile,
		Name:    fmt.Sprintf("Bloom overlap %d", year),
		TileURL: url,
		Overlay: true,
		Enabled: false,
	}, nil
}

func borderLayer(b *domain.Boundary) (domain.MapLayer, error) {
	gj, err := geojson.Marshal(b.Geom)
	if err != nil {
		return domain.MapLayer{}, err
	}
	return domain.MapLayer{
		Kind:    domain.LayerGeoJSON,
		Name:    b.Name + " border",
		GeoJSON: string(gj),
		Color:   "red",
		Overlay: true,
		Enabled: true,
	}, nil
}
