package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/metrics"
)

// BoundaryService resolves country names to boundary geometries. The
// reference dataset is fixed, so lookups are cached read-through; resolution
// happens once per request and the result is threaded to every consumer.
type BoundaryService struct {
	repo  ports.BoundaryRepository
	cache ports.CacheService
}

// NewBoundaryService creates a new BoundaryService.
func NewBoundaryService(repo ports.BoundaryRepository, cache ports.CacheService) *BoundaryService {
	return &BoundaryService{repo: repo, cache: cache}
}

// Countries returns the selectable country names: "World" first, then every
// boundary name sorted ascending.
func (s *BoundaryService) Countries(ctx context.Context) ([]string, error) {
	const cacheKey = "boundaries:names"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var names []string
			if err := json.Unmarshal(data, &names); err == nil {
				metrics.CacheHits.WithLabelValues("countries").Inc()
				return names, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("countries").Inc()
	}

	names, err := s.repo.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	all := append([]string{domain.WorldName}, names...)

	// Reference data changes only on re-ingest; an hour is plenty.
	if s.cache != nil {
		if data, err := json.Marshal(all); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}
	return all, nil
}

// Resolve maps a country name (or the World sentinel) to its boundary.
// Exactly one boundary resolves per valid name; an unknown name returns
// domain.ErrCountryNotFound, never an empty result.
func (s *BoundaryService) Resolve(ctx context.Context, name string) (*domain.Boundary, error) {
	if name == "" || name == domain.WorldName {
		return domain.WorldBoundary(), nil
	}

	cacheKey := "boundaries:name:" + name
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			if b, err := decodeBoundary(data); err == nil {
				metrics.CacheHits.WithLabelValues("boundary").Inc()
				return b, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("boundary").Inc()
	}

	b, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := encodeBoundary(b); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}
	return b, nil
}

// cachedBoundary is the cache wire form: geometry as GeoJSON.
type cachedBoundary struct {
	Name string          `json:"name"`
	BBox domain.BBox     `json:"bbox"`
	Geom json.RawMessage `json:"geom"`
}

func encodeBoundary(b *domain.Boundary) ([]byte, error) {
	g, err := geojson.Marshal(b.Geom)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedBoundary{Name: b.Name, BBox: b.BBox, Geom: g})
}

func decodeBoundary(data []byte) (*domain.Boundary, error) {
	var cb cachedBoundary
	if err := json.Unmarshal(data, &cb); err != nil {
		return nil, err
	}
	var g geom.T
	if err := geojson.Unmarshal(cb.Geom, &g); err != nil {
		return nil, err
	}
	mp, ok := g.(*geom.MultiPolygon)
	if !ok {
		return nil, fmt.Errorf("cached boundary %q: unexpected geometry %T", cb.Name, g)
	}
	return &domain.Boundary{Name: cb.Name, BBox: cb.BBox, Geom: mp}, nil
}
