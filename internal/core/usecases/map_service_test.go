package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/usecases"
)

func newMapService(repo *mockBoundaryRepo, eval *mockEvaluator, events ports.EventPublisher) *usecases.MapService {
	boundaries := usecases.NewBoundaryService(repo, nil)
	rasters := usecases.NewRasterService(eval)
	bloom := usecases.NewBloomService(rasters, eval)
	return usecases.NewMapService(boundaries, rasters, bloom, events)
}

func layerNames(view *domain.MapView) []string {
	names := make([]string, 0, len(view.Layers))
	for _, l := range view.Layers {
		names = append(names, l.Name)
	}
	return names
}

func TestCompose_WorldNDVI(t *testing.T) {
	svc := newMapService(&mockBoundaryRepo{}, &mockEvaluator{}, nil)

	view, err := svc.Compose(context.Background(), usecases.MapRequest{
		Country:  domain.WorldName,
		Years:    []int{2023},
		ShowNDVI: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Base map plus one NDVI layer; no border for the global extent.
	if len(view.Layers) != 2 {
		t.Fatalf("layers = %v", layerNames(view))
	}
	if view.Layers[1].Name != "NDVI 2023" || !view.Layers[1].Enabled {
		t.Errorf("ndvi layer = %+v", view.Layers[1])
	}
	if view.FitBounds != nil {
		t.Error("World view should not fit bounds")
	}
	if view.Zoom != 2 {
		t.Errorf("zoom = %d, want 2", view.Zoom)
	}
	for _, l := range view.Layers {
		if l.Kind == domain.LayerGeoJSON {
			t.Error("unexpected border layer for World")
		}
	}
}

func TestCompose_CountryBloomWithBorder(t *testing.T) {
	kenya := kenyaBoundary(t)
	repo := &mockBoundaryRepo{
		getByNameFn: func(ctx context.Context, name string) (*domain.Boundary, error) {
			return kenya, nil
		},
	}
	svc := newMapService(repo, &mockEvaluator{}, nil)

	view, err := svc.Compose(context.Background(), usecases.MapRequest{
		Country:   "Kenya",
		Years:     []int{2023},
		ShowBloom: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Base, bloom tile, border.
	if len(view.Layers) != 3 {
		t.Fatalf("layers = %v", layerNames(view))
	}
	if view.Layers[1].Name != "Bloom 2023" {
		t.Errorf("bloom layer = %+v", view.Layers[1])
	}
	border := view.Layers[2]
	if border.Kind != domain.LayerGeoJSON || border.Name != "Kenya border" || border.Color != "red" {
		t.Errorf("border layer = %+v", border)
	}
	if border.GeoJSON == "" || !strings.Contains(border.GeoJSON, "MultiPolygon") {
		t.Errorf("border geojson = %q", border.GeoJSON)
	}
	if view.FitBounds == nil || *view.FitBounds != kenya.BBox {
		t.Errorf("fit bounds = %+v", view.FitBounds)
	}
}

func TestCompose_MultiYearLayersSorted(t *testing.T) {
	svc := newMapService(&mockBoundaryRepo{}, &mockEvaluator{}, nil)

	view, err := svc.Compose(context.Background(), usecases.MapRequest{
		Country:  domain.WorldName,
		Years:    []int{2023, 2021},
		ShowNDVI: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	names := layerNames(view)
	if names[1] != "NDVI 2021" || names[2] != "NDVI 2023" {
		t.Errorf("layers not in year order: %v", names)
	}
}

func TestCompose_OverlapLayerToggleOnly(t *testing.T) {
	svc := newMapService(&mockBoundaryRepo{}, &mockEvaluator{}, nil)

	view, err := svc.Compose(context.Background(), usecases.MapRequest{
		Country:     domain.WorldName,
		Years:       []int{2023},
		ShowBloom:   true,
		ShowOverlap: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var overlap *domain.MapLayer
	for i := range view.Layers {
		if view.Layers[i].Name == "Bloom overlap 2023" {
			overlap = &view.Layers[i]
		}
	}
	if overlap == nil {
		t.Fatalf("overlap layer missing: %v", layerNames(view))
	}
	if overlap.Enabled {
		t.Error("overlap layer should be disabled by default")
	}
}

func TestCompose_UnknownCountry(t *testing.T) {
	svc := newMapService(&mockBoundaryRepo{}, &mockEvaluator{}, nil)

	_, err := svc.Compose(context.Background(), usecases.MapRequest{Country: "Atlantis"})
	if !errors.Is(err, domain.ErrCountryNotFound) {
		t.Errorf("error = %v, want ErrCountryNotFound", err)
	}
}

func TestCompose_TileFailureIsRenderError(t *testing.T) {
	eval := &mockEvaluator{
		tileURLFn: func(ctx context.Context, img domain.Image, viz domain.VisualizationSpec) (string, error) {
			return "", &domain.FetchError{Op: "maps", Err: errors.New("upstream down")}
		},
	}
	svc := newMapService(&mockBoundaryRepo{}, eval, nil)

	_, err := svc.Compose(context.Background(), usecases.MapRequest{
		Country:  domain.WorldName,
		Years:    []int{2023},
		ShowNDVI: true,
	})
	var re *domain.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RenderError", err)
	}
	if !domain.IsFetchError(err) {
		t.Error("fetch cause lost in wrapping")
	}
}

func TestCompose_PublishesEvent(t *testing.T) {
	events := &mockPublisher{}
	svc := newMapService(&mockBoundaryRepo{}, &mockEvaluator{}, events)

	_, err := svc.Compose(context.Background(), usecases.MapRequest{
		Country:  domain.WorldName,
		Years:    []int{2023},
		ShowNDVI: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(events.mapEvents) != 1 {
		t.Fatalf("published %d events, want 1", len(events.mapEvents))
	}
	ev := events.mapEvents[0]
	if ev.Country != domain.WorldName || ev.Layers != 2 {
		t.Errorf("event = %+v", ev)
	}
}
