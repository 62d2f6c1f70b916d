package usecases_test

import (
	"context"
	"testing"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/usecases"
)

func TestComposite_WorldSkipsClip(t *testing.T) {
	svc := usecases.NewRasterService(&mockEvaluator{})

	img, err := svc.Composite(domain.YearQuery(domain.SourceMODIS, domain.WorldBoundary(), 2023))
	if err != nil {
		t.Fatal(err)
	}
	if img.Op() != "meanComposite" {
		t.Errorf("root op = %q, want meanComposite", img.Op())
	}
	if hasOp(decodeExpr(t, img), "clip") {
		t.Error("World composite should not be clipped")
	}
}

func TestComposite_CountryIsClipped(t *testing.T) {
	svc := usecases.NewRasterService(&mockEvaluator{})

	img, err := svc.Composite(domain.YearQuery(domain.SourceMODIS, kenyaBoundary(t), 2023))
	if err != nil {
		t.Fatal(err)
	}
	if img.Op() != "clip" {
		t.Errorf("root op = %q, want clip", img.Op())
	}
}

func TestComposite_DerivedSourceAddsNormalizedDifference(t *testing.T) {
	svc := usecases.NewRasterService(&mockEvaluator{})

	img, err := svc.Composite(domain.YearQuery(domain.SourceSentinel2, kenyaBoundary(t), 2023))
	if err != nil {
		t.Fatal(err)
	}
	n := decodeExpr(t, img)
	if !hasOp(n, "normalizedDifference") {
		t.Error("Sentinel-2 composite missing normalizedDifference")
	}
	// clip(normalizedDifference(meanComposite))
	if n.Op != "clip" || n.Inputs[0].Op != "normalizedDifference" {
		t.Errorf("ops = %v", ops(n))
	}
}

func TestComposite_InvalidQuery(t *testing.T) {
	svc := usecases.NewRasterService(&mockEvaluator{})

	if _, err := svc.Composite(domain.RasterQuery{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRegionMean_UsesSourceScale(t *testing.T) {
	var gotScale float64
	eval := &mockEvaluator{
		reduceMeanFn: func(ctx context.Context, img domain.Image, b *domain.Boundary, scaleMeters float64) (*float64, error) {
			gotScale = scaleMeters
			return fp(4321), nil
		},
	}
	svc := usecases.NewRasterService(eval)

	v, err := svc.RegionMean(context.Background(), domain.YearQuery(domain.SourceMODIS, kenyaBoundary(t), 2023))
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != 4321 {
		t.Errorf("value = %v", v)
	}
	if gotScale != 500 {
		t.Errorf("reduce scale = %v, want 500", gotScale)
	}
}

func TestTileURL_ForwardsVisualization(t *testing.T) {
	var gotViz domain.VisualizationSpec
	eval := &mockEvaluator{
		tileURLFn: func(ctx context.Context, img domain.Image, viz domain.VisualizationSpec) (string, error) {
			gotViz = viz
			return "https://tiles.example/{z}/{x}/{y}", nil
		},
	}
	svc := usecases.NewRasterService(eval)

	url, err := svc.TileURL(context.Background(),
		domain.YearQuery(domain.SourceMODIS, domain.WorldBoundary(), 2023),
		domain.NDVIViz(domain.SourceMODIS))
	if err != nil {
		t.Fatal(err)
	}
	if url == "" {
		t.Error("empty tile url")
	}
	if gotViz.Max != 9000 || len(gotViz.Palette) != 4 {
		t.Errorf("viz = %+v", gotViz)
	}
}
