package usecases_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/twpayne/go-geom"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/ports"
)

// ---- Mock repositories and services ----

type mockBoundaryRepo struct {
	listNamesFn func(ctx context.Context) ([]string, error)
	getByNameFn func(ctx context.Context, name string) (*domain.Boundary, error)
}

func (m *mockBoundaryRepo) ListNames(ctx context.Context) ([]string, error) {
	if m.listNamesFn != nil {
		return m.listNamesFn(ctx)
	}
	return nil, nil
}
func (m *mockBoundaryRepo) GetByName(ctx context.Context, name string) (*domain.Boundary, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.ErrCountryNotFound
}
func (m *mockBoundaryRepo) UpsertBatch(ctx context.Context, boundaries []domain.Boundary) error {
	return nil
}
func (m *mockBoundaryRepo) Count(ctx context.Context) (int, error) { return 0, nil }

type mockEvaluator struct {
	tileURLFn    func(ctx context.Context, img domain.Image, viz domain.VisualizationSpec) (string, error)
	reduceMeanFn func(ctx context.Context, img domain.Image, b *domain.Boundary, scaleMeters float64) (*float64, error)
}

func (m *mockEvaluator) TileURL(ctx context.Context, img domain.Image, viz domain.VisualizationSpec) (string, error) {
	if m.tileURLFn != nil {
		return m.tileURLFn(ctx, img, viz)
	}
	return "https://tiles.example/{z}/{x}/{y}", nil
}
func (m *mockEvaluator) ReduceRegionMean(ctx context.Context, img domain.Image, b *domain.Boundary, scaleMeters float64) (*float64, error) {
	if m.reduceMeanFn != nil {
		return m.reduceMeanFn(ctx, img, b, scaleMeters)
	}
	return nil, nil
}

type mockPublisher struct {
	mapEvents   []*ports.MapRenderedEvent
	chartEvents []*ports.ChartGeneratedEvent
}

func (m *mockPublisher) PublishMapRendered(ctx context.Context, ev *ports.MapRenderedEvent) error {
	m.mapEvents = append(m.mapEvents, ev)
	return nil
}
func (m *mockPublisher) PublishChartGenerated(ctx context.Context, ev *ports.ChartGeneratedEvent) error {
	m.chartEvents = append(m.chartEvents, ev)
	return nil
}

type mockRenderer struct {
	renderFn func(ts *domain.TimeSeries) ([]byte, error)
}

func (m *mockRenderer) Render(ts *domain.TimeSeries) ([]byte, error) {
	if m.renderFn != nil {
		return m.renderFn(ts)
	}
	return []byte("png"), nil
}

// ---- Test helpers ----

func fp(v float64) *float64 { return &v }

func kenyaBoundary(t *testing.T) *domain.Boundary {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	ring := []geom.Coord{{34, -4.7}, {34, 5}, {41.9, 5}, {41.9, -4.7}, {34, -4.7}}
	if _, err := poly.SetCoords([][]geom.Coord{ring}); err != nil {
		t.Fatalf("set coords: %v", err)
	}
	if err := mp.Push(poly); err != nil {
		t.Fatalf("push polygon: %v", err)
	}
	return &domain.Boundary{
		Name: "Kenya",
		Geom: mp,
		BBox: domain.BoundsOf(mp),
	}
}

// exprNode is the decoded wire form of an expression, for structural checks.
type exprNode struct {
	Op     string     `json:"op"`
	Inputs []exprNode `json:"inputs"`
	Value  *float64   `json:"value"`
	Bands  []string   `json:"bands"`
	CRS    string     `json:"crs"`
	Scale  float64    `json:"scale"`
}

func decodeExpr(t *testing.T, img domain.Image) exprNode {
	t.Helper()
	data, err := json.Marshal(img)
	if err != nil {
		t.Fatalf("marshal expression: %v", err)
	}
	var n exprNode
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("unmarshal expression: %v", err)
	}
	return n
}

// ops flattens the expression tree into the depth-first list of operations.
func ops(n exprNode) []string {
	out := []string{n.Op}
	for _, in := range n.Inputs {
		out = append(out, ops(in)...)
	}
	return out
}

func hasOp(n exprNode, op string) bool {
	for _, o := range ops(n) {
		if o == op {
			return true
		}
	}
	return false
}
