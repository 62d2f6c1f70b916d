package earthengine_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/earthengine"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/config"
)

type fakeDoer struct {
	doFn func(req *http.Request) (*http.Response, error)

	lastURL  string
	lastBody []byte
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastURL = req.URL.String()
	if req.Body != nil {
		f.lastBody, _ = io.ReadAll(req.Body)
	}
	return f.doFn(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testImage() domain.Image {
	return domain.Composite(domain.YearQuery(domain.SourceMODIS, domain.WorldBoundary(), 2023))
}

func TestTileURL(t *testing.T) {
	doer := &fakeDoer{
		doFn: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"name":"projects/p/maps/abc","urlFormat":"https://tiles.example/abc/{z}/{x}/{y}"}`), nil
		},
	}
	c := earthengine.NewWithTransport("https://ee.example/", "demo", doer)

	url, err := c.TileURL(context.Background(), testImage(), domain.NDVIViz(domain.SourceMODIS))
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://tiles.example/abc/{z}/{x}/{y}" {
		t.Errorf("url = %q", url)
	}
	if doer.lastURL != "https://ee.example/v1/projects/demo/maps" {
		t.Errorf("request url = %q", doer.lastURL)
	}

	var payload struct {
		Expression    json.RawMessage          `json:"expression"`
		Visualization domain.VisualizationSpec `json:"visualization"`
	}
	if err := json.Unmarshal(doer.lastBody, &payload); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if len(payload.Expression) == 0 {
		t.Error("request missing expression")
	}
	if payload.Visualization.Max != 9000 {
		t.Errorf("visualization = %+v", payload.Visualization)
	}
}

func TestTileURL_MissingURLFormat(t *testing.T) {
	doer := &fakeDoer{
		doFn: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"name":"projects/p/maps/abc"}`), nil
		},
	}
	c := earthengine.NewWithTransport("https://ee.example", "demo", doer)

	_, err := c.TileURL(context.Background(), testImage(), domain.NDVIViz(domain.SourceMODIS))
	if !domain.IsFetchError(err) {
		t.Errorf("error = %v, want FetchError", err)
	}
}

func TestTileURL_UpstreamStatusError(t *testing.T) {
	doer := &fakeDoer{
		doFn: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(503, `service unavailable`), nil
		},
	}
	c := earthengine.NewWithTransport("https://ee.example", "demo", doer)

	_, err := c.TileURL(context.Background(), testImage(), domain.NDVIViz(domain.SourceMODIS))
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FetchError", err)
	}
	if fe.Op != "maps" {
		t.Errorf("op = %q", fe.Op)
	}
	if !strings.Contains(fe.Error(), "503") {
		t.Errorf("error text %q missing status", fe.Error())
	}
}

func TestTileURL_TransportError(t *testing.T) {
	doer := &fakeDoer{
		doFn: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	c := earthengine.NewWithTransport("https://ee.example", "demo", doer)

	_, err := c.TileURL(context.Background(), testImage(), domain.NDVIViz(domain.SourceMODIS))
	if !domain.IsFetchError(err) {
		t.Errorf("error = %v, want FetchError", err)
	}
}

func TestReduceRegionMean(t *testing.T) {
	doer := &fakeDoer{
		doFn: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"value":4321.5}`), nil
		},
	}
	c := earthengine.NewWithTransport("https://ee.example", "demo", doer)

	v, err := c.ReduceRegionMean(context.Background(), testImage(), domain.WorldBoundary(), 500)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != 4321.5 {
		t.Errorf("value = %v", v)
	}
	if doer.lastURL != "https://ee.example/v1/projects/demo/value:reduceRegion" {
		t.Errorf("request url = %q", doer.lastURL)
	}

	var payload struct {
		Reducer   string  `json:"reducer"`
		Scale     float64 `json:"scale"`
		MaxPixels float64 `json:"maxPixels"`
		Geometry  struct {
			Type string `json:"type"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(doer.lastBody, &payload); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if payload.Reducer != "mean" || payload.Scale != 500 {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Geometry.Type != "MultiPolygon" {
		t.Errorf("geometry type = %q", payload.Geometry.Type)
	}
}

func TestReduceRegionMean_NullIsNoData(t *testing.T) {
	doer := &fakeDoer{
		doFn: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"value":null}`), nil
		},
	}
	c := earthengine.NewWithTransport("https://ee.example", "demo", doer)

	v, err := c.ReduceRegionMean(context.Background(), testImage(), domain.WorldBoundary(), 500)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("value = %v, want nil for no data", *v)
	}
}

func TestNew_MalformedCredential(t *testing.T) {
	_, err := earthengine.New(context.Background(), config.EarthEngineConfig{
		Endpoint: "https://ee.example",
		Project:  "demo",
		KeyJSON:  "not json",
	})
	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}
