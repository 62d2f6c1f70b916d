// Package earthengine talks to the remote raster analytics service. All heavy
// per-pixel computation happens server-side: this client only ships expression
// trees built with domain.Image and decodes the results. Each exported method
// is exactly one network round trip with no retries; failures surface
// as domain.FetchError and terminate that sub-computation.
package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/config"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/metrics"
)

// authScope is the OAuth scope for the analytics service.
const authScope = "https://www.googleapis.com/auth/earthengine"

// Doer issues HTTP requests. *http.Client satisfies it; tests inject fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.RasterEvaluator against the remote service.
type Client struct {
	endpoint string
	project  string
	http     Doer
}

// New builds a client authenticated with the service-account credential from
// config. The credential was validated present at startup; a malformed key is
// still a ConfigError here.
func New(ctx context.Context, cfg config.EarthEngineConfig) (*Client, error) {
	jwt, err := google.JWTConfigFromJSON([]byte(cfg.KeyJSON), authScope)
	if err != nil {
		return nil, &domain.ConfigError{Reason: "invalid service account credential: " + err.Error()}
	}
	httpClient := jwt.Client(ctx)
	httpClient.Timeout = 90 * time.Second
	return NewWithTransport(cfg.Endpoint, cfg.Project, httpClient), nil
}

// NewWithTransport builds a client over an explicit transport.
func NewWithTransport(endpoint, project string, d Doer) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		project:  project,
		http:     d,
	}
}

type mapRequest struct {
	Expression    domain.Image             `json:"expression"`
	Visualization domain.VisualizationSpec `json:"visualization"`
}

type mapResponse struct {
	Name      string `json:"name"`
	URLFormat string `json:"urlFormat"`
}

// TileURL registers the expression with the tile-rendering service and
// returns its {z}/{x}/{y} URL template.
func (c *Client) TileURL(ctx context.Context, img domain.Image, viz domain.VisualizationSpec) (string, error) {
	var resp mapResponse
	err := c.post(ctx, "maps", mapRequest{Expression: img, Visualization: viz}, &resp)
	if err != nil {
		return "", err
	}
	if resp.URLFormat == "" {
		return "", &domain.FetchError{Op: "maps", Err: fmt.Errorf("response missing urlFormat")}
	}
	return resp.URLFormat, nil
}

type reduceRequest struct {
	Expression domain.Image `json:"expression"`
	Geometry   geometry     `json:"geometry"`
	Reducer    string       `json:"reducer"`
	Scale      float64      `json:"scale"`
	MaxPixels  float64      `json:"maxPixels"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates [][][][]float64 `json:"coordinates"`
}

type reduceResponse struct {
	// Value is null when the region had no valid pixels.
	Value *float64 `json:"value"`
}

// ReduceRegionMean reduces the expression to a single mean scalar over the
// boundary. A nil result with nil error means no valid pixels ("no data").
func (c *Client) ReduceRegionMean(ctx context.Context, img domain.Image, b *domain.Boundary, scaleMeters float64) (*float64, error) {
	req := reduceRequest{
		Expression: img,
		Geometry:   geometry{Type: "MultiPolygon", Coordinates: b.PolygonCoordinates()},
		Reducer:    "mean",
		Scale:      scaleMeters,
		MaxPixels:  1e13,
	}
	var resp reduceResponse
	if err := c.post(ctx, "value:reduceRegion", req, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// post sends one JSON request to {endpoint}/v1/projects/{project}/{op}.
func (c *Client) post(ctx context.Context, op string, body, out any) error {
	start := time.Now()
	err := c.doPost(ctx, op, body, out)
	metrics.ObserveEECall(op, start, err)
	return err
}

func (c *Client) doPost(ctx context.Context, op string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &domain.FetchError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}

	url := fmt.Sprintf("%s/v1/projects/%s/%s", c.endpoint, c.project, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &domain.FetchError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.FetchError{
			Op:  op,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
