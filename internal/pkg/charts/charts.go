package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// Renderer draws time-series line charts as PNG images. It implements
// ports.ChartRenderer.
type Renderer struct{}

// NewRenderer creates a chart renderer.
func NewRenderer() *Renderer { return &Renderer{} }

var metricColors = map[domain.Metric]drawing.Color{
	domain.MetricNDVI:  drawing.ColorFromHex("2e7d32"),
	domain.MetricBloom: drawing.ColorFromHex("6a1b9a"),
}

// Render draws the series as a line chart. Null buckets split the line into
// disconnected segments; isolated points are drawn as dots. A series with no
// plottable points is an error; callers treat it as "no chart available".
func (r *Renderer) Render(ts *domain.TimeSeries) ([]byte, error) {
	segments := ts.Segments()
	if len(segments) == 0 {
		return nil, fmt.Errorf("charts: no plottable points for %s %s %d", ts.Metric, ts.Country, ts.Year)
	}

	color, ok := metricColors[ts.Metric]
	if !ok {
		color = drawing.ColorBlue
	}

	var series []chart.Series
	for _, seg := range segments {
		xs := make([]time.Time, 0, len(seg))
		ys := make([]float64, 0, len(seg))
		for _, p := range seg {
			xs = append(xs, p.Date)
			ys = append(ys, *p.Value)
		}

		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    3,
		}
		if len(seg) == 1 {
			// A lone point has no line to draw; keep the dot visible.
			style.StrokeWidth = chart.Disabled
			style.DotWidth = 5
		}

		series = append(series, chart.TimeSeries{
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	graph := chart.Chart{
		Title:  chartTitle(ts),
		Width:  1100,
		Height: 460,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis:  yAxis(ts.Metric),
		Series: series,
	}

	// go-chart refuses a zero x-range delta, which happens when every
	// plottable point shares one timestamp. Pin the axis to the series'
	// year so the lone dot still renders.
	if distinctDates(segments) < 2 {
		start := time.Date(ts.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: float64(start.UnixNano()),
			Max: float64(end.UnixNano()),
		}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("charts: render: %w", err)
	}
	return buf.Bytes(), nil
}

func distinctDates(segments [][]domain.TimeSeriesPoint) int {
	seen := make(map[int64]struct{})
	for _, seg := range segments {
		for _, p := range seg {
			seen[p.Date.UnixNano()] = struct{}{}
		}
	}
	return len(seen)
}

func chartTitle(ts *domain.TimeSeries) string {
	switch ts.Metric {
	case domain.MetricBloom:
		return fmt.Sprintf("Bloom Time Series for %s (%d)", ts.Country, ts.Year)
	default:
		return fmt.Sprintf("NDVI Time Series for %s (%d)", ts.Country, ts.Year)
	}
}

func yAxis(metric domain.Metric) chart.YAxis {
	// Raw index values live on 0..1 after display scaling; the bloom
	// difference can be slightly negative and is left auto-ranged.
	if metric == domain.MetricNDVI {
		return chart.YAxis{
			Name:  "NDVI",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		}
	}
	return chart.YAxis{Name: "Bloom (NDVI difference)"}
}
