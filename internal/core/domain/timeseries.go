package domain

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the bucketing of a time series.
type Granularity string

const (
	// GranularityComposite buckets by the source's native composite period
	// (16-day windows for MODIS), starting January 1.
	GranularityComposite Granularity = "composite"
	// GranularityMonthly buckets by calendar month.
	GranularityMonthly Granularity = "monthly"
)

// Metric selects what each bucket's scalar measures.
type Metric string

const (
	// MetricNDVI is the mean raw index over the region.
	MetricNDVI Metric = "ndvi"
	// MetricBloom is the mean difference versus the immediately preceding
	// bucket of equal length.
	MetricBloom Metric = "bloom"
)

// TimeSeriesPoint is one bucket of a series. Value is nil when the region had
// no valid pixels for that bucket; nil points are skipped when drawing
// connected line segments, never interpolated.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// TimeSeries is an ordered sequence of buckets over one year.
type TimeSeries struct {
	Country     string            `json:"country"`
	Year        int               `json:"year"`
	Metric      Metric            `json:"metric"`
	Granularity Granularity       `json:"granularity"`
	Points      []TimeSeriesPoint `json:"points"`
}

// Segments splits the series into runs of consecutive non-null points, the
// units in which connected lines are drawn.
func (ts *TimeSeries) Segments() [][]TimeSeriesPoint {
	var segs [][]TimeSeriesPoint
	var cur []TimeSeriesPoint
	for _, p := range ts.Points {
		if p.Value == nil {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// ChartFilename derives the deterministic, collision-free name of the chart
// image for a series. Spaces in country names become underscores.
func ChartFilename(metric Metric, gran Granularity, country string, year int) string {
	return fmt.Sprintf("%s_%s_%s_%d.png",
		metric, gran, strings.ReplaceAll(country, " ", "_"), year)
}

// Buckets enumerates the chronological bucket ranges of a year for a
// granularity. Composite buckets step by the source's composite period from
// January 1 and stop at year end; monthly buckets are calendar months.
func Buckets(gran Granularity, src Source, year int) []RasterQuery {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	var out []RasterQuery
	switch gran {
	case GranularityMonthly:
		for m := time.January; m <= time.December; m++ {
			out = append(out, MonthQuery(src, nil, year, m))
		}
	default:
		days := src.CompositeDays
		if days <= 0 {
			days = 16
		}
		for start := yearStart; start.Before(yearEnd); start = start.AddDate(0, 0, days) {
			end := start.AddDate(0, 0, days)
			if end.After(yearEnd) {
				end = yearEnd
			}
			out = append(out, RasterQuery{Source: src, Start: start, End: end})
		}
	}
	return out
}

// PrecedingBucket returns the equal-length bucket immediately before q, used
// as the baseline for the bloom metric.
func PrecedingBucket(q RasterQuery) RasterQuery {
	span := q.End.Sub(q.Start)
	return RasterQuery{
		Source:   q.Source,
		Boundary: q.Boundary,
		Start:    q.Start.Add(-span),
		End:      q.Start,
	}
}
