package domain_test

import (
	"testing"
	"time"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

func fp(v float64) *float64 { return &v }

func TestChartFilename_SpacesBecomeUnderscores(t *testing.T) {
	got := domain.ChartFilename(domain.MetricNDVI, domain.GranularityComposite, "United States", 2023)
	want := "ndvi_composite_United_States_2023.png"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = domain.ChartFilename(domain.MetricBloom, domain.GranularityMonthly, "Papua New Guinea", 2019)
	want = "bloom_monthly_Papua_New_Guinea_2019.png"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuckets_Composite(t *testing.T) {
	buckets := domain.Buckets(domain.GranularityComposite, domain.SourceMODIS, 2023)

	// 365 days in 16-day steps: 22 full windows plus a clipped tail.
	if len(buckets) != 23 {
		t.Fatalf("expected 23 buckets, got %d", len(buckets))
	}

	first := buckets[0]
	if !first.Start.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first bucket starts %s, want Jan 1", first.Start)
	}
	if first.End.Sub(first.Start) != 16*24*time.Hour {
		t.Errorf("first bucket spans %s, want 16 days", first.End.Sub(first.Start))
	}

	// Consecutive buckets tile the year with no gaps.
	for i := 1; i < len(buckets); i++ {
		if !buckets[i].Start.Equal(buckets[i-1].End) {
			t.Errorf("bucket %d starts %s, previous ends %s", i, buckets[i].Start, buckets[i-1].End)
		}
	}

	last := buckets[len(buckets)-1]
	yearEnd := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !last.End.Equal(yearEnd) {
		t.Errorf("last bucket ends %s, want year end", last.End)
	}
	if last.End.Sub(last.Start) >= 16*24*time.Hour {
		t.Errorf("last bucket should be clipped, spans %s", last.End.Sub(last.Start))
	}
}

func TestBuckets_Monthly(t *testing.T) {
	buckets := domain.Buckets(domain.GranularityMonthly, domain.SourceSentinel2, 2022)
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	feb := buckets[1]
	if feb.End.Sub(feb.Start) != 28*24*time.Hour {
		t.Errorf("feb 2022 spans %s, want 28 days", feb.End.Sub(feb.Start))
	}
}

func TestPrecedingBucket_EqualLength(t *testing.T) {
	q := domain.RasterQuery{
		Source: domain.SourceMODIS,
		Start:  time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2023, 3, 17, 0, 0, 0, 0, time.UTC),
	}
	prev := domain.PrecedingBucket(q)
	if !prev.End.Equal(q.Start) {
		t.Errorf("previous bucket ends %s, want %s", prev.End, q.Start)
	}
	if prev.End.Sub(prev.Start) != q.End.Sub(q.Start) {
		t.Errorf("previous bucket spans %s, want %s", prev.End.Sub(prev.Start), q.End.Sub(q.Start))
	}
}

func TestSegments_SplitsOnNull(t *testing.T) {
	ts := &domain.TimeSeries{
		Points: []domain.TimeSeriesPoint{
			{Value: fp(0.1)},
			{Value: fp(0.2)},
			{Value: nil},
			{Value: fp(0.4)},
			{Value: nil},
			{Value: nil},
			{Value: fp(0.6)},
			{Value: fp(0.7)},
		},
	}
	segs := ts.Segments()
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if len(segs[0]) != 2 || len(segs[1]) != 1 || len(segs[2]) != 2 {
		t.Errorf("segment lengths %d/%d/%d, want 2/1/2", len(segs[0]), len(segs[1]), len(segs[2]))
	}
}

func TestSegments_AllNull(t *testing.T) {
	ts := &domain.TimeSeries{
		Points: []domain.TimeSeriesPoint{{Value: nil}, {Value: nil}},
	}
	if segs := ts.Segments(); len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
}

func TestDisplayValue(t *testing.T) {
	if got := domain.SourceMODIS.DisplayValue(4321); got != 0.4321 {
		t.Errorf("MODIS display value = %v, want 0.4321", got)
	}
	// Sentinel-2 NDVI is already on the display scale.
	if got := domain.SourceSentinel2.DisplayValue(0.37); got != 0.37 {
		t.Errorf("Sentinel-2 display value = %v, want 0.37", got)
	}
}

func TestYearQuery_CoversWholeYear(t *testing.T) {
	q := domain.YearQuery(domain.SourceMODIS, domain.WorldBoundary(), 2021)
	if err := q.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !q.Start.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) ||
		!q.End.Equal(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year query range %s..%s", q.Start, q.End)
	}
}

func TestRasterQueryValidate(t *testing.T) {
	b := domain.WorldBoundary()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		q       domain.RasterQuery
		wantErr bool
	}{
		{"valid", domain.RasterQuery{Source: domain.SourceMODIS, Boundary: b, Start: start, End: start.AddDate(0, 0, 16)}, false},
		{"nil boundary", domain.RasterQuery{Source: domain.SourceMODIS, Start: start, End: start.AddDate(0, 0, 16)}, true},
		{"empty collection", domain.RasterQuery{Boundary: b, Start: start, End: start.AddDate(0, 0, 16)}, true},
		{"end before start", domain.RasterQuery{Source: domain.SourceMODIS, Boundary: b, Start: start, End: start.AddDate(0, 0, -1)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
