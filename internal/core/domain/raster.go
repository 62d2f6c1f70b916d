package domain

import (
	"fmt"
	"time"
)

// Source describes a satellite raster collection and the unit system of its
// vegetation index band. Bloom thresholds are bound to a source's unit system
// and must never be mixed across sources.
type Source struct {
	// Collection is the remote catalog identifier, e.g. "MODIS/061/MOD13Q1".
	Collection string `json:"collection"`
	// Band is the vegetation index band name. Empty when the index is
	// derived from two reflectance bands instead (see NIRBand/RedBand).
	Band string `json:"band"`
	// NIRBand and RedBand are set for sources whose NDVI is computed as a
	// normalized difference rather than stored as a band.
	NIRBand string `json:"nir_band,omitempty"`
	RedBand string `json:"red_band,omitempty"`
	// ValueScale is the fixed-point divisor applied before display
	// (stored 4321 → displayed 0.4321 when the scale is 10000).
	ValueScale float64 `json:"value_scale"`
	// BloomThreshold is the minimum per-pixel increase, in the source's
	// native units, for a pixel to count as bloom.
	BloomThreshold float64 `json:"bloom_threshold"`
	// ReduceScale is the nominal pixel scale in meters used for region
	// reductions.
	ReduceScale float64 `json:"reduce_scale"`
	// CompositeDays is the native compositing period in days (0 when the
	// source has no fixed period and is aggregated monthly).
	CompositeDays int `json:"composite_days"`
}

// Derived reports whether the index band must be computed from reflectance
// bands rather than selected directly.
func (s Source) Derived() bool { return s.Band == "" }

var (
	// SourceMODIS is the MODIS Terra 16-day vegetation index product.
	// NDVI is stored as a scaled integer on 0..10000.
	SourceMODIS = Source{
		Collection:     "MODIS/061/MOD13Q1",
		Band:           "NDVI",
		ValueScale:     10000,
		BloomThreshold: 50,
		ReduceScale:    500,
		CompositeDays:  16,
	}

	// SourceSentinel2 is the Sentinel-2 surface reflectance catalog. NDVI is
	// derived from the NIR and red bands and lives on the 0..1 scale.
	SourceSentinel2 = Source{
		Collection:     "COPERNICUS/S2_SR_HARMONIZED",
		NIRBand:        "B8",
		RedBand:        "B4",
		ValueScale:     1,
		BloomThreshold: 0.1,
		ReduceScale:    100,
		CompositeDays:  0,
	}
)

// RasterQuery identifies a single mean-composited raster: a source, a
// geometry, and a date range. The composite is the temporal mean of every
// image in the collection intersecting the geometry within [Start, End).
type RasterQuery struct {
	Source   Source    `json:"source"`
	Boundary *Boundary `json:"-"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Validate checks that the query is well-formed.
func (q RasterQuery) Validate() error {
	if q.Source.Collection == "" {
		return fmt.Errorf("raster query: empty source collection")
	}
	if q.Boundary == nil {
		return fmt.Errorf("raster query: nil boundary")
	}
	if !q.End.After(q.Start) {
		return fmt.Errorf("raster query: end %s not after start %s",
			q.End.Format("2006-01-02"), q.Start.Format("2006-01-02"))
	}
	return nil
}

// YearQuery builds the query for a whole calendar year.
func YearQuery(src Source, b *Boundary, year int) RasterQuery {
	return RasterQuery{
		Source:   src,
		Boundary: b,
		Start:    time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// MonthQuery builds the query for a single calendar month.
func MonthQuery(src Source, b *Boundary, year int, month time.Month) RasterQuery {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return RasterQuery{Source: src, Boundary: b, Start: start, End: start.AddDate(0, 1, 0)}
}

// DisplayValue converts a raw stored index value to its display-scale
// equivalent (the conventional -1..1 range).
func (s Source) DisplayValue(raw float64) float64 {
	if s.ValueScale == 0 || s.ValueScale == 1 {
		return raw
	}
	return raw / s.ValueScale
}
