package domain

import (
	"github.com/twpayne/go-geom"
)

// WorldName is the sentinel country name for the full global extent.
const WorldName = "World"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BBox represents a geographic bounding box.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Center returns the midpoint of the box.
func (b BBox) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// WorldBBox is the full-extent rectangle spanning all longitudes and latitudes.
var WorldBBox = BBox{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90}

// Boundary is a country boundary polygon from the reference boundary dataset,
// or the World sentinel covering the full extent.
type Boundary struct {
	Name string             `json:"name"`
	Geom *geom.MultiPolygon `json:"-"`
	BBox BBox               `json:"bbox"`
}

// IsWorld reports whether this boundary is the full-extent sentinel.
func (b *Boundary) IsWorld() bool {
	return b.Name == WorldName
}

// WorldBoundary returns the full-extent sentinel boundary. Its geometry is a
// single rectangle covering the whole globe so it can still be used as a
// spatial filter or reduction region.
func WorldBoundary() *Boundary {
	ring := []geom.Coord{
		{-180, -90}, {-180, 90}, {180, 90}, {180, -90}, {-180, -90},
	}
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygon(geom.XY)
	if _, err := poly.SetCoords([][]geom.Coord{ring}); err == nil {
		_ = mp.Push(poly)
	}
	return &Boundary{Name: WorldName, Geom: mp, BBox: WorldBBox}
}

// BoundsOf computes the bounding box of a multipolygon.
func BoundsOf(mp *geom.MultiPolygon) BBox {
	if mp == nil || mp.NumPolygons() == 0 {
		return WorldBBox
	}
	b := mp.Bounds()
	return BBox{
		MinLon: b.Min(0), MinLat: b.Min(1),
		MaxLon: b.Max(0), MaxLat: b.Max(1),
	}
}

// PolygonCoordinates flattens a boundary's multipolygon into nested coordinate
// arrays ([polygon][ring][vertex][lon,lat]) as used by the remote analytics
// service's geometry payloads.
func (b *Boundary) PolygonCoordinates() [][][][]float64 {
	if b.Geom == nil {
		return nil
	}
	out := make([][][][]float64, 0, b.Geom.NumPolygons())
	for i := 0; i < b.Geom.NumPolygons(); i++ {
		poly := b.Geom.Polygon(i)
		rings := make([][][]float64, 0, poly.NumLinearRings())
		for j := 0; j < poly.NumLinearRings(); j++ {
			ring := poly.LinearRing(j)
			coords := ring.Coords()
			verts := make([][]float64, 0, len(coords))
			for _, c := range coords {
				verts = append(verts, []float64{c.X(), c.Y()})
			}
			rings = append(rings, verts)
		}
		out = append(out, rings)
	}
	return out
}
