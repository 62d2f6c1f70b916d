package domain

import (
	"encoding/json"
)

// Image is an immutable description of a server-side raster computation.
// Builder methods only grow the expression tree; no network traffic happens
// until the expression is handed to a terminal evaluator operation
// (tile rendering or region reduction). Two images built from identical
// inputs marshal to identical payloads.
type Image struct {
	node imageNode
}

type imageNode struct {
	Op string `json:"op"`

	// composite leaf
	Collection string `json:"collection,omitempty"`
	Band       string `json:"band,omitempty"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Geometry   *geoJS `json:"geometry,omitempty"`

	// derived operands
	Inputs []imageNode `json:"inputs,omitempty"`
	Value  *float64    `json:"value,omitempty"`
	Bands  []string    `json:"bands,omitempty"`

	// reprojection
	CRS   string  `json:"crs,omitempty"`
	Scale float64 `json:"scale,omitempty"`
}

// geoJS is the geometry payload shape the analytics service accepts.
type geoJS struct {
	Type        string          `json:"type"`
	Coordinates [][][][]float64 `json:"coordinates"`
}

func geometryPayload(b *Boundary) *geoJS {
	if b == nil || b.Geom == nil {
		return nil
	}
	return &geoJS{Type: "MultiPolygon", Coordinates: b.PolygonCoordinates()}
}

const dateLayout = "2006-01-02"

// Composite builds the leaf expression for a temporal mean composite of a
// collection filtered by the query's geometry and date range, selecting the
// index band. Sources without a stored index band select the reflectance
// bands; callers derive the index with NormalizedDifference. Clipping is
// applied by the caller so that the World sentinel can skip it.
func Composite(q RasterQuery) Image {
	n := imageNode{
		Op:         "meanComposite",
		Collection: q.Source.Collection,
		Band:       q.Source.Band,
		Start:      q.Start.UTC().Format(dateLayout),
		End:        q.End.UTC().Format(dateLayout),
		Geometry:   geometryPayload(q.Boundary),
	}
	if q.Source.Derived() {
		n.Band = ""
		n.Bands = []string{q.Source.NIRBand, q.Source.RedBand}
	}
	return Image{node: n}
}

// NormalizedDifference computes (first - second) / (first + second) over the
// two named bands.
func (img Image) NormalizedDifference(first, second string) Image {
	return Image{node: imageNode{
		Op:     "normalizedDifference",
		Inputs: []imageNode{img.node},
		Bands:  []string{first, second},
	}}
}

// Subtract computes img - other per pixel.
func (img Image) Subtract(other Image) Image {
	return Image{node: imageNode{
		Op:     "subtract",
		Inputs: []imageNode{img.node, other.node},
	}}
}

// Gt produces the boolean mask of pixels strictly greater than value.
func (img Image) Gt(value float64) Image {
	v := value
	return Image{node: imageNode{
		Op:     "gt",
		Inputs: []imageNode{img.node},
		Value:  &v,
	}}
}

// UpdateMask masks out every pixel where mask is zero or missing. Masked
// pixels are "no data": they render fully transparent and are excluded from
// reductions, never treated as zero.
func (img Image) UpdateMask(mask Image) Image {
	return Image{node: imageNode{
		Op:     "updateMask",
		Inputs: []imageNode{img.node, mask.node},
	}}
}

// ReduceResolution averages pixels into coarser cells before reprojection.
func (img Image) ReduceResolution() Image {
	return Image{node: imageNode{
		Op:     "reduceResolution",
		Inputs: []imageNode{img.node},
	}}
}

// Reproject resamples the image onto the named CRS at the given pixel scale
// in meters.
func (img Image) Reproject(crs string, scaleMeters float64) Image {
	return Image{node: imageNode{
		Op:     "reproject",
		Inputs: []imageNode{img.node},
		CRS:    crs,
		Scale:  scaleMeters,
	}}
}

// Clip restricts the image to the boundary's geometry.
func (img Image) Clip(b *Boundary) Image {
	return Image{node: imageNode{
		Op:       "clip",
		Inputs:   []imageNode{img.node},
		Geometry: geometryPayload(b),
	}}
}

// MarshalJSON renders the expression tree for transport.
func (img Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(img.node)
}

// Op returns the root operation name, useful for logging and tests.
func (img Image) Op() string { return img.node.Op }

// Zero reports whether the image is the zero value (no expression built).
func (img Image) Zero() bool { return img.node.Op == "" }

// VisualizationSpec is purely presentational: a value range and an ordered
// color ramp applied at tile-rendering time. It never mutates the raster.
type VisualizationSpec struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Palette []string `json:"palette"`
}

// NDVIViz is the standard ramp for raw vegetation index layers.
func NDVIViz(src Source) VisualizationSpec {
	return VisualizationSpec{
		Min:     0,
		Max:     src.ValueScale * 0.9,
		Palette: []string{"white", "yellow", "green", "darkgreen"},
	}
}

// BloomViz is the ramp for bloom difference layers.
func BloomViz(src Source) VisualizationSpec {
	return VisualizationSpec{
		Min:     src.BloomThreshold,
		Max:     src.ValueScale * 0.3,
		Palette: []string{"pink", "magenta", "purple"},
	}
}
