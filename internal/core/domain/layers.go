package domain

// LayerKind distinguishes remote-rendered tile layers from inline vector
// overlays.
type LayerKind string

const (
	LayerTile    LayerKind = "tile"
	LayerGeoJSON LayerKind = "geojson"
)

// MapLayer is one entry in a composed map: either a tile URL template served
// by the remote tile renderer, or an inline GeoJSON overlay (country border).
// Layers belong to the single map composition that created them.
type MapLayer struct {
	Kind LayerKind `json:"kind"`
	Name string    `json:"name"`
	// TileURL is the {z}/{x}/{y} template for tile layers.
	TileURL string `json:"tile_url,omitempty"`
	// GeoJSON carries the inline payload for vector layers.
	GeoJSON string `json:"geojson,omitempty"`
	// Color styles vector layers.
	Color string `json:"color,omitempty"`
	// Overlay layers sit above the base map and appear in the layer control.
	Overlay bool `json:"overlay"`
	// Enabled layers are shown by default; disabled ones are toggle-only.
	Enabled bool `json:"enabled"`
}

// MapView is the result of one map composition: viewport framing plus an
// ordered list of layers (base first).
type MapView struct {
	Center GeoPoint   `json:"center"`
	Zoom   int        `json:"zoom"`
	// FitBounds, when set, frames the viewport to a bounding box instead of
	// the center/zoom pair.
	FitBounds *BBox      `json:"fit_bounds,omitempty"`
	Layers    []MapLayer `json:"layers"`
}

// TileLayers returns only the raster tile layers, excluding the base map.
func (v *MapView) TileLayers() []MapLayer {
	var out []MapLayer
	for _, l := range v.Layers {
		if l.Kind == LayerTile && l.Overlay {
			out = append(out, l)
		}
	}
	return out
}
