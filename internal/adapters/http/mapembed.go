package http

import (
	"bytes"
	"html/template"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// mapViewModel is the template-facing shape of a composed map. GeoJSON
// payloads are injected as raw JS object literals; everything else goes
// through the contextual escaper.
type mapViewModel struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	Bounds    *domain.BBox
	BaseURL   string
	Tiles     []mapTileVM
	Vectors   []mapVectorVM
}

type mapTileVM struct {
	Name    string
	URL     string
	Enabled bool
}

type mapVectorVM struct {
	Name    string
	GeoJSON template.JS
	Color   string
	Enabled bool
}

var mapTmpl = template.Must(template.New("map").Parse(mapMarkup))

const mapMarkup = `<div id="bloom-map" style="height: 600px;"></div>
<script>
(function () {
  var map = L.map("bloom-map").setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
  {{- if .Bounds}}
  map.fitBounds([[{{.Bounds.MinLat}}, {{.Bounds.MinLon}}], [{{.Bounds.MaxLat}}, {{.Bounds.MaxLon}}]]);
  {{- end}}
  L.tileLayer({{.BaseURL}}, {attribution: "&copy; OpenStreetMap contributors"}).addTo(map);
  var overlays = {};
  {{- range .Tiles}}
  (function () {
    var l = L.tileLayer({{.URL}}, {opacity: 0.8});
    overlays[{{.Name}}] = l;
    {{- if .Enabled}}
    l.addTo(map);
    {{- end}}
  })();
  {{- end}}
  {{- range .Vectors}}
  (function () {
    var l = L.geoJSON({{.GeoJSON}}, {style: {color: {{.Color}}, weight: 2, fill: false}});
    overlays[{{.Name}}] = l;
    {{- if .Enabled}}
    l.addTo(map);
    {{- end}}
  })();
  {{- end}}
  L.control.layers(null, overlays, {collapsed: false}).addTo(map);
})();
</script>`

// RenderMap turns a composed map view into embeddable Leaflet markup. The
// first non-overlay tile layer is treated as the base map.
func RenderMap(view *domain.MapView) (template.HTML, error) {
	vm := mapViewModel{
		CenterLat: view.Center.Lat,
		CenterLon: view.Center.Lon,
		Zoom:      view.Zoom,
		Bounds:    view.FitBounds,
	}
	for _, l := range view.Layers {
		switch {
		case l.Kind == domain.LayerTile && !l.Overlay:
			if vm.BaseURL == "" {
				vm.BaseURL = l.TileURL
			}
		case l.Kind == domain.LayerTile:
			vm.Tiles = append(vm.Tiles, mapTileVM{Name: l.Name, URL: l.TileURL, Enabled: l.Enabled})
		case l.Kind == domain.LayerGeoJSON:
			vm.Vectors = append(vm.Vectors, mapVectorVM{
				Name:    l.Name,
				GeoJSON: template.JS(l.GeoJSON),
				Color:   l.Color,
				Enabled: l.Enabled,
			})
		}
	}

	var buf bytes.Buffer
	if err := mapTmpl.Execute(&buf, vm); err != nil {
		return "", &domain.RenderError{Stage: "map markup", Err: err}
	}
	return template.HTML(buf.String()), nil
}
