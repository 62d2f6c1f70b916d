// Package shapefile reads the LSIB country boundary shapefile into domain
// boundaries for loading into the reference table.
package shapefile

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// nameField is the LSIB attribute carrying the country display name.
const nameField = "COUNTRY_NA"

// ReadBoundaries parses a shapefile and returns one boundary per country
// name, sorted by name. Multiple features sharing a name (islands, exclaves)
// are merged into one multipolygon.
func ReadBoundaries(path string) ([]domain.Boundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shapefile: open %s: %w", path, err)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile: required field %s not found", nameField)
	}

	byName := make(map[string]*geom.MultiPolygon)
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			skipped++
			continue
		}

		mp := byName[name]
		if mp == nil {
			mp = geom.NewMultiPolygon(geom.XY)
			byName[name] = mp
		}
		if err := appendParts(mp, poly); err != nil {
			skipped++
		}
	}

	if skipped > 0 {
		slog.Debug("shapefile: skipped records", "path", path, "skipped", skipped)
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	boundaries := make([]domain.Boundary, 0, len(names))
	for _, n := range names {
		mp := byName[n]
		boundaries = append(boundaries, domain.Boundary{
			Name: n,
			Geom: mp,
			BBox: domain.BoundsOf(mp),
		})
	}
	return boundaries, nil
}

// appendParts adds each ring of a shapefile polygon as its own polygon. Ring
// role (shell vs hole) is not reconstructed; for boundary filtering and
// viewport framing the union of rings is sufficient.
func appendParts(mp *geom.MultiPolygon, poly *shp.Polygon) error {
	numParts := len(poly.Parts)
	for i := 0; i < numParts; i++ {
		start := int(poly.Parts[i])
		end := len(poly.Points)
		if i+1 < numParts {
			end = int(poly.Parts[i+1])
		}
		if end-start < 4 {
			continue
		}

		ring := make([]geom.Coord, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}

		p := geom.NewPolygon(geom.XY)
		if _, err := p.SetCoords([][]geom.Coord{ring}); err != nil {
			return err
		}
		if err := mp.Push(p); err != nil {
			return err
		}
	}
	return nil
}

func fieldIndex(r *shp.Reader, name string) int {
	for i, f := range r.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
