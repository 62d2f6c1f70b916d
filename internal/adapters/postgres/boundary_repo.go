package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// BoundaryRepo implements ports.BoundaryRepository with pgx over the
// boundaries reference table (loaded once from the LSIB shapefile).
type BoundaryRepo struct {
	db *DB
}

// NewBoundaryRepo creates a new BoundaryRepo.
func NewBoundaryRepo(db *DB) *BoundaryRepo {
	return &BoundaryRepo{db: db}
}

// ListNames returns all country names sorted ascending.
func (r *BoundaryRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT name FROM boundaries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// GetByName resolves a boundary by name, case-insensitively.
func (r *BoundaryRepo) GetByName(ctx context.Context, name string) (*domain.Boundary, error) {
	var b domain.Boundary
	var raw []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT name, ST_AsBinary(geom),
		       min_lon, min_lat, max_lon, max_lat
		FROM boundaries WHERE lower(name) = lower($1)
	`, name).Scan(&b.Name, &raw, &b.BBox.MinLon, &b.BBox.MinLat, &b.BBox.MaxLon, &b.BBox.MaxLat)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCountryNotFound
	}
	if err != nil {
		return nil, err
	}

	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode boundary geometry for %q: %w", name, err)
	}
	mp, err := asMultiPolygon(g)
	if err != nil {
		return nil, fmt.Errorf("boundary %q: %w", name, err)
	}
	b.Geom = mp
	return &b, nil
}

// UpsertBatch loads boundaries using pgx.Batch.
func (r *BoundaryRepo) UpsertBatch(ctx context.Context, boundaries []domain.Boundary) error {
	batch := &pgx.Batch{}
	for _, b := range boundaries {
		raw, err := wkb.Marshal(b.Geom, wkb.NDR)
		if err != nil {
			return fmt.Errorf("encode geometry for %q: %w", b.Name, err)
		}
		batch.Queue(`
			INSERT INTO boundaries (name, geom, min_lon, min_lat, max_lon, max_lat)
			VALUES ($1, ST_SetSRID(ST_GeomFromWKB($2), 4326), $3, $4, $5, $6)
			ON CONFLICT (name) DO UPDATE
			SET geom = EXCLUDED.geom,
			    min_lon = EXCLUDED.min_lon, min_lat = EXCLUDED.min_lat,
			    max_lon = EXCLUDED.max_lon, max_lat = EXCLUDED.max_lat
		`, b.Name, raw, b.BBox.MinLon, b.BBox.MinLat, b.BBox.MaxLon, b.BBox.MaxLat)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range boundaries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Count returns the number of loaded boundaries.
func (r *BoundaryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM boundaries`).Scan(&n)
	return n, err
}

// asMultiPolygon normalizes a decoded geometry: single polygons are wrapped.
func asMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(t.Layout())
		if err := mp.Push(t); err != nil {
			return nil, err
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unexpected geometry type %T", g)
	}
}
