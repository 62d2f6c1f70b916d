package ports

import (
	"context"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// BoundaryRepository persists the fixed reference boundary dataset.
type BoundaryRepository interface {
	// ListNames returns all country names, sorted ascending.
	ListNames(ctx context.Context) ([]string, error)
	// GetByName resolves a boundary by exact name. A case-insensitive match
	// is acceptable; an unknown name returns domain.ErrCountryNotFound,
	// never an empty boundary.
	GetByName(ctx context.Context, name string) (*domain.Boundary, error)
	// UpsertBatch loads or refreshes boundaries from the reference dataset.
	UpsertBatch(ctx context.Context, boundaries []domain.Boundary) error
	// Count returns the number of boundaries loaded.
	Count(ctx context.Context) (int, error)
}
