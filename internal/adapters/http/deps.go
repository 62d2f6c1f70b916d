package http

import (
	"github.com/nats-io/nats.go"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/postgres"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/valkey"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. It is built once
// at startup and threaded into every handler; nothing here is a package
// singleton.
type Dependencies struct {
	Boundaries *usecases.BoundaryService
	Rasters    *usecases.RasterService
	Bloom      *usecases.BloomService
	Maps       *usecases.MapService
	TimeSeries *usecases.TimeSeriesService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
	// ChartsDir is the filesystem directory served at the charts URL prefix.
	ChartsDir string
}

// Selectable year range on the page. The remote archive reaches back to 2005;
// the default selection is the most recent complete year.
const (
	FirstYear   = 2005
	LastYear    = 2023
	DefaultYear = 2023
)

// YearChoices lists the selectable years, most recent last.
func YearChoices() []int {
	years := make([]int, 0, LastYear-FirstYear+1)
	for y := FirstYear; y <= LastYear; y++ {
		years = append(years, y)
	}
	return years
}
