package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/postgres"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/adapters/shapefile"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/config"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/pkg/logging"
)

// Loads the LSIB country-boundary shapefile into Postgres. Run once at setup
// and again whenever the reference dataset is updated.
func main() {
	shpPath := flag.String("shapefile", "data/LSIB.shp", "path to the LSIB boundary shapefile")
	flag.Parse()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "text")

	cfg, err := config.Load("bloomwatch-ingest")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	start := time.Now()
	boundaries, err := shapefile.ReadBoundaries(*shpPath)
	if err != nil {
		log.Fatalf("read shapefile: %v", err)
	}
	slog.Info("shapefile parsed", "countries", len(boundaries), "took", time.Since(start).String())

	repo := postgres.NewBoundaryRepo(db)
	if err := repo.UpsertBatch(ctx, boundaries); err != nil {
		log.Fatalf("load boundaries: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("count boundaries: %v", err)
	}
	slog.Info("boundaries loaded", "total", n, "took", time.Since(start).String())
}
