package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/murillous/agronomia-API/internal/config"
	"github.com/murillous/agronomia-API/internal/repository"
	"github.com/murillous/agronomia-API/internal/services"
	"github.com/murillous/agronomia-API/pkg/database"
	"github.com/murillous/agronomia-API/pkg/logging"
	"github.com/murillous/agronomia-API/pkg/metrics"
)

func main() {
	// Parse command-line flags
	dataDir := flag.String("data-dir", "./dumps", "Directory containing NDJSON station dump files")
	batchSize := flag.Int("batch-size", 500, "Number of readings to insert per batch")
	asOf := flag.String("as-of", "", "Reference time (RFC3339) for timestamp freshness checks; defaults to now")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("agronomia-backfill", "1.2.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[BACKFILL_TOOL] Starting station dump backfill", logging.Fields{
		"data_dir":   *dataDir,
		"batch_size": *batchSize,
		"as_of":      *asOf,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("agronomia_backfill")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[BACKFILL_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(weatherRepo, logger, metricsCollector)

	// Dump files carry timestamps from when the dump was taken; pin the
	// freshness window to that instant so old-but-valid readings pass.
	if *asOf != "" {
		reference, err := time.Parse(time.RFC3339, *asOf)
		if err != nil {
			logger.Fatal(ctx, "[BACKFILL_ERROR] Invalid -as-of value", logging.Fields{
				"as_of": *asOf,
			}, err)
		}
		ingestionService.SetClock(func() time.Time { return reference })
	}

	result, err := ingestionService.IngestDirectory(ctx, *dataDir, *batchSize)
	if err != nil {
		logger.Fatal(ctx, "[BACKFILL_ERROR] Backfill failed", logging.Fields{}, err)
	}

	fmt.Println("Backfill completed")
	fmt.Printf("  Files:    %d\n", result.TotalFiles)
	fmt.Printf("  Readings: %d\n", result.TotalReadings)
	fmt.Printf("  Stored:   %d\n", result.StoredReadings)
	fmt.Printf("  Rejected: %d\n", result.RejectedReadings)
	fmt.Printf("  Duration: %s\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:\n    %s\n", strings.Join(result.Errors, "\n    "))
		os.Exit(1)
	}
}
