package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/murillous/agronomia-API/internal/models"
	"github.com/murillous/agronomia-API/internal/repository"
	"github.com/murillous/agronomia-API/internal/validation"
	"github.com/murillous/agronomia-API/pkg/logging"
	"github.com/murillous/agronomia-API/pkg/metrics"
)

// IngestionService runs the validate → normalize → persist pipeline for
// station readings, both for the live webhook and for backfill replays.
type IngestionService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
		now:     time.Now,
	}
}

// SetClock overrides the clock used for timestamp freshness checks.
func (s *IngestionService) SetClock(now func() time.Time) {
	s.now = now
}

// IngestResult reports one accepted reading.
type IngestResult struct {
	DocumentID     string
	Timestamp      string
	WorkingSensors []string
	Warnings       []string
}

// ProcessReading validates, normalizes, and persists a single reading. A
// validation rejection is returned as *validation.Error; any other error
// means the store failed.
func (s *IngestionService) ProcessReading(ctx context.Context, reading models.Reading) (*IngestResult, error) {
	timer := time.Now()
	outcome, err := validation.Validate(reading, s.now())
	s.metrics.ValidationDuration.Observe(time.Since(timer).Seconds())

	if err != nil {
		if verr, ok := err.(*validation.Error); ok {
			s.metrics.RecordRejection(string(verr.Stage))
			s.logger.Warn(ctx, "[INGEST_REJECTED] Reading rejected", logging.Fields{
				"stage":  string(verr.Stage),
				"reason": verr.Message,
			})
		}
		return nil, err
	}

	if len(outcome.Warnings) > 0 {
		s.metrics.ValidationWarningsTotal.Add(float64(len(outcome.Warnings)))
		s.logger.Warn(ctx, "[INGEST_WARNINGS] Reading accepted with warnings", logging.Fields{
			"station_id": reading.StationID(),
			"warnings":   outcome.Warnings,
		})
	}

	record := validation.Normalize(reading)

	result, err := s.repo.SaveReading(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to store reading: %w", err)
	}

	s.metrics.ReadingsAcceptedTotal.Inc()
	s.metrics.WorkingSensorsPerReading.Observe(float64(len(outcome.WorkingSensors)))

	s.logger.Info(ctx, "[INGEST_STORED] Reading stored", logging.Fields{
		"document_id":     result.DocumentID,
		"station_id":      reading.StationID(),
		"working_sensors": len(outcome.WorkingSensors),
	})

	return &IngestResult{
		DocumentID:     result.DocumentID,
		Timestamp:      result.Timestamp,
		WorkingSensors: outcome.WorkingSensors,
		Warnings:       outcome.Warnings,
	}, nil
}

// BackfillResult contains backfill statistics
type BackfillResult struct {
	TotalFiles       int
	TotalReadings    int
	StoredReadings   int
	RejectedReadings int
	Duration         time.Duration
	Errors           []string
}

// IngestDirectory replays every NDJSON dump file in a directory through
// the validation pipeline, inserting accepted readings in batches. Station
// timestamps in a dump are usually older than the live freshness window,
// so the caller fixes the reference clock via SetClock when replaying.
func (s *IngestionService) IngestDirectory(ctx context.Context, dataDir string, batchSize int) (*BackfillResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[BACKFILL_START] Starting backfill", logging.Fields{
		"data_dir":   dataDir,
		"batch_size": batchSize,
	})

	result := &BackfillResult{
		Errors: make([]string, 0),
	}

	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no dump files found in %s", dataDir)
	}

	result.TotalFiles = len(files)

	for _, filePath := range files {
		fileResult, err := s.ingestFile(ctx, filePath, batchSize)
		if err != nil {
			errMsg := fmt.Sprintf("failed to ingest %s: %v", filePath, err)
			result.Errors = append(result.Errors, errMsg)
			s.logger.Error(ctx, "[BACKFILL_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
			}, err)
			continue
		}

		result.TotalReadings += fileResult.TotalReadings
		result.StoredReadings += fileResult.StoredReadings
		result.RejectedReadings += fileResult.RejectedReadings

		s.logger.Info(ctx, "[BACKFILL_FILE_DONE] File ingested", logging.Fields{
			"file_path":         filePath,
			"total_readings":    fileResult.TotalReadings,
			"stored_readings":   fileResult.StoredReadings,
			"rejected_readings": fileResult.RejectedReadings,
		})
	}

	result.Duration = time.Since(startTime)

	s.logger.Info(ctx, "[BACKFILL_COMPLETE] Backfill completed", logging.Fields{
		"total_files":       result.TotalFiles,
		"total_readings":    result.TotalReadings,
		"stored_readings":   result.StoredReadings,
		"rejected_readings": result.RejectedReadings,
		"duration_seconds":  result.Duration.Seconds(),
		"error_count":       len(result.Errors),
	})

	return result, nil
}

// FileBackfillResult contains per-file backfill statistics
type FileBackfillResult struct {
	TotalReadings    int
	StoredReadings   int
	RejectedReadings int
}

// ingestFile replays a single NDJSON dump file: one reading per line.
func (s *IngestionService) ingestFile(ctx context.Context, filePath string, batchSize int) (*FileBackfillResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result := &FileBackfillResult{}
	batch := make([]models.NormalizedRecord, 0, batchSize)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		result.TotalReadings++

		var reading models.Reading
		if err := json.Unmarshal(line, &reading); err != nil {
			result.RejectedReadings++
			s.metrics.RecordRejection("decode")
			continue
		}

		if _, err := validation.Validate(reading, s.now()); err != nil {
			result.RejectedReadings++
			if verr, ok := err.(*validation.Error); ok {
				s.metrics.RecordRejection(string(verr.Stage))
			}
			continue
		}

		batch = append(batch, validation.Normalize(reading))

		if len(batch) >= batchSize {
			if err := s.repo.SaveReadingsBatch(ctx, batch); err != nil {
				return nil, fmt.Errorf("failed to insert batch: %w", err)
			}
			result.StoredReadings += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.repo.SaveReadingsBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to insert final batch: %w", err)
		}
		result.StoredReadings += len(batch)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}
