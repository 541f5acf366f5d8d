package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/murillous/agronomia-API/internal/models"
	"github.com/murillous/agronomia-API/pkg/database"
	"github.com/murillous/agronomia-API/pkg/logging"
	"github.com/murillous/agronomia-API/pkg/metrics"
)

// WeatherRepository persists normalized station readings and serves the
// read queries. The store assigns each record a durable identity and a
// server-side processing timestamp, separate from the station-reported ts.
type WeatherRepository interface {
	SaveReading(ctx context.Context, record models.NormalizedRecord) (*SaveResult, error)
	SaveReadingsBatch(ctx context.Context, records []models.NormalizedRecord) error

	Latest(ctx context.Context, limit int) ([]*models.StoredRecord, error)
	ByPeriod(ctx context.Context, start, end int64, limit int) ([]*models.StoredRecord, error)
	StationSummaries(ctx context.Context) ([]*models.StationSummary, error)

	HealthCheck(ctx context.Context) error
}

// SaveResult reports the identity assigned to a stored reading.
type SaveResult struct {
	DocumentID string
	Timestamp  string
}

// weatherRepository implements WeatherRepository on PostgreSQL, with each
// normalized reading stored as one JSONB document row.
type weatherRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SaveReading stores one normalized reading and returns the assigned id.
func (r *weatherRepository) SaveReading(ctx context.Context, record models.NormalizedRecord) (*SaveResult, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reading: %w", err)
	}

	query := `
		INSERT INTO weather_readings (station_id, ts, payload, processed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	timer := time.Now()
	var id int64
	err = r.db.DB().QueryRowContext(ctx, query,
		recordStationID(record),
		recordTimestamp(record),
		payload,
		time.Now().UTC(),
	).Scan(&id)
	r.metrics.DBQueryDuration.WithLabelValues("insert_reading").Observe(time.Since(timer).Seconds())

	if err != nil {
		r.metrics.RecordDBError("insert_error")
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_SAVE_READING] Reading stored", logging.Fields{
		"document_id": id,
		"station_id":  recordStationID(record),
	})

	return &SaveResult{
		DocumentID: strconv.FormatInt(id, 10),
		Timestamp:  tsString(record),
	}, nil
}

// SaveReadingsBatch stores multiple readings in a single transaction. Used
// by the backfill tool; the webhook path saves one reading per request.
func (r *weatherRepository) SaveReadingsBatch(ctx context.Context, records []models.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.BackfillBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(records),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weather_readings (station_id, ts, payload, processed_at)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode reading: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, recordStationID(record), recordTimestamp(record), payload, now); err != nil {
			return fmt.Errorf("failed to insert reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.BackfillRecordsTotal.Add(float64(len(records)))

	return nil
}

// Latest returns the most recent readings ordered newest first by the
// station-reported timestamp.
func (r *weatherRepository) Latest(ctx context.Context, limit int) ([]*models.StoredRecord, error) {
	query := `
		SELECT id, station_id, ts, payload, processed_at
		FROM weather_readings
		ORDER BY ts DESC, id DESC
		LIMIT $1
	`

	var records []*models.StoredRecord
	if err := r.db.SelectContext(ctx, "latest_readings", &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get latest readings: %w", err)
	}

	if err := decodePayloads(records); err != nil {
		return nil, err
	}

	return records, nil
}

// ByPeriod returns readings whose station timestamp falls within
// [start, end] milliseconds, newest first.
func (r *weatherRepository) ByPeriod(ctx context.Context, start, end int64, limit int) ([]*models.StoredRecord, error) {
	query := `
		SELECT id, station_id, ts, payload, processed_at
		FROM weather_readings
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts DESC, id DESC
		LIMIT $3
	`

	var records []*models.StoredRecord
	if err := r.db.SelectContext(ctx, "readings_by_period", &records, query, start, end, limit); err != nil {
		return nil, fmt.Errorf("failed to get readings by period: %w", err)
	}

	if err := decodePayloads(records); err != nil {
		return nil, err
	}

	return records, nil
}

// StationSummaries aggregates stored readings per station.
func (r *weatherRepository) StationSummaries(ctx context.Context) ([]*models.StationSummary, error) {
	query := `
		SELECT station_id,
		       COUNT(*) AS reading_count,
		       MIN(ts) AS first_ts,
		       MAX(ts) AS last_ts
		FROM weather_readings
		GROUP BY station_id
		ORDER BY station_id
	`

	var summaries []*models.StationSummary
	if err := r.db.SelectContext(ctx, "station_summaries", &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to get station summaries: %w", err)
	}

	return summaries, nil
}

// HealthCheck performs a repository health check
func (r *weatherRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func decodePayloads(records []*models.StoredRecord) error {
	for _, record := range records {
		if err := record.DecodePayload(); err != nil {
			return err
		}
	}
	return nil
}

// recordStationID extracts the indexed station id column value from a
// normalized record. Normalization stores integer fields as int64.
func recordStationID(record models.NormalizedRecord) int64 {
	switch v := record[models.FieldStationID].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// recordTimestamp extracts the indexed ts column value in epoch ms.
func recordTimestamp(record models.NormalizedRecord) int64 {
	ts, _ := strconv.ParseInt(tsString(record), 10, 64)
	return ts
}

func tsString(record models.NormalizedRecord) string {
	if s, ok := record[models.FieldTimestamp].(string); ok {
		return s
	}
	return ""
}
