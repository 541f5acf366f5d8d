package services

import (
	"context"

	"github.com/murillous/agronomia-API/internal/models"
	"github.com/murillous/agronomia-API/internal/repository"
	"github.com/murillous/agronomia-API/pkg/logging"
	"github.com/murillous/agronomia-API/pkg/metrics"
)

// WeatherService serves the read queries over stored readings.
type WeatherService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherService creates a new weather service
func NewWeatherService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *WeatherService {
	return &WeatherService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Latest retrieves the most recent readings, newest first.
func (s *WeatherService) Latest(ctx context.Context, limit int) ([]*models.StoredRecord, error) {
	return s.repo.Latest(ctx, limit)
}

// ByPeriod retrieves readings within [start, end] epoch milliseconds.
func (s *WeatherService) ByPeriod(ctx context.Context, start, end int64, limit int) ([]*models.StoredRecord, error) {
	return s.repo.ByPeriod(ctx, start, end, limit)
}

// StationSummaries retrieves per-station reading aggregates.
func (s *WeatherService) StationSummaries(ctx context.Context) ([]*models.StationSummary, error) {
	return s.repo.StationSummaries(ctx)
}

// HealthCheck reports datastore reachability.
func (s *WeatherService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
