// Package recommend orchestrates the crop recommendation flow: make sure a
// fitted model exists, resolve the input conditions (manual sliders or a live
// weather lookup with manual fallback), run inference, and enrich the result
// with the dataset's advisory columns.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
	"github.com/couchcryptid/crop-advisor-service/internal/model"
	"github.com/couchcryptid/crop-advisor-service/internal/observability"
)

// ErrInvalidRequest marks client-side input errors so the HTTP layer can map
// them to 400 instead of 500.
var ErrInvalidRequest = errors.New("invalid recommendation request")

// HistoryStore persists recommendations. Saving is best effort: a storage
// failure is logged, never surfaced to the requester.
type HistoryStore interface {
	SaveRecommendation(ctx context.Context, rec domain.Recommendation) error
	ListRecommendations(ctx context.Context) ([]domain.Recommendation, error)
}

// EventPublisher emits recommendation events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, rec domain.Recommendation) error
}

// Params collects the service dependencies. Weather, History, and Events are
// optional; nil disables the corresponding behavior.
type Params struct {
	Table       *domain.Table
	Columns     domain.Columns
	DatasetHash string
	Seed        int64
	Models      *model.FileStore
	Weather     domain.WeatherProvider
	History     HistoryStore
	Events      EventPublisher
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// Service answers recommendation requests against a single fitted model.
type Service struct {
	table       *domain.Table
	cols        domain.Columns
	datasetHash string
	seed        int64
	models      *model.FileStore
	weather     domain.WeatherProvider
	history     HistoryStore
	events      EventPublisher
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu    sync.RWMutex
	model *model.Model
}

// New creates the service. Call EnsureModel before serving requests.
func New(p Params) *Service {
	return &Service{
		table:       p.Table,
		cols:        p.Columns,
		datasetHash: p.DatasetHash,
		seed:        p.Seed,
		models:      p.Models,
		weather:     p.Weather,
		history:     p.History,
		events:      p.Events,
		logger:      p.Logger,
		metrics:     p.Metrics,
	}
}

// EnsureModel makes a fitted model available: it reuses the persisted artifact
// when its dataset hash and seed match the current dataset, and retrains and
// replaces the artifact otherwise. Training happens at most once per dataset.
func (s *Service) EnsureModel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, err := s.models.Load(); err == nil {
		if m.DatasetHash == s.datasetHash && m.Seed == s.seed {
			s.model = m
			s.metrics.ModelLoaded.Set(1)
			s.logger.Info("model artifact reused", "trained_at", m.TrainedAt)
			return nil
		}
		s.logger.Info("model artifact is stale, retraining",
			"artifact_hash", m.DatasetHash,
			"dataset_hash", s.datasetHash,
		)
	} else if !model.IsNotExist(err) {
		// A corrupt artifact is not fatal; retrain over it.
		s.logger.Warn("could not load model artifact", "error", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	m, err := model.Train(s.table, s.cols, s.seed, s.datasetHash)
	if err != nil {
		return fmt.Errorf("train model: %w", err)
	}
	s.metrics.TrainingRuns.Inc()
	s.metrics.TrainingDuration.Observe(time.Since(start).Seconds())

	if err := s.models.Save(m); err != nil {
		// The in-memory model still works; only persistence failed.
		s.logger.Warn("could not persist model artifact", "error", err)
	}

	s.model = m
	s.metrics.ModelLoaded.Set(1)
	s.logger.Info("model trained", "rows", len(s.table.Rows), "duration", time.Since(start))
	return nil
}

// Recommend resolves the request's conditions, predicts a crop, and returns
// the enriched recommendation. Live weather failures are non-fatal: the
// request's fallback values are used and the warning is carried in the result.
func (s *Service) Recommend(ctx context.Context, req domain.RecommendRequest) (domain.Recommendation, error) {
	if err := req.Validate(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	conditions, source, warning := s.resolveConditions(ctx, req)

	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()

	crop, err := m.Predict(conditions)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		s.metrics.Recommendations.WithLabelValues(source, "error").Inc()
		return domain.Recommendation{}, fmt.Errorf("predict crop: %w", err)
	}

	rec := domain.Recommendation{
		Crop:       crop,
		Conditions: conditions,
		Source:     source,
		Warning:    warning,
		CreatedAt:  domain.Clock().Now().UTC(),
	}
	if info, ok := domain.LookupCropInfo(s.table, s.cols, crop); ok {
		rec.CommonProblems = info.CommonProblems
		rec.YieldTier = info.YieldTier
	}

	if s.history != nil {
		if err := s.history.SaveRecommendation(ctx, rec); err != nil {
			s.logger.Warn("could not save recommendation", "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, rec); err != nil {
			s.logger.Warn("could not publish recommendation event", "error", err)
		}
	}

	s.metrics.Recommendations.WithLabelValues(source, "success").Inc()
	s.logger.Info("recommendation served",
		"crop", rec.Crop,
		"source", rec.Source,
		"month", conditions.Month,
	)
	return rec, nil
}

// resolveConditions turns the tagged-union request into one feature vector.
// Live requests overlay the weather reading on the request (soil pH stays
// manual); when the lookup fails or live weather is disabled, the fallback
// values are used and the reason is returned as a warning.
func (s *Service) resolveConditions(ctx context.Context, req domain.RecommendRequest) (domain.Conditions, string, string) {
	if req.Manual != nil {
		return req.Manual.Conditions(), domain.SourceManual, ""
	}

	if s.weather == nil {
		return req.Live.FallbackConditions(), domain.SourceLiveFallback,
			"live weather is disabled, using manual values"
	}

	reading, err := s.weather.Fetch(ctx, req.Live.Location)
	if err != nil {
		s.logger.Warn("weather lookup failed, falling back to manual values",
			"location", req.Live.Location,
			"error", err,
		)
		return req.Live.FallbackConditions(), domain.SourceLiveFallback,
			fmt.Sprintf("weather lookup failed: %v", err)
	}

	return req.Live.ApplyReading(reading), domain.SourceLive, ""
}

// History returns stored recommendations, most recent first.
func (s *Service) History(ctx context.Context) ([]domain.Recommendation, error) {
	if s.history == nil {
		return []domain.Recommendation{}, nil
	}
	return s.history.ListRecommendations(ctx)
}

// Dataset returns the loaded reference table and its resolved columns.
func (s *Service) Dataset() (*domain.Table, domain.Columns) {
	return s.table, s.cols
}

// CheckReadiness reports whether a fitted model is available.
func (s *Service) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return errors.New("model is not fitted yet")
	}
	return nil
}
