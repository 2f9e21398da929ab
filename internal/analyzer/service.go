// Package analyzer exposes the analysis lifecycle over HTTP: submission,
// status polling, and history listing. The pipeline itself lives in
// internal/visibility; this package owns validation, persistence of the
// initial record, and queue handoff.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/markserbol/ai-optimisation-tool/internal/model"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/errs"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/metrics"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/requestid"
	"github.com/markserbol/ai-optimisation-tool/internal/store"
	"github.com/markserbol/ai-optimisation-tool/internal/urlutil"
	"github.com/markserbol/ai-optimisation-tool/internal/visibility"
)

// Store is the persistence surface the service reads and writes through.
type Store interface {
	CreateAnalysis(ctx context.Context, a model.Analysis) error
	GetAnalysis(ctx context.Context, analysisID string) (*model.AnalysisDetail, error)
	ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error)
}

// Queue hands accepted analyses to the background pool.
type Queue interface {
	Enqueue(job visibility.Job) error
}

// Service accepts, looks up, and lists analyses.
type Service struct {
	store  Store
	queue  Queue
	logger *slog.Logger
}

func NewService(store Store, queue Queue, logger *slog.Logger) *Service {
	return &Service{store: store, queue: queue, logger: logger}
}

// Submit validates and normalizes the target URL, persists a new analysis in
// status crawling, and queues it for processing. The caller gets the new ID
// immediately; progress is observed by polling.
func (s *Service) Submit(ctx context.Context, rawURL string) (*model.Analysis, error) {
	logger := s.logger.With("request_id", requestid.FromContext(ctx))

	normalized, err := urlutil.Normalize(rawURL)
	if err != nil {
		logger.Info("rejected analysis request", "url", rawURL, "reason", err)
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: err.Error(),
			Cause:   err,
		}
	}

	analysis := model.Analysis{
		ID:        uuid.New().String(),
		URL:       normalized,
		Status:    model.StatusCrawling,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateAnalysis(ctx, analysis); err != nil {
		logger.Error("creating analysis failed", "error", err)
		return nil, &errs.AppError{
			Kind:    errs.Internal,
			Message: "Could not start the analysis. Please try again.",
			Cause:   err,
		}
	}

	if err := s.queue.Enqueue(visibility.Job{AnalysisID: analysis.ID, TargetURL: normalized}); err != nil {
		logger.Warn("analysis queue full", "analysis_id", analysis.ID)
		return nil, &errs.AppError{
			Kind:    errs.Busy,
			Message: "The service is processing too many analyses right now. Please try again shortly.",
			Cause:   err,
		}
	}

	metrics.AnalysesStarted.Inc()
	logger.Info("analysis accepted", "analysis_id", analysis.ID, "url", normalized)
	return &analysis, nil
}

// Get returns the full detail for one analysis.
func (s *Service) Get(ctx context.Context, analysisID string) (*model.AnalysisDetail, error) {
	detail, err := s.store.GetAnalysis(ctx, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &errs.AppError{
				Kind:    errs.NotFound,
				Message: "No analysis found with that ID.",
				Cause:   err,
			}
		}
		return nil, &errs.AppError{
			Kind:    errs.Internal,
			Message: "Could not load the analysis.",
			Cause:   err,
		}
	}
	return detail, nil
}

// List returns the history of analyses, newest first.
func (s *Service) List(ctx context.Context) ([]model.AnalysisSummary, error) {
	summaries, err := s.store.ListAnalyses(ctx)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Internal,
			Message: "Could not load the analysis history.",
			Cause:   err,
		}
	}
	return summaries, nil
}
