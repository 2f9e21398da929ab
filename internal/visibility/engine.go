// Package visibility implements the analysis pipeline: crawl a website,
// batch its content into a bounded prompt corpus, fan out over the fixed
// category catalog against the configured inference backend, and persist the
// aggregated suggestions.
package visibility

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/markserbol/ai-optimisation-tool/internal/crawler"
	"github.com/markserbol/ai-optimisation-tool/internal/llm"
	"github.com/markserbol/ai-optimisation-tool/internal/model"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/metrics"
)

// Store is the persistence surface the pipeline writes through.
type Store interface {
	UpdateStatus(ctx context.Context, analysisID string, status model.Status) error
	MarkFailed(ctx context.Context, analysisID string, message string) error
	InsertPages(ctx context.Context, pages []model.Page) error
	ListPages(ctx context.Context, analysisID string) ([]model.Page, error)
	InsertSuggestions(ctx context.Context, suggestions []model.Suggestion) error
}

// Engine runs one analysis end to end. Safe for concurrent Run calls.
type Engine struct {
	store     Store
	crawler   crawler.Crawler
	provider  *llm.Provider
	pageLimit int
	logger    *slog.Logger
}

// NewEngine wires an Engine. provider may be nil when no inference backend
// is configured; analyses then complete with zero suggestions.
func NewEngine(store Store, c crawler.Crawler, provider *llm.Provider, pageLimit int, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		crawler:   c,
		provider:  provider,
		pageLimit: pageLimit,
		logger:    logger,
	}
}

// Run drives one analysis from crawling through to a terminal status. The
// record is expected to already exist in status crawling. Run never returns
// an error to its caller: every failure path ends in MarkFailed.
func (e *Engine) Run(ctx context.Context, analysisID, targetURL string) {
	started := time.Now()
	log := e.logger.With("analysis_id", analysisID, "url", targetURL)

	crawled, err := e.crawler.Crawl(ctx, targetURL, e.pageLimit)
	if err != nil {
		log.Error("crawl failed", "error", err)
		e.fail(ctx, analysisID, "crawl failed: "+err.Error(), started)
		return
	}
	metrics.PagesCrawled.Add(float64(len(crawled)))
	log.Info("crawl finished", "pages", len(crawled))

	pages := make([]model.Page, 0, len(crawled))
	for _, p := range crawled {
		pageURL := p.URL
		if pageURL == "" {
			pageURL = targetURL
		}
		pages = append(pages, model.Page{
			ID:         uuid.New().String(),
			AnalysisID: analysisID,
			URL:        pageURL,
			Title:      p.Title,
			Content:    p.Content,
			HTML:       p.HTML,
		})
	}
	if err := e.store.InsertPages(ctx, pages); err != nil {
		log.Error("storing pages failed", "error", err)
		e.fail(ctx, analysisID, "storing pages failed: "+err.Error(), started)
		return
	}

	if err := e.store.UpdateStatus(ctx, analysisID, model.StatusAnalyzing); err != nil {
		log.Error("status update failed", "error", err)
		e.fail(ctx, analysisID, "status update failed: "+err.Error(), started)
		return
	}

	// Re-read what was persisted rather than analyzing the in-memory copy,
	// so the analysis always reflects stored state.
	stored, err := e.store.ListPages(ctx, analysisID)
	if err != nil {
		log.Error("reading pages failed", "error", err)
		e.fail(ctx, analysisID, "reading pages failed: "+err.Error(), started)
		return
	}

	suggestions := e.analyze(ctx, analysisID, stored, log)

	if len(suggestions) > 0 {
		if err := e.store.InsertSuggestions(ctx, suggestions); err != nil {
			log.Error("storing suggestions failed", "error", err)
			e.fail(ctx, analysisID, "storing suggestions failed: "+err.Error(), started)
			return
		}
	}

	if err := e.store.UpdateStatus(ctx, analysisID, model.StatusCompleted); err != nil {
		log.Error("status update failed", "error", err)
		e.fail(ctx, analysisID, "status update failed: "+err.Error(), started)
		return
	}

	metrics.AnalysesFinished.WithLabelValues(string(model.StatusCompleted)).Inc()
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	log.Info("analysis completed", "suggestions", len(suggestions), "duration", time.Since(started).Round(time.Millisecond))
}

// analyze fans out over the category catalog concurrently and aggregates the
// results in catalog order. A failing category contributes nothing but never
// aborts the others.
func (e *Engine) analyze(ctx context.Context, analysisID string, pages []model.Page, log *slog.Logger) []model.Suggestion {
	corpus := buildCorpus(pages)
	knownURLs := make(map[string]bool, len(pages))
	for _, p := range pages {
		knownURLs[p.URL] = true
	}

	results := make([][]model.Suggestion, len(Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range Categories {
		g.Go(func() error {
			found, err := runCategory(gctx, e.provider, cat, corpus, knownURLs, log)
			if err != nil {
				log.Warn("category analysis failed", "category", cat.ID, "error", err)
				return nil
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	var suggestions []model.Suggestion
	for i, found := range results {
		metrics.SuggestionsGenerated.WithLabelValues(Categories[i].ID).Add(float64(len(found)))
		for _, s := range found {
			s.ID = uuid.New().String()
			s.AnalysisID = analysisID
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

// fail records the terminal metrics only once the failed status is actually
// persisted; a row left in a non-terminal state must not count as finished.
func (e *Engine) fail(ctx context.Context, analysisID, message string, started time.Time) {
	if err := e.store.MarkFailed(ctx, analysisID, message); err != nil {
		e.logger.Error("marking analysis failed errored", "analysis_id", analysisID, "error", err)
		return
	}
	metrics.AnalysesFinished.WithLabelValues(string(model.StatusFailed)).Inc()
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
}
