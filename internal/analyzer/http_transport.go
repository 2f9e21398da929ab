package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markserbol/ai-optimisation-tool/internal/model"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/errs"
	"github.com/markserbol/ai-optimisation-tool/internal/platform/middleware"
)

var errURLRequired = errors.New("the \"url\" field is required")

// AnalysisService is the operation surface the transport exposes over HTTP.
// Satisfied by *Service.
type AnalysisService interface {
	Submit(ctx context.Context, rawURL string) (*model.Analysis, error)
	Get(ctx context.Context, analysisID string) (*model.AnalysisDetail, error)
	List(ctx context.Context) ([]model.AnalysisSummary, error)
}

// Transport handles HTTP requests for the analysis lifecycle.
type Transport struct {
	service AnalysisService
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service AnalysisService, logger *slog.Logger) *Transport {
	return &Transport{service: service, logger: logger}
}

// Router builds the full route tree, middleware included.
func (t *Transport) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(t.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Post("/api/analyze", t.handleSubmit)
	r.Get("/api/analysis/{id}", t.handleGet)
	r.Get("/api/analyses", t.handleList)

	r.Get("/health", t.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type submitRequest struct {
	URL string `json:"url"`
}

func (r submitRequest) validate() error {
	if r.URL == "" {
		return errURLRequired
	}
	return nil
}

type submitResponse struct {
	ID string `json:"id"`
}

func (t *Transport) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "Invalid request body. Please send a JSON object with a \"url\" field.")
		return
	}

	if err := req.validate(); err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := t.service.Submit(r.Context(), req.URL)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusAccepted, submitResponse{ID: analysis.ID})
}

func (t *Transport) handleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := t.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		t.handleServiceError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, detail)
}

func (t *Transport) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := t.service.List(r.Context())
	if err != nil {
		t.handleServiceError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, summaries)
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case errs.InvalidInput:
			status = http.StatusBadRequest
		case errs.NotFound:
			status = http.StatusNotFound
		case errs.Busy:
			status = http.StatusServiceUnavailable
		case errs.Internal, errs.Unknown:
			// 500 Internal Server Error
		}
		t.renderError(w, status, appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
