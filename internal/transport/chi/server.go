// Package chi implements the HTTP API: search, topic reads, job triggers,
// health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/search/mode"
	"github.com/topicboard/topicboard/internal/domain/search/request"
	"github.com/topicboard/topicboard/internal/domain/search/result"
	"github.com/topicboard/topicboard/internal/domain/topic"
	healthuc "github.com/topicboard/topicboard/internal/usecase/health"
	jobsuc "github.com/topicboard/topicboard/internal/usecase/jobs"
	topicsuc "github.com/topicboard/topicboard/internal/usecase/topics"
)

// Consumer interfaces for the wired use cases (ISP).
type (
	searchService interface {
		Search(ctx context.Context, req *request.Request) ([]result.Hit, error)
	}
	topicsService interface {
		List(ctx context.Context) ([]topicsuc.View, error)
		Posts(ctx context.Context, slug string, limit int) (topic.Topic, []post.Post, error)
	}
	jobRunner interface {
		Run(ctx context.Context, name string) (jobsuc.Report, error)
	}
	healthService interface {
		Check(ctx context.Context) healthuc.Report
	}
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        searchService
	topics        topicsService
	jobs          jobRunner
	health        healthService
	apiKeys       []string
	workerToken   string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Empty apiKeys disables read API
// auth; an empty workerToken disables the job endpoints entirely.
func NewServer(
	search searchService,
	topics topicsService,
	jobs jobRunner,
	health healthService,
	apiKeys []string,
	workerToken string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		topics:      topics,
		jobs:        jobs,
		health:      health,
		apiKeys:     apiKeys,
		workerToken: workerToken,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQueryTooShort, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidMode, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrUnknownJob, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrStoreQuery, http.StatusBadGateway, codeStoreError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, codeVectorDimMismatch),
	}
	return s
}

// Router assembles the route tree. Cross-cutting middleware (request ids,
// logging, metrics, recovery) is attached by the caller.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(BearerAuthMiddleware(s.apiKeys))

		api.Post("/search", s.SearchPosts)
		api.Get("/topics", s.ListTopics)
		api.Get("/topics/{slug}/posts", s.TopicPosts)

		api.Route("/jobs", func(jr chi.Router) {
			jr.Use(WorkerTokenMiddleware(s.workerToken))
			jr.Post("/{job}", s.RunJob)
		})
	})

	return r
}

// SearchPosts handles POST /api/v1/search.
func (s *Server) SearchPosts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := request.New(req.Query, mode.Mode(req.Mode), req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	hits, err := s.search.Search(r.Context(), &searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchHitItem, len(hits))
	for i, h := range hits {
		items[i] = hitToItem(h)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   searchReq.Query(),
		Mode:    string(searchReq.Mode()),
		Count:   len(items),
		Results: items,
	})
}

// ListTopics handles GET /api/v1/topics.
func (s *Server) ListTopics(w http.ResponseWriter, r *http.Request) {
	views, err := s.topics.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]topicItem, len(views))
	for i, v := range views {
		items[i] = viewToItem(v)
	}

	writeJSON(w, http.StatusOK, topicListResponse{Items: items, Total: len(items)})
}

// TopicPosts handles GET /api/v1/topics/{slug}/posts.
func (s *Server) TopicPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
			return
		}
		limit = parsed
	}

	t, posts, err := s.topics.Posts(r.Context(), slug, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]postItem, len(posts))
	for i, p := range posts {
		items[i] = postToItem(p)
	}

	writeJSON(w, http.StatusOK, topicPostsResponse{
		Topic: topicToItem(t, nil),
		Posts: items,
		Total: len(items),
	})
}

// RunJob handles POST /api/v1/jobs/{job}.
func (s *Server) RunJob(w http.ResponseWriter, r *http.Request) {
	report, err := s.jobs.Run(r.Context(), chi.URLParam(r, "job"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrQueryTooShort,
		domain.ErrQueryTooLong,
		domain.ErrInvalidMode,
		domain.ErrNotFound,
		domain.ErrUnknownJob,
		domain.ErrRateLimited,
		domain.ErrStoreQuery,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
