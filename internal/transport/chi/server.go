package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/helpdesk/internal/logger"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
	"github.com/kailas-cloud/helpdesk/internal/usecase/chat"
	"github.com/kailas-cloud/helpdesk/internal/usecase/health"
	"github.com/kailas-cloud/helpdesk/internal/usecase/reindex"
)

const (
	// DefaultSearchTopK is the result count of /api/search when top_k is omitted.
	DefaultSearchTopK = 10
	maxSearchTopK     = 50
	maxBodyBytes      = 64 << 10
)

// Answerer produces a chat response for one query.
type Answerer interface {
	Answer(ctx context.Context, query string) chat.Response
}

// Searcher runs a lexical search over the corpus.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]result.Result, error)
}

// Reindexer rebuilds the vector index. Rebuild also drops the index first.
type Reindexer interface {
	Run(ctx context.Context) (reindex.Report, error)
	Rebuild(ctx context.Context) (reindex.Report, error)
}

// CorpusRefresher drops the cached corpus and reloads it.
type CorpusRefresher interface {
	Invalidate()
	Load(ctx context.Context) ([]content.Item, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Deps collects the collaborators of the HTTP API. Reindex is nil when the
// semantic tier is disabled.
type Deps struct {
	Chat       Answerer
	Search     Searcher
	Reindex    Reindexer
	Corpus     CorpusRefresher
	Health     HealthChecker
	SearchTopK int
	AdminKeys  []string
	RateRPS    float64
	RateBurst  int
	Logger     *zap.Logger
}

// Server implements the helpdesk HTTP API.
type Server struct {
	deps          Deps
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates a Server.
func NewServer(deps Deps) *Server {
	if deps.SearchTopK <= 0 {
		deps.SearchTopK = DefaultSearchTopK
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Server{
		deps:          deps,
		logger:        deps.Logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.deps.RateRPS, s.deps.RateBurst))
		r.Post("/chat", s.Chat)
		r.Post("/search", s.Search)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(s.deps.AdminKeys))
		r.Post("/reindex", s.Reindex)
		r.Post("/corpus/refresh", s.RefreshCorpus)
	})

	return r
}

type chatRequest struct {
	Query  string `json:"query"`
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Text      string       `json:"text"`
	Escalated bool         `json:"escalated"`
	Outcome   string       `json:"outcome"`
	Tier      string       `json:"tier"`
	Degraded  bool         `json:"degraded"`
	Sources   []sourceItem `json:"sources"`
}

type sourceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Kind       string  `json:"kind"`
	Confidence int     `json:"confidence"`
	Score      float64 `json:"score"`
	Ref        string  `json:"ref,omitempty"`
}

// Chat answers a user question.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Prompt)
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp := s.deps.Chat.Answer(ctx, query)
	setUsageHeaders(w, usage)

	results := resp.Outcome.Results()
	sources := make([]sourceItem, 0, len(results))
	for i := range results {
		it := results[i].Item()
		sources = append(sources, sourceItem{
			ID:         it.ID(),
			Title:      it.Title(),
			Kind:       string(it.Kind()),
			Confidence: results[i].Confidence(),
			Score:      results[i].Score(),
			Ref:        it.ExternalRef(),
		})
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Text:      resp.Text,
		Escalated: resp.Escalated(),
		Outcome:   string(resp.Tag()),
		Tier:      string(resp.Outcome.Tier()),
		Degraded:  resp.Degraded,
		Sources:   sources,
	})
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Kind     string   `json:"kind"`
	Score    float64  `json:"score"`
	Ref      string   `json:"ref,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
	Total int          `json:"total"`
}

// Search runs a keyword search across the whole corpus.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}
	topK := req.TopK
	switch {
	case topK < 0:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "top_k must be positive")
		return
	case topK == 0:
		topK = s.deps.SearchTopK
	case topK > maxSearchTopK:
		topK = maxSearchTopK
	}

	results, err := s.deps.Search.Search(r.Context(), req.Query, topK)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]searchItem, 0, len(results))
	for i := range results {
		it := results[i].Item()
		items = append(items, searchItem{
			ID:       it.ID(),
			Title:    it.Title(),
			Body:     it.Body(),
			Kind:     string(it.Kind()),
			Score:    results[i].Score(),
			Ref:      it.ExternalRef(),
			Category: it.Category(),
			Tags:     it.Tags(),
		})
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

type reindexFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type reindexResponse struct {
	Items      int              `json:"items"`
	Indexed    int              `json:"indexed"`
	Failed     int              `json:"failed"`
	Pruned     int              `json:"pruned"`
	Tokens     int              `json:"tokens"`
	DurationMs int64            `json:"duration_ms"`
	Failures   []reindexFailure `json:"failures"`
}

// Reindex rebuilds the vector index from the current corpus.
// ?recreate=true drops the index definition first.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reindex == nil {
		s.handleDomainError(r.Context(), w, domain.ErrSemanticDisabled)
		return
	}

	run := s.deps.Reindex.Run
	if q := r.URL.Query().Get("recreate"); q != "" {
		recreate, err := strconv.ParseBool(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "recreate must be a boolean")
			return
		}
		if recreate {
			run = s.deps.Reindex.Rebuild
		}
	}

	report, err := run(r.Context())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	failures := make([]reindexFailure, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, reindexFailure{ID: f.ID(), Error: safeDomainMessage(f.Err())})
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(report.Tokens))
	writeJSON(w, http.StatusOK, reindexResponse{
		Items:      report.Items,
		Indexed:    report.Indexed,
		Failed:     report.Failed,
		Pruned:     report.Pruned,
		Tokens:     report.Tokens,
		DurationMs: report.Duration.Milliseconds(),
		Failures:   failures,
	})
}

type refreshResponse struct {
	Items int `json:"items"`
}

// RefreshCorpus drops the cached corpus and loads it again.
func (s *Server) RefreshCorpus(w http.ResponseWriter, r *http.Request) {
	s.deps.Corpus.Invalidate()
	items, err := s.deps.Corpus.Load(r.Context())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Items: len(items)})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck reports component status. Degraded still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == health.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// setUsageHeaders reports provider tokens for the providers that were called.
func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if tokens, used := usage.Embedding(); used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
	}
	if tokens, used := usage.Generation(); used {
		w.Header().Set("X-Generation-Tokens", strconv.Itoa(tokens))
	}
}
