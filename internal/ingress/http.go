// Package ingress serves the dashboard's JSON API.
package ingress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/extract"
	"github.com/harunnryd/newsdesk/internal/logger"
	"github.com/harunnryd/newsdesk/internal/news"
)

const (
	maxRequestBodyBytes = 1 << 20
	traceHeader         = "X-Request-ID"

	msgFetchNews       = "Failed to fetch news"
	msgInvalidArticles = "Invalid articles data"
	msgInvalidArticle  = "Invalid article data"
	msgSummaryFailed   = "Failed to generate summary"
	msgInvalidRange    = "Invalid date range"
	msgInvalidBody     = "Invalid request body"
)

type NewsLister interface {
	List(ctx context.Context, q news.Query) ([]news.Article, error)
}

type Summarizer interface {
	Articles(ctx context.Context, articles []news.Article) (string, error)
	Article(ctx context.Context, article news.Article) (string, error)
}

type Extractor interface {
	Extract(ctx context.Context, rawURL string) (extract.Content, error)
}

// Deps are the collaborators the handlers call. All are built once at
// startup.
type Deps struct {
	News       NewsLister
	Summarizer Summarizer
	Extractor  Extractor
}

// HTTPServer exposes the dashboard API.
type HTTPServer struct {
	deps           Deps
	server         *http.Server
	requestTimeout time.Duration
}

func NewHTTPServer(cfg config.ServerConfig, deps Deps) (*HTTPServer, error) {
	timeouts, err := cfg.Timeouts()
	if err != nil {
		return nil, fmt.Errorf("parse server timeouts: %w", err)
	}

	port := cfg.Port
	if port <= 0 {
		port = config.DefaultServerPort
	}

	s := &HTTPServer{
		deps:           deps,
		requestTimeout: timeouts.Request,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadTimeout:       timeouts.Read,
		ReadHeaderTimeout: timeouts.Read,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       timeouts.Idle,
	}
	return s, nil
}

// Handler returns the routed handler with tracing and logging applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	mux.HandleFunc("POST /api/summarize-single", s.handleSummarizeSingle)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withTrace(mux)
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server in a goroutine.
func (s *HTTPServer) Start() {
	go func() {
		slog.Info("Starting HTTP API server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
}

// Serve runs the server on an existing listener until Stop is called.
func (s *HTTPServer) Serve(l net.Listener) error {
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server gracefully.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := strings.TrimSpace(r.Header.Get(traceHeader)); id != "" {
			ctx = logger.WithTraceID(ctx, id)
		}
		ctx, traceID := logger.EnsureTraceID(ctx)

		if s.requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
			defer cancel()
		}

		w.Header().Set(traceHeader, traceID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"trace_id", traceID,
		)
	})
}

func (s *HTTPServer) handleNews(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := news.Query{
		Search: params.Get("search"),
		Domain: params.Get("domain"),
	}

	startRaw, endRaw := strings.TrimSpace(params.Get("startDate")), strings.TrimSpace(params.Get("endDate"))
	if startRaw != "" && endRaw != "" {
		start, end := news.ParseDate(startRaw), news.ParseDate(endRaw)
		if start.Equal(news.Epoch) || end.Equal(news.Epoch) {
			writeError(w, http.StatusBadRequest, msgInvalidRange)
			return
		}
		q.Start, q.End = &start, &end
	}

	articles, err := s.deps.News.List(r.Context(), q)
	if err != nil {
		slog.Error("Failed to fetch news", "mode", q.Mode(), "error", err, "trace_id", logger.GetTraceID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgFetchNews)
		return
	}
	if articles == nil {
		articles = []news.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

type summarizeRequest struct {
	Articles json.RawMessage `json:"articles"`
}

type summarizeSingleRequest struct {
	Article json.RawMessage `json:"article"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (s *HTTPServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidArticles)
		return
	}

	raw := bytes.TrimSpace(req.Articles)
	if len(raw) == 0 || raw[0] != '[' {
		writeError(w, http.StatusBadRequest, msgInvalidArticles)
		return
	}
	var payloads []articlePayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidArticles)
		return
	}

	articles := make([]news.Article, 0, len(payloads))
	for _, p := range payloads {
		articles = append(articles, p.article())
	}

	summary, err := s.deps.Summarizer.Articles(r.Context(), articles)
	if err != nil {
		if errors.Is(err, newsErrors.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgInvalidArticles)
			return
		}
		slog.Error("Error generating summary", "articles", len(articles), "error", err, "trace_id", logger.GetTraceID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgSummaryFailed)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

func (s *HTTPServer) handleSummarizeSingle(w http.ResponseWriter, r *http.Request) {
	var req summarizeSingleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidArticle)
		return
	}

	raw := bytes.TrimSpace(req.Article)
	if len(raw) == 0 || raw[0] != '{' {
		writeError(w, http.StatusBadRequest, msgInvalidArticle)
		return
	}
	var payload articlePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidArticle)
		return
	}
	article := payload.article()

	summary, err := s.deps.Summarizer.Article(r.Context(), article)
	if err != nil {
		if errors.Is(err, newsErrors.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgInvalidArticle)
			return
		}
		slog.Error("Error generating single article summary", "url", article.URL, "error", err, "trace_id", logger.GetTraceID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgSummaryFailed)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

type extractRequest struct {
	URL string `json:"url"`
}

func (s *HTTPServer) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	content, err := s.deps.Extractor.Extract(r.Context(), req.URL)
	if err != nil {
		status := newsErrors.HTTPStatus(err)
		slog.Warn("Extraction failed", "url", req.URL, "status", status, "category", newsErrors.Category(err), "error", err, "trace_id", logger.GetTraceID(r.Context()))
		writeError(w, status, extractErrorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// extractErrorMessage keeps transport details such as dial errors out of
// the response body. They are logged instead.
func extractErrorMessage(err error) string {
	var fetchErr *extract.FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode == 0 {
		return fmt.Sprintf("fetch %s: request failed", fetchErr.URL)
	}
	return err.Error()
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// articlePayload accepts articles as the dashboard posts them back: the date
// may be an ISO string, epoch milliseconds or a serialised timestamp object.
type articlePayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Date   any    `json:"date"`
	Domain string `json:"domain"`
}

func (p articlePayload) article() news.Article {
	return news.Article{
		ID:     p.ID,
		Title:  p.Title,
		URL:    p.URL,
		Date:   news.ParseDate(p.Date),
		Domain: p.Domain,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
