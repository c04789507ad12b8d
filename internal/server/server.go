/*
Package server exposes the course-hub operations over HTTP.

Routes:

	GET  /healthz                      liveness and recommender state
	GET  /courses                      every course
	GET  /schedule?week=3&day=W        courses held on a weekday of a week
	POST /ask       {"question": ""}   natural-language schedule lookup
	GET  /recommend?course=英语&k=3     similar courses
	GET  /search?q=教学楼&limit=5        keyword and similarity search

Every response uses the same envelope:

	{"status": "success", "data": ..., "metadata": {...}}
	{"status": "error", "error": {"code": "...", "message": "..."}, ...}
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/logging"
	"github.com/khanglvm/course-hub/internal/recommend"
	"github.com/khanglvm/course-hub/internal/search"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 1 << 20
)

// Service is the subset of *app.Service the HTTP API needs.
type Service interface {
	Courses() []course.Course
	TopK() int
	EngineStats() (recommend.Stats, recommend.State)
	Schedule(ctx context.Context, week int, day course.Weekday) (*app.ScheduleResult, error)
	Ask(ctx context.Context, question string) (*app.AskResult, error)
	Recommend(ctx context.Context, name string, k int) ([]course.Course, error)
	Search(ctx context.Context, text string, limit int) ([]search.SearchResult, error)
}

// Server serves the JSON API.
type Server struct {
	svc  Service
	addr string
}

// New creates a server bound to addr.
func New(svc Service, addr string) *Server {
	return &Server{svc: svc, addr: addr}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/courses", s.handleCourses)
	r.Get("/schedule", s.handleSchedule)
	r.Post("/ask", s.handleAsk)
	r.Get("/recommend", s.handleRecommend)
	r.Get("/search", s.handleSearch)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("HTTP server listening")
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logging.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
