package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/llm"
	"github.com/khanglvm/course-hub/internal/recommend"
	"github.com/khanglvm/course-hub/internal/search"
	"github.com/khanglvm/course-hub/internal/storage"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// SearchHit is one search result.
type SearchHit struct {
	Course course.Course `json:"course"`
	Score  float64       `json:"score"`
}

type healthResponse struct {
	Status  string          `json:"status"`
	Courses int             `json:"courses"`
	Engine  string          `json:"engine"`
	Stats   recommend.Stats `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, state := s.svc.EngineStats()
	respondData(w, healthResponse{
		Status:  "ok",
		Courses: len(s.svc.Courses()),
		Engine:  state.String(),
		Stats:   stats,
	}, 1)
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	courses := s.svc.Courses()
	respondData(w, courses, len(courses))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	week, err := strconv.Atoi(q.Get("week"))
	if err != nil || week < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_WEEK", "week must be a positive integer", nil)
		return
	}
	day, err := course.ParseWeekday(q.Get("day"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DAY", "day must be 1-7 or one of M T W R F S U", nil)
		return
	}

	res, err := s.svc.Schedule(r.Context(), week, day)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondData(w, res, len(res.Courses))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a question field", err)
		return
	}

	res, err := s.svc.Ask(r.Context(), req.Question)
	if errors.Is(err, llm.ErrUnparseableReply) {
		respondErrorDetails(w, http.StatusUnprocessableEntity, "UNPARSEABLE_REPLY",
			"could not parse model reply: "+res.Reply, nil, map[string]any{"reply": res.Reply})
		return
	}
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondData(w, res, len(res.Schedule.Courses))
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("course")

	k := s.svc.TopK()
	if raw := q.Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_K", "k must be an integer", nil)
			return
		}
		k = parsed
	}

	recs, err := s.svc.Recommend(r.Context(), name, k)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondData(w, recs, len(recs))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	results, err := s.svc.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondData(w, toHits(results), len(results))
}

func toHits(results []search.SearchResult) []SearchHit {
	hits := make([]SearchHit, len(results))
	for i, res := range results {
		hits[i] = SearchHit{Course: res.Course, Score: res.Score}
	}
	return hits
}

// respondServiceError maps command-layer errors to status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "EMPTY_QUERY", "query must not be empty", nil)
	case errors.Is(err, app.ErrNoTranslator):
		respondError(w, http.StatusServiceUnavailable, "NO_LANGUAGE_MODEL", "no language model configured", err)
	case errors.Is(err, recommend.ErrEngineNotTrained):
		respondError(w, http.StatusServiceUnavailable, "NOT_TRAINED", "recommender has not been trained", err)
	case errors.Is(err, storage.ErrNotOpen):
		respondError(w, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database is not available", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
	}
}
