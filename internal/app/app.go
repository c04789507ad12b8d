/*
Package app is the command layer shared by the CLI, TUI and HTTP front ends.

A Service owns the schedule store, the recommender engine, the keyword
index, the natural-language translator and the history tracker. Front ends
call its operations and only format the results.

	svc, err := app.New(ctx, cfg)
	if err != nil { ... }
	defer svc.Close()

	res, err := svc.Schedule(ctx, 3, course.Wednesday)
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/khanglvm/course-hub/internal/config"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/history"
	"github.com/khanglvm/course-hub/internal/llm"
	"github.com/khanglvm/course-hub/internal/logging"
	"github.com/khanglvm/course-hub/internal/recommend"
	"github.com/khanglvm/course-hub/internal/search"
	"github.com/khanglvm/course-hub/internal/storage"
	"github.com/khanglvm/course-hub/internal/tokenizer"
)

var (
	// ErrNoTranslator is returned by Ask when no language model is configured.
	ErrNoTranslator = errors.New("app: no language model configured")

	// ErrEmptyQuery is returned for blank questions, course names and search text.
	ErrEmptyQuery = errors.New("app: empty query")
)

// Asker turns a free-form question into a week and weekday.
type Asker interface {
	Ask(ctx context.Context, question string) (week int, day course.Weekday, reply string, err error)
}

// Options wires a Service from already-built collaborators.
type Options struct {
	Store      storage.Storage
	Segmenter  tokenizer.Segmenter
	Asker      Asker
	Engine     recommend.Options
	TopK       int
	SeedOnInit bool
	History    bool
	Retention  time.Duration
}

// Service implements every user-facing operation.
type Service struct {
	store      storage.Storage
	engine     *recommend.Engine
	index      *search.Indexer
	asker      Asker
	tracker    *history.Tracker
	topK       int
	epochs     int
	seedOnInit bool
	retention  time.Duration

	mu      sync.RWMutex
	courses []course.Course
}

// ScheduleResult is the outcome of a week/day lookup.
type ScheduleResult struct {
	Week    int             `json:"week"`
	Day     course.Weekday  `json:"day"`
	Courses []course.Course `json:"courses"`
}

// Text renders the result the way every front end prints it.
func (r *ScheduleResult) Text() string {
	return course.FormatSchedule(r.Week, r.Day, r.Courses)
}

// AskResult carries the model reply and, when it parsed, the schedule.
type AskResult struct {
	Question string          `json:"question"`
	Reply    string          `json:"reply"`
	Schedule *ScheduleResult `json:"schedule,omitempty"`
}

// InitResult reports what Init changed.
type InitResult struct {
	Seeded  int   `json:"seeded"`
	Removed int64 `json:"removed"`
	Courses int   `json:"courses"`
}

// New builds a started Service from configuration: it opens the database,
// creates the LLM client and loads courses into the recommender and index.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	svc, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// Open builds a Service from configuration without loading any courses.
func Open(ctx context.Context, cfg *config.Config) (*Service, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	store := storage.NewStorage(dbPath)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	seg, err := tokenizer.NewCJK()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}

	client := llm.NewClient(cfg.LLM.ClientConfig())
	translator := llm.NewTranslator(client, cfg.LLM.SystemPrompt, cfg.LLM.PromptTemplate)

	svc, err := NewWithOptions(Options{
		Store:     store,
		Segmenter: seg,
		Asker:     translator,
		Engine: recommend.Options{
			Dimension: cfg.Recommender.Dimension,
			Epochs:    cfg.Recommender.Epochs,
			Seed:      cfg.Recommender.Seed,
			LogEvery:  cfg.Recommender.LogEvery,
		},
		TopK:       cfg.Recommender.TopK,
		SeedOnInit: cfg.Database.SeedOnInit,
		History:    cfg.History.Enabled,
		Retention:  cfg.History.Retention(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return svc, nil
}

// NewWithOptions builds a Service without touching the store. Call Start
// (or Init) before serving queries.
func NewWithOptions(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if opts.Segmenter == nil {
		seg, err := tokenizer.NewCJK()
		if err != nil {
			return nil, fmt.Errorf("failed to create tokenizer: %w", err)
		}
		opts.Segmenter = seg
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}

	engine := recommend.NewEngine(opts.Segmenter, opts.Engine)
	index, err := search.NewIndexer(engine)
	if err != nil {
		return nil, err
	}

	tracker := history.NewTracker(opts.Store)
	if !opts.History {
		tracker.Disable()
	}

	return &Service{
		store:      opts.Store,
		engine:     engine,
		index:      index,
		asker:      opts.Asker,
		tracker:    tracker,
		topK:       opts.TopK,
		epochs:     opts.Engine.Epochs,
		seedOnInit: opts.SeedOnInit,
		retention:  opts.Retention,
	}, nil
}

// Start prepares the service for queries: it seeds the table when
// configured to (the built-in timetable replaces the table on every start),
// then trains the recommender and builds the index. Old history is pruned.
func (s *Service) Start(ctx context.Context) error {
	if s.retention > 0 {
		if err := s.store.Cleanup(ctx, s.retention); err != nil {
			logging.Warn().Err(err).Msg("history cleanup failed")
		}
	}

	if s.seedOnInit {
		_, err := s.Init(ctx)
		return err
	}
	return s.Reload(ctx)
}

// Init replaces the table with the built-in timetable, removes duplicate
// rows and reloads.
func (s *Service) Init(ctx context.Context) (*InitResult, error) {
	seeded, err := s.store.SeedCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed courses: %w", err)
	}
	removed, err := s.store.DeleteDuplicates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete duplicate courses: %w", err)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return &InitResult{Seeded: seeded, Removed: removed, Courses: len(s.Courses())}, nil
}

// AddCourses validates and appends courses to the table, then reloads so the
// recommender and index include them. Nothing is written if any course is
// invalid.
func (s *Service) AddCourses(ctx context.Context, courses []course.Course) (int, error) {
	n, err := s.store.InsertCourses(ctx, courses)
	if err != nil {
		return 0, fmt.Errorf("failed to add courses: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.Reload(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Reload reads every course from the store, retrains the recommender and
// rebuilds the keyword index. When the table is empty, or no course name
// yields a token, the recommender is left untrained: schedule lookups and
// keyword search keep working and Recommend returns
// recommend.ErrEngineNotTrained.
func (s *Service) Reload(ctx context.Context) error {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	s.mu.Lock()
	s.courses = courses
	s.mu.Unlock()

	if len(courses) == 0 {
		s.engine.Reset()
		logging.Warn().Msg("no courses in database, recommender not trained")
	} else if err := s.train(courses); err != nil {
		return err
	}

	if err := s.index.Reindex(courses); err != nil {
		return fmt.Errorf("failed to index courses: %w", err)
	}
	return nil
}

// train fits the recommender on courses. A course list without a single
// usable token is not fatal.
func (s *Service) train(courses []course.Course) error {
	start := time.Now()
	err := recommend.Train(s.engine, courses, s.epochs)
	if errors.Is(err, recommend.ErrEmptyVocabulary) {
		s.engine.Reset()
		logging.Warn().Int("courses", len(courses)).Msg("course names yield no tokens, recommender not trained")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to train recommender: %w", err)
	}

	stats := s.engine.Stats()
	logging.Debug().
		Int("courses", stats.Courses).
		Int("vocab", stats.VocabSize).
		Float64("loss", stats.Loss).
		Dur("took", time.Since(start)).
		Msg("recommender trained")
	return nil
}

// Courses returns the courses loaded by the last Reload.
func (s *Service) Courses() []course.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]course.Course(nil), s.courses...)
}

// CourseNames returns the distinct course names in table order.
func (s *Service) CourseNames() []string {
	return lo.Uniq(recommend.Names(s.Courses()))
}

// TopK is the default number of recommendations.
func (s *Service) TopK() int {
	return s.topK
}

// EngineStats reports the recommender's last training run and lifecycle stage.
func (s *Service) EngineStats() (recommend.Stats, recommend.State) {
	return s.engine.Stats(), s.engine.State()
}

// Schedule returns the courses held on day during week.
func (s *Service) Schedule(ctx context.Context, week int, day course.Weekday) (*ScheduleResult, error) {
	courses, err := s.store.QueryByWeekAndDay(ctx, week, day)
	if err != nil {
		return nil, err
	}
	s.tracker.Record(storage.KindSchedule, fmt.Sprintf("%d %d", week, day), len(courses))
	return &ScheduleResult{Week: week, Day: day, Courses: courses}, nil
}

// Ask translates question with the language model and looks up the
// schedule. When the reply cannot be parsed the result still carries the
// reply and the error wraps llm.ErrUnparseableReply.
func (s *Service) Ask(ctx context.Context, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuery
	}
	if s.asker == nil {
		return nil, ErrNoTranslator
	}

	res := &AskResult{Question: question}
	week, day, reply, err := s.asker.Ask(ctx, question)
	res.Reply = reply
	if err != nil {
		s.tracker.Record(storage.KindAsk, question, 0)
		return res, err
	}

	sched, err := s.store.QueryByWeekAndDay(ctx, week, day)
	if err != nil {
		return res, err
	}
	res.Schedule = &ScheduleResult{Week: week, Day: day, Courses: sched}
	s.tracker.Record(storage.KindAsk, question, len(sched))
	return res, nil
}

// Recommend returns up to k courses whose names are most similar to name.
// The course named exactly name is never returned; k <= 0 returns none.
func (s *Service) Recommend(ctx context.Context, name string, k int) ([]course.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyQuery
	}

	recs, err := recommend.Recommend(s.engine, name, s.Courses(), k)
	if err != nil {
		return nil, err
	}
	s.tracker.Record(storage.KindRecommend, name, len(recs))
	return recs, nil
}

// Search runs a hybrid keyword and similarity search over course records.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]search.SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	results, err := s.index.SearchHybrid(text, limit, search.DefaultFusionConfig)
	if err != nil {
		return nil, err
	}
	s.tracker.Record(storage.KindSearch, text, len(results))
	return results, nil
}

// History returns recorded queries newer than since, most recent first.
func (s *Service) History(ctx context.Context, since time.Time) ([]storage.QueryRecord, error) {
	return s.store.ListQueries(ctx, since)
}

// FlushHistory stops the tracker so every queued record is written. Later
// operations are no longer recorded.
func (s *Service) FlushHistory() {
	s.tracker.Stop()
}

// Close flushes history and releases the index and database.
func (s *Service) Close() error {
	s.tracker.Stop()
	if err := s.index.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close search index")
	}
	return s.store.Close()
}
