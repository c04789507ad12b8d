package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/course-hub/internal/config"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/llm"
	"github.com/khanglvm/course-hub/internal/recommend"
	"github.com/khanglvm/course-hub/internal/storage"
)

type stubAsker struct {
	reply string
	err   error
}

func (s stubAsker) Ask(_ context.Context, _ string) (int, course.Weekday, string, error) {
	if s.err != nil {
		return 0, 0, "", s.err
	}
	week, day, err := llm.ParseWeekDay(s.reply)
	return week, day, s.reply, err
}

func newTestService(t *testing.T, asker Asker) *Service {
	t.Helper()

	store := storage.NewStorage(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, store.Init(context.Background()))

	svc, err := NewWithOptions(Options{
		Store:      store,
		Asker:      asker,
		Engine:     recommend.Options{Dimension: 8, Epochs: 5, Seed: 7},
		TopK:       2,
		SeedOnInit: true,
		History:    true,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))

	t.Cleanup(func() { svc.Close() })
	return svc
}

func courseNames(courses []course.Course) []string {
	return recommend.Names(courses)
}

func TestStartSeedsAndTrains(t *testing.T) {
	svc := newTestService(t, nil)

	assert.Len(t, svc.Courses(), 7)
	assert.Equal(t, []string{"人工智能", "英语", "数电", "概率", "数据结构", "形策", "大物"}, svc.CourseNames())

	stats, state := svc.EngineStats()
	assert.Equal(t, recommend.StateTrained, state)
	assert.Equal(t, 7, stats.Courses)
	assert.Equal(t, 5, stats.Epochs)
}

func TestInitIsRepeatable(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, res.Seeded)
	assert.Equal(t, int64(0), res.Removed)
	assert.Equal(t, 7, res.Courses)
}

func TestStartWithoutSeedOnEmptyTable(t *testing.T) {
	store := storage.NewStorage(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, store.Init(context.Background()))

	svc, err := NewWithOptions(Options{Store: store, Engine: recommend.Options{Epochs: 1}})
	require.NoError(t, err)
	defer svc.Close()
	require.NoError(t, svc.Start(context.Background()))

	assert.Empty(t, svc.Courses())
	_, err = svc.Recommend(context.Background(), "英语", 3)
	assert.ErrorIs(t, err, recommend.ErrEngineNotTrained)

	// Keyword search still works without a trained recommender.
	results, err := svc.Search(context.Background(), "英语", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func newUnseededService(t *testing.T, store storage.Storage) *Service {
	t.Helper()

	require.NoError(t, store.Init(context.Background()))
	svc, err := NewWithOptions(Options{Store: store, Engine: recommend.Options{Dimension: 8, Epochs: 2, Seed: 7}})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestStartWithUntokenizableNames(t *testing.T) {
	ctx := context.Background()
	store := storage.NewStorage(filepath.Join(t.TempDir(), "courses.db"))
	svc := newUnseededService(t, store)

	_, err := store.InsertCourses(ctx, []course.Course{
		{Name: "—", StartTime: "08:00", EndTime: "09:35", Location: "1号教学楼101", WeekList: course.FullTerm, Weekday: course.Monday},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Start(ctx))
	assert.Len(t, svc.Courses(), 1)

	_, state := svc.EngineStats()
	assert.Equal(t, recommend.StateUninitialized, state)

	res, err := svc.Schedule(ctx, 1, course.Monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"—"}, courseNames(res.Courses))

	_, err = svc.Recommend(ctx, "—", 3)
	assert.ErrorIs(t, err, recommend.ErrEngineNotTrained)
}

// emptiableStore reports an empty table once empty is set.
type emptiableStore struct {
	storage.Storage
	empty bool
}

func (s *emptiableStore) ListCourses(ctx context.Context) ([]course.Course, error) {
	if s.empty {
		return []course.Course{}, nil
	}
	return s.Storage.ListCourses(ctx)
}

func TestReloadEmptyTableResetsRecommender(t *testing.T) {
	ctx := context.Background()
	store := &emptiableStore{Storage: storage.NewStorage(filepath.Join(t.TempDir(), "courses.db"))}
	svc := newUnseededService(t, store)

	_, err := svc.Init(ctx)
	require.NoError(t, err)
	_, state := svc.EngineStats()
	require.Equal(t, recommend.StateTrained, state)

	store.empty = true
	require.NoError(t, svc.Reload(ctx))

	stats, state := svc.EngineStats()
	assert.Equal(t, recommend.StateUninitialized, state)
	assert.Zero(t, stats.VocabSize)
	assert.Empty(t, svc.Courses())

	_, err = svc.Recommend(ctx, "英语", 3)
	assert.ErrorIs(t, err, recommend.ErrEngineNotTrained)
}

func TestAddCourses(t *testing.T) {
	ctx := context.Background()
	svc := newUnseededService(t, storage.NewStorage(filepath.Join(t.TempDir(), "courses.db")))
	require.NoError(t, svc.Start(ctx))

	n, err := svc.AddCourses(ctx, []course.Course{
		{Name: "机器学习", StartTime: "14:00", EndTime: "15:35", Location: "3号教学楼101", TeacherID: "Q", WeekList: course.FullTerm, Weekday: course.Wednesday},
		{Name: "人工智能导论", StartTime: "08:00", EndTime: "09:35", Location: "3号教学楼102", TeacherID: "Q", WeekList: "1,3", Weekday: course.Friday},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"机器学习", "人工智能导论"}, svc.CourseNames())

	_, state := svc.EngineStats()
	assert.Equal(t, recommend.StateTrained, state)

	res, err := svc.Schedule(ctx, 3, course.Friday)
	require.NoError(t, err)
	assert.Equal(t, []string{"人工智能导论"}, courseNames(res.Courses))

	recs, err := svc.Recommend(ctx, "机器学习", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"人工智能导论"}, courseNames(recs))
}

func TestAddCoursesRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newUnseededService(t, storage.NewStorage(filepath.Join(t.TempDir(), "courses.db")))
	require.NoError(t, svc.Start(ctx))

	_, err := svc.AddCourses(ctx, []course.Course{
		{Name: "体育", StartTime: "08:00", EndTime: "09:35", WeekList: course.FullTerm, Weekday: course.Monday},
		{Name: "坏课", StartTime: "10:00", EndTime: "09:00", WeekList: course.FullTerm, Weekday: course.Monday},
	})
	require.Error(t, err)
	assert.Empty(t, svc.Courses())

	n, err := svc.AddCourses(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSchedule(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	tests := map[string]struct {
		week int
		day  course.Weekday
		want []string
	}{
		"monday odd week":  {week: 1, day: course.Monday, want: []string{"数据结构", "人工智能"}},
		"monday even week": {week: 2, day: course.Monday, want: []string{"人工智能"}},
		"wednesday week 5": {week: 5, day: course.Wednesday, want: []string{"英语"}},
		"wednesday week 4": {week: 4, day: course.Wednesday, want: []string{}},
		"sunday":           {week: 1, day: course.Sunday, want: []string{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := svc.Schedule(ctx, tc.week, tc.day)
			require.NoError(t, err)
			assert.Equal(t, tc.want, courseNames(res.Courses))
		})
	}
}

func TestScheduleText(t *testing.T) {
	svc := newTestService(t, nil)

	res, err := svc.Schedule(context.Background(), 4, course.Wednesday)
	require.NoError(t, err)
	assert.Equal(t, "No courses in week 4 on weekday 3.\n", res.Text())

	res, err = svc.Schedule(context.Background(), 2, course.Tuesday)
	require.NoError(t, err)
	assert.Contains(t, res.Text(), "Course: 大物, Time: 15:50 - 18:15")
}

func TestScheduleInvalid(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Schedule(context.Background(), 0, course.Monday)
	assert.Error(t, err)
	_, err = svc.Schedule(context.Background(), 1, course.Weekday(8))
	assert.Error(t, err)
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("parsed reply", func(t *testing.T) {
		svc := newTestService(t, stubAsker{reply: "1 4"})

		res, err := svc.Ask(ctx, "第一周星期四有什么课")
		require.NoError(t, err)
		assert.Equal(t, "1 4", res.Reply)
		require.NotNil(t, res.Schedule)
		assert.Equal(t, []string{"数电", "形策"}, courseNames(res.Schedule.Courses))
	})

	t.Run("unparseable reply", func(t *testing.T) {
		svc := newTestService(t, stubAsker{reply: "I am not sure"})

		res, err := svc.Ask(ctx, "明天有课吗")
		assert.ErrorIs(t, err, llm.ErrUnparseableReply)
		require.NotNil(t, res)
		assert.Equal(t, "I am not sure", res.Reply)
		assert.Nil(t, res.Schedule)
	})

	t.Run("model failure", func(t *testing.T) {
		boom := errors.New("boom")
		svc := newTestService(t, stubAsker{err: boom})

		_, err := svc.Ask(ctx, "hello")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no translator", func(t *testing.T) {
		svc := newTestService(t, nil)

		_, err := svc.Ask(ctx, "hello")
		assert.ErrorIs(t, err, ErrNoTranslator)
	})

	t.Run("blank question", func(t *testing.T) {
		svc := newTestService(t, stubAsker{reply: "1 1"})

		_, err := svc.Ask(ctx, "   ")
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})
}

func TestRecommend(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	recs, err := svc.Recommend(ctx, "人工智能", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, c := range recs {
		assert.NotEqual(t, "人工智能", c.Name)
	}

	recs, err = svc.Recommend(ctx, "人工智能", 100)
	require.NoError(t, err)
	assert.Len(t, recs, 6)

	recs, err = svc.Recommend(ctx, "人工智能", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Unknown names degrade to the unknown token rather than failing.
	recs, err = svc.Recommend(ctx, "量子计算", 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	_, err = svc.Recommend(ctx, "", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRecommendDeterministic(t *testing.T) {
	a := newTestService(t, nil)
	b := newTestService(t, nil)

	ra, err := a.Recommend(context.Background(), "数据结构", 3)
	require.NoError(t, err)
	rb, err := b.Recommend(context.Background(), "数据结构", 3)
	require.NoError(t, err)

	assert.Equal(t, courseNames(ra), courseNames(rb))
}

func TestSearch(t *testing.T) {
	svc := newTestService(t, nil)

	results, err := svc.Search(context.Background(), "数据结构", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "数据结构", results[0].Course.Name)
	assert.LessOrEqual(t, len(results), 3)

	_, err = svc.Search(context.Background(), " ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestHistoryRecordsOperations(t *testing.T) {
	svc := newTestService(t, stubAsker{reply: "1 1"})
	ctx := context.Background()
	since := time.Now().Add(-time.Minute)

	_, err := svc.Schedule(ctx, 1, course.Monday)
	require.NoError(t, err)
	_, err = svc.Ask(ctx, "第一周周一")
	require.NoError(t, err)
	_, err = svc.Recommend(ctx, "英语", 2)
	require.NoError(t, err)
	_, err = svc.Search(ctx, "英语", 2)
	require.NoError(t, err)

	svc.FlushHistory()

	records, err := svc.History(ctx, since)
	require.NoError(t, err)
	require.Len(t, records, 4)

	kinds := make(map[storage.QueryKind]storage.QueryRecord)
	for _, r := range records {
		kinds[r.Kind] = r
	}
	assert.Equal(t, 2, kinds[storage.KindSchedule].ResultsCount)
	assert.Equal(t, storage.HashQuery("1 1"), kinds[storage.KindSchedule].QueryHash)
	assert.Equal(t, storage.HashQuery("英语"), kinds[storage.KindRecommend].QueryHash)
	assert.Contains(t, kinds, storage.KindAsk)
	assert.Contains(t, kinds, storage.KindSearch)
}

func TestHistoryDisabled(t *testing.T) {
	store := storage.NewStorage(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, store.Init(context.Background()))

	svc, err := NewWithOptions(Options{Store: store, SeedOnInit: true, Engine: recommend.Options{Epochs: 1}})
	require.NoError(t, err)
	defer svc.Close()
	require.NoError(t, svc.Start(context.Background()))

	_, err = svc.Schedule(context.Background(), 1, course.Monday)
	require.NoError(t, err)
	svc.FlushHistory()

	records, err := svc.History(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "nested", "courses.db")
	cfg.Recommender.Epochs = 2
	cfg.Recommender.LogEvery = 0

	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	assert.Len(t, svc.Courses(), 7)
	assert.Equal(t, 3, svc.TopK())
}

func TestNewWithOptionsRequiresStore(t *testing.T) {
	_, err := NewWithOptions(Options{})
	assert.Error(t, err)
}

func ExampleScheduleResult_Text() {
	res := &ScheduleResult{Week: 3, Day: course.Sunday}
	fmt.Print(res.Text())
	// Output: No courses in week 3 on weekday 7.
}
