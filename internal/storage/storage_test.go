package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/khanglvm/course-hub/internal/course"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func names(courses []course.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Name
	}
	return out
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	s := NewStorage(dbPath)

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	// Second call is a no-op.
	if err := s.Init(context.Background()); err != nil {
		t.Errorf("second Init failed: %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first := NewStorage(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := first.SeedCourses(ctx); err != nil {
		t.Fatalf("SeedCourses failed: %v", err)
	}
	first.Close()

	second := NewStorage(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen Init failed: %v", err)
	}
	defer second.Close()

	courses, err := second.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses failed: %v", err)
	}
	if len(courses) != 7 {
		t.Errorf("expected data to survive reopen, got %d courses", len(courses))
	}
}

func TestInitFailure(t *testing.T) {
	// A regular file where a directory is expected makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewStorage(filepath.Join(blocker, "sub", "test.db"))
	ctx := context.Background()

	if err := s.Init(ctx); err == nil {
		t.Fatal("expected Init to fail")
	}

	if _, err := s.ListCourses(ctx); !errors.Is(err, ErrNotOpen) {
		t.Errorf("ListCourses error = %v, want ErrNotOpen", err)
	}

	// History degrades gracefully.
	if err := s.RecordQuery(ctx, NewQueryRecord(KindAsk, "q", 1)); err != nil {
		t.Errorf("RecordQuery should return nil on disabled storage, got: %v", err)
	}
	records, err := s.ListQueries(ctx, time.Time{})
	if err != nil {
		t.Errorf("ListQueries should not error on disabled storage, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history on disabled storage, got %d records", len(records))
	}
}

func TestNotOpen(t *testing.T) {
	s := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	ctx := context.Background()

	if _, err := s.SeedCourses(ctx); !errors.Is(err, ErrNotOpen) {
		t.Errorf("SeedCourses before Init: got %v, want ErrNotOpen", err)
	}

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := s.QueryByWeekAndDay(ctx, 1, course.Monday); !errors.Is(err, ErrNotOpen) {
		t.Errorf("QueryByWeekAndDay after Close: got %v, want ErrNotOpen", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("double Close should be a no-op, got %v", err)
	}
}

func TestSeedCourses(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		n, err := s.SeedCourses(ctx)
		if err != nil {
			t.Fatalf("SeedCourses failed: %v", err)
		}
		if n != 7 {
			t.Errorf("SeedCourses returned %d, want 7", n)
		}
	}

	courses, err := s.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses failed: %v", err)
	}
	if len(courses) != 7 {
		t.Fatalf("expected seeding to replace contents, got %d courses", len(courses))
	}

	first := courses[0]
	if first.Name != "人工智能" || first.Weekday != course.Monday || first.WeekList != course.FullTerm {
		t.Errorf("unexpected first course: %+v", first)
	}
	if first.ID == 0 {
		t.Error("expected stored courses to carry an ID")
	}
}

func TestInsertCourses(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	valid := course.Course{Name: "编译原理", StartTime: "14:00", EndTime: "15:35", Location: "3号楼101", TeacherID: "Q", WeekList: "1,2", Weekday: course.Friday}
	invalid := course.Course{Name: "坏数据", StartTime: "25:00", EndTime: "15:35", WeekList: "1", Weekday: course.Friday}

	if _, err := s.InsertCourses(ctx, []course.Course{valid, invalid}); err == nil {
		t.Fatal("expected validation error")
	}
	if courses, _ := s.ListCourses(ctx); len(courses) != 0 {
		t.Errorf("invalid batch must not be written, found %d rows", len(courses))
	}

	n, err := s.InsertCourses(ctx, []course.Course{valid})
	if err != nil {
		t.Fatalf("InsertCourses failed: %v", err)
	}
	if n != 1 {
		t.Errorf("InsertCourses returned %d, want 1", n)
	}

	if n, err := s.InsertCourses(ctx, nil); err != nil || n != 0 {
		t.Errorf("empty insert = (%d, %v), want (0, nil)", n, err)
	}
}

func TestDeleteDuplicates(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.SeedCourses(ctx); err != nil {
		t.Fatalf("SeedCourses failed: %v", err)
	}
	defaults := course.DefaultCourses()

	// Two exact copies and one row that differs only by teacher, which is
	// not part of the duplicate key.
	dupTeacher := defaults[0]
	dupTeacher.TeacherID = "X"
	extra := []course.Course{defaults[0], defaults[0], dupTeacher, defaults[1]}
	if _, err := s.InsertCourses(ctx, extra); err != nil {
		t.Fatalf("InsertCourses failed: %v", err)
	}

	removed, err := s.DeleteDuplicates(ctx)
	if err != nil {
		t.Fatalf("DeleteDuplicates failed: %v", err)
	}
	if removed != 4 {
		t.Errorf("DeleteDuplicates removed %d rows, want 4", removed)
	}

	courses, _ := s.ListCourses(ctx)
	if len(courses) != 7 {
		t.Fatalf("expected 7 courses after dedupe, got %d", len(courses))
	}
	if courses[0].TeacherID != "W" {
		t.Errorf("expected the lowest ID to survive, got teacher %q", courses[0].TeacherID)
	}

	if removed, _ := s.DeleteDuplicates(ctx); removed != 0 {
		t.Errorf("second DeleteDuplicates removed %d rows, want 0", removed)
	}
}

func TestQueryByWeekAndDay(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	if _, err := s.SeedCourses(ctx); err != nil {
		t.Fatalf("SeedCourses failed: %v", err)
	}

	tests := []struct {
		name string
		week int
		day  course.Weekday
		want []string
	}{
		{"odd week monday ordered by start", 1, course.Monday, []string{"数据结构", "人工智能"}},
		{"even week monday", 2, course.Monday, []string{"人工智能"}},
		{"listed week", 2, course.Wednesday, []string{"英语"}},
		{"unlisted week", 3, course.Wednesday, []string{}},
		{"thursday pair", 5, course.Thursday, []string{"数电", "形策"}},
		{"even list", 16, course.Tuesday, []string{"大物"}},
		{"odd week on even list", 1, course.Tuesday, []string{}},
		{"full term beyond seventeen", 20, course.Friday, []string{"概率"}},
		{"weekend", 1, course.Saturday, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := s.QueryByWeekAndDay(ctx, tt.week, tt.day)
			if err != nil {
				t.Fatalf("QueryByWeekAndDay failed: %v", err)
			}
			got := names(courses)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQueryByWeekAndDayInvalid(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.QueryByWeekAndDay(ctx, 0, course.Monday); err == nil {
		t.Error("expected error for week 0")
	}
	if _, err := s.QueryByWeekAndDay(ctx, 1, course.Weekday(8)); err == nil {
		t.Error("expected error for weekday 8")
	}
}

func TestQueryHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	old := NewQueryRecord(KindSchedule, "1 1", 2)
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	recent := NewQueryRecord(KindRecommend, "人工智能", 3)

	for _, rec := range []QueryRecord{old, recent} {
		if err := s.RecordQuery(ctx, rec); err != nil {
			t.Fatalf("RecordQuery failed: %v", err)
		}
	}

	all, err := s.ListQueries(ctx, time.Now().Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("ListQueries failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all[0].ID != recent.ID {
		t.Error("expected most recent record first")
	}
	if all[0].QueryHash != HashQuery("人工智能") || all[0].Kind != KindRecommend || all[0].ResultsCount != 3 {
		t.Errorf("unexpected record: %+v", all[0])
	}

	lastDay, _ := s.ListQueries(ctx, time.Now().Add(-24*time.Hour))
	if len(lastDay) != 1 {
		t.Errorf("expected 1 record in the last day, got %d", len(lastDay))
	}

	if err := s.Cleanup(ctx, 24*time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	remaining, _ := s.ListQueries(ctx, time.Time{})
	if len(remaining) != 1 || remaining[0].ID != recent.ID {
		t.Errorf("Cleanup should keep only the recent record, got %+v", remaining)
	}
}

// TestHashQuery verifies query hashing consistency.
func TestHashQuery(t *testing.T) {
	query := "test query for hashing"

	hash1 := HashQuery(query)
	hash2 := HashQuery(query)

	if hash1 != hash2 {
		t.Error("HashQuery produced inconsistent results")
	}
	if len(hash1) != 64 { // SHA256 hex = 64 chars
		t.Errorf("Expected hash length 64, got %d", len(hash1))
	}
	if HashQuery("other") == hash1 {
		t.Error("different queries should hash differently")
	}
}

func TestNewQueryRecord(t *testing.T) {
	a := NewQueryRecord(KindSearch, "数据", 4)
	b := NewQueryRecord(KindSearch, "数据", 4)

	if a.ID == "" || a.ID == b.ID {
		t.Error("expected unique non-empty IDs")
	}
	if a.QueryHash != b.QueryHash {
		t.Error("same query should produce the same hash")
	}
	if a.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
