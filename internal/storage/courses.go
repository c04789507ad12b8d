package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/khanglvm/course-hub/internal/course"
)

const coursesTable = "courses"

var courseFields = []string{
	"id",
	"name",
	"start_time",
	"end_time",
	"location",
	"teacher_id",
	"week_list",
	"weekday",
}

// duplicateKey lists the columns that make two rows the same course.
var duplicateKey = "name, start_time, end_time, location, weekday, week_list"

// SeedCourses replaces the table contents with course.DefaultCourses.
func (s *SQLiteStorage) SeedCourses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return 0, ErrNotOpen
	}

	defaults := course.DefaultCourses()
	err := s.inTx(ctx, func(sb squirrel.StatementBuilderType) error {
		if _, err := sb.Delete(coursesTable).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear courses: %w", err)
		}
		return insertCourses(ctx, sb, defaults)
	})
	if err != nil {
		return 0, err
	}
	return len(defaults), nil
}

// InsertCourses validates every course and appends them in one transaction.
// Nothing is written if any course is invalid.
func (s *SQLiteStorage) InsertCourses(ctx context.Context, courses []course.Course) (int, error) {
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			return 0, err
		}
	}
	if len(courses) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return 0, ErrNotOpen
	}

	err := s.inTx(ctx, func(sb squirrel.StatementBuilderType) error {
		return insertCourses(ctx, sb, courses)
	})
	if err != nil {
		return 0, err
	}
	return len(courses), nil
}

func insertCourses(ctx context.Context, sb squirrel.StatementBuilderType, courses []course.Course) error {
	qry := sb.Insert(coursesTable).
		Columns(courseFields[1:]...)
	for _, c := range courses {
		qry = qry.Values(c.Name, c.StartTime, c.EndTime, c.Location, c.TeacherID, c.WeekList, int(c.Weekday))
	}
	if _, err := qry.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert courses: %w", err)
	}
	return nil
}

// DeleteDuplicates keeps the lowest ID among rows that agree on name, times,
// location, weekday and week list, and returns the number of rows removed.
func (s *SQLiteStorage) DeleteDuplicates(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return 0, ErrNotOpen
	}

	res, err := s.sb.Delete(coursesTable).
		Where(squirrel.Expr("id NOT IN (SELECT MIN(id) FROM " + coursesTable + " GROUP BY " + duplicateKey + ")")).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicate courses: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted courses: %w", err)
	}
	return n, nil
}

// ListCourses returns every course ordered by ID.
func (s *SQLiteStorage) ListCourses(ctx context.Context) ([]course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return nil, ErrNotOpen
	}

	rows, err := s.sb.Select(courseFields...).
		From(coursesTable).
		OrderBy("id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return scanCourses(rows)
}

// QueryByWeekAndDay returns the courses held on day during week, ordered by
// start time. A course is held during week when its week list is the
// full-term marker or names the week explicitly.
func (s *SQLiteStorage) QueryByWeekAndDay(ctx context.Context, week int, day course.Weekday) ([]course.Course, error) {
	if week < 1 {
		return nil, fmt.Errorf("invalid week %d: must be at least 1", week)
	}
	if !day.Valid() {
		return nil, fmt.Errorf("invalid weekday %d: must be 1-7", int(day))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return nil, ErrNotOpen
	}

	rows, err := s.sb.Select(courseFields...).
		From(coursesTable).
		Where(squirrel.Eq{"weekday": int(day)}).
		OrderBy("start_time", "id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	all, err := scanCourses(rows)
	if err != nil {
		return nil, err
	}

	held := make([]course.Course, 0, len(all))
	for _, c := range all {
		if c.InWeek(week) {
			held = append(held, c)
		}
	}
	return held, nil
}

func scanCourses(rows *sql.Rows) ([]course.Course, error) {
	var courses []course.Course
	for rows.Next() {
		var (
			c       course.Course
			weekday int
		)
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.StartTime,
			&c.EndTime,
			&c.Location,
			&c.TeacherID,
			&c.WeekList,
			&weekday,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		c.Weekday = course.Weekday(weekday)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read course rows: %w", err)
	}
	return courses, nil
}

// inTx runs fn against a builder bound to a fresh transaction, committing on
// success and rolling back on error. Callers hold s.mu.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(sb squirrel.StatementBuilderType) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(s.sb.RunWith(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
