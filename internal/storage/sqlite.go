package storage

import (
	"context"
	"fmt"

	"github.com/khanglvm/course-hub/internal/logging"
)

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func(ctx context.Context) error
}

// runMigrations executes database schema migrations in version order.
func (s *SQLiteStorage) runMigrations(ctx context.Context) error {
	if err := s.createMigrationsTable(ctx); err != nil {
		return err
	}

	version, err := s.currentMigrationVersion(ctx)
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "courses", up: s.migration001Courses},
		{version: 2, name: "query_history", up: s.migration002QueryHistory},
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		logging.Info().Int("version", m.version).Str("name", m.name).Msg("running migration")
		if err := m.up(ctx); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if err := s.setMigrationVersion(ctx, m); err != nil {
			return err
		}
	}

	return nil
}

func (s *SQLiteStorage) createMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func (s *SQLiteStorage) currentMigrationVersion(ctx context.Context) (int, error) {
	var version int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *SQLiteStorage) setMigrationVersion(ctx context.Context, m migration) error {
	_, err := s.sb.Insert("schema_migrations").
		Columns("version", "name").
		Values(m.version, m.name).
		ExecContext(ctx)
	return err
}

// migration001Courses creates the schedule table.
func (s *SQLiteStorage) migration001Courses(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS courses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			teacher_id TEXT NOT NULL DEFAULT '',
			week_list TEXT NOT NULL,
			weekday INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_courses_weekday
		ON courses(weekday, start_time)
	`); err != nil {
		return fmt.Errorf("failed to create courses weekday index: %w", err)
	}

	return nil
}

// migration002QueryHistory creates the hashed query history table.
func (s *SQLiteStorage) migration002QueryHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS query_history (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			query_hash TEXT NOT NULL,
			results_count INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create query_history table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_query_history_timestamp
		ON query_history(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create query_history timestamp index: %w", err)
	}

	return nil
}
