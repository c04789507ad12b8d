/*
Package storage implements the persistent schedule store and query history.

Courses and query history live in one SQLite database (modernc.org/sqlite, a
pure Go, CGo-free driver). The default location is ~/.course-hub/courses.db.

Course operations return ErrNotOpen when the database is unavailable. Query
history degrades gracefully instead: when the store is closed, recording is a
no-op and listing returns nothing, so a broken history never blocks a
schedule lookup.
*/
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/logging"
)

// ErrNotOpen is returned by course operations before Init succeeds or after Close.
var ErrNotOpen = errors.New("storage: database not open")

// CourseStore reads and writes the schedule table.
type CourseStore interface {
	// SeedCourses replaces the table contents with the built-in timetable.
	SeedCourses(ctx context.Context) (int, error)

	// InsertCourses validates and appends courses.
	InsertCourses(ctx context.Context, courses []course.Course) (int, error)

	// DeleteDuplicates removes repeated rows, keeping the lowest ID.
	DeleteDuplicates(ctx context.Context) (int64, error)

	// ListCourses returns every course ordered by ID.
	ListCourses(ctx context.Context) ([]course.Course, error)

	// QueryByWeekAndDay returns the courses held on day during week,
	// ordered by start time.
	QueryByWeekAndDay(ctx context.Context, week int, day course.Weekday) ([]course.Course, error)
}

// HistoryStore records hashed query history.
type HistoryStore interface {
	// RecordQuery stores a single query record.
	RecordQuery(ctx context.Context, rec QueryRecord) error

	// ListQueries returns records newer than since, most recent first.
	ListQueries(ctx context.Context, since time.Time) ([]QueryRecord, error)

	// Cleanup removes records older than the retention window.
	Cleanup(ctx context.Context, retention time.Duration) error
}

// Storage is the full store used by the application.
type Storage interface {
	CourseStore
	HistoryStore

	// Init opens the database and runs migrations.
	Init(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	sb       squirrel.StatementBuilderType
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

// DefaultPath returns ~/.course-hub/courses.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".course-hub", "courses.db"), nil
}

// NewStorage creates a store backed by the database file at dbPath.
// The file and its directory are created by Init.
func NewStorage(dbPath string) *SQLiteStorage {
	return &SQLiteStorage{dbPath: dbPath}
}

// NewWithDB wraps an already open database. Init still runs migrations.
func NewWithDB(db *sql.DB) *SQLiteStorage {
	s := &SQLiteStorage{}
	s.attach(db)
	return s
}

func (s *SQLiteStorage) attach(db *sql.DB) {
	s.db = db
	s.sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question).RunWith(db)
}

// Path returns the database file path, or "" for a wrapped connection.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Init opens the database and runs migrations. It is safe to call more than
// once; only the first call does any work.
func (s *SQLiteStorage) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.db == nil {
			if s.dbPath == "" {
				s.initErr = errors.New("storage: empty database path")
				return
			}
			if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
				s.initErr = fmt.Errorf("failed to create db directory: %w", err)
				return
			}

			db, err := sql.Open("sqlite", s.dbPath)
			if err != nil {
				s.initErr = fmt.Errorf("failed to open database: %w", err)
				return
			}
			// SQLite allows a single writer.
			db.SetMaxOpenConns(1)

			if err := db.PingContext(ctx); err != nil {
				_ = db.Close()
				s.initErr = fmt.Errorf("failed to ping database: %w", err)
				return
			}
			s.attach(db)
		}

		if err := s.runMigrations(ctx); err != nil {
			s.initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
	})

	if s.initErr != nil {
		logging.Warn().Err(s.initErr).Str("path", s.dbPath).Msg("storage init failed")
	}
	return s.initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// open reports whether the database is usable. Callers hold s.mu.
func (s *SQLiteStorage) open() bool {
	return s.db != nil && s.initErr == nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
