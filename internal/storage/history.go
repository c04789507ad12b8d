package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/khanglvm/course-hub/internal/logging"
)

const historyTable = "query_history"

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordQuery stores a query record. Failures are logged, not returned.
func (s *SQLiteStorage) RecordQuery(ctx context.Context, rec QueryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return nil
	}

	_, err := s.sb.Insert(historyTable).
		Columns("id", "kind", "query_hash", "results_count", "timestamp").
		Values(rec.ID, string(rec.Kind), rec.QueryHash, rec.ResultsCount, rec.Timestamp.UTC().Format(timeLayout)).
		ExecContext(ctx)
	if err != nil {
		logging.Warn().Err(err).Str("kind", string(rec.Kind)).Msg("failed to record query")
	}

	return nil
}

// ListQueries returns records newer than since, most recent first.
func (s *SQLiteStorage) ListQueries(ctx context.Context, since time.Time) ([]QueryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return []QueryRecord{}, nil
	}

	rows, err := s.sb.Select("id", "kind", "query_hash", "results_count", "timestamp").
		From(historyTable).
		Where(squirrel.GtOrEq{"timestamp": since.UTC().Format(timeLayout)}).
		OrderBy("timestamp DESC").
		QueryContext(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to query history")
		return []QueryRecord{}, nil
	}
	defer rows.Close() //nolint:errcheck

	records := []QueryRecord{}
	for rows.Next() {
		var (
			rec  QueryRecord
			kind string
			ts   string
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.QueryHash, &rec.ResultsCount, &ts); err != nil {
			logging.Warn().Err(err).Msg("failed to scan history row")
			continue
		}
		rec.Kind = QueryKind(kind)

		rec.Timestamp, err = time.Parse(timeLayout, ts)
		if err != nil {
			logging.Warn().Err(err).Str("timestamp", ts).Msg("failed to parse history timestamp")
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query history: %w", err)
	}

	return records, nil
}

// Cleanup removes history older than retention and vacuums the database.
func (s *SQLiteStorage) Cleanup(ctx context.Context, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open() {
		return nil
	}

	cutoff := time.Now().Add(-retention).UTC().Format(timeLayout)
	if _, err := s.sb.Delete(historyTable).
		Where(squirrel.Lt{"timestamp": cutoff}).
		ExecContext(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to cleanup query_history")
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		logging.Warn().Err(err).Msg("failed to vacuum database")
	}

	return nil
}
