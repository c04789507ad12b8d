package storage

import (
	"time"

	"github.com/google/uuid"
)

// QueryKind names the front-end operation that produced a query.
type QueryKind string

const (
	KindSchedule  QueryKind = "schedule"
	KindAsk       QueryKind = "ask"
	KindRecommend QueryKind = "recommend"
	KindSearch    QueryKind = "search"
)

// QueryRecord is one entry of the query history.
type QueryRecord struct {
	// ID is a unique identifier for this query (UUID).
	ID string `json:"id"`

	// Kind is the operation that handled the query.
	Kind QueryKind `json:"kind"`

	// QueryHash is the SHA256 hash of the query text.
	QueryHash string `json:"query_hash"`

	// ResultsCount is the number of courses returned.
	ResultsCount int `json:"results_count"`

	// Timestamp is when the query was handled.
	Timestamp time.Time `json:"timestamp"`
}

// NewQueryRecord builds a record for query with a fresh ID and the current
// time. The query text itself is only kept as a hash.
func NewQueryRecord(kind QueryKind, query string, results int) QueryRecord {
	return QueryRecord{
		ID:           uuid.NewString(),
		Kind:         kind,
		QueryHash:    HashQuery(query),
		ResultsCount: results,
		Timestamp:    time.Now().UTC(),
	}
}
