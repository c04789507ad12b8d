/*
Package history records query history in the background.

Front ends call Track (or Record) on every schedule lookup, question,
recommendation and search. Records are queued without blocking and flushed
to storage in small batches; when the queue is full new records are dropped
with a warning. Stop drains the queue before returning.
*/
package history

import (
	"context"
	"sync"
	"time"

	"github.com/khanglvm/course-hub/internal/logging"
	"github.com/khanglvm/course-hub/internal/storage"
)

const (
	// eventQueueSize is the buffer size for the record queue.
	// If full, records are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of records that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending records are flushed.
	flushInterval = 50 * time.Millisecond

	// writeTimeout bounds a single storage write.
	writeTimeout = 5 * time.Second
)

// Tracker records queries in the background with non-blocking writes.
type Tracker struct {
	store    storage.HistoryStore
	queue    chan storage.QueryRecord
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	enabled  bool
	mu       sync.RWMutex
}

// NewTracker creates a tracker and starts its background writer.
func NewTracker(store storage.HistoryStore) *Tracker {
	t := &Tracker{
		store:    store,
		queue:    make(chan storage.QueryRecord, eventQueueSize),
		stopChan: make(chan struct{}),
		enabled:  true,
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Record hashes query and tracks it as a record of the given kind.
func (t *Tracker) Record(kind storage.QueryKind, query string, results int) {
	t.Track(storage.NewQueryRecord(kind, query, results))
}

// Track queues a record (non-blocking).
// If the queue is full, the record is dropped and a warning is logged.
func (t *Tracker) Track(rec storage.QueryRecord) {
	if !t.IsEnabled() {
		return
	}

	select {
	case t.queue <- rec:
	default:
		logging.Warn().Str("kind", string(rec.Kind)).Msg("history queue full, dropping record")
	}
}

// Stop gracefully shuts down the tracker, flushing queued records.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (records are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled && t.store != nil
}

// processEvents runs in the background, batching and flushing records.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]storage.QueryRecord, 0, batchFlushSize)

	for {
		select {
		case rec := <-t.queue:
			batch = append(batch, rec)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then exit.
			for {
				select {
				case rec := <-t.queue:
					batch = append(batch, rec)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = batch[:0]
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of records to storage.
func (t *Tracker) flush(records []storage.QueryRecord) {
	if len(records) == 0 || t.store == nil {
		return
	}

	for _, rec := range records {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := t.store.RecordQuery(ctx, rec); err != nil {
			logging.Warn().Err(err).Str("kind", string(rec.Kind)).Msg("failed to record query")
		}
		cancel()
	}
}
