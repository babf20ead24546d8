package store

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"surveilens-control-plane/internal/models"
)

// DefaultCapacity bounds the alert map when no capacity is configured
const DefaultCapacity = 1024

// Store provides thread-safe in-process state shared across the
// control plane: the bounded alert map and the per-camera quiet-window
// timestamps. It is constructed once and injected; nothing in here is
// a package-level global.
type Store struct {
	alerts *lru.Cache[string, models.AlertRecord]

	quietMu   sync.RWMutex
	lastQuiet map[models.QuietKey]time.Time
}

// New creates a store whose alert map holds at most capacity records,
// evicting least-recently-used entries beyond that
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	alerts, _ := lru.New[string, models.AlertRecord](capacity)

	return &Store{
		alerts:    alerts,
		lastQuiet: make(map[models.QuietKey]time.Time),
	}
}

// Upsert stores the record under its id, replacing any existing record
// wholesale. Concurrent writers to the same id race and the last write
// wins; each record is stored or replaced as a unit.
func (s *Store) Upsert(rec models.AlertRecord) {
	s.alerts.Add(rec.ID, rec)
}

// Get returns the record for id if present
func (s *Store) Get(id string) (models.AlertRecord, bool) {
	return s.alerts.Get(id)
}

// MergeEnrichment reads the current record for id (or falls back to
// the supplied record when absent, which happens after eviction or
// when enrichment outruns the insert), replaces only the enrichment
// field, and writes the result back.
//
// The read and the write are individually atomic but the sequence is
// not: a concurrent Upsert or MergeEnrichment on the same id can land
// between them, and whichever whole-record write happens last wins.
// Callers accept that; enrichment is advisory.
func (s *Store) MergeEnrichment(id string, enrichment map[string]interface{}, fallback models.AlertRecord) {
	rec, ok := s.alerts.Get(id)
	if !ok {
		rec = fallback
		rec.ID = id
	}
	rec.Enrichment = enrichment
	s.alerts.Add(id, rec)
}

// Recent returns up to n records, oldest first, newest last
func (s *Store) Recent(n int) []models.AlertRecord {
	keys := s.alerts.Keys()
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}

	records := make([]models.AlertRecord, 0, len(keys))
	for _, id := range keys {
		if rec, ok := s.alerts.Peek(id); ok {
			records = append(records, rec)
		}
	}
	return records
}

// Len returns the number of alerts currently held
func (s *Store) Len() int {
	return s.alerts.Len()
}

// LastEmit returns the last journal-emission time recorded for the key
func (s *Store) LastEmit(key models.QuietKey) (time.Time, bool) {
	s.quietMu.RLock()
	defer s.quietMu.RUnlock()

	t, ok := s.lastQuiet[key]
	return t, ok
}

// SetLastEmit records an emission time for the key. There is no
// combined check-and-set: the quiet-window policy tolerates the
// check-then-update race between concurrent events for one camera.
func (s *Store) SetLastEmit(key models.QuietKey, t time.Time) {
	s.quietMu.Lock()
	defer s.quietMu.Unlock()

	s.lastQuiet[key] = t
}

// Stats returns store statistics for the diagnostics endpoint
func (s *Store) Stats() map[string]interface{} {
	s.quietMu.RLock()
	quietKeys := len(s.lastQuiet)
	s.quietMu.RUnlock()

	return map[string]interface{}{
		"alerts_held":     s.alerts.Len(),
		"quiet_keys_held": quietKeys,
	}
}
