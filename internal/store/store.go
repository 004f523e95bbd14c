// Package store keeps the ingested measurement window in memory for the
// evaluation endpoints. Persistence technology is deliberately out of
// scope; the store is a bounded, time-ordered slice with range queries.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/ionoscope/storm-eval-service/internal/domain"
)

// MeasurementStore is a thread-safe, time-ordered measurement buffer. The
// pipeline inserts; the HTTP API reads. When maxEntries is exceeded the
// oldest measurements are dropped.
type MeasurementStore struct {
	mu           sync.RWMutex
	measurements []domain.Measurement
	maxEntries   int
}

// New creates a store holding at most maxEntries measurements. Zero or
// negative means unbounded.
func New(maxEntries int) *MeasurementStore {
	return &MeasurementStore{maxEntries: maxEntries}
}

// Insert adds a measurement, keeping the buffer ordered by timestamp. A
// measurement with a timestamp already present replaces the existing one,
// so replayed messages stay idempotent.
func (s *MeasurementStore) Insert(m domain.Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.measurements), func(i int) bool {
		return !s.measurements[i].Timestamp.Before(m.Timestamp)
	})
	switch {
	case i < len(s.measurements) && s.measurements[i].Timestamp.Equal(m.Timestamp):
		s.measurements[i] = m
	default:
		s.measurements = append(s.measurements, domain.Measurement{})
		copy(s.measurements[i+1:], s.measurements[i:])
		s.measurements[i] = m
	}

	if s.maxEntries > 0 && len(s.measurements) > s.maxEntries {
		excess := len(s.measurements) - s.maxEntries
		s.measurements = append(s.measurements[:0:0], s.measurements[excess:]...)
	}
}

// InsertBatch inserts multiple measurements.
func (s *MeasurementStore) InsertBatch(ms []domain.Measurement) {
	for _, m := range ms {
		s.Insert(m)
	}
}

// Len returns the number of stored measurements.
func (s *MeasurementStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.measurements)
}

// Range returns a copy of the measurements with start <= timestamp <= end.
// An empty window yields an empty slice, never an error.
func (s *MeasurementStore) Range(start, end time.Time) []domain.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.Search(len(s.measurements), func(i int) bool {
		return !s.measurements[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(s.measurements), func(i int) bool {
		return s.measurements[i].Timestamp.After(end)
	})
	out := make([]domain.Measurement, hi-lo)
	copy(out, s.measurements[lo:hi])
	return out
}

// All returns a copy of every stored measurement in timestamp order.
func (s *MeasurementStore) All() []domain.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Measurement, len(s.measurements))
	copy(out, s.measurements)
	return out
}

// Decimate thins a time-ordered series to one sample per interval: the
// first sample at or after each interval boundary is kept. It makes no
// cadence assumption, so it works over irregular series. An interval of
// zero or less returns the input unchanged.
func Decimate(ms []domain.Measurement, intervalHours float64) []domain.Measurement {
	if intervalHours <= 0 || len(ms) == 0 {
		return ms
	}
	interval := time.Duration(intervalHours * float64(time.Hour))

	out := []domain.Measurement{ms[0]}
	next := ms[0].Timestamp.Add(interval)
	for _, m := range ms[1:] {
		if m.Timestamp.Before(next) {
			continue
		}
		out = append(out, m)
		next = m.Timestamp.Add(interval)
	}
	return out
}
